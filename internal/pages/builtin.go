package pages

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/conneroisu/rsc/internal/boundary"
	"github.com/conneroisu/rsc/internal/styles"
)

// Built-in page names.
const (
	HomeName    = "home"
	AboutName   = "about"
	CounterName = "counter"
)

// CounterEntry is the client entry behind the counter page, relative to the
// module root.
const CounterEntry = "internal/pages/counter_client.go"

const navCSS = `nav.rsc-nav ul { list-style: none; padding: 0; }
nav.rsc-nav li { display: inline-block; margin-right: 1em; }`

// Default returns a registry holding the built-in pages.
func Default() *Registry {
	r := NewRegistry()
	// Built-in names are valid, so registration cannot fail.
	_ = r.Register(HomeName, "Home", Home(r))
	_ = r.Register(AboutName, "About", About())
	_ = r.Register(CounterName, "Counter", Counter())
	return r
}

// Label title-cases a page name for navigation, e.g. "getting-started"
// becomes "Getting Started".
func Label(name string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(name, "-", " "))
}

// Home lists every page in r.
func Home(r *Registry) Page {
	return func(_ *http.Request) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			styles.Use(ctx, "page:nav", navCSS)

			var b strings.Builder
			b.WriteString(`<main><h1>Pages</h1><nav class="rsc-nav"><ul>`)
			for _, info := range r.List() {
				b.WriteString(`<li><a href="`)
				b.WriteString(templ.EscapeString(info.Path()))
				b.WriteString(`">`)
				b.WriteString(templ.EscapeString(Label(info.Name)))
				b.WriteString(`</a></li>`)
			}
			b.WriteString(`</ul></nav></main>`)

			_, err := io.WriteString(w, b.String())
			return err
		})
	}
}

// About describes the application.
func About() Page {
	return func(_ *http.Request) templ.Component {
		return templ.Raw(`<main><h1>About</h1><p>Server-rendered pages wrapped in a shared document shell.</p></main>`)
	}
}

// Counter renders the module reference of the client counter. The browser
// build of CounterEntry mounts the button in its place.
func Counter() Page {
	ref := boundary.ClientReference(CounterEntry)
	return func(_ *http.Request) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			if _, err := io.WriteString(w, `<main><h1>Counter</h1>`); err != nil {
				return err
			}
			if err := ref.Render(ctx, w); err != nil {
				return err
			}
			_, err := io.WriteString(w, `</main>`)
			return err
		})
	}
}

// NotFound is the content shown for an unknown page name.
func NotFound(name string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<main><h1>Not Found</h1><p>No page named `+
			templ.EscapeString(name)+`.</p><p><a href="/">Home</a></p></main>`)
		return err
	})
}
