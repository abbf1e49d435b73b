package styles

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

const (
	// BoundaryAttr marks the element rendered by Registry.
	BoundaryAttr = "data-rsc-style-registry"
	// StyleAttr marks the style element holding the collected rules.
	StyleAttr = "data-rsc-styles"
)

type optionsKey struct{}

// Options configure the boundaries rendered under a context.
type Options struct {
	// Sheets are registered ahead of any rule used by children.
	Sheets *Sheets
	// Minify compacts the emitted stylesheet.
	Minify bool
}

// WithOptions returns a context whose boundaries use opts.
func WithOptions(ctx context.Context, opts Options) context.Context {
	return context.WithValue(ctx, optionsKey{}, opts)
}

func optionsFrom(ctx context.Context) Options {
	opts, _ := ctx.Value(optionsKey{}).(Options)
	return opts
}

// Registry is the style-registry boundary. It renders children exactly once,
// inside a single boundary element, preceded by the styles they registered.
//
// A boundary nested inside another one shares the outer collector and
// renders only its children.
func Registry(children templ.Component) templ.Component {
	if children == nil {
		children = templ.NopComponent
	}

	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if _, nested := FromContext(ctx); nested {
			return children.Render(ctx, w)
		}

		opts := optionsFrom(ctx)
		collector := NewCollector()
		if opts.Sheets != nil {
			for _, sheet := range opts.Sheets.List() {
				collector.Add("sheet:"+sheet.Name, sheet.CSS)
			}
		}

		var content bytes.Buffer
		if err := children.Render(WithCollector(ctx, collector), &content); err != nil {
			return err
		}

		if _, err := io.WriteString(w, "<div "+BoundaryAttr+">"); err != nil {
			return err
		}
		if collector.Len() > 0 {
			css := collector.CSS()
			if opts.Minify {
				css = Minify(css)
			}
			if _, err := io.WriteString(w, "<style "+StyleAttr+">"+escapeStyle(css)+"</style>"); err != nil {
				return err
			}
		}
		if _, err := content.WriteTo(w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</div>")
		return err
	})
}

// escapeStyle keeps rule text from closing the style element early.
func escapeStyle(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
