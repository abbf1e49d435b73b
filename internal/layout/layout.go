// Package layout provides the root document shell every page renders in.
package layout

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/conneroisu/rsc/internal/styles"
)

// Title is the static document title.
const Title = "RSC"

// AppLayout wraps children in the html document: a head holding the title
// and a body whose only element is the style-registry boundary around
// children. It keeps no state; nil children render an empty boundary.
//
// Errors from children or the boundary are returned unmodified.
func AppLayout(children templ.Component) templ.Component {
	boundary := styles.Registry(children)

	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if _, err := io.WriteString(w, "<!DOCTYPE html><html><head><title>"+templ.EscapeString(Title)+"</title></head><body>"); err != nil {
			return err
		}
		if err := boundary.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</body></html>")
		return err
	})
}
