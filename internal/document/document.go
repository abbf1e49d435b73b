// Package document parses rendered pages back into an HTML tree and checks
// that the tree has the shape the root layout guarantees.
package document

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/conneroisu/rsc/internal/errors"
	"github.com/conneroisu/rsc/internal/layout"
	"github.com/conneroisu/rsc/internal/styles"
)

// Tree is a parsed HTML document.
type Tree struct {
	Root *html.Node
}

// Parse parses an HTML document.
func Parse(r io.Reader) (*Tree, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, errors.ErrCodeParseFailed, "parsing document")
	}
	return &Tree{Root: root}, nil
}

// Render renders c and parses the result.
func Render(ctx context.Context, c templ.Component) (*Tree, []byte, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return nil, nil, err
	}

	tree, err := Parse(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, nil, err
	}
	return tree, buf.Bytes(), nil
}

// HTML returns the html element.
func (t *Tree) HTML() *html.Node {
	return firstChild(t.Root, atom.Html)
}

// Head returns the head element.
func (t *Tree) Head() *html.Node {
	return firstChild(t.HTML(), atom.Head)
}

// Body returns the body element.
func (t *Tree) Body() *html.Node {
	return firstChild(t.HTML(), atom.Body)
}

// Title returns the text of the head's title element.
func (t *Tree) Title() string {
	title := firstChild(t.Head(), atom.Title)
	if title == nil {
		return ""
	}
	return textContent(title)
}

// Boundary returns the style-registry boundary element directly under body.
func (t *Tree) Boundary() *html.Node {
	for _, n := range Elements(t.Body()) {
		if hasAttr(n, styles.BoundaryAttr) {
			return n
		}
	}
	return nil
}

// Styles returns the stylesheet emitted by the boundary.
func (t *Tree) Styles() string {
	b := t.Boundary()
	if b == nil {
		return ""
	}
	for _, n := range Elements(b) {
		if n.DataAtom == atom.Style && hasAttr(n, styles.StyleAttr) {
			return textContent(n)
		}
	}
	return ""
}

// Content renders the boundary's children, without the emitted
// stylesheet, back to HTML.
func (t *Tree) Content() (string, error) {
	b := t.Boundary()
	if b == nil {
		return "", nil
	}

	var buf bytes.Buffer
	for c := b.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Style && hasAttr(c, styles.StyleAttr) {
			continue
		}
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// Verify checks that t is a document produced by the root layout: the html
// element holds head then body, the title is the layout title, and the
// body's only content is one style-registry boundary.
func Verify(t *Tree) error {
	root := t.HTML()
	if root == nil {
		return invalid("document has no html element")
	}

	children := Elements(root)
	if len(children) != 2 || children[0].DataAtom != atom.Head || children[1].DataAtom != atom.Body {
		return invalid(fmt.Sprintf("html element must contain head then body, found [%s]", names(children)))
	}

	if title := t.Title(); title != layout.Title {
		return invalid(fmt.Sprintf("title is %q, want %q", title, layout.Title))
	}

	body := children[1]
	inBody := Elements(body)
	if len(inBody) != 1 || !hasAttr(inBody[0], styles.BoundaryAttr) {
		return invalid(fmt.Sprintf("body must contain exactly the style registry boundary, found [%s]", names(inBody)))
	}
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode && strings.TrimSpace(c.Data) != "" {
			return invalid("body contains text outside the style registry boundary")
		}
	}

	return nil
}

func invalid(msg string) error {
	return errors.NewValidationError(errors.ErrCodeDocumentInvalid, msg)
}

// Elements returns the element children of n.
func Elements(n *html.Node) []*html.Node {
	if n == nil {
		return nil
	}
	var result []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			result = append(result, c)
		}
	}
	return result
}

func firstChild(n *html.Node, a atom.Atom) *html.Node {
	for _, c := range Elements(n) {
		if c.DataAtom == a {
			return c
		}
	}
	return nil
}

func hasAttr(n *html.Node, key string) bool {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func names(nodes []*html.Node) string {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		parts = append(parts, n.Data)
	}
	return strings.Join(parts, " ")
}
