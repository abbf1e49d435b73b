package layout_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html/atom"

	"github.com/conneroisu/rsc/internal/document"
	"github.com/conneroisu/rsc/internal/layout"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestAppLayoutMarkup(t *testing.T) {
	out := renderString(t, layout.AppLayout(templ.Raw("<main>page</main>")))

	assert.Equal(t,
		`<!DOCTYPE html><html><head><title>RSC</title></head><body><div data-rsc-style-registry><main>page</main></div></body></html>`,
		out)
}

func TestAppLayoutStructure(t *testing.T) {
	tree, _, err := document.Render(context.Background(), layout.AppLayout(templ.Raw("<main>page</main>")))
	require.NoError(t, err)
	require.NoError(t, document.Verify(tree))

	children := document.Elements(tree.HTML())
	require.Len(t, children, 2)
	assert.Equal(t, atom.Head, children[0].DataAtom)
	assert.Equal(t, atom.Body, children[1].DataAtom)
	assert.Equal(t, layout.Title, tree.Title())

	content, err := tree.Content()
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(content, "<main>page</main>"))
}

func TestAppLayoutNilChildren(t *testing.T) {
	out := renderString(t, layout.AppLayout(nil))

	assert.Contains(t, out, "<title>RSC</title>")
	assert.Contains(t, out, "<body><div data-rsc-style-registry></div></body>")
}

func TestAppLayoutIdempotent(t *testing.T) {
	c := layout.AppLayout(templ.Raw("<p>same</p>"))

	first := renderString(t, c)
	second := renderString(t, c)
	assert.Equal(t, first, second)
}

func TestAppLayoutConcurrentRenders(t *testing.T) {
	c := layout.AppLayout(templ.Raw("<p>shared</p>"))
	want := renderString(t, c)

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var buf bytes.Buffer
			if err := c.Render(context.Background(), &buf); err == nil {
				results[i] = buf.String()
			}
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestAppLayoutPropagatesChildError(t *testing.T) {
	boom := errors.New("child failed")
	failing := templ.ComponentFunc(func(context.Context, io.Writer) error { return boom })

	var buf bytes.Buffer
	err := layout.AppLayout(failing).Render(context.Background(), &buf)

	assert.Same(t, boom, err)
	assert.NotContains(t, buf.String(), "</html>")
}

func TestAppLayoutCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := layout.AppLayout(templ.Raw("x")).Render(ctx, &buf)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, buf.String())
}
