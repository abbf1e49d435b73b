package pages

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/rsc/internal/boundary"
	"github.com/conneroisu/rsc/internal/styles"
)

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("docs", "Docs", About()))

	info, ok := r.Get("docs")
	require.True(t, ok)
	assert.Equal(t, "Docs", info.Title)
	assert.Equal(t, "/p/docs", info.Path())

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRegistryRejectsInvalid(t *testing.T) {
	r := NewRegistry()

	tests := []string{"", "Upper", "has space", "-leading", "../etc"}
	for _, name := range tests {
		assert.Error(t, r.Register(name, "x", About()), name)
	}
	assert.Error(t, r.Register("ok", "x", nil))
	assert.Equal(t, 0, r.Len())
}

func TestRegistryListOrder(t *testing.T) {
	r := Default()
	require.NoError(t, r.Register("zeta", "Zeta", About()))
	require.NoError(t, r.Register("alpha", "Alpha", About()))

	var names []string
	for _, info := range r.List() {
		names = append(names, info.Name)
	}
	assert.Equal(t, []string{"home", "about", "alpha", "counter", "zeta"}, names)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Home", Label("home"))
	assert.Equal(t, "Getting Started", Label("getting-started"))
}

func TestHomeListsPagesAndRegistersStyle(t *testing.T) {
	r := Default()
	home, ok := r.Get(HomeName)
	require.True(t, ok)
	assert.Equal(t, "/", home.Path())

	collector := styles.NewCollector()
	ctx := styles.WithCollector(context.Background(), collector)

	var buf bytes.Buffer
	req := httptest.NewRequest("GET", "/", nil)
	require.NoError(t, home.Page(req).Render(ctx, &buf))

	out := buf.String()
	assert.Contains(t, out, `<a href="/">Home</a>`)
	assert.Contains(t, out, `<a href="/p/about">About</a>`)
	assert.Equal(t, 1, collector.Len())
	assert.Contains(t, collector.CSS(), "nav.rsc-nav")
}

func TestNotFoundEscapesName(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NotFound("<x>").Render(context.Background(), &buf))

	assert.Contains(t, buf.String(), "&lt;x&gt;")
	assert.False(t, strings.Contains(buf.String(), "<x>"))
}

func TestCounterRendersClientReference(t *testing.T) {
	info, ok := Default().Get(CounterName)
	require.True(t, ok)
	assert.Equal(t, "/p/counter", info.Path())

	var buf bytes.Buffer
	require.NoError(t, info.Page(httptest.NewRequest("GET", "/p/counter", nil)).Render(context.Background(), &buf))

	assert.Equal(t,
		`<main><h1>Counter</h1><template data-rsc-client-ref="internal/pages/counter_client.go"></template></main>`,
		buf.String())
}

func TestCounterEntryIsClientComponent(t *testing.T) {
	modules, err := boundary.ScanDir(".")
	require.NoError(t, err)

	manifest := boundary.BuildManifest(modules)
	require.Len(t, manifest.Clients, 1)
	assert.Equal(t, filepath.Base(CounterEntry), manifest.Clients[0].Path)
	assert.Equal(t, "pages", manifest.Clients[0].Package)

	assert.Empty(t, boundary.Check(modules, boundary.DefaultRules()))
}
