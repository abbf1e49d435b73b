package boundary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeFileServer(t *testing.T) {
	src := `package pages

import (
	"fmt"
	chi "github.com/go-chi/chi/v5"
	"github.com/a-h/templ"
)

func Page() templ.Component {
	_ = chi.NewRouter()
	fmt.Println("x")
	return templ.NopComponent
}
`
	m, err := AnalyzeFile("pages/page.go", []byte(src))
	require.NoError(t, err)

	assert.Equal(t, "pages", m.Package)
	assert.False(t, m.Client)
	require.Len(t, m.Imports, 3)

	assert.Equal(t, "fmt", m.Imports[0].Path)
	assert.Equal(t, "fmt", m.Imports[0].Name)
	require.Len(t, m.Imports[0].Uses, 1)
	assert.Equal(t, "Println", m.Imports[0].Uses[0].Name)

	assert.Equal(t, "chi", m.Imports[1].Name)
	assert.Equal(t, "templ", m.Imports[2].Name)
	assert.Len(t, m.Imports[2].Uses, 2)
	assert.Equal(t, 4, m.Imports[0].Pos.Line)
}

func TestAnalyzeFileClientDirective(t *testing.T) {
	testCases := []struct {
		name   string
		src    string
		client bool
	}{
		{"directive", "//rsc:client\npackage counter\n", true},
		{"directive after build tag", "//go:build js\n\n//rsc:client\n\npackage counter\n", true},
		{"directive with spaces", "  //rsc:client  \npackage counter\n", true},
		{"no directive", "package counter\n", false},
		{"directive after package", "package counter\n\n//rsc:client\nvar x = 1\n", false},
		{"similar comment", "// rsc:client\npackage counter\n", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := AnalyzeFile("counter.go", []byte(tc.src))
			require.NoError(t, err)
			assert.Equal(t, tc.client, m.Client)
		})
	}
}

func TestAnalyzeFileNamedAndBlankImports(t *testing.T) {
	src := `package p

import (
	_ "embed"
	. "strings"
	js "syscall/js"
)

var _ = ToUpper("x")
var g = js.Global()
`
	m, err := AnalyzeFile("p.go", []byte(src))
	require.NoError(t, err)

	require.Len(t, m.Imports, 3)
	assert.Empty(t, m.Imports[0].Uses)
	assert.Empty(t, m.Imports[1].Uses)
	require.Len(t, m.Imports[2].Uses, 1)
	assert.Equal(t, "Global", m.Imports[2].Uses[0].Name)
}

func TestAnalyzeFileSyntaxError(t *testing.T) {
	_, err := AnalyzeFile("broken.go", []byte("package"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.go")
}

func TestLocalName(t *testing.T) {
	testCases := map[string]string{
		"fmt":                      "fmt",
		"syscall/js":               "js",
		"github.com/go-chi/chi/v5": "chi",
		"github.com/a-h/templ":     "templ",
		"gopkg.in/yaml.v3":         "yaml.v3",
		"github.com/x/go-cache":    "cache",
	}
	for importPath, want := range testCases {
		t.Run(importPath, func(t *testing.T) {
			assert.Equal(t, want, localName(importPath))
		})
	}
}
