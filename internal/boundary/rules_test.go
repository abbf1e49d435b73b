package boundary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/rsc/internal/errors"
)

func analyze(t *testing.T, name, src string) *Module {
	t.Helper()
	m, err := AnalyzeFile(name, []byte(src))
	require.NoError(t, err)
	return m
}

func TestCheckServerGraph(t *testing.T) {
	server := analyze(t, "server.go", `package page

import (
	"syscall/js"
	"github.com/conneroisu/rsc/clientonly"
)

var _ = clientonly.Marker
var doc = js.Global().Get("document")
`)

	diags := Check([]*Module{server}, DefaultRules())
	require.Len(t, diags, 3)

	assert.Equal(t, `Disallowed import of "syscall/js" in the server component graph.`, diags[0].Message)
	assert.Equal(t, 4, diags[0].Line)
	assert.Equal(t, `Disallowed import of "github.com/conneroisu/rsc/clientonly" in the server component graph.`, diags[1].Message)
	assert.Equal(t, `Disallowed API "syscall/js.Global" in the server component graph.`, diags[2].Message)
	assert.Equal(t, 9, diags[2].Line)
}

func TestCheckClientGraph(t *testing.T) {
	client := analyze(t, "client.go", `//rsc:client
package widget

import (
	"database/sql"
	"syscall/js"
)

var _ sql.DB
var doc = js.Global()
`)

	diags := Check([]*Module{client}, DefaultRules())
	require.Len(t, diags, 1, "client entries may use browser APIs")
	assert.Equal(t, `Disallowed import of "database/sql" in the client component graph.`, diags[0].Message)
	assert.Equal(t, "client.go:5:2: "+diags[0].Message, diags[0].String())
}

func TestCheckClean(t *testing.T) {
	m := analyze(t, "ok.go", "package ok\n\nimport \"fmt\"\n\nvar _ = fmt.Sprint\n")
	assert.Empty(t, Check([]*Module{m}, DefaultRules()))
	assert.NoError(t, AsError(nil))
}

func TestCheckOrdersByFile(t *testing.T) {
	b := analyze(t, "b.go", "package p\n\nimport \"syscall/js\"\n")
	a := analyze(t, "a.go", "package p\n\nimport \"syscall/js\"\n")

	diags := Check([]*Module{b, a}, DefaultRules())
	require.Len(t, diags, 2)
	assert.Equal(t, "a.go", diags[0].File)
	assert.Equal(t, "b.go", diags[1].File)
}

func TestRulesMerge(t *testing.T) {
	base := DefaultRules()
	merged := base.Merge([]string{"unsafe"}, []string{"net"})

	assert.Contains(t, merged.ServerForbiddenImports, "unsafe")
	assert.Contains(t, merged.ClientForbiddenImports, "net")
	assert.NotContains(t, base.ServerForbiddenImports, "unsafe")

	m := analyze(t, "u.go", "package p\n\nimport \"unsafe\"\n")
	assert.Len(t, Check([]*Module{m}, merged), 1)
	assert.Empty(t, Check([]*Module{m}, base))
}

func TestRulesMergeCopiesAPIs(t *testing.T) {
	base := DefaultRules()
	merged := base.Merge(nil, nil)

	merged.ServerForbiddenAPIs["fmt"] = []string{"Println"}
	merged.ServerForbiddenAPIs["syscall/js"][0] = "ValueOf"

	assert.NotContains(t, base.ServerForbiddenAPIs, "fmt")
	assert.Equal(t, "Global", base.ServerForbiddenAPIs["syscall/js"][0])
}

func TestAsError(t *testing.T) {
	err := AsError([]Diagnostic{{File: "a.go", Line: 1, Column: 2, Message: "bad"}})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeBoundary))
	assert.Contains(t, err.Error(), "a.go:1:2 bad")
}
