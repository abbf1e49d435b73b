// Package boundary checks the server/client split of a component tree.
//
// Every Go file is a server component unless a comment before its package
// clause holds the client directive:
//
//	//rsc:client
//	package counter
//
// Server components may not import client-only packages or touch
// browser-only APIs; client components may not import server-only packages.
// Client entries are not rendered on the server; pages reference them with
// ClientReference instead.
package boundary

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path"
	"regexp"
	"strconv"
	"strings"
)

// ClientDirective marks a file as a client entry.
const ClientDirective = "//rsc:client"

// Module is the import surface of one component file.
type Module struct {
	Path    string
	Package string
	Client  bool
	Imports []Import
}

// Import is one import of a module and the package-level names used from it.
type Import struct {
	Path string
	Name string
	Pos  token.Position
	Uses []Use
}

// Use is a selector expression referencing an imported package.
type Use struct {
	Name string
	Pos  token.Position
}

var majorVersion = regexp.MustCompile(`^v[0-9]+$`)

// AnalyzeFile parses src and collects its directive, imports and the names
// used from each import.
func AnalyzeFile(filename string, src []byte) (*Module, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}

	module := &Module{
		Path:    filename,
		Package: file.Name.Name,
		Client:  hasClientDirective(file),
	}

	byName := make(map[string]int)
	for _, spec := range file.Imports {
		importPath, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: bad import path %s", filename, spec.Path.Value)
		}

		name := localName(importPath)
		if spec.Name != nil {
			name = spec.Name.Name
		}

		module.Imports = append(module.Imports, Import{
			Path: importPath,
			Name: name,
			Pos:  fset.Position(spec.Path.Pos()),
		})
		if name != "_" && name != "." {
			byName[name] = len(module.Imports) - 1
		}
	}

	ast.Inspect(file, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		ident, ok := sel.X.(*ast.Ident)
		if !ok {
			return true
		}
		if idx, ok := byName[ident.Name]; ok {
			module.Imports[idx].Uses = append(module.Imports[idx].Uses, Use{
				Name: sel.Sel.Name,
				Pos:  fset.Position(sel.Sel.Pos()),
			})
		}
		return true
	})

	return module, nil
}

func hasClientDirective(file *ast.File) bool {
	for _, group := range file.Comments {
		if group.End() >= file.Package {
			break
		}
		for _, c := range group.List {
			if strings.TrimSpace(c.Text) == ClientDirective {
				return true
			}
		}
	}
	return false
}

// localName guesses the package name of an unnamed import from its path.
func localName(importPath string) string {
	base := path.Base(importPath)
	if majorVersion.MatchString(base) {
		if dir := path.Dir(importPath); dir != "." {
			base = path.Base(dir)
		}
	}
	return strings.TrimPrefix(base, "go-")
}
