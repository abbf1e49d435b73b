package boundary

import (
	"fmt"
	"sort"

	"github.com/conneroisu/rsc/internal/errors"
)

// Marker packages. Importing one pins a file to one side of the graph.
const (
	ClientOnlyPackage = "github.com/conneroisu/rsc/clientonly"
	ServerOnlyPackage = "github.com/conneroisu/rsc/serveronly"
)

// Rules lists what each side of the graph may not reach.
type Rules struct {
	ServerForbiddenImports []string
	ClientForbiddenImports []string
	// ServerForbiddenAPIs maps an import path to names that server
	// components may not use from it.
	ServerForbiddenAPIs map[string][]string
}

// DefaultRules returns the built-in rule set.
func DefaultRules() Rules {
	return Rules{
		ServerForbiddenImports: []string{
			ClientOnlyPackage,
			"syscall/js",
		},
		ClientForbiddenImports: []string{
			ServerOnlyPackage,
			"database/sql",
			"os/exec",
		},
		ServerForbiddenAPIs: map[string][]string{
			"syscall/js": {"Global", "FuncOf", "CopyBytesToJS", "CopyBytesToGo"},
		},
	}
}

// Merge returns a copy of r with the extra forbidden imports appended.
func (r Rules) Merge(serverImports, clientImports []string) Rules {
	merged := Rules{
		ServerForbiddenImports: append(append([]string{}, r.ServerForbiddenImports...), serverImports...),
		ClientForbiddenImports: append(append([]string{}, r.ClientForbiddenImports...), clientImports...),
		ServerForbiddenAPIs:    make(map[string][]string, len(r.ServerForbiddenAPIs)),
	}
	for importPath, names := range r.ServerForbiddenAPIs {
		merged.ServerForbiddenAPIs[importPath] = append([]string{}, names...)
	}
	return merged
}

// Diagnostic is one rule violation.
type Diagnostic struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Message string `json:"message"`
}

// String formats d as file:line:column: message.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s", d.File, d.Line, d.Column, d.Message)
}

// Err converts d into a boundary error.
func (d Diagnostic) Err() error {
	return errors.NewBoundaryError(errors.ErrCodeGraphViolation, d.Message).
		WithLocation(d.File, d.Line, d.Column)
}

// Check applies rules to modules. Server modules are checked against the
// server rules and client modules against the client rules. Diagnostics are
// ordered by file and position.
func Check(modules []*Module, rules Rules) []Diagnostic {
	serverImports := toSet(rules.ServerForbiddenImports)
	clientImports := toSet(rules.ClientForbiddenImports)
	serverAPIs := make(map[string]map[string]struct{}, len(rules.ServerForbiddenAPIs))
	for importPath, names := range rules.ServerForbiddenAPIs {
		serverAPIs[importPath] = toSet(names)
	}

	var diags []Diagnostic
	for _, m := range modules {
		for _, imp := range m.Imports {
			if m.Client {
				if _, bad := clientImports[imp.Path]; bad {
					diags = append(diags, Diagnostic{
						File:    m.Path,
						Line:    imp.Pos.Line,
						Column:  imp.Pos.Column,
						Message: fmt.Sprintf("Disallowed import of %q in the client component graph.", imp.Path),
					})
				}
				continue
			}

			if _, bad := serverImports[imp.Path]; bad {
				diags = append(diags, Diagnostic{
					File:    m.Path,
					Line:    imp.Pos.Line,
					Column:  imp.Pos.Column,
					Message: fmt.Sprintf("Disallowed import of %q in the server component graph.", imp.Path),
				})
			}
			if apis, ok := serverAPIs[imp.Path]; ok {
				for _, use := range imp.Uses {
					if _, bad := apis[use.Name]; bad {
						diags = append(diags, Diagnostic{
							File:    m.Path,
							Line:    use.Pos.Line,
							Column:  use.Pos.Column,
							Message: fmt.Sprintf("Disallowed API \"%s.%s\" in the server component graph.", imp.Path, use.Name),
						})
					}
				}
			}
		}
	}

	sort.SliceStable(diags, func(i, j int) bool {
		if diags[i].File != diags[j].File {
			return diags[i].File < diags[j].File
		}
		if diags[i].Line != diags[j].Line {
			return diags[i].Line < diags[j].Line
		}
		return diags[i].Column < diags[j].Column
	})
	return diags
}

// AsError joins diagnostics into one error, or returns nil when empty.
func AsError(diags []Diagnostic) error {
	if len(diags) == 0 {
		return nil
	}
	errs := make([]error, 0, len(diags))
	for _, d := range diags {
		errs = append(errs, d.Err())
	}
	return errors.Join(errs...)
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
