package boundary

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/conneroisu/rsc/internal/errors"
)

var skippedDirs = map[string]struct{}{
	"vendor":       {},
	"testdata":     {},
	"node_modules": {},
}

// ScanDir analyzes every non-test Go file below dir.
func ScanDir(dir string) ([]*Module, error) {
	var modules []*Module

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		name := d.Name()
		if d.IsDir() {
			if p == dir {
				return nil
			}
			if _, skip := skippedDirs[name]; skip || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
				return filepath.SkipDir
			}
			return nil
		}

		if filepath.Ext(name) != ".go" || strings.HasSuffix(name, "_test.go") {
			return nil
		}

		src, err := os.ReadFile(p)
		if err != nil {
			return errors.WrapIO(err, errors.ErrCodeFileNotFound, "reading "+p)
		}
		module, err := AnalyzeFile(p, src)
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeBoundary, errors.ErrCodeParseFailed, "analyzing "+p)
		}
		modules = append(modules, module)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return modules, nil
}
