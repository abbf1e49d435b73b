package styles

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Sheet is a global stylesheet loaded from disk.
type Sheet struct {
	Name string
	CSS  string
}

// Sheets holds the global stylesheets of a directory. It is safe for
// concurrent use; Load replaces the whole set atomically.
type Sheets struct {
	mu     sync.RWMutex
	dir    string
	sheets []Sheet
}

// NewSheets creates an empty set backed by dir. Call Load to read it.
func NewSheets(dir string) *Sheets {
	return &Sheets{dir: dir}
}

// Dir returns the backing directory.
func (s *Sheets) Dir() string {
	return s.dir
}

// Load reads every *.css file of the directory in name order.
// A missing directory yields an empty set.
func (s *Sheets) Load() error {
	var loaded []Sheet

	if s.dir != "" {
		entries, err := os.ReadDir(s.dir)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("reading styles directory %s: %w", s.dir, err)
		}

		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			if entry.IsDir() || filepath.Ext(entry.Name()) != ".css" {
				continue
			}
			names = append(names, entry.Name())
		}
		sort.Strings(names)

		for _, name := range names {
			data, err := os.ReadFile(filepath.Join(s.dir, name))
			if err != nil {
				return fmt.Errorf("reading stylesheet %s: %w", name, err)
			}
			loaded = append(loaded, Sheet{
				Name: strings.TrimSuffix(name, ".css"),
				CSS:  string(data),
			})
		}
	}

	s.mu.Lock()
	s.sheets = loaded
	s.mu.Unlock()
	return nil
}

// List returns a copy of the loaded sheets.
func (s *Sheets) List() []Sheet {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Sheet, len(s.sheets))
	copy(result, s.sheets)
	return result
}
