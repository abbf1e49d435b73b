// Package pages holds the named pages the server wraps in the root layout.
package pages

import (
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"sync"

	"github.com/a-h/templ"
)

// Page builds the content component for a request.
type Page func(r *http.Request) templ.Component

// Info describes a registered page.
type Info struct {
	Name  string
	Title string
	Page  Page
}

// Path returns the URL the server mounts the page at.
func (i Info) Path() string {
	if i.Name == HomeName {
		return "/"
	}
	return "/p/" + i.Name
}

var validName = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Registry manages the named pages.
type Registry struct {
	pages map[string]Info
	mutex sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{pages: make(map[string]Info)}
}

// Register adds or replaces a page.
func (r *Registry) Register(name, title string, page Page) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("invalid page name %q", name)
	}
	if page == nil {
		return fmt.Errorf("page %q has no content", name)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.pages[name] = Info{Name: name, Title: title, Page: page}
	return nil
}

// Get returns the page registered under name.
func (r *Registry) Get(name string) (Info, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	info, ok := r.pages[name]
	return info, ok
}

// List returns all pages sorted by name, with home first.
func (r *Registry) List() []Info {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	list := make([]Info, 0, len(r.pages))
	for _, info := range r.pages {
		list = append(list, info)
	}
	sort.Slice(list, func(i, j int) bool {
		if (list[i].Name == HomeName) != (list[j].Name == HomeName) {
			return list[i].Name == HomeName
		}
		return list[i].Name < list[j].Name
	})
	return list
}

// Len returns the number of registered pages.
func (r *Registry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.pages)
}
