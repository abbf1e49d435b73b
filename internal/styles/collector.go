// Package styles implements the style-registry boundary used by the root
// layout.
//
// A boundary opens a per-render Collector and attaches it to the render
// context. Components rendered inside the boundary register the rules they
// need with Use or UseClass; once the children have rendered, the boundary
// emits every collected rule exactly once, ahead of the children markup.
package styles

import (
	"context"
	"strings"
	"sync"

	"github.com/a-h/templ"
)

type contextKey struct{}

// Rule is a single style definition registered during a render pass.
type Rule struct {
	ID  string
	CSS string
}

// Collector gathers style rules for one render pass.
// The first registration of an id wins and rules keep registration order.
type Collector struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	rules []Rule
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{seen: make(map[string]struct{})}
}

// Add registers a rule. It reports whether the rule was new.
func (c *Collector) Add(id, css string) bool {
	css = strings.TrimSpace(css)
	if id == "" || css == "" {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.seen[id]; ok {
		return false
	}
	c.seen[id] = struct{}{}
	c.rules = append(c.rules, Rule{ID: id, CSS: css})
	return true
}

// Rules returns a copy of the collected rules in registration order.
func (c *Collector) Rules() []Rule {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]Rule, len(c.rules))
	copy(result, c.rules)
	return result
}

// Len returns the number of collected rules.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rules)
}

// CSS joins the collected rules into a single stylesheet.
func (c *Collector) CSS() string {
	rules := c.Rules()
	parts := make([]string, 0, len(rules))
	for _, r := range rules {
		parts = append(parts, r.CSS)
	}
	return strings.Join(parts, "\n")
}

// WithCollector returns a context carrying c.
func WithCollector(ctx context.Context, c *Collector) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext returns the collector of the enclosing boundary, if any.
func FromContext(ctx context.Context) (*Collector, bool) {
	c, ok := ctx.Value(contextKey{}).(*Collector)
	return c, ok && c != nil
}

// Use registers css under id for the current render pass.
// Outside a boundary it does nothing.
func Use(ctx context.Context, id, css string) {
	if c, ok := FromContext(ctx); ok {
		c.Add(id, css)
	}
}

// UseClass registers a templ component class and returns its class name so
// it can be placed directly in a class attribute.
func UseClass(ctx context.Context, class templ.CSSClass) string {
	name := class.ClassName()
	if cc, ok := class.(templ.ComponentCSSClass); ok {
		Use(ctx, cc.ID, string(cc.Class))
	}
	return name
}
