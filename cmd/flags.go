package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// outputFormat is a pflag.Value restricted to the supported output formats.
type outputFormat struct {
	value   string
	allowed []string
}

var _ pflag.Value = (*outputFormat)(nil)

func newOutputFormat(def string, allowed ...string) *outputFormat {
	return &outputFormat{value: def, allowed: allowed}
}

func (f *outputFormat) String() string { return f.value }

func (f *outputFormat) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, a := range f.allowed {
		if s == a {
			f.value = s
			return nil
		}
	}
	return fmt.Errorf("must be one of %s", strings.Join(f.allowed, ", "))
}

func (f *outputFormat) Type() string { return "format" }
