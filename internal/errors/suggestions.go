package errors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Suggestion represents a suggestion for fixing an error
type Suggestion struct {
	Title       string
	Description string
	Command     string
	Example     string
}

// PageNotFoundSuggestions suggests registered pages close to name.
func PageNotFoundSuggestions(name string, available []string) []Suggestion {
	var matches []string
	for _, candidate := range available {
		if strings.Contains(candidate, name) || strings.Contains(name, candidate) ||
			levenshtein.ComputeDistance(name, candidate) <= 2 {
			matches = append(matches, candidate)
		}
	}
	sort.Strings(matches)

	var suggestions []Suggestion
	for _, candidate := range matches {
		suggestions = append(suggestions, Suggestion{
			Title:   fmt.Sprintf("Did you mean %q?", candidate),
			Command: "rsc render " + candidate,
		})
	}

	if len(available) > 0 {
		sorted := append([]string(nil), available...)
		sort.Strings(sorted)
		suggestions = append(suggestions, Suggestion{
			Title:       "Available pages",
			Description: strings.Join(sorted, ", "),
		})
	}

	return suggestions
}

// ServerStartSuggestions explains common listen failures.
func ServerStartSuggestions(err error, port int) []Suggestion {
	var suggestions []Suggestion
	errStr := err.Error()

	if strings.Contains(errStr, "address already in use") {
		suggestions = append(suggestions,
			Suggestion{
				Title:       "Port already in use",
				Description: fmt.Sprintf("Port %d is already being used by another process", port),
				Command:     fmt.Sprintf("lsof -i :%d", port),
			},
			Suggestion{
				Title:       "Use a different port",
				Description: "Start the server on a different port",
				Command:     fmt.Sprintf("rsc serve --port %d", port+1),
			},
		)
	}

	if strings.Contains(errStr, "permission denied") && port < 1024 {
		suggestions = append(suggestions, Suggestion{
			Title:       "Use unprivileged port",
			Description: "Ports below 1024 require root privileges",
			Command:     "rsc serve --port 8080",
		})
	}

	return suggestions
}

// ConfigSuggestions points at the config sources for load failures.
func ConfigSuggestions(err error) []Suggestion {
	suggestions := []Suggestion{
		{
			Title:       "Show the effective configuration",
			Description: "Print the values rsc resolved from file, environment and flags",
			Command:     "rsc config",
		},
	}

	errStr := err.Error()
	if strings.Contains(errStr, "yaml") || strings.Contains(errStr, "unmarshal") || strings.Contains(errStr, "decoding") {
		suggestions = append(suggestions, Suggestion{
			Title:       "Fix YAML syntax",
			Description: "There's a syntax error in .rsc.yml",
			Example:     "Use proper indentation and avoid tabs",
		})
	}

	if strings.Contains(errStr, "styles") {
		suggestions = append(suggestions, Suggestion{
			Title:       "Check the styles directory",
			Description: "styles.dir must be a relative path inside the project",
			Example:     "styles:\n  dir: styles",
		})
	}

	return suggestions
}

// FormatSuggestions formats suggestions into a user-friendly string
func FormatSuggestions(title string, suggestions []Suggestion) string {
	if len(suggestions) == 0 {
		return title
	}

	var output strings.Builder
	output.WriteString(title + "\n\n")
	output.WriteString("Suggestions:\n")

	for i, suggestion := range suggestions {
		output.WriteString(fmt.Sprintf("  %d. %s\n", i+1, suggestion.Title))
		if suggestion.Description != "" {
			output.WriteString(fmt.Sprintf("     %s\n", suggestion.Description))
		}
		if suggestion.Command != "" {
			output.WriteString(fmt.Sprintf("     Run: %s\n", suggestion.Command))
		}
		if suggestion.Example != "" {
			output.WriteString(fmt.Sprintf("     Example: %s\n", suggestion.Example))
		}
	}

	return output.String()
}

// EnhancedError wraps an error with suggestions
type EnhancedError struct {
	Err         error
	Suggestions []Suggestion
}

// Error implements the error interface
func (e *EnhancedError) Error() string {
	return FormatSuggestions(e.Err.Error(), e.Suggestions)
}

// Unwrap returns the original error
func (e *EnhancedError) Unwrap() error {
	return e.Err
}

// WithSuggestions attaches suggestions to err. It returns err unchanged when
// there is nothing to suggest.
func WithSuggestions(err error, suggestions []Suggestion) error {
	if err == nil || len(suggestions) == 0 {
		return err
	}
	return &EnhancedError{Err: err, Suggestions: suggestions}
}
