package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinify(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"simple rule", ".a {\n  color: red;\n}\n", ".a{color:red}"},
		{"space around colon", "a { color : red }", "a{color:red}"},
		{"comments", "/* head */ .a { /* inner */ margin: 0 }", ".a{margin:0}"},
		{"selector list", "h1 ,\n h2 > span { display: none ; }", "h1,h2>span{display:none}"},
		{"multiple values", ".m { margin: 0   auto  1px; }", ".m{margin:0 auto 1px}"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Minify(tc.input))
		})
	}
}

func TestMinifyKeepsQuotedContent(t *testing.T) {
	out := Minify(`.q::before { content: "a  b ; }"; }`)
	assert.Contains(t, out, `"a  b ; }"`)
}
