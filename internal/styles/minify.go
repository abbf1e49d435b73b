package styles

import (
	"sync"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
)

const cssMediaType = "text/css"

var (
	minifierOnce sync.Once
	minifier     *minify.M
)

func cssMinifier() *minify.M {
	minifierOnce.Do(func() {
		minifier = minify.New()
		minifier.AddFunc(cssMediaType, css.Minify)
	})
	return minifier
}

// Minify compacts css. Input the minifier cannot parse is returned as is.
func Minify(stylesheet string) string {
	out, err := cssMinifier().String(cssMediaType, stylesheet)
	if err != nil {
		return stylesheet
	}
	return out
}
