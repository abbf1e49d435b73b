package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/conneroisu/rsc/internal/logging"
)

// Recovery turns a panic in a handler into a 500 response.
func Recovery(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.Error(r.Context(), fmt.Errorf("panic: %v", rec), "Handler panicked",
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
