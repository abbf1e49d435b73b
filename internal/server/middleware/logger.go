// Package middleware holds the HTTP middleware mounted on the router.
package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/conneroisu/rsc/internal/logging"
)

// Logger returns a middleware that logs HTTP requests.
func Logger(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			logger.Info(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"size", ww.BytesWritten(),
				"duration", time.Since(start),
				"ip", r.RemoteAddr,
				"request_id", chimiddleware.GetReqID(r.Context()),
			)
		})
	}
}
