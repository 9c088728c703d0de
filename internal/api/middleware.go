package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/finsift/finsift/internal/logging"
)

// requestLogger logs each request through the logging abstraction instead of
// chi's stdlib logger, so request lines share format and level control with
// the rest of the service.
func requestLogger(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.WithFields(
				logging.Field{Key: logging.FieldRequestID, Value: middleware.GetReqID(r.Context())},
				logging.Field{Key: "method", Value: r.Method},
				logging.Field{Key: logging.FieldPath, Value: r.URL.Path},
				logging.Field{Key: "status", Value: ww.Status()},
				logging.Field{Key: logging.FieldDuration, Value: time.Since(start).Milliseconds()},
			).Info("request completed")
		})
	}
}
