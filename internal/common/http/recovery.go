package http

import (
	"net/http"
	"runtime/debug"

	"github.com/HarryOMalley/eagle-bank/internal/common/logger"
)

// RecoveryMiddleware converts handler panics into the same opaque envelope
// other internal failures use. It sits outside the trace middleware, so the
// envelope carries no trace id.
func RecoveryMiddleware(log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.Criticalf("panic recovered: %v\n%s", err, debug.Stack())
					WriteErrorEnvelope(w, http.StatusInternalServerError, CodeUnknown, "internal server error", nil, "")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
