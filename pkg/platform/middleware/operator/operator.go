// Package operator guards mutating scanner controls behind a shared token.
package operator

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"idscan/pkg/requestcontext"
)

// TokenHeader carries the operator token.
const TokenHeader = "X-Operator-Token"

// RequireToken rejects requests whose X-Operator-Token does not match
// expected. An empty expected token disables the guard.
func RequireToken(expected string, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		if expected == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(TokenHeader)
			if subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
				ctx := r.Context()
				logger.WarnContext(ctx, "operator token mismatch",
					"request_id", requestcontext.RequestID(ctx),
					"client_ip", requestcontext.ClientIP(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"operator token required"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
