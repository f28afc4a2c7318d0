// Package requesttime pins one "now" per HTTP request so status snapshots and
// logs within the request agree on the time.
package requesttime

import (
	"net/http"
	"time"

	"idscan/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
