// Package requesttime captures one "now" per request so every timestamp a
// request writes (paid_at, audit rows, resolved_at) agrees.
package requesttime

import (
	"net/http"
	"time"

	"rentwise/pkg/requestcontext"
)

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
