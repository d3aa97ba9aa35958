package middleware

import (
	"net/http"
	"strings"

	"github.com/partshub/autospares-backend/pkg/logger"
)

// SessionKeyHeader carries the anonymous cart identity.
const SessionKeyHeader = "X-Session-Key"

// SessionKey copies the anonymous session key header into the request context.
// Validation of the key against the cart identity rules happens in the cart
// layer; the middleware only transports it.
func SessionKey(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(SessionKeyHeader))
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithSessionKey(r.Context(), key)
			if logg != nil {
				ctx = logg.WithSessionKey(ctx, key)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
