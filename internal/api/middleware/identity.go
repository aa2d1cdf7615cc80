package middleware

import (
	"context"
	"net/http"

	"github.com/servesync/backend/internal/domain/entities"
)

type contextKey string

const identityKey contextKey = "caller_identity"

// IdentityMiddleware extracts the caller identity from the X-User-ID and
// X-User-Role headers and stores it on the request context. Requests
// without the headers pass through with an empty identity; handlers that
// need one reject it there.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := entities.Identity{
			UserID: r.Header.Get("X-User-ID"),
			Role:   entities.Role(r.Header.Get("X-User-Role")),
		}
		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFromContext returns the caller identity stored by
// IdentityMiddleware, or a zero identity when none was set.
func IdentityFromContext(ctx context.Context) entities.Identity {
	if identity, ok := ctx.Value(identityKey).(entities.Identity); ok {
		return identity
	}
	return entities.Identity{}
}
