package httpapi

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/server/auth"
)

// Authenticate verifies the bearer token and injects the caller identity
// into the request context. Requests without a valid token never reach the
// handlers behind it.
func (h *Handlers) Authenticate(secretKey []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				h.sendError(w, r, common.ErrorUnauthorized)
				return
			}

			id, err := auth.ParseToken(token, secretKey)
			if err != nil {
				h.sendError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.ContextWithIdentity(r.Context(), id)))
		})
	}
}

// Require gates a route on the caller holding any of the given
// capabilities. All permission checks go through auth.Authorize; handlers
// never inspect capability flags themselves.
func (h *Handlers) Require(caps ...auth.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !auth.Authorize(auth.IdentityFromContext(r.Context()), caps...) {
				h.sendError(w, r, common.ErrorPermissionDenied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
