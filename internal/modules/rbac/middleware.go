package rbac

import (
	"encoding/json"
	"net/http"

	"github.com/tkaseba/mesa-pos-backend/internal/apperr"
)

// Require returns middleware that rejects the request with 403 unless the
// request principal holds every listed permission. Authentication (resolving
// the principal) happens upstream; a request with no principal is a 401.
func Require(perms ...Permission) func(http.Handler) http.Handler {
	return guard(All, perms...)
}

// RequireAny is Require with any-of semantics.
func RequireAny(perms ...Permission) func(http.Handler) http.Handler {
	return guard(Any, perms...)
}

func guard(mode Mode, perms ...Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFrom(r.Context())
			if !ok {
				writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "authentication required"})
				return
			}
			if !IsAuthorized(p.Role, mode, perms...) {
				tokens := make([]string, len(perms))
				for i, perm := range perms {
					tokens[i] = string(perm)
				}
				err := apperr.Forbidden(tokens...)
				writeJSON(w, apperr.Status(err), apperr.Body(err))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
