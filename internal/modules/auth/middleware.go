package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tkaseba/mesa-pos-backend/internal/modules/rbac"
	"github.com/tkaseba/mesa-pos-backend/internal/modules/staff"
)

// Verifier authenticates requests: it validates the bearer token, confirms
// the staff member is still active, and places an immutable rbac.Principal
// into the request context for downstream permission guards.
type Verifier struct {
	staffRepo staff.Repository
	secret    []byte
}

func NewVerifier(staffRepo staff.Repository, secret []byte) *Verifier {
	return &Verifier{staffRepo: staffRepo, secret: secret}
}

func (v *Verifier) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			unauthorized(w, "authorization header missing")
			return
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			unauthorized(w, "invalid authorization header format")
			return
		}

		claims := &Claims{}
		_, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return v.secret, nil
		})
		if err != nil {
			unauthorized(w, "invalid token")
			return
		}

		staffID, err := uuid.Parse(claims.Subject)
		if err != nil {
			unauthorized(w, "invalid token")
			return
		}

		// The token is only a hint: role and outlet come from the current
		// staff record so revocation and role changes apply immediately.
		member, err := v.staffRepo.GetByID(r.Context(), staffID)
		if err != nil || !member.IsActive {
			unauthorized(w, "invalid token")
			return
		}

		principal := rbac.Principal{
			ID:       member.ID,
			Role:     member.Role,
			OutletID: member.OutletID,
			Active:   member.IsActive,
		}
		next.ServeHTTP(w, r.WithContext(rbac.WithPrincipal(r.Context(), principal)))
	})
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
