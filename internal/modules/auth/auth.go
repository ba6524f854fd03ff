package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

// Service defines the interface for authentication-related business logic.
type Service interface {
	// Login verifies credentials and returns a signed session token.
	Login(ctx context.Context, email, password string) (string, error)
}

// Claims is the session token payload. Role and outlet ride along so the
// token alone names the acting principal's scope; the middleware still
// re-reads the staff record so deactivation and role changes take effect
// before expiry.
type Claims struct {
	Role     string `json:"role"`
	OutletID string `json:"outlet_id"`
	jwt.RegisteredClaims
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
