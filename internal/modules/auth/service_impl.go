package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/tkaseba/mesa-pos-backend/internal/modules/staff"
)

var errInvalidCredentials = errors.New("invalid credentials")

type service struct {
	staffRepo staff.Repository
	secret    []byte
	tokenTTL  time.Duration
}

// NewService creates a new auth service signing tokens with secret.
func NewService(staffRepo staff.Repository, secret []byte) Service {
	return &service{staffRepo: staffRepo, secret: secret, tokenTTL: 24 * time.Hour}
}

func (s *service) Login(ctx context.Context, email, password string) (string, error) {
	member, err := s.staffRepo.GetByEmail(ctx, email)
	if err != nil {
		// Same error for unknown email and wrong password.
		return "", errInvalidCredentials
	}
	if !member.IsActive {
		return "", errInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(password)); err != nil {
		return "", errInvalidCredentials
	}

	now := time.Now()
	claims := &Claims{
		Role:     string(member.Role),
		OutletID: member.OutletID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   member.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
