package service

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/courierpwa/courier-ops/internal/core/domain"
	"github.com/courierpwa/courier-ops/internal/core/ports"
)

// AuthService exchanges identity-provider tokens for session tokens.
type AuthService struct {
	verifier  ports.IdentityVerifier
	staff     ports.StaffService
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(verifier ports.IdentityVerifier, staff ports.StaffService, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{verifier: verifier, staff: staff, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

func (s *AuthService) Login(ctx context.Context, idToken string) (string, *domain.Staff, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return "", nil, domain.ErrUnauthorized
	}

	identity, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return "", nil, err
	}

	staff, err := s.staff.EnsureForIdentity(ctx, identity)
	if err != nil {
		return "", nil, err
	}

	token, err := s.generateToken(staff)
	if err != nil {
		return "", nil, err
	}

	return token, staff, nil
}

func (s *AuthService) generateToken(staff *domain.Staff) (string, error) {
	claims := jwt.MapClaims{
		"staff_id": staff.ID,
		"role":     staff.Role,
		"exp":      time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
