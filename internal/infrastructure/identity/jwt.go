// Package identity verifies tokens issued by the phone-OTP identity provider.
package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/courierpwa/courier-ops/internal/core/domain"
)

type providerClaims struct {
	PhoneNumber string `json:"phone_number"`
	jwt.RegisteredClaims
}

// JWTVerifier checks HS256 identity tokens carrying the user id in "sub" and
// the verified number in "phone_number".
type JWTVerifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}
}

// Verify returns the identity vouched for by idToken. Every failure maps to
// domain.ErrUnauthorized.
func (v *JWTVerifier) Verify(_ context.Context, idToken string) (domain.Identity, error) {
	claims := &providerClaims{}
	token, err := v.parser.ParseWithClaims(idToken, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return domain.Identity{}, fmt.Errorf("%w: invalid identity token", domain.ErrUnauthorized)
	}

	uid := strings.TrimSpace(claims.Subject)
	phone := strings.TrimSpace(claims.PhoneNumber)
	if uid == "" || phone == "" {
		return domain.Identity{}, fmt.Errorf("%w: identity token lacks sub or phone_number", domain.ErrUnauthorized)
	}
	return domain.Identity{UID: uid, Phone: phone}, nil
}
