package ports

import (
	"context"

	"github.com/courierpwa/courier-ops/internal/core/domain"
)

// IdentityVerifier checks a token issued by the phone-OTP identity provider.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (domain.Identity, error)
}

type AuthService interface {
	// Login exchanges an identity-provider token for a session token.
	Login(ctx context.Context, idToken string) (string, *domain.Staff, error)
}
