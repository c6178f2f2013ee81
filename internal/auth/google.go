package auth

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"

	"github.com/helpmesh/helpmesh/internal/domain"
)

type googleVerifier struct {
	audience string
}

// NewGoogleVerifier validates Google ID tokens against the configured OAuth
// client audience.
func NewGoogleVerifier(audience string) GoogleVerifier {
	return &googleVerifier{audience: audience}
}

func (v *googleVerifier) Verify(ctx context.Context, idToken string) (*GoogleUser, error) {
	payload, err := idtoken.Validate(ctx, idToken, v.audience)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	verified, _ := payload.Claims["email_verified"].(bool)

	return &GoogleUser{
		UID:           payload.Subject,
		Email:         email,
		Name:          name,
		EmailVerified: verified,
	}, nil
}
