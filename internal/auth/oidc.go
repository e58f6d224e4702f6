package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/ukydev/walkroutes/internal/models"
)

// GoogleIssuer is the issuer of Google ID tokens.
const GoogleIssuer = "https://accounts.google.com"

// Verifier checks a bearer token and returns its claims.
type Verifier interface {
	Verify(ctx context.Context, token string) (*models.Claims, error)
}

// Verify validates a token issued by this service.
func (s *Service) Verify(_ context.Context, token string) (*models.Claims, error) {
	return s.ValidateToken(token)
}

// OIDCVerifier validates ID tokens issued by an OpenID Connect provider for
// one client. Signing keys come from the provider's JWKS endpoint.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier discovers issuer and verifies tokens whose audience is clientID.
func NewOIDCVerifier(ctx context.Context, issuer, clientID string) (*OIDCVerifier, error) {
	if clientID == "" {
		return nil, errors.New("oidc client id is empty")
	}
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery for %s: %w", issuer, err)
	}
	return &OIDCVerifier{verifier: provider.Verifier(&oidc.Config{ClientID: clientID})}, nil
}

// NewOIDCVerifierWithKeySet verifies tokens against a fixed key set without
// discovery.
func NewOIDCVerifierWithKeySet(issuer, clientID string, keys oidc.KeySet) *OIDCVerifier {
	return &OIDCVerifier{verifier: oidc.NewVerifier(issuer, keys, &oidc.Config{ClientID: clientID})}
}

type profileClaims struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

// Verify validates an ID token and maps its profile claims.
func (v *OIDCVerifier) Verify(ctx context.Context, token string) (*models.Claims, error) {
	idToken, err := v.verifier.Verify(ctx, strings.TrimPrefix(token, "Bearer "))
	if err != nil {
		var expired *oidc.TokenExpiredError
		if errors.As(err, &expired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var profile profileClaims
	if err := idToken.Claims(&profile); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	name := profile.Name
	if name == "" {
		name = profile.Email
	}
	return &models.Claims{
		UID:         idToken.Subject,
		DisplayName: name,
		PhotoURL:    profile.Picture,
		Exp:         idToken.Expiry.Unix(),
	}, nil
}
