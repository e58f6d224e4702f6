package auth

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/walkroutes/internal/models"
)

const testClientID = "walkroutes-test.apps.googleusercontent.com"

func signIDToken(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func googleClaims(exp time.Time) jwt.MapClaims {
	return jwt.MapClaims{
		"iss":     GoogleIssuer,
		"aud":     testClientID,
		"sub":     "1098765",
		"name":    "Wanjiru",
		"email":   "wanjiru@example.com",
		"picture": "https://example.com/w.png",
		"iat":     time.Now().Add(-time.Minute).Unix(),
		"exp":     exp.Unix(),
	}
}

func newTestVerifier(t *testing.T) (*OIDCVerifier, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	keys := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{key.Public()}}
	return NewOIDCVerifierWithKeySet(GoogleIssuer, testClientID, keys), key
}

func TestOIDCVerifier_Verify(t *testing.T) {
	v, key := newTestVerifier(t)
	exp := time.Now().Add(time.Hour)

	claims, err := v.Verify(context.Background(), "Bearer "+signIDToken(t, key, googleClaims(exp)))
	require.NoError(t, err)
	assert.Equal(t, "1098765", claims.UID)
	assert.Equal(t, "Wanjiru", claims.DisplayName)
	assert.Equal(t, "https://example.com/w.png", claims.PhotoURL)
	assert.Equal(t, exp.Unix(), claims.Exp)
}

func TestOIDCVerifier_Rejects(t *testing.T) {
	v, key := newTestVerifier(t)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		_, err := v.Verify(context.Background(), signIDToken(t, key, googleClaims(time.Now().Add(-time.Hour))))
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("wrong audience", func(t *testing.T) {
		c := googleClaims(time.Now().Add(time.Hour))
		c["aud"] = "someone-else"
		_, err := v.Verify(context.Background(), signIDToken(t, key, c))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		c := googleClaims(time.Now().Add(time.Hour))
		c["iss"] = "https://evil.example.com"
		_, err := v.Verify(context.Background(), signIDToken(t, key, c))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unknown signing key", func(t *testing.T) {
		_, err := v.Verify(context.Background(), signIDToken(t, other, googleClaims(time.Now().Add(time.Hour))))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("shared secret token", func(t *testing.T) {
		s, err := NewService("dev-secret", time.Hour)
		require.NoError(t, err)
		token, err := s.GenerateToken(models.Identity{UID: "u1"})
		require.NoError(t, err)
		_, err = v.Verify(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestNewOIDCVerifier_RequiresClientID(t *testing.T) {
	_, err := NewOIDCVerifier(context.Background(), GoogleIssuer, "")
	assert.Error(t, err)
}

func TestService_SatisfiesVerifier(t *testing.T) {
	s, err := NewService("dev-secret", time.Hour)
	require.NoError(t, err)
	var v Verifier = s

	token, err := s.GenerateToken(models.Identity{UID: "u1", DisplayName: "Amani"})
	require.NoError(t, err)
	claims, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UID)
}
