package middleware

import (
	"context"
	"net/http"

	"github.com/ukydev/walkroutes/internal/auth"
	"github.com/ukydev/walkroutes/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	UserContextKey contextKey = "user"
)

// AuthMiddleware authorizes mutating route requests with identity tokens.
type AuthMiddleware struct {
	verifier auth.Verifier
	required bool
}

// NewAuthMiddleware creates a new authentication middleware. When required is
// false every request passes through untouched.
func NewAuthMiddleware(verifier auth.Verifier, required bool) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		required: required,
	}
}

// RequireIdentity validates the bearer token on requests that change state and
// adds the caller's claims to the request context. Safe methods are not gated.
func (m *AuthMiddleware) RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.required || isSafeMethod(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		token, err := auth.ExtractTokenFromHeader(r.Header.Get("Authorization"))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}

		claims, err := m.verifier.Verify(r.Context(), token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserFromContext extracts user claims from request context
func GetUserFromContext(ctx context.Context) (*models.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*models.Claims)
	return claims, ok
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}
