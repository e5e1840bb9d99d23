package http

import (
	"context"
	"net/http"
	"strings"

	"hearth/internal/auth"
)

type contextKey string

const claimsKey contextKey = "session_claims"

// requireAuth verifies the bearer token and stores its claims in the
// request context for the handler.
func (s *Server) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err != nil {
			s.respondServiceError(w, r, err)
			return
		}

		claims, err := s.tokens.Validate(token)
		if err != nil {
			s.respondServiceError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", auth.ErrMissingToken
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", auth.ErrInvalidToken
	}
	return token, nil
}

// sessionClaims returns the authenticated claims placed by requireAuth.
func sessionClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}
