package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/isdelr/tasklist-be/internal/api/respond"
	"github.com/isdelr/tasklist-be/internal/apperrors"
)

// TokenCookie is the cookie set at login and read as a fallback by the guard.
const TokenCookie = "token"

type contextKey string

const userIDKey = contextKey("userID")

// TokenValidator is the part of TokenService the guard needs.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// Guard rejects requests without a valid session token and stores the
// token's subject in the request context.
func Guard(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := tokenFromRequest(r)
			if tokenStr == "" {
				respond.Error(w, r, apperrors.ErrMissingToken)
				return
			}

			userID, err := tokens.Validate(tokenStr)
			if err != nil {
				if errors.Is(err, ErrTokenExpired) {
					respond.Error(w, r, apperrors.ErrTokenExpired)
					return
				}
				respond.Error(w, r, apperrors.ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// tokenFromRequest prefers the Authorization header and falls back to the
// cookie.
func tokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := r.Cookie(TokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// WithUserID returns a context carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the id stored by Guard.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}
