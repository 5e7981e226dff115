package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// CookieName is the HttpOnly cookie the login endpoints set.
const CookieName = "token"

// contextKey keeps this package's context values out of reach of others.
type contextKey string

const userIDKey contextKey = "userID"

var errNoCredentials = errors.New("auth: no credentials")

// RequireAuth rejects requests without a valid token with 401 and stores
// the user ID in the context otherwise.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","message":"valid authentication required"}` + "\n"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// OptionalAuth attaches the user ID when a valid token is present and lets
// anonymous requests through untouched. Recipe reads use it: anyone may
// browse, but is_favorited and is_in_shopping_cart need a viewer.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, err := extractUserID(r, tokens); err == nil {
				r = r.WithContext(WithUserID(r.Context(), userID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns ("", false) for anonymous requests.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// extractUserID looks for a token in the Authorization header first
// ("Token <jwt>" or "Bearer <jwt>"), then in the token cookie.
func extractUserID(r *http.Request, tokens *TokenService) (string, error) {
	raw := tokenFromHeader(r.Header.Get("Authorization"))
	if raw == "" {
		cookie, err := r.Cookie(CookieName)
		if err != nil {
			return "", errNoCredentials
		}
		raw = cookie.Value
	}
	if raw == "" {
		return "", errNoCredentials
	}
	return tokens.Validate(raw)
}

func tokenFromHeader(h string) string {
	scheme, value, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok {
		return ""
	}
	if !strings.EqualFold(scheme, "Token") && !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(value)
}
