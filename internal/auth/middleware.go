package auth

import (
	"context"
	"net/http"
	"strings"

	"docbot/internal/web"
)

type contextKey struct{}

var userKey contextKey

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// FromContext retrieves the authenticated user, if any.
func FromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(userKey).(*User)
	return u, ok
}

// Middleware enforces the Bearer token convention and injects the resolved
// user into the request context.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			web.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}

		user, err := s.CurrentUser(r.Context(), token)
		if err != nil {
			web.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		if !user.IsActive {
			web.Error(w, "account disabled", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}
