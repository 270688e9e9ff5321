package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sethu45/social-network/internal/handlers"
	"github.com/sethu45/social-network/internal/services"
)

const sessionCookieName = "session_token"

type AuthMiddleware struct {
	authService services.AuthServiceInterface
	userService services.UserServiceInterface
}

func NewAuthMiddleware(authService services.AuthServiceInterface, userService services.UserServiceInterface) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		userService: userService,
	}
}

// Authenticate resolves the session token, if any, and stores the user in
// the request context. Missing, expired or revoked sessions pass through
// unauthenticated; RequireAuth decides whether that is acceptable. Store
// outages answer 503 so they are not mistaken for bad credentials.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := m.authService.GetSession(r.Context(), token)
		if errors.Is(err, services.ErrSessionNotFound) {
			// Expired or revoked: continue unauthenticated.
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			// A store outage is not an invalid token.
			writeError(w, http.StatusServiceUnavailable, "Session store unavailable")
			return
		}

		user, err := m.userService.GetByID(r.Context(), userID)
		if errors.Is(err, services.ErrUserNotFound) {
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "Session store unavailable")
			return
		}

		next.ServeHTTP(w, r.WithContext(handlers.SetUserInContext(r.Context(), user)))
	})
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handlers.GetUserFromContext(r.Context()) == nil {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func sessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}
