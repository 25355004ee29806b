package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	userdomain "github.com/vbs-0/bomber/internal/user/domain"
)

type contextKey string

const authenticatedUserContextKey = contextKey("authenticatedUser")

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "session"

// SessionMiddleware authenticates the request from the session cookie and
// injects the current user into the request context. Account activity
// checks are left to the individual workflows so suspended users still get
// workflow-specific 403s rather than a blanket 401.
func SessionMiddleware(auth AuthService, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			userID, err := auth.ValidateSession(cookie.Value)
			if err != nil {
				logger.WarnContext(r.Context(), "Session validation failed", "error", err)
				respondError(w, http.StatusUnauthorized, "Invalid or expired session")
				return
			}

			user, err := auth.GetUser(r.Context(), userID)
			if err != nil {
				logger.WarnContext(r.Context(), "Session user not found", "user_id", userID)
				respondError(w, http.StatusUnauthorized, "Invalid or expired session")
				return
			}

			ctx := context.WithValue(r.Context(), authenticatedUserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates a route group on the admin flag. SessionMiddleware
// must run first.
func RequireAdmin(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := userFromContext(r.Context())
			if !ok {
				logger.ErrorContext(r.Context(), "RequireAdmin ran without SessionMiddleware")
				respondError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if !user.IsAdmin {
				respondError(w, http.StatusForbidden, "Administrator access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func userFromContext(ctx context.Context) (*userdomain.User, bool) {
	user, ok := ctx.Value(authenticatedUserContextKey).(*userdomain.User)
	return user, ok
}
