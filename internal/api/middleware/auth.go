package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nabil-s/appointly/internal/apperr"
	"github.com/nabil-s/appointly/internal/domain"
	"github.com/nabil-s/appointly/internal/service"
)

type contextKey string

const userKey contextKey = "user"

// SessionCookie is the cookie that carries the session token when no
// Authorization header is present.
const SessionCookie = "jwt"

var errNotLoggedIn = apperr.Unauthenticated("You are not logged in. Please log in to get access")

// RequireAuth resolves the session token and rejects the request when no
// valid identity can be attached. The token is taken from the
// Authorization header first, then from the session cookie.
func RequireAuth(auth *service.AuthService, logger *slog.Logger, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				apperr.Write(w, r, logger, env, errNotLoggedIn)
				return
			}

			user, err := auth.ResolveToken(r.Context(), token)
			if err != nil {
				apperr.Write(w, r, logger, env, err)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches an identity when a valid token is present and
// otherwise lets the request through anonymously. Invalid tokens are treated
// the same as absent ones.
func OptionalAuth(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := tokenFromRequest(r); token != "" {
				if user, err := auth.ResolveToken(r.Context(), token); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), userKey, user))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRoles denies the request unless the resolved identity holds one of
// the allowed roles. It does no I/O and must run behind RequireAuth.
func RequireRoles(logger *slog.Logger, env string, allowed ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFrom(r.Context())
			if !ok {
				apperr.Write(w, r, logger, env, errNotLoggedIn)
				return
			}
			if !user.Role.OneOf(allowed...) {
				apperr.Write(w, r, logger, env, apperr.Forbidden("Not authorized to access this route"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserFrom returns the authenticated account attached by RequireAuth or
// OptionalAuth.
func UserFrom(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userKey).(*domain.User)
	return user, ok
}

// WithUser is a test hook for handlers that expect a resolved identity.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func tokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.Fields(header)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		return ""
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}
