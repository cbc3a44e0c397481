package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/AnshRaj112/pinvent-backend/internal/models"
	"github.com/AnshRaj112/pinvent-backend/internal/services"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "token"

type userCtxKey struct{}

// Authenticator resolves a session token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// RequireAuth rejects requests without a valid session and stores the
// resolved user in the request context.
func RequireAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r)
			if token == "" {
				writeJSONError(w, http.StatusUnauthorized, errorBody{Message: "Not authorized, please login"})
				return
			}

			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				status := http.StatusUnauthorized
				if services.IsKind(err, services.KindUpstream) {
					status = http.StatusInternalServerError
				}
				writeJSONError(w, status, errorBody{Message: services.PublicMessage(err)})
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// SessionToken returns the token from the session cookie, falling back to
// an "Authorization: Bearer" header.
func SessionToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	authHeader := r.Header.Get("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext returns the user stored by RequireAuth.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userCtxKey{}).(*models.User)
	return u, ok && u != nil
}
