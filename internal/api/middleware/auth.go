package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dom/mama-respira/internal/domain"
	"github.com/go-chi/render"
)

type contextKey string

const (
	UserKey contextKey = "user"
)

// Authenticator resolves a bearer token to the account it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, bool)
}

// Authenticate resolves the caller on every request. A missing or bad
// token leaves the request anonymous; the route decides whether that is
// acceptable.
func Authenticate(authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			user, ok := authenticator.Authenticate(r.Context(), token)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken accepts the scheme in any case and any whitespace around it.
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r.Context()); !ok {
			deny(w, r, http.StatusUnauthorized, domain.ErrNotAuthenticated.Message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole admits authenticated users holding one of roles. Anonymous
// callers get 401 before role membership is considered.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = role.String()
	}
	denied := domain.NewError(domain.ErrCodePermission, fmt.Sprintf("Se requiere rol: %s", strings.Join(names, " o ")))
	return requireRole(denied, roles)
}

func requireRole(denied *domain.Error, roles []domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := CurrentUser(r.Context())
			if !ok {
				deny(w, r, http.StatusUnauthorized, domain.ErrNotAuthenticated.Message)
				return
			}
			if !user.Role.In(roles...) {
				deny(w, r, http.StatusForbidden, denied.Message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Premium-gated and coach-gated capabilities.
var (
	RequirePremium = requireRole(domain.ErrPremiumRequired, []domain.Role{domain.RolePremium, domain.RoleCoach})
	RequireCoach   = requireRole(domain.ErrCoachOnly, []domain.Role{domain.RoleCoach})
)

func CurrentUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(UserKey).(*domain.User)
	return user, ok && user != nil
}

// WithUser is used by tests that call handlers without the middleware chain.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

func deny(w http.ResponseWriter, r *http.Request, status int, detail string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"detail": detail})
}
