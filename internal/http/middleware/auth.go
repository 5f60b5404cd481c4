package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/mwilde345/givehub/internal/auth"
	"github.com/mwilde345/givehub/internal/http/respond"
	"github.com/mwilde345/givehub/internal/user"
)

// Actor is the authenticated identity attached to a request.
type Actor struct {
	ID       uuid.UUID
	Username string
	Email    string
	Role     user.Role
}

type ctxKey int

const actorKey ctxKey = iota

func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey).(Actor)
	return a, ok
}

// WithActor attaches an actor to the context. Used by Authenticator and by
// handler tests that bypass it.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

// UserResolver loads the current user record for a token's subject. The role
// always comes from the store, not the token, so revocations and role changes
// apply on the next request.
type UserResolver interface {
	Get(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// Authenticator verifies the Bearer token and places the resolved Actor into
// the request context.
func Authenticator(jwtSecret string, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")

			scheme, token, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
				respond.Error(w, http.StatusUnauthorized, "authentication required")
				return
			}

			claims, err := auth.ParseToken(jwtSecret, token)
			if err != nil {
				respond.Error(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			u, err := users.Get(r.Context(), claims.UserID)
			if err != nil {
				respond.Error(w, http.StatusUnauthorized, "unknown user")
				return
			}

			actor := Actor{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// RequireRole gates a route to the given roles. Must run after Authenticator.
func RequireRole(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				respond.Error(w, http.StatusUnauthorized, "authentication required")
				return
			}

			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			respond.Error(w, http.StatusForbidden, "insufficient role")
		})
	}
}
