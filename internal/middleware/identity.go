package middleware

import (
	"context"
	"net/http"

	"photo-market/internal/model"

	"github.com/google/uuid"
)

type contextKey string

const actorKey contextKey = "actor"

// Identity resolves the caller from the gateway-injected identity headers
// and stores it in the request context. Requests without a usable identity
// pass through anonymously; route guards decide what needs one.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.Header.Get("X-User-ID"))
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		role := model.Role(r.Header.Get("X-User-Role"))
		switch role {
		case model.RoleCustomer, model.RolePhotographer, model.RoleAdmin:
		default:
			role = model.RoleCustomer
		}

		actor := model.Actor{ID: id, Role: role}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey, actor)))
	})
}

// ActorFrom extracts the caller from the request context.
func ActorFrom(ctx context.Context) (model.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(model.Actor)
	return actor, ok
}

// RequireRole rejects requests whose caller is missing or holds none of
// the allowed roles. Admins always pass.
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFrom(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if actor.Role == model.RoleAdmin {
				next.ServeHTTP(w, r)
				return
			}
			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "forbidden", http.StatusForbidden)
		})
	}
}
