package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/sitewise/contractvault/internal/auth"
)

// ActorHeader carries the acting user id supplied by the identity provider
// in front of this service.
const ActorHeader = "X-Actor-ID"

// ActorMiddleware lifts the actor header into the request context. A missing
// or malformed header leaves the request without an actor, which downstream
// code records as a system action.
func ActorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(ActorHeader))
		if raw != "" {
			if actorID, err := uuid.Parse(raw); err == nil {
				r = r.WithContext(auth.ContextWithActorID(r.Context(), actorID))
			}
		}
		next.ServeHTTP(w, r)
	})
}
