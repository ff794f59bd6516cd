package http

import (
	"context"
	"net/http"
	"strconv"

	"rentshare-backend/internal/apperr"
	"rentshare-backend/internal/domain"

	"github.com/gorilla/mux"
)

type actorKey struct{}

func withActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor the auth middleware attached.
func ActorFromContext(ctx context.Context) (domain.Actor, error) {
	actor, ok := ctx.Value(actorKey{}).(domain.Actor)
	if !ok {
		return domain.Actor{}, apperr.Unauthorized("authentication required")
	}
	return actor, nil
}

func pathID(r *http.Request, name string) (int32, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid %s %q", name, raw)
	}
	return int32(id), nil
}

func queryID(r *http.Request, name string) (int32, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id < 0 {
		return 0, apperr.Validation("invalid %s %q", name, raw)
	}
	return int32(id), nil
}
