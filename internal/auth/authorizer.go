package auth

import (
	"context"
)

// Actor identifies an authenticated caller. Every store read and write is
// scoped by the actor's id.
type Actor struct {
	ActorID string `json:"actor_id"`
	KeyName string `json:"key_name"`
}

// Authorizer resolves an API key to an actor.
type Authorizer interface {
	// Authorize validates the API key and returns the owning actor, or an
	// error when authentication fails.
	Authorize(ctx context.Context, apiKey string) (*Actor, error)
}
