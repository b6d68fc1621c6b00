package auth

import (
	"context"
	"errors"
	"strings"
)

// LocalDevAPIKey is the hardcoded API key for local development only.
const LocalDevAPIKey = "sk_local_notedrop_dev_key"

// StaticAuthorizer resolves API keys from a fixed key-to-actor map built at
// startup from configuration. When allowDevKey is set the hardcoded local
// development key resolves to the "notedrop-dev" actor.
type StaticAuthorizer struct {
	keys        map[string]string
	allowDevKey bool
}

// NewStaticAuthorizer builds an authorizer from a "key:actor,key:actor"
// spec string. Malformed pairs are skipped.
func NewStaticAuthorizer(spec string, allowDevKey bool) *StaticAuthorizer {
	keys := make(map[string]string)
	for _, pair := range strings.Split(spec, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			continue
		}
		keys[parts[0]] = parts[1]
	}
	return &StaticAuthorizer{keys: keys, allowDevKey: allowDevKey}
}

// Authorize validates the API key against the static map.
func (a *StaticAuthorizer) Authorize(ctx context.Context, apiKey string) (*Actor, error) {
	if a.allowDevKey && apiKey == LocalDevAPIKey {
		return &Actor{ActorID: "notedrop-dev", KeyName: "Local Development Key"}, nil
	}
	if actorID, ok := a.keys[apiKey]; ok {
		return &Actor{ActorID: actorID, KeyName: "Configured Key"}, nil
	}
	return nil, errors.New("invalid API key")
}
