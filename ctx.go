package auth

import (
	"context"

	"github.com/visacheck/go-auth/sdk"
)

var userCtxKey = &contextKey{"user"}
var clientCtxKey = &contextKey{"client"}

type contextKey struct {
	name string
}

// WithUser sets the authenticated user in the given context
func WithUser(ctx context.Context, user Authenticatable) context.Context {
	return context.WithValue(ctx, userCtxKey, user)
}

// UserFromContext finds the authenticated user in the context
func UserFromContext(ctx context.Context) (Authenticatable, bool) {
	raw, ok := ctx.Value(userCtxKey).(Authenticatable)
	return raw, ok && raw != nil
}

type scopedClient struct {
	owner  string
	client *sdk.Client
}

// WithClient sets the request scoped API client in the given context
func WithClient(ctx context.Context, client *sdk.Client) context.Context {
	return WithOwnedClient(ctx, "", client)
}

// WithOwnedClient sets the request scoped API client and the id of the user
// whose bearer token it carries
func WithOwnedClient(ctx context.Context, ownerID string, client *sdk.Client) context.Context {
	return context.WithValue(ctx, clientCtxKey, scopedClient{owner: ownerID, client: client})
}

// ClientFromContext returns the request scoped API client
func ClientFromContext(ctx context.Context) (*sdk.Client, bool) {
	raw, ok := ctx.Value(clientCtxKey).(scopedClient)
	return raw.client, ok && raw.client != nil
}

// ClientForUser returns the request scoped client when it carries the bearer
// token of userID.
func ClientForUser(ctx context.Context, userID string) (*sdk.Client, bool) {
	raw, ok := ctx.Value(clientCtxKey).(scopedClient)
	if !ok || raw.client == nil || userID == "" || raw.owner != userID {
		return nil, false
	}
	if raw.client.Token() == "" {
		return nil, false
	}
	return raw.client, true
}
