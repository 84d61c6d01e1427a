package common

import "context"

// Identity describes the caller resolved by the identity gateway. Origin is
// "local" for password logins and "federated" for third-party identities.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Origin   string `json:"origin"`
}

type ctxKey string

const identityKey ctxKey = "auth/identity"

// WithIdentity stores the resolved identity on the provided context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom extracts the resolved identity from the context if present.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	v := ctx.Value(identityKey)
	if v == nil {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}
