// Package auth carries the verified caller identity through a request.
package auth

import "context"

// Principal is the identity extracted from a verified token.
type Principal struct {
	UserID  string
	Name    string
	Email   string
	IsAdmin bool
	IsOwner bool
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
