package domain

import "context"

// Principal is the authenticated identity bound to a single request.
type Principal struct {
	Account *Account
	Role    string
}

// Username returns the principal's username, or "" for a nil principal.
func (p *Principal) Username() string {
	if p == nil || p.Account == nil {
		return ""
	}
	return p.Account.Username
}

type principalKey struct{}

// WithPrincipal returns a child context carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal bound to ctx, if any.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
