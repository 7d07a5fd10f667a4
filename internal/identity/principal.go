// package identity describes who is making a request: the authenticated principal, how it
// travels through a request context, and the OpenID Connect provider that issues it.
package identity

import (
	"context"

	"github.com/desertthunder/riff/internal/claims"
)

// AnonymousName is the principal name given to unauthenticated callers.
const AnonymousName = "anonymousUser"

// Principal is the caller of an operation.
//
// Claims is non-nil only for principals established by an identity provider login.
type Principal struct {
	Name          string
	Authenticated bool
	Claims        claims.Claims
}

// NewPrincipal returns an authenticated principal for an identity provider claim set,
// named after its subject.
func NewPrincipal(c claims.Claims) *Principal {
	name, _ := c.String(claims.Subject)
	return &Principal{Name: name, Authenticated: true, Claims: c}
}

// Anonymous returns the sentinel principal for callers without a session.
//
// The sentinel is marked authenticated; callers must compare names to tell it apart.
func Anonymous() *Principal {
	return &Principal{Name: AnonymousName, Authenticated: true}
}

// IsIdP reports whether the principal carries identity provider claims.
func (p *Principal) IsIdP() bool {
	return p != nil && p.Claims != nil
}

// IsAnonymous reports whether p is the anonymous sentinel.
func (p *Principal) IsAnonymous() bool {
	return p != nil && p.Name == AnonymousName
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal stored in ctx, or nil.
func PrincipalFrom(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}
