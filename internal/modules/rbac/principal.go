package rbac

import (
	"context"

	"github.com/google/uuid"
)

// Principal is the verified actor behind a request: identity, role, and
// tenant scope. It is an immutable value passed explicitly through context,
// never a shared mutable object.
type Principal struct {
	ID       uuid.UUID
	Role     Role
	OutletID uuid.UUID
	Active   bool
}

type principalKey struct{}

// WithPrincipal returns a context carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom extracts the request principal, if one was set.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
