package policies

import (
	"context"
	"errors"

	"gearbook/internal/domain/user"
)

var ErrUnauthorized = errors.New("policies: caller is not allowed to perform this action")

// Principal is the authenticated caller, resolved from the session token
// before the command reaches the bus.
type Principal struct {
	UserID string
	Roles  []user.Role
}

func (p Principal) Is(userID string) bool {
	return p.UserID != "" && p.UserID == userID
}

func (p Principal) HasRole(role user.Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (p Principal) IsAdmin() bool {
	return p.HasRole(user.RoleAdmin)
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	val := ctx.Value(principalKey{})
	if val == nil {
		return Principal{}, false
	}
	p, ok := val.(Principal)
	return p, ok
}

// SelfAuthorizer delegates to messages that implement
// Authorize(Principal) error, rejecting everything when no principal is set.
type SelfAuthorizer struct{}

func (SelfAuthorizer) Authorize(ctx context.Context, message any) error {
	checker, ok := message.(interface{ Authorize(Principal) error })
	if !ok {
		return nil
	}
	p, found := PrincipalFromContext(ctx)
	if !found {
		return ErrUnauthorized
	}
	return checker.Authorize(p)
}
