package web

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abgdnv/storefront/pkg/logger"
	"github.com/google/uuid"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// ParseRole maps a claim or header value to a Role. Empty means customer.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case "", RoleCustomer:
		return RoleCustomer, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Identity is the authenticated caller.
type Identity struct {
	UserID uuid.UUID
	Role   Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

type identityKey struct{}

// WithIdentity stores the caller in ctx and tags records logged with ctx by user id.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	ctx = logger.AppendCtx(ctx, slog.String(logger.KeyUserID, identity.UserID.String()))
	return context.WithValue(ctx, identityKey{}, identity)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(Identity)
	return identity, ok
}
