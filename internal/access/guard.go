package access

import (
	"context"
	"fmt"

	"github.com/hackgods/carehub/internal/apperr"
	"github.com/hackgods/carehub/internal/identity"
)

// RoleSource resolves a caller's role.
type RoleSource interface {
	GetRole(ctx context.Context, caller identity.Caller) (Role, error)
}

// DenialRecorder is notified whenever the guard refuses a capability.
type DenialRecorder interface {
	RecordPermissionDenied(capability string)
}

// Guard is the single authorization point consulted by every mutating
// operation before it touches a store.
type Guard struct {
	roles    RoleSource
	policy   Policy
	recorder DenialRecorder
}

type GuardOption func(*Guard)

func WithPolicy(p Policy) GuardOption {
	return func(g *Guard) { g.policy = p }
}

func WithDenialRecorder(rec DenialRecorder) GuardOption {
	return func(g *Guard) { g.recorder = rec }
}

func NewGuard(roles RoleSource, opts ...GuardOption) *Guard {
	g := &Guard{roles: roles, policy: DefaultPolicy()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Allows reports whether caller holds capability.
func (g *Guard) Allows(ctx context.Context, caller identity.Caller, capability Capability) (bool, error) {
	role, err := g.roles.GetRole(ctx, caller)
	if err != nil {
		return false, fmt.Errorf("resolve role: %w", err)
	}
	if role == RoleAdmin {
		return true, nil
	}
	for _, granted := range g.policy[capability] {
		if granted == role {
			return true, nil
		}
	}
	return false, nil
}

// Authorize returns ErrPermissionDenied unless caller holds capability.
func (g *Guard) Authorize(ctx context.Context, caller identity.Caller, capability Capability) error {
	ok, err := g.Allows(ctx, caller, capability)
	if err != nil {
		return err
	}
	if !ok {
		g.denied(capability)
		return apperr.PermissionDenied("%s lacks %s", caller, capability)
	}
	return nil
}

// AuthorizeSelfOr passes when an authenticated caller acts on their own
// record, and otherwise requires capability.
func (g *Guard) AuthorizeSelfOr(ctx context.Context, caller, owner identity.Caller, capability Capability) error {
	if !caller.IsAnonymous() && caller == owner {
		return nil
	}
	return g.Authorize(ctx, caller, capability)
}

func (g *Guard) denied(capability Capability) {
	if g.recorder != nil {
		g.recorder.RecordPermissionDenied(string(capability))
	}
}
