package access

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/hackgods/carehub/internal/apperr"
	"github.com/hackgods/carehub/internal/identity"
	"github.com/hackgods/carehub/internal/lock"
)

// Registry resolves caller roles and owns the Guard built on top of them.
type Registry struct {
	repo      Repository
	locker    lock.Locker
	bootstrap identity.Caller
	guard     *Guard
}

// NewRegistry builds a Registry. bootstrapAdmin, when not anonymous, is
// treated as admin until an explicit assignment says otherwise.
func NewRegistry(repo Repository, locker lock.Locker, bootstrapAdmin identity.Caller, opts ...GuardOption) *Registry {
	r := &Registry{
		repo:      repo,
		locker:    locker,
		bootstrap: bootstrapAdmin,
	}
	r.guard = NewGuard(r, opts...)
	return r
}

func (r *Registry) Guard() *Guard {
	return r.guard
}

// GetRole returns caller's effective role.
func (r *Registry) GetRole(ctx context.Context, caller identity.Caller) (Role, error) {
	if caller.IsAnonymous() {
		return RoleGuest, nil
	}

	a, ok, err := r.repo.GetAssignment(ctx, caller)
	if err != nil {
		return "", fmt.Errorf("get role: %w", err)
	}
	if ok {
		return a.Role, nil
	}

	if !r.bootstrap.IsAnonymous() && caller == r.bootstrap {
		return RoleAdmin, nil
	}
	return RoleUser, nil
}

func (r *Registry) IsAdmin(ctx context.Context, caller identity.Caller) (bool, error) {
	role, err := r.GetRole(ctx, caller)
	if err != nil {
		return false, err
	}
	return role == RoleAdmin, nil
}

// AssignRole sets target's role. Only admins may assign roles.
func (r *Registry) AssignRole(ctx context.Context, caller, target identity.Caller, role Role) error {
	if err := r.guard.Authorize(ctx, caller, CapManageRoles); err != nil {
		return err
	}
	if target.IsAnonymous() {
		return apperr.Validation("cannot assign a role to the anonymous caller")
	}
	if _, err := ParseRole(string(role)); err != nil {
		return err
	}

	err := r.locker.WithLock(ctx, lock.KeyRoles, func(ctx context.Context) error {
		return r.repo.SetAssignment(ctx, target, role)
	})
	if err != nil {
		return fmt.Errorf("assign role: %w", err)
	}

	log.Info().
		Str("caller", caller.String()).
		Str("target", target.String()).
		Str("role", string(role)).
		Msg("role assigned")
	return nil
}
