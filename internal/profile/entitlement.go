package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/hackgods/carehub/internal/access"
	"github.com/hackgods/carehub/internal/apperr"
	"github.com/hackgods/carehub/internal/identity"
	"github.com/hackgods/carehub/internal/lock"
)

// Entitlements manages the VIP flag. It is the only path that can set IsVIP.
type Entitlements struct {
	repo   Repository
	guard  *access.Guard
	locker lock.Locker
}

func NewEntitlements(repo Repository, guard *access.Guard, locker lock.Locker) *Entitlements {
	return &Entitlements{repo: repo, guard: guard, locker: locker}
}

// VIPStatus returns the caller's own flag; false when they have no profile.
func (e *Entitlements) VIPStatus(ctx context.Context, caller identity.Caller) (bool, error) {
	if caller.IsAnonymous() {
		return false, nil
	}
	p, err := e.repo.Get(ctx, caller)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load profile: %w", err)
	}
	return p.IsVIP, nil
}

// SetVIP sets target's flag. Admin only; target must already have a profile.
func (e *Entitlements) SetVIP(ctx context.Context, caller, target identity.Caller, isVIP bool) error {
	if err := e.guard.Authorize(ctx, caller, access.CapManageEntitlements); err != nil {
		return err
	}

	err := e.locker.WithLock(ctx, lock.KeyProfiles, func(ctx context.Context) error {
		return e.repo.SetVIP(ctx, target, isVIP)
	})
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return apperr.NotFound("profile", target.String())
		}
		return fmt.Errorf("set vip: %w", err)
	}

	log.Info().
		Str("caller", caller.String()).
		Str("target", target.String()).
		Bool("is_vip", isVIP).
		Msg("vip entitlement changed")
	return nil
}
