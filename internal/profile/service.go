package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hackgods/carehub/internal/access"
	"github.com/hackgods/carehub/internal/apperr"
	"github.com/hackgods/carehub/internal/identity"
	"github.com/hackgods/carehub/internal/lock"
)

type Service struct {
	repo   Repository
	guard  *access.Guard
	locker lock.Locker
	now    func() time.Time
}

func NewService(repo Repository, guard *access.Guard, locker lock.Locker) *Service {
	return &Service{
		repo:   repo,
		guard:  guard,
		locker: locker,
		now:    time.Now,
	}
}

// Get returns owner's profile, or nil when none exists.
func (s *Service) Get(ctx context.Context, owner identity.Caller) (*Profile, error) {
	if owner.IsAnonymous() {
		return nil, nil
	}
	p, err := s.repo.Get(ctx, owner)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return p, nil
}

// GetOwn returns the caller's own profile, or nil.
func (s *Service) GetOwn(ctx context.Context, caller identity.Caller) (*Profile, error) {
	return s.Get(ctx, caller)
}

// GetPatientProfile is GetOwn that fails with NotFound instead of returning nil.
func (s *Service) GetPatientProfile(ctx context.Context, caller identity.Caller) (*Profile, error) {
	p, err := s.Get(ctx, caller)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("profile", caller.String())
	}
	return p, nil
}

// GetByIdentity reads target's profile on behalf of caller. Only the owner
// and admins may read it.
func (s *Service) GetByIdentity(ctx context.Context, caller, target identity.Caller) (*Profile, error) {
	if err := s.guard.AuthorizeSelfOr(ctx, caller, target, access.CapReadAnyProfile); err != nil {
		return nil, err
	}
	return s.Get(ctx, target)
}

// Save creates or overwrites the caller's profile. An empty OwnerID is
// stamped with the caller; any other owner is rejected. IsVIP is never taken
// from in: new profiles start without it and existing ones keep theirs.
func (s *Service) Save(ctx context.Context, caller identity.Caller, in Profile) error {
	if err := s.guard.Authorize(ctx, caller, access.CapSaveProfile); err != nil {
		return err
	}
	if in.OwnerID == identity.Anonymous {
		in.OwnerID = caller
	}
	if in.OwnerID != caller {
		return apperr.PermissionDenied("%s cannot save the profile of %s", caller, in.OwnerID)
	}
	if err := in.Validate(); err != nil {
		return err
	}

	var created bool
	err := s.locker.WithLock(ctx, lock.KeyProfiles, func(ctx context.Context) error {
		now := s.now()
		next := Profile{
			OwnerID:     caller,
			Name:        in.Name,
			Age:         in.Age,
			Description: in.Description,
			Preferences: in.Preferences,
			UpdatedAt:   now,
		}

		existing, err := s.repo.Get(ctx, caller)
		switch {
		case errors.Is(err, ErrProfileNotFound):
			created = true
			next.IsVIP = false
			next.CreatedAt = now
		case err != nil:
			return fmt.Errorf("load profile: %w", err)
		default:
			next.IsVIP = existing.IsVIP
			next.CreatedAt = existing.CreatedAt
		}

		return s.repo.Upsert(ctx, next)
	})
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	log.Debug().
		Str("owner", caller.String()).
		Bool("created", created).
		Msg("profile saved")
	return nil
}
