package catalog

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

// Service implements the catalog contract for one item type. Reads are
// public; every mutation requires access.CapManageCatalog.
type Service[T Item] struct {
	kind    string
	lockKey string
	repo    Repository[T]
	guard   *access.Guard
	locker  lock.Locker
}

func NewService[T Item](kind, lockKey string, repo Repository[T], guard *access.Guard, locker lock.Locker) *Service[T] {
	return &Service[T]{
		kind:    kind,
		lockKey: lockKey,
		repo:    repo,
		guard:   guard,
		locker:  locker,
	}
}

func NewFitnessService(repo Repository[FitnessListing], guard *access.Guard, locker lock.Locker) *Service[FitnessListing] {
	return NewService("fitness listing", lock.KeyFitness, repo, guard, locker)
}

func NewMembershipService(repo Repository[MembershipPlan], guard *access.Guard, locker lock.Locker) *Service[MembershipPlan] {
	return NewService("membership plan", lock.KeyMemberships, repo, guard, locker)
}

func (s *Service[T]) Kind() string {
	return s.kind
}

func (s *Service[T]) Add(ctx context.Context, caller identity.Caller, item T) error {
	if err := s.guard.Authorize(ctx, caller, access.CapManageCatalog); err != nil {
		return err
	}
	if err := item.Validate(); err != nil {
		return err
	}

	err := s.locker.WithLock(ctx, s.lockKey, func(ctx context.Context) error {
		return s.repo.Insert(ctx, item)
	})
	if err != nil {
		if errors.Is(err, ErrItemExists) {
			return apperr.Validation("%s %q already exists", s.kind, item.ItemID())
		}
		return fmt.Errorf("add %s: %w", s.kind, err)
	}

	s.logChange("added", caller, item.ItemID())
	return nil
}

// Update replaces every field of the item with the same id.
func (s *Service[T]) Update(ctx context.Context, caller identity.Caller, item T) error {
	if err := s.guard.Authorize(ctx, caller, access.CapManageCatalog); err != nil {
		return err
	}
	if err := item.Validate(); err != nil {
		return err
	}

	err := s.locker.WithLock(ctx, s.lockKey, func(ctx context.Context) error {
		return s.repo.Replace(ctx, item)
	})
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return apperr.NotFound(s.kind, item.ItemID())
		}
		return fmt.Errorf("update %s: %w", s.kind, err)
	}

	s.logChange("updated", caller, item.ItemID())
	return nil
}

// Delete permanently removes the item.
func (s *Service[T]) Delete(ctx context.Context, caller identity.Caller, id string) error {
	if err := s.guard.Authorize(ctx, caller, access.CapManageCatalog); err != nil {
		return err
	}

	err := s.locker.WithLock(ctx, s.lockKey, func(ctx context.Context) error {
		return s.repo.Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return apperr.NotFound(s.kind, id)
		}
		return fmt.Errorf("delete %s: %w", s.kind, err)
	}

	s.logChange("deleted", caller, id)
	return nil
}

func (s *Service[T]) Get(ctx context.Context, id string) (T, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return item, apperr.NotFound(s.kind, id)
		}
		return item, fmt.Errorf("get %s: %w", s.kind, err)
	}
	return item, nil
}

func (s *Service[T]) List(ctx context.Context) ([]T, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.kind, err)
	}
	return items, nil
}

func (s *Service[T]) logChange(action string, caller identity.Caller, id string) {
	log.Info().
		Str("kind", s.kind).
		Str("id", id).
		Str("caller", caller.String()).
		Msgf("catalog item %s", action)
}
