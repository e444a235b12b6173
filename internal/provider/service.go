package provider

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
}

func NewService(repo Repository, guard *access.Guard, locker lock.Locker) *Service {
	return &Service{repo: repo, guard: guard, locker: locker}
}

// Add registers a new provider. Admin only; ids are unique.
func (s *Service) Add(ctx context.Context, caller identity.Caller, p Provider) error {
	if err := s.guard.Authorize(ctx, caller, access.CapManageProviders); err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}

	p.CreatedAt = time.Now()

	err := s.locker.WithLock(ctx, lock.KeyProviders, func(ctx context.Context) error {
		return s.repo.Insert(ctx, p)
	})
	if err != nil {
		if errors.Is(err, ErrProviderExists) {
			return apperr.Validation("provider %q already exists", p.ID)
		}
		return fmt.Errorf("add provider: %w", err)
	}

	log.Info().Str("provider_id", p.ID).Str("caller", caller.String()).Msg("provider added")
	return nil
}

// Get returns the provider with id or a NotFound error.
func (s *Service) Get(ctx context.Context, id string) (*Provider, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProviderNotFound) {
			return nil, apperr.NotFound("provider", id)
		}
		return nil, fmt.Errorf("get provider: %w", err)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]Provider, error) {
	providers, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	return providers, nil
}
