package profile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hackgods/carehub/internal/apperr"
	"github.com/hackgods/carehub/internal/identity"
)

var ErrProfileNotFound = fmt.Errorf("profile %w", apperr.ErrNotFound)

// Repository persists one profile per owner.
type Repository interface {
	Get(ctx context.Context, owner identity.Caller) (*Profile, error)
	// Upsert inserts p or replaces every column of the existing row.
	Upsert(ctx context.Context, p Profile) error
	SetVIP(ctx context.Context, owner identity.Caller, isVIP bool) error
}

var _ Repository = (*MemoryRepository)(nil)

type MemoryRepository struct {
	mu       sync.RWMutex
	profiles map[identity.Caller]Profile
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{profiles: make(map[identity.Caller]Profile)}
}

func (m *MemoryRepository) Get(_ context.Context, owner identity.Caller) (*Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[owner]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return &p, nil
}

func (m *MemoryRepository) Upsert(_ context.Context, p Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.profiles[p.OwnerID] = p
	return nil
}

func (m *MemoryRepository) SetVIP(_ context.Context, owner identity.Caller, isVIP bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[owner]
	if !ok {
		return ErrProfileNotFound
	}
	p.IsVIP = isVIP
	p.UpdatedAt = time.Now()
	m.profiles[owner] = p
	return nil
}
