package access

import (
	"context"
	"sync"
	"time"

	"github.com/hackgods/carehub/internal/identity"
)

// Repository stores explicit role assignments. Callers without one fall back
// to the registry's defaults.
type Repository interface {
	GetAssignment(ctx context.Context, caller identity.Caller) (*Assignment, bool, error)
	SetAssignment(ctx context.Context, caller identity.Caller, role Role) error
}

var _ Repository = (*MemoryRepository)(nil)

type MemoryRepository struct {
	mu          sync.RWMutex
	assignments map[identity.Caller]Assignment
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{assignments: make(map[identity.Caller]Assignment)}
}

func (m *MemoryRepository) GetAssignment(_ context.Context, caller identity.Caller) (*Assignment, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.assignments[caller]
	if !ok {
		return nil, false, nil
	}
	return &a, true, nil
}

func (m *MemoryRepository) SetAssignment(_ context.Context, caller identity.Caller, role Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.assignments[caller] = Assignment{Caller: caller, Role: role, UpdatedAt: time.Now()}
	return nil
}
