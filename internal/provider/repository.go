package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hackgods/carehub/internal/apperr"
)

var (
	ErrProviderNotFound = fmt.Errorf("provider %w", apperr.ErrNotFound)
	ErrProviderExists   = errors.New("provider already exists")
)

// Repository is append-only: providers are never updated or deleted.
type Repository interface {
	Insert(ctx context.Context, p Provider) error
	Get(ctx context.Context, id string) (*Provider, error)
	// List returns providers in creation order.
	List(ctx context.Context) ([]Provider, error)
}

var _ Repository = (*MemoryRepository)(nil)

type MemoryRepository struct {
	mu    sync.RWMutex
	byID  map[string]Provider
	order []string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]Provider)}
}

func (m *MemoryRepository) Insert(_ context.Context, p Provider) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[p.ID]; ok {
		return ErrProviderExists
	}
	m.byID[p.ID] = p
	m.order = append(m.order, p.ID)
	return nil
}

func (m *MemoryRepository) Get(_ context.Context, id string) (*Provider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.byID[id]
	if !ok {
		return nil, ErrProviderNotFound
	}
	return &p, nil
}

func (m *MemoryRepository) List(_ context.Context) ([]Provider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Provider, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id])
	}
	return out, nil
}
