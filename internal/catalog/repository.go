package catalog

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrItemNotFound = errors.New("catalog item not found")
	ErrItemExists   = errors.New("catalog item already exists")
)

// Repository persists one catalog. List returns items in insertion order;
// Replace keeps an item's original position.
type Repository[T Item] interface {
	Insert(ctx context.Context, item T) error
	Replace(ctx context.Context, item T) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (T, error)
	List(ctx context.Context) ([]T, error)
}

var (
	_ Repository[FitnessListing] = (*MemoryRepository[FitnessListing])(nil)
	_ Repository[MembershipPlan] = (*MemoryRepository[MembershipPlan])(nil)
)

type MemoryRepository[T Item] struct {
	mu    sync.RWMutex
	byID  map[string]T
	order []string
}

func NewMemoryRepository[T Item]() *MemoryRepository[T] {
	return &MemoryRepository[T]{byID: make(map[string]T)}
}

func (m *MemoryRepository[T]) Insert(_ context.Context, item T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := item.ItemID()
	if _, ok := m.byID[id]; ok {
		return ErrItemExists
	}
	m.byID[id] = item
	m.order = append(m.order, id)
	return nil
}

func (m *MemoryRepository[T]) Replace(_ context.Context, item T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := item.ItemID()
	if _, ok := m.byID[id]; !ok {
		return ErrItemNotFound
	}
	m.byID[id] = item
	return nil
}

func (m *MemoryRepository[T]) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[id]; !ok {
		return ErrItemNotFound
	}
	delete(m.byID, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MemoryRepository[T]) Get(_ context.Context, id string) (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.byID[id]
	if !ok {
		var zero T
		return zero, ErrItemNotFound
	}
	return item, nil
}

func (m *MemoryRepository[T]) List(_ context.Context) ([]T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]T, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id])
	}
	return out, nil
}
