package consultation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hackgods/carehub/internal/apperr"
	"github.com/hackgods/carehub/internal/identity"
)

var (
	ErrConsultationNotFound = fmt.Errorf("consultation %w", apperr.ErrNotFound)
	// ErrStatusChanged means a compare-and-set update found a different status.
	ErrStatusChanged = errors.New("consultation status changed concurrently")
)

// Repository contains all storage interactions needed by the service.
type Repository interface {
	Create(ctx context.Context, c Consultation) error
	Get(ctx context.Context, id string) (*Consultation, error)

	// UpdateStatus moves id from -> to only if it is still in from.
	UpdateStatus(ctx context.Context, id string, from, to Status) (*Consultation, error)

	// List and ListByPatient return records in creation order.
	List(ctx context.Context) ([]Consultation, error)
	ListByPatient(ctx context.Context, patient identity.Caller) ([]Consultation, error)

	// Event logging
	InsertEvent(ctx context.Context, ev EventLog) error
	ListEvents(ctx context.Context, consultationID string) ([]EventLog, error)
}

var _ Repository = (*MemoryRepository)(nil)

type MemoryRepository struct {
	mu     sync.RWMutex
	byID   map[string]Consultation
	order  []string
	events []EventLog
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]Consultation)}
}

func (m *MemoryRepository) Create(_ context.Context, c Consultation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[c.ID]; ok {
		return fmt.Errorf("consultation %q already exists", c.ID)
	}
	m.byID[c.ID] = c
	m.order = append(m.order, c.ID)
	return nil
}

func (m *MemoryRepository) Get(_ context.Context, id string) (*Consultation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.byID[id]
	if !ok {
		return nil, ErrConsultationNotFound
	}
	return &c, nil
}

func (m *MemoryRepository) UpdateStatus(_ context.Context, id string, from, to Status) (*Consultation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.byID[id]
	if !ok {
		return nil, ErrConsultationNotFound
	}
	if c.Status != from {
		return nil, ErrStatusChanged
	}
	c.Status = to
	c.UpdatedAt = time.Now()
	m.byID[id] = c
	return &c, nil
}

func (m *MemoryRepository) List(_ context.Context) ([]Consultation, error) {
	return m.filter(func(Consultation) bool { return true }), nil
}

func (m *MemoryRepository) ListByPatient(_ context.Context, patient identity.Caller) ([]Consultation, error) {
	return m.filter(func(c Consultation) bool { return c.PatientID == patient }), nil
}

func (m *MemoryRepository) filter(keep func(Consultation) bool) []Consultation {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []Consultation{}
	for _, id := range m.order {
		if c := m.byID[id]; keep(c) {
			out = append(out, c)
		}
	}
	return out
}

func (m *MemoryRepository) InsertEvent(_ context.Context, ev EventLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ev.ID = int64(len(m.events) + 1)
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	m.events = append(m.events, ev)
	return nil
}

func (m *MemoryRepository) ListEvents(_ context.Context, consultationID string) ([]EventLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []EventLog{}
	for _, ev := range m.events {
		if ev.ConsultationID == consultationID {
			out = append(out, ev)
		}
	}
	return out, nil
}
