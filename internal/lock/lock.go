// Package lock serializes mutations per store.
package lock

import (
	"context"
	"sync"
)

// Store keys. Each store has its own serialization point so unrelated
// operations never block each other.
const (
	KeyRoles         = "roles"
	KeyProfiles      = "profiles"
	KeyProviders     = "providers"
	KeyFitness       = "catalog:fitness"
	KeyMemberships   = "catalog:memberships"
	KeyConsultations = "consultations"
)

// Locker runs fn while holding the lock named by key.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// Local is an in-process Locker with one mutex per key.
type Local struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLocal() *Local {
	return &Local{locks: make(map[string]*sync.Mutex)}
}

func (l *Local) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := l.mutex(key)
	m.Lock()
	defer m.Unlock()

	return fn(ctx)
}

func (l *Local) mutex(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	return m
}
