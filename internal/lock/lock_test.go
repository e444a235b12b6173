package lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestLocalSerializesSameKey(t *testing.T) {
	l := NewLocal()

	var (
		wg      sync.WaitGroup
		active  int
		maxSeen int
		mu      sync.Mutex
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.WithLock(context.Background(), KeyConsultations, func(ctx context.Context) error {
				mu.Lock()
				active++
				if active > maxSeen {
					maxSeen = active
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Errorf("max concurrent holders = %d, want 1", maxSeen)
	}
}

func TestLocalKeysAreIndependent(t *testing.T) {
	l := NewLocal()
	entered := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_ = l.WithLock(context.Background(), KeyProviders, func(ctx context.Context) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	done := make(chan struct{})
	go func() {
		_ = l.WithLock(context.Background(), KeyFitness, func(ctx context.Context) error { return nil })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key was blocked")
	}
	close(release)
}

func TestLocalPropagatesErrorAndCancellation(t *testing.T) {
	l := NewLocal()
	want := errors.New("boom")

	if err := l.WithLock(context.Background(), KeyRoles, func(ctx context.Context) error { return want }); !errors.Is(err, want) {
		t.Errorf("WithLock() = %v, want %v", err, want)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := l.WithLock(ctx, KeyRoles, func(ctx context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("WithLock(cancelled) = %v, want context.Canceled", err)
	}
	if called {
		t.Error("fn ran on a cancelled context")
	}
}
