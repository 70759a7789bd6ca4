package testutil

import (
	"context"
	"sync"

	"github.com/roach88/notes-sidecar/internal/lock"
)

// CountingLocker wraps a lock.Acquirer and records how it is used. Held
// reports whether any lock is currently held through it, which a FakeApp
// can use as its guard.
type CountingLocker struct {
	Inner lock.Acquirer

	mu        sync.Mutex
	names     []string
	active    int
	maxActive int
}

// NewCountingLocker wraps inner. A nil inner grants every lock immediately.
func NewCountingLocker(inner lock.Acquirer) *CountingLocker {
	return &CountingLocker{Inner: inner}
}

func (l *CountingLocker) Acquire(ctx context.Context, name string) (func() error, error) {
	release := func() error { return nil }
	if l.Inner != nil {
		var err error
		release, err = l.Inner.Acquire(ctx, name)
		if err != nil {
			return nil, err
		}
	}

	l.mu.Lock()
	l.names = append(l.names, name)
	l.active++
	l.maxActive = max(l.maxActive, l.active)
	l.mu.Unlock()

	return func() error {
		l.mu.Lock()
		l.active--
		l.mu.Unlock()
		return release()
	}, nil
}

// Held reports whether a lock is currently held.
func (l *CountingLocker) Held() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active > 0
}

// Names returns the lock names in acquisition order.
func (l *CountingLocker) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.names...)
}

// MaxActive is the largest number of simultaneously held locks seen.
func (l *CountingLocker) MaxActive() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.maxActive
}
