package dispatch

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Mutex is a non-reentrant lock whose acquisition can be bounded by a context.
// It guards the engine and the state derived from it.
type Mutex struct {
	sem *semaphore.Weighted
}

func NewMutex() *Mutex {
	return &Mutex{sem: semaphore.NewWeighted(1)}
}

// Lock blocks until the lock is held or ctx is done.
func (m *Mutex) Lock(ctx context.Context) error {
	if err := m.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		m.sem.Release(1)
		return err
	}
	return nil
}

func (m *Mutex) TryLock() bool {
	return m.sem.TryAcquire(1)
}

func (m *Mutex) Unlock() {
	m.sem.Release(1)
}
