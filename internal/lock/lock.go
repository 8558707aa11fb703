// Package lock serialises booking writers per (barbershop, barber, date)
// cell. LocalLocker covers a single process; RedisLocker covers a fleet.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
)

// Locker acquires every key, in the order given, or none of them. The
// returned release frees them all and is safe to call once.
type Locker interface {
	Acquire(ctx context.Context, keys []string) (release func(), err error)
}

// ===============================
// LocalLocker
// ===============================

type entry struct {
	ch   chan struct{}
	refs int
}

type LocalLocker struct {
	mu      sync.Mutex
	entries map[string]*entry
	wait    time.Duration
}

// NewLocalLocker returns an in-process keyed mutex. Waiters give up with
// ErrLockTimeout after wait.
func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{
		entries: map[string]*entry{},
		wait:    wait,
	}
}

func (l *LocalLocker) ref(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *LocalLocker) unref(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

func (l *LocalLocker) Acquire(ctx context.Context, keys []string) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	held := make([]string, 0, len(keys))
	entries := make([]*entry, 0, len(keys))

	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-entries[i].ch
			l.unref(held[i], entries[i])
		}
	}

	for _, key := range keys {
		e := l.ref(key)
		select {
		case e.ch <- struct{}{}:
			held = append(held, key)
			entries = append(entries, e)
		case <-ctx.Done():
			l.unref(key, e)
			release()
			return nil, timeoutErr(ctx.Err())
		}
	}

	return sync.OnceFunc(release), nil
}

// Len is the number of keys currently held or waited on.
func (l *LocalLocker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func timeoutErr(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return httperr.ErrLockTimeout
}
