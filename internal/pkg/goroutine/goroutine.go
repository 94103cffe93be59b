// Package goroutine runs background tasks with a bounded concurrency limit
// and panic recovery.
package goroutine

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/ademolaidowu/gezapay/internal/pkg/stacktrace"
)

// DefaultMaxPerCPU scales the limit when NewManager receives a non-positive value.
const DefaultMaxPerCPU = 100

// Manager schedules functions onto goroutines up to a concurrency limit,
// recovers panics, and collects returned errors until Wait.
type Manager struct {
	sema chan struct{}
	wg   sync.WaitGroup

	mu     sync.Mutex
	errs   []error
	closed bool
}

// NewManager creates a Manager allowing at most max concurrent tasks.
func NewManager(max int) *Manager {
	if max < 1 {
		max = runtime.NumCPU() * DefaultMaxPerCPU
	}
	return &Manager{sema: make(chan struct{}, max)}
}

// Go schedules f when capacity is available. At the limit, or after Wait has
// been called, the task is dropped with a warning.
func (m *Manager) Go(ctx context.Context, f func(ctx context.Context) error) {
	if m == nil {
		return
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		slog.WarnContext(ctx, "goroutine manager is closed, skipping task")
		return
	}

	select {
	case m.sema <- struct{}{}:
		m.wg.Add(1)
		m.mu.Unlock()
	default:
		m.mu.Unlock()
		slog.WarnContext(ctx, "goroutine limit reached, task not started")
		return
	}

	go func() {
		defer func() {
			<-m.sema
			m.wg.Done()

			if rvr := recover(); rvr != nil {
				stack := debug.Stack()
				if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
					slog.ErrorContext(ctx, "panic in goroutine", "panic", rvr, "stack", paths)
				} else {
					slog.ErrorContext(ctx, "panic in goroutine", "panic", rvr, "stack", string(stack))
				}
			}
		}()

		select {
		case <-ctx.Done():
			slog.WarnContext(ctx, "goroutine canceled", "because", ctx.Err())
		default:
			if err := f(ctx); err != nil {
				m.mu.Lock()
				m.errs = append(m.errs, err)
				m.mu.Unlock()
			}
		}
	}()
}

// Wait stops accepting new tasks, blocks until running tasks finish, and
// returns their joined errors.
func (m *Manager) Wait() error {
	if m == nil {
		return nil
	}

	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.wg.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	return errors.Join(m.errs...)
}
