// Package loop provides the single UI goroutine every component operation
// runs on. Device handlers, timers and file watchers post work onto the
// loop instead of touching UI state directly.
package loop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrClosed is returned by Post once the loop has stopped.
var ErrClosed = errors.New("loop closed")

// Loop executes posted functions one at a time, in order.
type Loop struct {
	tasks chan func()

	mu     sync.Mutex
	closed bool
	done   chan struct{}
	wg     sync.WaitGroup
}

// New creates a loop with room for buffer pending tasks.
func New(buffer int) *Loop {
	return &Loop{
		tasks: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Run executes tasks until ctx is cancelled. Timers started with Every are
// stopped when Run returns.
func (l *Loop) Run(ctx context.Context) error {
	defer func() {
		l.mu.Lock()
		l.closed = true
		close(l.done)
		l.mu.Unlock()
		l.wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Post queues fn to run on the loop goroutine. It blocks while the queue is
// full.
func (l *Loop) Post(fn func()) error {
	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()
	if closed {
		return ErrClosed
	}

	select {
	case l.tasks <- fn:
		return nil
	case <-l.done:
		return ErrClosed
	}
}

// Do runs fn on the loop goroutine and waits for it to finish.
func (l *Loop) Do(fn func() error) error {
	result := make(chan error, 1)
	if err := l.Post(func() { result <- fn() }); err != nil {
		return err
	}
	select {
	case err := <-result:
		return err
	case <-l.done:
		return ErrClosed
	}
}

// Every runs fn on the loop goroutine every interval. The returned cancel
// func must be called from the loop goroutine; once it returns, fn never
// runs again, including ticks already queued.
func (l *Loop) Every(interval time.Duration, fn func()) (cancel func()) {
	var stopped atomic.Bool
	stop := make(chan struct{})

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-l.done:
				return
			case <-ticker.C:
				err := l.Post(func() {
					if stopped.Load() {
						return
					}
					fn()
				})
				if err != nil {
					return
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			stopped.Store(true)
			close(stop)
		})
	}
}
