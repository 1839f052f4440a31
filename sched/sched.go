// Package sched runs deferred callbacks on a single owner.
//
// Callers hand work to a Scheduler and return immediately; the owner runs
// the callbacks later, one at a time and in submission order. Two
// implementations exist: Loop owns a goroutine and optionally batches
// callbacks on a tick, Queue leaves the turn to a host loop that calls
// RunPending.
package sched

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned by Flush on a closed Loop.
var ErrClosed = errors.New("sched: loop closed")

// Scheduler defers fn to a later turn of its owner. Schedule never blocks
// on the callback itself.
type Scheduler interface {
	Schedule(fn func())
}

// Loop is a Scheduler backed by one owner goroutine.
type Loop struct {
	mu      sync.Mutex
	pending []func()
	closed  bool

	wake chan struct{}
	done chan struct{}
	wg   sync.WaitGroup

	tick time.Duration
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithTick makes the loop wait d after the first callback of a batch before
// running it, so callbacks scheduled within the same tick run together.
func WithTick(d time.Duration) LoopOption {
	return func(l *Loop) {
		l.tick = d
	}
}

// NewLoop starts a loop. Call Close to stop it.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.wg.Add(1)
	go l.run()
	return l
}

// Schedule implements Scheduler. Callbacks scheduled after Close are
// dropped.
func (l *Loop) Schedule(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.pending = append(l.pending, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Flush waits until every callback scheduled before the call has run.
func (l *Loop) Flush(ctx context.Context) error {
	ran := make(chan struct{})
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.mu.Unlock()

	l.Schedule(func() { close(ran) })
	select {
	case <-ran:
		return nil
	case <-l.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the loop and waits for the running batch to finish. Pending
// callbacks are dropped. Close is idempotent.
func (l *Loop) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.pending = nil
	l.mu.Unlock()

	close(l.done)
	l.wg.Wait()
}

func (l *Loop) run() {
	defer l.wg.Done()
	for {
		select {
		case <-l.done:
			return
		case <-l.wake:
		}

		if l.tick > 0 {
			t := time.NewTimer(l.tick)
			select {
			case <-l.done:
				t.Stop()
				return
			case <-t.C:
			}
		}

		for _, fn := range l.take() {
			fn()
		}
	}
}

func (l *Loop) take() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fns := l.pending
	l.pending = nil
	return fns
}

// Queue is a Scheduler whose owner is the caller of RunPending, typically a
// host render loop calling it once per frame.
type Queue struct {
	mu      sync.Mutex
	pending []func()
}

// Schedule implements Scheduler.
func (q *Queue) Schedule(fn func()) {
	if fn == nil {
		return
	}
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	q.mu.Unlock()
}

// Len returns the number of callbacks waiting to run.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// RunPending runs the callbacks queued so far and returns how many ran.
// Callbacks queued while it runs wait for the next call.
func (q *Queue) RunPending() int {
	q.mu.Lock()
	fns := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}
