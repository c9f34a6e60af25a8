package iobyte

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrAsyncClosed is returned by AsyncWriter.Send after Close.
var ErrAsyncClosed = errors.New("iobyte: async writer closed")

// Hooks customize AsyncWriter behavior, mirroring transport.Hooks in the
// teacher repo: distinct metrics/logging per backend without duplicating
// the goroutine + buffer plumbing.
type Hooks struct {
	// OnError is called when send returns a non-nil error.
	OnError func(error)
	// OnAfter is called only after a successful send.
	OnAfter func()
	// OnDrop is called when the buffer is full; its returned error is
	// returned from Send. If nil, the overflow is silent.
	OnDrop func() error
}

// AsyncWriter funnels writes of arbitrary payloads through a single
// goroutine, giving producers non-blocking enqueue semantics. Generalized
// from internal/transport.AsyncTx (which was specialized to can.Frame) to
// any payload type via a generic buffered channel.
type AsyncWriter[T any] struct {
	mu     sync.Mutex
	ch     chan T
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	send   func(T) error
	hooks  Hooks
	closed atomic.Bool
}

// NewAsyncWriter constructs an AsyncWriter with a buffered channel of size buf.
func NewAsyncWriter[T any](parent context.Context, buf int, send func(T) error, hooks Hooks) *AsyncWriter[T] {
	ctx, cancel := context.WithCancel(parent)
	a := &AsyncWriter[T]{
		ch:     make(chan T, buf),
		ctx:    ctx,
		cancel: cancel,
		send:   send,
		hooks:  hooks,
	}
	a.wg.Add(1)
	go a.loop()
	return a
}

func (a *AsyncWriter[T]) loop() {
	defer a.wg.Done()
	for {
		select {
		case v, ok := <-a.ch:
			if !ok {
				return
			}
			if err := a.send(v); err != nil {
				if a.hooks.OnError != nil {
					a.hooks.OnError(err)
				}
				continue
			}
			if a.hooks.OnAfter != nil {
				a.hooks.OnAfter()
			}
		case <-a.ctx.Done():
			return
		}
	}
}

// Send queues v for asynchronous transmission, or invokes OnDrop if the
// buffer is full.
func (a *AsyncWriter[T]) Send(v T) error {
	if a.closed.Load() {
		return ErrAsyncClosed
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed.Load() {
		return ErrAsyncClosed
	}
	select {
	case a.ch <- v:
		return nil
	default:
		if a.hooks.OnDrop != nil {
			return a.hooks.OnDrop()
		}
		return nil
	}
}

// Close stops the worker and waits for it to exit.
func (a *AsyncWriter[T]) Close() {
	if a.closed.Swap(true) {
		return
	}
	a.cancel()
	a.mu.Lock()
	close(a.ch)
	a.mu.Unlock()
	a.wg.Wait()
}
