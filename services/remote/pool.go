package remote

import (
	"context"
)

// Pool is a bounded set of reusable handles to one downstream dependency.
// Handles are created lazily on first demand and never recycled: reconnecting
// is the transport's job, so a handle stays valid for the pool's lifetime.
// When all handles are out, Acquire blocks until one is released or ctx ends.
type Pool[T any] struct {
	factory func() (T, error)
	idle    chan T
	slots   chan struct{}
}

// NewPool creates a pool of at most size handles built by factory. The
// factory must not perform an eager handshake; construction failures surface
// on Acquire.
func NewPool[T any](size int, factory func() (T, error)) *Pool[T] {
	return &Pool[T]{
		factory: factory,
		idle:    make(chan T, size),
		slots:   make(chan struct{}, size),
	}
}

// Acquire returns a handle, creating one if the pool is below capacity. The
// caller must Release it on every exit path.
func (p *Pool[T]) Acquire(ctx context.Context) (T, error) {
	var zero T

	select {
	case handle := <-p.idle:
		return handle, nil
	default:
	}

	select {
	case handle := <-p.idle:
		return handle, nil
	case p.slots <- struct{}{}:
		handle, err := p.factory()
		if err != nil {
			<-p.slots
			return zero, err
		}
		return handle, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Release returns a handle to the pool. Recycling is a no-op.
func (p *Pool[T]) Release(handle T) {
	// idle has the same capacity as slots, so this never blocks for a
	// handle the pool created
	select {
	case p.idle <- handle:
	default:
	}
}
