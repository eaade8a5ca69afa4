// Package poolutil provides a bounded free list of reusable values.
package poolutil

// Pool keeps at most size idle values. Unlike sync.Pool, idle values are
// never dropped by the garbage collector, which suits objects that are
// expensive to build and cheap to reset.
type Pool[T any] struct {
	newFn   func() T
	resetFn func(T) T
	idle    chan T
}

// NewPool creates a pool. reset may be nil; otherwise it runs on every value
// handed back to Put.
func NewPool[T any](newFn func() T, reset func(T) T, size int) *Pool[T] {
	return &Pool[T]{
		newFn:   newFn,
		resetFn: reset,
		idle:    make(chan T, size),
	}
}

// Get returns an idle value or builds a new one.
func (p *Pool[T]) Get() T {
	select {
	case v := <-p.idle:
		return v
	default:
		return p.newFn()
	}
}

// Put returns v to the pool. It is discarded if the pool is full.
func (p *Pool[T]) Put(v T) {
	if p.resetFn != nil {
		v = p.resetFn(v)
	}
	select {
	case p.idle <- v:
	default:
	}
}

// Idle reports how many values are waiting to be reused.
func (p *Pool[T]) Idle() int {
	return len(p.idle)
}
