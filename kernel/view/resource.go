package view

import (
	"context"
	"sync"
)

// Snapshot is what a screen renders: data, an error, or a loading marker.
type Snapshot[T any] struct {
	Data    T
	HasData bool
	Err     error
	Loading bool
}

// Resource loads one data set for a screen. Results of superseded loads and
// loads that finish after Close are dropped.
type Resource[T any] struct {
	load func(ctx context.Context) (T, error)

	mu      sync.Mutex
	data    T
	hasData bool
	err     error
	loading bool
	gen     uint64
	closed  bool
}

func NewResource[T any](load func(ctx context.Context) (T, error)) *Resource[T] {
	return &Resource[T]{load: load}
}

// Load runs the loader and stores its result if no newer load started in the
// meantime. It returns the loader's error either way.
func (r *Resource[T]) Load(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.gen++
	gen := r.gen
	r.loading = true
	r.err = nil
	r.mu.Unlock()

	data, err := r.load(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || gen != r.gen {
		return err
	}
	r.loading = false
	if err != nil {
		r.err = err
		var zero T
		r.data = zero
		r.hasData = false
		return err
	}
	r.data = data
	r.hasData = true
	return nil
}

func (r *Resource[T]) Snapshot() Snapshot[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot[T]{Data: r.data, HasData: r.hasData, Err: r.err, Loading: r.loading}
}

// Reset drops the current data and invalidates any load in flight.
func (r *Resource[T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	var zero T
	r.data = zero
	r.hasData = false
	r.err = nil
	r.loading = false
}

// Close invalidates any load in flight and ignores later loads.
func (r *Resource[T]) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.gen++
	r.loading = false
}
