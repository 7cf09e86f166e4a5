package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/michaelquigley/pfxlog"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/pkg/errors"
	"github.com/suntrap/buildboard/kernel/model"
)

type Status string

const (
	Idle    Status = "idle"
	Loading Status = "loading"
	Success Status = "success"
	Failed  Status = "failed"
)

// Done is true for success and failed.
func (s Status) Done() bool {
	return s == Success || s == Failed
}

// Operation performs the remote call for one item.
type Operation[T any] func(ctx context.Context, item T) error

// Summary describes a finished batch.
type Summary struct {
	BatchID   string
	Succeeded []string
	Failed    []string
}

func (s Summary) Total() int {
	return len(s.Succeeded) + len(s.Failed)
}

// Tracker runs an operation over a batch of items one at a time and records
// a per-key status. Statuses linger for the grace period after the batch ends
// and are then cleared together.
type Tracker[T any] struct {
	name  string
	key   func(T) string
	grace time.Duration

	run sync.Mutex // serializes batches

	mu        sync.Mutex
	statuses  cmap.ConcurrentMap[string, Status]
	timer     *time.Timer
	gen       uint64
	disposed  bool
	listeners []func(key string, status Status)
}

type Option[T any] func(*Tracker[T])

func WithGracePeriod[T any](d time.Duration) Option[T] {
	return func(t *Tracker[T]) {
		if d >= 0 {
			t.grace = d
		}
	}
}

func New[T any](name string, key func(T) string, opts ...Option[T]) *Tracker[T] {
	t := &Tracker[T]{
		name:     name,
		key:      key,
		grace:    model.DefaultGracePeriod,
		statuses: cmap.New[Status](),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RunBatch replaces the status map with one holding every item as loading,
// then runs op on each in input order. Keys left over from an earlier batch
// are dropped and reported Idle. An error or panic from op marks that item
// failed and the batch continues.
func (t *Tracker[T]) RunBatch(ctx context.Context, items []T, op Operation[T]) Summary {
	t.run.Lock()
	defer t.run.Unlock()

	summary := Summary{BatchID: uuid.NewString()}
	log := pfxlog.Logger().WithField("tracker", t.name).WithField("batch", summary.BatchID)

	keys := make([]string, len(items))
	for i, item := range items {
		keys[i] = t.key(item)
	}

	t.mu.Lock()
	if t.disposed {
		t.mu.Unlock()
		return summary
	}
	t.stopTimerLocked()
	fresh := cmap.New[Status]()
	for _, k := range keys {
		fresh.Set(k, Loading)
	}
	old := t.statuses
	t.statuses = fresh
	t.mu.Unlock()
	for _, k := range old.Keys() {
		if !fresh.Has(k) {
			t.notify(k, Idle)
		}
	}
	for _, k := range keys {
		t.notify(k, Loading)
	}

	log.Infof("starting batch of %d item(s)", len(items))
	for i, item := range items {
		k := keys[i]
		if err := t.invoke(ctx, op, item); err != nil {
			log.WithField("key", k).WithError(err).Warn("operation failed")
			summary.Failed = append(summary.Failed, k)
			t.set(k, Failed)
		} else {
			summary.Succeeded = append(summary.Succeeded, k)
			t.set(k, Success)
		}
	}
	log.Infof("batch finished: %d succeeded, %d failed", len(summary.Succeeded), len(summary.Failed))

	t.scheduleClear()
	return summary
}

// Run is RunBatch for a single item.
func (t *Tracker[T]) Run(ctx context.Context, item T, op Operation[T]) Status {
	s := t.RunBatch(ctx, []T{item}, op)
	if len(s.Succeeded) == 1 {
		return Success
	}
	return Failed
}

// Status returns the recorded status for key, or Idle.
func (t *Tracker[T]) Status(key string) Status {
	t.mu.Lock()
	m := t.statuses
	t.mu.Unlock()
	if s, found := m.Get(key); found {
		return s
	}
	return Idle
}

// Snapshot copies the current status map.
func (t *Tracker[T]) Snapshot() map[string]Status {
	t.mu.Lock()
	m := t.statuses
	t.mu.Unlock()
	return m.Items()
}

// Subscribe registers fn for every status change. Clears report Idle.
func (t *Tracker[T]) Subscribe(fn func(key string, status Status)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, fn)
}

// Dispose cancels a pending clear. The tracker ignores all later batches.
func (t *Tracker[T]) Dispose() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.disposed = true
	t.stopTimerLocked()
}

func (t *Tracker[T]) invoke(ctx context.Context, op Operation[T], item T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("operation panicked: %v", r)
		}
	}()
	return op(ctx, item)
}

func (t *Tracker[T]) set(key string, s Status) {
	t.mu.Lock()
	if t.disposed {
		t.mu.Unlock()
		return
	}
	t.statuses.Set(key, s)
	t.mu.Unlock()
	t.notify(key, s)
}

func (t *Tracker[T]) scheduleClear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.disposed {
		return
	}
	t.gen++
	gen := t.gen
	t.timer = time.AfterFunc(t.grace, func() { t.clear(gen) })
}

func (t *Tracker[T]) clear(gen uint64) {
	t.mu.Lock()
	if t.disposed || gen != t.gen {
		t.mu.Unlock()
		return
	}
	old := t.statuses
	t.statuses = cmap.New[Status]()
	t.timer = nil
	t.mu.Unlock()

	for _, k := range old.Keys() {
		t.notify(k, Idle)
	}
}

func (t *Tracker[T]) stopTimerLocked() {
	t.gen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *Tracker[T]) notify(key string, s Status) {
	t.mu.Lock()
	listeners := append([]func(string, Status){}, t.listeners...)
	t.mu.Unlock()
	for _, fn := range listeners {
		fn(key, s)
	}
}
