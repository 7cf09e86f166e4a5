package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/michaelquigley/pfxlog"
	"github.com/suntrap/buildboard/kernel/model"
	"golang.org/x/sync/singleflight"
)

// Path is the endpoint probed by HTTPProber.
const Path = "/health"

type Reachability int

const (
	Unknown Reachability = iota
	Reachable
	Unreachable
)

func (r Reachability) String() string {
	switch r {
	case Reachable:
		return "reachable"
	case Unreachable:
		return "unreachable"
	}
	return "unknown"
}

// State is the last known reachability. Both probes and Mark refresh CheckedAt.
type State struct {
	Reachability Reachability
	CheckedAt    time.Time
}

type Transition int

const (
	NoTransition Transition = iota
	// Reacquired is emitted when the backend answers after being marked unreachable.
	Reacquired
	// Lost is emitted the first time the backend fails after being reachable or unknown.
	Lost
)

func (t Transition) String() string {
	switch t {
	case Reacquired:
		return "reacquired"
	case Lost:
		return "lost"
	}
	return "none"
}

// Prober checks the backend once. It must honour ctx cancellation.
type Prober func(ctx context.Context) bool

// HTTPProber issues GET <baseURL>/health and reports any 2xx as reachable.
func HTTPProber(baseURL string, client *http.Client) Prober {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context) bool {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+Path, nil)
		if err != nil {
			return false
		}
		resp, err := client.Do(req)
		if err != nil {
			return false
		}
		defer func() { _ = resp.Body.Close() }()
		return resp.StatusCode >= 200 && resp.StatusCode < 300
	}
}

type Option func(*Cache)

func WithInterval(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.interval = d
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// Cache memoizes backend reachability. Concurrent probes share a single
// in-flight request.
type Cache struct {
	mu        sync.Mutex
	state     State
	interval  time.Duration
	timeout   time.Duration
	now       func() time.Time
	probe     Prober
	static    bool
	flight    singleflight.Group
	listeners []func(Transition)
}

func NewCache(probe Prober, opts ...Option) *Cache {
	c := &Cache{
		interval: model.DefaultHealthInterval,
		timeout:  model.DefaultRequestTimeout,
		now:      time.Now,
		probe:    probe,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewAlwaysReachable returns a cache that never probes and always reports
// the backend as reachable.
func NewAlwaysReachable() *Cache {
	c := NewCache(nil)
	c.static = true
	c.state = State{Reachability: Reachable}
	return c
}

// IsReachable returns the memoized reachability, probing when the memo is
// unknown or older than the interval.
func (c *Cache) IsReachable(ctx context.Context) bool {
	if c.static {
		return true
	}
	c.mu.Lock()
	st := c.state
	fresh := st.Reachability != Unknown && c.now().Sub(st.CheckedAt) < c.interval
	c.mu.Unlock()
	if fresh {
		return st.Reachability == Reachable
	}
	return c.Probe(ctx)
}

// Probe forces a health check, joining one already in flight.
func (c *Cache) Probe(ctx context.Context) bool {
	if c.static {
		return true
	}
	v, _, _ := c.flight.Do(Path, func() (interface{}, error) {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		ok := c.probe != nil && c.probe(pctx)
		c.record(ok)
		return ok, nil
	})
	return v.(bool)
}

// Mark records the outcome of a regular request.
func (c *Cache) Mark(reachable bool) Transition {
	if c.static {
		return NoTransition
	}
	return c.record(reachable)
}

func (c *Cache) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// OnTransition registers fn to be called after every Reacquired or Lost.
func (c *Cache) OnTransition(fn func(Transition)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Cache) record(reachable bool) Transition {
	c.mu.Lock()
	prev := c.state.Reachability
	next := Unreachable
	if reachable {
		next = Reachable
	}
	c.state.Reachability = next
	c.state.CheckedAt = c.now()

	t := NoTransition
	switch {
	case next == Reachable && prev == Unreachable:
		t = Reacquired
	case next == Unreachable && prev != Unreachable:
		t = Lost
	}
	listeners := append([]func(Transition){}, c.listeners...)
	c.mu.Unlock()

	switch t {
	case Reacquired:
		pfxlog.Logger().Info("backend reachable again, using live data")
	case Lost:
		pfxlog.Logger().Warn("backend unreachable, falling back to local data")
	}
	if t != NoTransition {
		for _, fn := range listeners {
			fn(t)
		}
	}
	return t
}
