package engine

import (
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"github.com/suntrap/buildboard/kernel/api"
	"github.com/suntrap/buildboard/kernel/health"
	"github.com/suntrap/buildboard/kernel/model"
	"github.com/suntrap/buildboard/kernel/store"
	"github.com/suntrap/buildboard/kernel/tracker"
)

// Context owns everything a front end needs for one backend: the health
// cache, the client, the fallback store and the operation trackers.
type Context struct {
	Config      *model.Config
	Health      *health.Cache
	Client      *api.Client
	Store       store.OperationStore
	Engine      *Engine
	Assignments *tracker.Tracker[model.Server]
	Pushes      *tracker.Tracker[int]
}

type ContextOption func(*contextOptions)

type contextOptions struct {
	store      store.OperationStore
	httpClient *http.Client
	health     *health.Cache
}

// WithStore overrides the store opened from Config.FixturesPath.
func WithStore(s store.OperationStore) ContextOption {
	return func(o *contextOptions) { o.store = s }
}

func WithHTTPClient(c *http.Client) ContextOption {
	return func(o *contextOptions) { o.httpClient = c }
}

func WithHealth(c *health.Cache) ContextOption {
	return func(o *contextOptions) { o.health = c }
}

func NewContext(cfg *model.Config, opts ...ContextOption) (*Context, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := &contextOptions{}
	for _, opt := range opts {
		opt(o)
	}

	if o.store == nil {
		s, err := store.Open(cfg.FixturesPath)
		if err != nil {
			return nil, err
		}
		o.store = s
	}

	cache := o.health
	if cache == nil {
		cache = NewHealthCache(cfg, o.httpClient)
	}

	var clientOpts []api.Option
	if o.httpClient != nil {
		clientOpts = append(clientOpts, api.WithHTTPClient(o.httpClient))
	}
	client, err := api.NewClient(cfg, cache, clientOpts...)
	if err != nil {
		return nil, err
	}

	return &Context{
		Config: cfg,
		Health: cache,
		Client: client,
		Store:  o.store,
		Engine: NewEngine(client, o.store),
		Assignments: tracker.New("assign", func(s model.Server) string { return s.DBID },
			tracker.WithGracePeriod[model.Server](cfg.GracePeriod)),
		Pushes: tracker.New("push", DepotKey, tracker.WithGracePeriod[int](cfg.GracePeriod)),
	}, nil
}

// NewHealthCache probes the backend in resilient mode. In strict mode every
// request goes to the backend, so the cache always reports it reachable.
func NewHealthCache(cfg *model.Config, hc *http.Client) *health.Cache {
	if cfg.Mode != model.ModeResilient {
		return health.NewAlwaysReachable()
	}
	return health.NewCache(health.HTTPProber(cfg.BackendURL, hc),
		health.WithInterval(cfg.HealthInterval),
		health.WithTimeout(cfg.RequestTimeout))
}

// Close cancels pending tracker clears.
func (c *Context) Close() {
	c.Assignments.Dispose()
	c.Pushes.Dispose()
}

// DepotKey is the tracker key of a preconfig push.
func DepotKey(depot int) string {
	return strconv.Itoa(depot)
}
