package engine

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suntrap/buildboard/kernel/api"
	"github.com/suntrap/buildboard/kernel/model"
	"github.com/suntrap/buildboard/kernel/store"
	"github.com/suntrap/buildboard/kernel/stub"
	"github.com/suntrap/buildboard/kernel/tracker"
)

func newTestContext(t *testing.T, mode model.Mode, opts stub.Options) (*Context, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(stub.NewServer(store.NewMemoryStore(), opts))
	t.Cleanup(srv.Close)

	cfg := model.DefaultConfig()
	cfg.BackendURL = srv.URL
	cfg.Mode = mode
	cfg.RequestTimeout = 500 * time.Millisecond
	cfg.FallbackDelay = time.Millisecond
	cfg.GracePeriod = 50 * time.Millisecond

	ctx, err := NewContext(cfg, WithStore(store.NewMemoryStore()))
	require.NoError(t, err)
	t.Cleanup(ctx.Close)
	return ctx, srv
}

func TestEngine_StrictReads(t *testing.T) {
	c, _ := newTestContext(t, model.ModeStrict, stub.Options{})
	ctx := context.Background()

	inv, err := c.Engine.BuildStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 19, inv.Count())

	hist, err := c.Engine.BuildHistory(ctx, "2025-01-15")
	require.NoError(t, err)
	assert.Equal(t, 11, hist.Count())

	_, err = c.Engine.BuildHistory(ctx, "15/01/2025")
	assert.Error(t, err)

	d, err := c.Engine.ServerDetails(ctx, "op-66666-6")
	require.NoError(t, err)
	assert.Equal(t, "S1-A", d.RackID)

	pcs, err := c.Engine.Preconfigs(ctx)
	require.NoError(t, err)
	assert.Len(t, pcs, 5)

	pushed, err := c.Engine.PushedPreconfigs(ctx)
	require.NoError(t, err)
	assert.Len(t, pushed, 4)

	log, err := c.Engine.BuildLog(ctx, "cd-45678-89")
	require.NoError(t, err)
	assert.Contains(t, log, "3-6")

	u, err := c.Engine.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dev-user", u.ID)
}

func TestEngine_ValidationBeforeRequest(t *testing.T) {
	c, _ := newTestContext(t, model.ModeStrict, stub.Options{})
	ctx := context.Background()

	_, err := c.Engine.Assign(ctx, model.Server{Hostname: "h"})
	assert.True(t, errors.Is(err, model.ErrInvalidAssignment))

	_, err = c.Engine.PushPreconfig(ctx, 3)
	assert.True(t, errors.Is(err, model.ErrInvalidDepot))

	_, err = c.Engine.ServerDetails(ctx, "")
	assert.Error(t, err)
}

func TestEngine_AssignBatch(t *testing.T) {
	c, _ := newTestContext(t, model.ModeStrict, stub.Options{
		FailAssign: func(r model.AssignRequest) bool { return r.DBID == "2" },
	})

	servers := []model.Server{
		{DBID: "1", Hostname: "h1", SerialNumber: "s1"},
		{DBID: "2", Hostname: "h2", SerialNumber: "s2"},
		{DBID: "3", Hostname: "h3", SerialNumber: "s3"},
	}
	summary := c.Engine.AssignBatch(context.Background(), c.Assignments, servers)

	assert.Equal(t, []string{"1", "3"}, summary.Succeeded)
	assert.Equal(t, []string{"2"}, summary.Failed)
	assert.Equal(t, map[string]tracker.Status{"1": tracker.Success, "2": tracker.Failed, "3": tracker.Success}, c.Assignments.Snapshot())

	require.Eventually(t, func() bool {
		return len(c.Assignments.Snapshot()) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestEngine_Push(t *testing.T) {
	c, _ := newTestContext(t, model.ModeStrict, stub.Options{})

	st := c.Engine.Push(context.Background(), c.Pushes, 2)
	assert.Equal(t, tracker.Success, st)
	assert.Equal(t, tracker.Success, c.Pushes.Status(DepotKey(2)))

	st = c.Engine.Push(context.Background(), c.Pushes, 3)
	assert.Equal(t, tracker.Failed, st)
}

func TestEngine_StrictSurfacesBackendErrors(t *testing.T) {
	c, srv := newTestContext(t, model.ModeStrict, stub.Options{RequireSession: true})

	_, err := c.Engine.BuildStatus(context.Background())
	var be *api.BackendError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, 401, be.Status)

	srv.Close()
	_, err = c.Engine.Hostnames(context.Background())
	require.True(t, errors.As(err, &be))
}

func TestEngine_ResilientUsesStore(t *testing.T) {
	c, srv := newTestContext(t, model.ModeResilient, stub.Options{})
	srv.Close()
	ctx := context.Background()

	inv, err := c.Engine.BuildStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 19, inv.Count())
	assert.False(t, c.Health.IsReachable(ctx))

	resp, err := c.Engine.Assign(ctx, inv.Region("dal")[0])
	require.NoError(t, err)
	assert.True(t, resp.Succeeded())

	inv, err = c.Engine.BuildStatus(ctx)
	require.NoError(t, err)
	assert.True(t, inv.Region("dal")[0].IsAssigned(), "fallback assignment should be visible on refetch")

	u, err := c.Engine.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Dev User", u.Name)
}

type countingStore struct {
	*store.MemoryStore
	logs int
}

func (s *countingStore) BuildLog(hostname string) string {
	s.logs++
	return s.MemoryStore.BuildLog(hostname)
}

func TestEngine_BuildLogFallbackOnlyOnFailure(t *testing.T) {
	srv := httptest.NewServer(stub.NewServer(store.NewMemoryStore(), stub.Options{}))
	defer srv.Close()

	cfg := model.DefaultConfig()
	cfg.BackendURL = srv.URL
	cfg.Mode = model.ModeResilient
	cfg.RequestTimeout = 500 * time.Millisecond
	cfg.FallbackDelay = time.Millisecond

	counting := &countingStore{MemoryStore: store.NewMemoryStore()}
	c, err := NewContext(cfg, WithStore(counting))
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	log, err := c.Engine.BuildLog(ctx, "cd-45678-89")
	require.NoError(t, err)
	assert.NotEmpty(t, log)
	assert.Equal(t, 0, counting.logs)

	srv.Close()
	log, err = c.Engine.BuildLog(ctx, "cd-45678-89")
	require.NoError(t, err)
	assert.NotEmpty(t, log)
	assert.Equal(t, 1, counting.logs)
}

func TestEngine_LoginLogout(t *testing.T) {
	c, srv := newTestContext(t, model.ModeStrict, stub.Options{RequireSession: true})
	ctx := context.Background()

	assert.Equal(t, srv.URL+"/saml/login", c.Engine.LoginURL())

	_, err := api.Fetch(ctx, c.Client, PathLogin, nil, model.User{})
	require.NoError(t, err)
	_, err = c.Engine.Me(ctx)
	require.NoError(t, err)

	require.NoError(t, c.Engine.Logout(ctx))
	_, err = c.Engine.Me(ctx)
	assert.Error(t, err)

	// local session is cleared even when the backend is gone
	_, err = api.Fetch(ctx, c.Client, PathLogin, nil, model.User{})
	require.NoError(t, err)
	srv.Close()
	assert.Error(t, c.Engine.Logout(ctx))
	assert.Empty(t, c.Client.HTTPClient().Jar.Cookies(mustParse(t, srv.URL)))
}

func TestNewHealthCache(t *testing.T) {
	cfg := model.DefaultConfig()
	cache := NewHealthCache(cfg, nil)
	assert.True(t, cache.IsReachable(context.Background()), "strict mode never probes")
}
