package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suntrap/buildboard/kernel/health"
	"github.com/suntrap/buildboard/kernel/model"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestClient(t *testing.T, url string, mode model.Mode) (*Client, *health.Cache) {
	t.Helper()
	cfg := model.DefaultConfig()
	cfg.BackendURL = url
	cfg.Mode = mode
	cfg.RequestTimeout = 100 * time.Millisecond
	cfg.FallbackDelay = 20 * time.Millisecond
	require.NoError(t, cfg.Validate())

	cache := health.NewCache(nil)
	c, err := NewClient(cfg, cache)
	require.NoError(t, err)
	return c, cache
}

func testBackend() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(payload{Name: "live", Count: 3})
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/garbage", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json"))
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		var in payload
		_ = json.NewDecoder(r.Body).Decode(&in)
		in.Name = r.Method + ":" + r.Header.Get("Content-Type") + ":" + in.Name
		_ = json.NewEncoder(w).Encode(in)
	})
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
		_ = json.NewEncoder(w).Encode(payload{Name: "logged-in"})
	})
	mux.HandleFunc("/whoami", func(w http.ResponseWriter, r *http.Request) {
		ck, err := r.Cookie("session")
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(payload{Name: ck.Value})
	})
	mux.HandleFunc("/text", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("line one\nline two\n"))
	})
	return httptest.NewServer(mux)
}

func TestFetch_StrictSuccess(t *testing.T) {
	srv := testBackend()
	defer srv.Close()
	c, cache := newTestClient(t, srv.URL, model.ModeStrict)

	out, err := Fetch(context.Background(), c, "/ok", nil, payload{Name: "fallback"})
	require.NoError(t, err)
	assert.Equal(t, payload{Name: "live", Count: 3}, out)
	assert.Equal(t, health.Unknown, cache.State().Reachability, "strict mode must not touch the health cache")
}

func TestFetch_StrictNon2xx(t *testing.T) {
	srv := testBackend()
	defer srv.Close()
	c, cache := newTestClient(t, srv.URL, model.ModeStrict)

	out, err := Fetch(context.Background(), c, "/broken", nil, payload{Name: "fallback"})
	require.Error(t, err)
	var be *BackendError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, http.StatusInternalServerError, be.Status)
	assert.Equal(t, "/broken", be.Endpoint)
	assert.Equal(t, payload{}, out)
	assert.Equal(t, health.Unknown, cache.State().Reachability)
}

func TestFetch_StrictTimeout(t *testing.T) {
	srv := testBackend()
	defer srv.Close()
	c, _ := newTestClient(t, srv.URL, model.ModeStrict)

	_, err := Fetch(context.Background(), c, "/slow", nil, payload{})
	var te *TimeoutError
	require.True(t, errors.As(err, &te), "expected TimeoutError, got %v", err)
	assert.Equal(t, 100*time.Millisecond, te.Timeout)
}

func TestFetch_StrictTransportFailure(t *testing.T) {
	srv := testBackend()
	c, _ := newTestClient(t, srv.URL, model.ModeStrict)
	srv.Close()

	_, err := Fetch(context.Background(), c, "/ok", nil, payload{})
	var be *BackendError
	require.True(t, errors.As(err, &be), "expected BackendError, got %v", err)
	assert.Equal(t, 0, be.Status)
	assert.NotNil(t, be.Err)
}

func TestFetch_StrictUndecodableBody(t *testing.T) {
	srv := testBackend()
	defer srv.Close()
	c, _ := newTestClient(t, srv.URL, model.ModeStrict)

	_, err := Fetch(context.Background(), c, "/garbage", nil, payload{})
	var be *BackendError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, http.StatusOK, be.Status)
}

func TestFetch_ResilientFallsBack(t *testing.T) {
	srv := testBackend()
	defer srv.Close()
	c, cache := newTestClient(t, srv.URL, model.ModeResilient)
	fallback := payload{Name: "fallback", Count: 7}

	for _, endpoint := range []string{"/broken", "/garbage", "/slow", "/missing"} {
		t.Run(endpoint, func(t *testing.T) {
			start := time.Now()
			out, err := Fetch(context.Background(), c, endpoint, nil, fallback)
			require.NoError(t, err)
			assert.Equal(t, fallback, out)
			assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
			assert.Equal(t, health.Unreachable, cache.State().Reachability)
		})
	}
}

func TestFetch_ResilientTransitions(t *testing.T) {
	srv := testBackend()
	defer srv.Close()
	c, cache := newTestClient(t, srv.URL, model.ModeResilient)

	var seen []health.Transition
	cache.OnTransition(func(tr health.Transition) { seen = append(seen, tr) })

	_, err := Fetch(context.Background(), c, "/broken", nil, payload{})
	require.NoError(t, err)
	_, err = Fetch(context.Background(), c, "/broken", nil, payload{})
	require.NoError(t, err)

	out, err := Fetch(context.Background(), c, "/ok", nil, payload{})
	require.NoError(t, err)
	assert.Equal(t, "live", out.Name)
	_, err = Fetch(context.Background(), c, "/ok", nil, payload{})
	require.NoError(t, err)

	assert.Equal(t, []health.Transition{health.Lost, health.Reacquired}, seen)
	assert.Equal(t, health.Reachable, cache.State().Reachability)
}

func TestFetch_ResilientCallerCancelled(t *testing.T) {
	srv := testBackend()
	defer srv.Close()
	c, _ := newTestClient(t, srv.URL, model.ModeResilient)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, err := Fetch(ctx, c, "/ok", nil, payload{Name: "fallback"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "fallback", out.Name)
}

func TestFetch_RequestBodyAndHeaders(t *testing.T) {
	srv := testBackend()
	defer srv.Close()
	c, _ := newTestClient(t, srv.URL, model.ModeStrict)

	out, err := Fetch(context.Background(), c, "/echo", &Request{Method: http.MethodPost, Body: payload{Name: "x"}}, payload{})
	require.NoError(t, err)
	assert.Equal(t, "POST:application/json:x", out.Name)

	hdr := http.Header{}
	hdr.Set("content-type", "text/plain")
	out, err = Fetch(context.Background(), c, "/echo", &Request{Method: http.MethodPost, Header: hdr, Body: payload{Name: "y"}}, payload{})
	require.NoError(t, err)
	assert.Equal(t, "POST:text/plain:y", out.Name)
}

func TestFetch_CookiesPersist(t *testing.T) {
	srv := testBackend()
	defer srv.Close()
	c, _ := newTestClient(t, srv.URL, model.ModeStrict)

	_, err := Fetch(context.Background(), c, "/whoami", nil, payload{})
	require.Error(t, err)

	_, err = Fetch(context.Background(), c, "/login", nil, payload{})
	require.NoError(t, err)

	out, err := Fetch(context.Background(), c, "/whoami", nil, payload{})
	require.NoError(t, err)
	assert.Equal(t, "abc", out.Name)
}

func TestFetchText(t *testing.T) {
	srv := testBackend()
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL, model.ModeStrict)
	text, err := FetchText(context.Background(), c, "/text", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", text)

	r, _ := newTestClient(t, srv.URL, model.ModeResilient)
	text, err = FetchText(context.Background(), r, "/broken", nil, "mock log")
	require.NoError(t, err)
	assert.Equal(t, "mock log", text)
}

func TestClient_URL(t *testing.T) {
	c, _ := newTestClient(t, "http://backend.local/", model.ModeStrict)
	assert.Equal(t, "http://backend.local", c.BaseURL())
	assert.Equal(t, "http://backend.local/saml/login", c.URL("/saml/login"))
	assert.Equal(t, model.ModeStrict, c.Mode())
}

func TestNewClient_RequiresCache(t *testing.T) {
	_, err := NewClient(model.DefaultConfig(), nil)
	assert.Error(t, err)
}

func TestFetchFunc_FallbackIsLazy(t *testing.T) {
	srv := testBackend()
	defer srv.Close()
	c, _ := newTestClient(t, srv.URL, model.ModeResilient)

	calls := 0
	fallback := func() payload {
		calls++
		return payload{Name: "computed"}
	}

	out, err := FetchFunc(context.Background(), c, "/ok", nil, fallback)
	require.NoError(t, err)
	assert.Equal(t, "live", out.Name)
	assert.Equal(t, 0, calls)

	out, err = FetchFunc(context.Background(), c, "/broken", nil, fallback)
	require.NoError(t, err)
	assert.Equal(t, "computed", out.Name)
	assert.Equal(t, 1, calls)
}

func TestFetchTextFunc_FallbackIsLazy(t *testing.T) {
	srv := testBackend()
	defer srv.Close()
	c, _ := newTestClient(t, srv.URL, model.ModeResilient)

	calls := 0
	fallback := func() string {
		calls++
		return "synthesized log"
	}

	text, err := FetchTextFunc(context.Background(), c, "/text", nil, fallback)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", text)
	assert.Equal(t, 0, calls)

	text, err = FetchTextFunc(context.Background(), c, "/broken", nil, fallback)
	require.NoError(t, err)
	assert.Equal(t, "synthesized log", text)
	assert.Equal(t, 1, calls)
}

func TestClient_ResetSession(t *testing.T) {
	srv := testBackend()
	defer srv.Close()
	c, _ := newTestClient(t, srv.URL, model.ModeStrict)

	_, err := Fetch(context.Background(), c, "/login", nil, payload{})
	require.NoError(t, err)
	require.NoError(t, c.ResetSession())

	_, err = Fetch(context.Background(), c, "/whoami", nil, payload{})
	var be *BackendError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, http.StatusUnauthorized, be.Status)
}
