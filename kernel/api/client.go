package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/michaelquigley/pfxlog"
	"github.com/pkg/errors"
	"github.com/suntrap/buildboard/kernel/health"
	"github.com/suntrap/buildboard/kernel/model"
)

// Request carries the optional parts of a call. A nil *Request is a GET.
type Request struct {
	Method string
	Header http.Header
	// Body is encoded as JSON when non-nil.
	Body interface{}
}

// Client talks to the build backend. In resilient mode every failure is
// absorbed and the caller's fallback value returned instead.
type Client struct {
	baseURL       string
	mode          model.Mode
	timeout       time.Duration
	fallbackDelay time.Duration
	http          *http.Client
	health        *health.Cache
}

type Option func(*Client)

// WithHTTPClient replaces the default client. Its cookie jar, if any, is kept.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func NewClient(cfg *model.Config, cache *health.Cache, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if cache == nil {
		return nil, errors.New("health cache is required")
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create cookie jar")
	}
	c := &Client{
		baseURL:       cfg.BackendURL,
		mode:          cfg.Mode,
		timeout:       cfg.RequestTimeout,
		fallbackDelay: cfg.FallbackDelay,
		http:          &http.Client{Jar: jar},
		health:        cache,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout <= 0 {
		c.timeout = model.DefaultRequestTimeout
	}
	return c, nil
}

func (c *Client) Mode() model.Mode {
	return c.mode
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL resolves an endpoint path against the backend base URL.
func (c *Client) URL(endpoint string) string {
	return c.baseURL + endpoint
}

func (c *Client) Health() *health.Cache {
	return c.health
}

// ResetSession drops every cookie held for the backend.
func (c *Client) ResetSession() error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return errors.Wrap(err, "unable to create cookie jar")
	}
	c.http.Jar = jar
	return nil
}

// HTTPClient exposes the cookie-carrying client for the health prober.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// Fetch performs a request and decodes a JSON response into T.
func Fetch[T any](ctx context.Context, c *Client, endpoint string, req *Request, fallback T) (T, error) {
	return FetchFunc(ctx, c, endpoint, req, func() T { return fallback })
}

// FetchFunc is Fetch with a fallback that is only computed when it is used.
func FetchFunc[T any](ctx context.Context, c *Client, endpoint string, req *Request, fallback func() T) (T, error) {
	var out T
	err := c.do(ctx, endpoint, req, func(body io.Reader) error {
		return json.NewDecoder(body).Decode(&out)
	})
	if err == nil {
		if c.mode == model.ModeResilient {
			c.health.Mark(true)
		}
		return out, nil
	}
	return fallBack(ctx, c, endpoint, err, fallback)
}

// FetchText performs a request and returns the response body as text.
func FetchText(ctx context.Context, c *Client, endpoint string, req *Request, fallback string) (string, error) {
	return FetchTextFunc(ctx, c, endpoint, req, func() string { return fallback })
}

// FetchTextFunc is FetchText with a lazily computed fallback.
func FetchTextFunc(ctx context.Context, c *Client, endpoint string, req *Request, fallback func() string) (string, error) {
	var out string
	err := c.do(ctx, endpoint, req, func(body io.Reader) error {
		data, err := io.ReadAll(body)
		if err != nil {
			return err
		}
		out = string(data)
		return nil
	})
	if err == nil {
		if c.mode == model.ModeResilient {
			c.health.Mark(true)
		}
		return out, nil
	}
	return fallBack(ctx, c, endpoint, err, fallback)
}

// fallBack returns err unchanged in strict mode. In resilient mode it marks
// the backend unreachable, waits the fallback delay and returns fallback.
func fallBack[T any](ctx context.Context, c *Client, endpoint string, err error, fallback func() T) (T, error) {
	if c.mode != model.ModeResilient {
		var zero T
		return zero, err
	}
	if ctx.Err() != nil {
		return fallback(), ctx.Err()
	}
	c.health.Mark(false)
	pfxlog.Logger().WithField("endpoint", endpoint).WithError(err).Debug("using fallback data")

	if c.fallbackDelay > 0 {
		timer := time.NewTimer(c.fallbackDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return fallback(), ctx.Err()
		}
	}
	return fallback(), nil
}

func (c *Client) do(ctx context.Context, endpoint string, req *Request, decode func(io.Reader) error) error {
	if req == nil {
		req = &Request{}
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return errors.Wrapf(err, "unable to encode request body for [%s]", endpoint)
		}
		body = bytes.NewReader(data)
	}

	tctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(tctx, method, c.URL(endpoint), body)
	if err != nil {
		return &BackendError{Endpoint: endpoint, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, vs := range req.Header {
		httpReq.Header.Del(k)
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return c.classify(ctx, tctx, endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &BackendError{Endpoint: endpoint, Status: resp.StatusCode}
	}
	if err := decode(resp.Body); err != nil {
		if cerr := c.classify(ctx, tctx, endpoint, err); cerr != nil {
			if be, ok := cerr.(*BackendError); ok {
				be.Status = resp.StatusCode
			}
			return cerr
		}
	}
	return nil
}

// classify distinguishes our own deadline from caller cancellation and
// transport errors.
func (c *Client) classify(parent, tctx context.Context, endpoint string, err error) error {
	if parent.Err() == nil && errors.Is(tctx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{Endpoint: endpoint, Timeout: c.timeout}
	}
	if perr := parent.Err(); perr != nil {
		return errors.Wrapf(perr, "request to [%s] cancelled", endpoint)
	}
	return &BackendError{Endpoint: endpoint, Err: err}
}
