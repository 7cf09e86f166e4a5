package engine

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/suntrap/buildboard/kernel/api"
	"github.com/suntrap/buildboard/kernel/model"
	"github.com/suntrap/buildboard/kernel/store"
	"github.com/suntrap/buildboard/kernel/tracker"
)

const (
	PathMe               = "/me"
	PathLogin            = "/saml/login"
	PathLogout           = "/logout"
	PathBuildStatus      = "/api/build-status"
	PathBuildHistory     = "/api/build-history/"
	PathHostnames        = "/api/hostnames"
	PathServerDetails    = "/api/server-details"
	PathAssign           = "/api/assign"
	PathPreconfigs       = "/api/preconfigs"
	PathPushedPreconfigs = "/api/preconfigs/pushed"
	PathPushPreconfig    = "/api/push-preconfig"
	PathBuildLog         = "/build-log/"

	// HistoryDateLayout is the date format of build-history requests.
	HistoryDateLayout = "2006-01-02"
)

// Engine issues the typed backend calls. Fallback values come from Store.
type Engine struct {
	Client *api.Client
	Store  store.OperationStore
}

func NewEngine(c *api.Client, s store.OperationStore) *Engine {
	return &Engine{Client: c, Store: s}
}

func (e *Engine) Me(ctx context.Context) (model.User, error) {
	return api.FetchFunc(ctx, e.Client, PathMe, nil, e.Store.User)
}

// LoginURL is where the user is sent to establish a session.
func (e *Engine) LoginURL() string {
	return e.Client.URL(PathLogin)
}

// Logout ends the backend session. Local cookies are dropped even when the
// backend call fails.
func (e *Engine) Logout(ctx context.Context) error {
	_, err := api.FetchText(ctx, e.Client, PathLogout, &api.Request{Method: http.MethodPost}, "")
	if rerr := e.Client.ResetSession(); rerr != nil && err == nil {
		err = rerr
	}
	if err != nil {
		logrus.Warnf("logout failed, local session cleared anyway: %v", err)
	}
	return err
}

func (e *Engine) BuildStatus(ctx context.Context) (model.RegionInventory, error) {
	return api.FetchFunc(ctx, e.Client, PathBuildStatus, nil, e.Store.BuildStatus)
}

func (e *Engine) BuildHistory(ctx context.Context, date string) (model.RegionInventory, error) {
	if _, err := time.Parse(HistoryDateLayout, date); err != nil {
		return nil, errors.Wrapf(err, "invalid history date '%s'", date)
	}
	return api.FetchFunc(ctx, e.Client, PathBuildHistory+url.PathEscape(date), nil, func() model.RegionInventory {
		return e.Store.BuildHistory(date)
	})
}

func (e *Engine) Hostnames(ctx context.Context) ([]string, error) {
	return api.FetchFunc(ctx, e.Client, PathHostnames, nil, e.Store.Hostnames)
}

func (e *Engine) ServerDetails(ctx context.Context, hostname string) (model.ServerDetails, error) {
	if hostname == "" {
		return model.ServerDetails{}, errors.New("hostname is required")
	}
	endpoint := PathServerDetails + "?hostname=" + url.QueryEscape(hostname)
	return api.FetchFunc(ctx, e.Client, endpoint, nil, func() model.ServerDetails {
		return e.Store.ServerDetails(hostname)
	})
}

// Assign assigns one server. Invalid requests fail before any call is made.
func (e *Engine) Assign(ctx context.Context, s model.Server) (model.OperationResponse, error) {
	req := model.NewAssignRequest(s)
	if err := req.Validate(); err != nil {
		return model.OperationResponse{}, err
	}
	return api.FetchFunc(ctx, e.Client, PathAssign, &api.Request{Method: http.MethodPost, Body: req}, func() model.OperationResponse {
		return e.Store.Assign(req)
	})
}

// AssignBatch assigns servers one at a time through t, keyed by dbid.
func (e *Engine) AssignBatch(ctx context.Context, t *tracker.Tracker[model.Server], servers []model.Server) tracker.Summary {
	return t.RunBatch(ctx, servers, func(ctx context.Context, s model.Server) error {
		resp, err := e.Assign(ctx, s)
		if err != nil {
			return err
		}
		if !resp.Succeeded() {
			return errors.Errorf("assign [%s] rejected: %s", s.Hostname, resp.Message)
		}
		return nil
	})
}

func (e *Engine) Preconfigs(ctx context.Context) ([]model.Preconfig, error) {
	return api.FetchFunc(ctx, e.Client, PathPreconfigs, nil, e.Store.Preconfigs)
}

func (e *Engine) PushedPreconfigs(ctx context.Context) ([]model.PushedPreconfig, error) {
	return api.FetchFunc(ctx, e.Client, PathPushedPreconfigs, nil, e.Store.PushedPreconfigs)
}

func (e *Engine) PushPreconfig(ctx context.Context, depot int) (model.OperationResponse, error) {
	req := model.PushRequest{Depot: depot}
	if err := req.Validate(); err != nil {
		return model.OperationResponse{}, err
	}
	return api.FetchFunc(ctx, e.Client, PathPushPreconfig, &api.Request{Method: http.MethodPost, Body: req}, func() model.OperationResponse {
		return e.Store.Push(req)
	})
}

// Push runs a single push through t, keyed by depot.
func (e *Engine) Push(ctx context.Context, t *tracker.Tracker[int], depot int) tracker.Status {
	return t.Run(ctx, depot, func(ctx context.Context, depot int) error {
		resp, err := e.PushPreconfig(ctx, depot)
		if err != nil {
			return err
		}
		if !resp.Succeeded() {
			return errors.Errorf("push to depot %d rejected: %s", depot, resp.Message)
		}
		return nil
	})
}

func (e *Engine) BuildLog(ctx context.Context, hostname string) (string, error) {
	if strings.TrimSpace(hostname) == "" {
		return "", errors.New("hostname is required")
	}
	return api.FetchTextFunc(ctx, e.Client, PathBuildLog+url.PathEscape(hostname), nil, func() string {
		return e.Store.BuildLog(hostname)
	})
}
