package store

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/suntrap/buildboard/kernel/model"
)

// MemoryStore is an in-memory implementation of OperationStore. Assignments
// and pushes mutate its data set so a refetch observes them.
type MemoryStore struct {
	mu        sync.RWMutex
	user      model.User
	status    model.RegionInventory
	history   model.RegionInventory
	hostnames []string
	generated bool
	details   map[string]model.ServerDetails
	configs   []model.Preconfig
	pushed    []model.PushedPreconfig
	logs      map[string]string
	now       func() time.Time

	hostnamesOnce sync.Once
}

// NewMemoryStore returns a store holding the built-in data set.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreFrom(nil)
}

// NewMemoryStoreFrom seeds a store from fixtures; any empty section falls back
// to the built-in data set.
func NewMemoryStoreFrom(f *model.Fixtures) *MemoryStore {
	if f == nil {
		f = &model.Fixtures{}
	}
	s := &MemoryStore{
		user:      defaultUser,
		status:    defaultBuildStatus(),
		history:   defaultBuildHistory(),
		hostnames: append([]string(nil), f.Hostnames...),
		details:   make(map[string]model.ServerDetails),
		configs:   defaultPreconfigs(),
		pushed:    defaultPushedPreconfigs(),
		logs:      make(map[string]string),
		now:       time.Now,
	}
	if f.User != nil {
		s.user = *f.User
	}
	if len(f.BuildStatus) > 0 {
		s.status = f.BuildStatus.Clone()
	}
	if len(f.BuildHistory) > 0 {
		s.history = f.BuildHistory.Clone()
	}
	for _, d := range f.ServerDetails {
		s.details[d.Hostname] = d
	}
	if len(f.Preconfigs) > 0 {
		s.configs = append([]model.Preconfig(nil), f.Preconfigs...)
	}
	if len(f.PushedPreconfigs) > 0 {
		s.pushed = append([]model.PushedPreconfig(nil), f.PushedPreconfigs...)
	}
	for k, v := range f.BuildLogs {
		s.logs[k] = v
	}
	return s
}

func (s *MemoryStore) User() model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u := s.user
	u.Groups = append([]string(nil), s.user.Groups...)
	return u
}

func (s *MemoryStore) BuildStatus() model.RegionInventory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status.Clone()
}

// BuildHistory returns the same history for every date.
func (s *MemoryStore) BuildHistory(date string) model.RegionInventory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Clone()
}

// Hostnames returns the configured index, generating the synthetic one on
// first use when none was supplied.
func (s *MemoryStore) Hostnames() []string {
	s.hostnamesOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if len(s.hostnames) == 0 {
			s.hostnames = GenerateHostnames(generatedHostnames, hostnameSeed)
			s.generated = true
		}
	})
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.hostnames...)
}

// ServerDetails prefers an explicit fixture, then the matching inventory
// record, then the generic detail record under the requested hostname.
func (s *MemoryStore) ServerDetails(hostname string) model.ServerDetails {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if d, found := s.details[hostname]; found {
		return d
	}
	d := defaultDetails(hostname)
	if srv, found := s.findLocked(func(srv model.Server) bool { return srv.Hostname == hostname }); found {
		d.Server = srv
	}
	return d
}

func (s *MemoryStore) Preconfigs() []model.Preconfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Preconfig(nil), s.configs...)
}

func (s *MemoryStore) PushedPreconfigs() []model.PushedPreconfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.PushedPreconfig(nil), s.pushed...)
}

func (s *MemoryStore) BuildLog(hostname string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if l, found := s.logs[hostname]; found {
		return l
	}
	srv, found := s.findLocked(func(srv model.Server) bool { return srv.Hostname == hostname })
	if !found {
		return fmt.Sprintf("no build log recorded for %s\n", hostname)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] build started at position %s\n", hostname, srv.RackID)
	for p := 10; p <= srv.Percent(); p += 10 {
		fmt.Fprintf(&b, "[%s] %d%% complete\n", hostname, p)
	}
	fmt.Fprintf(&b, "[%s] status: %s\n", hostname, srv.Status)
	return b.String()
}

// Assign marks every copy of the server with req.DBID as assigned.
func (s *MemoryStore) Assign(req model.AssignRequest) model.OperationResponse {
	if err := req.Validate(); err != nil {
		return model.OperationResponse{Status: "error", Message: err.Error()}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range []model.RegionInventory{s.status, s.history} {
		for _, servers := range inv {
			for i := range servers {
				if servers[i].DBID == req.DBID {
					servers[i].AssignedStatus = model.AssignedStatusAssigned
				}
			}
		}
	}
	return model.OperationResponse{
		Status:  model.OperationSuccess,
		Message: fmt.Sprintf("Server %s assigned successfully", req.Hostname),
	}
}

// Push records every preconfig of the depot in the push history, newest first.
func (s *MemoryStore) Push(req model.PushRequest) model.OperationResponse {
	region, err := model.RegionByDepot(req.Depot)
	if err != nil {
		return model.OperationResponse{Status: "error", Message: err.Error()}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	pushedAt := s.now().UTC().Format(time.RFC3339)
	var added []model.PushedPreconfig
	for _, c := range s.configs {
		if c.Depot != req.Depot {
			continue
		}
		added = append(added, model.PushedPreconfig{
			ID:       fmt.Sprintf("p%d", len(s.pushed)+len(added)+1),
			Depot:    c.Depot,
			Config:   append(model.ConfigMap(nil), c.Config...),
			PushedAt: pushedAt,
		})
	}
	s.pushed = append(added, s.pushed...)
	return model.OperationResponse{
		Status:  model.OperationSuccess,
		Message: fmt.Sprintf("Preconfig pushed to depot %d (%s) successfully", req.Depot, region.Label),
	}
}

func (s *MemoryStore) findLocked(match func(model.Server) bool) (model.Server, bool) {
	for _, code := range s.status.Codes() {
		for _, srv := range s.status[code] {
			if match(srv) {
				return srv, true
			}
		}
	}
	for _, code := range s.history.Codes() {
		for _, srv := range s.history[code] {
			if match(srv) {
				return srv, true
			}
		}
	}
	return model.Server{}, false
}

// Fixtures snapshots the current data set. The hostname index is only
// included when it was supplied rather than generated.
func (s *MemoryStore) Fixtures() *model.Fixtures {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u := s.user
	f := &model.Fixtures{
		User:             &u,
		BuildStatus:      s.status.Clone(),
		BuildHistory:     s.history.Clone(),
		Preconfigs:       append([]model.Preconfig(nil), s.configs...),
		PushedPreconfigs: append([]model.PushedPreconfig(nil), s.pushed...),
	}
	if !s.generated {
		f.Hostnames = append([]string(nil), s.hostnames...)
	}
	for _, d := range s.details {
		f.ServerDetails = append(f.ServerDetails, d)
	}
	if len(s.logs) > 0 {
		f.BuildLogs = make(map[string]string, len(s.logs))
		for k, v := range s.logs {
			f.BuildLogs[k] = v
		}
	}
	return f
}
