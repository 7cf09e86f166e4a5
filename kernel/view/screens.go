package view

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/suntrap/buildboard/kernel/engine"
	"github.com/suntrap/buildboard/kernel/model"
	"github.com/suntrap/buildboard/kernel/sorting"
	"github.com/suntrap/buildboard/kernel/topology"
	"github.com/suntrap/buildboard/kernel/tracker"
)

// DefaultRegion is the region a screen opens on.
const DefaultRegion = "CBG"

// BuildStatusScreen shows live build progress as rack grids per region.
type BuildStatusScreen struct {
	Status *Resource[model.RegionInventory]
}

func NewBuildStatusScreen(e *engine.Engine) *BuildStatusScreen {
	return &BuildStatusScreen{Status: NewResource(e.BuildStatus)}
}

func (s *BuildStatusScreen) Load(ctx context.Context) error {
	return s.Status.Load(ctx)
}

// Racks groups the servers of one region for the rack grid.
func (s *BuildStatusScreen) Racks(region string) []*topology.Rack {
	return topology.GroupByTopology(s.Status.Snapshot().Data.Region(region))
}

func (s *BuildStatusScreen) Summary(region string) topology.Summary {
	return topology.Summarize(s.Status.Snapshot().Data.Region(region))
}

// AssignScreen lists a day's finished builds for one region and assigns the
// selected ones.
type AssignScreen struct {
	engine  *engine.Engine
	tracker *tracker.Tracker[model.Server]
	History *Resource[model.RegionInventory]

	mu       sync.Mutex
	date     string
	region   string
	sort     sorting.State
	selected map[string]bool
}

func NewAssignScreen(e *engine.Engine, t *tracker.Tracker[model.Server], now time.Time) *AssignScreen {
	s := &AssignScreen{
		engine:   e,
		tracker:  t,
		date:     now.Format(engine.HistoryDateLayout),
		region:   DefaultRegion,
		sort:     sorting.State{Field: sorting.FieldPosition, Direction: sorting.Ascending},
		selected: make(map[string]bool),
	}
	s.History = NewResource(func(ctx context.Context) (model.RegionInventory, error) {
		return e.BuildHistory(ctx, s.Date())
	})
	return s
}

func (s *AssignScreen) Load(ctx context.Context) error {
	return s.History.Load(ctx)
}

func (s *AssignScreen) Date() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.date
}

// SetDate switches the history day and reloads it.
func (s *AssignScreen) SetDate(ctx context.Context, date string) error {
	if _, err := time.Parse(engine.HistoryDateLayout, date); err != nil {
		return errors.Wrapf(err, "invalid date '%s'", date)
	}
	s.mu.Lock()
	s.date = date
	s.selected = make(map[string]bool)
	s.mu.Unlock()
	return s.History.Load(ctx)
}

func (s *AssignScreen) Region() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.region
}

func (s *AssignScreen) SetRegion(code string) error {
	r, err := model.GetRegion(code)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.region = r.Code
	s.selected = make(map[string]bool)
	return nil
}

func (s *AssignScreen) Sort() sorting.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sort
}

func (s *AssignScreen) SetSort(st sorting.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sort = st
}

// ToggleSort applies a column click.
func (s *AssignScreen) ToggleSort(field sorting.Field) sorting.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sort = s.sort.Toggle(field)
	return s.sort
}

// Unassigned returns the region's unassigned servers in the current sort order.
func (s *AssignScreen) Unassigned() []model.Server {
	unassigned, _ := model.SplitAssigned(s.History.Snapshot().Data.Region(s.Region()))
	return s.Sort().Sort(unassigned)
}

// Assigned returns the region's assigned servers in arrival order.
func (s *AssignScreen) Assigned() []model.Server {
	_, assigned := model.SplitAssigned(s.History.Snapshot().Data.Region(s.Region()))
	return assigned
}

func (s *AssignScreen) Toggle(dbid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected[dbid] {
		delete(s.selected, dbid)
	} else {
		s.selected[dbid] = true
	}
}

// ToggleAll clears the selection when every unassigned server is selected,
// otherwise selects them all.
func (s *AssignScreen) ToggleAll() {
	unassigned := s.Unassigned()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(unassigned) > 0 && s.allSelectedLocked(unassigned) {
		s.selected = make(map[string]bool)
		return
	}
	s.selected = make(map[string]bool, len(unassigned))
	for _, srv := range unassigned {
		s.selected[srv.DBID] = true
	}
}

func (s *AssignScreen) AllSelected() bool {
	unassigned := s.Unassigned()
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(unassigned) > 0 && s.allSelectedLocked(unassigned)
}

func (s *AssignScreen) allSelectedLocked(unassigned []model.Server) bool {
	for _, srv := range unassigned {
		if !s.selected[srv.DBID] {
			return false
		}
	}
	return true
}

func (s *AssignScreen) IsSelected(dbid string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected[dbid]
}

// Selected returns the selected unassigned servers in display order.
func (s *AssignScreen) Selected() []model.Server {
	unassigned := s.Unassigned()
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Server
	for _, srv := range unassigned {
		if s.selected[srv.DBID] {
			out = append(out, srv)
		}
	}
	return out
}

// Status is the assignment status of one row.
func (s *AssignScreen) Status(dbid string) tracker.Status {
	return s.tracker.Status(dbid)
}

// AssignSelected assigns the selection in display order, then clears the
// selection and reloads the history.
func (s *AssignScreen) AssignSelected(ctx context.Context) (tracker.Summary, error) {
	servers := s.Selected()
	if len(servers) == 0 {
		return tracker.Summary{}, errors.New("no servers selected")
	}
	summary := s.engine.AssignBatch(ctx, s.tracker, servers)

	s.mu.Lock()
	s.selected = make(map[string]bool)
	s.mu.Unlock()

	return summary, s.History.Load(ctx)
}

// RegionStat is the preconfig count of one depot.
type RegionStat struct {
	Region model.Region
	Count  int
}

// PreconfigScreen lists config templates and push history and pushes a
// depot's templates.
type PreconfigScreen struct {
	engine  *engine.Engine
	tracker *tracker.Tracker[int]
	Configs *Resource[[]model.Preconfig]
	Pushed  *Resource[[]model.PushedPreconfig]
}

func NewPreconfigScreen(e *engine.Engine, t *tracker.Tracker[int]) *PreconfigScreen {
	return &PreconfigScreen{
		engine:  e,
		tracker: t,
		Configs: NewResource(e.Preconfigs),
		Pushed:  NewResource(e.PushedPreconfigs),
	}
}

func (s *PreconfigScreen) Load(ctx context.Context) error {
	err := s.Configs.Load(ctx)
	if perr := s.Pushed.Load(ctx); err == nil {
		err = perr
	}
	return err
}

// Stats counts templates per registered depot, in depot order.
func (s *PreconfigScreen) Stats() []RegionStat {
	configs := s.Configs.Snapshot().Data
	var out []RegionStat
	for _, r := range model.Regions() {
		st := RegionStat{Region: r}
		for _, c := range configs {
			if c.Depot == r.Depot {
				st.Count++
			}
		}
		out = append(out, st)
	}
	return out
}

func (s *PreconfigScreen) Status(depot int) tracker.Status {
	return s.tracker.Status(engine.DepotKey(depot))
}

// Push pushes one depot and reloads the push history on success.
func (s *PreconfigScreen) Push(ctx context.Context, depot int) (tracker.Status, error) {
	if _, err := model.RegionByDepot(depot); err != nil {
		return tracker.Failed, err
	}
	st := s.engine.Push(ctx, s.tracker, depot)
	if st == tracker.Success {
		return st, s.Pushed.Load(ctx)
	}
	return st, nil
}

// DetailScreen holds the details of at most one server.
type DetailScreen struct {
	mu       sync.Mutex
	hostname string
	Details  *Resource[model.ServerDetails]
}

func NewDetailScreen(e *engine.Engine) *DetailScreen {
	s := &DetailScreen{}
	s.Details = NewResource(func(ctx context.Context) (model.ServerDetails, error) {
		return e.ServerDetails(ctx, s.Hostname())
	})
	return s
}

func (s *DetailScreen) Hostname() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hostname
}

// Open fetches the details for hostname, discarding any previous record.
func (s *DetailScreen) Open(ctx context.Context, hostname string) error {
	s.mu.Lock()
	s.hostname = hostname
	s.mu.Unlock()
	s.Details.Reset()
	return s.Details.Load(ctx)
}

// Dismiss discards the record and any fetch still in flight.
func (s *DetailScreen) Dismiss() {
	s.mu.Lock()
	s.hostname = ""
	s.mu.Unlock()
	s.Details.Reset()
}

// HostnameIndex searches the backend's hostname list.
type HostnameIndex struct {
	Names *Resource[[]string]
}

func NewHostnameIndex(e *engine.Engine) *HostnameIndex {
	return &HostnameIndex{Names: NewResource(e.Hostnames)}
}

// Search returns up to limit names containing query, case-insensitively.
// A limit of zero or less returns every match.
func (h *HostnameIndex) Search(query string, limit int) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []string
	for _, name := range h.Names.Snapshot().Data {
		if q != "" && !strings.Contains(strings.ToLower(name), q) {
			continue
		}
		out = append(out, name)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
