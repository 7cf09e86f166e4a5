package engine

import (
	"context"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/suntrap/buildboard/kernel/model"
)

// Change is one server whose build moved between two snapshots.
type Change struct {
	Region   string
	Previous model.Server
	Current  model.Server
}

// Diff compares two build-status snapshots, keyed by region and dbid.
type Diff struct {
	Added     []Change
	Removed   []Change
	Updated   []Change
	Unchanged int
}

func (d *Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Updated) == 0
}

// Completed returns updates that reached 100% without failing.
func (d *Diff) Completed() []Change {
	var out []Change
	for _, c := range d.Updated {
		if c.Current.Progress() == model.ProgressComplete && c.Previous.Progress() != model.ProgressComplete {
			out = append(out, c)
		}
	}
	return out
}

// Failed returns updates that moved into the failed state.
func (d *Diff) Failed() []Change {
	var out []Change
	for _, c := range d.Updated {
		if c.Current.Progress() == model.ProgressFailed && c.Previous.Progress() != model.ProgressFailed {
			out = append(out, c)
		}
	}
	return out
}

func ComputeDiff(previous, current model.RegionInventory) *Diff {
	diff := &Diff{}
	prev := index(previous)
	curr := index(current)

	for _, k := range sortedKeys(curr) {
		c := curr[k]
		p, found := prev[k]
		switch {
		case !found:
			diff.Added = append(diff.Added, Change{Region: k.region, Current: c})
		case p != c:
			diff.Updated = append(diff.Updated, Change{Region: k.region, Previous: p, Current: c})
		default:
			diff.Unchanged++
		}
	}
	for _, k := range sortedKeys(prev) {
		if _, found := curr[k]; !found {
			diff.Removed = append(diff.Removed, Change{Region: k.region, Previous: prev[k]})
		}
	}
	return diff
}

type serverKey struct {
	region string
	dbid   string
}

func index(ri model.RegionInventory) map[serverKey]model.Server {
	out := make(map[serverKey]model.Server)
	for region, servers := range ri {
		for _, s := range servers {
			out[serverKey{region: region, dbid: s.DBID}] = s
		}
	}
	return out
}

func sortedKeys(m map[serverKey]model.Server) []serverKey {
	keys := make([]serverKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].region != keys[j].region {
			return keys[i].region < keys[j].region
		}
		return keys[i].dbid < keys[j].dbid
	})
	return keys
}

// Watcher fetches build status and reports what changed since its last
// successful refresh.
type Watcher struct {
	Engine *Engine
	mu     sync.Mutex
	last   model.RegionInventory
}

func NewWatcher(e *Engine) *Watcher {
	return &Watcher{Engine: e}
}

// Refresh returns the new snapshot and its diff against the previous one. The
// first refresh reports every server as added.
func (w *Watcher) Refresh(ctx context.Context) (model.RegionInventory, *Diff, error) {
	current, err := w.Engine.BuildStatus(ctx)
	if err != nil {
		logrus.Warnf("unable to refresh build status: %v", err)
		return nil, nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	diff := ComputeDiff(w.last, current)
	w.last = current.Clone()

	logrus.Debugf("build status refreshed: added %d, updated %d, removed %d, unchanged %d",
		len(diff.Added), len(diff.Updated), len(diff.Removed), diff.Unchanged)
	return current, diff, nil
}
