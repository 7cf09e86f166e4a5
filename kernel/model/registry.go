package model

import (
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Region is a data-center site. Depot is the numeric id preconfig pushes
// target.
type Region struct {
	Code  string
	Label string
	Depot int
}

// Key is the lower-case code used in build-status payloads.
func (r Region) Key() string {
	return strings.ToLower(r.Code)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Region)
)

// RegisterRegion adds a region to the registry.
// e.g. RegisterRegion(Region{Code: "CBG", Label: "Cambridge", Depot: 1})
func RegisterRegion(r Region) {
	registryMu.Lock()
	defer registryMu.Unlock()
	code := strings.ToUpper(r.Code)
	if _, dup := registry[code]; dup {
		panic("RegisterRegion called twice for " + code)
	}
	for _, existing := range registry {
		if existing.Depot == r.Depot {
			panic("RegisterRegion called twice for depot of " + code)
		}
	}
	r.Code = code
	registry[code] = r
}

// GetRegion looks a region up by code, case-insensitively.
func GetRegion(code string) (Region, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	r, ok := registry[strings.ToUpper(code)]
	if !ok {
		return Region{}, errors.Errorf("region '%s' not found in registry", code)
	}
	return r, nil
}

func RegionByDepot(depot int) (Region, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	for _, r := range registry {
		if r.Depot == depot {
			return r, nil
		}
	}
	return Region{}, errors.Wrapf(ErrInvalidDepot, "depot %d", depot)
}

// Regions returns every registered region ordered by depot.
func Regions() []Region {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]Region, 0, len(registry))
	for _, r := range registry {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Depot < out[j].Depot })
	return out
}

// RegionLabel returns the display label for a depot, or "Unknown".
func RegionLabel(depot int) string {
	if r, err := RegionByDepot(depot); err == nil {
		return r.Label
	}
	return "Unknown"
}

func init() {
	RegisterRegion(Region{Code: "CBG", Label: "Cambridge", Depot: 1})
	RegisterRegion(Region{Code: "DUB", Label: "Dublin", Depot: 2})
	RegisterRegion(Region{Code: "DAL", Label: "Dallas", Depot: 4})
}
