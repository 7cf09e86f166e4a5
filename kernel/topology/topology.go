package topology

import (
	"fmt"
	"sort"

	"github.com/suntrap/buildboard/kernel/model"
)

// UnknownRackID collects servers whose position token cannot be parsed.
const UnknownRackID = "?"

type Slot struct {
	ID string
	// Value is the ordering value of the slot; see model.SlotPositionValue.
	Value   int
	Numeric bool
	Servers []model.Server
}

type Rack struct {
	ID      string
	Kind    model.RackKind
	Number  int
	Unknown bool
	Slots   []*Slot
}

// Title is the heading shown above a rack.
func (r *Rack) Title() string {
	switch {
	case r.Unknown:
		return "Unassigned position"
	case r.Kind == model.RackAuxiliary:
		return fmt.Sprintf("Small Rack %d", r.Number)
	}
	return fmt.Sprintf("Rack %d", r.Number)
}

// Count returns the number of servers across all slots.
func (r *Rack) Count() int {
	n := 0
	for _, s := range r.Slots {
		n += len(s.Servers)
	}
	return n
}

// GroupByTopology nests servers into racks and slots. Primary racks come first
// in numeric order, then auxiliary racks, then the unknown rack if any token
// was malformed. Slots within a rack are ordered by value, numeric slots first
// on a tie. Servers keep their input order within a slot.
func GroupByTopology(servers []model.Server) []*Rack {
	racks := make(map[string]*Rack)
	slots := make(map[string]map[string]*Slot)
	var unknown *Rack

	for _, s := range servers {
		pos, err := s.Position()
		if err != nil {
			if unknown == nil {
				unknown = &Rack{ID: UnknownRackID, Unknown: true}
			}
			unknown.Slots = append(unknown.Slots, &Slot{ID: s.RackID, Servers: []model.Server{s}})
			continue
		}

		rack, found := racks[pos.Rack]
		if !found {
			rack = &Rack{ID: pos.Rack, Kind: pos.Kind, Number: pos.RackNumber}
			racks[pos.Rack] = rack
			slots[pos.Rack] = make(map[string]*Slot)
		}
		slot, found := slots[pos.Rack][pos.Slot]
		if !found {
			slot = &Slot{ID: pos.Slot, Value: pos.SlotValue, Numeric: pos.SlotNumeric}
			slots[pos.Rack][pos.Slot] = slot
			rack.Slots = append(rack.Slots, slot)
		}
		slot.Servers = append(slot.Servers, s)
	}

	out := make([]*Rack, 0, len(racks)+1)
	for _, r := range racks {
		sortSlots(r.Slots)
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return rackLess(out[i], out[j]) })
	if unknown != nil {
		out = append(out, unknown)
	}
	return out
}

func rackLess(a, b *Rack) bool {
	if a.Kind != b.Kind {
		return a.Kind == model.RackPrimary
	}
	if a.Number != b.Number {
		return a.Number < b.Number
	}
	// "01" and "1" parse to the same number
	return a.ID < b.ID
}

func sortSlots(slots []*Slot) {
	sort.SliceStable(slots, func(i, j int) bool {
		a, b := slots[i], slots[j]
		if a.Value != b.Value {
			return a.Value < b.Value
		}
		if a.Numeric != b.Numeric {
			return a.Numeric
		}
		return a.ID < b.ID
	})
}

// Summary counts servers per progress class.
type Summary struct {
	Total    int `json:"total"`
	Complete int `json:"complete"`
	Failed   int `json:"failed"`
	Building int `json:"building"`
}

func Summarize(servers []model.Server) Summary {
	s := Summary{Total: len(servers)}
	for _, srv := range servers {
		switch srv.Progress() {
		case model.ProgressComplete:
			s.Complete++
		case model.ProgressFailed:
			s.Failed++
		default:
			s.Building++
		}
	}
	return s
}
