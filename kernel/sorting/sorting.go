package sorting

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/suntrap/buildboard/kernel/model"
)

type Field string

const (
	FieldPosition     Field = "rackID"
	FieldHostname     Field = "hostname"
	FieldDBID         Field = "dbid"
	FieldSerialNumber Field = "serial_number"
	FieldPercentBuilt Field = "percent_built"
)

// Fields lists the sortable columns in display order.
var Fields = []Field{FieldPosition, FieldHostname, FieldDBID, FieldSerialNumber, FieldPercentBuilt}

func ParseField(s string) (Field, error) {
	for _, f := range Fields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", errors.Errorf("unknown sort field '%s'", s)
}

type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "", "asc":
		return Ascending, nil
	case "desc":
		return Descending, nil
	}
	return Ascending, errors.Errorf("unknown sort direction '%s'", s)
}

// State is the current sort column of a table.
type State struct {
	Field     Field
	Direction Direction
}

// Toggle flips the direction when field is already active; a new field
// starts ascending.
func (s State) Toggle(field Field) State {
	if s.Field == field {
		if s.Direction == Ascending {
			return State{Field: field, Direction: Descending}
		}
		return State{Field: field, Direction: Ascending}
	}
	return State{Field: field, Direction: Ascending}
}

// Sort returns a stably sorted copy of servers. Equal keys keep their input
// order in both directions. An empty field keeps the input order.
func (s State) Sort(servers []model.Server) []model.Server {
	return Sort(servers, s.Field, s.Direction)
}

func Sort(servers []model.Server, field Field, dir Direction) []model.Server {
	out := slices.Clone(servers)
	if field == "" {
		return out
	}
	slices.SortStableFunc(out, CompareBy(field, dir))
	return out
}

// CompareBy returns a three-way comparator. Unknown fields compare equal.
func CompareBy(field Field, dir Direction) func(a, b model.Server) int {
	var base func(a, b model.Server) int
	switch field {
	case FieldPosition:
		base = func(a, b model.Server) int { return ComparePosition(a.RackID, b.RackID) }
	case FieldHostname:
		base = func(a, b model.Server) int { return strings.Compare(a.Hostname, b.Hostname) }
	case FieldDBID:
		base = func(a, b model.Server) int { return strings.Compare(a.DBID, b.DBID) }
	case FieldSerialNumber:
		base = func(a, b model.Server) int { return strings.Compare(a.SerialNumber, b.SerialNumber) }
	case FieldPercentBuilt:
		base = func(a, b model.Server) int { return cmp.Compare(a.PercentBuilt, b.PercentBuilt) }
	default:
		return func(a, b model.Server) int { return 0 }
	}
	if dir == Descending {
		return func(a, b model.Server) int { return base(b, a) }
	}
	return base
}

const (
	tierPrimary = iota
	tierAuxiliary
	tierOther
)

// ComparePosition orders position tokens by rack (primary racks before
// auxiliary racks, each numerically) and then by the slot string. Slots
// compare lexically here, so "10" sorts before "9" and letters after digits;
// the rack grid uses slot values instead.
func ComparePosition(a, b string) int {
	rackA, slotA := model.SplitPosition(a)
	rackB, slotB := model.SplitPosition(b)

	tierA, numA := rackOrder(rackA)
	tierB, numB := rackOrder(rackB)
	if c := cmp.Compare(tierA, tierB); c != 0 {
		return c
	}
	if c := cmp.Compare(numA, numB); c != 0 {
		return c
	}
	if tierA == tierOther {
		if c := strings.Compare(rackA, rackB); c != 0 {
			return c
		}
	}
	return strings.Compare(slotA, slotB)
}

func rackOrder(rack string) (tier int, number int) {
	if n, err := strconv.Atoi(rack); err == nil && n >= 0 && !strings.HasPrefix(rack, "+") {
		return tierPrimary, n
	}
	if num, found := strings.CutPrefix(rack, model.AuxiliaryRackPrefix); found {
		if n, err := strconv.Atoi(num); err == nil && n >= 0 && !strings.HasPrefix(num, "+") {
			return tierAuxiliary, n
		}
	}
	return tierOther, 0
}
