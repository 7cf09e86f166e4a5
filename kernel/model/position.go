package model

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// PositionSeparator splits a position token into rack and slot.
const PositionSeparator = "-"

// AuxiliaryRackPrefix marks small (auxiliary) racks, e.g. "S2".
const AuxiliaryRackPrefix = "S"

// letterSlotBase is the position value of slot "A"; lettered slots sort after
// every numeric slot in use.
const letterSlotBase = 9

var ErrInvalidPosition = errors.New("invalid position token")

type RackKind int

const (
	RackPrimary RackKind = iota
	RackAuxiliary
)

func (k RackKind) String() string {
	if k == RackAuxiliary {
		return "auxiliary"
	}
	return "primary"
}

// Position is a parsed "<rack>-<slot>" token such as "3-6", "1-E" or "S1-A".
type Position struct {
	Raw        string
	Rack       string
	Slot       string
	Kind       RackKind
	RackNumber int
	// SlotNumeric is true for digit slots, false for a single letter.
	SlotNumeric bool
	SlotValue   int
}

// ParsePosition validates and splits a position token. Racks are digits
// (primary) or "S" followed by digits (auxiliary); slots are digits or a
// single uppercase letter.
func ParsePosition(token string) (Position, error) {
	rack, slot, found := strings.Cut(token, PositionSeparator)
	if !found {
		return Position{}, errors.Wrapf(ErrInvalidPosition, "[%s] has no separator", token)
	}

	p := Position{Raw: token, Rack: rack, Slot: slot}

	switch {
	case isDigits(rack):
		p.Kind = RackPrimary
		p.RackNumber, _ = strconv.Atoi(rack)
	case strings.HasPrefix(rack, AuxiliaryRackPrefix) && isDigits(rack[len(AuxiliaryRackPrefix):]):
		p.Kind = RackAuxiliary
		p.RackNumber, _ = strconv.Atoi(rack[len(AuxiliaryRackPrefix):])
	default:
		return Position{}, errors.Wrapf(ErrInvalidPosition, "[%s] has unrecognised rack [%s]", token, rack)
	}

	value, numeric, ok := SlotPositionValue(slot)
	if !ok {
		return Position{}, errors.Wrapf(ErrInvalidPosition, "[%s] has unrecognised slot [%s]", token, slot)
	}
	p.SlotValue = value
	p.SlotNumeric = numeric

	return p, nil
}

// SlotPositionValue maps "7" to 7 and "C" to 9+2=11.
func SlotPositionValue(slot string) (value int, numeric bool, ok bool) {
	if isDigits(slot) {
		v, err := strconv.Atoi(slot)
		if err != nil {
			return 0, false, false
		}
		return v, true, true
	}
	if len(slot) == 1 && slot[0] >= 'A' && slot[0] <= 'Z' {
		return letterSlotBase + int(slot[0]-'A'), false, true
	}
	return 0, false, false
}

// SplitPosition splits without validation; a token with no separator yields
// an empty slot.
func SplitPosition(token string) (rack, slot string) {
	rack, slot, _ = strings.Cut(token, PositionSeparator)
	return rack, slot
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
