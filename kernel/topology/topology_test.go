package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suntrap/buildboard/kernel/model"
)

func servers(tokens ...string) []model.Server {
	out := make([]model.Server, len(tokens))
	for i, tok := range tokens {
		out[i] = model.Server{RackID: tok, Hostname: tok + "#" + string(rune('a'+i))}
	}
	return out
}

func rackIDs(racks []*Rack) []string {
	ids := make([]string, len(racks))
	for i, r := range racks {
		ids[i] = r.ID
	}
	return ids
}

func slotIDs(r *Rack) []string {
	ids := make([]string, len(r.Slots))
	for i, s := range r.Slots {
		ids[i] = s.ID
	}
	return ids
}

func TestGroupByTopology_RackOrder(t *testing.T) {
	racks := GroupByTopology(servers("S2-1", "10-1", "S1-A", "2-1", "1-3"))
	assert.Equal(t, []string{"1", "2", "10", "S1", "S2"}, rackIDs(racks))
}

func TestGroupByTopology_AuxiliaryOnly(t *testing.T) {
	racks := GroupByTopology(servers("S3-1", "S1-1", "S2-1"))
	assert.Equal(t, []string{"S1", "S2", "S3"}, rackIDs(racks))
	assert.Equal(t, "Small Rack 1", racks[0].Title())
}

func TestGroupByTopology_SlotOrder(t *testing.T) {
	racks := GroupByTopology(servers("1-E", "1-A", "1-10", "1-2", "1-9", "1-C"))
	require.Len(t, racks, 1)
	// A=9 ties with 9 and sorts after it; C=11 after 10; E=13 last
	assert.Equal(t, []string{"2", "9", "A", "10", "C", "E"}, slotIDs(racks[0]))
}

func TestGroupByTopology_ArrivalOrderWithinSlot(t *testing.T) {
	in := []model.Server{
		{RackID: "3-6", Hostname: "first"},
		{RackID: "3-1", Hostname: "other"},
		{RackID: "3-6", Hostname: "second"},
		{RackID: "3-6", Hostname: "third"},
	}
	racks := GroupByTopology(in)
	require.Len(t, racks, 1)
	require.Len(t, racks[0].Slots, 2)
	slot := racks[0].Slots[1]
	assert.Equal(t, "6", slot.ID)
	require.Len(t, slot.Servers, 3)
	assert.Equal(t, "first", slot.Servers[0].Hostname)
	assert.Equal(t, "second", slot.Servers[1].Hostname)
	assert.Equal(t, "third", slot.Servers[2].Hostname)
	assert.Equal(t, 4, racks[0].Count())
}

func TestGroupByTopology_MalformedTokens(t *testing.T) {
	racks := GroupByTopology(servers("nodash", "2-1", "X9-1", "S1-1", "2-ab"))
	assert.Equal(t, []string{"2", "S1", UnknownRackID}, rackIDs(racks))

	unknown := racks[2]
	assert.True(t, unknown.Unknown)
	assert.Equal(t, "Unassigned position", unknown.Title())
	assert.Equal(t, []string{"nodash", "X9-1", "2-ab"}, slotIDs(unknown))
	assert.Equal(t, 3, unknown.Count())
}

func TestGroupByTopology_Empty(t *testing.T) {
	assert.Empty(t, GroupByTopology(nil))
}

func TestRack_Title(t *testing.T) {
	racks := GroupByTopology(servers("3-1"))
	assert.Equal(t, "Rack 3", racks[0].Title())
}

func TestSummarize(t *testing.T) {
	s := Summarize([]model.Server{
		{PercentBuilt: 100},
		{PercentBuilt: 100, Status: model.BuildStatusFailed},
		{PercentBuilt: 40},
		{PercentBuilt: 0},
	})
	assert.Equal(t, Summary{Total: 4, Complete: 1, Failed: 1, Building: 2}, s)
}
