package model

import (
	"testing"
)

func TestServer_Progress(t *testing.T) {
	tests := []struct {
		name   string
		server Server
		want   Progress
	}{
		{"complete", Server{PercentBuilt: 100, Status: BuildStatusComplete}, ProgressComplete},
		{"hundred while installing", Server{PercentBuilt: 100, Status: BuildStatusInstalling}, ProgressComplete},
		{"failed overrides percent", Server{PercentBuilt: 100, Status: BuildStatusFailed}, ProgressFailed},
		{"failed partial", Server{PercentBuilt: 45, Status: BuildStatusFailed}, ProgressFailed},
		{"building", Server{PercentBuilt: 55, Status: BuildStatusInstalling}, ProgressBuilding},
		{"over range clamps", Server{PercentBuilt: 140}, ProgressComplete},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.server.Progress(); got != tt.want {
				t.Errorf("Progress() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSplitAssigned(t *testing.T) {
	servers := []Server{
		{DBID: "1", AssignedStatus: AssignedStatusNotAssigned},
		{DBID: "2", AssignedStatus: AssignedStatusAssigned},
		{DBID: "3", AssignedStatus: ""},
		{DBID: "4", AssignedStatus: AssignedStatusAssigned},
	}

	unassigned, assigned := SplitAssigned(servers)
	if len(unassigned) != 2 || unassigned[0].DBID != "1" || unassigned[1].DBID != "3" {
		t.Errorf("unexpected unassigned: %v", unassigned)
	}
	if len(assigned) != 2 || assigned[0].DBID != "2" || assigned[1].DBID != "4" {
		t.Errorf("unexpected assigned: %v", assigned)
	}
}

func TestRegionInventory(t *testing.T) {
	ri := RegionInventory{
		"dub": {{DBID: "1"}},
		"cbg": {{DBID: "2"}, {DBID: "3"}},
	}
	if n := ri.Count(); n != 3 {
		t.Errorf("expected 3 servers, got %d", n)
	}
	if len(ri.Region("CBG")) != 2 {
		t.Error("Region lookup should be case-insensitive")
	}
	codes := ri.Codes()
	if len(codes) != 2 || codes[0] != "cbg" || codes[1] != "dub" {
		t.Errorf("unexpected codes %v", codes)
	}
}

func TestAssignRequest_Validate(t *testing.T) {
	ok := NewAssignRequest(Server{SerialNumber: "SN1", Hostname: "h1", DBID: "1"})
	if err := ok.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	bad := AssignRequest{Hostname: "h1", DBID: "1"}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for missing serial number")
	}
}

func TestPushRequest_Validate(t *testing.T) {
	for _, depot := range []int{1, 2, 4} {
		if err := (PushRequest{Depot: depot}).Validate(); err != nil {
			t.Errorf("depot %d: unexpected error %v", depot, err)
		}
	}
	for _, depot := range []int{0, 3, 5} {
		if err := (PushRequest{Depot: depot}).Validate(); err == nil {
			t.Errorf("depot %d: expected error", depot)
		}
	}
}
