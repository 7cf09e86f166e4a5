package model

import (
	"sort"
	"strings"
)

const (
	AssignedStatusAssigned    = "assigned"
	AssignedStatusNotAssigned = "not assigned"
)

const (
	BuildStatusInstalling = "installing"
	BuildStatusComplete   = "complete"
	BuildStatusFailed     = "failed"
)

// Server is one inventory item as reported by the build backend.
type Server struct {
	RackID         string `json:"rackID" yaml:"rackID"`
	Hostname       string `json:"hostname" yaml:"hostname"`
	DBID           string `json:"dbid" yaml:"dbid"`
	SerialNumber   string `json:"serial_number" yaml:"serial_number"`
	PercentBuilt   int    `json:"percent_built" yaml:"percent_built"`
	AssignedStatus string `json:"assigned_status" yaml:"assigned_status"`
	MachineType    string `json:"machine_type,omitempty" yaml:"machine_type,omitempty"`
	Status         string `json:"status,omitempty" yaml:"status,omitempty"`
}

func (s Server) IsAssigned() bool {
	return s.AssignedStatus == AssignedStatusAssigned
}

// Percent clamps PercentBuilt into 0..100.
func (s Server) Percent() int {
	switch {
	case s.PercentBuilt < 0:
		return 0
	case s.PercentBuilt > 100:
		return 100
	}
	return s.PercentBuilt
}

// Position parses RackID. See ParsePosition.
func (s Server) Position() (Position, error) {
	return ParsePosition(s.RackID)
}

type Progress int

const (
	ProgressBuilding Progress = iota
	ProgressComplete
	ProgressFailed
)

func (p Progress) String() string {
	switch p {
	case ProgressComplete:
		return "complete"
	case ProgressFailed:
		return "failed"
	}
	return "building"
}

// Progress classifies the server for display. A failed build wins over any
// percentage.
func (s Server) Progress() Progress {
	if s.Status == BuildStatusFailed {
		return ProgressFailed
	}
	if s.Percent() == 100 {
		return ProgressComplete
	}
	return ProgressBuilding
}

// RegionInventory maps a lower-case region code to the servers in it.
// It is the shape of both /api/build-status and /api/build-history/{date}.
type RegionInventory map[string][]Server

// Region returns the servers for a region code, case-insensitively.
func (ri RegionInventory) Region(code string) []Server {
	return ri[strings.ToLower(code)]
}

// Codes returns the region keys in sorted order.
func (ri RegionInventory) Codes() []string {
	codes := make([]string, 0, len(ri))
	for k := range ri {
		codes = append(codes, k)
	}
	sort.Strings(codes)
	return codes
}

func (ri RegionInventory) Count() int {
	n := 0
	for _, servers := range ri {
		n += len(servers)
	}
	return n
}

// SplitAssigned partitions servers, keeping input order in both halves.
func SplitAssigned(servers []Server) (unassigned, assigned []Server) {
	for _, s := range servers {
		if s.IsAssigned() {
			assigned = append(assigned, s)
		} else {
			unassigned = append(unassigned, s)
		}
	}
	return unassigned, assigned
}

// ServerDetails is the full attribute set for one server, fetched on demand.
type ServerDetails struct {
	Server              `yaml:",inline"`
	IPAddress           string `json:"ip_address,omitempty" yaml:"ip_address,omitempty"`
	MACAddress          string `json:"mac_address,omitempty" yaml:"mac_address,omitempty"`
	CPUModel            string `json:"cpu_model,omitempty" yaml:"cpu_model,omitempty"`
	RAMGB               int    `json:"ram_gb,omitempty" yaml:"ram_gb,omitempty"`
	StorageGB           int    `json:"storage_gb,omitempty" yaml:"storage_gb,omitempty"`
	InstallStartTime    string `json:"install_start_time,omitempty" yaml:"install_start_time,omitempty"`
	EstimatedCompletion string `json:"estimated_completion,omitempty" yaml:"estimated_completion,omitempty"`
	LastHeartbeat       string `json:"last_heartbeat,omitempty" yaml:"last_heartbeat,omitempty"`
}

// User is the session identity returned by /me.
type User struct {
	ID     string   `json:"id" yaml:"id"`
	Email  string   `json:"email" yaml:"email"`
	Name   string   `json:"name,omitempty" yaml:"name,omitempty"`
	Role   string   `json:"role,omitempty" yaml:"role,omitempty"`
	Groups []string `json:"groups,omitempty" yaml:"groups,omitempty"`
}
