package model

// Fixtures is a complete offline data set for every backend endpoint. Empty
// sections are filled from the built-in data set by the store package.
type Fixtures struct {
	User             *User             `json:"user,omitempty" yaml:"user,omitempty"`
	BuildStatus      RegionInventory   `json:"build_status,omitempty" yaml:"build_status,omitempty"`
	BuildHistory     RegionInventory   `json:"build_history,omitempty" yaml:"build_history,omitempty"`
	Hostnames        []string          `json:"hostnames,omitempty" yaml:"hostnames,omitempty"`
	ServerDetails    []ServerDetails   `json:"server_details,omitempty" yaml:"server_details,omitempty"`
	Preconfigs       []Preconfig       `json:"preconfigs,omitempty" yaml:"preconfigs,omitempty"`
	PushedPreconfigs []PushedPreconfig `json:"pushed_preconfigs,omitempty" yaml:"pushed_preconfigs,omitempty"`
	BuildLogs        map[string]string `json:"build_logs,omitempty" yaml:"build_logs,omitempty"`
}

// Clone deep-copies an inventory so callers may mutate the result.
func (ri RegionInventory) Clone() RegionInventory {
	if ri == nil {
		return nil
	}
	out := make(RegionInventory, len(ri))
	for k, servers := range ri {
		out[k] = append([]Server(nil), servers...)
	}
	return out
}
