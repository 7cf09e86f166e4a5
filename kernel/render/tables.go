package render

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/suntrap/buildboard/kernel/model"
	"github.com/suntrap/buildboard/kernel/sorting"
	"github.com/suntrap/buildboard/kernel/topology"
	"github.com/suntrap/buildboard/kernel/tracker"
)

// RackGrid renders one table per rack, slots in display order.
func (r *Renderer) RackGrid(racks []*topology.Rack) string {
	if len(racks) == 0 {
		return "no servers\n"
	}
	var b strings.Builder
	for _, rack := range racks {
		t := newTable(fmt.Sprintf("%s (%d)", rack.Title(), rack.Count()))
		t.AppendHeader(table.Row{"Slot", "Hostname", "Progress", "%", "Status"})
		for _, slot := range rack.Slots {
			for _, s := range slot.Servers {
				t.AppendRow(table.Row{slot.ID, s.Hostname, r.Bar(s), s.Percent(), s.Progress().String()})
			}
		}
		t.SetColumnConfigs([]table.ColumnConfig{{Number: 4, Align: text.AlignRight}})
		b.WriteString(t.Render())
		b.WriteString("\n")
	}
	return b.String()
}

// Summary renders the build counters of one region.
func (r *Renderer) Summary(region string, s topology.Summary) string {
	return fmt.Sprintf("%s: %d servers, %s complete, %s failed, %d building\n",
		strings.ToUpper(region), s.Total,
		r.paint(text.FgGreen, fmt.Sprint(s.Complete)),
		r.paint(text.FgRed, fmt.Sprint(s.Failed)),
		s.Building)
}

// ServerTable renders servers with the active sort column marked. status may
// be nil.
func (r *Renderer) ServerTable(title string, servers []model.Server, sort sorting.State, status func(dbid string) tracker.Status) string {
	t := newTable(title)
	header := table.Row{}
	for _, f := range sorting.Fields {
		label := string(f)
		if f == sort.Field {
			if sort.Direction == sorting.Descending {
				label += " ▼"
			} else {
				label += " ▲"
			}
		}
		header = append(header, label)
	}
	if status != nil {
		header = append(header, "assign")
	}
	t.AppendHeader(header)
	for _, s := range servers {
		row := table.Row{s.RackID, s.Hostname, s.DBID, s.SerialNumber, s.Percent()}
		if status != nil {
			row = append(row, r.statusCell(status(s.DBID)))
		}
		t.AppendRow(row)
	}
	t.AppendFooter(table.Row{"", "", "", "total", len(servers)})
	return t.Render() + "\n"
}

func (r *Renderer) statusCell(s tracker.Status) string {
	switch s {
	case tracker.Success:
		return r.paint(text.FgGreen, string(s))
	case tracker.Failed:
		return r.paint(text.FgRed, string(s))
	case tracker.Loading:
		return r.paint(text.FgYellow, string(s))
	}
	return ""
}

// Details renders one server's attributes as a two-column table.
func (r *Renderer) Details(d model.ServerDetails) string {
	t := newTable(d.Hostname)
	rows := []table.Row{
		{"Position", d.RackID},
		{"DBID", d.DBID},
		{"Serial", d.SerialNumber},
		{"Progress", fmt.Sprintf("%s %d%%", r.Bar(d.Server), d.Percent())},
		{"Status", d.Status},
		{"Assigned", d.AssignedStatus},
		{"Machine type", d.MachineType},
		{"IP address", d.IPAddress},
		{"MAC address", d.MACAddress},
		{"CPU", d.CPUModel},
		{"RAM", fmt.Sprintf("%d GB", d.RAMGB)},
		{"Storage", fmt.Sprintf("%d GB", d.StorageGB)},
		{"Install started", d.InstallStartTime},
		{"Estimated completion", d.EstimatedCompletion},
		{"Last heartbeat", d.LastHeartbeat},
	}
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		t.AppendRow(row)
	}
	return t.Render() + "\n"
}

// Preconfigs renders the template list with per-depot labels.
func (r *Renderer) Preconfigs(configs []model.Preconfig) string {
	t := newTable(fmt.Sprintf("Preconfigs (%d)", len(configs)))
	t.AppendHeader(table.Row{"ID", "Depot", "Region", "Config", "Created"})
	for _, c := range configs {
		t.AppendRow(table.Row{c.ID, c.Depot, model.RegionLabel(c.Depot), FormatConfig(c.Config), c.CreatedAt})
	}
	return t.Render() + "\n"
}

func (r *Renderer) Pushed(pushed []model.PushedPreconfig) string {
	t := newTable(fmt.Sprintf("Push history (%d)", len(pushed)))
	t.AppendHeader(table.Row{"ID", "Depot", "Region", "Config", "Pushed"})
	for _, p := range pushed {
		t.AppendRow(table.Row{p.ID, p.Depot, model.RegionLabel(p.Depot), FormatConfig(p.Config), p.PushedAt})
	}
	return t.Render() + "\n"
}

// DepotCount is one row of the per-region preconfig counts.
type DepotCount struct {
	Region model.Region
	Count  int
	Status tracker.Status
}

func (r *Renderer) DepotCounts(counts []DepotCount, total int) string {
	t := newTable("Depots")
	t.AppendHeader(table.Row{"Region", "Depot", "Preconfigs", "Push"})
	for _, c := range counts {
		t.AppendRow(table.Row{fmt.Sprintf("%s (%s)", c.Region.Label, c.Region.Code), c.Region.Depot, c.Count, r.statusCell(c.Status)})
	}
	t.AppendFooter(table.Row{"", "total", total, ""})
	return t.Render() + "\n"
}
