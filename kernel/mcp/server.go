package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/suntrap/buildboard/kernel/engine"
	"github.com/suntrap/buildboard/kernel/model"
	"github.com/suntrap/buildboard/kernel/sorting"
	"github.com/suntrap/buildboard/kernel/topology"
)

const StatusURI = "buildboard://status"

type BuildboardMCPServer struct {
	server *server.MCPServer
	ctx    *engine.Context
}

func NewBuildboardMCPServer(c *engine.Context, version string) *BuildboardMCPServer {
	srv := server.NewMCPServer(
		"Buildboard",
		version,
		server.WithResourceCapabilities(true, true),
		server.WithToolCapabilities(true),
	)

	bs := &BuildboardMCPServer{
		server: srv,
		ctx:    c,
	}

	bs.registerTools()
	bs.registerResources()

	return bs
}

func (bs *BuildboardMCPServer) ServeStdio() error {
	return server.ServeStdio(bs.server)
}

func (bs *BuildboardMCPServer) registerTools() {
	bs.server.AddTool(mcp.NewTool("build_status",
		mcp.WithDescription("Summarize live build progress per region"),
		mcp.WithString("region", mcp.Description("Region code (CBG, DUB, DAL); all regions when omitted")),
	), bs.buildStatusHandler)

	bs.server.AddTool(mcp.NewTool("rack_layout",
		mcp.WithDescription("Group a region's servers into racks and slots"),
		mcp.WithString("region", mcp.Description("Region code"), mcp.Required()),
	), bs.rackLayoutHandler)

	bs.server.AddTool(mcp.NewTool("list_unassigned",
		mcp.WithDescription("List finished builds not yet assigned for a day and region"),
		mcp.WithString("region", mcp.Description("Region code"), mcp.Required()),
		mcp.WithString("date", mcp.Description("Build day as YYYY-MM-DD, today when omitted")),
		mcp.WithString("sort", mcp.Description("Sort field: rackID, hostname, dbid, serial_number, percent_built")),
		mcp.WithString("direction", mcp.Description("asc or desc")),
	), bs.listUnassignedHandler)

	bs.server.AddTool(mcp.NewTool("assign_servers",
		mcp.WithDescription("Assign unassigned servers by dbid, one at a time"),
		mcp.WithString("region", mcp.Description("Region code"), mcp.Required()),
		mcp.WithString("dbids", mcp.Description("Comma-separated dbids"), mcp.Required()),
		mcp.WithString("date", mcp.Description("Build day as YYYY-MM-DD, today when omitted")),
	), bs.assignServersHandler)

	bs.server.AddTool(mcp.NewTool("push_preconfig",
		mcp.WithDescription("Push the preconfig templates of one depot"),
		mcp.WithNumber("depot", mcp.Description("Depot id (1, 2 or 4)"), mcp.Required()),
	), bs.pushPreconfigHandler)

	bs.server.AddTool(mcp.NewTool("server_details",
		mcp.WithDescription("Fetch the full attribute set of one server"),
		mcp.WithString("hostname", mcp.Description("Server hostname"), mcp.Required()),
	), bs.serverDetailsHandler)

	bs.server.AddTool(mcp.NewTool("reachability",
		mcp.WithDescription("Report the backend mode and last known reachability"),
	), bs.reachabilityHandler)
}

func (bs *BuildboardMCPServer) registerResources() {
	resource := mcp.NewResource(StatusURI, "Buildboard Status",
		mcp.WithResourceDescription("Per-region build counters and backend reachability"),
		mcp.WithMIMEType("application/json"),
	)
	bs.server.AddResource(resource, bs.statusHandler)
}

type regionStatus struct {
	Region string           `json:"region"`
	Counts topology.Summary `json:"counts"`
}

func (bs *BuildboardMCPServer) summaries(ctx context.Context, only string) ([]regionStatus, error) {
	inv, err := bs.ctx.Engine.BuildStatus(ctx)
	if err != nil {
		return nil, err
	}
	var out []regionStatus
	for _, code := range inv.Codes() {
		if only != "" && !strings.EqualFold(only, code) {
			continue
		}
		out = append(out, regionStatus{Region: code, Counts: topology.Summarize(inv[code])})
	}
	return out, nil
}

func (bs *BuildboardMCPServer) buildStatusHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	region := request.GetString("region", "")
	if region != "" {
		if _, err := model.GetRegion(region); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	regions, err := bs.summaries(ctx, region)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to fetch build status: %v", err)), nil
	}
	return jsonResult(map[string]interface{}{"count": len(regions), "regions": regions})
}

type slotView struct {
	ID      string         `json:"id"`
	Servers []model.Server `json:"servers"`
}

type rackView struct {
	Title string     `json:"title"`
	Slots []slotView `json:"slots"`
}

func (bs *BuildboardMCPServer) rackLayoutHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	region, err := request.RequireString("region")
	if err != nil {
		return mcp.NewToolResultError("region argument is required"), nil
	}
	inv, err := bs.ctx.Engine.BuildStatus(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to fetch build status: %v", err)), nil
	}
	var racks []rackView
	for _, r := range topology.GroupByTopology(inv.Region(region)) {
		rv := rackView{Title: r.Title()}
		for _, s := range r.Slots {
			rv.Slots = append(rv.Slots, slotView{ID: s.ID, Servers: s.Servers})
		}
		racks = append(racks, rv)
	}
	return jsonResult(map[string]interface{}{"region": region, "count": len(racks), "racks": racks})
}

func (bs *BuildboardMCPServer) unassigned(ctx context.Context, request mcp.CallToolRequest) (string, []model.Server, error) {
	region, err := request.RequireString("region")
	if err != nil {
		return "", nil, fmt.Errorf("region argument is required")
	}
	if _, err := model.GetRegion(region); err != nil {
		return "", nil, err
	}
	date := request.GetString("date", time.Now().Format(engine.HistoryDateLayout))
	inv, err := bs.ctx.Engine.BuildHistory(ctx, date)
	if err != nil {
		return "", nil, fmt.Errorf("failed to fetch build history: %w", err)
	}
	unassigned, _ := model.SplitAssigned(inv.Region(region))
	return date, unassigned, nil
}

func (bs *BuildboardMCPServer) listUnassignedHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, servers, err := bs.unassigned(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	field, err := sorting.ParseField(request.GetString("sort", string(sorting.FieldPosition)))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dir, err := sorting.ParseDirection(request.GetString("direction", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	servers = sorting.Sort(servers, field, dir)
	return jsonResult(map[string]interface{}{"date": date, "count": len(servers), "servers": servers})
}

func (bs *BuildboardMCPServer) assignServersHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("dbids")
	if err != nil {
		return mcp.NewToolResultError("dbids argument is required"), nil
	}
	_, servers, err := bs.unassigned(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	wanted := make(map[string]bool)
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			wanted[id] = true
		}
	}
	var selected []model.Server
	for _, s := range sorting.Sort(servers, sorting.FieldPosition, sorting.Ascending) {
		if wanted[s.DBID] {
			selected = append(selected, s)
			delete(wanted, s.DBID)
		}
	}
	if len(selected) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("no unassigned servers match '%s'", raw)), nil
	}
	var unknown []string
	for id := range wanted {
		unknown = append(unknown, id)
	}

	summary := bs.ctx.Engine.AssignBatch(ctx, bs.ctx.Assignments, selected)
	return jsonResult(map[string]interface{}{
		"batch_id":  summary.BatchID,
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
		"skipped":   unknown,
	})
}

func (bs *BuildboardMCPServer) pushPreconfigHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	depot := request.GetInt("depot", 0)
	region, err := model.RegionByDepot(depot)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	status := bs.ctx.Engine.Push(ctx, bs.ctx.Pushes, depot)
	return jsonResult(map[string]interface{}{"depot": depot, "region": region.Label, "status": status})
}

func (bs *BuildboardMCPServer) serverDetailsHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	hostname, err := request.RequireString("hostname")
	if err != nil {
		return mcp.NewToolResultError("hostname argument is required"), nil
	}
	d, err := bs.ctx.Engine.ServerDetails(ctx, hostname)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to fetch details for '%s': %v", hostname, err)), nil
	}
	return jsonResult(d)
}

func (bs *BuildboardMCPServer) reachabilityHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(bs.reachability(ctx))
}

func (bs *BuildboardMCPServer) reachability(ctx context.Context) map[string]interface{} {
	reachable := bs.ctx.Health.IsReachable(ctx)
	st := bs.ctx.Health.State()
	out := map[string]interface{}{
		"mode":         bs.ctx.Config.Mode,
		"backend":      bs.ctx.Config.BackendURL,
		"reachable":    reachable,
		"reachability": st.Reachability.String(),
	}
	if !st.CheckedAt.IsZero() {
		out["checked_at"] = st.CheckedAt.Format(time.RFC3339)
	}
	return out
}

func (bs *BuildboardMCPServer) statusHandler(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	regions, err := bs.summaries(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch build status: %w", err)
	}
	data, err := json.Marshal(map[string]interface{}{
		"count":   len(regions),
		"regions": regions,
		"backend": bs.reachability(ctx),
	})
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      StatusURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
