package mcp

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/suntrap/buildboard/kernel/engine"
	"github.com/suntrap/buildboard/kernel/model"
	"github.com/suntrap/buildboard/kernel/store"
	"github.com/suntrap/buildboard/kernel/stub"
)

func newTestServer(t *testing.T, opts stub.Options) *BuildboardMCPServer {
	t.Helper()
	backend := httptest.NewServer(stub.NewServer(store.NewMemoryStore(), opts))
	t.Cleanup(backend.Close)

	cfg := model.DefaultConfig()
	cfg.BackendURL = backend.URL
	cfg.GracePeriod = 50 * time.Millisecond
	c, err := engine.NewContext(cfg, engine.WithStore(store.NewMemoryStore()))
	if err != nil {
		t.Fatalf("failed to create context: %v", err)
	}
	t.Cleanup(c.Close)
	return NewBuildboardMCPServer(c, "test")
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: args}}
}

func decode(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	if result.IsError {
		t.Fatalf("unexpected error result: %v", result.Content)
	}
	var response map[string]interface{}
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &response); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	return response
}

func TestNewBuildboardMCPServer(t *testing.T) {
	server := newTestServer(t, stub.Options{})
	if server.server == nil {
		t.Fatal("expected mcp server to be created")
	}
	if server.ctx == nil {
		t.Error("expected context to be set")
	}
}

func TestBuildStatusHandler(t *testing.T) {
	server := newTestServer(t, stub.Options{})

	result, err := server.buildStatusHandler(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	response := decode(t, result)
	if int(response["count"].(float64)) != 3 {
		t.Errorf("expected 3 regions, got %v", response["count"])
	}

	result, _ = server.buildStatusHandler(context.Background(), callRequest(map[string]any{"region": "CBG"}))
	response = decode(t, result)
	regions := response["regions"].([]interface{})
	counts := regions[0].(map[string]interface{})["counts"].(map[string]interface{})
	if int(counts["total"].(float64)) != 11 {
		t.Errorf("expected 11 cbg servers, got %v", counts["total"])
	}

	result, _ = server.buildStatusHandler(context.Background(), callRequest(map[string]any{"region": "XYZ"}))
	if !result.IsError {
		t.Error("expected error result for unknown region")
	}
}

func TestBuildStatusHandler_BackendError(t *testing.T) {
	server := newTestServer(t, stub.Options{RequireSession: true})

	result, err := server.buildStatusHandler(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("expected error result without a session")
	}
}

func TestRackLayoutHandler(t *testing.T) {
	server := newTestServer(t, stub.Options{})

	result, err := server.rackLayoutHandler(context.Background(), callRequest(map[string]any{"region": "cbg"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	response := decode(t, result)
	racks := response["racks"].([]interface{})
	if len(racks) != 7 {
		t.Fatalf("expected 7 racks, got %d", len(racks))
	}
	if title := racks[0].(map[string]interface{})["title"]; title != "Rack 1" {
		t.Errorf("expected first rack 'Rack 1', got %v", title)
	}

	result, _ = server.rackLayoutHandler(context.Background(), callRequest(nil))
	if !result.IsError {
		t.Error("expected error result without region")
	}
}

func TestListUnassignedHandler(t *testing.T) {
	server := newTestServer(t, stub.Options{})

	result, err := server.listUnassignedHandler(context.Background(), callRequest(map[string]any{
		"region":    "CBG",
		"date":      "2025-01-15",
		"sort":      "hostname",
		"direction": "desc",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	response := decode(t, result)
	servers := response["servers"].([]interface{})
	if len(servers) != 3 {
		t.Fatalf("expected 3 unassigned servers, got %d", len(servers))
	}
	if h := servers[0].(map[string]interface{})["hostname"]; h != "iernfgwkf" {
		t.Errorf("expected 'iernfgwkf' first, got %v", h)
	}

	result, _ = server.listUnassignedHandler(context.Background(), callRequest(map[string]any{"region": "CBG", "sort": "color"}))
	if !result.IsError {
		t.Error("expected error result for unknown sort field")
	}
}

func TestAssignServersHandler(t *testing.T) {
	server := newTestServer(t, stub.Options{
		FailAssign: func(r model.AssignRequest) bool { return r.DBID == "441381" },
	})

	result, err := server.assignServersHandler(context.Background(), callRequest(map[string]any{
		"region": "CBG",
		"dbids":  "441381, 305589,nope",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	response := decode(t, result)

	succeeded := response["succeeded"].([]interface{})
	failed := response["failed"].([]interface{})
	skipped := response["skipped"].([]interface{})
	if len(succeeded) != 1 || succeeded[0] != "305589" {
		t.Errorf("expected 305589 to succeed, got %v", succeeded)
	}
	if len(failed) != 1 || failed[0] != "441381" {
		t.Errorf("expected 441381 to fail, got %v", failed)
	}
	if len(skipped) != 1 || skipped[0] != "nope" {
		t.Errorf("expected 'nope' to be skipped, got %v", skipped)
	}

	result, _ = server.assignServersHandler(context.Background(), callRequest(map[string]any{"region": "CBG", "dbids": "231401"}))
	if !result.IsError {
		t.Error("expected error result for an already assigned server")
	}
}

func TestPushPreconfigHandler(t *testing.T) {
	server := newTestServer(t, stub.Options{})

	result, err := server.pushPreconfigHandler(context.Background(), callRequest(map[string]any{"depot": 4}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	response := decode(t, result)
	if response["status"] != "success" {
		t.Errorf("expected success, got %v", response["status"])
	}
	if response["region"] != "Dallas" {
		t.Errorf("expected Dallas, got %v", response["region"])
	}

	result, _ = server.pushPreconfigHandler(context.Background(), callRequest(map[string]any{"depot": 3}))
	if !result.IsError {
		t.Error("expected error result for unknown depot")
	}
}

func TestServerDetailsHandler(t *testing.T) {
	server := newTestServer(t, stub.Options{})

	result, err := server.serverDetailsHandler(context.Background(), callRequest(map[string]any{"hostname": "op-66666-6"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	response := decode(t, result)
	if response["rackID"] != "S1-A" {
		t.Errorf("expected rackID 'S1-A', got %v", response["rackID"])
	}
}

func TestStatusHandler(t *testing.T) {
	server := newTestServer(t, stub.Options{})

	contents, err := server.statusHandler(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("expected 1 content, got %d", len(contents))
	}

	textContent := contents[0].(mcp.TextResourceContents)
	if textContent.URI != StatusURI {
		t.Errorf("expected URI '%s', got %s", StatusURI, textContent.URI)
	}

	var response map[string]interface{}
	if err := json.Unmarshal([]byte(textContent.Text), &response); err != nil {
		t.Fatalf("failed to decode status: %v", err)
	}
	backend := response["backend"].(map[string]interface{})
	if backend["mode"] != "strict" || backend["reachable"] != true {
		t.Errorf("unexpected backend state %v", backend)
	}
}
