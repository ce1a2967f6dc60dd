package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/draftline/ast-identity/internal/session"
	"github.com/draftline/ast-identity/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewServer(st, session.NewManager(st, nil))
}

func callReq(argsJSON string) *mcp.CallToolRequest {
	return &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Arguments: json.RawMessage(argsJSON)},
	}
}

// resultJSON decodes a tool result's text content, failing on IsError.
func resultJSON(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	if res.IsError {
		tc := res.Content[0].(*mcp.TextContent)
		t.Fatalf("tool error: %s", tc.Text)
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", res.Content[0])
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(tc.Text), &m); err != nil {
		t.Fatalf("result not JSON: %v\n%s", err, tc.Text)
	}
	return m
}

func TestOpenUpdateCloseDocument(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	res, err := srv.handleOpenDocument(ctx, callReq(`{"uri": "file:///a.yaml", "text": "name: app\nreplicas: 3\n"}`))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	opened := resultJSON(t, res)
	if opened["language"] != "yaml" {
		t.Errorf("inferred language = %v, want yaml", opened["language"])
	}
	if opened["root_identity"] == "" {
		t.Error("root has no identity")
	}
	if opened["identities"].(float64) == 0 {
		t.Error("no identities assigned")
	}

	res, err = srv.handleUpdateDocument(ctx, callReq(`{"uri": "file:///a.yaml", "text": "name: app\nreplicas: 5\n"}`))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	updated := resultJSON(t, res)
	if updated["fresh"].(float64) != 0 {
		t.Errorf("value edit minted fresh identities: %v", updated["fresh"])
	}
	if updated["exact"].(float64) == 0 {
		t.Error("expected exact matches after a value edit")
	}

	res, err = srv.handleCloseDocument(ctx, callReq(`{"uri": "file:///a.yaml"}`))
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed := resultJSON(t, res); closed["closed"] != true {
		t.Errorf("close result = %v", closed)
	}
}

func TestResolveIdentity(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	res, _ := srv.handleOpenDocument(ctx, callReq(`{"uri": "file:///a.yaml", "text": "name: app\n"}`))
	opened := resultJSON(t, res)
	rootID := opened["root_identity"].(string)

	res, err := srv.handleResolveIdentity(ctx, callReq(fmt.Sprintf(`{"uri": "file:///a.yaml", "identity": %q}`, rootID)))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	resolved := resultJSON(t, res)
	if resolved["ast_type"] != "stream" {
		t.Errorf("root ast_type = %v, want stream", resolved["ast_type"])
	}

	res, _ = srv.handleResolveIdentity(ctx, callReq(`{"uri": "file:///a.yaml", "identity": "no-such-id"}`))
	if !res.IsError {
		t.Error("expected error for unknown identity")
	}
}

func TestListIdentities(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	srv.handleOpenDocument(ctx, callReq(`{"uri": "file:///a.yaml", "text": "name: app\n"}`))

	res, err := srv.handleListIdentities(ctx, callReq(`{"uri": "file:///a.yaml"}`))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	listed := resultJSON(t, res)
	ids, ok := listed["identities"].(map[string]any)
	if !ok || len(ids) == 0 {
		t.Fatalf("identities = %v", listed["identities"])
	}
	for id, raw := range ids {
		fp, ok := raw.(map[string]any)
		if !ok {
			t.Fatalf("fingerprint for %s is %T", id, raw)
		}
		if fp["astType"] == "" {
			t.Errorf("fingerprint for %s lacks astType", id)
		}
	}
}

func TestLayoutRoundTripThroughTools(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	srv.handleOpenDocument(ctx, callReq(`{"uri": "file:///a.yaml", "text": "name: app\n"}`))

	res, err := srv.handleSetLayout(ctx, callReq(`{"uri": "file:///a.yaml", "identity": "id-1", "x": 10, "y": 20, "width": 120, "height": 40}`))
	if err != nil {
		t.Fatalf("set layout: %v", err)
	}
	if stored := resultJSON(t, res); stored["stored"] != true {
		t.Errorf("set layout result = %v", stored)
	}

	res, err = srv.handleGetLayout(ctx, callReq(`{"uri": "file:///a.yaml", "identity": "id-1"}`))
	if err != nil {
		t.Fatalf("get layout: %v", err)
	}
	got := resultJSON(t, res)
	if got["X"].(float64) != 10 || got["Height"].(float64) != 40 {
		t.Errorf("layout = %v", got)
	}

	res, _ = srv.handleGetLayout(ctx, callReq(`{"uri": "file:///a.yaml", "identity": "missing"}`))
	if !res.IsError {
		t.Error("expected error for missing layout")
	}
}

func TestExportState(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	srv.handleOpenDocument(ctx, callReq(`{"uri": "file:///a.yaml", "text": "name: app\n"}`))

	res, err := srv.handleExportState(ctx, callReq(`{"uri": "file:///a.yaml"}`))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	exported := resultJSON(t, res)
	if _, ok := exported["idMap"].(map[string]any); !ok {
		t.Errorf("export lacks idMap: %v", exported)
	}
	if _, ok := exported["fingerprints"].(map[string]any); !ok {
		t.Errorf("export lacks fingerprints: %v", exported)
	}
}

func TestHandlersRequireOpenSession(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	handlers := map[string]func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"update":  srv.handleUpdateDocument,
		"resolve": srv.handleResolveIdentity,
		"list":    srv.handleListIdentities,
		"export":  srv.handleExportState,
	}
	for name, h := range handlers {
		res, err := h(ctx, callReq(`{"uri": "file:///never-opened.yaml", "text": "a: 1", "identity": "x"}`))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !res.IsError {
			t.Errorf("%s accepted a closed document", name)
		}
	}
}

func TestArgHelpers(t *testing.T) {
	args, err := parseArgs(callReq(`{"uri": "file:///a.yaml", "x": 12.5}`))
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if getStringArg(args, "uri") != "file:///a.yaml" {
		t.Error("string arg lost")
	}
	if getStringArg(args, "absent") != "" {
		t.Error("missing string arg must be empty")
	}
	if getFloatArg(args, "x", 0) != 12.5 {
		t.Error("float arg lost")
	}
	if getFloatArg(args, "absent", 7) != 7 {
		t.Error("default not applied")
	}

	if _, err := parseArgs(callReq(`not json`)); err == nil {
		t.Error("expected error for malformed arguments")
	}

	empty, err := parseArgs(&mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{}})
	if err != nil || len(empty) != 0 {
		t.Errorf("empty args = %v, %v", empty, err)
	}
}
