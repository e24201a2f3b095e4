package mcpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/hylla/phaseboard/internal/adapters/server/common"
	"github.com/hylla/phaseboard/internal/board"
	"github.com/mark3labs/mcp-go/mcp"
)

// stubBoardService provides deterministic board responses for MCP tool tests.
type stubBoardService struct {
	projects    []common.Project
	page        common.BoardPage
	err         error
	lastBoard   common.BoardRequest
	lastReorder common.ReorderRequest
}

// ListProjects returns the configured projects.
func (s *stubBoardService) ListProjects(context.Context) ([]common.Project, error) {
	if s.err != nil {
		return nil, s.err
	}
	return append([]common.Project(nil), s.projects...), nil
}

// Board records the request and returns the configured page.
func (s *stubBoardService) Board(_ context.Context, req common.BoardRequest) (common.BoardPage, error) {
	s.lastBoard = req
	if s.err != nil {
		return common.BoardPage{}, s.err
	}
	return s.page, nil
}

// ReorderStage records the request and echoes it back.
func (s *stubBoardService) ReorderStage(_ context.Context, req common.ReorderRequest) (common.ReorderResult, error) {
	s.lastReorder = req
	if s.err != nil {
		return common.ReorderResult{}, s.err
	}
	return common.ReorderResult(req), nil
}

// jsonRPCResponse models minimal JSON-RPC response fields used in MCP adapter tests.
type jsonRPCResponse struct {
	ID     float64        `json:"id"`
	Result map[string]any `json:"result"`
}

// callToolRequest constructs one deterministic tools/call JSON-RPC request payload.
func callToolRequest(id int, toolName string, arguments map[string]any) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  "tools/call",
		"params": map[string]any{
			"name":      toolName,
			"arguments": arguments,
		},
	}
}

// toolResultText decodes the first text entry from one tool-call result payload.
func toolResultText(t *testing.T, result map[string]any) string {
	t.Helper()

	contentRaw, ok := result["content"].([]any)
	if !ok || len(contentRaw) == 0 {
		t.Fatalf("content missing in tool result: %#v", result)
	}
	first, ok := contentRaw[0].(map[string]any)
	if !ok {
		t.Fatalf("first content entry has unexpected type: %#v", contentRaw[0])
	}
	text, ok := first["text"].(string)
	if !ok {
		t.Fatalf("content text missing in tool result: %#v", first)
	}
	return text
}

// postJSONRPC sends one JSON-RPC payload and decodes the response body.
func postJSONRPC(t *testing.T, client *http.Client, url string, payload any) (*http.Response, jsonRPCResponse) {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	var decoded jsonRPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if err := resp.Body.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return resp, decoded
}

// initializeRequest builds a deterministic MCP initialize request payload.
func initializeRequest() map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "initialize",
		"params": map[string]any{
			"protocolVersion": mcp.LATEST_PROTOCOL_VERSION,
			"clientInfo": map[string]any{
				"name":    "phaseboard-test",
				"version": "1.0.0",
			},
		},
	}
}

// newTestServer starts one MCP server over svc and completes the initialize handshake.
func newTestServer(t *testing.T, svc common.BoardService) *httptest.Server {
	t.Helper()
	handler, err := NewHandler(Config{}, svc)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	_, _ = postJSONRPC(t, server.Client(), server.URL, initializeRequest())
	return server
}

// TestNewHandlerRequiresService verifies the board service is mandatory.
func TestNewHandlerRequiresService(t *testing.T) {
	if _, err := NewHandler(Config{}, nil); err == nil {
		t.Fatal("NewHandler(nil) error = nil, want error")
	}
}

// TestHandlerUsesStatelessTransport verifies MCP transport does not issue session ids.
func TestHandlerUsesStatelessTransport(t *testing.T) {
	handler, err := NewHandler(Config{}, &stubBoardService{})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	server := httptest.NewServer(handler)
	defer server.Close()

	resp, decoded := postJSONRPC(t, server.Client(), server.URL, initializeRequest())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if decoded.ID != 1 {
		t.Fatalf("id = %v, want 1", decoded.ID)
	}
	if got := resp.Header.Get("Mcp-Session-Id"); got != "" {
		t.Fatalf("Mcp-Session-Id header = %q, want empty (stateless transport)", got)
	}
}

// TestHandlerRegistersBoardTools verifies tool discovery lists every board tool.
func TestHandlerRegistersBoardTools(t *testing.T) {
	server := newTestServer(t, &stubBoardService{})
	_, toolsResp := postJSONRPC(t, server.Client(), server.URL, map[string]any{
		"jsonrpc": "2.0",
		"id":      2,
		"method":  "tools/list",
	})

	toolsRaw, ok := toolsResp.Result["tools"].([]any)
	if !ok {
		t.Fatalf("tools list payload missing tools: %#v", toolsResp.Result)
	}
	toolNames := make([]string, 0, len(toolsRaw))
	for _, toolRaw := range toolsRaw {
		toolMap, ok := toolRaw.(map[string]any)
		if !ok {
			continue
		}
		name, _ := toolMap["name"].(string)
		toolNames = append(toolNames, name)
	}
	for _, required := range []string{
		"phaseboard.list_projects",
		"phaseboard.get_board",
		"phaseboard.reorder_stage",
	} {
		if !slices.Contains(toolNames, required) {
			t.Fatalf("tool list missing %s: %#v", required, toolNames)
		}
	}
}

// TestHandlerGetBoardForwardsArguments verifies numeric arguments reach the service.
func TestHandlerGetBoardForwardsArguments(t *testing.T) {
	svc := &stubBoardService{page: common.BoardPage{
		Page:           board.PageInfo{Current: 1, Total: 2},
		ColumnsPerPage: 3,
	}}
	server := newTestServer(t, svc)

	_, resp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(3, "phaseboard.get_board", map[string]any{
		"project_id": "p1",
		"width":      900,
		"page":       1,
	}))

	if isErr, _ := resp.Result["isError"].(bool); isErr {
		t.Fatalf("get_board returned error: %s", toolResultText(t, resp.Result))
	}
	if svc.lastBoard.ProjectID != "p1" || svc.lastBoard.Width != 900 {
		t.Fatalf("request = %#v, want p1/900", svc.lastBoard)
	}
	if svc.lastBoard.Page == nil || *svc.lastBoard.Page != 1 {
		t.Fatalf("page = %v, want 1", svc.lastBoard.Page)
	}
	structured, ok := resp.Result["structuredContent"].(map[string]any)
	if !ok {
		t.Fatalf("structuredContent missing in response: %#v", resp.Result)
	}
	if got, _ := structured["columns_per_page"].(float64); got != 3 {
		t.Fatalf("columns_per_page = %v, want 3", structured["columns_per_page"])
	}
	pageInfo, _ := structured["page"].(map[string]any)
	if got, _ := pageInfo["total"].(float64); got != 2 {
		t.Fatalf("page = %#v, want total 2", pageInfo)
	}
}

// TestHandlerGetBoardOmittedPage verifies an absent page argument stays unset.
func TestHandlerGetBoardOmittedPage(t *testing.T) {
	svc := &stubBoardService{}
	server := newTestServer(t, svc)

	_, _ = postJSONRPC(t, server.Client(), server.URL, callToolRequest(3, "phaseboard.get_board", map[string]any{
		"project_id": "p1",
	}))
	if svc.lastBoard.Page != nil {
		t.Fatalf("page = %v, want nil", *svc.lastBoard.Page)
	}
}

// TestHandlerReorderStage verifies reorder arguments and the echoed result.
func TestHandlerReorderStage(t *testing.T) {
	svc := &stubBoardService{}
	server := newTestServer(t, svc)

	_, resp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(4, "phaseboard.reorder_stage", map[string]any{
		"project_id": "p1",
		"stage":      "FRS",
		"task_ids":   []string{"b", "a"},
	}))
	if isErr, _ := resp.Result["isError"].(bool); isErr {
		t.Fatalf("reorder_stage returned error: %s", toolResultText(t, resp.Result))
	}
	if svc.lastReorder.Stage != "FRS" || strings.Join(svc.lastReorder.TaskIDs, ",") != "b,a" {
		t.Fatalf("reorder = %#v, want FRS b,a", svc.lastReorder)
	}
}

// TestHandlerToolErrorPrefixes verifies adapter errors surface with stable prefixes.
func TestHandlerToolErrorPrefixes(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		prefix string
	}{
		{name: "not found", err: fmt.Errorf("get project: %w", common.ErrNotFound), prefix: "not_found:"},
		{name: "invalid", err: fmt.Errorf("stage: %w", common.ErrInvalidRequest), prefix: "invalid_request:"},
		{name: "internal", err: fmt.Errorf("disk on fire"), prefix: "internal_error:"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := newTestServer(t, &stubBoardService{err: tc.err})
			_, resp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(5, "phaseboard.get_board", map[string]any{
				"project_id": "p1",
			}))
			if isErr, _ := resp.Result["isError"].(bool); !isErr {
				t.Fatalf("isError = false, want true: %#v", resp.Result)
			}
			if text := toolResultText(t, resp.Result); !strings.HasPrefix(text, tc.prefix) {
				t.Fatalf("text = %q, want prefix %q", text, tc.prefix)
			}
		})
	}
}

// TestToolResultFromNilError verifies the nil fallback message.
func TestToolResultFromNilError(t *testing.T) {
	result := toolResultFromError(nil)
	if !result.IsError {
		t.Fatal("IsError = false, want true")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok || text.Text != "unknown error" {
		t.Fatalf("content = %#v, want unknown error", result.Content)
	}
}
