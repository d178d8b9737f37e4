package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/harrison/tetrad/internal/config"
	"github.com/harrison/tetrad/internal/logger"
	"github.com/harrison/tetrad/internal/reviewer"
	"github.com/harrison/tetrad/internal/tools"
)

func newTestServer(t *testing.T, in, out *bytes.Buffer) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Executors.Codex.Enabled = false
	cfg.Executors.Gemini.Enabled = false
	cfg.Executors.Qwen.Enabled = false
	cfg.Reasoning.Enabled = false

	log := logger.Nop()
	fleet := reviewer.NewFleet(cfg, log)
	handler := tools.NewHandler(cfg, log, fleet, nil)
	return New(handler, log, in, out)
}

func TestHandleInitializeReturnsServerInfo(t *testing.T) {
	s := newTestServer(t, &bytes.Buffer{}, &bytes.Buffer{})
	resp := s.handleRequest(context.Background(), Request{ID: json.RawMessage("1"), Method: "initialize"})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	var result InitializeResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if result.ServerInfo.Name != "tetrad" {
		t.Fatalf("server name = %q, want tetrad", result.ServerInfo.Name)
	}
	if !s.initialized {
		t.Fatal("server should record initialized state")
	}
}

func TestHandleToolsListReturnsSixTools(t *testing.T) {
	s := newTestServer(t, &bytes.Buffer{}, &bytes.Buffer{})
	resp := s.handleRequest(context.Background(), Request{ID: json.RawMessage("1"), Method: "tools/list"})
	var result ListToolsResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if len(result.Tools) != 6 {
		t.Fatalf("tools = %d, want 6", len(result.Tools))
	}
}

func TestHandleUnknownMethodReturnsMethodNotFound(t *testing.T) {
	s := newTestServer(t, &bytes.Buffer{}, &bytes.Buffer{})
	resp := s.handleRequest(context.Background(), Request{ID: json.RawMessage("1"), Method: "bogus/method"})
	if resp.Error == nil || resp.Error.Code != MethodNotFound {
		t.Fatalf("expected MethodNotFound, got %+v", resp.Error)
	}
}

func TestHandleToolsCallMissingParamsReturnsInvalidParams(t *testing.T) {
	s := newTestServer(t, &bytes.Buffer{}, &bytes.Buffer{})
	resp := s.handleRequest(context.Background(), Request{ID: json.RawMessage("1"), Method: "tools/call"})
	if resp.Error == nil || resp.Error.Code != InvalidParams {
		t.Fatalf("expected InvalidParams, got %+v", resp.Error)
	}
}

func TestHandleToolsCallStatus(t *testing.T) {
	s := newTestServer(t, &bytes.Buffer{}, &bytes.Buffer{})
	params, _ := json.Marshal(CallToolParams{Name: "tetrad_status"})
	resp := s.handleRequest(context.Background(), Request{ID: json.RawMessage("1"), Method: "tools/call", Params: params})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	var result ToolResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if result.IsError {
		t.Fatalf("status call reported an error: %+v", result)
	}
	if len(result.Content) != 1 || !strings.Contains(result.Content[0].Text, "consensus_rule") {
		t.Fatalf("unexpected status content: %+v", result.Content)
	}
}

func TestHandleToolsCallUnknownToolReturnsIsError(t *testing.T) {
	s := newTestServer(t, &bytes.Buffer{}, &bytes.Buffer{})
	params, _ := json.Marshal(CallToolParams{Name: "not_a_real_tool"})
	resp := s.handleRequest(context.Background(), Request{ID: json.RawMessage("1"), Method: "tools/call", Params: params})
	if resp.Error != nil {
		t.Fatalf("unexpected JSON-RPC error: %+v", resp.Error)
	}
	var result ToolResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if !result.IsError {
		t.Fatal("unknown tool name should surface as a tool-level error, not a JSON-RPC error")
	}
}

func TestHandleShutdownClearsInitializedState(t *testing.T) {
	s := newTestServer(t, &bytes.Buffer{}, &bytes.Buffer{})
	s.handleRequest(context.Background(), Request{ID: json.RawMessage("1"), Method: "initialize"})
	resp := s.handleRequest(context.Background(), Request{ID: json.RawMessage("2"), Method: "shutdown"})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	if s.initialized {
		t.Fatal("shutdown should clear the initialized flag")
	}
}

func TestRunSkipsResponseForNotifications(t *testing.T) {
	in := bytes.NewBufferString(`{"jsonrpc":"2.0","method":"notifications/initialized"}` + "\n")
	out := &bytes.Buffer{}
	s := newTestServer(t, in, out)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no response written for a notification, got %q", out.String())
	}
}

func TestRunWritesResponseForRequestsAndStopsOnEOF(t *testing.T) {
	in := bytes.NewBufferString(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}` + "\n")
	out := &bytes.Buffer{}
	s := newTestServer(t, in, out)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.Len() == 0 {
		t.Fatal("expected a response line to be written for a request with an id")
	}
	var resp Response
	if err := json.Unmarshal(bytes.TrimRight(out.Bytes(), "\n"), &resp); err != nil {
		t.Fatalf("output did not decode as a JSON-RPC response: %v", err)
	}
}
