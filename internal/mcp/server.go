package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/harrison/tetrad/internal/logger"
	"github.com/harrison/tetrad/internal/tools"
)

// version is reported in the initialize handshake's serverInfo block.
const version = "0.1.0"

// Server is the stdio MCP server. It owns one Tool Handler and dispatches
// JSON-RPC requests to it, one line at a time, with no concurrent request
// processing — per spec.md's single-threaded server loop model.
//
// Grounded on the Rust reference's McpServer (mcp/server.rs): the
// initialize/initialized/shutdown/tools-list/tools-call method match and
// the read-dispatch-write-unless-notification loop shape, re-expressed
// with Go's explicit error returns in place of Result<_, _>.
type Server struct {
	transport   *stdioTransport
	handler     *tools.Handler
	log         logger.Logger
	initialized bool
}

// New constructs a Server reading from r and writing to w.
func New(handler *tools.Handler, log logger.Logger, r io.Reader, w io.Writer) *Server {
	return &Server{
		transport: newStdioTransport(r, w),
		handler:   handler,
		log:       log,
	}
}

// Run blocks, processing requests until the input stream closes.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("tetrad MCP server starting")
	for {
		req, err := s.transport.ReadMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.log.Info("client disconnected")
				return nil
			}
			s.log.Error("failed to read message", logger.F("error", err.Error()))
			resp := errorResponse(nil, ParseError, "parse error", err.Error())
			if writeErr := s.transport.WriteResponse(resp); writeErr != nil {
				return writeErr
			}
			continue
		}

		resp := s.handleRequest(ctx, req)
		if req.IsNotification() {
			continue
		}
		if err := s.transport.WriteResponse(resp); err != nil {
			return err
		}
	}
}

func (s *Server) handleRequest(ctx context.Context, req Request) Response {
	s.log.Debug("handling request", logger.F("method", req.Method))

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "initialized", "notifications/initialized":
		return s.handleInitialized(req)
	case "shutdown":
		return s.handleShutdown(req)
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	default:
		return errorResponse(req.ID, MethodNotFound, fmt.Sprintf("method not found: %s", req.Method), "")
	}
}

func (s *Server) handleInitialize(req Request) Response {
	s.log.Info("client initializing connection")
	s.initialized = true
	return success(req.ID, defaultInitializeResult(version))
}

func (s *Server) handleInitialized(req Request) Response {
	s.log.Info("client initialization complete")
	return success(req.ID, struct{}{})
}

func (s *Server) handleShutdown(req Request) Response {
	s.log.Info("client requested shutdown")
	s.initialized = false
	return success(req.ID, nil)
}

func (s *Server) handleToolsList(req Request) Response {
	descs := tools.Descriptions()
	out := make([]ToolDescriptor, len(descs))
	for i, d := range descs {
		out[i] = ToolDescriptor{Name: d.Name, Description: d.Description, InputSchema: d.InputSchema}
	}
	return success(req.ID, ListToolsResult{Tools: out})
}

func (s *Server) handleToolsCall(ctx context.Context, req Request) Response {
	if len(req.Params) == 0 {
		return errorResponse(req.ID, InvalidParams, "missing params", "")
	}
	var params CallToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, InvalidParams, "invalid params", err.Error())
	}
	if params.Name == "" {
		return errorResponse(req.ID, InvalidParams, "missing tool name", "")
	}

	s.log.Info("calling tool", logger.F("tool", params.Name))

	result, err := s.dispatchTool(ctx, params.Name, params.Arguments)
	if err != nil {
		return success(req.ID, textResult(err.Error(), true))
	}
	return success(req.ID, result)
}

// dispatchTool routes a tools/call to the matching Handler method,
// unmarshaling arguments into the method's param struct and marshaling its
// result back into the tool's text content block.
func (s *Server) dispatchTool(ctx context.Context, name string, rawArgs json.RawMessage) (ToolResult, error) {
	switch name {
	case "tetrad_review_plan":
		var args tools.ReviewPlanArgs
		if err := unmarshalArgs(rawArgs, &args); err != nil {
			return ToolResult{}, err
		}
		result, err := s.handler.ReviewPlan(ctx, args)
		return toolResultFrom(result, err)

	case "tetrad_review_code":
		var args tools.ReviewCodeArgs
		if err := unmarshalArgs(rawArgs, &args); err != nil {
			return ToolResult{}, err
		}
		result, err := s.handler.ReviewCode(ctx, args)
		return toolResultFrom(result, err)

	case "tetrad_review_tests":
		var args tools.ReviewTestsArgs
		if err := unmarshalArgs(rawArgs, &args); err != nil {
			return ToolResult{}, err
		}
		result, err := s.handler.ReviewTests(ctx, args)
		return toolResultFrom(result, err)

	case "tetrad_confirm":
		var args tools.ConfirmArgs
		if err := unmarshalArgs(rawArgs, &args); err != nil {
			return ToolResult{}, err
		}
		return toolResultFrom(s.handler.Confirm(args), nil)

	case "tetrad_final_check":
		var args tools.FinalCheckArgs
		if err := unmarshalArgs(rawArgs, &args); err != nil {
			return ToolResult{}, err
		}
		result, err := s.handler.FinalCheck(ctx, args)
		return toolResultFrom(result, err)

	case "tetrad_status":
		return toolResultFrom(s.handler.Status(ctx), nil)

	default:
		return ToolResult{}, fmt.Errorf("%w: %s", tools.ErrUnknownTool, name)
	}
}

func unmarshalArgs(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func toolResultFrom(payload any, err error) (ToolResult, error) {
	if err != nil {
		return textResult(err.Error(), true), nil
	}
	data, mErr := json.MarshalIndent(payload, "", "  ")
	if mErr != nil {
		return ToolResult{}, mErr
	}
	return textResult(string(data), false), nil
}
