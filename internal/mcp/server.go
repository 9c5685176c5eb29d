// Package mcp implements a Model Context Protocol server over stdio:
// JSON schema generation from function metadata, tools/list and tools/call
// handling, and named-to-positional argument mapping.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/runfile-sh/run/internal/ast"
	"github.com/runfile-sh/run/internal/ctxlog"
	"github.com/runfile-sh/run/internal/interp"
)

const (
	protocolVersion = "2024-11-05"
	serverVersion   = "0.3.0"
)

var (
	errMethodNotFound = &jsonrpc2.Error{
		Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	errInvalidParams = &jsonrpc2.Error{
		Code: jsonrpc2.CodeInvalidParams, Message: "invalid params"}
)

// Serve runs the MCP server on stdin/stdout until the client disconnects.
// Requests are handled synchronously; tool calls execute Runfile functions
// in-process against the given interpreter.
func Serve(ctx context.Context, in *interp.Interpreter) error {
	s := &server{in: in}
	conn := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(stdrwc{}, jsonrpc2.PlainObjectCodec{}),
		s.handler())

	ctxlog.FromContext(ctx).Info("MCP server listening on stdio")
	<-conn.DisconnectNotify()
	return nil
}

// stdrwc adapts stdin/stdout to the io.ReadWriteCloser the stream codec
// expects.
type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdrwc) Write(p []byte) (int, error) { return os.Stdout.Write(p) }

func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		os.Stdout.Close()
		return err
	}
	return os.Stdout.Close()
}

type server struct {
	in *interp.Interpreter
}

type method func(ctx context.Context, params json.RawMessage) (any, error)

func (s *server) handler() jsonrpc2.Handler {
	methods := map[string]method{
		"initialize": s.initialize,
		"tools/list": s.toolsList,
		"tools/call": s.toolsCall,

		// Required by spec.
		"initialized":               noop,
		"notifications/initialized": noop,
	}

	return jsonrpc2.HandlerWithError(func(ctx context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		fn, ok := methods[req.Method]
		if !ok {
			return nil, errMethodNotFound
		}
		var params json.RawMessage
		if req.Params != nil {
			params = *req.Params
		}
		return fn(ctx, params)
	})
}

func noop(context.Context, json.RawMessage) (any, error) {
	return nil, nil
}

func (s *server) initialize(context.Context, json.RawMessage) (any, error) {
	return map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities": map[string]any{
			"tools": map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    "run",
			"version": serverVersion,
		},
	}, nil
}

func (s *server) toolsList(context.Context, json.RawMessage) (any, error) {
	output := Inspect(s.in)
	output.Tools = append(output.Tools, builtinTools()...)
	return output, nil
}

type callParams struct {
	Name      string                     `json:"name"`
	Arguments map[string]json.RawMessage `json:"arguments"`
}

type textContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type callResult struct {
	Content []textContent `json:"content"`
	IsError bool          `json:"isError"`
}

func (s *server) toolsCall(ctx context.Context, rawParams json.RawMessage) (any, error) {
	var params callParams
	if rawParams == nil || json.Unmarshal(rawParams, &params) != nil || params.Name == "" {
		return nil, errInvalidParams
	}

	switch params.Name {
	case toolSetCwd:
		return setCwd(params.Arguments)
	case toolGetCwd:
		return getCwd()
	}

	name, err := resolveToolName(s.in, params.Name)
	if err != nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
	}

	meta, _ := s.in.Metadata(name)
	args, err := mapArgumentsToPositional(meta, params.Arguments)
	if err != nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
	}

	ctxlog.FromContext(ctx).Debug("tool call",
		slog.String("function", name), slog.Int("args", len(args)))

	callErr := s.in.CallFunction(ctx, name, args)
	outputs := s.in.TakeCapturedOutputs()

	var content []textContent
	if len(outputs) > 0 {
		result := ast.NewStructuredResult(name, outputs, s.in.LastInterpreter())
		content = append(content, textContent{Type: "text", Text: result.ToMarkdown()})
	}
	if callErr != nil {
		content = append(content, textContent{
			Type: "text",
			Text: fmt.Sprintf("error: %v", callErr),
		})
	}

	return callResult{Content: content, IsError: callErr != nil}, nil
}

func setCwd(arguments map[string]json.RawMessage) (any, error) {
	raw, ok := arguments["path"]
	if !ok {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "missing 'path' argument"}
	}
	var path string
	if err := json.Unmarshal(raw, &path); err != nil {
		return nil, errInvalidParams
	}
	if err := os.Chdir(path); err != nil {
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeInternalError,
			Message: fmt.Sprintf("changing working directory: %v", err),
		}
	}
	return callResult{
		Content: []textContent{{Type: "text", Text: "working directory changed to " + path}},
	}, nil
}

func getCwd() (any, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeInternalError,
			Message: fmt.Sprintf("reading working directory: %v", err),
		}
	}
	return callResult{
		Content: []textContent{{Type: "text", Text: wd}},
	}, nil
}
