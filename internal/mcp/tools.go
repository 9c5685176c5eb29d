package mcp

import (
	"encoding/json"

	"github.com/runfile-sh/run/internal/ast"
	"github.com/runfile-sh/run/internal/interp"
	"github.com/runfile-sh/run/internal/transpile"
	"github.com/runfile-sh/run/internal/typing"
)

// ParameterSchema is the JSON schema for one tool parameter.
type ParameterSchema struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// InputSchema is the JSON schema for a tool's arguments object.
type InputSchema struct {
	Type       string                     `json:"type"`
	Properties map[string]ParameterSchema `json:"properties"`
	Required   []string                   `json:"required"`
}

// Tool is one MCP tool definition.
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`
}

// InspectOutput is the root structure for tools/list and -inspect output.
type InspectOutput struct {
	Tools []Tool `json:"tools"`
}

// toolFromMetadata builds a tool definition from a function's metadata.
// Functions without a @desc attribute are not exported; ok is false for
// those. Declared parameters take precedence over @arg attributes for types
// and requiredness; @arg contributes descriptions either way.
func toolFromMetadata(name string, meta interp.FunctionMetadata) (Tool, bool) {
	description := ""
	hasDesc := false
	argDescriptions := make(map[string]string)

	for _, attr := range meta.Attributes {
		switch a := attr.(type) {
		case *ast.DescAttr:
			description = a.Text
			hasDesc = true
		case *ast.ArgAttr:
			argDescriptions[a.Name] = a.Description
		}
	}
	if !hasDesc {
		return Tool{}, false
	}

	properties := make(map[string]ParameterSchema)
	required := []string{}

	if len(meta.Params) > 0 {
		for _, param := range meta.Params {
			if param.IsRest {
				// Rest parameter: array type, never required.
				properties[param.Name] = ParameterSchema{
					Type:        "array",
					Description: argDescriptions[param.Name],
				}
				continue
			}
			properties[param.Name] = ParameterSchema{
				Type:        typing.JSONType(param.Type),
				Description: argDescriptions[param.Name],
			}
			if param.Default == nil {
				required = append(required, param.Name)
			}
		}
	} else {
		for _, attr := range meta.Attributes {
			if a, ok := attr.(*ast.ArgAttr); ok {
				properties[a.Name] = ParameterSchema{
					Type:        typing.JSONType(a.Type),
					Description: a.Description,
				}
				required = append(required, a.Name)
			}
		}
	}

	return Tool{
		// MCP tool names allow [a-zA-Z0-9_-] only; colons are sanitized.
		Name:        transpile.SanitizeName(name),
		Description: description,
		InputSchema: InputSchema{
			Type:       "object",
			Properties: properties,
			Required:   required,
		},
	}, true
}

// Inspect builds tool definitions for every exported function in the
// interpreter's tables.
func Inspect(in *interp.Interpreter) InspectOutput {
	tools := []Tool{}
	for _, name := range in.ListAvailableFunctions() {
		meta, ok := in.Metadata(name)
		if !ok {
			continue
		}
		if tool, ok := toolFromMetadata(name, meta); ok {
			tools = append(tools, tool)
		}
	}
	return InspectOutput{Tools: tools}
}

// InspectJSON renders the inspect output for the -inspect flag.
func InspectJSON(in *interp.Interpreter) (string, error) {
	b, err := json.MarshalIndent(Inspect(in), "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Built-in tool names. Agents often run with a different working directory
// than the project, so the server exposes cwd management directly.
const (
	toolSetCwd = "set_cwd"
	toolGetCwd = "get_cwd"
)

func builtinTools() []Tool {
	return []Tool{
		{
			Name:        toolSetCwd,
			Description: "Change the server's working directory. Relative paths in Runfile commands resolve against it.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]ParameterSchema{
					"path": {Type: "string", Description: "Absolute path to the new working directory"},
				},
				Required: []string{"path"},
			},
		},
		{
			Name:        toolGetCwd,
			Description: "Report the server's current working directory.",
			InputSchema: InputSchema{
				Type:       "object",
				Properties: map[string]ParameterSchema{},
				Required:   []string{},
			},
		},
	}
}
