package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runfile-sh/run/internal/ast"
	"github.com/runfile-sh/run/internal/interp"
	"github.com/runfile-sh/run/internal/parser"
)

func load(t *testing.T, source string) *interp.Interpreter {
	t.Helper()
	program, err := parser.Parse(source)
	require.NoError(t, err)

	in := interp.New()
	in.SetOutputMode(ast.ModeStructured)
	require.NoError(t, in.Execute(context.Background(), program))
	return in
}

func str(s string) *string { return &s }

func TestToolRequiresDescription(t *testing.T) {
	_, ok := toolFromMetadata("build", interp.FunctionMetadata{})
	assert.False(t, ok)

	tool, ok := toolFromMetadata("build", interp.FunctionMetadata{
		Attributes: []ast.Attribute{&ast.DescAttr{Text: "Build the project"}},
	})
	require.True(t, ok)
	assert.Equal(t, "build", tool.Name)
	assert.Equal(t, "Build the project", tool.Description)
	assert.Empty(t, tool.InputSchema.Properties)
	assert.Empty(t, tool.InputSchema.Required)
}

func TestToolFromArgAttributes(t *testing.T) {
	tool, ok := toolFromMetadata("scale", interp.FunctionMetadata{
		Attributes: []ast.Attribute{
			&ast.DescAttr{Text: "Scale service"},
			&ast.ArgAttr{Position: 1, Name: "service", Type: ast.TypeString, Description: "Service name"},
			&ast.ArgAttr{Position: 2, Name: "replicas", Type: ast.TypeInteger, Description: "Number of replicas"},
		},
	})
	require.True(t, ok)

	require.Len(t, tool.InputSchema.Properties, 2)
	assert.Equal(t, "string", tool.InputSchema.Properties["service"].Type)
	assert.Equal(t, "integer", tool.InputSchema.Properties["replicas"].Type)
	assert.ElementsMatch(t, []string{"service", "replicas"}, tool.InputSchema.Required)
}

func TestToolFromParams(t *testing.T) {
	tool, ok := toolFromMetadata("deploy", interp.FunctionMetadata{
		Attributes: []ast.Attribute{&ast.DescAttr{Text: "Deploy application"}},
		Params: []ast.Parameter{
			{Name: "env", Type: ast.TypeString},
			{Name: "version", Type: ast.TypeString, Default: str("latest")},
		},
	})
	require.True(t, ok)

	// A parameter with a default is optional.
	assert.Equal(t, []string{"env"}, tool.InputSchema.Required)
	assert.Len(t, tool.InputSchema.Properties, 2)
}

func TestToolRestParamIsArray(t *testing.T) {
	tool, ok := toolFromMetadata("echo_all", interp.FunctionMetadata{
		Attributes: []ast.Attribute{&ast.DescAttr{Text: "Echo all arguments"}},
		Params:     []ast.Parameter{{Name: "args", IsRest: true}},
	})
	require.True(t, ok)

	assert.Equal(t, "array", tool.InputSchema.Properties["args"].Type)
	assert.Empty(t, tool.InputSchema.Required)
}

func TestToolArgDescriptionsEnrichParams(t *testing.T) {
	tool, ok := toolFromMetadata("deploy", interp.FunctionMetadata{
		Attributes: []ast.Attribute{
			&ast.DescAttr{Text: "Deploy application"},
			&ast.ArgAttr{Name: "env", Description: "Target environment (staging|prod)"},
		},
		Params: []ast.Parameter{{Name: "env", Type: ast.TypeString}},
	})
	require.True(t, ok)

	assert.Equal(t, "Target environment (staging|prod)", tool.InputSchema.Properties["env"].Description)
}

func TestToolNameSanitized(t *testing.T) {
	tool, ok := toolFromMetadata("docker:build", interp.FunctionMetadata{
		Attributes: []ast.Attribute{&ast.DescAttr{Text: "Build the image"}},
	})
	require.True(t, ok)
	assert.Equal(t, "docker__build", tool.Name)
}

func TestInspectSkipsUndescribedFunctions(t *testing.T) {
	in := load(t, `
# @desc Build the project
build() echo building

helper() echo not exported
`)

	output := Inspect(in)
	require.Len(t, output.Tools, 1)
	assert.Equal(t, "build", output.Tools[0].Name)
}

func TestResolveToolName(t *testing.T) {
	in := load(t, `
# @desc Say hello from node
# @shell node
node:hello() console.log("hi")

plain() echo nope
`)

	name, err := resolveToolName(in, "node__hello")
	require.NoError(t, err)
	assert.Equal(t, "node:hello", name)

	// Undescribed functions are not exported, so not resolvable.
	_, err = resolveToolName(in, "plain")
	require.Error(t, err)

	_, err = resolveToolName(in, "missing")
	require.Error(t, err)
}

func rawArgs(t *testing.T, jsonText string) map[string]json.RawMessage {
	t.Helper()
	var args map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(jsonText), &args))
	return args
}

func TestMapArgumentsByParamOrder(t *testing.T) {
	meta := interp.FunctionMetadata{
		Params: []ast.Parameter{
			{Name: "env", Type: ast.TypeString},
			{Name: "version", Type: ast.TypeString},
		},
	}

	args, err := mapArgumentsToPositional(meta, rawArgs(t, `{"version":"v2","env":"prod"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"prod", "v2"}, args)
}

func TestMapArgumentsByExplicitPosition(t *testing.T) {
	meta := interp.FunctionMetadata{
		Attributes: []ast.Attribute{
			&ast.ArgAttr{Position: 2, Name: "replicas", Type: ast.TypeInteger},
			&ast.ArgAttr{Position: 1, Name: "service", Type: ast.TypeString},
		},
	}

	args, err := mapArgumentsToPositional(meta, rawArgs(t, `{"replicas":3,"service":"web"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"web", "3"}, args)
}

func TestMapArgumentsMissingOptionalLeftEmpty(t *testing.T) {
	meta := interp.FunctionMetadata{
		Params: []ast.Parameter{
			{Name: "env"},
			{Name: "version", Default: str("latest")},
		},
	}

	args, err := mapArgumentsToPositional(meta, rawArgs(t, `{"env":"prod"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"prod", ""}, args)
}

func TestMapArgumentsRestExpandsArray(t *testing.T) {
	meta := interp.FunctionMetadata{
		Params: []ast.Parameter{
			{Name: "container"},
			{Name: "command", IsRest: true},
		},
	}

	args, err := mapArgumentsToPositional(meta, rawArgs(t, `{"container":"db","command":["ls","-la"]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"db", "ls", "-la"}, args)
}

func TestMapArgumentsTypedValidation(t *testing.T) {
	meta := interp.FunctionMetadata{
		Params: []ast.Parameter{{Name: "replicas", Type: ast.TypeInteger}},
	}

	_, err := mapArgumentsToPositional(meta, rawArgs(t, `{"replicas":"many"}`))
	require.Error(t, err)

	args, err := mapArgumentsToPositional(meta, rawArgs(t, `{"replicas":3}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, args)
}

func TestMapArgumentsNoMetadataMeansNoArgs(t *testing.T) {
	args, err := mapArgumentsToPositional(interp.FunctionMetadata{}, rawArgs(t, `{"anything":"x"}`))
	require.NoError(t, err)
	assert.Empty(t, args)
}

func TestToolsListIncludesBuiltins(t *testing.T) {
	in := load(t, `
# @desc Build the project
build() echo building
`)

	s := &server{in: in}
	result, err := s.toolsList(context.Background(), nil)
	require.NoError(t, err)

	output, ok := result.(InspectOutput)
	require.True(t, ok)

	names := make([]string, len(output.Tools))
	for i, tool := range output.Tools {
		names[i] = tool.Name
	}
	assert.Contains(t, names, "build")
	assert.Contains(t, names, "set_cwd")
	assert.Contains(t, names, "get_cwd")
}

func TestInitializeAdvertisesTools(t *testing.T) {
	s := &server{}
	result, err := s.initialize(context.Background(), nil)
	require.NoError(t, err)

	b, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(b), protocolVersion)
	assert.Contains(t, string(b), `"tools"`)
}
