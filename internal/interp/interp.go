// Package interp owns the function and variable tables for one run,
// resolves call names through the fallback strategies, binds arguments, and
// drives script generation and execution.
package interp

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/runfile-sh/run/internal/ast"
	"github.com/runfile-sh/run/internal/platform"
	"github.com/runfile-sh/run/internal/shell"
	"github.com/runfile-sh/run/internal/transpile"
)

// FunctionMetadata is everything known about a defined function besides its
// body: attributes, shebang, and the declared parameter list.
type FunctionMetadata struct {
	Attributes []ast.Attribute
	Shebang    string
	Params     []ast.Parameter
}

// Interpreter holds all state for one invocation. Tables are built once by
// Execute and live for the process lifetime; there is no persistence.
type Interpreter struct {
	variables       map[string]string
	simpleFunctions map[string]string
	blockFunctions  map[string][]string
	// functions is the whole-program statement-list table. The current
	// grammar never populates it, but the lookup branch is kept for
	// forward compatibility.
	functions map[string][]ast.Statement
	metadata  map[string]FunctionMetadata

	outputMode      ast.OutputMode
	captured        []ast.CommandOutput
	lastInterpreter string
}

// NotFoundError is returned when every name-resolution strategy failed.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("function '%s' not found", e.Name)
}

// ExitError carries a child process's non-zero exit code up the call chain.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command failed with exit code: %d", e.Code)
}

// New returns an Interpreter with empty tables, streaming output.
func New() *Interpreter {
	return &Interpreter{
		variables:       make(map[string]string),
		simpleFunctions: make(map[string]string),
		blockFunctions:  make(map[string][]string),
		functions:       make(map[string][]ast.Statement),
		metadata:        make(map[string]FunctionMetadata),
		lastInterpreter: "sh",
	}
}

// SetOutputMode selects how command output is handled from here on.
func (in *Interpreter) SetOutputMode(mode ast.OutputMode) {
	in.outputMode = mode
}

// OutputMode returns the current output mode.
func (in *Interpreter) OutputMode() ast.OutputMode {
	return in.outputMode
}

// TakeCapturedOutputs returns and clears the captured output buffer.
func (in *Interpreter) TakeCapturedOutputs() []ast.CommandOutput {
	out := in.captured
	in.captured = nil
	return out
}

// LastInterpreter returns the name of the interpreter most recently used,
// for structured output context.
func (in *Interpreter) LastInterpreter() string {
	return in.lastInterpreter
}

// Execute folds a program into the tables. Definitions mutate tables;
// top-level calls and bare commands execute immediately in program order.
func (in *Interpreter) Execute(ctx context.Context, program *ast.Program) error {
	for _, stmt := range program.Statements {
		if err := in.executeStatement(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) executeStatement(ctx context.Context, stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.Assignment:
		in.variables[s.Name] = s.Value

	case *ast.SimpleFunctionDef:
		// Platform filtering happens at load time: a filtered-out
		// definition is indistinguishable from one never written.
		if platform.MatchesCurrent(s.Attributes) {
			in.simpleFunctions[s.Name] = s.CommandTemplate
			in.metadata[s.Name] = FunctionMetadata{
				Attributes: s.Attributes,
				Params:     s.Params,
			}
		}

	case *ast.BlockFunctionDef:
		if platform.MatchesCurrent(s.Attributes) {
			in.blockFunctions[s.Name] = s.Commands
			in.metadata[s.Name] = FunctionMetadata{
				Attributes: s.Attributes,
				Shebang:    s.Shebang,
				Params:     s.Params,
			}
		}

	case *ast.FunctionCall:
		return in.CallFunctionWithArgs(ctx, s.Name, s.Args)

	case *ast.Command:
		substituted := in.substituteArgs(s.Text, nil)
		return in.executeBareCommand(ctx, substituted)
	}
	return nil
}

// ListAvailableFunctions returns every defined function name, sorted.
func (in *Interpreter) ListAvailableFunctions() []string {
	seen := make(map[string]bool)
	var names []string
	for name := range in.simpleFunctions {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for name := range in.blockFunctions {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for name := range in.functions {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Metadata returns the stored metadata for a defined function.
func (in *Interpreter) Metadata(name string) (FunctionMetadata, bool) {
	m, ok := in.metadata[name]
	return m, ok
}

// Variables returns a copy of the global variable table.
func (in *Interpreter) Variables() map[string]string {
	out := make(map[string]string, len(in.variables))
	for k, v := range in.variables {
		out[k] = v
	}
	return out
}

// CallFunction resolves a requested name through the fallback strategies,
// in order: exact match, subcommand guess ("name:args[0]"), "__" to ":",
// "_" to ":", then the whole-program table. Direct names are tried first so
// they can never be shadowed by subcommand guessing.
func (in *Interpreter) CallFunction(ctx context.Context, name string, args []string) error {
	if done, err := in.tryCall(ctx, name, args); done {
		return err
	}

	if len(args) > 0 {
		nested := name + ":" + args[0]
		if done, err := in.tryCall(ctx, nested, args[1:]); done {
			return err
		}
	}

	// MCP tool names sanitize ":" to "__"; invert that first, then the
	// looser single-underscore convenience form.
	for _, candidate := range []string{
		strings.ReplaceAll(name, "__", ":"),
		strings.ReplaceAll(name, "_", ":"),
	} {
		if candidate == name {
			continue
		}
		if done, err := in.tryCall(ctx, candidate, args); done {
			return err
		}
	}

	if body, ok := in.functions[name]; ok {
		for _, stmt := range body {
			if err := in.executeStatement(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	}

	return &NotFoundError{Name: name}
}

// CallFunctionWithArgs executes a function named by a parenthesized call.
// Only exact-name resolution applies here.
func (in *Interpreter) CallFunctionWithArgs(ctx context.Context, name string, args []string) error {
	if done, err := in.tryCall(ctx, name, args); done {
		return err
	}

	if body, ok := in.functions[name]; ok {
		for _, stmt := range body {
			if err := in.executeStatement(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	}

	return &NotFoundError{Name: name}
}

// tryCall attempts an exact-name lookup in the simple then block tables.
// done is false when the name is not defined in either.
func (in *Interpreter) tryCall(ctx context.Context, name string, args []string) (done bool, err error) {
	if template, ok := in.simpleFunctions[name]; ok {
		meta := in.metadata[name]
		in.checkArgTypes(ctx, name, meta, args)
		return true, in.executeSimpleFunction(ctx, name, template, args, meta)
	}
	if commands, ok := in.blockFunctions[name]; ok {
		meta := in.metadata[name]
		in.checkArgTypes(ctx, name, meta, args)
		return true, in.executeBlockCommands(ctx, name, commands, args, meta)
	}
	return false, nil
}

// InterpreterResolver decides the target interpreter for a function given
// its attributes and shebang. Abstracted so composition logic can be tested
// without a real attribute table.
type InterpreterResolver interface {
	Resolve(name string, attributes []ast.Attribute, shebang string) transpile.Interpreter
}

// attrResolver is the production resolver: @shell attribute wins, then the
// shebang, then the platform default.
type attrResolver struct{}

func (attrResolver) Resolve(_ string, attributes []ast.Attribute, shebang string) transpile.Interpreter {
	for _, attr := range attributes {
		if shellAttr, ok := attr.(*ast.ShellAttr); ok {
			return transpile.FromShellType(shellAttr.Shell)
		}
	}
	if shebang != "" {
		if shellType, ok := shell.ResolveShebangInterpreter(shebang); ok {
			return transpile.FromShellType(shellType)
		}
	}
	return transpile.DefaultInterpreter()
}
