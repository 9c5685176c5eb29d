// Package typing maps declared Runfile parameter types onto the cty type
// system and coerces raw string arguments into typed values. The MCP layer
// uses it to validate tool arguments before they are flattened back to
// positional strings, and the transpiler uses it to decide per-type argv
// coercion in generated polyglot preambles.
package typing

import (
	"fmt"
	"strconv"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"

	"github.com/runfile-sh/run/internal/ast"
)

// CtyType returns the cty type corresponding to a declared parameter type.
// Object parameters are dynamically typed: their shape comes from the JSON
// payload, not from the declaration.
func CtyType(t ast.ArgType) cty.Type {
	switch t {
	case ast.TypeInteger, ast.TypeFloat:
		return cty.Number
	case ast.TypeBoolean:
		return cty.Bool
	case ast.TypeObject:
		return cty.DynamicPseudoType
	default:
		return cty.String
	}
}

// JSONType returns the JSON schema type name for a declared parameter type.
func JSONType(t ast.ArgType) string {
	switch t {
	case ast.TypeInteger:
		return "integer"
	case ast.TypeFloat:
		return "number"
	case ast.TypeBoolean:
		return "boolean"
	case ast.TypeObject:
		return "object"
	default:
		return "string"
	}
}

// Coerce validates and converts a raw string argument to a cty value of the
// declared type. The returned value is only used for validation and schema
// purposes; execution always passes the original string through to the
// generated script.
func Coerce(raw string, t ast.ArgType) (cty.Value, error) {
	switch t {
	case ast.TypeInteger:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return cty.NilVal, fmt.Errorf("expected an integer, got %q", raw)
		}
		return cty.NumberIntVal(n), nil
	case ast.TypeFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return cty.NilVal, fmt.Errorf("expected a number, got %q", raw)
		}
		return cty.NumberFloatVal(f), nil
	case ast.TypeBoolean:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return cty.NilVal, fmt.Errorf("expected a boolean, got %q", raw)
		}
		return cty.BoolVal(b), nil
	case ast.TypeObject:
		v, err := ctyjson.Unmarshal([]byte(raw), cty.DynamicPseudoType)
		if err != nil {
			return cty.NilVal, fmt.Errorf("expected a JSON object, got %q: %w", raw, err)
		}
		return v, nil
	default:
		return cty.StringVal(raw), nil
	}
}

// ValidateArgs checks each provided argument against the declared parameter
// list. Rest parameters accept any remaining arguments unchecked (they are
// forwarded verbatim). Missing arguments are not an error here; defaults and
// arity warnings are the interpreter's concern.
func ValidateArgs(params []ast.Parameter, args []string) error {
	for i, p := range params {
		if p.IsRest || i >= len(args) {
			break
		}
		if _, err := Coerce(args[i], p.Type); err != nil {
			return fmt.Errorf("argument %q: %w", p.Name, err)
		}
	}
	return nil
}
