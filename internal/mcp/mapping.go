package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/runfile-sh/run/internal/ast"
	"github.com/runfile-sh/run/internal/interp"
	"github.com/runfile-sh/run/internal/transpile"
	"github.com/runfile-sh/run/internal/typing"
)

// resolveToolName maps a sanitized tool name back to the function name in
// the interpreter's tables. Only functions exported as tools (those with a
// @desc attribute) are resolvable.
func resolveToolName(in *interp.Interpreter, sanitized string) (string, error) {
	for _, name := range in.ListAvailableFunctions() {
		meta, ok := in.Metadata(name)
		if !ok {
			continue
		}
		if !hasDesc(meta.Attributes) {
			continue
		}
		if transpile.SanitizeName(name) == sanitized {
			return name, nil
		}
	}
	return "", fmt.Errorf("tool not found: %s", sanitized)
}

func hasDesc(attributes []ast.Attribute) bool {
	for _, attr := range attributes {
		if _, ok := attr.(*ast.DescAttr); ok {
			return true
		}
	}
	return false
}

// mapArgumentsToPositional flattens a named JSON arguments object into the
// positional string list the function expects. Positions come from explicit
// `@arg N:name` attributes first, then from declared parameter order; a rest
// parameter's JSON array is expanded onto the tail. Typed parameters are
// validated before flattening.
func mapArgumentsToPositional(meta interp.FunctionMetadata, arguments map[string]json.RawMessage) ([]string, error) {
	positionByName := make(map[string]int)
	maxPosition := 0

	for _, attr := range meta.Attributes {
		if a, ok := attr.(*ast.ArgAttr); ok && a.Position > 0 {
			positionByName[a.Name] = a.Position
			if a.Position > maxPosition {
				maxPosition = a.Position
			}
		}
	}

	var restParam *ast.Parameter
	for i, param := range meta.Params {
		if param.IsRest {
			restParam = &meta.Params[i]
			continue
		}
		if _, ok := positionByName[param.Name]; !ok {
			position := i + 1
			positionByName[param.Name] = position
			if position > maxPosition {
				maxPosition = position
			}
		}
	}

	positional := make([]string, maxPosition)
	for name, position := range positionByName {
		raw, ok := arguments[name]
		if !ok {
			continue
		}
		value, err := rawToString(raw)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", name, err)
		}
		if err := validateTyped(meta.Params, name, value); err != nil {
			return nil, err
		}
		positional[position-1] = value
	}

	if restParam != nil {
		if raw, ok := arguments[restParam.Name]; ok {
			var items []json.RawMessage
			if err := json.Unmarshal(raw, &items); err != nil {
				return nil, fmt.Errorf("argument %q: expected an array: %w", restParam.Name, err)
			}
			for _, item := range items {
				value, err := rawToString(item)
				if err != nil {
					return nil, fmt.Errorf("argument %q: %w", restParam.Name, err)
				}
				positional = append(positional, value)
			}
		}
	}

	return positional, nil
}

// validateTyped coerces a value against its declared parameter type, if any.
func validateTyped(params []ast.Parameter, name, value string) error {
	for _, param := range params {
		if param.Name != name || param.IsRest {
			continue
		}
		if _, err := typing.Coerce(value, param.Type); err != nil {
			return fmt.Errorf("argument %q: %w", name, err)
		}
	}
	return nil
}

// rawToString converts one JSON value to the string form passed to the
// shell: strings unquoted, scalars via their literal, composites re-encoded
// as JSON.
func rawToString(raw json.RawMessage) (string, error) {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", err
	}

	switch v := value.(type) {
	case string:
		return v, nil
	case nil:
		return "", nil
	case bool:
		return fmt.Sprintf("%t", v), nil
	case float64:
		// Keep the client's literal; re-formatting floats loses precision.
		return string(raw), nil
	default:
		b, err := json.Marshal(value)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
