package parser

import (
	"strings"

	"github.com/runfile-sh/run/internal/ast"
)

// parseParams parses a signature's parameter list: `name`, `name: type`,
// `name = default`, `name: type = default`, `...rest`. The rest parameter
// must come last.
func (p *parser) parseParams(line int, inner string) ([]ast.Parameter, error) {
	pieces := splitTopLevelCommas(inner)
	var params []ast.Parameter

	for idx, piece := range pieces {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}

		if rest, ok := strings.CutPrefix(piece, "..."); ok {
			if idx != len(pieces)-1 {
				col := strings.Index(p.lines[line], piece)
				return nil, p.errorAt(line, col, "rest parameter must be the last parameter",
					"Move `..."+rest+"` to the end of the parameter list.")
			}
			params = append(params, ast.Parameter{Name: strings.TrimSpace(rest), IsRest: true})
			continue
		}

		param := ast.Parameter{Type: ast.TypeString}

		// Split off the default first so a `=` inside it is untouched.
		decl := piece
		if eq := strings.IndexByte(piece, '='); eq >= 0 {
			decl = strings.TrimSpace(piece[:eq])
			def := stripQuotes(piece[eq+1:])
			param.Default = &def
		}

		if colon := strings.IndexByte(decl, ':'); colon >= 0 {
			param.Name = strings.TrimSpace(decl[:colon])
			param.Type = ast.ParseArgType(strings.TrimSpace(decl[colon+1:]))
		} else {
			param.Name = decl
		}

		if !isIdentifier(param.Name) {
			col := strings.Index(p.lines[line], piece)
			return nil, p.errorAt(line, col, "expected parameter name",
				"Parameters look like `name`, `name: type`, or `...rest`. Separate multiple parameters with commas.")
		}

		params = append(params, param)
	}

	return params, nil
}

// parseCallArgs parses the argument list of a parenthesized call. Double
// quotes group words and are stripped from the stored value.
func parseCallArgs(inner string) []string {
	var args []string
	for _, piece := range splitTopLevelCommas(inner) {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		args = append(args, strings.Trim(piece, `"`))
	}
	return args
}

// splitTopLevelCommas splits on commas that are not inside quotes, so a
// quoted default like "a,b,c" survives as one piece.
func splitTopLevelCommas(s string) []string {
	var pieces []string
	var current strings.Builder
	var inSingle, inDouble bool

	for _, c := range s {
		switch {
		case inSingle:
			current.WriteRune(c)
			if c == '\'' {
				inSingle = false
			}
		case inDouble:
			current.WriteRune(c)
			if c == '"' {
				inDouble = false
			}
		case c == '\'':
			inSingle = true
			current.WriteRune(c)
		case c == '"':
			inDouble = true
			current.WriteRune(c)
		case c == ',':
			pieces = append(pieces, current.String())
			current.Reset()
		default:
			current.WriteRune(c)
		}
	}
	pieces = append(pieces, current.String())
	return pieces
}
