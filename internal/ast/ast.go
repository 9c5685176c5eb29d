// Package ast defines the abstract syntax tree for Runfile programs, plus
// the output records produced when functions are executed.
package ast

// Program is an ordered sequence of statements. Order matters: later
// definitions of the same name override earlier ones.
type Program struct {
	Statements []Statement
}

// Statement is one top-level item of a Runfile.
type Statement interface {
	stmt()
}

// Assignment is a top-level `NAME=value` variable assignment.
type Assignment struct {
	Name  string
	Value string
}

// SimpleFunctionDef is a single-command-template function, e.g.
// `build() cargo build`.
type SimpleFunctionDef struct {
	Name            string
	Params          []Parameter
	CommandTemplate string
	Attributes      []Attribute
}

// BlockFunctionDef is a brace-delimited function whose body is one or more
// command lines.
type BlockFunctionDef struct {
	Name       string
	Params     []Parameter
	Commands   []string
	Attributes []Attribute
	// Shebang is the interpreter line found on the first non-blank,
	// non-comment line of the body, without the leading "#!". Empty if none.
	Shebang string
}

// FunctionCall is a parenthesized invocation, e.g. `deploy("prod", v2)`.
type FunctionCall struct {
	Name string
	Args []string
}

// Command is a bare top-level command executed in program order.
type Command struct {
	Text string
}

func (*Assignment) stmt()        {}
func (*SimpleFunctionDef) stmt() {}
func (*BlockFunctionDef) stmt()  {}
func (*FunctionCall) stmt()      {}
func (*Command) stmt()           {}

// Parameter is one declared function parameter from a signature like
// `deploy(env, version: str = "latest", ...rest)`.
type Parameter struct {
	Name    string
	Type    ArgType
	Default *string
	IsRest  bool
}

// ArgType is the declared type of a parameter or @arg attribute.
type ArgType int

const (
	TypeString ArgType = iota
	TypeInteger
	TypeBoolean
	TypeFloat
	TypeObject
)

// ParseArgType maps a type annotation token to an ArgType. Unknown tokens
// default to string, matching the permissive attribute grammar.
func ParseArgType(s string) ArgType {
	switch s {
	case "int", "integer":
		return TypeInteger
	case "bool", "boolean":
		return TypeBoolean
	case "float", "number":
		return TypeFloat
	case "object", "dict":
		return TypeObject
	default:
		return TypeString
	}
}

// JSONType returns the JSON schema type string for the arg type.
func (t ArgType) JSONType() string {
	switch t {
	case TypeInteger:
		return "integer"
	case TypeBoolean:
		return "boolean"
	case TypeFloat:
		return "number"
	case TypeObject:
		return "object"
	default:
		return "string"
	}
}

// Attribute is one `# @...` annotation attached to a function definition.
type Attribute interface {
	attr()
}

// OsAttr restricts a definition to a platform. Multiple OsAttrs on one
// definition form an OR-set.
type OsAttr struct {
	Platform OsPlatform
}

// ShellAttr selects the interpreter for a definition.
type ShellAttr struct {
	Shell ShellType
}

// DescAttr is a human-readable description, also used as the MCP tool
// description.
type DescAttr struct {
	Text string
}

// ArgAttr documents one positional argument: `# @arg 1:name type desc` or
// the hybrid `# @arg name desc` form (Position 0).
type ArgAttr struct {
	Position    int
	Name        string
	Type        ArgType
	Description string
}

func (*OsAttr) attr()    {}
func (*ShellAttr) attr() {}
func (*DescAttr) attr()  {}
func (*ArgAttr) attr()   {}

// OsPlatform is the platform named by an @os attribute.
type OsPlatform int

const (
	OsWindows OsPlatform = iota
	OsLinux
	OsMacOS
	// OsUnix matches both Linux and macOS.
	OsUnix
)

// ParseOsPlatform maps an @os token to a platform. ok is false for unknown
// tokens.
func ParseOsPlatform(s string) (OsPlatform, bool) {
	switch s {
	case "windows":
		return OsWindows, true
	case "linux":
		return OsLinux, true
	case "macos":
		return OsMacOS, true
	case "unix":
		return OsUnix, true
	default:
		return 0, false
	}
}

// ShellType is the interpreter named by an @shell attribute or a shebang.
type ShellType int

const (
	ShellSh ShellType = iota
	ShellBash
	ShellPwsh
	ShellPython
	ShellPython3
	ShellNode
	ShellRuby
)

// ParseShellType maps an @shell token to a ShellType. ok is false for
// unknown tokens.
func ParseShellType(s string) (ShellType, bool) {
	switch s {
	case "sh":
		return ShellSh, true
	case "bash":
		return ShellBash, true
	case "pwsh":
		return ShellPwsh, true
	case "python":
		return ShellPython, true
	case "python3":
		return ShellPython3, true
	case "node":
		return ShellNode, true
	case "ruby":
		return ShellRuby, true
	default:
		return 0, false
	}
}

// OutputMode selects how command output is handled during execution.
type OutputMode int

const (
	// ModeStream inherits stdio and streams directly to the terminal.
	ModeStream OutputMode = iota
	// ModeCapture collects output while echoing it, and fails the call
	// chain on a non-zero exit.
	ModeCapture
	// ModeStructured collects output silently; the caller formats the
	// aggregate afterwards.
	ModeStructured
)
