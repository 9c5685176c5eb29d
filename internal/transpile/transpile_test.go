package transpile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToShellSimpleFunction(t *testing.T) {
	result := ToShell("build", "cargo build", false)
	assert.Equal(t, "build() {\n    cargo build\n}", result)
}

func TestToShellBlockFunction(t *testing.T) {
	result := ToShell("ci", "cargo build --release\ncargo test", true)
	assert.Equal(t, "ci() {\n    cargo build --release\n    cargo test\n}", result)
}

func TestToShellColonName(t *testing.T) {
	result := ToShell("docker:build", "docker build .", false)
	assert.Equal(t, "docker__build() {\n    docker build .\n}", result)
}

func TestToPwshSimpleFunction(t *testing.T) {
	result := ToPwsh("build", "cargo build", false)
	assert.Equal(t, "function build {\n    cargo build\n}", result)
}

func TestToPwshBlockFunction(t *testing.T) {
	result := ToPwsh("ci", "cargo build\ncargo test", true)
	assert.Equal(t, "function ci {\n    cargo build\n    cargo test\n}", result)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "docker__build", SanitizeName("docker:build"))
	assert.Equal(t, "simple", SanitizeName("simple"))
	assert.Equal(t, "multi__level__name", SanitizeName("multi:level:name"))
}

func TestIndentKeepsBlankLinesEmpty(t *testing.T) {
	assert.Equal(t, "    line1\n\n    line3", indent("line1\n\nline3", "    "))
}

func TestRewriteCallSites(t *testing.T) {
	siblings := []string{"docker:build", "docker:push"}

	assert.Equal(t, "docker__build\ndocker__push",
		RewriteCallSites("docker:build\ndocker:push", siblings))

	assert.Equal(t, "docker__build --tag latest\ndocker__push myapp",
		RewriteCallSites("docker:build --tag latest\ndocker:push myapp", siblings))
}

func TestRewriteNoPartialMatch(t *testing.T) {
	result := RewriteCallSites("my_docker:build_func", []string{"docker:build"})
	assert.Equal(t, "my_docker:build_func", result)
}

func TestRewriteNoColonNamesUntouched(t *testing.T) {
	body := "build\ntest\ndeploy"
	result := RewriteCallSites(body, []string{"build", "test", "deploy"})
	assert.Equal(t, body, result)
}

func TestRewriteArgumentsUntouched(t *testing.T) {
	// Sibling names in argument position are not calls. `pnpm test:unit`
	// must keep its script name.
	result := RewriteCallSites(`pnpm test:unit "$@"`, []string{"test:unit"})
	assert.Equal(t, `pnpm test:unit "$@"`, result)
}

func TestRewriteCommandPositionVsArgument(t *testing.T) {
	result := RewriteCallSites("test:unit\npnpm test:unit \"$@\"", []string{"test:unit"})
	assert.Equal(t, "test__unit\npnpm test:unit \"$@\"", result)
}

func TestRewriteEchoArgumentUntouched(t *testing.T) {
	result := RewriteCallSites("echo \"running test:build\"\ntest:build", []string{"test:build"})
	assert.Equal(t, "echo \"running test:build\"\ntest__build", result)
}

func TestRewriteAfterSeparators(t *testing.T) {
	siblings := []string{"test:unit", "test:lint"}

	assert.Equal(t, "test__unit && test__lint",
		RewriteCallSites("test:unit && test:lint", siblings))
	assert.Equal(t, "test__unit || test__lint",
		RewriteCallSites("test:unit || test:lint", siblings))
	assert.Equal(t, "test__unit; test__lint",
		RewriteCallSites("test:unit; test:lint", siblings))
	assert.Equal(t, "(test__unit)",
		RewriteCallSites("(test:unit)", siblings))
}

func TestRewriteIndentedCalls(t *testing.T) {
	result := RewriteCallSites("    test:unit\n    test:lint", []string{"test:unit", "test:lint"})
	assert.Equal(t, "    test__unit\n    test__lint", result)
}

func TestRewriteLongestMatchFirst(t *testing.T) {
	result := RewriteCallSites("docker:build:arm", []string{"docker:build", "docker:build:arm"})
	assert.Equal(t, "docker__build__arm", result)
}

func TestCompatibilityShAndBash(t *testing.T) {
	assert.True(t, Sh.CompatibleWith(Bash))
	assert.True(t, Bash.CompatibleWith(Sh))
	assert.True(t, Sh.CompatibleWith(Sh))
}

func TestCompatibilityPwshIsolated(t *testing.T) {
	assert.True(t, Pwsh.CompatibleWith(Pwsh))
	assert.False(t, Pwsh.CompatibleWith(Sh))
	assert.False(t, Sh.CompatibleWith(Pwsh))
}

func TestCompatibilityPolyglot(t *testing.T) {
	assert.True(t, Python.CompatibleWith(Python3))
	assert.True(t, Python3.CompatibleWith(Python))
	assert.False(t, Python.CompatibleWith(Node))
	assert.False(t, Python.CompatibleWith(Ruby))
	assert.False(t, Node.CompatibleWith(Ruby))
	assert.False(t, Ruby.CompatibleWith(Sh))
	assert.True(t, Node.CompatibleWith(Node))
	assert.True(t, Ruby.CompatibleWith(Ruby))
}

func TestIsPolyglot(t *testing.T) {
	assert.False(t, Sh.IsPolyglot())
	assert.False(t, Bash.IsPolyglot())
	assert.False(t, Pwsh.IsPolyglot())
	assert.True(t, Python.IsPolyglot())
	assert.True(t, Python3.IsPolyglot())
	assert.True(t, Node.IsPolyglot())
	assert.True(t, Ruby.IsPolyglot())
}
