package outputfile

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortOutputUnchanged(t *testing.T) {
	Configure(t.TempDir())
	defer Configure("")

	output := "line1\nline2\nline3"
	result, err := ProcessForMCP(output, "stdout")
	require.NoError(t, err)

	assert.Equal(t, output, result.DisplayOutput)
	assert.Equal(t, len(output), result.TotalBytes)
	assert.Empty(t, result.FilePath)
}

func TestExactlyThresholdUnchanged(t *testing.T) {
	Configure(t.TempDir())
	defer Configure("")

	output := strings.Repeat("x", truncateChars)
	result, err := ProcessForMCP(output, "stdout")
	require.NoError(t, err)

	assert.Equal(t, output, result.DisplayOutput)
	assert.Empty(t, result.FilePath)
}

func TestLongOutputTruncatedToTail(t *testing.T) {
	Configure(t.TempDir())
	defer Configure("")

	var lines []string
	for i := 1; i <= 500; i++ {
		lines = append(lines, fmt.Sprintf("line%d", i))
	}
	output := strings.Join(lines, "\n")
	require.Greater(t, len(output), truncateChars)

	result, err := ProcessForMCP(output, "stdout")
	require.NoError(t, err)

	assert.Equal(t, len(output), result.TotalBytes)
	assert.NotEmpty(t, result.FilePath)
	assert.Contains(t, result.DisplayOutput, fmt.Sprintf("%d bytes", len(output)))
	assert.Contains(t, result.DisplayOutput, "showing last")

	parts := strings.Split(result.DisplayOutput, "\n\n")
	tailPart := parts[len(parts)-1]
	assert.Contains(t, tailPart, "line500")
	assert.NotContains(t, tailPart, "line1\n")
}

func TestSingleLongLineTruncated(t *testing.T) {
	Configure(t.TempDir())
	defer Configure("")

	output := strings.Repeat("A", 5000)
	result, err := ProcessForMCP(output, "stdout")
	require.NoError(t, err)

	assert.Equal(t, 5000, result.TotalBytes)
	assert.NotEmpty(t, result.FilePath)
	assert.Contains(t, result.DisplayOutput, "5000 bytes")

	parts := strings.Split(result.DisplayOutput, "\n\n")
	tailPart := parts[len(parts)-1]
	assert.True(t, strings.HasPrefix(tailPart, "..."))
	assert.LessOrEqual(t, len(tailPart), truncateChars+4)
}

func TestMCPOutputEnabled(t *testing.T) {
	Configure("")
	assert.False(t, MCPOutputEnabled())
	Configure(t.TempDir())
	assert.True(t, MCPOutputEnabled())
	Configure("")
	assert.False(t, MCPOutputEnabled())
}
