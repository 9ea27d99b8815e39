package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer

	Table(&buf, []string{"Node", "Distance"}, [][]string{
		{"0", "0"},
		{"12", "141.42"},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "  Node  Distance", lines[0])
	assert.Equal(t, "  0     0", lines[2])
	assert.Equal(t, "  12    141.42", lines[3])
}

func TestTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	Table(&buf, []string{"a"}, nil)
	assert.Empty(t, buf.String())
}

func TestVisible(t *testing.T) {
	assert.Equal(t, 3, visible("abc"))
	assert.Equal(t, 3, visible("\x1b[32mabc\x1b[0m"))
	assert.Equal(t, 1, visible("✓"))
}
