package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveOutput(t *testing.T) {
	dir := t.TempDir()

	assert.Equal(t, "energy.sqlite", resolveOutput("", "energy.sqlite"))

	assert.Equal(t, filepath.Join(dir, "energy.sqlite"),
		resolveOutput(dir, "energy.sqlite"))

	file := filepath.Join(dir, "renamed.sqlite")
	assert.Equal(t, file, resolveOutput(file, "energy.sqlite"))
}
