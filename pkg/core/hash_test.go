package core

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "payload", []byte("H1"), 0644))

	got, err := HashFile(fs, "payload")
	require.NoError(t, err)
	assert.Equal(t, testHash("H1"), got)

	_, err = HashFile(fs, "missing")
	assert.Error(t, err)
}
