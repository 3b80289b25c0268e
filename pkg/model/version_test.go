package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	n, err := ParseVersion("v1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = ParseVersion("v42")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	for _, bad := range []string{"", "1", "vv1", "v0", "v-3", "vabc", "V1"} {
		_, err := ParseVersion(bad)
		assert.Error(t, err, "token %q", bad)
	}
}

func TestNextVersion(t *testing.T) {
	next, err := NextVersion(FirstVersion)
	require.NoError(t, err)
	assert.Equal(t, "v2", next)

	next, err = NextVersion("v9")
	require.NoError(t, err)
	assert.Equal(t, "v10", next)

	_, err = NextVersion("garbage")
	assert.Error(t, err)
}

func TestFormatVersionRoundTrip(t *testing.T) {
	for _, n := range []int{1, 2, 10, 1234} {
		got, err := ParseVersion(FormatVersion(n))
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}
}
