package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStem(t *testing.T) {
	assert.Equal(t, "energy", Stem("energy.sqlite"))
	assert.Equal(t, "plain", Stem("plain"))
	assert.Equal(t, "a.b", Stem("a.b.sqlite"))
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey("energy.sqlite", "v3", "deadbeef")
	assert.Equal(t, "energy/v3-deadbeef.sqlite", key)
}

func TestStagingObjectKey(t *testing.T) {
	assert.Equal(t, "staging-uploads/deadbeef.sqlite", StagingObjectKey("deadbeef"))
}

func TestDiffArtifactPath(t *testing.T) {
	assert.Equal(t,
		"diffs/energy.sqlite/diff-v2-to-v3.diff",
		DiffArtifactPath("energy.sqlite", "v2", "v3"))
}
