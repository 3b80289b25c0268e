package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyFullAccess(t *testing.T) {
	f := newFixture(t)

	reports := f.m.Verify(context.Background())
	require.Len(t, reports, 2)
	for _, r := range reports {
		assert.True(t, r.Exists, r.Bucket)
		assert.True(t, r.FullAccess(), r.Bucket)
		assert.Equal(t, "Full access verified.", r.Message)
	}

	// the probe objects never survive the check
	assert.Empty(t, f.stagingKeys(t))
	keys, err := f.production.Keys(context.Background())
	require.NoError(t, err)
	assert.Empty(t, keys)
}
