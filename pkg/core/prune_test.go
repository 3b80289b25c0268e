package core

import (
	"context"
	"testing"

	"github.com/openenergyoutlook/datamgr/pkg/core/status"
	"github.com/openenergyoutlook/datamgr/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanPrune(t *testing.T) {
	f := newFixture(t)
	f.seedVersion(t, "energy.sqlite", "v1", "H1")
	f.seedVersion(t, "energy.sqlite", "v2", "H2")
	f.seedVersion(t, "energy.sqlite", "v3", "H3")

	doomed, err := f.m.PlanPrune("energy.sqlite", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"v2", "v1"}, doomed)

	doomed, err = f.m.PlanPrune("energy.sqlite", 3)
	require.NoError(t, err)
	assert.Empty(t, doomed)

	_, err = f.m.PlanPrune("energy.sqlite", 0)
	assert.Error(t, err)
}

func TestPruneVersions(t *testing.T) {
	f := newFixture(t)
	f.seedVersion(t, "energy.sqlite", "v1", "H1")
	f.seedVersion(t, "energy.sqlite", "v2", "H2")
	f.seedVersion(t, "energy.sqlite", "v3", "H3")

	marked, err := f.m.PruneVersions(context.Background(), "energy.sqlite", 1, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"v2", "v1"}, marked)

	ds, err := f.mf.Get("energy.sqlite")
	require.NoError(t, err)
	assert.False(t, ds.History[0].MarkedForDeletion())
	assert.True(t, ds.History[1].MarkedForDeletion())
	assert.True(t, ds.History[2].MarkedForDeletion())

	assert.Equal(t, []string{"Prune energy.sqlite, keep 1 most recent versions"}, f.repo.messages)
}

func TestPruneNothingToDo(t *testing.T) {
	f := newFixture(t)
	f.seedVersion(t, "energy.sqlite", "v1", "H1")

	marked, err := f.m.PruneVersions(context.Background(), "energy.sqlite", 1, "")
	require.NoError(t, err)
	assert.Empty(t, marked)
	assert.Empty(t, f.repo.ops)
}

func TestPruneRefusesPendingEntries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedVersion(t, "energy.sqlite", "v1", "H1")
	f.writeFile(t, "next.sqlite", "H2")
	_, err := f.m.Prepare(ctx, "energy.sqlite", "next.sqlite")
	require.NoError(t, err)

	// pending v2 is the newest entry and stays in the keep window, so
	// only finalized v1 is doomed and the plan succeeds
	doomed, err := f.m.PlanPrune("energy.sqlite", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"v1"}, doomed)

	// a third version pushes pending v2 beyond the keep window
	f.writeFile(t, "third.sqlite", "H3")
	_, err = f.m.Prepare(ctx, "energy.sqlite", "third.sqlite")
	require.NoError(t, err)
	_, err = f.m.PlanPrune("energy.sqlite", 1)
	assert.True(t, errors.Is(err, status.ErrPendingEntry))
}

func TestMarkDatasetForDeletion(t *testing.T) {
	f := newFixture(t)
	f.seedVersion(t, "energy.sqlite", "v1", "H1")

	require.NoError(t, f.m.MarkDatasetForDeletion(context.Background(), "energy.sqlite", ""))

	ds, err := f.mf.Get("energy.sqlite")
	require.NoError(t, err)
	assert.True(t, ds.MarkedForDeletion())
	assert.Equal(t, []string{"Mark energy.sqlite for deletion"}, f.repo.messages)
}

func TestMarkDatasetForDeletionRefusesPending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedVersion(t, "energy.sqlite", "v1", "H1")
	f.writeFile(t, "next.sqlite", "H2")
	_, err := f.m.Prepare(ctx, "energy.sqlite", "next.sqlite")
	require.NoError(t, err)

	err = f.m.MarkDatasetForDeletion(ctx, "energy.sqlite", "")
	assert.True(t, errors.Is(err, status.ErrPendingEntry))

	ds, err := f.mf.Get("energy.sqlite")
	require.NoError(t, err)
	assert.False(t, ds.MarkedForDeletion())
}
