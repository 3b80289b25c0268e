package core

import (
	"context"
	"fmt"

	"github.com/openenergyoutlook/datamgr/pkg/core/status"
	"go.uber.org/zap"
)

// MarkDatasetForDeletion flags a whole dataset for removal by the
// deletion reconciler and pairs the mutation with a commit and push.
// A dataset with entries still awaiting publication cannot be marked:
// publish or roll them back first.
func (m *Manager) MarkDatasetForDeletion(ctx context.Context, name, message string) error {
	ds, err := m.manifest.Get(name)
	if err != nil {
		return err
	}
	for i := range ds.History {
		if ds.History[i].Pending() {
			return status.ErrPendingEntry.WrapMessage(
				fmt.Sprintf("dataset %s version %s", name, ds.History[i].Version))
		}
	}

	found, err := m.manifest.MarkForDeletion(name)
	if err != nil {
		return err
	}
	if !found {
		// Get above succeeded, so this only happens on a concurrent edit
		return fmt.Errorf("dataset %s disappeared while marking for deletion", name)
	}
	m.l.Info("dataset marked for deletion", zap.String("dataset", name))

	if message == "" {
		message = fmt.Sprintf("Mark %s for deletion", name)
	}
	return m.commitAndPush(ctx, message, nil)
}
