package core

import (
	"context"
	"fmt"

	"github.com/openenergyoutlook/datamgr/pkg/core/status"
	"go.uber.org/zap"
)

// PlanPrune lists the versions that pruning with the given keep count
// would mark for deletion: everything beyond the keep newest entries,
// excluding entries already marked. The caller presents this set for
// confirmation before mutating anything.
func (m *Manager) PlanPrune(name string, keep int) ([]string, error) {
	if keep < 1 {
		return nil, fmt.Errorf("keep count must be at least 1, got %d", keep)
	}
	ds, err := m.manifest.Get(name)
	if err != nil {
		return nil, err
	}
	if len(ds.History) <= keep {
		return nil, nil
	}
	var doomed []string
	for i := keep; i < len(ds.History); i++ {
		e := &ds.History[i]
		if e.Pending() {
			return nil, status.ErrPendingEntry.WrapMessage(
				fmt.Sprintf("dataset %s version %s", name, e.Version))
		}
		if e.MarkedForDeletion() {
			continue
		}
		doomed = append(doomed, e.Version)
	}
	return doomed, nil
}

// PruneVersions marks everything beyond the keep newest versions for
// deletion and pairs the mutation with a commit and push. The actual
// object removal happens later, in the deletion reconciler.
func (m *Manager) PruneVersions(ctx context.Context, name string, keep int, message string) ([]string, error) {
	doomed, err := m.PlanPrune(name, keep)
	if err != nil {
		return nil, err
	}
	if len(doomed) == 0 {
		return nil, nil
	}
	if err := m.manifest.MarkVersionsForDeletion(name, doomed); err != nil {
		return nil, err
	}
	m.l.Info("versions marked for deletion",
		zap.String("dataset", name), zap.Strings("versions", doomed))

	if message == "" {
		message = fmt.Sprintf("Prune %s, keep %d most recent versions", name, keep)
	}
	if err := m.commitAndPush(ctx, message, nil); err != nil {
		return nil, err
	}
	return doomed, nil
}
