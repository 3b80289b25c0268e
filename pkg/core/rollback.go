package core

import (
	"context"
	"fmt"

	"github.com/openenergyoutlook/datamgr/pkg/core/status"
	"github.com/openenergyoutlook/datamgr/pkg/manifest"
	"github.com/openenergyoutlook/datamgr/pkg/model"
	"go.uber.org/zap"
)

// PrepareRollback retargets a dataset to a historical version by
// synthesizing a new entry that reuses the target's content hash and
// production object key verbatim. No payload moves: the referenced
// object is already durable in production, so a rollback is a
// manifest-only mutation finalized by commit resolution alone.
func (m *Manager) PrepareRollback(ctx context.Context, name, targetVersion string) (*PrepareResult, error) {
	ds, err := m.manifest.Get(name)
	if err != nil {
		return nil, err
	}
	latest := ds.Latest()

	var target *model.VersionEntry
	for i := range ds.History {
		if ds.History[i].Version == targetVersion {
			target = &ds.History[i]
			break
		}
	}
	if target == nil {
		return nil, manifest.ErrNotFound.WrapMessage(
			fmt.Sprintf("dataset %s version %s", name, targetVersion))
	}
	if target.SHA256 == latest.SHA256 {
		return nil, status.ErrNoChanges
	}

	version, err := model.NextVersion(latest.Version)
	if err != nil {
		return nil, err
	}
	entry := model.VersionEntry{
		Version:     version,
		Timestamp:   model.NewTimestamp(),
		SHA256:      target.SHA256,
		R2ObjectKey: target.R2ObjectKey,
		Commit:      model.PendingMerge,
		Description: fmt.Sprintf("Rollback to version %s", target.Version),
	}
	if err := m.manifest.AddHistoryEntry(name, entry); err != nil {
		return nil, err
	}
	m.l.Info("rollback staged",
		zap.String("dataset", name),
		zap.String("target", target.Version),
		zap.String("version", version))
	return &PrepareResult{Dataset: name, Entry: entry}, nil
}

// Rollback runs PrepareRollback and pairs it with a commit and push,
// rolling the manifest back on failure.
func (m *Manager) Rollback(ctx context.Context, name, targetVersion, message string) (*PrepareResult, error) {
	res, err := m.PrepareRollback(ctx, name, targetVersion)
	if err != nil {
		return nil, err
	}
	if message == "" {
		message = fmt.Sprintf("Rollback %s to version %s", name, targetVersion)
	}
	if err := m.commitAndPush(ctx, message, nil); err != nil {
		return nil, err
	}
	return res, nil
}
