package core

import (
	"context"
	"fmt"

	"github.com/openenergyoutlook/datamgr/pkg/core/status"
	"github.com/openenergyoutlook/datamgr/pkg/model"
	"go.uber.org/zap"
)

// Pull downloads one version of a dataset and verifies its content
// hash against the manifest. A corrupted download is removed and
// reported as status.ErrIntegrity. The version token "latest" resolves
// to the newest entry.
func (m *Manager) Pull(ctx context.Context, name, version, output string) (*model.VersionEntry, error) {
	entry, err := m.manifest.GetVersionEntry(name, version)
	if err != nil {
		return nil, err
	}

	src, key := m.sourceFor(entry)
	m.l.Info("pulling dataset version",
		zap.String("dataset", name),
		zap.String("version", entry.Version),
		zap.String("key", key),
		zap.String("output", output))
	if err := m.download(ctx, src, key, output); err != nil {
		return nil, err
	}

	got, err := HashFile(m.fs, output)
	if err != nil {
		return nil, err
	}
	if got != entry.SHA256 {
		_ = m.fs.Remove(output)
		return nil, status.ErrIntegrity.WrapMessage(
			fmt.Sprintf("expected sha256 %s, got %s; removed %s", entry.SHA256, got, output))
	}
	return entry, nil
}
