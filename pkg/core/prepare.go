package core

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/docker/go-units"
	"github.com/openenergyoutlook/datamgr/pkg/core/status"
	"github.com/openenergyoutlook/datamgr/pkg/errors"
	"github.com/openenergyoutlook/datamgr/pkg/manifest"
	"github.com/openenergyoutlook/datamgr/pkg/model"
	"github.com/openenergyoutlook/datamgr/pkg/storage"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// PrepareResult reports the outcome of a prepare operation: the dataset
// touched, the pending entry now recorded in the manifest, and the path
// of the stored diff artifact, if any.
type PrepareResult struct {
	Dataset  string
	Entry    model.VersionEntry
	DiffPath string

	// cleanup undoes the object-store and working-tree side effects of
	// the prepare, for compensation when a later step fails.
	cleanup func(context.Context)
}

// PrepareCreate stages the first version of a brand-new dataset: the
// payload is uploaded to the staging bucket under its content-addressed
// key and a v1 entry awaiting merge is recorded in the manifest.
func (m *Manager) PrepareCreate(ctx context.Context, name, file string) (*PrepareResult, error) {
	if _, err := m.manifest.Get(name); err == nil {
		return nil, status.ErrExists.WrapMessage(name)
	} else if !errors.Is(err, manifest.ErrNotFound) {
		return nil, err
	}

	hash, err := HashFile(m.fs, file)
	if err != nil {
		return nil, err
	}
	entry := model.VersionEntry{
		Version:     model.FirstVersion,
		Timestamp:   model.NewTimestamp(),
		SHA256:      hash,
		R2ObjectKey: model.ObjectKey(name, model.FirstVersion, hash),
		Commit:      model.PendingMerge,
		Description: model.PendingMerge,
		StagingKey:  model.StagingObjectKey(hash),
	}

	if err := m.uploadStaging(ctx, file, entry.StagingKey); err != nil {
		return nil, err
	}
	cleanup := func(cctx context.Context) {
		if e := m.staging.Delete(cctx, entry.StagingKey); e != nil {
			m.l.Warn("could not delete staged object during compensation",
				zap.String("key", entry.StagingKey), zap.Error(e))
		}
	}

	ds := model.Dataset{
		FileName:      name,
		LatestVersion: entry.Version,
		History:       []model.VersionEntry{entry},
	}
	if err := m.manifest.AddNewDataset(ds); err != nil {
		cleanup(ctx)
		return nil, err
	}
	m.l.Info("dataset staged for creation",
		zap.String("dataset", name), zap.String("version", entry.Version))
	return &PrepareResult{Dataset: name, Entry: entry, cleanup: cleanup}, nil
}

// PrepareUpdate stages a new version of an existing dataset. Content
// identical to the current latest version (by hash) is a no-op reported
// as status.ErrNoChanges with zero mutation.
func (m *Manager) PrepareUpdate(ctx context.Context, name, file string) (*PrepareResult, error) {
	ds, err := m.manifest.Get(name)
	if err != nil {
		return nil, err
	}
	latest := ds.Latest()

	hash, err := HashFile(m.fs, file)
	if err != nil {
		return nil, err
	}
	if hash == latest.SHA256 {
		return nil, status.ErrNoChanges
	}
	version, err := model.NextVersion(latest.Version)
	if err != nil {
		return nil, err
	}

	diffPath, diffRef := m.storeDiff(ctx, name, latest, file, version)

	entry := model.VersionEntry{
		Version:          version,
		Timestamp:        model.NewTimestamp(),
		SHA256:           hash,
		R2ObjectKey:      model.ObjectKey(name, version, hash),
		DiffFromPrevious: diffRef,
		Commit:           model.PendingMerge,
		Description:      model.PendingMerge,
		StagingKey:       model.StagingObjectKey(hash),
	}

	if err := m.uploadStaging(ctx, file, entry.StagingKey); err != nil {
		if diffPath != "" {
			_ = m.fs.Remove(diffPath)
		}
		return nil, err
	}
	cleanup := func(cctx context.Context) {
		if e := m.staging.Delete(cctx, entry.StagingKey); e != nil {
			m.l.Warn("could not delete staged object during compensation",
				zap.String("key", entry.StagingKey), zap.Error(e))
		}
		if diffPath != "" {
			_ = m.fs.Remove(diffPath)
		}
	}

	if err := m.manifest.AddHistoryEntry(name, entry); err != nil {
		cleanup(ctx)
		return nil, err
	}
	m.l.Info("dataset staged for update",
		zap.String("dataset", name), zap.String("version", version))
	return &PrepareResult{Dataset: name, Entry: entry, DiffPath: diffPath, cleanup: cleanup}, nil
}

// Prepare stages a new version for an existing dataset, or the first
// version of a brand-new one, without committing anything: the operator
// reviews and merges the manifest change through their own workflow.
func (m *Manager) Prepare(ctx context.Context, name, file string) (*PrepareResult, error) {
	_, err := m.manifest.Get(name)
	switch {
	case err == nil:
		return m.PrepareUpdate(ctx, name, file)
	case errors.Is(err, manifest.ErrNotFound):
		return m.PrepareCreate(ctx, name, file)
	default:
		return nil, err
	}
}

// Create runs PrepareCreate and pairs it with a commit and push,
// rolling everything back on failure.
func (m *Manager) Create(ctx context.Context, name, file, message string) (*PrepareResult, error) {
	res, err := m.PrepareCreate(ctx, name, file)
	if err != nil {
		return nil, err
	}
	if message == "" {
		message = fmt.Sprintf("feat: add dataset '%s'", name)
	}
	if err := m.commitAndPush(ctx, message, res.cleanup); err != nil {
		return nil, err
	}
	return res, nil
}

// Update runs PrepareUpdate and pairs it with a commit and push,
// rolling everything back on failure.
func (m *Manager) Update(ctx context.Context, name, file, message string) (*PrepareResult, error) {
	res, err := m.PrepareUpdate(ctx, name, file)
	if err != nil {
		return nil, err
	}
	if message == "" {
		message = fmt.Sprintf("Update %s to %s", name, res.Entry.Version)
	}
	if err := m.commitAndPush(ctx, message, res.cleanup); err != nil {
		return nil, err
	}
	return res, nil
}

// storeDiff computes the diff between the previous payload and the new
// file and persists it in the working tree when it fits the configured
// line threshold. Diff generation is best effort: failures and
// oversized diffs omit the artifact without failing the update.
func (m *Manager) storeDiff(ctx context.Context, name string, latest *model.VersionEntry, newFile, version string) (string, *string) {
	if m.differ == nil {
		return "", nil
	}
	tmpDir, err := afero.TempDir(m.fs, "", "datamgr-diff")
	if err != nil {
		m.l.Warn("diff omitted, no temp dir", zap.Error(err))
		return "", nil
	}
	defer func() { _ = m.fs.RemoveAll(tmpDir) }()

	prev := filepath.Join(tmpDir, "prev.sqlite")
	src, key := m.sourceFor(latest)
	if err := m.download(ctx, src, key, prev); err != nil {
		m.l.Warn("diff omitted, cannot fetch previous version",
			zap.String("key", key), zap.Error(err))
		return "", nil
	}
	res, err := m.differ.Diff(ctx, prev, newFile)
	if err != nil {
		m.l.Warn("diff omitted, generation failed", zap.Error(err))
		return "", nil
	}
	if res.LineCount() > m.maxDiffLines {
		m.l.Info("diff too large, omitted",
			zap.Int("lines", res.LineCount()), zap.Int("max", m.maxDiffLines))
		return "", nil
	}

	pth := model.DiffArtifactPath(name, latest.Version, version)
	if err := m.fs.MkdirAll(filepath.Dir(pth), 0755); err != nil {
		m.l.Warn("diff omitted, cannot create artifact directory", zap.Error(err))
		return "", nil
	}
	if err := afero.WriteFile(m.fs, pth, []byte(res.Text), 0644); err != nil {
		m.l.Warn("diff omitted, cannot write artifact", zap.Error(err))
		return "", nil
	}
	m.l.Info("diff stored", zap.String("path", pth))
	return pth, &pth
}

// sourceFor locates the bucket currently holding an entry's payload: a
// pending entry still lives in staging, a finalized one in production.
func (m *Manager) sourceFor(entry *model.VersionEntry) (storage.Store, string) {
	if entry.StagingKey != "" {
		return m.staging, entry.StagingKey
	}
	return m.production, entry.R2ObjectKey
}

func (m *Manager) uploadStaging(ctx context.Context, file, key string) error {
	f, err := m.fs.Open(file)
	if err != nil {
		return fmt.Errorf("opening %s for upload: %v", file, err)
	}
	defer f.Close()

	if fi, err := f.Stat(); err == nil {
		m.l.Info("uploading to staging",
			zap.String("key", key),
			zap.String("size", units.HumanSize(float64(fi.Size()))))
	}
	return m.staging.Put(ctx, key, f, storage.OverWrite)
}

func (m *Manager) download(ctx context.Context, store storage.Store, key, dest string) error {
	rdr, err := store.Get(ctx, key)
	if err != nil {
		return err
	}
	defer rdr.Close()

	if dir := filepath.Dir(dest); dir != "" && dir != "." {
		if err := m.fs.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	f, err := m.fs.Create(dest)
	if err != nil {
		return err
	}
	if _, err := storage.PipeIO(f, rdr); err != nil {
		_ = f.Close()
		return fmt.Errorf("downloading %s: %v", key, err)
	}
	return f.Close()
}
