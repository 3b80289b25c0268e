// Package core implements the version lifecycle state machine: the
// prepare, rollback, pull, prune and delete operations that move a
// dataset's version entries between their lifecycle states, with
// rollback-on-failure across the manifest, the staging bucket and the
// version-control history.
package core

import (
	"context"
	"fmt"

	"github.com/openenergyoutlook/datamgr/pkg/core/status"
	"github.com/openenergyoutlook/datamgr/pkg/diff"
	"github.com/openenergyoutlook/datamgr/pkg/manifest"
	"github.com/openenergyoutlook/datamgr/pkg/model"
	"github.com/openenergyoutlook/datamgr/pkg/storage"
	"github.com/openenergyoutlook/datamgr/pkg/vcs"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// DefaultMaxDiffLines is the largest diff, in lines, stored in the
// working tree. Larger diffs are omitted, which is not an error.
const DefaultMaxDiffLines = 500

// Manager drives the lifecycle operations against its collaborators:
// the manifest store, the two object-store buckets, version control and
// the diff generator.
type Manager struct {
	manifest   *manifest.Store
	staging    storage.Store
	production storage.Store
	repo       vcs.Repo
	differ     diff.Differ
	fs         afero.Fs

	maxDiffLines int
	l            *zap.Logger
}

// Option customizes a Manager.
type Option func(*Manager)

// WithVCS wires the version-control collaborator. Without it, prepare
// operations stop after the manifest write (prepare-only mode).
func WithVCS(repo vcs.Repo) Option {
	return func(m *Manager) {
		m.repo = repo
	}
}

// WithDiffer wires the diff generator used by updates.
func WithDiffer(d diff.Differ) Option {
	return func(m *Manager) {
		m.differ = d
	}
}

// WithFs sets the filesystem payload files are read from and diff
// artifacts are written to.
func WithFs(fs afero.Fs) Option {
	return func(m *Manager) {
		m.fs = fs
	}
}

// WithMaxDiffLines overrides the stored-diff size threshold.
func WithMaxDiffLines(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxDiffLines = n
		}
	}
}

// WithLogger injects a logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.l = l
		}
	}
}

// New builds a Manager over the manifest store and the staging and
// production buckets.
func New(mf *manifest.Store, staging, production storage.Store, opts ...Option) *Manager {
	m := &Manager{
		manifest:     mf,
		staging:      staging,
		production:   production,
		fs:           afero.NewOsFs(),
		maxDiffLines: DefaultMaxDiffLines,
		l:            zap.NewNop(),
	}
	for _, apply := range opts {
		apply(m)
	}
	return m
}

// ListDatasets returns every dataset in the manifest.
func (m *Manager) ListDatasets() ([]model.Dataset, error) {
	return m.manifest.Read()
}

// commitAndPush pairs a prepared manifest mutation with a commit and a
// push. The push is deliberately the last action: a failure anywhere
// triggers the compensation hook and a hard reset to the pre-operation
// commit, so the caller observes all-or-nothing behavior.
func (m *Manager) commitAndPush(ctx context.Context, message string, cleanup func(context.Context)) error {
	if m.repo == nil {
		return nil
	}
	head, err := m.repo.Head(ctx)
	if err != nil {
		return fmt.Errorf("resolving HEAD: %v", err)
	}
	err = func() error {
		if e := m.repo.StageAll(ctx); e != nil {
			return e
		}
		if e := m.repo.Commit(ctx, message); e != nil {
			return e
		}
		return m.repo.Push(ctx)
	}()
	if err == nil {
		return nil
	}

	m.l.Warn("finalization failed, rolling back local changes", zap.Error(err))
	if cleanup != nil {
		cleanup(ctx)
	}
	if e := m.repo.ResetHard(ctx, head); e != nil {
		m.l.Error("hard reset failed during compensation", zap.Error(e))
	}
	return status.ErrCompensated.Wrap(err)
}
