// Package reconcile finalizes pending manifest state against object
// storage. It runs from automation after a manifest change has merged:
// the deletion pass removes marked datasets and versions, the publish
// pass finalizes exactly one pending entry per run so that every
// automated commit stays single-purpose.
//
// All failures are fail-closed and non-destructive: the manifest is
// rewritten only after every object-store action for the current unit
// of work has succeeded, so an aborted run leaves all three stores
// exactly as found and a re-run picks the work up again.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/openenergyoutlook/datamgr/pkg/manifest"
	"github.com/openenergyoutlook/datamgr/pkg/model"
	"github.com/openenergyoutlook/datamgr/pkg/storage"
	"github.com/openenergyoutlook/datamgr/pkg/vcs"
	"go.uber.org/zap"
)

// Reconciler scans the manifest for pending work and applies it.
type Reconciler struct {
	manifest   *manifest.Store
	staging    storage.Store
	production storage.Store
	repo       vcs.Repo
	now        func() time.Time
	l          *zap.Logger
}

// Option customizes a Reconciler.
type Option func(*Reconciler)

// WithVCS wires the version-control collaborator used to resolve
// commit details and push the finalized manifest.
func WithVCS(repo vcs.Repo) Option {
	return func(r *Reconciler) {
		r.repo = repo
	}
}

// WithLogger injects a logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Reconciler) {
		if l != nil {
			r.l = l
		}
	}
}

// WithClock overrides the time source (used by tests).
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) {
		r.now = now
	}
}

// New builds a Reconciler over the manifest store and the two buckets.
func New(mf *manifest.Store, staging, production storage.Store, opts ...Option) *Reconciler {
	r := &Reconciler{
		manifest:   mf,
		staging:    staging,
		production: production,
		now:        func() time.Time { return time.Now().UTC() },
		l:          zap.NewNop(),
	}
	for _, apply := range opts {
		apply(r)
	}
	return r
}

// PublishRef identifies the entry finalized by a publish pass.
type PublishRef struct {
	Dataset string
	Version string
}

// Outcome reports what a reconciliation run did.
type Outcome struct {
	// DeletionsProcessed is true when the run handled pending deletions.
	// Publication scanning is then deferred to the next run.
	DeletionsProcessed bool

	// DeletedObjects counts production objects removed by the run.
	DeletedObjects int

	// Published identifies the single entry finalized, if any.
	Published *PublishRef
}

// Run performs one reconciliation pass. Deletions always take priority:
// when any deletion work exists the run processes all of it and exits
// without scanning for publications, keeping each automated manifest
// rewrite single-purpose. Otherwise the first pending entry, in dataset
// insertion order then history order, is finalized; at most one per run.
func (r *Reconciler) Run(ctx context.Context) (Outcome, error) {
	data, err := r.manifest.Read()
	if err != nil {
		return Outcome{}, err
	}

	if keep, doomedKeys, found := deletionWork(data); found {
		if err := r.processDeletions(ctx, keep, doomedKeys); err != nil {
			return Outcome{}, err
		}
		return Outcome{DeletionsProcessed: true, DeletedObjects: len(doomedKeys)}, nil
	}

	ref, err := r.publishNext(ctx, data)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Published: ref}, nil
}

// deletionWork builds the deletion work list: the datasets surviving
// the pass and the production object keys to remove. A dataset marked
// whole is dropped with every version's object; otherwise only marked
// history entries are removed. A dataset whose entire history is marked
// is dropped entirely.
func deletionWork(data []model.Dataset) (keep []model.Dataset, doomedKeys []string, found bool) {
	keep = make([]model.Dataset, 0, len(data))
	for _, ds := range data {
		if ds.MarkedForDeletion() {
			found = true
			for i := range ds.History {
				doomedKeys = append(doomedKeys, ds.History[i].R2ObjectKey)
			}
			continue
		}
		retained := make([]model.VersionEntry, 0, len(ds.History))
		for i := range ds.History {
			if ds.History[i].MarkedForDeletion() {
				found = true
				doomedKeys = append(doomedKeys, ds.History[i].R2ObjectKey)
				continue
			}
			retained = append(retained, ds.History[i])
		}
		if len(retained) == 0 {
			continue
		}
		ds.History = retained
		// removing the newest entry retargets the latest pointer
		ds.LatestVersion = retained[0].Version
		keep = append(keep, ds)
	}
	return keep, doomedKeys, found
}

func (r *Reconciler) processDeletions(ctx context.Context, keep []model.Dataset, doomedKeys []string) error {
	r.l.Info("processing pending deletions",
		zap.Int("objects", len(doomedKeys)), zap.Int("datasets kept", len(keep)))

	// The batch delete runs before the manifest rewrite. A per-key error
	// aborts the whole run: the manifest must never lose the record of
	// an object the bucket still holds.
	if len(doomedKeys) > 0 {
		if err := r.production.BatchDelete(ctx, doomedKeys); err != nil {
			return err
		}
	}
	if err := r.manifest.Write(keep); err != nil {
		return err
	}
	return r.commitManifest(ctx, "ci: Finalize manifest after data deletion")
}

// publishNext finalizes the first pending entry and returns after that
// single unit of work. Repeated runs drain the queue one entry at a
// time, one commit per publication.
func (r *Reconciler) publishNext(ctx context.Context, data []model.Dataset) (*PublishRef, error) {
	for i := range data {
		for j := range data[i].History {
			entry := &data[i].History[j]
			if !entry.Pending() {
				continue
			}

			info, err := r.commitDetails(ctx)
			if err != nil {
				return nil, err
			}
			entry.Commit = info.Hash
			if entry.Description == model.PendingMerge {
				entry.Description = info.Subject
			}

			if entry.StagingKey != "" {
				r.l.Info("publishing",
					zap.String("dataset", data[i].FileName),
					zap.String("version", entry.Version),
					zap.String("description", entry.Description))
				if err := storage.Copy(ctx, r.staging, entry.StagingKey, r.production, entry.R2ObjectKey); err != nil {
					return nil, fmt.Errorf("copying %s to production: %v", entry.StagingKey, err)
				}
				if err := r.staging.Delete(ctx, entry.StagingKey); err != nil {
					return nil, fmt.Errorf("deleting staged object %s: %v", entry.StagingKey, err)
				}
				entry.StagingKey = ""
			} else {
				r.l.Info("finalizing rollback",
					zap.String("dataset", data[i].FileName),
					zap.String("version", entry.Version),
					zap.String("description", entry.Description))
			}

			if err := r.manifest.Write(data); err != nil {
				return nil, err
			}
			message := fmt.Sprintf("ci: Publish %s %s", data[i].FileName, entry.Version)
			if err := r.commitManifest(ctx, message); err != nil {
				return nil, err
			}
			return &PublishRef{Dataset: data[i].FileName, Version: entry.Version}, nil
		}
	}
	r.l.Info("no pending publications found")
	return nil, nil
}

func (r *Reconciler) commitDetails(ctx context.Context) (vcs.CommitInfo, error) {
	if r.repo == nil {
		return vcs.CommitInfo{}, fmt.Errorf("cannot resolve commit details without version control")
	}
	return r.repo.LastCommit(ctx, r.manifest.Path())
}

func (r *Reconciler) commitManifest(ctx context.Context, message string) error {
	if r.repo == nil {
		return nil
	}
	if err := r.repo.Stage(ctx, r.manifest.Path()); err != nil {
		return err
	}
	if err := r.repo.Commit(ctx, message); err != nil {
		return err
	}
	return r.repo.Push(ctx)
}
