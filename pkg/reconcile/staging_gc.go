package reconcile

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultStagingRetention is how long an abandoned staging upload
// survives before the garbage collector removes it. A prepare that
// never reached a merge leaves its staged object behind; after this
// window it is safe to assume the operation was abandoned.
const DefaultStagingRetention = 7 * 24 * time.Hour

// ScrubStaging removes abandoned staging objects older than the
// retention window and returns the number deleted. An object is
// abandoned only when no pending manifest entry references it as its
// staging key: a referenced payload stays publishable no matter how
// long its finalization stalls. Per-key deletion errors abort the run
// (fail-closed), leaving the remaining objects for a retry.
func (r *Reconciler) ScrubStaging(ctx context.Context, retention time.Duration) (int, error) {
	if retention <= 0 {
		retention = DefaultStagingRetention
	}

	data, err := r.manifest.Read()
	if err != nil {
		return 0, err
	}
	referenced := make(map[string]struct{})
	for i := range data {
		for j := range data[i].History {
			if key := data[i].History[j].StagingKey; key != "" {
				referenced[key] = struct{}{}
			}
		}
	}

	threshold := r.now().Add(-retention)
	versions, err := r.staging.KeyVersions(ctx)
	if err != nil {
		return 0, err
	}
	var doomed []string
	for _, v := range versions {
		if _, ok := referenced[v.Key]; ok {
			r.l.Debug("staging object still referenced by a pending entry",
				zap.String("key", v.Key))
			continue
		}
		if v.LastModified.Before(threshold) {
			r.l.Debug("staging object expired",
				zap.String("key", v.Key), zap.Time("lastModified", v.LastModified))
			doomed = append(doomed, v.Key)
		}
	}
	if len(doomed) == 0 {
		r.l.Info("no expired staging objects found")
		return 0, nil
	}

	if err := r.staging.BatchDelete(ctx, doomed); err != nil {
		return 0, err
	}
	r.l.Info("expired staging objects deleted", zap.Int("count", len(doomed)))
	return len(doomed), nil
}
