package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/openenergyoutlook/datamgr/pkg/storage"
)

// Permissions records the outcome of per-operation bucket probes.
type Permissions struct {
	Read   bool
	Write  bool
	Delete bool
}

// BucketReport is the verification result for one bucket.
type BucketReport struct {
	Bucket      string
	Exists      bool
	Permissions Permissions
	Message     string
}

// FullAccess reports whether every probe succeeded.
func (r BucketReport) FullAccess() bool {
	return r.Permissions.Read && r.Permissions.Write && r.Permissions.Delete
}

// Verify probes both buckets for granular access: listing for read,
// and a put plus delete of a throwaway key for write and delete. The
// probe object is always cleaned up, even on partial failure.
func (m *Manager) Verify(ctx context.Context) []BucketReport {
	return []BucketReport{
		checkBucket(ctx, m.production),
		checkBucket(ctx, m.staging),
	}
}

func checkBucket(ctx context.Context, store storage.Store) BucketReport {
	report := BucketReport{Bucket: store.String()}

	if _, err := store.Keys(ctx); err == nil {
		report.Permissions.Read = true
		report.Exists = true
	}

	probeKey := fmt.Sprintf("datamgr-verify-test-%s.tmp", uuid.NewString())
	if err := store.Put(ctx, probeKey, strings.NewReader("verify"), storage.OverWrite); err == nil {
		report.Permissions.Write = true
		report.Exists = true
		if err := store.Delete(ctx, probeKey); err == nil {
			report.Permissions.Delete = true
		}
		// best effort, in case the first delete failed transiently
		_ = store.Delete(ctx, probeKey)
	}

	switch {
	case report.FullAccess():
		report.Message = "Full access verified."
	case !report.Exists:
		report.Message = "Bucket not found or no access."
	default:
		var granted []string
		if report.Permissions.Read {
			granted = append(granted, "read")
		}
		if report.Permissions.Write {
			granted = append(granted, "write")
		}
		if report.Permissions.Delete {
			granted = append(granted, "delete")
		}
		if len(granted) == 0 {
			report.Message = "No object permissions."
		} else {
			report.Message = fmt.Sprintf("Partial access: [%s]", strings.Join(granted, ", "))
		}
	}
	return report
}
