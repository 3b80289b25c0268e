// Package storage provides the interface to handle backend storage objects.
//
// This package supports the following backends:
//   - Cloudflare R2 (via the S3 API)
//   - local file system
package storage

import (
	"context"
	"io"
	"time"

	"github.com/openenergyoutlook/datamgr/pkg/errors"
	"github.com/openenergyoutlook/datamgr/pkg/storage/status"
)

// Put semantics for the exclusive flag.
const (
	OverWrite    = false
	NoOverWrite  = true
	IfNotPresent = true
)

// MaxBatchDelete is the largest number of keys a single batch deletion
// call may carry (the S3 DeleteObjects API limit).
const MaxBatchDelete = 1000

// ObjectVersion pairs an object key with its last modification time, as
// reported by a bucket listing. Used by the staging garbage collector to
// find abandoned uploads.
type ObjectVersion struct {
	Key          string
	LastModified time.Time
}

// Store implementations know how to read and write objects in a single
// logical bucket. Each bucket (production, staging) gets its own Store.
type Store interface {
	String() string
	Has(context.Context, string) (bool, error)
	Get(context.Context, string) (io.ReadCloser, error)
	Put(ctx context.Context, key string, source io.Reader, exclusive bool) error
	Delete(context.Context, string) error

	// BatchDelete removes up to MaxBatchDelete keys per underlying call.
	// Any per-key failure is reported as status.ErrPartialBatchDelete.
	BatchDelete(ctx context.Context, keys []string) error

	Keys(context.Context) ([]string, error)

	// KeyVersions lists every object with its last-modified time.
	KeyVersions(context.Context) ([]ObjectVersion, error)
}

// Copier is implemented by stores that can copy an object from a
// sibling store without streaming the payload through the client.
type Copier interface {
	Copy(ctx context.Context, src Store, srcKey, dstKey string) error
}

// Copy transfers one object between stores, preferring a server-side
// copy when the destination supports it and falling back to a streamed
// get/put otherwise.
func Copy(ctx context.Context, src Store, srcKey string, dst Store, dstKey string) error {
	if copier, ok := dst.(Copier); ok {
		err := copier.Copy(ctx, src, srcKey, dstKey)
		if err == nil || !errors.Is(err, status.ErrNotSupported) {
			return err
		}
	}
	rdr, err := src.Get(ctx, srcKey)
	if err != nil {
		return err
	}
	defer rdr.Close()
	return dst.Put(ctx, dstKey, rdr, OverWrite)
}

// PipeIO copies a reader to a writer with a fixed-size buffer.
func PipeIO(writer io.Writer, reader io.Reader) (n int64, err error) {
	buf := make([]byte, 32*1024)
	return io.CopyBuffer(writer, reader, buf)
}
