// Package status exports errors produced by the storage packages.
package status

import (
	"github.com/openenergyoutlook/datamgr/pkg/errors"
)

var (
	// ErrNotFound indicates the object does not exist in the bucket
	ErrNotFound = errors.New("object not found")

	// ErrExists indicates an exclusive put hit an already existing key
	ErrExists = errors.New("object exists already")

	// ErrNotSupported indicates the backend cannot perform the operation
	ErrNotSupported = errors.New("operation not supported by this backend")

	// ErrPartialBatchDelete indicates a batch deletion reported per-key
	// errors. The whole reconciliation run must abort when this happens:
	// the manifest may never claim an object is gone while the bucket
	// still holds it.
	ErrPartialBatchDelete = errors.New("batch delete reported per-key errors")
)
