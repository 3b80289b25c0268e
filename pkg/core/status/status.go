// Package status exports errors produced by the core package.
package status

import (
	"github.com/openenergyoutlook/datamgr/pkg/errors"
)

var (
	// ErrNoChanges indicates the proposed content hashes identically to
	// the current latest version. This is a benign outcome: the
	// operation ends successfully with zero mutation.
	ErrNoChanges = errors.New("no changes detected")

	// ErrExists indicates a create targeted a dataset name already
	// present in the manifest.
	ErrExists = errors.New("dataset exists already")

	// ErrIntegrity indicates a pulled payload failed its hash check.
	ErrIntegrity = errors.New("integrity check failed")

	// ErrPendingEntry indicates a destructive operation targeted a
	// version entry that still awaits publication.
	ErrPendingEntry = errors.New("entry is pending publication")

	// ErrCompensated indicates the local phase failed and all applied
	// side effects were rolled back.
	ErrCompensated = errors.New("operation failed, local changes were rolled back")
)
