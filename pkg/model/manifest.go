package model

import (
	"fmt"
	"regexp"
	"time"
)

const (
	// PendingMerge is the sentinel recorded in the commit and description
	// fields of a version entry that awaits finalization by the publish
	// reconciler after its manifest change has been merged.
	PendingMerge = "pending-merge"

	// StatusPendingDeletion marks a dataset or a single version entry for
	// removal by the deletion reconciler.
	StatusPendingDeletion = "pending-deletion"
)

// State is the lifecycle state of a version entry.
//
// The manifest document does not store the state directly: it is derived
// from the staging key and the commit sentinel, and serialized back the
// same way.
type State int

const (
	// StateFinalized denotes an entry whose commit and description refer to
	// a real version-control commit and whose payload lives in the
	// production bucket.
	StateFinalized State = iota

	// StateStagedPending denotes an entry whose payload sits in the staging
	// bucket, awaiting a server-side copy to production.
	StateStagedPending

	// StateRolledBackPending denotes a synthetic rollback entry referencing
	// an existing production object, awaiting commit resolution only.
	StateRolledBackPending
)

func (s State) String() string {
	switch s {
	case StateStagedPending:
		return "staged-pending"
	case StateRolledBackPending:
		return "rolled-back-pending"
	default:
		return "finalized"
	}
}

// Dataset is a logical named collection of versions.
type Dataset struct {
	FileName      string         `json:"fileName"`
	LatestVersion string         `json:"latestVersion"`
	Status        string         `json:"status,omitempty"`
	History       []VersionEntry `json:"history"`
	_             struct{}
}

// VersionEntry is one immutable-once-finalized snapshot of a dataset's
// content. History is ordered newest-first, so the entry at index 0 is
// the latest version.
type VersionEntry struct {
	Version          string    `json:"version"`
	Timestamp        time.Time `json:"timestamp"`
	SHA256           string    `json:"sha256"`
	R2ObjectKey      string    `json:"r2_object_key"`
	DiffFromPrevious *string   `json:"diffFromPrevious"`
	Commit           string    `json:"commit"`
	Description      string    `json:"description,omitempty"`
	StagingKey       string    `json:"staging_key,omitempty"`
	Status           string    `json:"status,omitempty"`
	_                struct{}
}

// State derives the lifecycle state from the serialized sentinel fields.
func (e *VersionEntry) State() State {
	if e.StagingKey != "" {
		return StateStagedPending
	}
	if e.Commit == PendingMerge {
		return StateRolledBackPending
	}
	return StateFinalized
}

// Pending reports whether the entry still awaits finalization.
func (e *VersionEntry) Pending() bool {
	return e.State() != StateFinalized
}

// MarkedForDeletion reports whether the entry awaits removal.
func (e *VersionEntry) MarkedForDeletion() bool {
	return e.Status == StatusPendingDeletion
}

// MarkedForDeletion reports whether the whole dataset awaits removal.
func (d *Dataset) MarkedForDeletion() bool {
	return d.Status == StatusPendingDeletion
}

// Latest returns the most recent version entry.
func (d *Dataset) Latest() *VersionEntry {
	if len(d.History) == 0 {
		return nil
	}
	return &d.History[0]
}

var sha256Re = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Validate checks a single version entry against the document invariants.
func (e *VersionEntry) Validate() error {
	if _, err := ParseVersion(e.Version); err != nil {
		return fmt.Errorf("invalid version token: %v", err)
	}
	if !sha256Re.MatchString(e.SHA256) {
		return fmt.Errorf("version %s: sha256 %q is not a hex-encoded sha256", e.Version, e.SHA256)
	}
	if e.R2ObjectKey == "" {
		return fmt.Errorf("version %s: missing r2_object_key", e.Version)
	}
	if e.Commit == "" {
		return fmt.Errorf("version %s: missing commit", e.Version)
	}
	if e.StagingKey != "" && e.Commit != PendingMerge {
		return fmt.Errorf("version %s: staging key present but commit is %q, not %q",
			e.Version, e.Commit, PendingMerge)
	}
	if e.Status != "" && e.Status != StatusPendingDeletion {
		return fmt.Errorf("version %s: unknown status %q", e.Version, e.Status)
	}
	if e.Status == StatusPendingDeletion && e.Pending() {
		return fmt.Errorf("version %s: marked for deletion while still pending", e.Version)
	}
	return nil
}

// Validate checks a dataset and its full history against the document
// invariants: non-empty history, latestVersion in sync with history[0],
// strictly decreasing version numbers from newest to oldest.
func (d *Dataset) Validate() error {
	if d.FileName == "" {
		return fmt.Errorf("dataset has no fileName")
	}
	if len(d.History) == 0 {
		return fmt.Errorf("dataset %s: empty history", d.FileName)
	}
	if d.Status != "" && d.Status != StatusPendingDeletion {
		return fmt.Errorf("dataset %s: unknown status %q", d.FileName, d.Status)
	}
	if d.LatestVersion != d.History[0].Version {
		return fmt.Errorf("dataset %s: latestVersion %s does not match newest history entry %s",
			d.FileName, d.LatestVersion, d.History[0].Version)
	}
	prev := 0
	for i := range d.History {
		e := &d.History[i]
		if err := e.Validate(); err != nil {
			return fmt.Errorf("dataset %s: %v", d.FileName, err)
		}
		n, _ := ParseVersion(e.Version)
		if prev != 0 && n >= prev {
			return fmt.Errorf("dataset %s: history out of order: %s follows v%d",
				d.FileName, e.Version, prev)
		}
		prev = n
	}
	return nil
}

// NewTimestamp returns the creation instant for a new version entry.
// Timestamps are always recorded in UTC.
func NewTimestamp() time.Time {
	return time.Now().UTC()
}
