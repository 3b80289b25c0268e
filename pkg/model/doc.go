// Package model describes the objects datamgr tracks: datasets, their
// version history entries, and the lifecycle states an entry moves
// through between a local prepare and its finalization by the publish
// reconciler.
//
// The manifest document is a JSON array of datasets. The on-disk format
// encodes lifecycle state through sentinel values ("pending-merge",
// "pending-deletion") and the presence of the staging key; this package
// maps those sentinels to and from an explicit state enum so that no
// business logic ever matches on the raw strings.
package model
