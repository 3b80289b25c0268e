package model

import (
	"fmt"
	"path"
	"strings"
)

// Stem strips the extension from a dataset file name, yielding the
// directory component of its object keys.
func Stem(fileName string) string {
	return strings.TrimSuffix(fileName, path.Ext(fileName))
}

// ObjectKey builds the production object key for one dataset version.
// The key is a pure function of the dataset stem, the version token and
// the content hash, and is never recomputed once an entry is finalized.
func ObjectKey(fileName, version, hash string) string {
	return fmt.Sprintf("%s/%s-%s.sqlite", Stem(fileName), version, hash)
}

// StagingObjectKey builds the content-addressed staging key for a
// payload awaiting publication. Re-uploading identical content lands on
// the same key, which keeps retries of a failed prepare harmless.
func StagingObjectKey(hash string) string {
	return fmt.Sprintf("staging-uploads/%s.sqlite", hash)
}

// DiffArtifactPath builds the working-tree path where the diff between
// two consecutive versions is stored.
func DiffArtifactPath(fileName, fromVersion, toVersion string) string {
	return path.Join("diffs", fileName, fmt.Sprintf("diff-%s-to-%s.diff", fromVersion, toVersion))
}
