// Package diff produces the SQL diff between two versions of a dataset
// payload. The core only consumes the resulting text and its line
// count, which decides whether the diff is stored alongside the
// manifest or omitted.
package diff

import (
	"context"
	"strings"
)

// Result carries the full diff text and a one-look summary.
type Result struct {
	Text    string
	Summary string
}

// LineCount returns the number of lines in the full diff text.
func (r Result) LineCount() int {
	if r.Text == "" {
		return 0
	}
	return strings.Count(strings.TrimRight(r.Text, "\n"), "\n") + 1
}

// Differ computes the diff between two payload files on disk.
type Differ interface {
	Diff(ctx context.Context, oldFile, newFile string) (Result, error)
}
