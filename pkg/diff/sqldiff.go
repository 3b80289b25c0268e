package diff

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// SQLDiffer diffs two SQLite files. It prefers the sqldiff CLI when
// installed and otherwise falls back to a unified diff of the two
// databases' SQL dumps.
type SQLDiffer struct{}

var _ Differ = SQLDiffer{}

// NewSQL returns a Differ for SQLite payloads.
func NewSQL() SQLDiffer {
	return SQLDiffer{}
}

// Diff returns the full diff and a summary between oldFile and newFile.
func (d SQLDiffer) Diff(ctx context.Context, oldFile, newFile string) (Result, error) {
	if _, err := exec.LookPath("sqldiff"); err == nil {
		return sqldiff(ctx, oldFile, newFile)
	}
	oldSQL, err := dumpSQL(ctx, oldFile)
	if err != nil {
		return Result{}, err
	}
	newSQL, err := dumpSQL(ctx, newFile)
	if err != nil {
		return Result{}, err
	}
	return DumpDiff(oldSQL, newSQL, filepath.Base(oldFile), filepath.Base(newFile))
}

func sqldiff(ctx context.Context, oldFile, newFile string) (Result, error) {
	full, err := runTool(ctx, "sqldiff", oldFile, newFile)
	if err != nil {
		return Result{}, err
	}
	summary, err := runTool(ctx, "sqldiff", "--summary", oldFile, newFile)
	if err != nil {
		return Result{}, err
	}
	return Result{Text: full, Summary: summary}, nil
}

func dumpSQL(ctx context.Context, file string) (string, error) {
	return runTool(ctx, "sqlite3", file, ".dump")
}

func runTool(ctx context.Context, tool string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, tool, args...)
	command.Stdout = &stdout
	command.Stderr = &stderr
	if err := command.Run(); err != nil {
		return "", fmt.Errorf("%s %s: %v (stderr: %s)",
			tool, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// DumpDiff builds a unified diff between two SQL dumps and synthesizes
// a summary from the added and deleted line counts.
func DumpDiff(oldSQL, newSQL, fromFile, toFile string) (Result, error) {
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldSQL),
		B:        difflib.SplitLines(newSQL),
		FromFile: fromFile,
		ToFile:   toFile,
		Context:  3,
	})
	if err != nil {
		return Result{}, err
	}
	var adds, dels int
	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			adds++
		case strings.HasPrefix(line, "-"):
			dels++
		}
	}
	return Result{
		Text:    text,
		Summary: fmt.Sprintf("# summary: %d additions, %d deletions\n", adds, dels),
	}, nil
}
