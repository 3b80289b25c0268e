package vcs

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Git implements Repo with the git CLI. All commands target a fixed
// repository directory via the -C flag.
type Git struct {
	dir string
}

var _ Repo = &Git{}

// NewGit returns a Repo targeting the repository at dir.
func NewGit(dir string) *Git {
	return &Git{dir: dir}
}

// run executes a git command and returns trimmed stdout. Stderr is
// captured separately and included in error messages on failure.
func (g *Git) run(ctx context.Context, args ...string) (string, error) {
	fullArgs := append([]string{"-C", g.dir}, args...)
	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, "git", fullArgs...)
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return "", fmt.Errorf("git %s in %s: %v (stderr: %s)",
			strings.Join(args, " "), g.dir, err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// StageAll stages every working-tree change.
func (g *Git) StageAll(ctx context.Context) error {
	_, err := g.run(ctx, "add", "-A")
	return err
}

// Stage stages the given paths.
func (g *Git) Stage(ctx context.Context, paths ...string) error {
	_, err := g.run(ctx, append([]string{"add", "--"}, paths...)...)
	return err
}

// Commit records the staged changes.
func (g *Git) Commit(ctx context.Context, message string) error {
	_, err := g.run(ctx, "commit", "-m", message)
	return err
}

// ResetHard moves HEAD to ref, discarding index and working tree.
func (g *Git) ResetHard(ctx context.Context, ref string) error {
	_, err := g.run(ctx, "reset", "--hard", ref)
	return err
}

// Head returns the current commit hash.
func (g *Git) Head(ctx context.Context) (string, error) {
	return g.run(ctx, "rev-parse", "HEAD")
}

// LastCommit returns the short hash and subject of the most recent
// commit touching path.
func (g *Git) LastCommit(ctx context.Context, path string) (CommitInfo, error) {
	hash, err := g.run(ctx, "log", "-1", "--pretty=%h", "--", path)
	if err != nil {
		return CommitInfo{}, err
	}
	subject, err := g.run(ctx, "log", "-1", "--pretty=%s", "--", path)
	if err != nil {
		return CommitInfo{}, err
	}
	return CommitInfo{Hash: hash, Subject: subject}, nil
}

// Push publishes local commits to the remote.
func (g *Git) Push(ctx context.Context) error {
	_, err := g.run(ctx, "push")
	return err
}

// SetIdentity configures the committer identity for this repository.
func (g *Git) SetIdentity(ctx context.Context, name, email string) error {
	if _, err := g.run(ctx, "config", "user.name", name); err != nil {
		return err
	}
	_, err := g.run(ctx, "config", "user.email", email)
	return err
}
