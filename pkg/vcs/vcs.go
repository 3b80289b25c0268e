// Package vcs gives the core semantic access to version control.
//
// The manifest document lives in a git repository and every manifest
// mutation is paired with a commit; pushing that commit is the true
// serialization point between concurrent writers (a rejected push
// forces a retry against the updated base). The core depends only on
// the Repo interface, never on git syntax.
package vcs

import "context"

// CommitInfo carries the short hash and subject line of a commit.
type CommitInfo struct {
	Hash    string
	Subject string
}

// Repo abstracts the version-control operations the core needs.
type Repo interface {
	// StageAll stages every working-tree change.
	StageAll(ctx context.Context) error

	// Stage stages the given paths.
	Stage(ctx context.Context, paths ...string) error

	// Commit records the staged changes.
	Commit(ctx context.Context, message string) error

	// ResetHard moves HEAD to ref, discarding index and working tree.
	ResetHard(ctx context.Context, ref string) error

	// Head returns the current commit hash.
	Head(ctx context.Context) (string, error)

	// LastCommit returns the short hash and subject of the most recent
	// commit that touched the given path.
	LastCommit(ctx context.Context, path string) (CommitInfo, error)

	// Push publishes local commits to the remote.
	Push(ctx context.Context) error

	// SetIdentity configures the committer identity.
	SetIdentity(ctx context.Context, name, email string) error
}
