package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/openenergyoutlook/datamgr/pkg/diff"
	"github.com/openenergyoutlook/datamgr/pkg/manifest"
	"github.com/openenergyoutlook/datamgr/pkg/model"
	"github.com/openenergyoutlook/datamgr/pkg/storage"
	"github.com/openenergyoutlook/datamgr/pkg/storage/localfs"
	"github.com/openenergyoutlook/datamgr/pkg/vcs"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// fakeRepo records version-control operations and can be told to fail
// at the push, the last step of the finalization sequence.
type fakeRepo struct {
	ops      []string
	messages []string
	resetTo  string
	failPush bool

	lastCommit vcs.CommitInfo
}

var _ vcs.Repo = &fakeRepo{}

func (f *fakeRepo) StageAll(ctx context.Context) error {
	f.ops = append(f.ops, "stage-all")
	return nil
}

func (f *fakeRepo) Stage(ctx context.Context, paths ...string) error {
	f.ops = append(f.ops, "stage")
	return nil
}

func (f *fakeRepo) Commit(ctx context.Context, message string) error {
	f.ops = append(f.ops, "commit")
	f.messages = append(f.messages, message)
	return nil
}

func (f *fakeRepo) ResetHard(ctx context.Context, ref string) error {
	f.ops = append(f.ops, "reset-hard")
	f.resetTo = ref
	return nil
}

func (f *fakeRepo) Head(ctx context.Context) (string, error) {
	return "head0", nil
}

func (f *fakeRepo) LastCommit(ctx context.Context, path string) (vcs.CommitInfo, error) {
	return f.lastCommit, nil
}

func (f *fakeRepo) Push(ctx context.Context) error {
	f.ops = append(f.ops, "push")
	if f.failPush {
		return fmt.Errorf("remote rejected the push")
	}
	return nil
}

func (f *fakeRepo) SetIdentity(ctx context.Context, name, email string) error {
	f.ops = append(f.ops, "set-identity")
	return nil
}

// stubDiffer returns a canned diff without touching the payloads.
type stubDiffer struct {
	res diff.Result
	err error
}

func (d stubDiffer) Diff(ctx context.Context, oldFile, newFile string) (diff.Result, error) {
	return d.res, d.err
}

type fixture struct {
	fs         afero.Fs
	mf         *manifest.Store
	staging    storage.Store
	production storage.Store
	repo       *fakeRepo
	m          *Manager
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	fs := afero.NewMemMapFs()
	staging, err := localfs.New(afero.NewMemMapFs())
	require.NoError(t, err)
	production, err := localfs.New(afero.NewMemMapFs())
	require.NoError(t, err)

	repo := &fakeRepo{lastCommit: vcs.CommitInfo{Hash: "abc1234", Subject: "merged change"}}
	mf := manifest.New(fs, "manifest.json")

	base := []Option{
		WithFs(fs),
		WithVCS(repo),
		WithDiffer(stubDiffer{res: diff.Result{Text: "-- no diff\n"}}),
	}
	m := New(mf, staging, production, append(base, opts...)...)
	return &fixture{fs: fs, mf: mf, staging: staging, production: production, repo: repo, m: m}
}

func testHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func (f *fixture) writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(f.fs, path, []byte(content), 0644))
}

// seedVersion appends a finalized version backed by a production object.
func (f *fixture) seedVersion(t *testing.T, name, version, content string) model.VersionEntry {
	t.Helper()
	hash := testHash(content)
	entry := model.VersionEntry{
		Version:     version,
		Timestamp:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		SHA256:      hash,
		R2ObjectKey: model.ObjectKey(name, version, hash),
		Commit:      "abc1234",
		Description: "seeded",
	}
	require.NoError(t, f.production.Put(context.Background(), entry.R2ObjectKey,
		strings.NewReader(content), storage.OverWrite))

	if _, err := f.mf.Get(name); err == nil {
		require.NoError(t, f.mf.AddHistoryEntry(name, entry))
	} else {
		require.NoError(t, f.mf.AddNewDataset(model.Dataset{
			FileName:      name,
			LatestVersion: version,
			History:       []model.VersionEntry{entry},
		}))
	}
	return entry
}

func (f *fixture) stagingKeys(t *testing.T) []string {
	t.Helper()
	keys, err := f.staging.Keys(context.Background())
	require.NoError(t, err)
	return keys
}

// brokenPutStore refuses uploads, for failure-path tests.
type brokenPutStore struct {
	storage.Store
}

func (b brokenPutStore) Put(ctx context.Context, key string, source io.Reader, exclusive bool) error {
	return fmt.Errorf("bucket rejected the upload")
}

func (f *fixture) fsReadFile(path string) ([]byte, error) {
	return afero.ReadFile(f.fs, path)
}

func (f *fixture) fsExists(path string) (bool, error) {
	return afero.Exists(f.fs, path)
}
