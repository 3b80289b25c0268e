package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/openenergyoutlook/datamgr/pkg/errors"
	"github.com/openenergyoutlook/datamgr/pkg/model"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manifestPath = "manifest.json"

func testHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func entry(version, content string) model.VersionEntry {
	hash := testHash(content)
	return model.VersionEntry{
		Version:     version,
		Timestamp:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		SHA256:      hash,
		R2ObjectKey: model.ObjectKey("energy.sqlite", version, hash),
		Commit:      "abc1234",
		Description: "some change",
	}
}

func dataset(name string, entries ...model.VersionEntry) model.Dataset {
	return model.Dataset{
		FileName:      name,
		LatestVersion: entries[0].Version,
		History:       entries,
	}
}

func testStore(t *testing.T) *Store {
	t.Helper()
	return New(afero.NewMemMapFs(), manifestPath)
}

func TestReadMissingManifest(t *testing.T) {
	s := testStore(t)
	data, err := s.Read()
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestWriteReadRoundTrip(t *testing.T) {
	s := testStore(t)
	in := []model.Dataset{
		dataset("energy.sqlite", entry("v2", "H2"), entry("v1", "H1")),
		dataset("climate.sqlite", entry("v1", "C1")),
	}
	require.NoError(t, s.Write(in))

	out, err := s.Read()
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestWriteIsStable(t *testing.T) {
	// a read/write cycle with no mutation must not change a single byte
	s := testStore(t)
	require.NoError(t, s.Write([]model.Dataset{
		dataset("energy.sqlite", entry("v2", "H2"), entry("v1", "H1")),
	}))
	before, err := afero.ReadFile(s.fs, manifestPath)
	require.NoError(t, err)

	data, err := s.Read()
	require.NoError(t, err)
	require.NoError(t, s.Write(data))

	after, err := afero.ReadFile(s.fs, manifestPath)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestWriteFormat(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Write([]model.Dataset{dataset("energy.sqlite", entry("v1", "H1"))}))

	buf, err := afero.ReadFile(s.fs, manifestPath)
	require.NoError(t, err)
	text := string(buf)

	assert.True(t, text[len(text)-1] == '\n', "document must end with a newline")
	assert.Contains(t, text, "  {\n", "two-space indentation")
	// the diff pointer serializes as an explicit null, never omitted
	assert.Contains(t, text, `"diffFromPrevious": null`)
	assert.NotContains(t, text, `"staging_key"`)
	assert.NotContains(t, text, `"status"`)
}

func TestWriteNil(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Write(nil))
	buf, err := afero.ReadFile(s.fs, manifestPath)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(buf))
}

func TestReadCorrupt(t *testing.T) {
	s := testStore(t)

	require.NoError(t, afero.WriteFile(s.fs, manifestPath, []byte("{not json"), 0644))
	_, err := s.Read()
	assert.True(t, errors.Is(err, ErrCorrupt))

	// structurally invalid: latestVersion out of sync
	bad := dataset("energy.sqlite", entry("v2", "H2"))
	bad.LatestVersion = "v1"
	require.NoError(t, s.Write([]model.Dataset{bad}))
	_, err = s.Read()
	assert.True(t, errors.Is(err, ErrCorrupt))
}

func TestReadDuplicateDataset(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Write([]model.Dataset{
		dataset("energy.sqlite", entry("v1", "H1")),
		dataset("energy.sqlite", entry("v1", "H1")),
	}))
	_, err := s.Read()
	assert.True(t, errors.Is(err, ErrCorrupt))
}

func TestGet(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Write([]model.Dataset{dataset("energy.sqlite", entry("v1", "H1"))}))

	ds, err := s.Get("energy.sqlite")
	require.NoError(t, err)
	assert.Equal(t, "energy.sqlite", ds.FileName)

	_, err = s.Get("nope.sqlite")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestGetVersionEntry(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Write([]model.Dataset{
		dataset("energy.sqlite", entry("v2", "H2"), entry("v1", "H1")),
	}))

	e, err := s.GetVersionEntry("energy.sqlite", "v1")
	require.NoError(t, err)
	assert.Equal(t, "v1", e.Version)

	e, err = s.GetVersionEntry("energy.sqlite", "latest")
	require.NoError(t, err)
	assert.Equal(t, "v2", e.Version)

	_, err = s.GetVersionEntry("energy.sqlite", "v9")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestAddNewDataset(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.AddNewDataset(dataset("energy.sqlite", entry("v1", "H1"))))

	data, err := s.Read()
	require.NoError(t, err)
	require.Len(t, data, 1)
	assert.Equal(t, "energy.sqlite", data[0].FileName)
}

func TestAddHistoryEntrySyncsLatest(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.AddNewDataset(dataset("energy.sqlite", entry("v1", "H1"))))
	require.NoError(t, s.AddHistoryEntry("energy.sqlite", entry("v2", "H2")))

	ds, err := s.Get("energy.sqlite")
	require.NoError(t, err)
	assert.Equal(t, "v2", ds.LatestVersion)
	require.Len(t, ds.History, 2)
	assert.Equal(t, "v2", ds.History[0].Version)
	assert.Equal(t, "v1", ds.History[1].Version)
}

func TestUpdateLatestHistoryEntry(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.AddNewDataset(dataset("energy.sqlite", entry("v1", "H1"))))

	replacement := entry("v1", "H1")
	replacement.Commit = "fed4321"
	require.NoError(t, s.UpdateLatestHistoryEntry("energy.sqlite", replacement))

	ds, err := s.Get("energy.sqlite")
	require.NoError(t, err)
	assert.Equal(t, "fed4321", ds.History[0].Commit)
}

func TestMarkForDeletion(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.AddNewDataset(dataset("energy.sqlite", entry("v1", "H1"))))

	found, err := s.MarkForDeletion("energy.sqlite")
	require.NoError(t, err)
	assert.True(t, found)

	ds, err := s.Get("energy.sqlite")
	require.NoError(t, err)
	assert.True(t, ds.MarkedForDeletion())

	found, err = s.MarkForDeletion("nope.sqlite")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMarkVersionsForDeletion(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Write([]model.Dataset{
		dataset("energy.sqlite", entry("v3", "H3"), entry("v2", "H2"), entry("v1", "H1")),
	}))
	require.NoError(t, s.MarkVersionsForDeletion("energy.sqlite", []string{"v1", "v2"}))

	ds, err := s.Get("energy.sqlite")
	require.NoError(t, err)
	assert.False(t, ds.History[0].MarkedForDeletion())
	assert.True(t, ds.History[1].MarkedForDeletion())
	assert.True(t, ds.History[2].MarkedForDeletion())
}

func TestWriteAtomicSwap(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Write([]model.Dataset{dataset("energy.sqlite", entry("v1", "H1"))}))
	require.NoError(t, s.Write([]model.Dataset{dataset("energy.sqlite", entry("v1", "H1"))}))

	// the swap file never survives a successful write
	exists, err := afero.Exists(s.fs, manifestPath+".tmp")
	require.NoError(t, err)
	assert.False(t, exists)
}
