// Package manifest owns the document of record for all datasets and
// their version histories. The document is a JSON array, newest history
// entry first, written whole and atomically: mutations never produce a
// partially written manifest, even for a concurrent reader.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/openenergyoutlook/datamgr/pkg/errors"
	"github.com/openenergyoutlook/datamgr/pkg/model"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

var (
	// ErrCorrupt indicates the manifest document cannot be parsed or
	// violates its structural invariants. Operator intervention is
	// required, no recovery is attempted.
	ErrCorrupt = errors.New("manifest is corrupt")

	// ErrNotFound indicates the requested dataset or version is absent
	ErrNotFound = errors.New("not found in manifest")
)

// Option customizes the manifest store.
type Option func(*Store)

// Logger injects a logger into the store.
func Logger(l *zap.Logger) Option {
	return func(s *Store) {
		s.l = l
	}
}

// Store reads and writes the manifest document.
//
// All mutating operations follow the same shape: load the whole
// document, modify the in-memory datasets, write the whole document
// back. The unit of consistency is the entire manifest.
type Store struct {
	fs   afero.Fs
	path string
	l    *zap.Logger
}

// New creates a manifest store for the document at path.
func New(fs afero.Fs, path string, opts ...Option) *Store {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	s := &Store{fs: fs, path: path, l: zap.NewNop()}
	for _, apply := range opts {
		apply(s)
	}
	return s
}

// Path returns the manifest document location.
func (s *Store) Path() string {
	return s.path
}

// Read loads and validates the manifest. A missing document is an empty
// manifest, not an error.
func (s *Store) Read() ([]model.Dataset, error) {
	buf, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.Dataset{}, nil
		}
		return nil, err
	}
	var data []model.Dataset
	if err := json.Unmarshal(buf, &data); err != nil {
		return nil, ErrCorrupt.Wrap(err)
	}
	seen := make(map[string]struct{}, len(data))
	for i := range data {
		if err := data[i].Validate(); err != nil {
			return nil, ErrCorrupt.Wrap(err)
		}
		if _, dupe := seen[data[i].FileName]; dupe {
			return nil, ErrCorrupt.WrapMessage(fmt.Sprintf("duplicate dataset %s", data[i].FileName))
		}
		seen[data[i].FileName] = struct{}{}
	}
	return data, nil
}

// Write serializes the full dataset sequence and atomically replaces
// the document: the new content lands in a temporary file in the same
// directory, then a rename swaps it into place.
func (s *Store) Write(data []model.Dataset) error {
	if data == nil {
		data = []model.Dataset{}
	}
	buf, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	buf = append(buf, '\n')

	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := s.fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("ensuring manifest directory: %v", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, buf, 0644); err != nil {
		return fmt.Errorf("writing manifest swap file: %v", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("swapping manifest into place: %v", err)
	}
	s.l.Debug("manifest written", zap.String("path", s.path), zap.Int("datasets", len(data)))
	return nil
}

// Get returns a single dataset by its logical name.
func (s *Store) Get(name string) (*model.Dataset, error) {
	data, err := s.Read()
	if err != nil {
		return nil, err
	}
	for i := range data {
		if data[i].FileName == name {
			return &data[i], nil
		}
	}
	return nil, ErrNotFound.WrapMessage(fmt.Sprintf("dataset %s", name))
}

// GetVersionEntry locates one version of a dataset. The token "latest"
// resolves to the newest history entry.
func (s *Store) GetVersionEntry(name, version string) (*model.VersionEntry, error) {
	ds, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	if version == "latest" {
		return ds.Latest(), nil
	}
	for i := range ds.History {
		if ds.History[i].Version == version {
			return &ds.History[i], nil
		}
	}
	return nil, ErrNotFound.WrapMessage(fmt.Sprintf("dataset %s version %s", name, version))
}

// AddNewDataset appends a dataset to the manifest. The caller is
// responsible for having checked name uniqueness beforehand.
func (s *Store) AddNewDataset(ds model.Dataset) error {
	data, err := s.Read()
	if err != nil {
		return err
	}
	data = append(data, ds)
	return s.Write(data)
}

// AddHistoryEntry prepends a version entry to a dataset's history and
// syncs the latestVersion pointer. A missing dataset is logged and
// ignored: callers check existence first, this guard is defensive.
func (s *Store) AddHistoryEntry(name string, entry model.VersionEntry) error {
	data, err := s.Read()
	if err != nil {
		return err
	}
	for i := range data {
		if data[i].FileName != name {
			continue
		}
		data[i].History = append([]model.VersionEntry{entry}, data[i].History...)
		data[i].LatestVersion = entry.Version
		return s.Write(data)
	}
	s.l.Warn("cannot add history entry, dataset not found", zap.String("dataset", name))
	return nil
}

// UpdateLatestHistoryEntry replaces the newest history entry and syncs
// the latestVersion pointer.
func (s *Store) UpdateLatestHistoryEntry(name string, entry model.VersionEntry) error {
	data, err := s.Read()
	if err != nil {
		return err
	}
	for i := range data {
		if data[i].FileName != name {
			continue
		}
		if len(data[i].History) == 0 {
			s.l.Warn("cannot update history entry, history is empty", zap.String("dataset", name))
			return nil
		}
		data[i].History[0] = entry
		data[i].LatestVersion = entry.Version
		return s.Write(data)
	}
	s.l.Warn("cannot update history entry, dataset not found", zap.String("dataset", name))
	return nil
}

// UpdateLatestVersion retargets the convenience pointer only.
func (s *Store) UpdateLatestVersion(name, version string) error {
	data, err := s.Read()
	if err != nil {
		return err
	}
	for i := range data {
		if data[i].FileName != name {
			continue
		}
		data[i].LatestVersion = version
		return s.Write(data)
	}
	s.l.Warn("cannot update latest version, dataset not found", zap.String("dataset", name))
	return nil
}

// MarkForDeletion flags a whole dataset for removal by the deletion
// reconciler. It reports whether the dataset was found.
func (s *Store) MarkForDeletion(name string) (bool, error) {
	data, err := s.Read()
	if err != nil {
		return false, err
	}
	for i := range data {
		if data[i].FileName != name {
			continue
		}
		data[i].Status = model.StatusPendingDeletion
		return true, s.Write(data)
	}
	return false, nil
}

// MarkVersionsForDeletion flags individual history entries for removal.
func (s *Store) MarkVersionsForDeletion(name string, versions []string) error {
	doomed := make(map[string]struct{}, len(versions))
	for _, v := range versions {
		doomed[v] = struct{}{}
	}
	data, err := s.Read()
	if err != nil {
		return err
	}
	for i := range data {
		if data[i].FileName != name {
			continue
		}
		for j := range data[i].History {
			if _, ok := doomed[data[i].History[j].Version]; ok {
				data[i].History[j].Status = model.StatusPendingDeletion
			}
		}
		return s.Write(data)
	}
	s.l.Warn("cannot mark versions for deletion, dataset not found", zap.String("dataset", name))
	return nil
}
