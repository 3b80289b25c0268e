// Package localfs implements the storage.Store interface on a local
// file system. It backs tests and offline work; puts are atomic, going
// through a staging directory and a rename.
package localfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/openenergyoutlook/datamgr/pkg/storage"
	"github.com/openenergyoutlook/datamgr/pkg/storage/status"
	"github.com/spf13/afero"
)

// putStageDir is where in-flight puts are written before being renamed
// into place. Keys must not collide with it.
const putStageDir = ".put-stage"

// New creates a local file system backed object store rooted at the
// given afero filesystem.
func New(fs afero.Fs) (storage.Store, error) {
	if fs == nil {
		fs = afero.NewBasePathFs(afero.NewOsFs(), filepath.Join(".datamgr", "objects"))
	}
	if err := fs.MkdirAll(putStageDir, 0700); err != nil {
		return nil, fmt.Errorf("ensuring put staging directory: %v", err)
	}
	return &localFS{fs: fs}, nil
}

type localFS struct {
	fs afero.Fs
}

func validKey(key string) error {
	first := strings.SplitN(strings.TrimLeft(key, "/"), "/", 2)[0]
	if first == putStageDir {
		return fmt.Errorf("key %q conflicts with put staging area %q", key, putStageDir)
	}
	return nil
}

func (l *localFS) Has(ctx context.Context, key string) (bool, error) {
	fi, err := l.fs.Stat(key)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !fi.IsDir(), nil
}

func (l *localFS) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	has, err := l.Has(ctx, key)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, status.ErrNotFound.WrapMessage(key)
	}
	return l.fs.Open(key)
}

func (l *localFS) Put(ctx context.Context, key string, source io.Reader, exclusive bool) error {
	if err := validKey(key); err != nil {
		return err
	}
	if exclusive {
		has, err := l.Has(ctx, key)
		if err != nil {
			return err
		}
		if has {
			return status.ErrExists.WrapMessage(key)
		}
	}
	stageKey := filepath.Join(putStageDir, filepath.Base(key))
	if err := l.write(stageKey, source); err != nil {
		return err
	}
	if dir := filepath.Dir(key); dir != "" {
		if err := l.fs.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("ensuring directories for %q: %v", key, err)
		}
	}
	return l.fs.Rename(stageKey, key)
}

func (l *localFS) write(key string, source io.Reader) error {
	target, err := l.fs.OpenFile(key, os.O_CREATE|os.O_WRONLY|os.O_TRUNC|os.O_SYNC, 0600)
	if err != nil {
		return fmt.Errorf("create record for %q: %v", key, err)
	}
	if _, err = storage.PipeIO(target, source); err != nil {
		_ = target.Close()
		return fmt.Errorf("write record for %q: %v", key, err)
	}
	return target.Close()
}

func (l *localFS) Delete(ctx context.Context, key string) error {
	if err := l.fs.Remove(key); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %q: %v", key, err)
	}
	return nil
}

func (l *localFS) BatchDelete(ctx context.Context, keys []string) error {
	var failed []string
	for _, key := range keys {
		if err := l.Delete(ctx, key); err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(failed) > 0 {
		return status.ErrPartialBatchDelete.WrapMessage(strings.Join(failed, "; "))
	}
	return nil
}

func (l *localFS) Keys(ctx context.Context) ([]string, error) {
	versions, err := l.KeyVersions(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(versions))
	for _, v := range versions {
		keys = append(keys, v.Key)
	}
	return keys, nil
}

func (l *localFS) KeyVersions(ctx context.Context) ([]storage.ObjectVersion, error) {
	const root = "."
	var res []storage.ObjectVersion
	err := afero.Walk(l.fs, root, func(pth string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if pth == root || info.IsDir() {
			return nil
		}
		if e := validKey(pth); e != nil {
			// in-flight puts are not objects
			return nil
		}
		res = append(res, storage.ObjectVersion{Key: pth, LastModified: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (l *localFS) String() string {
	const localfs = "localfs"
	if fs, ok := l.fs.(*afero.BasePathFs); ok {
		if pp, err := fs.RealPath(""); err == nil {
			return localfs + "@" + pp
		}
	}
	return localfs
}
