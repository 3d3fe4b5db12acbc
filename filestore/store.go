package filestore

import (
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/pkg/errors"
)

// Store resolves filenames to readable files.
type Store interface {
	// Open opens the named file for reading.
	Open(name string) (io.ReadCloser, error)
}

// FS is a Store serving files from a file system.
type FS struct {
	fsys fs.FS
}

// New returns a Store serving files from fsys.
func New(fsys fs.FS) *FS { return &FS{fsys: fsys} }

// Dir returns a Store serving files beneath the directory root.
// Filenames are slash separated and relative to root.
func Dir(root string) *FS { return New(os.DirFS(filepath.Clean(root))) }

// Open opens name. Names are cleaned before use; a name that is not a
// valid fs.FS path, or that names a directory, is reported as
// fs.ErrInvalid.
func (s *FS) Open(name string) (io.ReadCloser, error) {
	filename := path.Clean(name)
	if filename == "." || !fs.ValidPath(filename) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	f, err := s.fsys.Open(filename)
	if err != nil {
		return nil, err
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "stat")
	}
	if stat.IsDir() {
		f.Close()
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	return f, nil
}
