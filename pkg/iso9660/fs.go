package iso9660

import (
	"errors"
	"io"
	"io/fs"
	"slices"
	"strings"

	"github.com/rstms/isofs/pkg/iso9660/directory"
)

// FS returns a read-only io/fs view of the image. Names resolve the same way as Open.
func (iso *ISO9660) FS() fs.FS {
	return &isoFS{iso: iso}
}

type isoFS struct {
	iso *ISO9660
}

var (
	_ fs.ReadDirFS  = (*isoFS)(nil)
	_ fs.StatFS     = (*isoFS)(nil)
	_ fs.ReadFileFS = (*isoFS)(nil)
)

func (f *isoFS) lookup(op, name string) (directory.Entry, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}
	if name == "." {
		return f.iso.PreferredRoot(), nil
	}
	e, err := f.iso.Open(name)
	if err != nil {
		return nil, &fs.PathError{Op: op, Path: name, Err: err}
	}
	if e == nil {
		return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
	}
	return e, nil
}

func (f *isoFS) Open(name string) (fs.File, error) {
	e, err := f.lookup("open", name)
	if err != nil {
		return nil, err
	}
	switch entry := e.(type) {
	case *directory.Directory:
		return &openDir{dir: entry, name: name}, nil
	case *directory.File:
		return &openFile{Reader: entry.Reader(), file: entry}, nil
	}
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
}

func (f *isoFS) Stat(name string) (fs.FileInfo, error) {
	return f.lookup("stat", name)
}

// ReadDir returns the entries of the named directory sorted by name.
func (f *isoFS) ReadDir(name string) ([]fs.DirEntry, error) {
	e, err := f.lookup("readdir", name)
	if err != nil {
		return nil, err
	}
	dir, ok := e.(*directory.Directory)
	if !ok {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: errors.New("not a directory")}
	}
	entries, err := dirEntries(dir)
	if err != nil {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: err}
	}
	slices.SortFunc(entries, func(a, b fs.DirEntry) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return entries, nil
}

func (f *isoFS) ReadFile(name string) ([]byte, error) {
	e, err := f.lookup("readfile", name)
	if err != nil {
		return nil, err
	}
	file, ok := e.(*directory.File)
	if !ok {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: errors.New("is a directory")}
	}
	data := make([]byte, file.Size())
	if _, err := io.ReadFull(file.Reader(), data); err != nil {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: err}
	}
	return data, nil
}

func dirEntries(dir *directory.Directory) ([]fs.DirEntry, error) {
	var out []fs.DirEntry
	for e, err := range dir.All() {
		if err != nil {
			return nil, err
		}
		if directory.IsSpecial(e) {
			continue
		}
		out = append(out, fs.FileInfoToDirEntry(e))
	}
	return out, nil
}

type openFile struct {
	*directory.Reader
	file *directory.File
}

func (f *openFile) Stat() (fs.FileInfo, error) { return f.file, nil }
func (f *openFile) Close() error               { return nil }

type openDir struct {
	dir     *directory.Directory
	name    string
	entries []fs.DirEntry
	loaded  bool
	offset  int
}

func (d *openDir) Stat() (fs.FileInfo, error) { return d.dir, nil }
func (d *openDir) Close() error               { return nil }

func (d *openDir) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.name, Err: errors.New("is a directory")}
}

func (d *openDir) ReadDir(n int) ([]fs.DirEntry, error) {
	if !d.loaded {
		entries, err := dirEntries(d.dir)
		if err != nil {
			return nil, &fs.PathError{Op: "readdir", Path: d.name, Err: err}
		}
		d.entries, d.loaded = entries, true
	}

	rest := d.entries[d.offset:]
	if n <= 0 {
		d.offset = len(d.entries)
		return rest, nil
	}
	if len(rest) == 0 {
		return nil, io.EOF
	}
	if n > len(rest) {
		n = len(rest)
	}
	d.offset += n
	return rest[:n], nil
}
