// Package isofuse exposes a mounted image as a read-only FUSE filesystem.
package isofuse

import (
	"context"
	"errors"
	"io"
	"syscall"
	"time"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/rstms/isofs/pkg/iso9660"
	"github.com/rstms/isofs/pkg/iso9660/block"
	"github.com/rstms/isofs/pkg/iso9660/directory"
	"github.com/rstms/isofs/pkg/logging"
)

// Node is one directory or file of the image.
type Node struct {
	fs.Inode

	entry  directory.Entry
	logger *logging.Logger
}

var (
	_ fs.NodeLookuper  = (*Node)(nil)
	_ fs.NodeReaddirer = (*Node)(nil)
	_ fs.NodeGetattrer = (*Node)(nil)
	_ fs.NodeOpener    = (*Node)(nil)
	_ fs.NodeReader    = (*Node)(nil)
)

// NewRoot returns the FUSE root for a directory of the image.
func NewRoot(root *directory.Directory, logger *logging.Logger) *Node {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Node{entry: root, logger: logger}
}

// Options configures Mount.
type Options struct {
	FsName string
	Debug  bool
	Logger *logging.Logger
	// AttrTimeout applies to both entry and attribute caching. The image never changes, so long
	// timeouts are safe.
	AttrTimeout time.Duration
}

// Mount serves the preferred root of img at mountpoint. The caller waits on the returned server
// and unmounts it when done.
func Mount(mountpoint string, img *iso9660.ISO9660, opts Options) (*fuse.Server, error) {
	if opts.FsName == "" {
		opts.FsName = img.VolumeIdentifier()
	}
	if opts.AttrTimeout == 0 {
		opts.AttrTimeout = time.Hour
	}
	root := NewRoot(img.PreferredRoot(), opts.Logger)
	timeout := opts.AttrTimeout
	return fs.Mount(mountpoint, root, &fs.Options{
		MountOptions: fuse.MountOptions{
			FsName: opts.FsName,
			Name:   "isofs",
			Debug:  opts.Debug,
		},
		EntryTimeout: &timeout,
		AttrTimeout:  &timeout,
	})
}

func (n *Node) dir() (*directory.Directory, bool) {
	d, ok := n.entry.(*directory.Directory)
	return d, ok
}

func (n *Node) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	d, ok := n.dir()
	if !ok {
		return nil, syscall.ENOTDIR
	}
	e, err := d.Find(name)
	if err != nil {
		n.logger.Error(err, "lookup failed", "name", name)
		return nil, syscall.EIO
	}
	if e == nil {
		return nil, syscall.ENOENT
	}
	n.logger.Trace("lookup", "name", name, "extent", e.Header().ExtentLocation)

	fillAttr(e, &out.Attr)
	child := &Node{entry: e, logger: n.logger}
	return n.NewInode(ctx, child, stableAttr(e)), fs.OK
}

func (n *Node) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	d, ok := n.dir()
	if !ok {
		return nil, syscall.ENOTDIR
	}
	entries, err := dirEntries(d)
	if err != nil {
		n.logger.Error(err, "readdir failed", "directory", d.Name())
		return nil, syscall.EIO
	}
	return fs.NewListDirStream(entries), fs.OK
}

func (n *Node) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	fillAttr(n.entry, &out.Attr)
	return fs.OK
}

func (n *Node) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	if _, ok := n.entry.(*directory.File); !ok {
		return nil, 0, syscall.EISDIR
	}
	if flags&(syscall.O_WRONLY|syscall.O_RDWR|syscall.O_TRUNC|syscall.O_APPEND) != 0 {
		return nil, 0, syscall.EROFS
	}
	return nil, fuse.FOPEN_KEEP_CACHE, fs.OK
}

// Read uses positional reads, so concurrent reads of one file need no handle state.
func (n *Node) Read(ctx context.Context, f fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	file, ok := n.entry.(*directory.File)
	if !ok {
		return nil, syscall.EISDIR
	}
	if off >= file.Size() {
		return fuse.ReadResultData(nil), fs.OK
	}
	c, err := file.Reader().ReadAt(dest, off)
	if err != nil && !errors.Is(err, io.EOF) {
		n.logger.Error(err, "read failed", "file", file.Name(), "offset", off)
		return nil, syscall.EIO
	}
	return fuse.ReadResultData(dest[:c]), fs.OK
}

func dirEntries(d *directory.Directory) ([]fuse.DirEntry, error) {
	var out []fuse.DirEntry
	for e, err := range d.All() {
		if err != nil {
			return nil, err
		}
		if directory.IsSpecial(e) || e.Header().FileFlags.AssociatedFile {
			continue
		}
		attr := stableAttr(e)
		out = append(out, fuse.DirEntry{Name: e.Name(), Mode: attr.Mode, Ino: attr.Ino})
	}
	return out, nil
}

func stableAttr(e directory.Entry) fs.StableAttr {
	attr := fs.StableAttr{Mode: fuse.S_IFREG, Ino: inode(e)}
	if e.IsDir() {
		attr.Mode = fuse.S_IFDIR
	}
	return attr
}

// inode numbers directories and non-empty files by their extent; empty files get one assigned.
func inode(e directory.Entry) uint64 {
	if !e.IsDir() && e.Size() == 0 {
		return 0
	}
	return uint64(e.Header().ExtentLocation)
}

func fillAttr(e directory.Entry, out *fuse.Attr) {
	out.Ino = inode(e)
	out.Size = uint64(e.Size())
	out.Blocks = (out.Size + 511) / 512
	out.Blksize = block.Size
	out.Mode = uint32(e.Mode().Perm())
	out.Nlink = 1
	if e.IsDir() {
		out.Mode |= fuse.S_IFDIR
		out.Nlink = 2
	} else {
		out.Mode |= fuse.S_IFREG
	}
	mtime := e.ModTime()
	out.SetTimes(&mtime, &mtime, &mtime)
}
