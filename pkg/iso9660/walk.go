package iso9660

import (
	"errors"
	"io/fs"
	"path"

	"github.com/rstms/isofs/pkg/iso9660/directory"
	"github.com/rstms/isofs/pkg/iso9660/isoerr"
)

// WalkFunc is called for every entry below the walk root with its slash separated path relative
// to the root. Returning fs.SkipDir from a directory skips its contents; from a file it skips the
// rest of the containing directory. fs.SkipAll stops the walk without error.
type WalkFunc func(path string, e directory.Entry) error

// Walk visits the tree below root depth first in on-disk order. The "." and ".." records are
// not visited. A nil root walks the preferred root. A directory whose extent is one of its own
// ancestors ends the walk with an InvalidFilesystem error.
func (iso *ISO9660) Walk(root *directory.Directory, fn WalkFunc) error {
	if root == nil {
		root = iso.PreferredRoot()
	}
	ancestors := map[uint32]bool{root.Header().ExtentLocation: true}
	err := walk(root, "", ancestors, fn)
	if errors.Is(err, fs.SkipDir) || errors.Is(err, fs.SkipAll) {
		return nil
	}
	return err
}

func walk(dir *directory.Directory, prefix string, ancestors map[uint32]bool, fn WalkFunc) error {
	for e, err := range dir.All() {
		if err != nil {
			return err
		}
		if directory.IsSpecial(e) {
			continue
		}

		p := path.Join(prefix, e.Name())
		ferr := fn(p, e)
		sub, isDir := e.(*directory.Directory)
		switch {
		case errors.Is(ferr, fs.SkipDir) && isDir:
			continue
		case ferr != nil:
			// SkipDir from a file ends this directory; the caller continues with its siblings.
			return ferr
		case isDir:
			lba := sub.Header().ExtentLocation
			if ancestors[lba] {
				return isoerr.InvalidFilesystem("directory cycle at block %d (%s)", lba, p)
			}
			ancestors[lba] = true
			err := walk(sub, p, ancestors, fn)
			delete(ancestors, lba)
			if err != nil {
				if errors.Is(err, fs.SkipDir) {
					continue
				}
				return err
			}
		}
	}
	return nil
}
