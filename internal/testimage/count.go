package testimage

import (
	"github.com/rstms/isofs/pkg/iso9660/directory"
)

// Count walks the tree below root and returns the number of directories and files,
// not counting root itself or any "." and ".." records.
func Count(root *directory.Directory) (folders, files int, err error) {
	// Declared before assignment so the closure can recurse.
	var walk func(d *directory.Directory) error

	walk = func(d *directory.Directory) error {
		for e, err := range d.All() {
			if err != nil {
				return err
			}
			if directory.IsSpecial(e) {
				continue
			}
			if sub, ok := e.(*directory.Directory); ok {
				folders++
				if err := walk(sub); err != nil {
					return err
				}
				continue
			}
			files++
		}
		return nil
	}

	err = walk(root)
	return folders, files, err
}
