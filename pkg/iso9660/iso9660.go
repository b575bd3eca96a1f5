// Package iso9660 mounts ISO 9660 images, with optional Joliet names, and resolves paths in them.
package iso9660

import (
	"io"
	"strings"

	"github.com/rstms/isofs/pkg/consts"
	"github.com/rstms/isofs/pkg/iso9660/block"
	"github.com/rstms/isofs/pkg/iso9660/descriptor"
	"github.com/rstms/isofs/pkg/iso9660/directory"
	"github.com/rstms/isofs/pkg/iso9660/parser"
	"github.com/rstms/isofs/pkg/logging"
	"github.com/rstms/isofs/pkg/option"
)

// Mount reads the volume descriptor set of the image behind r. Reads are positional, so the
// mounted filesystem may be used from several goroutines when r allows concurrent ReadAt calls.
func Mount(r io.ReaderAt, opts ...option.OpenOption) (*ISO9660, error) {
	return MountReader(block.NewReaderAt(r), opts...)
}

// MountReader mounts an image from any block source.
func MountReader(r block.Reader, opts ...option.OpenOption) (*ISO9660, error) {
	openOptions := option.Apply(opts...)
	logger := openOptions.Logger

	if logger.Enabled(logging.LEVEL_TRACE) {
		r = block.NewTraced(r, logger)
	}

	set, err := parser.NewParser(r, openOptions).ScanVolumeDescriptors()
	if err != nil {
		return nil, err
	}

	iso := &ISO9660{
		reader:      r,
		openOptions: openOptions,
		set:         set,
		root:        set.Primary.RootDirectory(r),
	}
	if set.Supplementary != nil {
		iso.jolietRoot = set.Supplementary.RootDirectory(r)
	}

	logger.Debug("mounted image",
		"volume", set.Primary.VolumeIdentifier,
		"joliet", iso.HasJoliet(),
		"boot_records", len(set.BootRecords))
	return iso, nil
}

// ISO9660 is a mounted image. It holds the descriptor tables and the root directories; every
// directory and file derived from it reads through the same block reader.
type ISO9660 struct {
	reader      block.Reader
	openOptions *option.OpenOptions
	set         *descriptor.VolumeDescriptorSet
	root        *directory.Directory
	jolietRoot  *directory.Directory
}

// Root returns the root directory of the Primary descriptor.
func (iso *ISO9660) Root() *directory.Directory {
	return iso.root
}

// JolietRoot returns the root directory of the Supplementary descriptor, or nil.
func (iso *ISO9660) JolietRoot() *directory.Directory {
	return iso.jolietRoot
}

// PreferredRoot is the root that Open tries first.
func (iso *ISO9660) PreferredRoot() *directory.Directory {
	return iso.roots()[0]
}

func (iso *ISO9660) Primary() *descriptor.PrimaryVolumeDescriptor {
	return iso.set.Primary
}

func (iso *ISO9660) Supplementary() *descriptor.SupplementaryVolumeDescriptor {
	return iso.set.Supplementary
}

func (iso *ISO9660) BootRecords() []*descriptor.BootRecordDescriptor {
	return iso.set.BootRecords
}

// VolumeIdentifier returns the volume identifier of the Primary descriptor.
func (iso *ISO9660) VolumeIdentifier() string {
	return iso.set.Primary.VolumeIdentifier
}

// HasJoliet returns true if a Joliet Supplementary descriptor was mounted.
func (iso *ISO9660) HasJoliet() bool {
	return iso.set.Supplementary != nil && iso.set.Supplementary.HasJoliet()
}

// JolietLevel returns 1, 2 or 3, or 0 without Joliet.
func (iso *ISO9660) JolietLevel() int {
	if iso.set.Supplementary == nil {
		return 0
	}
	return iso.set.Supplementary.CharacterEncoding.JolietLevel()
}

func (iso *ISO9660) roots() []*directory.Directory {
	if iso.jolietRoot == nil {
		return []*directory.Directory{iso.root}
	}
	if iso.openOptions.PreferJoliet {
		return []*directory.Directory{iso.jolietRoot, iso.root}
	}
	return []*directory.Directory{iso.root, iso.jolietRoot}
}

// Open resolves a slash separated path. Empty segments are ignored, so "", "/" and "//" all
// name the root. The whole path is resolved against one root at a time, the preferred one first;
// a path that does not exist under any root is (nil, nil), as is a path that descends through a
// file.
func (iso *ISO9660) Open(path string) (directory.Entry, error) {
	segments := splitPath(path)
	for _, root := range iso.roots() {
		iso.openOptions.Logger.Debug("resolving path", "path", path, "encoding", root.Encoding().String())
		e, err := resolve(root, segments)
		if err != nil {
			return nil, err
		}
		if e != nil {
			return e, nil
		}
	}
	return nil, nil
}

func splitPath(path string) []string {
	var segments []string
	for _, s := range strings.Split(path, consts.PATH_SEPARATOR) {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

func resolve(root *directory.Directory, segments []string) (directory.Entry, error) {
	var current directory.Entry = root
	for _, name := range segments {
		dir, ok := current.(*directory.Directory)
		if !ok {
			return nil, nil
		}
		next, err := dir.Find(name)
		if err != nil || next == nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}
