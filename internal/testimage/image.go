// Package testimage builds small, deterministic ISO 9660 images in memory for tests.
//
// Images carry a Primary descriptor and, optionally, a Joliet Supplementary descriptor that
// describes the same tree with UCS-2 names. File data is shared by both trees.
package testimage

import (
	"fmt"
	"strings"
	"time"

	"github.com/rstms/isofs/pkg/consts"
	"github.com/rstms/isofs/pkg/iso9660/directory"
	"github.com/rstms/isofs/pkg/iso9660/encoding"
)

const blockSize = consts.ISO9660_SECTOR_SIZE

// Node is a file or directory of the image being built.
type Node struct {
	Name string
	// Identifier replaces the generated Primary identifier when set, e.g. to omit ";1".
	Identifier string
	Dir        bool
	Data       []byte
	Children   []*Node
	Associated bool
	ModTime    time.Time
}

// Dir returns a directory node.
func Dir(name string, children ...*Node) *Node {
	return &Node{Name: name, Dir: true, Children: children}
}

// File returns a file node.
func File(name string, data []byte) *Node {
	return &Node{Name: name, Data: data}
}

type Options struct {
	VolumeIdentifier string
	// Joliet adds a level 3 Supplementary descriptor for the same tree.
	Joliet bool
	// BootRecord adds an El Torito boot record descriptor before the Primary, and a boot catalog
	// and boot image after the descriptors.
	BootRecord bool
	// BootImage is the no emulation image of the default entry; nil means DefaultBootImage.
	BootImage []byte
	// EFIBootImage, when set, is recorded in a final EFI section of the catalog.
	EFIBootImage []byte
	// HybridMBR writes an isohybrid style partition table into the system area: a bootable
	// partition over the whole image and, with EFIBootImage, an EFI system partition over it.
	HybridMBR bool
	// UnknownDescriptor adds a partition (type 3) descriptor before the terminator.
	UnknownDescriptor bool
	// OmitPrimary leaves the Primary descriptor out.
	OmitPrimary bool
	// LogicalBlockSize is written into the descriptors; 0 means 2048. Layout always uses 2048.
	LogicalBlockSize uint16
	// Time stamps every record and descriptor; zero means 2024-03-01 12:00 UTC.
	Time time.Time
}

// Image is a built image and the extent locations of its directories and files.
type Image struct {
	Bytes []byte
	// Primary and Joliet map a directory path ("" for the root) to its extent LBA.
	Primary map[string]uint32
	Joliet  map[string]uint32
	// Files maps a file path to its extent LBA.
	Files map[string]uint32
	// BootCatalog is the catalog LBA and BootImages the image LBAs in catalog order.
	BootCatalog uint32
	BootImages  []uint32
}

// DefaultBootImage is the boot image recorded when Options.BootImage is nil.
var DefaultBootImage = []byte(strings.Repeat("BOOT", blockSize/4))

type dirLayout struct {
	node   *Node
	path   string
	lba    uint32
	size   uint32
	parent *dirLayout
}

type builder struct {
	opts     Options
	next     uint32
	fileLBAs map[*Node]uint32
	image    *Image
}

// Build lays out and encodes the tree rooted at root.
func Build(root *Node, opts Options) (*Image, error) {
	if opts.VolumeIdentifier == "" {
		opts.VolumeIdentifier = "TESTIMAGE"
	}
	if opts.LogicalBlockSize == 0 {
		opts.LogicalBlockSize = blockSize
	}
	if opts.Time.IsZero() {
		opts.Time = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	}
	if opts.BootRecord && opts.BootImage == nil {
		opts.BootImage = DefaultBootImage
	}

	b := &builder{
		opts:     opts,
		fileLBAs: map[*Node]uint32{},
		image: &Image{
			Primary: map[string]uint32{},
			Joliet:  map[string]uint32{},
			Files:   map[string]uint32{},
		},
	}

	descriptors := 1 // terminator
	if opts.BootRecord {
		descriptors++
	}
	if !opts.OmitPrimary {
		descriptors++
	}
	if opts.Joliet {
		descriptors++
	}
	if opts.UnknownDescriptor {
		descriptors++
	}
	b.next = consts.ISO9660_SYSTEM_AREA_SECTORS + uint32(descriptors)

	if opts.BootRecord {
		b.layoutBoot()
	}

	var primary, joliet []*dirLayout
	b.layout(root, "", nil, false, &primary)
	if opts.Joliet {
		b.layout(root, "", nil, true, &joliet)
	}
	b.layoutFiles(root, "")

	b.image.Bytes = make([]byte, int(b.next)*blockSize)
	for _, d := range primary {
		b.image.Primary[d.path] = d.lba
		if err := b.writeDirectory(d, primary, false); err != nil {
			return nil, err
		}
	}
	for _, d := range joliet {
		b.image.Joliet[d.path] = d.lba
		if err := b.writeDirectory(d, joliet, true); err != nil {
			return nil, err
		}
	}
	for n, lba := range b.fileLBAs {
		copy(b.image.Bytes[int(lba)*blockSize:], n.Data)
	}

	if b.opts.BootRecord {
		b.writeBootCatalog()
	}
	if err := b.writeDescriptors(primary, joliet); err != nil {
		return nil, err
	}
	if opts.HybridMBR {
		if err := b.writeHybridMBR(); err != nil {
			return nil, fmt.Errorf("failed to write hybrid MBR: %w", err)
		}
	}
	return b.image, nil
}

func recordSize(idLen int) int {
	size := consts.ISO9660_DIR_RECORD_HEADER_SIZE + idLen
	if size%2 != 0 {
		size++
	}
	return size
}

func (b *builder) identifier(n *Node, joliet bool) ([]byte, error) {
	if joliet {
		name := n.Name
		if !n.Dir {
			name += ";1"
		}
		return encoding.EncodeUCS2BigEndian(name)
	}
	if n.Identifier != "" {
		return []byte(n.Identifier), nil
	}
	name := strings.ToUpper(n.Name)
	if !n.Dir {
		if !strings.Contains(name, ".") {
			name += "."
		}
		name += ";1"
	}
	return []byte(name), nil
}

// packRecords returns the extent size needed for records of the given sizes. Records that
// would cross a block boundary start the next block instead.
func packRecords(sizes []int) uint32 {
	blocks, used := 1, 0
	for _, s := range sizes {
		if used+s > blockSize {
			blocks++
			used = 0
		}
		used += s
	}
	return uint32(blocks * blockSize)
}

func (b *builder) layout(n *Node, path string, parent *dirLayout, joliet bool, out *[]*dirLayout) {
	sizes := []int{recordSize(1), recordSize(1)}
	for _, c := range n.Children {
		id, _ := b.identifier(c, joliet)
		sizes = append(sizes, recordSize(len(id)))
	}
	d := &dirLayout{node: n, path: path, lba: b.next, size: packRecords(sizes), parent: parent}
	b.next += d.size / blockSize
	*out = append(*out, d)

	for _, c := range n.Children {
		if c.Dir {
			b.layout(c, joinPath(path, c.Name), d, joliet, out)
		}
	}
}

func (b *builder) layoutFiles(n *Node, path string) {
	for _, c := range n.Children {
		p := joinPath(path, c.Name)
		if c.Dir {
			b.layoutFiles(c, p)
			continue
		}
		b.fileLBAs[c] = b.next
		b.image.Files[p] = b.next
		b.next += uint32((len(c.Data) + blockSize - 1) / blockSize)
	}
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}

func (b *builder) modTime(n *Node) time.Time {
	if n.ModTime.IsZero() {
		return b.opts.Time
	}
	return n.ModTime
}

func (b *builder) writeDirectory(d *dirLayout, all []*dirLayout, joliet bool) error {
	byNode := map[*Node]*dirLayout{}
	for _, l := range all {
		byNode[l.node] = l
	}

	parent := d.parent
	if parent == nil {
		parent = d
	}

	var records [][]byte
	self, err := b.record(d.lba, d.size, directory.FileFlags{Directory: true}, d.node, []byte{0x00})
	if err != nil {
		return err
	}
	up, err := b.record(parent.lba, parent.size, directory.FileFlags{Directory: true}, parent.node, []byte{0x01})
	if err != nil {
		return err
	}
	records = append(records, self, up)

	for _, c := range d.node.Children {
		id, err := b.identifier(c, joliet)
		if err != nil {
			return fmt.Errorf("failed to encode identifier %q: %w", c.Name, err)
		}
		var rec []byte
		if c.Dir {
			cl := byNode[c]
			rec, err = b.record(cl.lba, cl.size, directory.FileFlags{Directory: true}, c, id)
		} else {
			rec, err = b.record(b.fileLBAs[c], uint32(len(c.Data)), directory.FileFlags{AssociatedFile: c.Associated}, c, id)
		}
		if err != nil {
			return err
		}
		records = append(records, rec)
	}

	offset := int(d.lba) * blockSize
	used := 0
	for _, rec := range records {
		if used+len(rec) > blockSize {
			offset += blockSize - used
			used = 0
		}
		copy(b.image.Bytes[offset:], rec)
		offset += len(rec)
		used += len(rec)
	}
	return nil
}

func (b *builder) record(lba, size uint32, flags directory.FileFlags, n *Node, id []byte) ([]byte, error) {
	h := directory.Header{
		ExtentLocation:       lba,
		ExtentLength:         size,
		RecordingDateAndTime: b.modTime(n),
		FileFlags:            flags,
		VolumeSequenceNumber: 1,
	}
	return Record(h, id)
}
