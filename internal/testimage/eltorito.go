package testimage

import (
	"bytes"
	"fmt"

	"github.com/diskfs/go-diskfs/partition/mbr"
	"github.com/rstms/isofs/pkg/iso9660/boot"
)

func blocks(n int) uint32 {
	return uint32((n + blockSize - 1) / blockSize)
}

// layoutBoot places the catalog and the boot images directly after the descriptors.
func (b *builder) layoutBoot() {
	b.image.BootCatalog = b.next
	b.next++
	for _, img := range b.bootImages() {
		b.image.BootImages = append(b.image.BootImages, b.next)
		b.next += blocks(len(img))
	}
}

func (b *builder) bootImages() [][]byte {
	images := [][]byte{b.opts.BootImage}
	if b.opts.EFIBootImage != nil {
		images = append(images, b.opts.EFIBootImage)
	}
	return images
}

func (b *builder) writeBootCatalog() {
	images := b.bootImages()
	for i, img := range images {
		copy(b.image.Bytes[int(b.image.BootImages[i])*blockSize:], img)
	}

	entry := func(i int) *boot.Entry {
		return &boot.Entry{
			Bootable:    true,
			Emulation:   boot.NoEmulation,
			LoadSegment: 0x07c0,
			SectorCount: uint16((len(images[i]) + 511) / 512),
			LoadRBA:     b.image.BootImages[i],
		}
	}

	catalog := b.image.Bytes[int(b.image.BootCatalog)*blockSize:]
	off := copy(catalog, ValidationEntry(boot.BIOS, "ISOFS TESTIMAGE"))
	off += copy(catalog[off:], BootEntry(entry(0)))
	if len(images) > 1 {
		off += copy(catalog[off:], SectionHeader(true, boot.EFI, 1, "UEFI"))
		e := entry(1)
		e.LoadSegment = 0
		copy(catalog[off:], BootEntry(e))
	}
}

// HybridPartitionType is the type of the partition covering the whole image in a hybrid MBR.
const HybridPartitionType mbr.Type = 0x17

func (b *builder) writeHybridMBR() error {
	parts := []*mbr.Partition{{
		Bootable: true,
		Type:     HybridPartitionType,
		Start:    0,
		Size:     uint32(len(b.image.Bytes) / 512),
	}}
	if b.opts.BootRecord && b.opts.EFIBootImage != nil {
		parts = append(parts, &mbr.Partition{
			Type:  mbr.EFISystem,
			Start: b.image.BootImages[1] * (blockSize / 512),
			Size:  uint32((len(b.opts.EFIBootImage) + 511) / 512),
		})
	}
	table := &mbr.Table{Partitions: parts, LogicalSectorSize: 512, PhysicalSectorSize: 512}
	return table.Write(&bytesFile{b: b.image.Bytes}, int64(len(b.image.Bytes)))
}

// bytesFile is a fixed size in-memory file.
type bytesFile struct {
	b []byte
}

func (f *bytesFile) ReadAt(p []byte, off int64) (int, error) {
	return bytes.NewReader(f.b).ReadAt(p, off)
}

func (f *bytesFile) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > int64(len(f.b)) {
		return 0, fmt.Errorf("write of %d bytes at %d is outside the image", len(p), off)
	}
	return copy(f.b[off:], p), nil
}

func (f *bytesFile) Seek(offset int64, whence int) (int64, error) {
	return bytes.NewReader(f.b).Seek(offset, whence)
}
