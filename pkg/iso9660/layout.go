package iso9660

import (
	"fmt"

	"github.com/diskfs/go-diskfs/partition/mbr"
	"github.com/rstms/isofs/pkg/iso9660/block"
	"github.com/rstms/isofs/pkg/iso9660/boot"
	"github.com/rstms/isofs/pkg/iso9660/descriptor"
	"github.com/rstms/isofs/pkg/iso9660/directory"
	"github.com/rstms/isofs/pkg/iso9660/info"
	"github.com/rstms/isofs/pkg/iso9660/pathtable"
	"github.com/rstms/isofs/pkg/iso9660/systemarea"
)

// Layout reports where each structure of the image is recorded: the system area and its hybrid
// MBR partitions, the volume descriptors, the path tables, the boot catalog and its images, and
// the directory and file extents of both trees.
func (iso *ISO9660) Layout() (*info.ISOLayout, error) {
	layout := info.NewISOLayout()

	sa, err := systemarea.Read(iso.reader, iso.openOptions.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to read system area: %w", err)
	}
	layout.SystemAreaOffset = sa.Offset
	layout.SystemAreaLength = sa.Length
	if sa.MBR != nil {
		for n, p := range sa.MBR.Partitions {
			if p.Type == mbr.Empty {
				continue
			}
			layout.AddPartition(n+1, boot.PartitionTypeName(p.Type), p.Bootable, p.GetStart(), p.GetSize())
		}
	}

	for _, loc := range iso.set.Locations {
		layout.AddVolumeDescriptor(loc.Type.String(), int(loc.Version), block.Offset(loc.LBA), block.Size)
	}

	if err := iso.addPathTables(layout, "primary", &iso.set.Primary.Table); err != nil {
		return nil, err
	}
	if sup := iso.set.Supplementary; sup != nil {
		if err := iso.addPathTables(layout, "joliet", &sup.Table); err != nil {
			return nil, err
		}
	}

	catalog, err := iso.BootCatalog()
	if err != nil {
		return nil, err
	}
	if catalog != nil {
		layout.SetBootCatalog(catalog.Platform.String(), len(catalog.Entries), block.Offset(uint64(catalog.LBA)), catalog.Length)
		for i, e := range catalog.Entries {
			if e.LoadRBA == 0 {
				continue
			}
			layout.AddBootImage(e.FileName(i), e.Platform.String(), e.Bootable, block.Offset(uint64(e.LoadRBA)), e.Size())
		}
	}

	trees := []struct {
		source string
		root   *directory.Directory
	}{
		{"primary", iso.root},
		{"joliet", iso.jolietRoot},
	}
	for _, tree := range trees {
		if tree.root == nil {
			continue
		}
		layout.AddDirectoryExtent("/", tree.source, extentOffset(tree.root), tree.root.Size())
		err := iso.Walk(tree.root, func(p string, e directory.Entry) error {
			switch {
			case e.IsDir():
				layout.AddDirectoryExtent("/"+p, tree.source, extentOffset(e), e.Size())
			case e.Size() > 0:
				layout.AddFileExtent("/"+p, tree.source, extentOffset(e), e.Size())
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s tree: %w", tree.source, err)
		}
	}
	return layout, nil
}

func extentOffset(e directory.Entry) int64 {
	return block.Offset(uint64(e.Header().ExtentLocation))
}

func (iso *ISO9660) addPathTables(layout *info.ISOLayout, source string, t *descriptor.Table) error {
	if t.PathTableSize == 0 {
		return nil
	}
	tables := []struct {
		name         string
		lba          uint32
		littleEndian bool
	}{
		{"type L path table", t.LocationOfTypeLPathTable, true},
		{"optional type L path table", t.LocationOfOptionalTypeLPathTable, true},
		{"type M path table", t.LocationOfTypeMPathTable, false},
		{"optional type M path table", t.LocationOfOptionalTypeMPathTable, false},
	}
	for _, pt := range tables {
		if pt.lba == 0 {
			continue
		}
		name := source + " " + pt.name
		table, err := pathtable.Read(iso.reader, pt.lba, t.PathTableSize, pt.littleEndian, t.CharacterEncoding)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		layout.AddPathTable(name, block.Offset(uint64(pt.lba)), int64(t.PathTableSize), t.CharacterEncoding.String(), len(table.Records))
	}
	return nil
}
