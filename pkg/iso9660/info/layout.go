// Package info describes where the structures of an image are recorded, for tools like isoview.
package info

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/fatih/color"
)

type DescriptorInfo struct {
	DescriptorType    string `json:"descriptor_type"`
	DescriptorVersion int    `json:"descriptor_version"`
	DescriptorOffset  int64  `json:"descriptor_offset"`
	DescriptorLength  int64  `json:"descriptor_length"`
}

type PathTableInfo struct {
	PathTableSource   string `json:"path_table_source"`
	PathTableOffset   int64  `json:"path_table_offset"`
	PathTableLength   int64  `json:"path_table_length"`
	PathTableEncoding string `json:"path_table_encoding"`
	PathTableRecords  int    `json:"path_table_records"`
}

type DirectoryExtentInfo struct {
	DirectoryExtentIdentifier string `json:"directory_extent_identifier"`
	DirectoryExtentSource     string `json:"directory_extent_source"`
	DirectoryExtentOffset     int64  `json:"directory_extent_offset"`
	DirectoryExtentLength     int64  `json:"directory_extent_length"`
}

type FileExtentInfo struct {
	FileIdentifier string `json:"file_identifier"`
	FileSource     string `json:"file_source"`
	FileOffset     int64  `json:"file_offset"`
	FileLength     int64  `json:"file_length"`
}

type PartitionInfo struct {
	PartitionNumber   int    `json:"partition_number"`
	PartitionType     string `json:"partition_type"`
	PartitionBootable bool   `json:"partition_bootable"`
	PartitionOffset   int64  `json:"partition_offset"`
	PartitionLength   int64  `json:"partition_length"`
}

type BootCatalogInfo struct {
	BootCatalogPlatform string `json:"boot_catalog_platform"`
	BootCatalogEntries  int    `json:"boot_catalog_entries"`
	BootCatalogOffset   int64  `json:"boot_catalog_offset"`
	BootCatalogLength   int64  `json:"boot_catalog_length"`
}

type BootImageInfo struct {
	BootImageName     string `json:"boot_image_name"`
	BootImagePlatform string `json:"boot_image_platform"`
	BootImageBootable bool   `json:"boot_image_bootable"`
	BootImageOffset   int64  `json:"boot_image_offset"`
	BootImageLength   int64  `json:"boot_image_length"`
}

func NewISOLayout() *ISOLayout {
	return &ISOLayout{
		VolumeSetStart:    int64(^uint64(0) >> 1),
		VolumeSetEnd:      0,
		VolumeDescriptors: make([]*DescriptorInfo, 0),
		Partitions:        make([]*PartitionInfo, 0),
		PathTables:        make([]*PathTableInfo, 0),
		BootImages:        make([]*BootImageInfo, 0),
		DirectoryExtents:  make([]*DirectoryExtentInfo, 0),
		FileExtents:       make([]*FileExtentInfo, 0),
	}
}

type ISOLayout struct {
	SystemAreaOffset  int64                  `json:"system_area_offset"`
	SystemAreaLength  int64                  `json:"system_area_length"`
	Partitions        []*PartitionInfo       `json:"partitions"`
	VolumeSetStart    int64                  `json:"volume_set_start"`
	VolumeSetEnd      int64                  `json:"volume_set_end"`
	VolumeDescriptors []*DescriptorInfo      `json:"volume_descriptors"`
	PathTables        []*PathTableInfo       `json:"path_tables"`
	BootCatalog       *BootCatalogInfo       `json:"boot_catalog,omitempty"`
	BootImages        []*BootImageInfo       `json:"boot_images"`
	DirectoryExtents  []*DirectoryExtentInfo `json:"directory_extents"`
	FileExtents       []*FileExtentInfo      `json:"file_extents"`
}

// AddVolumeDescriptor appends a new Volume Descriptor and keeps the list sorted by DescriptorOffset
func (i *ISOLayout) AddVolumeDescriptor(descriptorType string, descriptorVersion int, descriptorOffset, descriptorLength int64) {
	if descriptorOffset < i.VolumeSetStart {
		i.VolumeSetStart = descriptorOffset
	}
	if descriptorOffset+descriptorLength > i.VolumeSetEnd {
		i.VolumeSetEnd = descriptorOffset + descriptorLength
	}

	i.VolumeDescriptors = append(i.VolumeDescriptors, &DescriptorInfo{
		DescriptorType:    descriptorType,
		DescriptorVersion: descriptorVersion,
		DescriptorOffset:  descriptorOffset,
		DescriptorLength:  descriptorLength,
	})

	slices.SortFunc(i.VolumeDescriptors, func(a, b *DescriptorInfo) int {
		return compare(a.DescriptorOffset, b.DescriptorOffset)
	})
}

// AddPathTable appends a new Path Table and keeps the list sorted by PathTableOffset
func (i *ISOLayout) AddPathTable(pathTableSource string, pathTableOffset, pathTableLength int64, pathTableEncoding string, pathTableRecords int) {
	i.PathTables = append(i.PathTables, &PathTableInfo{
		PathTableSource:   pathTableSource,
		PathTableOffset:   pathTableOffset,
		PathTableLength:   pathTableLength,
		PathTableEncoding: pathTableEncoding,
		PathTableRecords:  pathTableRecords,
	})

	slices.SortFunc(i.PathTables, func(a, b *PathTableInfo) int {
		return compare(a.PathTableOffset, b.PathTableOffset)
	})
}

// AddPartition appends a partition of the hybrid MBR found in the system area.
func (i *ISOLayout) AddPartition(number int, partitionType string, bootable bool, offset, length int64) {
	i.Partitions = append(i.Partitions, &PartitionInfo{
		PartitionNumber:   number,
		PartitionType:     partitionType,
		PartitionBootable: bootable,
		PartitionOffset:   offset,
		PartitionLength:   length,
	})
}

// SetBootCatalog records the location of the El Torito boot catalog.
func (i *ISOLayout) SetBootCatalog(platform string, entries int, offset, length int64) {
	i.BootCatalog = &BootCatalogInfo{
		BootCatalogPlatform: platform,
		BootCatalogEntries:  entries,
		BootCatalogOffset:   offset,
		BootCatalogLength:   length,
	}
}

// AddBootImage appends a boot image and keeps the list sorted by BootImageOffset
func (i *ISOLayout) AddBootImage(name, platform string, bootable bool, offset, length int64) {
	i.BootImages = append(i.BootImages, &BootImageInfo{
		BootImageName:     name,
		BootImagePlatform: platform,
		BootImageBootable: bootable,
		BootImageOffset:   offset,
		BootImageLength:   length,
	})

	slices.SortStableFunc(i.BootImages, func(a, b *BootImageInfo) int {
		return compare(a.BootImageOffset, b.BootImageOffset)
	})
}

// AddDirectoryExtent appends a new DirectoryExtent and keeps the list sorted by DirectoryExtentOffset
func (i *ISOLayout) AddDirectoryExtent(identifier, source string, offset, length int64) {
	for _, extent := range i.DirectoryExtents {
		if extent.DirectoryExtentOffset == offset && extent.DirectoryExtentLength == length {
			return
		}
	}

	i.DirectoryExtents = append(i.DirectoryExtents, &DirectoryExtentInfo{
		DirectoryExtentIdentifier: identifier,
		DirectoryExtentSource:     source,
		DirectoryExtentOffset:     offset,
		DirectoryExtentLength:     length,
	})

	slices.SortFunc(i.DirectoryExtents, func(a, b *DirectoryExtentInfo) int {
		return compare(a.DirectoryExtentOffset, b.DirectoryExtentOffset)
	})
}

// AddFileExtent appends a file extent unless one with the same location was already added. The
// Primary and Joliet trees share file data, so the first tree walked names the extent.
func (i *ISOLayout) AddFileExtent(identifier, source string, offset, length int64) {
	for _, extent := range i.FileExtents {
		if extent.FileOffset == offset && extent.FileLength == length {
			return
		}
	}

	i.FileExtents = append(i.FileExtents, &FileExtentInfo{
		FileIdentifier: identifier,
		FileSource:     source,
		FileOffset:     offset,
		FileLength:     length,
	})

	slices.SortFunc(i.FileExtents, func(a, b *FileExtentInfo) int {
		return compare(a.FileOffset, b.FileOffset)
	})
}

func compare(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// PrettyJSON returns a pretty-printed JSON representation of the ISO layout.
func (i *ISOLayout) PrettyJSON() string {
	data, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error generating JSON: %v", err)
	}
	return string(data)
}

// Print writes the ISO layout details to w in the order they occur in the image.
//   - `verbose` adds one line per file extent.
//   - `useColor` controls whether colored output is used.
//   - `useHexOffset` prints offsets in hexadecimal if true.
func (i *ISOLayout) Print(w io.Writer, verbose bool, useColor bool, useHexOffset bool) {
	type layoutItem struct {
		Offset   int64
		Length   int64
		Detail   string
		Category string
	}

	var items []layoutItem

	colorMap := map[string]func(a ...interface{}) string{
		"System Area":       color.New(color.FgBlue, color.Bold).SprintFunc(),
		"Partition":         color.New(color.FgBlue).SprintFunc(),
		"Volume Descriptor": color.New(color.FgYellow, color.Bold).SprintFunc(),
		"Path Table":        color.New(color.FgMagenta, color.Bold).SprintFunc(),
		"Boot Catalog":      color.New(color.FgRed, color.Bold).SprintFunc(),
		"Boot Image":        color.New(color.FgRed).SprintFunc(),
		"Directory Extent":  color.New(color.FgGreen, color.Bold).SprintFunc(),
		"File Extent":       color.New(color.FgCyan, color.Bold).SprintFunc(),
	}
	offsetColor := color.New(color.FgGreen).SprintFunc()
	lengthColor := color.New(color.FgGreen).SprintFunc()
	headerColor := color.New(color.FgCyan, color.Bold).SprintFunc()

	if !useColor {
		plain := func(a ...interface{}) string { return fmt.Sprint(a...) }
		for key := range colorMap {
			colorMap[key] = plain
		}
		offsetColor, lengthColor, headerColor = plain, plain, plain
	}

	systemArea := "System Area"
	if len(i.Partitions) > 0 {
		systemArea = fmt.Sprintf("System Area (MBR: %d partitions)", len(i.Partitions))
	}
	items = append(items, layoutItem{
		Offset:   i.SystemAreaOffset,
		Length:   i.SystemAreaLength,
		Detail:   systemArea,
		Category: "System Area",
	})

	for _, p := range i.Partitions {
		detail := fmt.Sprintf("Partition %d (%s)", p.PartitionNumber, p.PartitionType)
		if p.PartitionBootable {
			detail += " bootable"
		}
		items = append(items, layoutItem{
			Offset:   p.PartitionOffset,
			Length:   p.PartitionLength,
			Detail:   detail,
			Category: "Partition",
		})
	}

	for _, vd := range i.VolumeDescriptors {
		items = append(items, layoutItem{
			Offset:   vd.DescriptorOffset,
			Length:   vd.DescriptorLength,
			Detail:   fmt.Sprintf("%s (Version: %d)", vd.DescriptorType, vd.DescriptorVersion),
			Category: "Volume Descriptor",
		})
	}

	for _, pt := range i.PathTables {
		items = append(items, layoutItem{
			Offset:   pt.PathTableOffset,
			Length:   pt.PathTableLength,
			Detail:   fmt.Sprintf("%s (Encoding: %s, Records: %d)", pt.PathTableSource, pt.PathTableEncoding, pt.PathTableRecords),
			Category: "Path Table",
		})
	}

	if bc := i.BootCatalog; bc != nil {
		items = append(items, layoutItem{
			Offset:   bc.BootCatalogOffset,
			Length:   bc.BootCatalogLength,
			Detail:   fmt.Sprintf("El Torito (Platform: %s, Entries: %d)", bc.BootCatalogPlatform, bc.BootCatalogEntries),
			Category: "Boot Catalog",
		})
	}

	for _, bi := range i.BootImages {
		detail := fmt.Sprintf("%s (%s)", bi.BootImageName, bi.BootImagePlatform)
		if !bi.BootImageBootable {
			detail += " not bootable"
		}
		items = append(items, layoutItem{
			Offset:   bi.BootImageOffset,
			Length:   bi.BootImageLength,
			Detail:   detail,
			Category: "Boot Image",
		})
	}

	for _, de := range i.DirectoryExtents {
		items = append(items, layoutItem{
			Offset:   de.DirectoryExtentOffset,
			Length:   de.DirectoryExtentLength,
			Detail:   fmt.Sprintf("%s (%s)", de.DirectoryExtentIdentifier, de.DirectoryExtentSource),
			Category: "Directory Extent",
		})
	}

	if verbose {
		for _, fe := range i.FileExtents {
			items = append(items, layoutItem{
				Offset:   fe.FileOffset,
				Length:   fe.FileLength,
				Detail:   fe.FileIdentifier,
				Category: "File Extent",
			})
		}
	}

	// Stable, so equal offsets keep the category order above.
	slices.SortStableFunc(items, func(a, b layoutItem) int {
		return compare(a.Offset, b.Offset)
	})

	fmt.Fprintln(w, headerColor("=== ISO Layout ==="))

	offsetWidth := 14
	categoryWidth := 20
	lengthWidth := 12
	if useHexOffset {
		offsetWidth = 18
	}

	for _, item := range items {
		offsetStr := fmt.Sprintf("Offset: %*d", offsetWidth-8, item.Offset)
		if useHexOffset {
			offsetStr = fmt.Sprintf("Offset: %#*x", offsetWidth-8, item.Offset)
		}

		fmt.Fprintf(w, "[%s] [%s] [%s] %s\n",
			offsetColor(offsetStr),
			colorMap[item.Category](fmt.Sprintf("%-*s", categoryWidth, item.Category)),
			lengthColor(fmt.Sprintf("%*s", lengthWidth, formatSize(item.Length))),
			item.Detail,
		)
	}

	fmt.Fprintln(w, headerColor("=================="))
}

// formatSize converts a size in bytes to a human-readable format.
func formatSize(size int64) string {
	const (
		MB = 1024 * 1024
		GB = MB * 1024
	)

	switch {
	case size >= GB:
		return fmt.Sprintf("%8.2f GB", float64(size)/float64(GB))
	case size >= MB:
		return fmt.Sprintf("%8.2f MB", float64(size)/float64(MB))
	default:
		return fmt.Sprintf("%8d B ", size)
	}
}
