package iso9660_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rstms/isofs/internal/testimage"
	"github.com/rstms/isofs/pkg/iso9660/block"
	"github.com/rstms/isofs/pkg/iso9660/info"
	"github.com/stretchr/testify/require"
)

func TestLayout(t *testing.T) {
	img := testimage.Standard()
	layout, err := mount(t, img).Layout()
	require.NoError(t, err)

	require.Equal(t, int64(16*block.Size), layout.SystemAreaLength)
	require.Equal(t, int64(16*block.Size), layout.VolumeSetStart)
	require.Equal(t, int64(19*block.Size), layout.VolumeSetEnd)

	var types []string
	for _, vd := range layout.VolumeDescriptors {
		types = append(types, vd.DescriptorType)
	}
	require.Equal(t, []string{"primary", "supplementary", "terminator"}, types)
	require.Empty(t, layout.PathTables)
	require.Nil(t, layout.BootCatalog)
	require.Empty(t, layout.BootImages)

	// root, a, b, c in each tree
	require.Len(t, layout.DirectoryExtents, 8)
	require.Equal(t, int64(img.Primary[""])*block.Size, layout.DirectoryExtents[0].DirectoryExtentOffset)
	require.Equal(t, "primary", layout.DirectoryExtents[0].DirectoryExtentSource)

	// file data is shared, so the primary names win
	require.Len(t, layout.FileExtents, 201)
	var gpl *info.FileExtentInfo
	for _, fe := range layout.FileExtents {
		if fe.FileIdentifier == "/GPL_3_0.TXT" {
			gpl = fe
		}
	}
	require.NotNil(t, gpl)
	require.Equal(t, int64(img.Files["gpl_3_0.txt"])*block.Size, gpl.FileOffset)
	require.Equal(t, int64(50000), gpl.FileLength)

	var decoded info.ISOLayout
	require.NoError(t, json.Unmarshal([]byte(layout.PrettyJSON()), &decoded))
	require.Len(t, decoded.FileExtents, 201)
}

func TestLayoutPrint(t *testing.T) {
	tree := testimage.Dir("", testimage.File("hello.txt", []byte("hello")))
	layout, err := mount(t, testimage.MustBuild(tree, testimage.Options{BootRecord: true})).Layout()
	require.NoError(t, err)

	var out bytes.Buffer
	layout.Print(&out, true, false, false)
	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Equal(t, "=== ISO Layout ===", lines[0])
	require.Equal(t, "[Offset:      0] [System Area         ] [    32768 B ] System Area", lines[1])
	require.Equal(t, "[Offset:  32768] [Volume Descriptor   ] [     2048 B ] boot record (Version: 1)", lines[2])
	require.Equal(t, "[Offset:  34816] [Volume Descriptor   ] [     2048 B ] primary (Version: 1)", lines[3])
	require.Equal(t, "[Offset:  36864] [Volume Descriptor   ] [     2048 B ] terminator (Version: 1)", lines[4])
	require.Equal(t, "[Offset:  38912] [Boot Catalog        ] [       64 B ] El Torito (Platform: BIOS, Entries: 1)", lines[5])
	require.Equal(t, "[Offset:  40960] [Boot Image          ] [     2048 B ] 1-Boot-NoEmul.img (BIOS)", lines[6])
	require.Equal(t, "[Offset:  43008] [Directory Extent    ] [     2048 B ] / (primary)", lines[7])
	require.Equal(t, "[Offset:  45056] [File Extent         ] [        5 B ] /HELLO.TXT", lines[8])
	require.Equal(t, "==================", lines[9])

	out.Reset()
	layout.Print(&out, false, false, true)
	require.Contains(t, out.String(), "[Offset:     0x8000] [Volume Descriptor   ]")
	require.NotContains(t, out.String(), "HELLO.TXT")
}

func TestLayoutHybrid(t *testing.T) {
	img := testimage.MustBuild(testimage.StandardTree(), testimage.Options{
		Joliet:       true,
		BootRecord:   true,
		EFIBootImage: bytes.Repeat([]byte{0xEF}, 2048),
		HybridMBR:    true,
	})
	layout, err := mount(t, img).Layout()
	require.NoError(t, err)

	require.Len(t, layout.Partitions, 2)
	require.Equal(t, 1, layout.Partitions[0].PartitionNumber)
	require.Equal(t, "Unknown (0x17)", layout.Partitions[0].PartitionType)
	require.True(t, layout.Partitions[0].PartitionBootable)
	require.Equal(t, int64(len(img.Bytes)), layout.Partitions[0].PartitionLength)
	require.Equal(t, "EFI System", layout.Partitions[1].PartitionType)
	require.Equal(t, int64(img.BootImages[1])*block.Size, layout.Partitions[1].PartitionOffset)

	var out bytes.Buffer
	layout.Print(&out, false, false, false)
	lines := strings.Split(out.String(), "\n")
	require.Equal(t, "[Offset:      0] [System Area         ] [    32768 B ] System Area (MBR: 2 partitions)", lines[1])
	require.True(t, strings.HasSuffix(lines[2], "] Partition 1 (Unknown (0x17)) bootable"), lines[2])
	require.Contains(t, out.String(), "] Partition 2 (EFI System)\n")
}
