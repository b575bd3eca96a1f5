package descriptor_test

import (
	"testing"
	"time"

	"github.com/rstms/isofs/internal/testimage"
	"github.com/rstms/isofs/pkg/iso9660/block"
	"github.com/rstms/isofs/pkg/iso9660/descriptor"
	"github.com/rstms/isofs/pkg/iso9660/encoding"
	"github.com/rstms/isofs/pkg/iso9660/isoerr"
	"github.com/stretchr/testify/require"
)

func sector(img *testimage.Image, lba int) []byte {
	buf := make([]byte, block.Size)
	copy(buf, img.Bytes[lba*block.Size:])
	return buf
}

func TestParsePrimary(t *testing.T) {
	img := testimage.Standard()

	vd, err := descriptor.Parse(sector(img, 16))
	require.NoError(t, err)
	require.Equal(t, descriptor.TYPE_PRIMARY_DESCRIPTOR, vd.Type())
	require.Equal(t, "CD001", vd.Identifier())
	require.Equal(t, uint8(1), vd.Version())

	pvd, ok := vd.(*descriptor.PrimaryVolumeDescriptor)
	require.True(t, ok)
	require.Equal(t, encoding.Iso9660, pvd.CharacterEncoding)
	require.Equal(t, "LINUX", pvd.SystemIdentifier)
	require.Equal(t, "CDROM", pvd.VolumeIdentifier)
	require.Equal(t, "SET", pvd.VolumeSetIdentifier)
	require.Equal(t, "PUBLISHER", pvd.PublisherIdentifier)
	require.Equal(t, "PREPARER", pvd.DataPreparerIdentifier)
	require.Equal(t, "ISOFS TESTIMAGE", pvd.ApplicationIdentifier)
	require.Equal(t, "COPYING.TXT", pvd.CopyrightFileIdentifier)
	require.Equal(t, "ABSTRACT.TXT", pvd.AbstractFileIdentifier)
	require.Equal(t, "BIBLIO.TXT", pvd.BibliographicFileIdentifier)
	require.Equal(t, uint32(len(img.Bytes)/block.Size), pvd.VolumeSpaceSize)
	require.Equal(t, uint16(1), pvd.VolumeSetSize)
	require.Equal(t, uint16(1), pvd.VolumeSequenceNumber)
	require.Equal(t, uint16(2048), pvd.LogicalBlockSize)
	require.Equal(t, uint8(1), pvd.FileStructureVersion)

	when := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.True(t, when.Equal(pvd.VolumeCreationDateAndTime))
	require.True(t, when.Equal(pvd.VolumeModificationDateAndTime))
	require.True(t, pvd.VolumeExpirationDateAndTime.IsZero())
	require.True(t, when.Equal(pvd.VolumeEffectiveDateAndTime))

	require.Equal(t, "\x00", pvd.RootIdentifier)
	require.Equal(t, img.Primary[""], pvd.RootDirectoryRecord.ExtentLocation)
	require.True(t, pvd.RootDirectoryRecord.FileFlags.Directory)

	root := pvd.RootDirectory(block.NewBytes(img.Bytes))
	require.Equal(t, ".", root.Identifier())
	entries, err := root.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 4)
}

func TestParseSupplementary(t *testing.T) {
	img := testimage.Standard()

	vd, err := descriptor.Parse(sector(img, 17))
	require.NoError(t, err)
	svd, ok := vd.(*descriptor.SupplementaryVolumeDescriptor)
	require.True(t, ok)
	require.True(t, svd.HasJoliet())
	require.Equal(t, encoding.Ucs2Level3, svd.CharacterEncoding)
	require.Equal(t, "CDROM", svd.VolumeIdentifier)
	require.Equal(t, "ISOFS TESTIMAGE", svd.ApplicationIdentifier)
	// 37 byte fields lose their odd trailing byte
	require.Equal(t, "COPYING.TXT", svd.CopyrightFileIdentifier)
	require.Equal(t, "BIBLIO.TXT", svd.BibliographicFileIdentifier)
	require.Equal(t, img.Joliet[""], svd.RootDirectoryRecord.ExtentLocation)

	root := svd.RootDirectory(block.NewBytes(img.Bytes))
	require.Equal(t, encoding.Ucs2Level3, root.Encoding())
	e, err := root.Find("gpl_3_0.txt")
	require.NoError(t, err)
	require.NotNil(t, e)
	require.Equal(t, "gpl_3_0.txt", e.Name())
}

func TestParseOtherTypes(t *testing.T) {
	img := testimage.MustBuild(testimage.StandardTree(), testimage.Options{
		BootRecord:        true,
		UnknownDescriptor: true,
	})

	t.Run("BootRecord", func(t *testing.T) {
		vd, err := descriptor.Parse(sector(img, 16))
		require.NoError(t, err)
		br, ok := vd.(*descriptor.BootRecordDescriptor)
		require.True(t, ok)
		require.Equal(t, descriptor.TYPE_BOOT_RECORD, br.Type())
		require.Equal(t, "EL TORITO SPECIFICATION", br.BootSystemIdentifier)
		require.Empty(t, br.BootIdentifier)
		require.True(t, br.IsElTorito())
		// boot, partition and terminator descriptors come before the catalog
		require.Equal(t, uint32(20), br.CatalogLocation())
		require.Equal(t, img.BootCatalog, br.CatalogLocation())
	})

	t.Run("Partition", func(t *testing.T) {
		vd, err := descriptor.Parse(sector(img, 18))
		require.NoError(t, err)
		_, ok := vd.(*descriptor.UnknownVolumeDescriptor)
		require.True(t, ok)
		require.Equal(t, descriptor.TYPE_PARTITION_DESCRIPTOR, vd.Type())
	})

	t.Run("Terminator", func(t *testing.T) {
		vd, err := descriptor.Parse(sector(img, 19))
		require.NoError(t, err)
		_, ok := vd.(*descriptor.VolumeDescriptorSetTerminator)
		require.True(t, ok)
	})

	t.Run("Reserved", func(t *testing.T) {
		buf := sector(img, 19)
		buf[0] = 42
		vd, err := descriptor.Parse(buf)
		require.NoError(t, err)
		_, ok := vd.(*descriptor.UnknownVolumeDescriptor)
		require.True(t, ok)
		require.Equal(t, "reserved (42)", vd.Type().String())
	})
}

func TestParseErrors(t *testing.T) {
	img := testimage.Standard()

	tests := []struct {
		name    string
		mutate  func([]byte)
		wantErr error
	}{
		{"bad magic", func(b []byte) { copy(b[1:6], "CD002") }, isoerr.ErrInvalidFilesystem},
		{"bad version", func(b []byte) { b[6] = 2 }, isoerr.ErrInvalidFilesystem},
		{"zeroed block", func(b []byte) { clear(b) }, isoerr.ErrInvalidFilesystem},
		{"block size 512", func(b []byte) { copy(b[128:132], []byte{0x00, 0x02, 0x02, 0x00}) }, isoerr.ErrInvalidFilesystem},
		{"odd root record", func(b []byte) { b[156] = 33 }, isoerr.ErrInvalidFilesystem},
		{"bad date digit", func(b []byte) { b[813] = 'X' }, isoerr.ErrIntegerParse},
		{"invalid utf-8 identifier", func(b []byte) { b[40] = 0xFF }, isoerr.ErrTextDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := sector(img, 16)
			tt.mutate(buf)
			vd, err := descriptor.Parse(buf)
			require.ErrorIs(t, err, tt.wantErr)
			require.Nil(t, vd)
		})
	}

	t.Run("short block", func(t *testing.T) {
		_, err := descriptor.Parse(sector(img, 16)[:100])
		require.ErrorIs(t, err, isoerr.ErrShortRead)
	})

	t.Run("unpaired surrogate in joliet field", func(t *testing.T) {
		buf := sector(img, 17)
		buf[40], buf[41] = 0xD8, 0x00
		_, err := descriptor.Parse(buf)
		require.ErrorIs(t, err, isoerr.ErrTextDecode)
	})
}

func TestLenientDates(t *testing.T) {
	img := testimage.Standard()
	buf := sector(img, 16)
	// month 13 falls back to January
	copy(buf[813:829], "2024130112000000")

	vd, err := descriptor.Parse(buf)
	require.NoError(t, err)
	created := vd.(*descriptor.PrimaryVolumeDescriptor).VolumeCreationDateAndTime
	require.Equal(t, 2024, created.Year())
	require.Equal(t, time.January, created.Month())
	require.Equal(t, 1, created.Day())
}
