package systemarea_test

import (
	"bytes"
	"testing"

	"github.com/diskfs/go-diskfs/partition/mbr"
	"github.com/rstms/isofs/internal/testimage"
	"github.com/rstms/isofs/pkg/iso9660/block"
	"github.com/rstms/isofs/pkg/iso9660/isoerr"
	"github.com/rstms/isofs/pkg/iso9660/systemarea"
	"github.com/stretchr/testify/require"
)

func TestReadBlank(t *testing.T) {
	sa, err := systemarea.Read(block.NewBytes(testimage.Standard().Bytes), nil)
	require.NoError(t, err)
	require.True(t, sa.Blank)
	require.Nil(t, sa.MBR)
	require.Empty(t, sa.Partitions())
	require.Equal(t, int64(16*block.Size), sa.Length)
}

func TestReadHybridMBR(t *testing.T) {
	efi := bytes.Repeat([]byte{0xEF}, 4096)
	img := testimage.MustBuild(testimage.StandardTree(), testimage.Options{
		BootRecord:   true,
		EFIBootImage: efi,
		HybridMBR:    true,
	})

	sa, err := systemarea.Read(block.NewBytes(img.Bytes), nil)
	require.NoError(t, err)
	require.False(t, sa.Blank)
	require.NotNil(t, sa.MBR)

	parts := sa.Partitions()
	require.Len(t, parts, 2)
	require.True(t, parts[0].Bootable)
	require.Equal(t, testimage.HybridPartitionType, parts[0].Type)
	require.Equal(t, int64(0), parts[0].GetStart())
	require.Equal(t, int64(len(img.Bytes)), parts[0].GetSize())

	require.Equal(t, mbr.EFISystem, parts[1].Type)
	require.Equal(t, int64(img.BootImages[1])*block.Size, parts[1].GetStart())
	require.Equal(t, int64(len(efi)), parts[1].GetSize())
}

func TestReadNotAnMBR(t *testing.T) {
	img := testimage.Standard()
	// boot code without a signature
	copy(img.Bytes, "\xeb\x63\x90")

	sa, err := systemarea.Read(block.NewBytes(img.Bytes), nil)
	require.NoError(t, err)
	require.False(t, sa.Blank)
	require.Nil(t, sa.MBR)

	// a signature over a table with an invalid boot flag
	img.Bytes[446] = 0x42
	img.Bytes[510], img.Bytes[511] = 0x55, 0xaa
	sa, err = systemarea.Read(block.NewBytes(img.Bytes), nil)
	require.NoError(t, err)
	require.Nil(t, sa.MBR)
}

func TestReadShortImage(t *testing.T) {
	_, err := systemarea.Read(block.NewBytes(make([]byte, 3*block.Size)), nil)
	require.ErrorIs(t, err, isoerr.ErrShortRead)
}
