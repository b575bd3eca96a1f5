package testimage

import (
	"crypto/md5"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTextContent(t *testing.T) {
	content := TextContent()
	require.Len(t, content, 50000)
	require.Equal(t, TextContentMD5, fmt.Sprintf("%x", md5.Sum(content)))
}

func TestBuildLayout(t *testing.T) {
	img := Standard()

	require.Zero(t, len(img.Bytes)%blockSize)
	// boot-less image: PVD at 16, SVD at 17, terminator at 18
	require.Equal(t, byte(typePrimary), img.Bytes[16*blockSize])
	require.Equal(t, "CD001", string(img.Bytes[16*blockSize+1:16*blockSize+6]))
	require.Equal(t, byte(typeSupplementary), img.Bytes[17*blockSize])
	require.Equal(t, byte(typeTerminator), img.Bytes[18*blockSize])

	require.Equal(t, uint32(19), img.Primary[""])
	require.Contains(t, img.Primary, "a/b/c")
	require.Contains(t, img.Joliet, "a/b/c")
	require.NotEqual(t, img.Primary["a/b/c"], img.Joliet["a/b/c"])
	require.Contains(t, img.Files, "gpl_3_0.txt")
	require.Contains(t, img.Files, "a/b/c/200")

	lba := img.Files["gpl_3_0.txt"]
	data := img.Bytes[int(lba)*blockSize : int(lba)*blockSize+50000]
	require.Equal(t, TextContent(), data)
}

func TestPackRecords(t *testing.T) {
	require.Equal(t, uint32(blockSize), packRecords([]int{34, 34}))
	require.Equal(t, uint32(2*blockSize), packRecords([]int{1024, 1024, 2}))
	require.Equal(t, uint32(blockSize), packRecords([]int{1024, 1024}))
}

func TestIdentifier(t *testing.T) {
	b := &builder{}
	id, err := b.identifier(File("gpl_3_0.txt", nil), false)
	require.NoError(t, err)
	require.Equal(t, "GPL_3_0.TXT;1", string(id))

	id, err = b.identifier(File("1", nil), false)
	require.NoError(t, err)
	require.Equal(t, "1.;1", string(id))

	id, err = b.identifier(&Node{Name: "x", Identifier: "X"}, false)
	require.NoError(t, err)
	require.Equal(t, "X", string(id))

	id, err = b.identifier(Dir("a"), true)
	require.NoError(t, err)
	require.Equal(t, []byte{0x00, 'a'}, id)
}
