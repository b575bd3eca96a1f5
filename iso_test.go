package iso_test

import (
	"os"
	"path/filepath"
	"testing"

	iso "github.com/rstms/isofs"
	"github.com/rstms/isofs/internal/testimage"
	"github.com/rstms/isofs/pkg/option"
	"github.com/stretchr/testify/require"
)

func writeImage(t *testing.T, img *testimage.Image) string {
	t.Helper()
	location := filepath.Join(t.TempDir(), "test.iso")
	require.NoError(t, os.WriteFile(location, img.Bytes, 0644))
	return location
}

func TestOpen(t *testing.T) {
	location := writeImage(t, testimage.Standard())

	img, err := iso.Open(location)
	require.NoError(t, err)
	defer img.Close()

	require.Equal(t, location, img.Location())
	require.Equal(t, "CDROM", img.VolumeIdentifier())
	require.Contains(t, img.String(), `volume "CDROM", joliet level 3`)

	e, err := img.Open("/a/b/c/9")
	require.NoError(t, err)
	require.NotNil(t, e)
	require.Equal(t, int64(1), e.Size())

	folders, files, err := testimage.Count(img.PreferredRoot())
	require.NoError(t, err)
	require.Equal(t, 3, folders)
	require.Equal(t, 201, files)
}

func TestOpenOptions(t *testing.T) {
	location := writeImage(t, testimage.Standard())

	img, err := iso.Open(location, option.WithJolietEnabled(false))
	require.NoError(t, err)
	defer img.Close()
	require.False(t, img.HasJoliet())
	require.Contains(t, img.String(), "joliet level 0")
}

func TestOpenErrors(t *testing.T) {
	_, err := iso.Open(filepath.Join(t.TempDir(), "missing.iso"))
	require.ErrorIs(t, err, os.ErrNotExist)

	location := filepath.Join(t.TempDir(), "short.iso")
	require.NoError(t, os.WriteFile(location, []byte("not an image"), 0644))
	_, err = iso.Open(location)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to mount")
}
