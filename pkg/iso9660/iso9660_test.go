package iso9660_test

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"io"
	"strconv"
	"sync"
	"testing"

	"github.com/rstms/isofs/internal/testimage"
	"github.com/rstms/isofs/pkg/iso9660"
	"github.com/rstms/isofs/pkg/iso9660/block"
	"github.com/rstms/isofs/pkg/iso9660/directory"
	"github.com/rstms/isofs/pkg/iso9660/isoerr"
	"github.com/rstms/isofs/pkg/logging"
	"github.com/rstms/isofs/pkg/option"
	"github.com/stretchr/testify/require"
)

func mount(t *testing.T, img *testimage.Image, opts ...option.OpenOption) *iso9660.ISO9660 {
	t.Helper()
	fsys, err := iso9660.Mount(bytes.NewReader(img.Bytes), opts...)
	require.NoError(t, err)
	return fsys
}

func readAll(t *testing.T, e directory.Entry) []byte {
	t.Helper()
	f, ok := e.(*directory.File)
	require.True(t, ok, "%s is not a file", e.Name())
	data, err := io.ReadAll(f.Reader())
	require.NoError(t, err)
	return data
}

func names(t *testing.T, d *directory.Directory) []string {
	t.Helper()
	entries, err := d.Entries()
	require.NoError(t, err)
	var out []string
	for _, e := range entries {
		out = append(out, e.Name())
	}
	return out
}

func TestMount(t *testing.T) {
	fsys := mount(t, testimage.Standard())

	require.Equal(t, "CDROM", fsys.VolumeIdentifier())
	require.True(t, fsys.HasJoliet())
	require.Equal(t, 3, fsys.JolietLevel())
	require.NotNil(t, fsys.Primary())
	require.NotNil(t, fsys.Supplementary())
	require.Empty(t, fsys.BootRecords())

	require.Equal(t, []string{".", "..", "A", "GPL_3_0.TXT"}, names(t, fsys.Root()))
	require.Equal(t, []string{".", "..", "a", "gpl_3_0.txt"}, names(t, fsys.JolietRoot()))
	require.Same(t, fsys.JolietRoot(), fsys.PreferredRoot())
}

func TestMountWithoutJoliet(t *testing.T) {
	t.Run("ImageWithoutSupplementary", func(t *testing.T) {
		img := testimage.MustBuild(testimage.StandardTree(), testimage.Options{VolumeIdentifier: "PLAIN"})
		fsys := mount(t, img)
		require.False(t, fsys.HasJoliet())
		require.Zero(t, fsys.JolietLevel())
		require.Nil(t, fsys.JolietRoot())
		require.Same(t, fsys.Root(), fsys.PreferredRoot())

		e, err := fsys.Open("/gpl_3_0.txt")
		require.NoError(t, err)
		require.Equal(t, "GPL_3_0.TXT", e.Name())
	})

	t.Run("JolietDisabled", func(t *testing.T) {
		fsys := mount(t, testimage.Standard(), option.WithJolietEnabled(false))
		require.False(t, fsys.HasJoliet())
		require.Nil(t, fsys.Supplementary())
		require.Nil(t, fsys.JolietRoot())
	})
}

func TestMountBootRecord(t *testing.T) {
	img := testimage.MustBuild(testimage.StandardTree(), testimage.Options{Joliet: true, BootRecord: true})
	fsys := mount(t, img)
	require.Len(t, fsys.BootRecords(), 1)
	require.True(t, fsys.BootRecords()[0].IsElTorito())
}

func TestMountErrors(t *testing.T) {
	t.Run("NoPrimary", func(t *testing.T) {
		img := testimage.MustBuild(testimage.StandardTree(), testimage.Options{Joliet: true, OmitPrimary: true})
		fsys, err := iso9660.Mount(bytes.NewReader(img.Bytes))
		require.ErrorIs(t, err, isoerr.ErrInvalidFilesystem)
		require.Nil(t, fsys)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := iso9660.Mount(bytes.NewReader(nil))
		require.ErrorIs(t, err, isoerr.ErrShortRead)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := iso9660.Mount(bytes.NewReader(bytes.Repeat([]byte{0xA5}, 20*block.Size)))
		require.ErrorIs(t, err, isoerr.ErrInvalidFilesystem)
	})
}

func TestOpenPaths(t *testing.T) {
	fsys := mount(t, testimage.Standard())

	for _, p := range []string{
		"/a/b/c/1",
		"a/b/c/1",
		"///a/b/c/1",
		"a/b/c/1///",
		"a/b//c/1",
		"/a/b//c////1/",
		"/A/B/C/1",
	} {
		t.Run(p, func(t *testing.T) {
			e, err := fsys.Open(p)
			require.NoError(t, err)
			require.NotNil(t, e)
			require.Equal(t, "1", e.Name())
			require.Equal(t, "1", string(readAll(t, e)))
		})
	}

	t.Run("Root", func(t *testing.T) {
		for _, p := range []string{"", "/", "//"} {
			e, err := fsys.Open(p)
			require.NoError(t, err)
			d, ok := e.(*directory.Directory)
			require.True(t, ok)
			require.Same(t, fsys.PreferredRoot(), d)
		}
	})

	t.Run("Directory", func(t *testing.T) {
		e, err := fsys.Open("/a/b")
		require.NoError(t, err)
		require.True(t, e.IsDir())
		require.Equal(t, "b", e.Name())
	})

	t.Run("Missing", func(t *testing.T) {
		for _, p := range []string{"/nope", "/a/nope", "/a/b/c/201", "/gpl_3_0.txt/a", "/a/b/c/1/x"} {
			e, err := fsys.Open(p)
			require.NoError(t, err, p)
			require.Nil(t, e, p)
		}
	})
}

func TestOpenRootOrder(t *testing.T) {
	img := testimage.Standard()

	t.Run("PreferJoliet", func(t *testing.T) {
		e, err := mount(t, img).Open("/gpl_3_0.txt")
		require.NoError(t, err)
		require.Equal(t, "gpl_3_0.txt", e.Name())
	})

	t.Run("PreferPrimary", func(t *testing.T) {
		fsys := mount(t, img, option.WithPreferJoliet(false))
		require.Same(t, fsys.Root(), fsys.PreferredRoot())
		e, err := fsys.Open("/gpl_3_0.txt")
		require.NoError(t, err)
		require.Equal(t, "GPL_3_0.TXT", e.Name())
	})
}

func TestOpenFallsBackPerPath(t *testing.T) {
	tree := testimage.Dir("",
		testimage.Dir("Program Files",
			&testimage.Node{Name: "Read Me First.txt", Identifier: "READ_ME_.TXT;1", Data: []byte("hello")},
		),
	)
	tree.Children[0].Identifier = "PROGRAM_"
	img := testimage.MustBuild(tree, testimage.Options{Joliet: true})

	fsys := mount(t, img)

	e, err := fsys.Open("/Program Files/Read Me First.txt")
	require.NoError(t, err)
	require.NotNil(t, e)
	require.Equal(t, "Read Me First.txt", e.Name())

	// only the Primary tree has these names
	e, err = fsys.Open("/program_/read_me_.txt")
	require.NoError(t, err)
	require.NotNil(t, e)
	require.Equal(t, "READ_ME_.TXT", e.Name())
	require.Equal(t, "hello", string(readAll(t, e)))

	// roots are never mixed within one path
	e, err = fsys.Open("/Program Files/read_me_.txt")
	require.NoError(t, err)
	require.Nil(t, e)

	primaryOnly := mount(t, img, option.WithJolietEnabled(false))
	e, err = primaryOnly.Open("/Program Files/Read Me First.txt")
	require.NoError(t, err)
	require.Nil(t, e)
}

func TestFileContent(t *testing.T) {
	fsys := mount(t, testimage.Standard())

	e, err := fsys.Open("gpl_3_0.txt")
	require.NoError(t, err)
	require.Equal(t, int64(50000), e.Size())
	require.Equal(t, testimage.TextContentMD5, fmt.Sprintf("%x", md5.Sum(readAll(t, e))))

	for i := 1; i <= 200; i += 37 {
		name := strconv.Itoa(i)
		e, err := fsys.Open("/a/b/c/" + name)
		require.NoError(t, err)
		require.Equal(t, name, string(readAll(t, e)))
	}
}

func TestCorruptDirectory(t *testing.T) {
	img := testimage.Standard()
	// break the first child record of /a/b/c in the Joliet tree
	off := int(img.Joliet["a/b/c"])*block.Size + 68
	img.Bytes[off] = 33

	fsys := mount(t, img)
	_, err := fsys.Open("/a/b/c/1")
	require.ErrorIs(t, err, isoerr.ErrInvalidFilesystem)

	// the primary tree is intact
	fsys = mount(t, img, option.WithPreferJoliet(false))
	e, err := fsys.Open("/a/b/c/1")
	require.NoError(t, err)
	require.NotNil(t, e)
}

func TestConcurrentReads(t *testing.T) {
	img := testimage.Standard()

	sources := map[string]block.Reader{
		"ReaderAt":   block.NewReaderAt(bytes.NewReader(img.Bytes)),
		"ReadSeeker": block.NewReadSeeker(bytes.NewReader(img.Bytes)),
	}
	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			fsys, err := iso9660.MountReader(src)
			require.NoError(t, err)

			var wg sync.WaitGroup
			errs := make(chan error, 40)
			for i := 1; i <= 40; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					want := strconv.Itoa(i * 5)
					e, err := fsys.Open("/a/b/c/" + want)
					if err != nil {
						errs <- err
						return
					}
					if e == nil {
						errs <- fmt.Errorf("%s not found", want)
						return
					}
					data, err := io.ReadAll(e.(*directory.File).Reader())
					if err != nil {
						errs <- err
						return
					}
					if string(data) != want {
						errs <- fmt.Errorf("read %q from %s", data, want)
					}
				}(i)
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				require.NoError(t, err)
			}
		})
	}
}

func TestMountLogging(t *testing.T) {
	var out bytes.Buffer
	logger := logging.NewLogger(logging.NewSimpleLogger(&out, logging.LEVEL_TRACE, false))

	fsys := mount(t, testimage.Standard(), option.WithLogger(logger))
	_, err := fsys.Open("/gpl_3_0.txt")
	require.NoError(t, err)

	log := out.String()
	require.Contains(t, log, "[TRACE] read block\n  lba: 16\n")
	require.Contains(t, log, "[DEBUG] mounted image\n  volume: CDROM\n  joliet: true\n")
	require.Contains(t, log, "[DEBUG] resolving path\n  path: /gpl_3_0.txt\n  encoding: UCS-2 Level 3\n")
}
