package directory_test

import (
	"testing"
	"time"

	"github.com/rstms/isofs/internal/testimage"
	"github.com/rstms/isofs/pkg/iso9660/directory"
	"github.com/rstms/isofs/pkg/iso9660/encoding"
	"github.com/rstms/isofs/pkg/iso9660/isoerr"
	"github.com/stretchr/testify/require"
)

func marshal(t *testing.T, h *directory.Header, id []byte) []byte {
	t.Helper()
	rec, err := testimage.Record(*h, id)
	require.NoError(t, err)
	return rec
}

func TestFileFlags(t *testing.T) {
	t.Run("AllBits", func(t *testing.T) {
		ff := directory.ParseFileFlags(0xFF)
		require.Equal(t, directory.FileFlags{
			Hidden: true, Directory: true, AssociatedFile: true,
			RecordFormat: true, Protection: true, MultiExtent: true,
		}, ff)
		// reserved bits are dropped
		require.Equal(t, byte(0x9F), ff.Marshal())
	})

	t.Run("DirectoryOnly", func(t *testing.T) {
		ff := directory.ParseFileFlags(0x02)
		require.True(t, ff.Directory)
		require.False(t, ff.AssociatedFile)
		require.Equal(t, byte(0x02), ff.Marshal())
	})

	t.Run("ReservedOnly", func(t *testing.T) {
		require.Equal(t, directory.FileFlags{}, directory.ParseFileFlags(0x60))
	})
}

func TestParseRecord(t *testing.T) {
	when := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	h := &directory.Header{
		ExtentLocation:       42,
		ExtentLength:         5000,
		RecordingDateAndTime: when,
		FileFlags:            directory.FileFlags{Protection: true},
		VolumeSequenceNumber: 1,
	}
	rec := marshal(t, h, []byte("GPL_3_0.TXT;1"))
	require.Len(t, rec, 46)
	require.Zero(t, h.Length)

	t.Run("Fields", func(t *testing.T) {
		got, id, err := directory.ParseRecord(rec, encoding.Iso9660)
		require.NoError(t, err)
		require.Equal(t, "GPL_3_0.TXT;1", id)
		require.Equal(t, uint8(46), got.Length)
		require.Equal(t, uint32(42), got.ExtentLocation)
		require.Equal(t, uint32(5000), got.ExtentLength)
		require.True(t, when.Equal(got.RecordingDateAndTime))
		require.True(t, got.FileFlags.Protection)
		require.Equal(t, uint16(1), got.VolumeSequenceNumber)
		require.Equal(t, uint8(13), got.FileIdentifierLength)
	})

	t.Run("TrailingSystemUseIgnored", func(t *testing.T) {
		long := append(append([]byte{}, rec...), 'R', 'R', 0x05, 0x01)
		long[0] = byte(len(long))
		got, id, err := directory.ParseRecord(long, encoding.Iso9660)
		require.NoError(t, err)
		require.Equal(t, "GPL_3_0.TXT;1", id)
		require.Equal(t, uint8(50), got.Length)
	})

	t.Run("BigEndianMirrorIgnored", func(t *testing.T) {
		bad := append([]byte{}, rec...)
		bad[6], bad[7], bad[8], bad[9] = 0xDE, 0xAD, 0xBE, 0xEF
		got, _, err := directory.ParseRecord(bad, encoding.Iso9660)
		require.NoError(t, err)
		require.Equal(t, uint32(42), got.ExtentLocation)
	})

	t.Run("Joliet", func(t *testing.T) {
		name, err := encoding.EncodeUCS2BigEndian("Grüße.txt;1")
		require.NoError(t, err)
		jrec := marshal(t, &directory.Header{}, name)
		_, id, err := directory.ParseRecord(jrec, encoding.Ucs2Level3)
		require.NoError(t, err)
		require.Equal(t, "Grüße.txt;1", id)
	})

	t.Run("JolietSelfAndParent", func(t *testing.T) {
		for _, raw := range []byte{0x00, 0x01} {
			_, id, err := directory.ParseRecord(marshal(t, &directory.Header{}, []byte{raw}), encoding.Ucs2Level1)
			require.NoError(t, err)
			require.Equal(t, string([]byte{raw}), id)
		}
	})

	t.Run("JolietOddIdentifier", func(t *testing.T) {
		_, _, err := directory.ParseRecord(marshal(t, &directory.Header{}, []byte{0x00, 'a', 0x00}), encoding.Ucs2Level3)
		require.ErrorIs(t, err, isoerr.ErrTextDecode)
	})

	t.Run("InvalidUTF8", func(t *testing.T) {
		_, _, err := directory.ParseRecord(marshal(t, &directory.Header{}, []byte{'A', 0xFF, ';', '1'}), encoding.Iso9660)
		require.ErrorIs(t, err, isoerr.ErrTextDecode)
	})
}

func TestParseRecordValidation(t *testing.T) {
	valid := func(t *testing.T) []byte {
		return marshal(t, &directory.Header{}, []byte("ABC.TXT;1")) // 42 bytes
	}

	tests := []struct {
		name   string
		mutate func([]byte) []byte
	}{
		{"zero length", func(b []byte) []byte { b[0] = 0; return b }},
		{"shorter than minimum", func(b []byte) []byte { b[0] = 32; return b }},
		{"odd length", func(b []byte) []byte { b[0] = 41; return b }},
		{"longer than block remainder", func(b []byte) []byte { return b[:40] }},
		{"identifier overruns record", func(b []byte) []byte { b[32] = 20; return b }},
		{"identifier longer than record", func(b []byte) []byte { b[32] = 200; return b }},
		{"empty input", func(b []byte) []byte { return nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := directory.ParseRecord(tt.mutate(valid(t)), encoding.Iso9660)
			require.ErrorIs(t, err, isoerr.ErrInvalidFilesystem)
		})
	}
}

func TestNewFile(t *testing.T) {
	h := &directory.Header{}

	tests := []struct {
		name        string
		raw         string
		want        string
		version     uint16
		wantErr     bool
		parseErr    bool
		invalidOnly bool
	}{
		{name: "with extension", raw: "GPL_3_0.TXT;1", want: "GPL_3_0.TXT", version: 1},
		{name: "bare dot stripped", raw: "README.;1", want: "README", version: 1},
		{name: "only one dot stripped", raw: "A..;2", want: "A.", version: 2},
		{name: "max version", raw: "X;32767", want: "X", version: 32767},
		{name: "last semicolon wins", raw: "A;B.TXT;3", want: "A;B.TXT", version: 3},
		{name: "missing version", raw: "README.TXT", wantErr: true, invalidOnly: true},
		{name: "non numeric version", raw: "README.TXT;x", wantErr: true, parseErr: true},
		{name: "empty version", raw: "README.TXT;", wantErr: true, parseErr: true},
		{name: "version overflows u16", raw: "README.TXT;70000", wantErr: true, parseErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := directory.NewFile(h, tt.raw, nil)
			if tt.wantErr {
				require.ErrorIs(t, err, isoerr.ErrInvalidFilesystem)
				if tt.parseErr {
					require.ErrorIs(t, err, isoerr.ErrIntegerParse)
				}
				if tt.invalidOnly {
					require.NotErrorIs(t, err, isoerr.ErrIntegerParse)
				}
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, f.Identifier())
			require.Equal(t, tt.want, f.Name())
			require.Equal(t, tt.version, f.Version())
			require.False(t, f.IsDir())
		})
	}
}

func TestNewDirectoryIdentifiers(t *testing.T) {
	h := &directory.Header{ExtentLength: 2049, FileFlags: directory.FileFlags{Directory: true}}
	require.Equal(t, ".", directory.NewDirectory(h, "\x00", nil, encoding.Iso9660).Identifier())
	require.Equal(t, "..", directory.NewDirectory(h, "\x01", nil, encoding.Iso9660).Identifier())

	d := directory.NewDirectory(h, "DOCS", nil, encoding.Iso9660)
	require.Equal(t, "DOCS", d.Name())
	require.Equal(t, uint64(2), d.BlockCount())
	require.True(t, d.IsDir())
	require.True(t, d.Mode().IsDir())
	require.Same(t, h, d.Sys())
}
