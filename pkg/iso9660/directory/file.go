package directory

import (
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/rstms/isofs/pkg/consts"
	"github.com/rstms/isofs/pkg/iso9660/block"
	"github.com/rstms/isofs/pkg/iso9660/isoerr"
)

// File is a file record bound to the block reader of its image.
type File struct {
	header     *Header
	identifier string
	version    uint16
	reader     block.Reader
}

// NewFile splits the on-disk "NAME.EXT;VERSION" identifier. A missing ";" makes the filesystem
// invalid; a version that is not a 16-bit decimal is both invalid and an integer parse error.
// One trailing "." is removed from the name, the convention for names without an extension.
func NewFile(h *Header, rawIdentifier string, r block.Reader) (*File, error) {
	idx := strings.LastIndex(rawIdentifier, consts.ISO9660_SEPARATOR_2)
	if idx < 0 {
		return nil, isoerr.InvalidFilesystem("file identifier %q has no version", rawIdentifier)
	}

	raw := rawIdentifier[idx+1:]
	version, err := strconv.ParseUint(raw, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("%w: %w",
			isoerr.InvalidFilesystem("file identifier %q has a bad version", rawIdentifier),
			isoerr.IntegerParse("file version", raw, err))
	}

	name := strings.TrimSuffix(rawIdentifier[:idx], consts.ISO9660_SEPARATOR_1)
	return &File{header: h, identifier: name, version: uint16(version), reader: r}, nil
}

func (f *File) entry() {}

func (f *File) Identifier() string { return f.identifier }
func (f *File) Header() *Header    { return f.header }

// Version is the number that followed ";" in the on-disk identifier.
func (f *File) Version() uint16 { return f.version }

func (f *File) Name() string       { return f.identifier }
func (f *File) Size() int64        { return int64(f.header.ExtentLength) }
func (f *File) Mode() fs.FileMode  { return 0o444 }
func (f *File) ModTime() time.Time { return f.header.RecordingDateAndTime }
func (f *File) IsDir() bool        { return false }
func (f *File) Sys() interface{}   { return f.header }

// Reader returns a new reader positioned at the start of the file. Readers are independent;
// each holds its own cursor and block buffer.
func (f *File) Reader() *Reader {
	return &Reader{file: f, buf: make([]byte, block.Size)}
}
