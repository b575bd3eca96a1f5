package directory

import (
	"errors"
	"io"
	"io/fs"
	"iter"
	"time"

	"github.com/rstms/isofs/pkg/consts"
	"github.com/rstms/isofs/pkg/iso9660/block"
	"github.com/rstms/isofs/pkg/iso9660/encoding"
)

// Directory is a directory record bound to the block reader of its image. It holds no
// iteration state; every call to Contents starts a fresh listing.
type Directory struct {
	header     *Header
	identifier string
	encoding   encoding.CharacterEncoding
	reader     block.Reader
}

// NewDirectory wraps a directory header. The raw self and parent identifiers are shown as
// "." and "..".
func NewDirectory(h *Header, rawIdentifier string, r block.Reader, enc encoding.CharacterEncoding) *Directory {
	id := rawIdentifier
	switch rawIdentifier {
	case consts.ISO9660_SELF_IDENTIFIER:
		id = "."
	case consts.ISO9660_PARENT_IDENTIFIER:
		id = ".."
	}
	return &Directory{header: h, identifier: id, encoding: enc, reader: r}
}

func (d *Directory) entry() {}

func (d *Directory) Identifier() string { return d.identifier }
func (d *Directory) Header() *Header    { return d.header }

// Encoding is the character encoding of the volume descriptor this directory belongs to.
func (d *Directory) Encoding() encoding.CharacterEncoding { return d.encoding }

// BlockCount is the number of logical blocks spanned by the directory's extent.
func (d *Directory) BlockCount() uint64 {
	return block.Count(d.header.ExtentLength)
}

func (d *Directory) Name() string       { return d.identifier }
func (d *Directory) Size() int64        { return int64(d.header.ExtentLength) }
func (d *Directory) Mode() fs.FileMode  { return fs.ModeDir | 0o555 }
func (d *Directory) ModTime() time.Time { return d.header.RecordingDateAndTime }
func (d *Directory) IsDir() bool        { return true }
func (d *Directory) Sys() interface{}   { return d.header }

// Contents returns a new iterator over the directory's records in on-disk order.
func (d *Directory) Contents() *Iterator {
	return &Iterator{dir: d, buf: make([]byte, block.Size)}
}

// All ranges over the directory's records. Iteration stops after the first error.
func (d *Directory) All() iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		it := d.Contents()
		for {
			e, err := it.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(e, err) || err != nil {
				return
			}
		}
	}
}

// Entries reads the whole directory.
func (d *Directory) Entries() ([]Entry, error) {
	var entries []Entry
	for e, err := range d.All() {
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Find returns the first entry whose identifier equals name under ASCII case folding.
// Associated files are skipped. A missing name is (nil, nil).
func (d *Directory) Find(name string) (Entry, error) {
	for e, err := range d.All() {
		if err != nil {
			return nil, err
		}
		if e.Header().FileFlags.AssociatedFile {
			continue
		}
		if equalFoldASCII(e.Identifier(), name) {
			return e, nil
		}
	}
	return nil, nil
}

func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if lowerASCII(a[i]) != lowerASCII(b[i]) {
			return false
		}
	}
	return true
}

func lowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

// Iterator walks a directory extent one record at a time, holding a single buffered block.
type Iterator struct {
	dir      *Directory
	buf      []byte
	blockNum uint64 // index of the buffered block within the extent
	loaded   bool
	pos      int
	done     bool
}

// Next returns the next entry, or io.EOF once the extent is exhausted. Any other error ends
// the listing; later calls return io.EOF.
func (it *Iterator) Next() (Entry, error) {
	if it.done {
		return nil, io.EOF
	}
	if !it.loaded || it.pos >= block.Size-consts.ISO9660_DIR_RECORD_HEADER_SIZE || it.buf[it.pos] == 0 {
		if err := it.advance(); err != nil {
			it.done = true
			return nil, err
		}
	}

	e, err := ParseEntry(it.buf[it.pos:], it.dir.reader, it.dir.encoding)
	if err != nil {
		it.done = true
		return nil, err
	}
	it.pos += int(e.Header().Length)
	return e, nil
}

// advance moves to the next block that holds a record, skipping blocks that start with padding.
func (it *Iterator) advance() error {
	for {
		next := uint64(0)
		if it.loaded {
			next = it.blockNum + 1
		}
		if next >= it.dir.BlockCount() {
			return io.EOF
		}
		if !it.loaded || next != it.blockNum {
			lba := uint64(it.dir.header.ExtentLocation) + next
			if err := it.dir.reader.ReadBlock(lba, it.buf); err != nil {
				return err
			}
		}
		it.blockNum, it.loaded, it.pos = next, true, 0
		if it.buf[0] != 0 {
			return nil
		}
	}
}
