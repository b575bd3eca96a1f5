package directory

import (
	"fmt"
	"io"

	"github.com/rstms/isofs/pkg/iso9660/block"
	"github.com/rstms/isofs/pkg/iso9660/isoerr"
)

// Reader reads a file's extent through one buffered block keyed by its LBA. The extent is read
// from its first block; an extended attribute record in front of the data is not skipped.
// Read and Seek share a cursor and are not safe for concurrent use; ReadAt is.
type Reader struct {
	file   *File
	pos    int64
	buf    []byte
	bufLBA uint64
	loaded bool
}

var (
	_ io.ReadSeeker = (*Reader)(nil)
	_ io.ReaderAt   = (*Reader)(nil)
	_ io.WriterTo   = (*Reader)(nil)
)

func (r *Reader) size() int64 {
	return int64(r.file.header.ExtentLength)
}

// Read copies file bytes from the cursor. It returns 0, io.EOF at or past the end of the file.
func (r *Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if r.pos >= r.size() {
		return 0, io.EOF
	}

	n := 0
	for n < len(p) && r.pos < r.size() {
		lba := uint64(r.file.header.ExtentLocation) + uint64(r.pos/block.Size)
		if !r.loaded || r.bufLBA != lba {
			r.loaded = false
			if err := r.file.reader.ReadBlock(lba, r.buf); err != nil {
				return n, err
			}
			r.bufLBA, r.loaded = lba, true
		}
		off := r.pos % block.Size
		end := int64(block.Size)
		if remaining := r.size() - r.pos; off+remaining < end {
			end = off + remaining
		}
		c := copy(p[n:], r.buf[off:end])
		n += c
		r.pos += int64(c)
	}
	return n, nil
}

// Seek sets the cursor. Positions past the end are allowed; negative positions are not.
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = r.pos + offset
	case io.SeekEnd:
		target = r.size() + offset
	default:
		return r.pos, fmt.Errorf("%w: unknown whence %d", isoerr.ErrInvalidSeek, whence)
	}
	if target < 0 {
		return r.pos, fmt.Errorf("%w: negative position %d", isoerr.ErrInvalidSeek, target)
	}
	r.pos = target
	return target, nil
}

// ReadAt reads len(p) bytes at off without touching the cursor or the shared buffer.
func (r *Reader) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("%w: negative offset %d", isoerr.ErrInvalidSeek, off)
	}
	buf := make([]byte, block.Size)
	n := 0
	for n < len(p) && off < r.size() {
		lba := uint64(r.file.header.ExtentLocation) + uint64(off/block.Size)
		if err := r.file.reader.ReadBlock(lba, buf); err != nil {
			return n, err
		}
		inBlock := off % block.Size
		end := int64(block.Size)
		if remaining := r.size() - off; inBlock+remaining < end {
			end = inBlock + remaining
		}
		c := copy(p[n:], buf[inBlock:end])
		n += c
		off += int64(c)
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// WriteTo copies the rest of the file to w.
func (r *Reader) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, 32*1024)
	var total int64
	for {
		n, err := r.Read(buf)
		if n > 0 {
			wn, werr := w.Write(buf[:n])
			total += int64(wn)
			if werr != nil {
				return total, werr
			}
			if wn != n {
				return total, io.ErrShortWrite
			}
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}
