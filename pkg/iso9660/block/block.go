// Package block provides fixed-size logical block access over a random-access byte source.
package block

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rstms/isofs/pkg/consts"
	"github.com/rstms/isofs/pkg/iso9660/isoerr"
	"github.com/rstms/isofs/pkg/logging"
)

// Size is the logical block size of every supported image.
const Size = consts.ISO9660_SECTOR_SIZE

// Reader reads whole logical blocks by address. A read that cannot fill buf is a
// ShortRead error; a partially filled buffer is never returned as success.
type Reader interface {
	ReadBlock(lba uint64, buf []byte) error
}

// Offset returns the byte offset of the given block.
func Offset(lba uint64) int64 {
	return int64(lba) * Size
}

// Count returns the number of blocks needed to hold length bytes.
func Count(length uint32) uint64 {
	return (uint64(length) + Size - 1) / Size
}

// NewReaderAt returns a Reader backed by positional reads. It holds no cursor and is safe for
// concurrent use whenever the underlying io.ReaderAt is (os.File is).
func NewReaderAt(r io.ReaderAt) Reader {
	return &readerAt{r: r}
}

type readerAt struct {
	r io.ReaderAt
}

func (ra *readerAt) ReadBlock(lba uint64, buf []byte) error {
	n, err := ra.r.ReadAt(buf, Offset(lba))
	if n == len(buf) {
		// io.ReaderAt may report io.EOF alongside a full read of the final block.
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return isoerr.ShortRead(len(buf), n)
	}
	return isoerr.IO(fmt.Sprintf("read block %d", lba), err)
}

// NewReadSeeker returns a Reader over a source with a single shared cursor. Every block read
// seeks then reads under a mutex, so one source can back many directories and files at once.
func NewReadSeeker(rs io.ReadSeeker) Reader {
	return &readSeeker{rs: rs}
}

type readSeeker struct {
	mu sync.Mutex
	rs io.ReadSeeker
}

func (r *readSeeker) ReadBlock(lba uint64, buf []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.rs.Seek(Offset(lba), io.SeekStart); err != nil {
		return isoerr.IO(fmt.Sprintf("seek to block %d", lba), err)
	}
	n, err := io.ReadFull(r.rs, buf)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return isoerr.ShortRead(len(buf), n)
	default:
		return isoerr.IO(fmt.Sprintf("read block %d", lba), err)
	}
}

// NewBytes returns a Reader over an in-memory image.
func NewBytes(b []byte) Reader {
	return NewReaderAt(bytes.NewReader(b))
}

// NewTraced logs every block read at trace level.
func NewTraced(r Reader, logger *logging.Logger) Reader {
	return &traced{r: r, logger: logger}
}

type traced struct {
	r      Reader
	logger *logging.Logger
}

func (t *traced) ReadBlock(lba uint64, buf []byte) error {
	t.logger.Trace("read block", "lba", lba)
	return t.r.ReadBlock(lba, buf)
}
