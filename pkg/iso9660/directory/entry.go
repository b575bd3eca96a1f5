package directory

import (
	"io/fs"

	"github.com/rstms/isofs/pkg/iso9660/block"
	"github.com/rstms/isofs/pkg/iso9660/encoding"
)

// Entry is one record of a directory: either a *Directory or a *File, chosen once from the
// record's Directory flag. Entries implement fs.FileInfo; Sys returns the *Header.
type Entry interface {
	fs.FileInfo
	// Identifier is the display name: "." and ".." for self and parent, version suffix
	// removed for files.
	Identifier() string
	Header() *Header
	entry()
}

// NewEntry classifies a parsed record and binds it to the shared block reader.
func NewEntry(h *Header, rawIdentifier string, r block.Reader, enc encoding.CharacterEncoding) (Entry, error) {
	if h.FileFlags.Directory {
		return NewDirectory(h, rawIdentifier, r, enc), nil
	}
	return NewFile(h, rawIdentifier, r)
}

// ParseEntry parses the record at the start of data and returns the Entry it describes.
func ParseEntry(data []byte, r block.Reader, enc encoding.CharacterEncoding) (Entry, error) {
	h, id, err := ParseRecord(data, enc)
	if err != nil {
		return nil, err
	}
	return NewEntry(h, id, r, enc)
}

// IsSpecial checks for "." or ".."
func IsSpecial(e Entry) bool {
	id := e.Identifier()
	return e.IsDir() && (id == "." || id == "..")
}
