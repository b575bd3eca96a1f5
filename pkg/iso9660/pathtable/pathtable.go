// Package pathtable decodes path tables. Lookups always go through directory records; the
// tables are read for reporting and for consistency checks against the directory hierarchy.
package pathtable

import (
	"encoding/binary"
	"fmt"

	"github.com/rstms/isofs/pkg/iso9660/block"
	"github.com/rstms/isofs/pkg/iso9660/encoding"
	"github.com/rstms/isofs/pkg/iso9660/isoerr"
)

// recordHeaderSize is the fixed part of a path table record before the identifier.
const recordHeaderSize = 8

// PathTable is one decoded path table. Records are numbered from 1 in recorded order; record 1
// is the root.
type PathTable struct {
	LittleEndian bool
	Records      []*Record
}

type Record struct {
	// Extended Attribute Record Length specifies the Extended Attribute Record length if an Extended Attribute Record
	// is recorded. Otherwise, this number will be zero.
	ExtendedAttributeRecordLength uint8 `json:"extended_attribute_record_length"`
	// Location of Extent specifies the Logical Block Number of the first Logical Block allocated to the Extent in which
	// the directory is recorded.
	LocationOfExtent uint32 `json:"location_of_extent"`
	// Parent Directory Number specifies the record number in the Path Table for the parent directory of the directory.
	ParentDirectoryNumber uint16 `json:"parent_directory_number"`
	// Directory Identifier is empty for the root, whose recorded identifier is a single 0x00 byte.
	DirectoryIdentifier string `json:"directory_identifier"`
}

// Read decodes the size bytes of the path table recorded at lba.
func Read(r block.Reader, lba, size uint32, littleEndian bool, enc encoding.CharacterEncoding) (*PathTable, error) {
	data := make([]byte, 0, int(block.Count(size))*block.Size)
	buf := make([]byte, block.Size)
	for i := uint64(0); i < block.Count(size); i++ {
		if err := r.ReadBlock(uint64(lba)+i, buf); err != nil {
			return nil, fmt.Errorf("failed to read path table: %w", err)
		}
		data = append(data, buf...)
	}
	return Unmarshal(data[:size], littleEndian, enc)
}

// Unmarshal decodes a whole path table.
func Unmarshal(data []byte, littleEndian bool, enc encoding.CharacterEncoding) (*PathTable, error) {
	pt := &PathTable{LittleEndian: littleEndian}
	var order binary.ByteOrder = binary.BigEndian
	if littleEndian {
		order = binary.LittleEndian
	}

	for offset := 0; offset < len(data); {
		idLen := int(data[offset])
		if idLen == 0 {
			// Padding to the end of the table.
			break
		}
		recordLen := recordHeaderSize + idLen + idLen%2
		if offset+recordHeaderSize+idLen > len(data) {
			return nil, isoerr.InvalidFilesystem("path table record %d at offset %d overruns the table", len(pt.Records)+1, offset)
		}

		rec := data[offset : offset+recordHeaderSize+idLen]
		record := &Record{
			ExtendedAttributeRecordLength: rec[1],
			LocationOfExtent:              order.Uint32(rec[2:6]),
			ParentDirectoryNumber:         order.Uint16(rec[6:8]),
		}
		id := rec[recordHeaderSize:]
		if !(idLen == 1 && id[0] == 0x00) {
			name, err := encoding.DecodeIdentifier("directory identifier", id, enc)
			if err != nil {
				return nil, fmt.Errorf("path table record %d: %w", len(pt.Records)+1, err)
			}
			record.DirectoryIdentifier = name
		}
		if record.ParentDirectoryNumber == 0 || int(record.ParentDirectoryNumber) > len(pt.Records)+1 {
			return nil, isoerr.InvalidFilesystem("path table record %d has parent %d", len(pt.Records)+1, record.ParentDirectoryNumber)
		}

		pt.Records = append(pt.Records, record)
		offset += recordLen
	}
	return pt, nil
}

// Path returns the slash separated path of record n (1-based), "/" for the root.
func (pt *PathTable) Path(n int) (string, error) {
	if n < 1 || n > len(pt.Records) {
		return "", fmt.Errorf("path table has no record %d", n)
	}
	path := ""
	// Parents always precede their children, so the walk up terminates.
	for n != 1 {
		r := pt.Records[n-1]
		path = "/" + r.DirectoryIdentifier + path
		if int(r.ParentDirectoryNumber) >= n {
			return "", isoerr.InvalidFilesystem("path table record %d has parent %d", n, r.ParentDirectoryNumber)
		}
		n = int(r.ParentDirectoryNumber)
	}
	if path == "" {
		return "/", nil
	}
	return path, nil
}
