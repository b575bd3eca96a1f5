package directory

import (
	"time"

	"github.com/rstms/isofs/pkg/consts"
	"github.com/rstms/isofs/pkg/iso9660/encoding"
	"github.com/rstms/isofs/pkg/iso9660/isoerr"
)

// Header is the fixed part of a directory record. It is immutable once parsed and is shared
// by the Directory or File built from the record.
type Header struct {
	// Length specifies the length of the directory record in bytes, identifier and system use included.
	Length uint8 `json:"length"`
	// Extended Attribute Record Length specifies the assigned Extended Attribute Record length if an Extended Attribute
	// Record is recorded, otherwise it will be zero. Readers ignore it: file data is read from ExtentLocation.
	ExtendedAttributeRecordLength uint8 `json:"extended_attribute_record_length"`
	// Extent Location specifies the Logical Block Number of the first Logical Block allocated to the Extent.
	//  | Encoding: BothByteOrder
	ExtentLocation uint32 `json:"extent_location"`
	// Extent Length specifies the data length of the File Section in bytes. Zero for empty files.
	//  | Encoding: BothByteOrder
	ExtentLength uint32 `json:"extent_length"`
	// Recording Date and Time specifies when the information in the Extent was recorded.
	//  | Encoding: 7-byte time format
	RecordingDateAndTime time.Time `json:"recording_date_and_time"`
	FileFlags            FileFlags `json:"file_flags"`
	// File Unit Size specifies the assigned File Unit size for the File Section if the File Section is recorded in
	// interleaved mode. Otherwise, this number shall be zero.
	FileUnitSize uint8 `json:"file_unit_size"`
	// Interleave Gap Size specifies the assigned Interleave Gap size for the File Section if the File Section is
	// recorded in interleaved mode. Otherwise, this number shall be zero.
	InterleaveGapSize uint8 `json:"interleave_gap_size"`
	// Volume Sequence Number specifies the ordinal number of the volume in the Volume Set on which the Extent described
	// by this Directory Record is recorded.
	//  | Encoding: BothByteOrder
	VolumeSequenceNumber uint16 `json:"volume_sequence_number"`
	// Length of File Identifier specifies the length in bytes of the File Identifier field of the Directory Record.
	FileIdentifierLength uint8 `json:"file_identifier_length"`
}

// ParseRecord decodes the directory record at the start of data, where data holds every byte
// left in the current logical block. It returns the header and the decoded raw identifier
// (self and parent records keep their single 0x00 / 0x01 byte).
//
// Records never straddle blocks, so any record that is too short, odd-sized, longer than the
// bytes left in the block, or whose identifier overruns it makes the filesystem invalid.
func ParseRecord(data []byte, enc encoding.CharacterEncoding) (*Header, string, error) {
	if len(data) == 0 || data[0] == 0 {
		return nil, "", isoerr.InvalidFilesystem("zero length directory record")
	}

	length := int(data[0])
	switch {
	case length < consts.ISO9660_DIR_RECORD_MIN_SIZE:
		return nil, "", isoerr.InvalidFilesystem("directory record length %d is less than %d", length, consts.ISO9660_DIR_RECORD_MIN_SIZE)
	case length%2 != 0:
		return nil, "", isoerr.InvalidFilesystem("directory record length %d is odd", length)
	case length > len(data):
		return nil, "", isoerr.InvalidFilesystem("directory record length %d exceeds the %d bytes left in the block", length, len(data))
	}

	h := &Header{
		Length:                        data[0],
		ExtendedAttributeRecordLength: data[1],
		ExtentLocation:                encoding.UnmarshalUint32LSBMSB(data[2:10]),
		ExtentLength:                  encoding.UnmarshalUint32LSBMSB(data[10:18]),
		RecordingDateAndTime:          encoding.UnmarshalRecordingDateTime([7]byte(data[18:25])),
		FileFlags:                     ParseFileFlags(data[25]),
		FileUnitSize:                  data[26],
		InterleaveGapSize:             data[27],
		VolumeSequenceNumber:          encoding.UnmarshalUint16LSBMSB(data[28:32]),
		FileIdentifierLength:          data[32],
	}

	idLen := int(h.FileIdentifierLength)
	if consts.ISO9660_DIR_RECORD_HEADER_SIZE+idLen > length {
		return nil, "", isoerr.InvalidFilesystem("file identifier length %d exceeds directory record length %d", idLen, length)
	}
	raw := data[consts.ISO9660_DIR_RECORD_HEADER_SIZE : consts.ISO9660_DIR_RECORD_HEADER_SIZE+idLen]

	id, err := decodeIdentifier(raw, enc)
	if err != nil {
		return nil, "", err
	}
	// Anything after the identifier is padding or system use and is not interpreted.
	return h, id, nil
}

func decodeIdentifier(raw []byte, enc encoding.CharacterEncoding) (string, error) {
	if enc.IsJoliet() {
		// Self and parent keep their 8-bit values under Joliet.
		if len(raw) == 1 && (raw[0] == 0x00 || raw[0] == 0x01) {
			return string(raw), nil
		}
	}
	return encoding.DecodeIdentifier("file identifier", raw, enc)
}
