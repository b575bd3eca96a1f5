package testimage

import (
	"encoding/binary"
	"fmt"

	"github.com/rstms/isofs/pkg/consts"
	"github.com/rstms/isofs/pkg/iso9660/boot"
	"github.com/rstms/isofs/pkg/iso9660/directory"
	"github.com/rstms/isofs/pkg/iso9660/encoding"
)

const catalogEntrySize = 32

// Record encodes a directory record for the given raw identifier bytes, padding the record to
// an even length. The Length and FileIdentifierLength fields of h are ignored and computed.
func Record(h directory.Header, identifier []byte) ([]byte, error) {
	size := consts.ISO9660_DIR_RECORD_HEADER_SIZE + len(identifier)
	if size%2 != 0 {
		size++
	}
	if size > 255 {
		return nil, fmt.Errorf("directory record of %d bytes is too long", size)
	}
	buf := make([]byte, size)

	recTime, err := encoding.MarshalRecordingDateTime(h.RecordingDateAndTime)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal RecordingDateAndTime: %w", err)
	}
	loc := encoding.MarshalBothByteOrders32(h.ExtentLocation)
	length := encoding.MarshalBothByteOrders32(h.ExtentLength)
	volSeq := encoding.MarshalBothByteOrders16(h.VolumeSequenceNumber)

	buf[0] = uint8(size)
	buf[1] = h.ExtendedAttributeRecordLength
	copy(buf[2:10], loc[:])
	copy(buf[10:18], length[:])
	copy(buf[18:25], recTime[:])
	buf[25] = h.FileFlags.Marshal()
	buf[26] = h.FileUnitSize
	buf[27] = h.InterleaveGapSize
	copy(buf[28:32], volSeq[:])
	buf[32] = uint8(len(identifier))
	copy(buf[33:], identifier)
	return buf, nil
}

// ValidationEntry encodes a boot catalog validation entry with a correct checksum.
func ValidationEntry(platform boot.Platform, id string) []byte {
	data := make([]byte, catalogEntrySize)
	data[0] = 0x01
	data[1] = byte(platform)
	copy(data[4:28], id)
	data[0x1E] = 0x55
	data[0x1F] = 0xAA

	checksum := uint16(0)
	for i := 0; i < catalogEntrySize; i += 2 {
		checksum += binary.LittleEndian.Uint16(data[i : i+2])
	}
	binary.LittleEndian.PutUint16(data[0x1C:0x1E], -checksum)
	return data
}

// BootEntry encodes e as a default or section entry.
func BootEntry(e *boot.Entry) []byte {
	data := make([]byte, catalogEntrySize)
	if e.Bootable {
		data[0] = 0x88
	}
	data[1] = byte(e.Emulation)
	binary.LittleEndian.PutUint16(data[2:4], e.LoadSegment)
	data[4] = byte(e.SystemType)
	binary.LittleEndian.PutUint16(data[6:8], e.SectorCount)
	binary.LittleEndian.PutUint32(data[8:12], e.LoadRBA)
	return data
}

// SectionHeader encodes a boot catalog section header for count entries.
func SectionHeader(final bool, platform boot.Platform, count uint16, id string) []byte {
	data := make([]byte, catalogEntrySize)
	data[0] = 0x90
	if final {
		data[0] = 0x91
	}
	data[1] = byte(platform)
	binary.LittleEndian.PutUint16(data[2:4], count)
	copy(data[4:32], id)
	return data
}
