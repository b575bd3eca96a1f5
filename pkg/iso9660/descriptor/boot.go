package descriptor

import (
	"encoding/binary"

	"github.com/rstms/isofs/pkg/consts"
	"github.com/rstms/isofs/pkg/iso9660/encoding"
)

const (
	// Boot System Use Size is the size of a sector minus 71 bytes
	BOOT_SYSTEM_USE_SIZE = consts.ISO9660_SECTOR_SIZE - 71

	// ELTORITO_BOOT_SYSTEM_IDENTIFIER is the boot system identifier of an El Torito boot record.
	ELTORITO_BOOT_SYSTEM_IDENTIFIER = "EL TORITO SPECIFICATION"
)

type BootRecordDescriptor struct {
	VolumeDescriptorHeader
	BootRecordBody
}

type BootRecordBody struct {
	// Boot System Identifier specifies and identification of a system which can recognize and act upon the contents of
	// the Boot Identifier and Boot System Use fields in the Boot Record. (a-characters)
	BootSystemIdentifier string `json:"boot_system_identifier"`
	// Boot Identifier shall specify an identification of the boot system specified in the Boot System Use field of the
	// Boot Record. (a-characters)
	BootIdentifier string `json:"boot_identifier"`
	// Boot System Use is a byte field that is used by the boot system specified by the identifier.
	BootSystemUse [BOOT_SYSTEM_USE_SIZE]byte `json:"boot_system_use"`
}

// IsElTorito reports whether the record is an El Torito boot record.
func (d *BootRecordDescriptor) IsElTorito() bool {
	return d.BootSystemIdentifier == ELTORITO_BOOT_SYSTEM_IDENTIFIER
}

// CatalogLocation returns the logical block of the El Torito boot catalog.
func (d *BootRecordDescriptor) CatalogLocation() uint32 {
	return binary.LittleEndian.Uint32(d.BootSystemUse[0:4])
}

// Unmarshal parses the body of a boot record from a whole descriptor block.
func (b *BootRecordBody) Unmarshal(data []byte) error {
	var err error
	if b.BootSystemIdentifier, err = encoding.DecodeString("boot system identifier", data[7:39], encoding.Iso9660); err != nil {
		return err
	}
	if b.BootIdentifier, err = encoding.DecodeString("boot identifier", data[39:71], encoding.Iso9660); err != nil {
		return err
	}
	copy(b.BootSystemUse[:], data[71:consts.ISO9660_SECTOR_SIZE])
	return nil
}
