package descriptor

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/rstms/isofs/pkg/consts"
	"github.com/rstms/isofs/pkg/iso9660/block"
	"github.com/rstms/isofs/pkg/iso9660/directory"
	"github.com/rstms/isofs/pkg/iso9660/encoding"
	"github.com/rstms/isofs/pkg/iso9660/isoerr"
)

// Table is the body shared by Primary and Supplementary volume descriptors. String fields are
// decoded in the descriptor's character encoding with trailing padding removed.
type Table struct {
	// System Identifier specifies a system which can recognize and act upon the content of the Logical Sectors within
	// logical Sector Numbers 0 to 15 of the volume.
	SystemIdentifier string `json:"system_identifier"`
	// Volume Identifier specifies an identification of the volume.
	VolumeIdentifier string `json:"volume_identifier"`
	// Volume Space Size is the number of logical blocks in which the Volume Space of the volume is recorded.
	//  | Encoding: BothByteOrder
	VolumeSpaceSize uint32 `json:"volume_space_size"`
	// Character Encoding is detected from the escape sequences field. Primary descriptors normally leave it blank.
	CharacterEncoding encoding.CharacterEncoding `json:"character_encoding"`
	// Volume Set Size is the assigned Volume Set size of the volume.
	//  | Encoding: BothByteOrder
	VolumeSetSize uint16 `json:"volume_set_size"`
	// Volume Sequence Number is the ordinal number of the volume in the Volume Set.
	//  | Encoding: BothByteOrder
	VolumeSequenceNumber uint16 `json:"volume_sequence_number"`
	// Logical Block Size specifies the size in bytes of a logical block. Only 2048 is accepted.
	//  | Encoding: BothByteOrder
	LogicalBlockSize uint16 `json:"logical_block_size"`
	// Path Table Size specifies the length in bytes of a recorded occurrence of the Path Table.
	//  | Encoding: BothByteOrder
	PathTableSize uint32 `json:"path_table_size"`
	//  | Encoding: LittleEndian
	LocationOfTypeLPathTable uint32 `json:"location_of_type_l_path_table"`
	//  | Encoding: LittleEndian
	LocationOfOptionalTypeLPathTable uint32 `json:"location_of_optional_type_l_path_table"`
	//  | Encoding: BigEndian
	LocationOfTypeMPathTable uint32 `json:"location_of_type_m_path_table"`
	//  | Encoding: BigEndian
	LocationOfOptionalTypeMPathTable uint32 `json:"location_of_optional_type_m_path_table"`
	// Root Directory Record is the 34 byte directory record of the root directory.
	RootDirectoryRecord *directory.Header `json:"root_directory_record"`
	// Root Identifier is the raw identifier of the root record, normally "\x00".
	RootIdentifier string `json:"root_identifier"`
	// Volume Set Identifier specifies an identification of the Volume Set of which the volume is a member.
	VolumeSetIdentifier string `json:"volume_set_identifier"`
	// Publisher Identifier names the user who specified what shall be recorded on the volume. A leading 0x5F
	// means the rest names a file in the root directory.
	PublisherIdentifier string `json:"publisher_identifier"`
	// Data Preparer Identifier names the entity which controls the preparation of the data.
	DataPreparerIdentifier string `json:"data_preparer_identifier"`
	// Application Identifier names how the data are recorded.
	ApplicationIdentifier string `json:"application_identifier"`
	// Copyright, Abstract and Bibliographic File Identifiers name files in the root directory.
	CopyrightFileIdentifier     string `json:"copyright_file_identifier"`
	AbstractFileIdentifier      string `json:"abstract_file_identifier"`
	BibliographicFileIdentifier string `json:"bibliographic_file_identifier"`
	//  | 8.4.26.1 Date and Time Format
	VolumeCreationDateAndTime     time.Time `json:"volume_creation_date_and_time"`
	VolumeModificationDateAndTime time.Time `json:"volume_modification_date_and_time"`
	// The zero time means the volume never expires.
	VolumeExpirationDateAndTime time.Time `json:"volume_expiration_date_and_time"`
	// The zero time means the volume may be used at once.
	VolumeEffectiveDateAndTime time.Time `json:"volume_effective_date_and_time"`
	// File Structure Version is 1 for the structure of this standard.
	FileStructureVersion uint8 `json:"file_structure_version"`
}

type stringField struct {
	name  string
	start int
	end   int
	dst   *string
}

type dateField struct {
	name  string
	start int
	dst   *time.Time
}

// Unmarshal decodes a Primary or Supplementary descriptor block. The escape sequences are read
// first since they decide how every string field and the root identifier are decoded.
func (t *Table) Unmarshal(data []byte) error {
	if len(data) < consts.ISO9660_SECTOR_SIZE {
		return isoerr.ShortRead(consts.ISO9660_SECTOR_SIZE, len(data))
	}

	t.CharacterEncoding = encoding.DetectCharacterEncoding(data[88:120])

	t.VolumeSpaceSize = encoding.UnmarshalUint32LSBMSB(data[80:88])
	t.VolumeSetSize = encoding.UnmarshalUint16LSBMSB(data[120:124])
	t.VolumeSequenceNumber = encoding.UnmarshalUint16LSBMSB(data[124:128])
	t.LogicalBlockSize = encoding.UnmarshalUint16LSBMSB(data[128:132])
	if t.LogicalBlockSize != consts.ISO9660_SECTOR_SIZE {
		return isoerr.InvalidFilesystem("logical block size %d is not supported", t.LogicalBlockSize)
	}

	t.PathTableSize = encoding.UnmarshalUint32LSBMSB(data[132:140])
	t.LocationOfTypeLPathTable = binary.LittleEndian.Uint32(data[140:144])
	t.LocationOfOptionalTypeLPathTable = binary.LittleEndian.Uint32(data[144:148])
	t.LocationOfTypeMPathTable = binary.BigEndian.Uint32(data[148:152])
	t.LocationOfOptionalTypeMPathTable = binary.BigEndian.Uint32(data[152:156])

	root, id, err := directory.ParseRecord(data[156:190], t.CharacterEncoding)
	if err != nil {
		return fmt.Errorf("root directory record: %w", err)
	}
	t.RootDirectoryRecord, t.RootIdentifier = root, id

	strs := []stringField{
		{"system identifier", 8, 40, &t.SystemIdentifier},
		{"volume identifier", 40, 72, &t.VolumeIdentifier},
		{"volume set identifier", 190, 318, &t.VolumeSetIdentifier},
		{"publisher identifier", 318, 446, &t.PublisherIdentifier},
		{"data preparer identifier", 446, 574, &t.DataPreparerIdentifier},
		{"application identifier", 574, 702, &t.ApplicationIdentifier},
		{"copyright file identifier", 702, 739, &t.CopyrightFileIdentifier},
		{"abstract file identifier", 739, 776, &t.AbstractFileIdentifier},
		{"bibliographic file identifier", 776, 813, &t.BibliographicFileIdentifier},
	}
	for _, f := range strs {
		if *f.dst, err = encoding.DecodeString(f.name, data[f.start:f.end], t.CharacterEncoding); err != nil {
			return err
		}
	}

	dates := []dateField{
		{"volume creation date", 813, &t.VolumeCreationDateAndTime},
		{"volume modification date", 830, &t.VolumeModificationDateAndTime},
		{"volume expiration date", 847, &t.VolumeExpirationDateAndTime},
		{"volume effective date", 864, &t.VolumeEffectiveDateAndTime},
	}
	for _, f := range dates {
		if *f.dst, err = encoding.UnmarshalDateTime([17]byte(data[f.start : f.start+17])); err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
	}

	t.FileStructureVersion = data[881]
	return nil
}

// RootDirectory binds the root directory record to the block reader of the image.
func (t *Table) RootDirectory(r block.Reader) *directory.Directory {
	return directory.NewDirectory(t.RootDirectoryRecord, t.RootIdentifier, r, t.CharacterEncoding)
}
