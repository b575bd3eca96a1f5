package consts

const (
	// Number of system area sectors.
	ISO9660_SYSTEM_AREA_SECTORS = 16

	// Standard ISO9660 identifier.
	ISO9660_STD_IDENTIFIER = "CD001"

	// ISO9660 volume descriptor version (always 1).
	ISO9660_VOLUME_DESC_VERSION = 1

	// ISO9660 logical block size. Other block sizes are rejected at mount time.
	ISO9660_SECTOR_SIZE = 2048

	// ISO9660 volume descriptor header size
	ISO9660_VOLUME_DESC_HEADER_SIZE = 7

	// Size of the fixed part of a directory record, up to and including the identifier length byte.
	ISO9660_DIR_RECORD_HEADER_SIZE = 33

	// Smallest legal directory record: fixed part plus a one byte identifier.
	ISO9660_DIR_RECORD_MIN_SIZE = 34

	// Size of the escape sequences field in a Primary or Supplementary descriptor.
	ISO9660_ESCAPE_SEQUENCES_SIZE = 32

	// JOLIET level 1, 2, and 3 escape sequences.
	JOLIET_LEVEL_1_ESCAPE = "%/@"
	JOLIET_LEVEL_2_ESCAPE = "%/C"
	JOLIET_LEVEL_3_ESCAPE = "%/E"

	// Separators allowed by ISO9660 0x2E and 0x3B.
	ISO9660_SEPARATOR_1 = "."
	ISO9660_SEPARATOR_2 = ";"

	// ISO9660 Filler 0x20 (space)
	ISO9660_FILLER = " "

	// Raw identifiers of the self and parent directory records.
	ISO9660_SELF_IDENTIFIER   = "\x00"
	ISO9660_PARENT_IDENTIFIER = "\x01"

	// Path separator used by Open.
	PATH_SEPARATOR = "/"
)
