package directory

// FileFlags holds the flag values from a Directory Record's File Flags field.
// The bits are numbered from 0 (LSB) to 7 (MSB) as follows:
//
//	Bit 0 ("Hidden"): If 0, the file's existence shall be made known to the user; if 1, it need not be.
//	Bit 1 ("Directory"): 0 indicates a file; 1 indicates a directory.
//	Bit 2 ("AssociatedFile"): 0 means not an Associated File; 1 means it is.
//	Bit 3 ("RecordFormat"): 0 means the file's structure is not specified by an Extended Attribute Record;
//	                        1 means it is.
//	Bit 4 ("Protection"): 0 means no owner/group is specified; 1 means they are specified.
//	Bits 5 & 6: Reserved (ignored when reading).
//	Bit 7 ("MultiExtent"): 0 means this is the final Directory Record for the file; 1 means it is not.
type FileFlags struct {
	Hidden         bool `json:"hidden"`
	Directory      bool `json:"directory"`
	AssociatedFile bool `json:"associated_file"`
	RecordFormat   bool `json:"record_format"`
	Protection     bool `json:"protection"`
	MultiExtent    bool `json:"multi_extent"`
}

const (
	flagHidden         = 0x01
	flagDirectory      = 0x02
	flagAssociatedFile = 0x04
	flagRecordFormat   = 0x08
	flagProtection     = 0x10
	flagMultiExtent    = 0x80
)

// Marshal converts the FileFlags into a single byte. Reserved bits are always zero.
func (ff FileFlags) Marshal() byte {
	var b byte
	if ff.Hidden {
		b |= flagHidden
	}
	if ff.Directory {
		b |= flagDirectory
	}
	if ff.AssociatedFile {
		b |= flagAssociatedFile
	}
	if ff.RecordFormat {
		b |= flagRecordFormat
	}
	if ff.Protection {
		b |= flagProtection
	}
	if ff.MultiExtent {
		b |= flagMultiExtent
	}
	return b
}

// ParseFileFlags converts a byte into a FileFlags struct, dropping the reserved bits.
func ParseFileFlags(b byte) FileFlags {
	return FileFlags{
		Hidden:         b&flagHidden != 0,
		Directory:      b&flagDirectory != 0,
		AssociatedFile: b&flagAssociatedFile != 0,
		RecordFormat:   b&flagRecordFormat != 0,
		Protection:     b&flagProtection != 0,
		MultiExtent:    b&flagMultiExtent != 0,
	}
}
