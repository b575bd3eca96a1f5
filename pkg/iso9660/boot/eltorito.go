// Package boot reads El Torito boot catalogs.
package boot

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/diskfs/go-diskfs/partition/mbr"
	"github.com/rstms/isofs/pkg/iso9660/block"
	"github.com/rstms/isofs/pkg/iso9660/isoerr"
	"github.com/rstms/isofs/pkg/logging"
)

const (
	entrySize = 32

	headerValidation   = 0x01
	headerSection      = 0x90
	headerFinalSection = 0x91
	headerExtension    = 0x44

	indicatorBootable    = 0x88
	indicatorNotBootable = 0x00

	// Boot entries count their image in virtual sectors.
	virtualSectorSize = 512

	// A catalog larger than this is treated as corrupt.
	maxCatalogBlocks = 16
)

// PartitionTypeName names an MBR partition type, as found in the system type byte of a hard
// disk emulation entry or in a hybrid MBR.
func PartitionTypeName(t mbr.Type) string {
	switch t {
	case mbr.Empty:
		return "Empty"
	case mbr.Fat12:
		return "FAT12"
	case mbr.Fat16:
		return "FAT16"
	case mbr.ExtendedCHS:
		return "Extended (CHS)"
	case mbr.Fat16b:
		return "FAT16B"
	case mbr.NTFS:
		return "NTFS"
	case mbr.Fat32CHS:
		return "FAT32 (CHS)"
	case mbr.Fat32LBA:
		return "FAT32 (LBA)"
	case mbr.Fat16bLBA:
		return "FAT16B (LBA)"
	case mbr.ExtendedLBA:
		return "Extended (LBA)"
	case mbr.Linux:
		return "Linux"
	case mbr.LinuxLVM:
		return "Linux LVM"
	case mbr.Iso9660:
		return "ISO9660"
	case mbr.HFS:
		return "HFS"
	case mbr.GPTProtective:
		return "GPT Protective"
	case mbr.EFISystem:
		return "EFI System"
	default:
		return fmt.Sprintf("Unknown (%#02x)", byte(t))
	}
}

// Platform represents the target booting system for an El-Torito bootable ISO.
type Platform uint8

const (
	BIOS Platform = 0x0  // Classic PC-BIOS x86
	PPC  Platform = 0x1  // PowerPC
	Mac  Platform = 0x2  // Macintosh systems
	EFI  Platform = 0xef // Extensible Firmware Interface (EFI)
)

func (p Platform) String() string {
	switch p {
	case BIOS:
		return "BIOS"
	case PPC:
		return "PowerPC"
	case Mac:
		return "Macintosh"
	case EFI:
		return "EFI"
	default:
		return "Unknown"
	}
}

// Emulation represents the emulation mode used for booting.
type Emulation uint8

const (
	NoEmulation        Emulation = 0x0 // No emulation (default)
	Floppy12Emulation  Emulation = 0x1 // Emulate a 1.2 MB floppy
	Floppy144Emulation Emulation = 0x2 // Emulate a 1.44 MB floppy
	Floppy288Emulation Emulation = 0x3 // Emulate a 2.88 MB floppy
	HardDiskEmulation  Emulation = 0x4 // Emulate a hard disk
)

func (e Emulation) String() string {
	switch e {
	case NoEmulation:
		return "NoEmul"
	case Floppy12Emulation:
		return "1.2MFloppy"
	case Floppy144Emulation:
		return "1.44MFloppy"
	case Floppy288Emulation:
		return "2.88MFloppy"
	case HardDiskEmulation:
		return "HardDisk"
	default:
		return "Unknown"
	}
}

// Catalog is a decoded boot catalog. Entries holds the default entry first, followed by the
// entries of every section in recorded order.
type Catalog struct {
	LBA      uint32   `json:"lba"`
	Platform Platform `json:"platform"`
	ID       string   `json:"id"`
	Entries  []*Entry `json:"entries"`
	// Length is the number of catalog bytes decoded, including headers and extension entries.
	Length int64 `json:"length"`
}

// Entry is the default entry or one section entry of a catalog.
type Entry struct {
	// Section is 0 for the default entry and counts section headers from 1 otherwise.
	Section     int       `json:"section"`
	Bootable    bool      `json:"bootable"`
	Platform    Platform  `json:"platform"`
	Emulation   Emulation `json:"emulation"`
	LoadSegment uint16    `json:"load_segment"`
	SystemType  mbr.Type  `json:"system_type"`
	// SectorCount is the image length in 512 byte virtual sectors.
	SectorCount uint16 `json:"sector_count"`
	// LoadRBA is the logical block of the image.
	LoadRBA uint32 `json:"load_rba"`
}

// Size returns the length of the boot image in bytes. Floppy images have their emulated size;
// every other image is SectorCount virtual sectors long.
func (e *Entry) Size() int64 {
	switch e.Emulation {
	case Floppy12Emulation:
		return 1200 * 1024
	case Floppy144Emulation:
		return 1440 * 1024
	case Floppy288Emulation:
		return 2880 * 1024
	}
	return int64(e.SectorCount) * virtualSectorSize
}

// FileName names the image of the entry at index i when it is extracted.
func (e *Entry) FileName(i int) string {
	return fmt.Sprintf("%d-Boot-%s.img", i+1, e.Emulation)
}

// cursor hands out consecutive 32 byte catalog entries, reading blocks as needed.
type cursor struct {
	r     block.Reader
	lba   uint32
	buf   []byte
	block int
	next  int
}

func (c *cursor) entry() ([]byte, error) {
	b := c.next * entrySize / block.Size
	if b >= maxCatalogBlocks {
		return nil, isoerr.InvalidFilesystem("boot catalog at block %d is longer than %d blocks", c.lba, maxCatalogBlocks)
	}
	if b != c.block {
		if err := c.r.ReadBlock(uint64(c.lba)+uint64(b), c.buf); err != nil {
			return nil, fmt.Errorf("failed to read boot catalog: %w", err)
		}
		c.block = b
	}
	off := c.next * entrySize % block.Size
	c.next++
	return c.buf[off : off+entrySize], nil
}

// peek returns the header byte of the next entry without consuming it.
func (c *cursor) peek() (byte, error) {
	e, err := c.entry()
	if err != nil {
		return 0, err
	}
	c.next--
	return e[0], nil
}

// ReadCatalog decodes the boot catalog recorded at lba.
func ReadCatalog(r block.Reader, lba uint32, logger *logging.Logger) (*Catalog, error) {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	c := &cursor{r: r, lba: lba, buf: make([]byte, block.Size), block: -1}

	data, err := c.entry()
	if err != nil {
		return nil, err
	}
	if err := parseValidationEntry(data); err != nil {
		return nil, fmt.Errorf("boot catalog at block %d: %w", lba, err)
	}
	catalog := &Catalog{
		LBA:      lba,
		Platform: Platform(data[1]),
		ID:       strings.TrimRight(string(data[4:28]), "\x00 "),
	}

	data, err = c.entry()
	if err != nil {
		return nil, err
	}
	def, err := parseEntry(data, 0, catalog.Platform)
	if err != nil {
		return nil, fmt.Errorf("boot catalog default entry: %w", err)
	}
	catalog.Entries = append(catalog.Entries, def)

	for section := 1; ; section++ {
		data, err := c.entry()
		if err != nil {
			return nil, err
		}
		header := data[0]
		if header != headerSection && header != headerFinalSection {
			// Anything else ends the catalog, usually zero fill.
			c.next--
			break
		}
		platform := Platform(data[1])
		count := int(binary.LittleEndian.Uint16(data[2:4]))
		logger.Trace("boot catalog section", "section", section, "platform", platform.String(), "entries", count)

		for i := 0; i < count; i++ {
			data, err := c.entry()
			if err != nil {
				return nil, err
			}
			e, err := parseEntry(data, section, platform)
			if err != nil {
				return nil, fmt.Errorf("boot catalog section %d entry %d: %w", section, i+1, err)
			}
			catalog.Entries = append(catalog.Entries, e)

			for {
				next, err := c.peek()
				if err != nil {
					return nil, err
				}
				if next != headerExtension {
					break
				}
				c.next++
			}
		}
		if header == headerFinalSection {
			break
		}
	}
	catalog.Length = int64(c.next * entrySize)

	logger.Debug("read boot catalog", "lba", lba, "platform", catalog.Platform.String(), "entries", len(catalog.Entries))
	return catalog, nil
}

func parseValidationEntry(data []byte) error {
	if data[0] != headerValidation {
		return isoerr.InvalidFilesystem("validation entry has header id %#02x", data[0])
	}
	if data[0x1E] != 0x55 || data[0x1F] != 0xAA {
		return isoerr.InvalidFilesystem("validation entry has key bytes %02x%02x", data[0x1E], data[0x1F])
	}
	checksum := uint16(0)
	for i := 0; i < entrySize; i += 2 {
		checksum += binary.LittleEndian.Uint16(data[i : i+2])
	}
	if checksum != 0 {
		return isoerr.InvalidFilesystem("validation entry checksum does not sum to zero (%#04x)", checksum)
	}
	return nil
}

func parseEntry(data []byte, section int, platform Platform) (*Entry, error) {
	if data[0] != indicatorBootable && data[0] != indicatorNotBootable {
		return nil, isoerr.InvalidFilesystem("boot indicator %#02x", data[0])
	}
	return &Entry{
		Section:     section,
		Bootable:    data[0] == indicatorBootable,
		Platform:    platform,
		Emulation:   Emulation(data[1] & 0x0f),
		LoadSegment: binary.LittleEndian.Uint16(data[2:4]),
		SystemType:  mbr.Type(data[4]),
		SectorCount: binary.LittleEndian.Uint16(data[6:8]),
		LoadRBA:     binary.LittleEndian.Uint32(data[8:12]),
	}, nil
}
