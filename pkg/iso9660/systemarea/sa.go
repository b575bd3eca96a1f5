// Package systemarea inspects the blocks that precede the volume descriptor set. The content is
// unspecified by ISO 9660; hybrid images keep an MBR partition table there so that the same
// image boots from a disk.
package systemarea

import (
	"bytes"
	"errors"

	"github.com/diskfs/go-diskfs/partition/mbr"
	"github.com/rstms/isofs/pkg/consts"
	"github.com/rstms/isofs/pkg/iso9660/block"
	"github.com/rstms/isofs/pkg/logging"
)

// Sectors is the length of the system area in logical blocks.
const Sectors = consts.ISO9660_SYSTEM_AREA_SECTORS

type SystemArea struct {
	Offset int64
	Length int64
	// Blank is true when every byte of the area is zero.
	Blank bool
	// MBR is the hybrid partition table, or nil.
	MBR *mbr.Table
}

// Partitions returns the non-empty MBR partitions.
func (s *SystemArea) Partitions() []*mbr.Partition {
	if s.MBR == nil {
		return nil
	}
	var out []*mbr.Partition
	for _, p := range s.MBR.Partitions {
		if p.Type != mbr.Empty {
			out = append(out, p)
		}
	}
	return out
}

// Read reads the system area through r. A boot signature whose table does not decode is not an
// error; the area simply has no MBR.
func Read(r block.Reader, logger *logging.Logger) (*SystemArea, error) {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	data := make([]byte, Sectors*block.Size)
	for i := 0; i < Sectors; i++ {
		if err := r.ReadBlock(uint64(i), data[i*block.Size:(i+1)*block.Size]); err != nil {
			return nil, err
		}
	}

	sa := &SystemArea{
		Offset: 0,
		Length: int64(len(data)),
		Blank:  bytes.Equal(data, make([]byte, len(data))),
	}
	if sa.Blank {
		return sa, nil
	}

	table, err := mbr.Read(readOnlyFile{bytes.NewReader(data)}, 512, 512)
	if err != nil {
		logger.Debug("system area has no partition table", "reason", err.Error())
		return sa, nil
	}
	sa.MBR = table
	logger.Debug("system area has a partition table", "partitions", len(sa.Partitions()))
	return sa, nil
}

// readOnlyFile satisfies the file interface the MBR reader expects.
type readOnlyFile struct {
	*bytes.Reader
}

func (readOnlyFile) WriteAt([]byte, int64) (int, error) {
	return 0, errors.New("system area is read-only")
}
