package parser

import (
	"fmt"

	"github.com/rstms/isofs/pkg/consts"
	"github.com/rstms/isofs/pkg/iso9660/block"
	"github.com/rstms/isofs/pkg/iso9660/descriptor"
	"github.com/rstms/isofs/pkg/iso9660/isoerr"
	"github.com/rstms/isofs/pkg/option"
)

func NewParser(reader block.Reader, options *option.OpenOptions) *Parser {
	if options == nil {
		options = option.DefaultOpenOptions()
	}
	return &Parser{
		reader:  reader,
		options: options,
	}
}

type Parser struct {
	reader  block.Reader
	options *option.OpenOptions
}

// ScanVolumeDescriptors reads the volume descriptor set from logical block 16 up to and including
// the terminator. The Primary descriptor is mandatory; only the first Supplementary descriptor is
// kept, and none when Joliet is disabled. Partition and reserved descriptors are skipped.
func (p *Parser) ScanVolumeDescriptors() (*descriptor.VolumeDescriptorSet, error) {
	logger := p.options.Logger
	set := &descriptor.VolumeDescriptorSet{}
	buf := make([]byte, block.Size)

	for lba := uint64(consts.ISO9660_SYSTEM_AREA_SECTORS); ; lba++ {
		if err := p.reader.ReadBlock(lba, buf); err != nil {
			return nil, fmt.Errorf("failed to read volume descriptor at block %d: %w", lba, err)
		}

		vd, err := descriptor.Parse(buf)
		if err != nil {
			return nil, fmt.Errorf("volume descriptor at block %d: %w", lba, err)
		}
		logger.Debug("found volume descriptor", "type", vd.Type().String(), "lba", lba)
		set.Locations = append(set.Locations, descriptor.Location{LBA: lba, Type: vd.Type(), Version: vd.Version()})

		switch d := vd.(type) {
		case *descriptor.PrimaryVolumeDescriptor:
			if set.Primary != nil {
				logger.Debug("ignoring additional primary volume descriptor", "lba", lba)
				continue
			}
			set.Primary = d
		case *descriptor.SupplementaryVolumeDescriptor:
			if !p.options.JolietEnabled {
				logger.Debug("joliet disabled, skipping supplementary volume descriptor", "lba", lba)
				continue
			}
			if set.Supplementary != nil {
				logger.Debug("ignoring additional supplementary volume descriptor", "lba", lba)
				continue
			}
			logger.Debug("detected character encoding", "encoding", d.CharacterEncoding.String(), "lba", lba)
			set.Supplementary = d
		case *descriptor.BootRecordDescriptor:
			set.BootRecords = append(set.BootRecords, d)
		case *descriptor.VolumeDescriptorSetTerminator:
			if set.Primary == nil {
				return nil, isoerr.InvalidFilesystem("no primary volume descriptor")
			}
			return set, nil
		}
	}
}
