// Package descriptor decodes the volume descriptors recorded from logical block 16 onward.
package descriptor

import (
	"fmt"

	"github.com/rstms/isofs/pkg/consts"
	"github.com/rstms/isofs/pkg/iso9660/isoerr"
)

// VolumeDescriptorType represents the type of volume descriptor in the ISO9660 standard.
type VolumeDescriptorType byte

const (
	// TYPE_BOOT_RECORD indicates a Boot Record (type 0).
	TYPE_BOOT_RECORD VolumeDescriptorType = 0x00

	// TYPE_PRIMARY_DESCRIPTOR indicates a Primary Volume Descriptor (type 1).
	TYPE_PRIMARY_DESCRIPTOR VolumeDescriptorType = 0x01

	// TYPE_SUPPLEMENTARY_DESCRIPTOR indicates a Supplementary Volume Descriptor (type 2).
	TYPE_SUPPLEMENTARY_DESCRIPTOR VolumeDescriptorType = 0x02

	// TYPE_PARTITION_DESCRIPTOR indicates a Partition Volume Descriptor (type 3). It is not decoded.
	TYPE_PARTITION_DESCRIPTOR VolumeDescriptorType = 0x03

	// TYPE_TERMINATOR_DESCRIPTOR indicates the Volume Descriptor Set Terminator (type 255).
	TYPE_TERMINATOR_DESCRIPTOR VolumeDescriptorType = 0xFF
)

func (t VolumeDescriptorType) String() string {
	switch t {
	case TYPE_BOOT_RECORD:
		return "boot record"
	case TYPE_PRIMARY_DESCRIPTOR:
		return "primary"
	case TYPE_SUPPLEMENTARY_DESCRIPTOR:
		return "supplementary"
	case TYPE_PARTITION_DESCRIPTOR:
		return "partition"
	case TYPE_TERMINATOR_DESCRIPTOR:
		return "terminator"
	default:
		return fmt.Sprintf("reserved (%d)", byte(t))
	}
}

// VolumeDescriptor is one decoded descriptor block: a *PrimaryVolumeDescriptor,
// *SupplementaryVolumeDescriptor, *BootRecordDescriptor, *VolumeDescriptorSetTerminator or
// *UnknownVolumeDescriptor.
type VolumeDescriptor interface {
	Type() VolumeDescriptorType
	Identifier() string
	Version() uint8
}

// UnknownVolumeDescriptor is a well-formed descriptor of a type that is not decoded
// (partition descriptors and the reserved range). Scanning steps over it.
type UnknownVolumeDescriptor struct {
	VolumeDescriptorHeader
}

// Parse decodes a whole descriptor block.
func Parse(data []byte) (VolumeDescriptor, error) {
	if len(data) < consts.ISO9660_SECTOR_SIZE {
		return nil, isoerr.ShortRead(consts.ISO9660_SECTOR_SIZE, len(data))
	}

	var header VolumeDescriptorHeader
	if err := header.Unmarshal(data); err != nil {
		return nil, err
	}

	switch header.VolumeDescriptorType {
	case TYPE_BOOT_RECORD:
		d := &BootRecordDescriptor{VolumeDescriptorHeader: header}
		if err := d.BootRecordBody.Unmarshal(data); err != nil {
			return nil, err
		}
		return d, nil
	case TYPE_PRIMARY_DESCRIPTOR:
		d := &PrimaryVolumeDescriptor{VolumeDescriptorHeader: header}
		if err := d.Table.Unmarshal(data); err != nil {
			return nil, fmt.Errorf("primary volume descriptor: %w", err)
		}
		return d, nil
	case TYPE_SUPPLEMENTARY_DESCRIPTOR:
		d := &SupplementaryVolumeDescriptor{VolumeDescriptorHeader: header, VolumeFlags: data[7]}
		if err := d.Table.Unmarshal(data); err != nil {
			return nil, fmt.Errorf("supplementary volume descriptor: %w", err)
		}
		return d, nil
	case TYPE_TERMINATOR_DESCRIPTOR:
		return &VolumeDescriptorSetTerminator{VolumeDescriptorHeader: header}, nil
	default:
		return &UnknownVolumeDescriptor{VolumeDescriptorHeader: header}, nil
	}
}
