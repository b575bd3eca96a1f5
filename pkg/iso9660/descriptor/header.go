package descriptor

import (
	"github.com/rstms/isofs/pkg/consts"
	"github.com/rstms/isofs/pkg/iso9660/isoerr"
)

type VolumeDescriptorHeader struct {
	// Volume Descriptor Types.
	//  | 0 = Boot Record
	//  | 1 = Primary
	//  | 2 = Supplementary
	//  | 3 = Partition
	//  | 4 - 254 = Reserved
	//  | 255 = Terminator
	VolumeDescriptorType VolumeDescriptorType `json:"volume_descriptor_type"`
	// Standard Identifier is always 'CD001'.
	StandardIdentifier string `json:"standard_identifier"`
	// Volume Descriptor Version is always 1 for the descriptors this package reads.
	VolumeDescriptorVersion uint8 `json:"volume_descriptor_version"`
}

func (h *VolumeDescriptorHeader) Type() VolumeDescriptorType {
	return h.VolumeDescriptorType
}

func (h *VolumeDescriptorHeader) Identifier() string {
	return h.StandardIdentifier
}

func (h *VolumeDescriptorHeader) Version() uint8 {
	return h.VolumeDescriptorVersion
}

// Unmarshal parses the 7-byte header at the start of data. Anything other than "CD001" and
// version 1 means the block is not an ISO 9660 volume descriptor.
func (vdh *VolumeDescriptorHeader) Unmarshal(data []byte) error {
	if len(data) < consts.ISO9660_VOLUME_DESC_HEADER_SIZE {
		return isoerr.ShortRead(consts.ISO9660_VOLUME_DESC_HEADER_SIZE, len(data))
	}
	vdh.VolumeDescriptorType = VolumeDescriptorType(data[0])
	vdh.StandardIdentifier = string(data[1:6])
	vdh.VolumeDescriptorVersion = data[6]

	if vdh.StandardIdentifier != consts.ISO9660_STD_IDENTIFIER {
		return isoerr.InvalidFilesystem("unexpected standard identifier %q", vdh.StandardIdentifier)
	}
	if vdh.VolumeDescriptorVersion != consts.ISO9660_VOLUME_DESC_VERSION {
		return isoerr.InvalidFilesystem("unexpected volume descriptor version %d", vdh.VolumeDescriptorVersion)
	}
	return nil
}
