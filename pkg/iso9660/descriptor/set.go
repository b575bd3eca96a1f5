package descriptor

// VolumeDescriptorSet is what a scan of the descriptor set keeps: the Primary descriptor, the
// first Supplementary descriptor if any, and every boot record in recorded order.
type VolumeDescriptorSet struct {
	Primary       *PrimaryVolumeDescriptor
	Supplementary *SupplementaryVolumeDescriptor
	BootRecords   []*BootRecordDescriptor
	// Locations lists every descriptor read, the terminator and skipped ones included.
	Locations []Location
}

// Location is where a descriptor of the set was recorded.
type Location struct {
	LBA     uint64
	Type    VolumeDescriptorType
	Version uint8
}
