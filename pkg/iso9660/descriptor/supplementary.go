package descriptor

// SupplementaryVolumeDescriptor describes an alternate tree of the same volume, normally the
// Joliet tree with UCS-2 names.
type SupplementaryVolumeDescriptor struct {
	VolumeDescriptorHeader
	// Volume Flags bit 0 set means the escape sequences include ones not registered per ISO 2375.
	VolumeFlags uint8 `json:"volume_flags"`
	Table
}

// HasJoliet reports whether the escape sequences announce one of the Joliet levels.
func (d *SupplementaryVolumeDescriptor) HasJoliet() bool {
	return d.CharacterEncoding.IsJoliet()
}
