package descriptor

// VolumeDescriptorSetTerminator ends the descriptor set. Its body is reserved and not read.
type VolumeDescriptorSetTerminator struct {
	VolumeDescriptorHeader
}
