package iso

import (
	"fmt"
	"os"

	"github.com/rstms/isofs/pkg/iso9660"
	"github.com/rstms/isofs/pkg/option"
)

// Open opens an existing ISO image file and mounts it.
func Open(location string, opts ...option.OpenOption) (*Image, error) {
	f, err := os.Open(location)
	if err != nil {
		return nil, fmt.Errorf("failed to open ISO: %w", err)
	}

	fsys, err := iso9660.Mount(f, opts...)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to mount %s: %w", location, err)
	}
	return &Image{ISO9660: fsys, file: f, location: location}, nil
}

// Image is a mounted image file. Close releases the file; entries obtained from the image must
// not be used afterwards.
type Image struct {
	*iso9660.ISO9660
	file     *os.File
	location string
}

func (img *Image) Location() string {
	return img.location
}

func (img *Image) String() string {
	return fmt.Sprintf("%s (volume %q, joliet level %d)", img.location, img.VolumeIdentifier(), img.JolietLevel())
}

func (img *Image) Close() error {
	return img.file.Close()
}
