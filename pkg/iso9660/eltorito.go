package iso9660

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rstms/isofs/pkg/iso9660/block"
	"github.com/rstms/isofs/pkg/iso9660/boot"
)

// BootCatalog reads the catalog named by the first El Torito boot record. An image without one
// returns (nil, nil).
func (iso *ISO9660) BootCatalog() (*boot.Catalog, error) {
	for _, br := range iso.set.BootRecords {
		if !br.IsElTorito() {
			continue
		}
		return boot.ReadCatalog(iso.reader, br.CatalogLocation(), iso.openOptions.Logger)
	}
	return nil, nil
}

// BootImage returns a reader over the image of a catalog entry.
func (iso *ISO9660) BootImage(e *boot.Entry) io.Reader {
	return io.NewSectionReader(&blockReaderAt{r: iso.reader}, block.Offset(uint64(e.LoadRBA)), e.Size())
}

// ExtractBootImages writes the image of every catalog entry that records one into dir, named
// like "1-Boot-NoEmul.img". It returns the paths written.
func (iso *ISO9660) ExtractBootImages(dir string) ([]string, error) {
	catalog, err := iso.BootCatalog()
	if err != nil {
		return nil, err
	}
	if catalog == nil {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	var written []string
	for i, entry := range catalog.Entries {
		if entry.LoadRBA == 0 || entry.Size() == 0 {
			iso.openOptions.Logger.Trace("skipping boot entry without an image", "index", i)
			continue
		}
		outputPath := filepath.Join(dir, entry.FileName(i))
		if err := iso.writeBootImage(entry, outputPath); err != nil {
			return written, err
		}
		iso.openOptions.Logger.Debug("extracted boot image", "path", outputPath, "size", entry.Size())
		written = append(written, outputPath)
	}
	return written, nil
}

func (iso *ISO9660) writeBootImage(e *boot.Entry, outputPath string) error {
	outFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", outputPath, err)
	}
	defer outFile.Close()

	if _, err := io.Copy(outFile, iso.BootImage(e)); err != nil {
		return fmt.Errorf("failed to write boot image %s: %w", outputPath, err)
	}
	return outFile.Close()
}

// blockReaderAt serves byte ranges from whole block reads.
type blockReaderAt struct {
	r block.Reader
}

func (b *blockReaderAt) ReadAt(p []byte, off int64) (int, error) {
	buf := make([]byte, block.Size)
	n := 0
	for n < len(p) {
		pos := off + int64(n)
		if err := b.r.ReadBlock(uint64(pos/block.Size), buf); err != nil {
			return n, err
		}
		n += copy(p[n:], buf[pos%block.Size:])
	}
	return n, nil
}
