package iso9660

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rstms/isofs/pkg/iso9660/directory"
	"github.com/rstms/isofs/pkg/iso9660/isoerr"
)

// Extract extracts all files and directories below the preferred root to the specified path.
func (iso *ISO9660) Extract(path string) error {
	return iso.ExtractDirectory(iso.PreferredRoot(), path)
}

// ExtractDirectory writes the tree below root to path. Associated files are skipped. Progress is
// reported through the ExtractionProgressCallback option after every chunk written.
func (iso *ISO9660) ExtractDirectory(root *directory.Directory, path string) error {
	// Ensure output directory exists
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", path, err)
	}

	totalFiles := 0
	err := iso.Walk(root, func(_ string, e directory.Entry) error {
		if !e.IsDir() && !e.Header().FileFlags.AssociatedFile {
			totalFiles++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}

	fileNumber := 0
	return iso.Walk(root, func(rel string, e directory.Entry) error {
		if !filepath.IsLocal(rel) {
			return isoerr.InvalidFilesystem("entry %q escapes the extraction directory", rel)
		}
		outputPath := filepath.Join(path, filepath.FromSlash(rel))

		switch entry := e.(type) {
		case *directory.Directory:
			if err := os.MkdirAll(outputPath, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", outputPath, err)
			}
			return nil
		case *directory.File:
			if entry.Header().FileFlags.AssociatedFile {
				return nil
			}
			fileNumber++
			return iso.extractFile(entry, rel, outputPath, fileNumber, totalFiles)
		}
		return nil
	})
}

func (iso *ISO9660) extractFile(f *directory.File, rel, outputPath string, fileNumber, totalFiles int) error {
	outFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", outputPath, err)
	}
	defer outFile.Close()

	w := &progressWriter{
		w:          outFile,
		name:       rel,
		total:      f.Size(),
		fileNumber: fileNumber,
		totalFiles: totalFiles,
		callback:   iso.openOptions.ExtractionProgressCallback,
	}
	if _, err := io.Copy(w, f.Reader()); err != nil {
		return fmt.Errorf("failed to extract %s: %w", rel, err)
	}
	if f.Size() == 0 {
		w.callback(rel, 0, 0, fileNumber, totalFiles)
	}
	if err := outFile.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", outputPath, err)
	}

	// Set timestamps
	if mt := f.ModTime(); !mt.IsZero() {
		if err := os.Chtimes(outputPath, mt, mt); err != nil {
			return fmt.Errorf("failed to set timestamps on %s: %w", outputPath, err)
		}
	}
	return nil
}

type progressWriter struct {
	w           io.Writer
	name        string
	transferred int64
	total       int64
	fileNumber  int
	totalFiles  int
	callback    func(string, int64, int64, int, int)
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.transferred += int64(n)
	p.callback(p.name, p.transferred, p.total, p.fileNumber, p.totalFiles)
	return n, err
}
