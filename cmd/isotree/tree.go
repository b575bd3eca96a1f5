package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/rstms/isofs/pkg/iso9660"
	"github.com/rstms/isofs/pkg/iso9660/directory"
)

var dirColor = color.New(color.FgHiBlue, color.Bold)

// printTree writes one line per entry below root, indented two spaces per level. Directories
// end with "/". In long mode each line starts with the size and modification time.
func printTree(w io.Writer, fsys *iso9660.ISO9660, root *directory.Directory, long bool) error {
	fmt.Fprintln(w, dirColor.Sprint("/"))
	return fsys.Walk(root, func(p string, e directory.Entry) error {
		depth := strings.Count(p, "/") + 1
		name := e.Name()
		if e.IsDir() {
			name = dirColor.Sprint(name + "/")
		}
		if e.Header().FileFlags.AssociatedFile {
			name += " (associated)"
		}
		prefix := ""
		if long {
			prefix = fmt.Sprintf("%10d %s ", e.Size(), e.ModTime().UTC().Format("2006-01-02 15:04"))
		}
		_, err := fmt.Fprintf(w, "%s%s%s\n", prefix, strings.Repeat("  ", depth), name)
		return err
	})
}
