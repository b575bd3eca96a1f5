package main

import (
	"fmt"
	"io"
	"os"

	"github.com/bgrewell/usage"
	"github.com/rstms/isofs"
	"github.com/rstms/isofs/pkg/iso9660/directory"
	"github.com/rstms/isofs/pkg/logging"
	"github.com/rstms/isofs/pkg/option"
)

func main() {

	u := usage.NewUsage(
		usage.WithApplicationName("isocat"),
		usage.WithApplicationDescription("isocat writes one file from an ISO 9660 image to standard output."),
	)
	help := u.AddBooleanOption("h", "help", false, "Show this help message", "optional", nil)
	verbose := u.AddBooleanOption("v", "verbose", false, "Enable debug logging", "", nil)
	primary := u.AddBooleanOption("p", "primary", false, "Resolve against the Primary tree before Joliet", "", nil)
	path := u.AddArgument(1, "iso-path", "Path to the ISO image", "")
	file := u.AddArgument(2, "file", "Path of the file within the image", "")
	parsed := u.Parse()

	if !parsed {
		u.PrintError(fmt.Errorf("failed to parse arguments"))
		os.Exit(1)
	}

	if *help {
		u.PrintUsage()
		os.Exit(0)
	}

	if path == nil || *path == "" || file == nil || *file == "" {
		u.PrintError(fmt.Errorf("both <iso-path> and <file> must be provided"))
		os.Exit(1)
	}

	level := logging.LEVEL_INFO
	if *verbose {
		level = logging.LEVEL_DEBUG
	}
	logger := logging.NewLogger(logging.NewSimpleLogger(os.Stderr, level, true))

	img, err := iso.Open(*path,
		option.WithLogger(logger),
		option.WithPreferJoliet(!*primary))
	if err != nil {
		u.PrintError(err)
		os.Exit(1)
	}
	defer img.Close()

	if err := cat(os.Stdout, img, *file); err != nil {
		fmt.Fprintf(os.Stderr, "isocat: %v\n", err)
		img.Close()
		os.Exit(1)
	}
}

func cat(w io.Writer, img *iso.Image, name string) error {
	e, err := img.Open(name)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", name, err)
	}
	if e == nil {
		return fmt.Errorf("%s: no such file", name)
	}
	f, ok := e.(*directory.File)
	if !ok {
		return fmt.Errorf("%s: is a directory", name)
	}
	if _, err := io.Copy(w, f.Reader()); err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	return nil
}
