package main

import (
	"fmt"
	"os"

	"github.com/bgrewell/usage"
	"github.com/fatih/color"
	"github.com/rstms/isofs"
	"github.com/rstms/isofs/pkg/iso9660/directory"
	"github.com/rstms/isofs/pkg/logging"
	"github.com/rstms/isofs/pkg/option"
	"golang.org/x/term"
)

func main() {

	u := usage.NewUsage(
		usage.WithApplicationName("isotree"),
		usage.WithApplicationDescription("isotree prints the directory tree of an ISO 9660 image."),
	)
	help := u.AddBooleanOption("h", "help", false, "Show this help message", "optional", nil)
	verbose := u.AddBooleanOption("v", "verbose", false, "Enable debug logging", "", nil)
	trace := u.AddBooleanOption("vv", "trace", false, "Enable trace logging", "", nil)
	primary := u.AddBooleanOption("p", "primary", false, "Show the Primary tree even when Joliet names are present", "", nil)
	long := u.AddBooleanOption("l", "long", false, "Show sizes and modification times", "", nil)
	path := u.AddArgument(1, "iso-path", "Path to the ISO image", "")
	parsed := u.Parse()

	if !parsed {
		u.PrintError(fmt.Errorf("failed to parse arguments"))
		os.Exit(1)
	}

	if *help {
		u.PrintUsage()
		os.Exit(0)
	}

	if path == nil || *path == "" {
		u.PrintError(fmt.Errorf("location of the iso file <iso-path> must be provided"))
		os.Exit(1)
	}

	level := logging.LEVEL_INFO
	if *verbose {
		level = logging.LEVEL_DEBUG
	}
	if *trace {
		level = logging.LEVEL_TRACE
	}
	useColor := term.IsTerminal(int(os.Stdout.Fd()))
	color.NoColor = !useColor
	logger := logging.NewLogger(logging.NewSimpleLogger(os.Stderr, level, useColor))

	img, err := iso.Open(*path,
		option.WithLogger(logger),
		option.WithPreferJoliet(!*primary))
	if err != nil {
		u.PrintError(err)
		os.Exit(1)
	}
	defer img.Close()

	var root *directory.Directory
	if *primary {
		root = img.Root()
	}
	if err := printTree(os.Stdout, img.ISO9660, root, *long); err != nil {
		u.PrintError(err)
		os.Exit(1)
	}
}
