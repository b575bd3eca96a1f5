package main

import (
	"fmt"
	"os"

	"github.com/bgrewell/usage"
	"github.com/rstms/isofs"
	"github.com/rstms/isofs/pkg/logging"
	"github.com/rstms/isofs/pkg/option"
	"golang.org/x/term"
)

func main() {

	u := usage.NewUsage(
		usage.WithApplicationName("isoview"),
		usage.WithApplicationDescription("isoview shows where the descriptors, path tables, boot catalog, directories and files of an ISO 9660 image are recorded."),
	)
	help := u.AddBooleanOption("h", "help", false, "Show this help message", "optional", nil)
	verbose := u.AddBooleanOption("v", "verbose", false, "Print verbose output, including every file extent", "", nil)
	debug := u.AddBooleanOption("d", "debug", false, "Enable debug logging", "", nil)
	jsonOut := u.AddBooleanOption("j", "json", false, "Print the layout as JSON", "", nil)
	hex := u.AddBooleanOption("x", "hex", false, "Print offsets in hexadecimal", "", nil)
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
	if *debug {
		level = logging.LEVEL_DEBUG
	}
	useColor := term.IsTerminal(int(os.Stdout.Fd()))
	logger := logging.NewLogger(logging.NewSimpleLogger(os.Stderr, level, useColor))

	i, err := iso.Open(*path, option.WithLogger(logger))
	if err != nil {
		u.PrintError(err)
		os.Exit(1)
	}
	defer i.Close()

	layout, err := i.Layout()
	if err != nil {
		u.PrintError(err)
		i.Close()
		os.Exit(1)
	}

	if *jsonOut {
		fmt.Println(layout.PrettyJSON())
		return
	}
	fmt.Println(i.String())
	layout.Print(os.Stdout, *verbose, useColor, *hex)
}
