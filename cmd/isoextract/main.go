package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rstms/isofs"
	"github.com/rstms/isofs/pkg/iso9660/directory"
	"github.com/rstms/isofs/pkg/logging"
	"github.com/rstms/isofs/pkg/option"
	"github.com/theckman/yacspin"
	"golang.org/x/term"
)

var (
	version = "dev"
)

// truncateString truncates the input string to the specified max length.
// If truncation occurs, it prepends "..." to indicate the string has been shortened.
func truncateString(input string, maxLength int) string {
	if len(input) <= maxLength {
		return input
	}
	if maxLength <= 3 {
		return input[len(input)-maxLength:]
	}
	return "..." + input[len(input)-(maxLength-3):]
}

// progressMessage formats one spinner line to fit width columns.
func progressMessage(width int, currentFilename string, bytesTransferred, totalBytes int64, currentFileNumber, totalFileCount int) string {
	percent := 100.0
	if totalBytes > 0 {
		percent = float64(bytesTransferred) / float64(totalBytes) * 100
	}

	fixedPart := fmt.Sprintf(" [%d/%d] ", currentFileNumber, totalFileCount)
	suffixPart := fmt.Sprintf(" - %.2f%%", percent)

	// Keep room for the spinner character and a margin.
	availableSpace := width - len(fixedPart) - len(suffixPart) - 6
	if availableSpace < 10 {
		availableSpace = 10
	}

	return fmt.Sprintf("%s%s%s", fixedPart, truncateString(currentFilename, availableSpace), suffixPart)
}

// CreateProgressCallback returns a ProgressCallback that updates the spinner's message.
func CreateProgressCallback(spinner *yacspin.Spinner) option.ExtractionProgressCallback {
	return func(
		currentFilename string,
		bytesTransferred int64,
		totalBytes int64,
		currentFileNumber int,
		totalFileCount int,
	) {
		if spinner == nil {
			return
		}
		width, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil {
			width = 80
		}
		spinner.Message(progressMessage(width, currentFilename, bytesTransferred, totalBytes, currentFileNumber, totalFileCount))
	}
}

// InitializeSpinner sets up and starts the yacspin spinner.
func InitializeSpinner() (*yacspin.Spinner, error) {
	settings := yacspin.Config{
		Frequency:         100 * time.Millisecond,
		ShowCursor:        false,
		SpinnerAtEnd:      false,
		CharSet:           yacspin.CharSets[14],
		Colors:            []string{"fgHiCyan"},
		StopColors:        []string{"fgHiGreen"},
		StopFailColors:    []string{"fgHiRed"},
		StopFailCharacter: "✗",
		StopCharacter:     "✓",
	}

	spinner, err := yacspin.New(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create spinner: %w", err)
	}

	if err := spinner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start spinner: %w", err)
	}

	return spinner, nil
}

func usage() {
	fmt.Println("isoextract v" + version)
	fmt.Println("Usage: isoextract [options] <path-to-iso> [path-in-image]")
	fmt.Println("  -v               Enable verbose (debug) logging")
	fmt.Println("  -vv              Enable trace logging")
	fmt.Println("  -joliet          Read Joliet names when present (default: true)")
	fmt.Println("  -o <directory>   Output directory (default './extracted')")
	fmt.Println("  -boot            Also extract El Torito boot images into <directory>/[BOOT]")
}

func main() {
	debug := flag.Bool("v", false, "Enable verbose (debug) logging")
	trace := flag.Bool("vv", false, "Enable trace logging")
	joliet := flag.Bool("joliet", true, "Read Joliet names when present")
	outputDir := flag.String("o", "./extracted", "Output directory for extracted files")
	bootImages := flag.Bool("boot", false, "Also extract El Torito boot images")
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(1)
	}
	isoPath := flag.Arg(0)

	level := logging.LEVEL_INFO
	if *debug {
		level = logging.LEVEL_DEBUG
	}
	if *trace {
		level = logging.LEVEL_TRACE
	}
	logger := logging.NewLogger(logging.NewSimpleLogger(os.Stderr, level, true))

	// Logging and the spinner share the terminal, so the spinner only runs when logging is quiet.
	var spinner *yacspin.Spinner
	if level == logging.LEVEL_INFO {
		s, err := InitializeSpinner()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize spinner: %v\n", err)
			fmt.Fprintf(os.Stderr, "Progress updates will be disabled.\n")
		}
		spinner = s
	}

	img, err := iso.Open(
		isoPath,
		option.WithLogger(logger),
		option.WithJolietEnabled(*joliet),
		option.WithExtractionProgress(CreateProgressCallback(spinner)),
	)
	if err != nil {
		fail(spinner, fmt.Errorf("failed to open ISO: %w", err))
	}
	defer img.Close()

	root := img.PreferredRoot()
	if flag.NArg() > 1 {
		e, err := img.Open(flag.Arg(1))
		if err != nil {
			fail(spinner, err)
		}
		d, ok := e.(*directory.Directory)
		if !ok {
			fail(spinner, fmt.Errorf("%s is not a directory in %s", flag.Arg(1), isoPath))
		}
		root = d
	}

	if err := img.ExtractDirectory(root, *outputDir); err != nil {
		img.Close()
		fail(spinner, fmt.Errorf("failed to extract image: %w", err))
	}

	if *bootImages {
		written, err := img.ExtractBootImages(filepath.Join(*outputDir, "[BOOT]"))
		if err != nil {
			img.Close()
			fail(spinner, fmt.Errorf("failed to extract boot images: %w", err))
		}
		logger.Debug("boot images extracted", "count", len(written))
	}

	message := fmt.Sprintf(" All files extracted successfully to %s!", *outputDir)
	if spinner == nil {
		fmt.Println(message)
		return
	}
	spinner.StopMessage(message)
	spinner.Stop()
}

func fail(spinner *yacspin.Spinner, err error) {
	if spinner != nil {
		spinner.StopFailMessage(err.Error())
		spinner.StopFail()
	} else {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(1)
}
