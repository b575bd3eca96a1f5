package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bgrewell/usage"
	"github.com/rstms/isofs"
	"github.com/rstms/isofs/pkg/isofuse"
	"github.com/rstms/isofs/pkg/logging"
	"github.com/rstms/isofs/pkg/option"
)

func main() {

	u := usage.NewUsage(
		usage.WithApplicationName("isofuse"),
		usage.WithApplicationDescription("isofuse mounts an ISO 9660 image read-only through FUSE and serves it until interrupted."),
	)
	help := u.AddBooleanOption("h", "help", false, "Show this help message", "optional", nil)
	verbose := u.AddBooleanOption("v", "verbose", false, "Enable debug logging", "", nil)
	trace := u.AddBooleanOption("vv", "trace", false, "Enable trace logging", "", nil)
	debug := u.AddBooleanOption("d", "fuse-debug", false, "Log every FUSE request", "", nil)
	primary := u.AddBooleanOption("p", "primary", false, "Serve the Primary tree even when Joliet names are present", "", nil)
	path := u.AddArgument(1, "iso-path", "Path to the ISO image", "")
	mountpoint := u.AddArgument(2, "mountpoint", "Directory to mount the image on", "")
	parsed := u.Parse()

	if !parsed {
		u.PrintError(fmt.Errorf("failed to parse arguments"))
		os.Exit(1)
	}

	if *help {
		u.PrintUsage()
		os.Exit(0)
	}

	if path == nil || *path == "" || mountpoint == nil || *mountpoint == "" {
		u.PrintError(fmt.Errorf("both <iso-path> and <mountpoint> must be provided"))
		os.Exit(1)
	}

	level := logging.LEVEL_INFO
	if *verbose {
		level = logging.LEVEL_DEBUG
	}
	if *trace {
		level = logging.LEVEL_TRACE
	}
	logger := logging.NewLogger(logging.NewSimpleLogger(os.Stderr, level, true))

	img, err := iso.Open(*path,
		option.WithLogger(logger),
		option.WithJolietEnabled(!*primary))
	if err != nil {
		u.PrintError(err)
		os.Exit(1)
	}
	defer img.Close()

	server, err := isofuse.Mount(*mountpoint, img.ISO9660, isofuse.Options{
		Debug:  *debug,
		Logger: logger.WithName("fuse"),
	})
	if err != nil {
		logger.Error(err, "failed to mount", "mountpoint", *mountpoint)
		img.Close()
		os.Exit(1)
	}
	logger.Info("mounted", "image", img.String(), "mountpoint", *mountpoint)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signals
		if err := server.Unmount(); err != nil {
			logger.Error(err, "failed to unmount", "mountpoint", *mountpoint)
		}
	}()

	server.Wait()
}
