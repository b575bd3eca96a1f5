package main

import (
	"crypto/md5"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bgrewell/usage"
	"github.com/rstms/isofs"
	"github.com/rstms/isofs/pkg/iso9660/directory"
	"github.com/rstms/isofs/pkg/logging"
	"github.com/rstms/isofs/pkg/option"
)

func fileMD5(f *directory.File) (string, error) {
	hash := md5.New()
	if _, err := io.Copy(hash, f.Reader()); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}

func main() {

	u := usage.NewUsage(
		usage.WithApplicationName("checksum"),
		usage.WithApplicationDescription("checksum is a functional testing application that is part of isofs and is designed to verify that a file read from an image through every layer of the reader has the expected md5 digest."),
	)
	help := u.AddBooleanOption("h", "help", false, "Display this help message", "", nil)
	quiet := u.AddBooleanOption("q", "quiet", false, "Disable trace logging", "", nil)
	primary := u.AddBooleanOption("p", "primary", false, "Resolve against the Primary tree before Joliet", "", nil)
	input := u.AddArgument(1, "input", "The input ISO file to run the test against", "")
	file := u.AddArgument(2, "file", "Path of the file within the image", "")
	expected := u.AddArgument(3, "md5", "Expected md5 digest of the file, in hex", "")
	parsed := u.Parse()

	if !parsed {
		u.PrintError(fmt.Errorf("failed to parse arguments"))
		os.Exit(1)
	}

	if *help {
		u.PrintUsage()
		os.Exit(0)
	}

	if input == nil || *input == "" || file == nil || *file == "" || expected == nil || *expected == "" {
		u.PrintError(fmt.Errorf("<input>, <file> and <md5> must all be provided"))
		os.Exit(1)
	}

	level := logging.LEVEL_TRACE
	if *quiet {
		level = logging.LEVEL_INFO
	}
	logger := logging.NewLogger(logging.NewSimpleLogger(os.Stderr, level, true))
	i, err := iso.Open(*input,
		option.WithLogger(logger),
		option.WithPreferJoliet(!*primary))
	if err != nil {
		fmt.Printf("Failed to open ISO file: %s\n", err)
		os.Exit(1)
	}
	defer i.Close()

	e, err := i.Open(*file)
	if err != nil {
		fmt.Printf("Failed to resolve %s: %s\n", *file, err)
		os.Exit(1)
	}
	f, ok := e.(*directory.File)
	if !ok {
		fmt.Printf("%s is not a file in %s\n", *file, i.Location())
		os.Exit(1)
	}

	actual, err := fileMD5(f)
	if err != nil {
		fmt.Printf("Failed to read %s: %s\n", *file, err)
		os.Exit(1)
	}

	if actual != strings.ToLower(*expected) {
		fmt.Printf("[FAIL] %s: md5 %s, expected %s\n", *file, actual, *expected)
		os.Exit(1)
	}
	fmt.Printf("[PASS] %s: md5 %s (%d bytes)\n", *file, actual, f.Size())
}
