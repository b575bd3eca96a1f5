package option

import (
	"github.com/rstms/isofs/pkg/logging"
)

type ExtractionProgressCallback func(
	currentFilename string,
	bytesTransferred int64,
	totalBytes int64,
	currentFileNumber int,
	totalFileCount int,
)

type OpenOptions struct {
	// JolietEnabled controls whether a Supplementary (Joliet) descriptor is mounted at all.
	JolietEnabled bool
	// PreferJoliet resolves paths against the Joliet root before the Primary root.
	PreferJoliet               bool
	ExtractionProgressCallback ExtractionProgressCallback
	Logger                     *logging.Logger
}

type OpenOption func(*OpenOptions)

// DefaultOpenOptions returns the options used when none are supplied.
func DefaultOpenOptions() *OpenOptions {
	return &OpenOptions{
		JolietEnabled: true,
		PreferJoliet:  true,
		ExtractionProgressCallback: func(string, int64, int64, int, int) {
		},
		Logger: logging.DefaultLogger(),
	}
}

// Apply builds OpenOptions from the defaults and the given options.
func Apply(opts ...OpenOption) *OpenOptions {
	o := DefaultOpenOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.Logger == nil {
		o.Logger = logging.DefaultLogger()
	}
	if o.ExtractionProgressCallback == nil {
		o.ExtractionProgressCallback = func(string, int64, int64, int, int) {}
	}
	return o
}

// WithExtractionProgress sets a progress callback function that will be called with progress updates.
// Parameters:
// - currentFilename: The name of the file currently being processed.
// - bytesTransferred: The number of bytes transferred so far for the current file.
// - totalBytes: The total number of bytes to be transferred for the current file.
// - currentFileNumber: The index of the current file being processed.
// - totalFileCount: The total number of files to be processed.
func WithExtractionProgress(callback ExtractionProgressCallback) OpenOption {
	return func(o *OpenOptions) {
		o.ExtractionProgressCallback = callback
	}
}

func WithLogger(logger *logging.Logger) OpenOption {
	return func(o *OpenOptions) {
		o.Logger = logger
	}
}

func WithJolietEnabled(jolietEnabled bool) OpenOption {
	return func(o *OpenOptions) {
		o.JolietEnabled = jolietEnabled
	}
}

func WithPreferJoliet(preferJoliet bool) OpenOption {
	return func(o *OpenOptions) {
		o.PreferJoliet = preferJoliet
	}
}
