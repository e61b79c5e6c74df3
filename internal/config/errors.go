package config

import (
	"errors"
	"fmt"
)

// Configuration validation errors.
// These errors are returned by Config.Validate() and checked with errors.Is.
var (
	// ErrNoDataset is returned when no dataset file is given.
	ErrNoDataset = errors.New("no dataset specified: provide one or more genotype files")

	// ErrInvalidVerbosity is returned when the verbosity is outside 0 to 5.
	ErrInvalidVerbosity = errors.New("invalid verbosity: must be 0 to 5")

	// ErrInvalidBins is returned when the histogram bin count is not positive.
	ErrInvalidBins = errors.New("invalid bin count: must be positive")

	// ErrInvalidIndToList is returned when the lowest-N listing length is negative.
	ErrInvalidIndToList = errors.New("invalid ind-to-list: must be non-negative")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidColor is returned when a plot color is neither a hex string
	// nor a known color name.
	ErrInvalidColor = errors.New("invalid color")

	// ErrInvalidTheme is returned for an unknown chart theme.
	ErrInvalidTheme = errors.New("invalid theme")

	// ErrInvalidOverride is returned for a malformed per-dataset entry.
	ErrInvalidOverride = errors.New("invalid dataset override")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)

func wrapf(err error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", err, fmt.Sprintf(format, args...))
}
