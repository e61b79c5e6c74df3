package log

import (
	"fmt"
	"log/slog"
)

// Verbosity is the report verbosity level, 0 to 5.
type Verbosity int

const (
	// VerbositySilent prints nothing but fatal errors.
	VerbositySilent Verbosity = 0

	// VerbosityBanner adds start and end banners.
	VerbosityBanner Verbosity = 1

	// VerbosityProgress adds progress messages.
	VerbosityProgress Verbosity = 2

	// VerbosityResult adds summary results.
	VerbosityResult Verbosity = 3

	// VerbosityDetail prints everything.
	VerbosityDetail Verbosity = 5

	// DefaultVerbosity is used when no verbosity is configured.
	DefaultVerbosity = VerbosityProgress
)

// Custom slog levels, one per verbosity step.
// They sit between slog.LevelDebug and slog.LevelInfo.
const (
	LevelBanner   = slog.LevelInfo
	LevelProgress = slog.Level(-1)
	LevelResult   = slog.Level(-2)
	LevelDetail   = slog.LevelDebug
)

// Valid reports whether v is within 0 to 5.
func (v Verbosity) Valid() bool {
	return v >= VerbositySilent && v <= VerbosityDetail
}

// MinLevel returns the lowest slog level emitted at this verbosity.
func (v Verbosity) MinLevel() slog.Level {
	switch {
	case v <= VerbositySilent:
		return slog.LevelError
	case v == VerbosityBanner:
		return LevelBanner
	case v == VerbosityProgress:
		return LevelProgress
	case v < VerbosityDetail:
		return LevelResult
	default:
		return LevelDetail
	}
}

// Reports reports whether text reports and warnings are printed.
func (v Verbosity) Reports() bool {
	return v >= VerbosityBanner
}

// LevelName returns the display name of a level, naming the custom levels.
func LevelName(l slog.Level) string {
	switch l {
	case LevelProgress:
		return "PROGRESS"
	case LevelResult:
		return "RESULT"
	case LevelDetail:
		return "DETAIL"
	default:
		return l.String()
	}
}

// ParseVerbosity converts an integer flag value to a Verbosity.
func ParseVerbosity(n int) (Verbosity, error) {
	v := Verbosity(n)
	if !v.Valid() {
		return 0, fmt.Errorf("%w: %d (must be 0 to 5)", ErrInvalidVerbosity, n)
	}
	return v, nil
}
