package chart

import "errors"

var (
	// ErrUnknownFormat is returned for a save format tag without a handler.
	ErrUnknownFormat = errors.New("unknown chart format")

	// ErrInvalidColor is returned for a color that is neither hex nor a known name.
	ErrInvalidColor = errors.New("invalid color")

	// ErrUnknownTheme is returned for an unknown theme name.
	ErrUnknownTheme = errors.New("unknown theme")

	// ErrEmptyChart is returned when a chart has no finite value to draw.
	ErrEmptyChart = errors.New("chart has no values")
)
