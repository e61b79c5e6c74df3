package model

import "errors"

var (
	// ErrUnknownKind is returned when a report kind name is not recognized.
	ErrUnknownKind = errors.New("unknown report kind")

	// ErrUnknownMethod is returned when a method name is neither loc nor ind.
	ErrUnknownMethod = errors.New("unknown method")
)
