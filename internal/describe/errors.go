package describe

import "errors"

// ErrNoValues is returned when a vector has no finite value to describe.
var ErrNoValues = errors.New("no finite values to describe")
