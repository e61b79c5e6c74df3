package log

import "errors"

// ErrInvalidVerbosity is returned when a verbosity is outside 0 to 5.
var ErrInvalidVerbosity = errors.New("invalid verbosity")
