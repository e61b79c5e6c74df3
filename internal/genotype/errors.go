package genotype

import "errors"

// Dataset construction and loading errors.
// Callers use errors.Is to tell them apart; messages carry the details.
var (
	// ErrMissingField is returned when a required dataset field is absent.
	ErrMissingField = errors.New("required dataset field missing")

	// ErrDimensionMismatch is returned when the parts of a dataset disagree
	// on the number of individuals or loci.
	ErrDimensionMismatch = errors.New("dataset dimension mismatch")

	// ErrEmptyDataset is returned when a dataset has no individuals or no loci.
	ErrEmptyDataset = errors.New("dataset has no individuals or no loci")

	// ErrInvalidCall is returned when a call is outside the range of the data type.
	ErrInvalidCall = errors.New("invalid marker call")

	// ErrUnknownDataType is returned for an unrecognized data type directive.
	ErrUnknownDataType = errors.New("unknown data type")

	// ErrMalformedFile is returned when a dataset file cannot be parsed.
	ErrMalformedFile = errors.New("malformed dataset file")
)
