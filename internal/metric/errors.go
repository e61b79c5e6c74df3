package metric

import (
	"errors"

	"github.com/nao1215/genoreport/internal/genotype"
)

// Precondition errors. All of them are fatal for a report run.
var (
	// ErrMissingField is returned when the dataset lacks a field the report needs.
	ErrMissingField = genotype.ErrMissingField

	// ErrUnsupportedMethod is returned when a kind is asked for a method it does not define.
	ErrUnsupportedMethod = errors.New("unsupported method")

	// ErrWrongDataType is returned when a kind is not defined for the dataset's data type.
	ErrWrongDataType = errors.New("report not defined for data type")
)
