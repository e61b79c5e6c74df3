package report

import (
	"io"
	"math"
	"strconv"

	"github.com/nao1215/genoreport/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.Report) (int, error)
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// formatValue prints a statistic with at most four decimals.
func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "NA"
	}
	return strconv.FormatFloat(math.Round(v*1e4)/1e4, 'f', -1, 64)
}

// formatPercent prints a percentage with one decimal.
func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

// formatQuantile prints a probability in [0,1] as a whole percentage.
func formatQuantile(p float64) string {
	return strconv.Itoa(int(math.Round(p*100))) + "%"
}
