package report

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nao1215/genoreport/internal/model"
)

// SimpleWriter outputs the fixed-format text report: the summary block,
// then tables for population means, the lowest individuals and the
// quantile thresholds.
type SimpleWriter struct {
	baseWriter

	// printer formats counts with thousands separators.
	printer *message.Printer

	// detail adds the chart file list and warnings at the end.
	detail bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithDetail appends saved chart files and collected warnings to the report.
func WithDetail(detail bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.detail = detail
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		printer:    message.NewPrinter(language.English),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.Report) (int, error) {
	var buf bytes.Buffer

	w.writeSummary(&buf, report)

	if report.IsIndividual() {
		if err := w.writePopulations(&buf, report); err != nil {
			return 0, err
		}
		if err := w.writeLowest(&buf, report); err != nil {
			return 0, err
		}
	}

	if err := w.writeThresholds(&buf, report); err != nil {
		return 0, err
	}

	if w.detail {
		w.writeDetail(&buf, report)
	}

	return w.output.Write(buf.Bytes())
}

// writeSummary writes the fixed summary block.
func (w *SimpleWriter) writeSummary(buf *bytes.Buffer, report *model.Report) {
	s := report.Summary

	fmt.Fprintf(buf, "  Reporting %s\n", report.Title())
	fmt.Fprintf(buf, "  Dataset: %s (%s)\n", report.Dataset, report.DataType)
	w.printer.Fprintf(buf, "  No. of loci = %d\n", report.NumLoci)
	w.printer.Fprintf(buf, "  No. of individuals = %d\n", report.NumIndividuals)
	fmt.Fprintf(buf, "    Minimum      : %s\n", formatValue(s.Min))
	fmt.Fprintf(buf, "    1st quartile : %s\n", formatValue(s.Q1))
	fmt.Fprintf(buf, "    Median       : %s\n", formatValue(s.Median))
	fmt.Fprintf(buf, "    Mean         : %s\n", formatValue(s.Mean))
	fmt.Fprintf(buf, "    3rd quartile : %s\n", formatValue(s.Q3))
	fmt.Fprintf(buf, "    Maximum      : %s\n", formatValue(s.Max))
	w.printer.Fprintf(buf, "    NA entries   : %d\n", s.NA)
	fmt.Fprintf(buf, "    Missing Rate Overall: %s\n\n", strconv.FormatFloat(report.MissingRate, 'f', 2, 64))
}

// writePopulations writes the per-population mean table.
func (w *SimpleWriter) writePopulations(buf *bytes.Buffer, report *model.Report) error {
	if len(report.Populations) == 0 {
		return nil
	}

	fmt.Fprintf(buf, "  Mean %s per population\n", strings.ToLower(report.Kind.Info().Label))
	table := tablewriter.NewWriter(buf)
	table.Header("Population", "N", "Mean")
	for _, p := range report.Populations {
		if err := table.Append([]string{p.Population, w.printer.Sprintf("%d", p.N), formatValue(p.Mean)}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	buf.WriteString("\n")
	return nil
}

// writeLowest writes the lowest individuals listing.
func (w *SimpleWriter) writeLowest(buf *bytes.Buffer, report *model.Report) error {
	if len(report.Lowest) == 0 {
		return nil
	}

	fmt.Fprintf(buf, "  Listing %d individuals with the lowest %s\n",
		len(report.Lowest), strings.ToLower(report.Kind.Info().Label))
	table := tablewriter.NewWriter(buf)
	table.Header("Individual", "Population", "Value")
	for _, iv := range report.Lowest {
		if err := table.Append([]string{iv.ID, iv.Population, formatValue(iv.Value)}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	buf.WriteString("\n")
	return nil
}

// writeThresholds writes the quantile threshold table.
func (w *SimpleWriter) writeThresholds(buf *bytes.Buffer, report *model.Report) error {
	if len(report.Thresholds) == 0 {
		return nil
	}

	noun := report.Method.PluralNoun()
	fmt.Fprintf(buf, "  Quantile thresholds (%s retained: value >= threshold)\n", noun)
	table := tablewriter.NewWriter(buf)
	table.Header("Quantile", "Threshold", "Retained", "Percent", "Filtered", "Percent")
	for _, row := range report.Thresholds {
		if err := table.Append([]string{
			formatQuantile(row.Quantile),
			formatValue(row.Threshold),
			w.printer.Sprintf("%d", row.Retained),
			formatPercent(row.RetainedPercent),
			w.printer.Sprintf("%d", row.Filtered),
			formatPercent(row.FilteredPercent),
		}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	buf.WriteString("\n")
	return nil
}

// writeDetail writes the fingerprint, chart files and warnings.
func (w *SimpleWriter) writeDetail(buf *bytes.Buffer, report *model.Report) {
	if report.Fingerprint != "" {
		fmt.Fprintf(buf, "  Fingerprint: %s\n", report.Fingerprint)
	}
	for _, f := range report.ChartFiles {
		fmt.Fprintf(buf, "  Chart saved to %s\n", f)
	}
	for _, msg := range report.Warnings {
		fmt.Fprintf(buf, "  Warning: %s\n", msg)
	}
}
