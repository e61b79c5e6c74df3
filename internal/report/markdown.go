package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/genoreport/internal/model"
)

// MarkdownWriter outputs reports in GitHub Flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	if report.IsIndividual() {
		w.writePopulations(md, report)
		w.writeLowest(md, report)
	}
	w.writeThresholds(md, report)
	w.writeCharts(md, report)
	w.writeWarnings(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report title and dataset information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.Report) {
	md.H1(report.Title())
	md.PlainText("")

	rows := [][]string{
		{"Dataset", "`" + report.Dataset + "`"},
		{"Data Type", report.DataType},
		{"Loci", strconv.Itoa(report.NumLoci)},
		{"Individuals", strconv.Itoa(report.NumIndividuals)},
		{"Missing Rate Overall", strconv.FormatFloat(report.MissingRate, 'f', 2, 64)},
		{"Generated", report.CreatedAt.Format("2006-01-02 15:04:05 MST")},
	}
	if report.Fingerprint != "" {
		rows = append(rows, []string{"Fingerprint", "`" + report.Fingerprint + "`"})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSummary writes the descriptive statistics.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.Report) {
	s := report.Summary

	md.H2("Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Statistic", "Value"},
		Rows: [][]string{
			{"Minimum", formatValue(s.Min)},
			{"1st quartile", formatValue(s.Q1)},
			{"Median", formatValue(s.Median)},
			{"Mean", formatValue(s.Mean)},
			{"3rd quartile", formatValue(s.Q3)},
			{"Maximum", formatValue(s.Max)},
			{"NA entries", strconv.Itoa(s.NA)},
		},
	})
	md.PlainText("")
}

// writePopulations writes the per-population means and a pie chart of
// population sizes.
func (w *MarkdownWriter) writePopulations(md *markdown.Markdown, report *model.Report) {
	if len(report.Populations) == 0 {
		return
	}

	md.H2("Populations")
	md.PlainText("")

	rows := make([][]string, len(report.Populations))
	for i, p := range report.Populations {
		rows[i] = []string{p.Population, strconv.Itoa(p.N), formatValue(p.Mean)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Population", "N", "Mean " + report.Kind.Info().Label},
		Rows:   rows,
	})
	md.PlainText("")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Individuals per Population"),
		piechart.WithShowData(true),
	)
	for _, p := range report.Populations {
		if p.N > 0 {
			chart.LabelAndIntValue(p.Population, uint64(p.N))
		}
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeLowest writes the lowest individuals listing.
func (w *MarkdownWriter) writeLowest(md *markdown.Markdown, report *model.Report) {
	if len(report.Lowest) == 0 {
		return
	}

	md.H2("Lowest Individuals")
	md.PlainText("")

	rows := make([][]string, len(report.Lowest))
	for i, iv := range report.Lowest {
		rows[i] = []string{strconv.Itoa(i + 1), iv.ID, iv.Population, formatValue(iv.Value)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Rank", "Individual", "Population", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeThresholds writes the quantile threshold table.
func (w *MarkdownWriter) writeThresholds(md *markdown.Markdown, report *model.Report) {
	md.H2("Quantile Thresholds")
	md.PlainText("")

	if len(report.Thresholds) == 0 {
		md.PlainText("No values to compute thresholds from.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Thresholds))
	for i, row := range report.Thresholds {
		rows[i] = []string{
			formatQuantile(row.Quantile),
			formatValue(row.Threshold),
			strconv.Itoa(row.Retained),
			formatPercent(row.RetainedPercent),
			strconv.Itoa(row.Filtered),
			formatPercent(row.FilteredPercent),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Quantile", "Threshold", "Retained", "Retained %", "Filtered", "Filtered %"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeCharts lists the saved chart files.
func (w *MarkdownWriter) writeCharts(md *markdown.Markdown, report *model.Report) {
	if len(report.ChartFiles) == 0 {
		return
	}

	md.H2("Charts")
	md.PlainText("")
	md.BulletList(report.ChartFiles...)
	md.PlainText("")
}

// writeWarnings writes collected warnings as an alert.
func (w *MarkdownWriter) writeWarnings(md *markdown.Markdown, report *model.Report) {
	switch len(report.Warnings) {
	case 0:
		return
	case 1:
		md.Warning(report.Warnings[0])
	default:
		md.Warningf("%d warnings were raised while generating this report.", len(report.Warnings))
		md.PlainText("")
		md.BulletList(report.Warnings...)
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [genoreport](https://github.com/nao1215/genoreport)*")
}
