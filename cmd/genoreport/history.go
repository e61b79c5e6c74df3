package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/nao1215/genoreport/internal/config"
	"github.com/nao1215/genoreport/internal/database"
	"github.com/nao1215/genoreport/internal/model"
	"github.com/nao1215/genoreport/internal/report"
)

// Trend directions of a comparison.
const (
	trendUp        = "up"
	trendDown      = "down"
	trendUnchanged = "unchanged"
)

// NewHistoryCmd creates the history command.
// It reads the report archive written by the report commands.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [dataset]",
		Short: "List archived reports",
		Long: `History lists the reports stored in the archive, newest first.

Every report command stores its result in the archive unless --archive=false
is given. Use the subcommands to print a stored report again, compare the
two latest reports of a dataset or delete a report.

Examples:
  # List the latest reports of every dataset
  genoreport history

  # List call rate reports of one dataset
  genoreport history --kind callrate turtles

  # List the archived datasets
  genoreport history datasets

  # Print report 12 as Markdown
  genoreport history show --markdown 12

  # Compare the two latest call rate reports of a dataset
  genoreport history compare --kind callrate turtles`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryListCmd,
	}

	cmd.PersistentFlags().String("archive-dir", "",
		"Archive directory (default: XDG data directory)")

	cmd.Flags().StringP("kind", "k", "", "Only list reports of this kind")
	cmd.Flags().StringP("method", "M", "", "Only list reports of this method (loc or ind)")
	cmd.Flags().IntP("limit", "n", 20, "Maximum number of reports listed (0 lists all)")

	cmd.AddCommand(newHistoryDatasetsCmd())
	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistoryCompareCmd())
	cmd.AddCommand(newHistoryDeleteCmd())

	return cmd
}

// openHistoryArchive opens an existing archive for the history commands.
func openHistoryArchive(cmd *cobra.Command) (*database.ReportDB, error) {
	dir, err := cmd.Flags().GetString("archive-dir")
	if err != nil {
		return nil, err
	}
	if dir == "" {
		dir = config.XDGDataDir()
	}
	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	return db, nil
}

// kindFilter parses the --kind and --method flags into names usable as
// archive filters. Empty flags return empty names.
func kindFilter(cmd *cobra.Command) (string, string, error) {
	kindName, err := cmd.Flags().GetString("kind")
	if err != nil {
		return "", "", err
	}
	methodName, err := cmd.Flags().GetString("method")
	if err != nil {
		return "", "", err
	}

	if kindName != "" {
		kind, err := model.ParseKind(kindName)
		if err != nil {
			return "", "", err
		}
		kindName = kind.String()
	}
	if methodName != "" {
		method, err := model.ParseMethod(methodName)
		if err != nil {
			return "", "", err
		}
		methodName = string(method)
	}
	return kindName, methodName, nil
}

// runHistoryListCmd lists archived reports.
func runHistoryListCmd(cmd *cobra.Command, args []string) error {
	kind, method, err := kindFilter(cmd)
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	filter := database.Filter{Kind: kind, Method: method, Limit: limit}
	if len(args) == 1 {
		filter.Dataset = args[0]
	}

	db, err := openHistoryArchive(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	reports, err := db.ListReports(cmd.Context(), filter)
	if err != nil {
		return err
	}
	return listReports(cmd.OutOrStdout(), reports)
}

// listReports prints report metadata as a table.
func listReports(out io.Writer, reports []database.ReportMetadata) error {
	if len(reports) == 0 {
		fmt.Fprintln(out, "No archived reports found.")
		fmt.Fprintln(out, "\nRun a report command, e.g. 'genoreport callrate <genotypes.tsv>', to archive one.")
		return nil
	}

	fmt.Fprintf(out, "Archived reports (%d):\n\n", len(reports))
	table := tablewriter.NewWriter(out)
	table.Header("ID", "Date", "Dataset", "Kind", "Method", "N", "Mean", "Missing")
	for _, meta := range reports {
		if err := table.Append([]string{
			strconv.FormatInt(meta.ID, 10),
			meta.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			meta.Dataset,
			meta.Kind,
			meta.Method,
			strconv.Itoa(meta.N),
			strconv.FormatFloat(meta.Mean, 'f', 4, 64),
			strconv.FormatFloat(meta.MissingRate, 'f', 2, 64),
		}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintln(out, "\nUse 'genoreport history show <id>' to print a report.")
	return nil
}

func newHistoryDatasetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "datasets",
		Short: "List archived datasets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openHistoryArchive(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			datasets, err := db.ListDatasets(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(datasets) == 0 {
				fmt.Fprintln(out, "No archived datasets found.")
				return nil
			}
			fmt.Fprintf(out, "Archived datasets (%d):\n\n", len(datasets))
			for _, name := range datasets {
				fmt.Fprintf(out, "  • %s\n", name)
			}
			return nil
		},
	}
}

func newHistoryShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print an archived report",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryShowCmd,
	}
	cmd.Flags().BoolP("json", "j", false, "Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown (mutually exclusive with --json)")
	return cmd
}

// parseID parses a report ID argument.
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid report id %q", s)
	}
	return id, nil
}

func runHistoryShowCmd(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return config.ErrConflictingReportFormats
	}

	db, err := openHistoryArchive(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	r, err := db.GetReport(cmd.Context(), id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var w report.Writer
	switch {
	case jsonOutput:
		w = report.NewJSONWriter(out, report.WithPrettyPrint())
	case markdownOutput:
		w = report.NewMarkdownWriter(out)
	default:
		fmt.Fprintf(out, "Report %d, %s, generated %s\n", r.ID, r.Dataset,
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		w = report.NewSimpleWriter(out, report.WithDetail(true))
	}
	_, err = w.Write(r)
	return err
}

func newHistoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an archived report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			db, err := openHistoryArchive(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.DeleteReport(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted report %d\n", id)
			return nil
		},
	}
}

func newHistoryCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <dataset>",
		Short: "Compare the two latest reports of a dataset",
		Long: `Compare shows how the statistics of a dataset changed between two
archived reports of the same kind and method: the latest one and the one
before it, or the report given by --with-id.`,
		Args: cobra.ExactArgs(1),
		RunE: runHistoryCompareCmd,
	}
	cmd.Flags().StringP("kind", "k", "callrate", "Report kind to compare")
	cmd.Flags().StringP("method", "M", "", "Report method to compare (default: the kind's default)")
	cmd.Flags().Int64P("with-id", "i", 0, "Compare the latest report with this report ID")
	cmd.Flags().BoolP("json", "j", false, "Output the comparison as JSON")
	return cmd
}

func runHistoryCompareCmd(cmd *cobra.Command, args []string) error {
	kindName, methodName, err := kindFilter(cmd)
	if err != nil {
		return err
	}
	kind, err := model.ParseKind(kindName)
	if err != nil {
		return err
	}
	method := model.Method(methodName)
	if method == "" {
		method = kind.DefaultMethod()
	}
	withID, err := cmd.Flags().GetInt64("with-id")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	db, err := openHistoryArchive(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	previous, current, err := reportsToCompare(cmd.Context(), db, args[0], kind, method, withID)
	if err != nil {
		return err
	}

	result := compareReports(previous, current)
	if jsonOutput {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}
	return outputComparisonText(cmd.OutOrStdout(), result)
}

// reportsToCompare loads the previous and current reports of a dataset.
func reportsToCompare(ctx context.Context, db *database.ReportDB, dataset string, kind model.Kind, method model.Method, withID int64) (*model.Report, *model.Report, error) {
	current, err := db.LatestReport(ctx, dataset, kind, method)
	if err != nil {
		return nil, nil, err
	}
	if current == nil {
		return nil, nil, fmt.Errorf("no archived %s reports found for %s", kind, dataset)
	}

	if withID > 0 {
		previous, err := db.GetReport(ctx, withID)
		if err != nil {
			return nil, nil, err
		}
		if previous.Dataset != dataset || previous.Kind != kind || previous.Method != method {
			return nil, nil, fmt.Errorf("report %d is a %s %s report of %s, not %s %s of %s",
				withID, previous.Kind, previous.Method, previous.Dataset, kind, method, dataset)
		}
		return previous, current, nil
	}

	history, err := db.ListReports(ctx, database.Filter{
		Dataset: dataset,
		Kind:    kind.String(),
		Method:  string(method),
		Limit:   2,
	})
	if err != nil {
		return nil, nil, err
	}
	if len(history) < 2 {
		return nil, nil, errors.New("at least 2 archived reports are required for comparison (found 1)")
	}
	previous, err := db.GetReport(ctx, history[1].ID)
	if err != nil {
		return nil, nil, err
	}
	return previous, current, nil
}

// ComparisonResult holds the difference between two archived reports.
type ComparisonResult struct {
	Dataset string `json:"dataset"`
	Report  string `json:"report"`

	Previous ReportPoint `json:"previous"`
	Current  ReportPoint `json:"current"`

	// Rows holds one line per compared statistic.
	Rows []ComparisonRow `json:"rows"`

	// Trend is the direction of the mean.
	Trend string `json:"trend"`

	// DataChanged reports whether the genotype data differs between the
	// reports. Nil when either report has no fingerprint.
	DataChanged *bool `json:"data_changed,omitempty"`
}

// ReportPoint identifies one side of a comparison.
type ReportPoint struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// ComparisonRow is one statistic of both reports.
type ComparisonRow struct {
	Name     string  `json:"name"`
	Previous float64 `json:"previous"`
	Current  float64 `json:"current"`
	Delta    float64 `json:"delta"`
}

// compareReports builds the comparison of two reports of the same kind.
func compareReports(previous, current *model.Report) *ComparisonResult {
	row := func(name string, p, c float64) ComparisonRow {
		return ComparisonRow{Name: name, Previous: p, Current: c, Delta: c - p}
	}
	ps, cs := previous.Summary, current.Summary

	result := &ComparisonResult{
		Dataset:  current.Dataset,
		Report:   current.Title(),
		Previous: ReportPoint{ID: previous.ID, CreatedAt: previous.CreatedAt},
		Current:  ReportPoint{ID: current.ID, CreatedAt: current.CreatedAt},
		Rows: []ComparisonRow{
			row("Loci", float64(previous.NumLoci), float64(current.NumLoci)),
			row("Individuals", float64(previous.NumIndividuals), float64(current.NumIndividuals)),
			row("Minimum", ps.Min, cs.Min),
			row("Median", ps.Median, cs.Median),
			row("Mean", ps.Mean, cs.Mean),
			row("Maximum", ps.Max, cs.Max),
			row("NA entries", float64(ps.NA), float64(cs.NA)),
			row("Missing rate", previous.MissingRate, current.MissingRate),
		},
	}

	if previous.Fingerprint != "" && current.Fingerprint != "" {
		changed := previous.Fingerprint != current.Fingerprint
		result.DataChanged = &changed
	}

	switch {
	case cs.Mean > ps.Mean:
		result.Trend = trendUp
	case cs.Mean < ps.Mean:
		result.Trend = trendDown
	default:
		result.Trend = trendUnchanged
	}
	return result
}

// outputComparisonText prints the comparison as a table.
func outputComparisonText(out io.Writer, result *ComparisonResult) error {
	fmt.Fprintf(out, "%s: %s\n", result.Report, result.Dataset)
	fmt.Fprintln(out, strings.Repeat("=", 60))
	fmt.Fprintf(out, "\nPrevious report: %d (%s)\n", result.Previous.ID,
		result.Previous.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Current report:  %d (%s)\n\n", result.Current.ID,
		result.Current.CreatedAt.Local().Format("2006-01-02 15:04:05"))

	table := tablewriter.NewWriter(out)
	table.Header("Statistic", "Previous", "Current", "Change")
	for _, r := range result.Rows {
		if err := table.Append([]string{
			r.Name,
			formatNumber(r.Previous),
			formatNumber(r.Current),
			formatDelta(r.Delta),
		}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nMean trend: %s\n", strings.ToUpper(result.Trend))
	if result.DataChanged != nil {
		state := "unchanged"
		if *result.DataChanged {
			state = "changed"
		}
		fmt.Fprintf(out, "Genotype data: %s\n", state)
	}
	return nil
}

// formatNumber prints integers without decimals and other values with four.
func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta float64) string {
	switch {
	case delta > 0:
		return "+" + formatNumber(delta)
	case delta < 0:
		return formatNumber(delta)
	default:
		return "0"
	}
}
