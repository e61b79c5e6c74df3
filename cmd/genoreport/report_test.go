package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/genoreport/internal/config"
	"github.com/nao1215/genoreport/internal/database"
	"github.com/nao1215/genoreport/internal/log"
	"github.com/nao1215/genoreport/internal/model"
)

// TestReportCmdText tests the default text report.
func TestReportCmdText(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeDataset(t, dir, "turtles")
	cfgPath := writeConfig(t, "display: false\n")

	stdout, _, err := runCLI(t, "callrate", "-c", cfgPath, "--archive=false", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"Reporting Call Rate by Locus",
		"No. of loci = 4",
		"No. of individuals = 4",
		"Missing Rate Overall: 0.19",
		"Quantile thresholds",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, stdout)
		}
	}
}

// TestReportCmdJSONLog tests JSON log records on stderr.
func TestReportCmdJSONLog(t *testing.T) {
	t.Parallel()

	path := writeDataset(t, t.TempDir(), "turtles")
	cfgPath := writeConfig(t, "display: false\n")

	_, stderr, err := runCLI(t, "callrate", "-c", cfgPath, "--archive=false", "--log-json", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stderr, `"msg":"starting report"`) {
		t.Errorf("expected JSON log records, got:\n%s", stderr)
	}
}

// TestReportCmdIndividual tests the individual call rate report.
func TestReportCmdIndividual(t *testing.T) {
	t.Parallel()

	path := writeDataset(t, t.TempDir(), "turtles")
	cfgPath := writeConfig(t, "display: false\n")

	stdout, _, err := runCLI(t, "callrate", "-c", cfgPath, "--archive=false", "-M", "ind", "-n", "2", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "Call Rate by Individual") {
		t.Errorf("missing heading:\n%s", stdout)
	}
	if !strings.Contains(stdout, "Listing 2 individuals") {
		t.Errorf("missing lowest listing:\n%s", stdout)
	}
}

// TestReportCmdJSON tests structured output and the report file.
func TestReportCmdJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeDataset(t, dir, "turtles")
	outPath := filepath.Join(dir, "out", "report.json")
	cfgPath := writeConfig(t, "display: false\n")

	_, _, err := runCLI(t, "rdepth", "-c", cfgPath, "--archive=false", "--json", "-o", outPath, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("expected report file: %v", err)
	}
	var envelope struct {
		Version string       `json:"version"`
		Report  model.Report `json:"report"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, data)
	}
	if envelope.Report.Kind != model.KindReadDepth {
		t.Errorf("expected rdepth report, got %s", envelope.Report.Kind)
	}
	if envelope.Report.Summary.N != 3 || envelope.Report.Summary.NA != 1 {
		t.Errorf("unexpected summary: %+v", envelope.Report.Summary)
	}
}

// TestReportCmdSavesChartAndArchives tests chart saving and archiving.
func TestReportCmdSavesChartAndArchives(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeDataset(t, dir, "turtles")
	chartDir := t.TempDir()
	archiveDir := t.TempDir()
	cfgPath := writeConfig(t, "display: false\n")

	_, _, err := runCLI(t, "taglength", "-c", cfgPath,
		"--archive-dir", archiveDir,
		"--save-dir", chartDir, "--save-name", "tags", "--save-type", "svg",
		path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, name := range []string{"tags.msgpack", "tags.svg"} {
		if _, err := os.Stat(filepath.Join(chartDir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}

	db, err := database.Open(archiveDir, database.Options{})
	if err != nil {
		t.Fatalf("expected archive: %v", err)
	}
	defer db.Close()

	reports, err := db.ListReports(context.Background(), database.Filter{Dataset: "turtles"})
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 1 || reports[0].Kind != "taglength" {
		t.Fatalf("expected one archived taglength report, got %+v", reports)
	}
}

// TestReportCmdBatch tests several datasets with ordered output.
func TestReportCmdBatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first := writeDataset(t, dir, "first")
	second := writeDataset(t, dir, "second")
	third := writeDataset(t, dir, "third")
	cfgPath := writeConfig(t, "display: false\n")

	stdout, _, err := runCLI(t, "maf", "-c", cfgPath, "--archive=false", "-b", "3", first, second, third)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a := strings.Index(stdout, "Dataset: first")
	b := strings.Index(stdout, "Dataset: second")
	c := strings.Index(stdout, "Dataset: third")
	if a < 0 || b < 0 || c < 0 || !(a < b && b < c) {
		t.Errorf("expected datasets in input order, got positions %d %d %d:\n%s", a, b, c, stdout)
	}
}

// TestReportCmdErrors tests fatal errors.
func TestReportCmdErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeDataset(t, dir, "turtles")
	bare := filepath.Join(dir, "bare.tsv")
	if err := os.WriteFile(bare, []byte(testGenotypes), 0600); err != nil {
		t.Fatal(err)
	}
	cfgPath := writeConfig(t, "display: false\n")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no dataset", []string{"callrate", "-c", cfgPath}, "no dataset"},
		{"unsupported method", []string{"taglength", "-c", cfgPath, "-M", "ind", path}, "does not support"},
		{"unknown method", []string{"callrate", "-c", cfgPath, "-M", "pop", path}, "unknown method"},
		{"conflicting formats", []string{"callrate", "-c", cfgPath, "--json", "--markdown", path}, "conflicting"},
		{"invalid color", []string{"callrate", "-c", cfgPath, "--colors", "notacolor", path}, "invalid color"},
		{"invalid verbosity", []string{"callrate", "-c", cfgPath, "-V", "9", path}, "verbosity"},
		{"missing metadata", []string{"taglength", "-c", cfgPath, "--archive=false", bare}, "1 of 1 datasets failed"},
		{"missing config file", []string{"callrate", "-c", filepath.Join(dir, "nope.yaml"), path}, "not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := runCLI(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestBuildConfigPrecedence tests defaults < file < flags.
func TestBuildConfigPrecedence(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfig(t, `verbosity: 3
batchSize: 2
defaults:
  bins: 30
  theme: minimal
datasets:
  turtles:
    bins: 10
`)

	cmd := NewRootCmd()
	report, _, err := cmd.Find([]string{"callrate"})
	if err != nil {
		t.Fatal(err)
	}
	if err := report.ParseFlags([]string{"-c", cfgPath, "--batch", "5"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := buildConfig(report, []string{"turtles.tsv"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Verbosity != log.VerbosityResult {
		t.Errorf("expected file verbosity 3, got %d", cfg.Verbosity)
	}
	if cfg.BatchSize != 5 {
		t.Errorf("expected flag batch size 5, got %d", cfg.BatchSize)
	}

	dcfg := cfg.ForDataset(datasetName("data/turtles.tsv"))
	if dcfg.Plot.Bins != 10 || dcfg.Plot.Theme != "minimal" {
		t.Errorf("expected dataset bins 10 and default theme minimal, got %d %s", dcfg.Plot.Bins, dcfg.Plot.Theme)
	}
	if other := cfg.ForDataset("other"); other.Plot.Bins != 30 {
		t.Errorf("expected default bins 30, got %d", other.Plot.Bins)
	}
}

// TestNewReportWriter tests writer selection.
func TestNewReportWriter(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Verbosity = log.VerbositySilent
	if w := newReportWriter(os.Stdout, cfg); w != nil {
		t.Error("expected no text writer at verbosity 0")
	}

	cfg.ReportFile = "report.txt"
	if w := newReportWriter(os.Stdout, cfg); w == nil {
		t.Error("expected a writer when a report file is set")
	}

	cfg.ReportFile = ""
	cfg.JSONReport = true
	if w := newReportWriter(os.Stdout, cfg); w == nil {
		t.Error("expected a JSON writer at verbosity 0")
	}
}

// TestDatasetName tests config keys derived from paths.
func TestDatasetName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"turtles.tsv":            "turtles",
		"/data/run1.genos.tsv":   "run1.genos",
		filepath.Join("a", "b"): "b",
	}
	for in, want := range tests {
		if got := datasetName(in); got != want {
			t.Errorf("datasetName(%q) = %q, want %q", in, got, want)
		}
	}
}
