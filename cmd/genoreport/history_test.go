package main

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/genoreport/internal/database"
	"github.com/nao1215/genoreport/internal/model"
)

// seedArchive creates an archive with two call rate reports of "turtles"
// and one read depth report of "geckos". It returns the archive directory.
func seedArchive(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	defer db.Close()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	reports := []*model.Report{
		newArchivedReport("turtles", model.KindCallRate, 0.90, 0.10, base),
		newArchivedReport("turtles", model.KindCallRate, 0.95, 0.05, base.Add(time.Hour)),
		newArchivedReport("geckos", model.KindReadDepth, 12, 0.20, base.Add(2*time.Hour)),
	}
	for _, r := range reports {
		if _, err := db.SaveReport(context.Background(), r); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}
	}
	return dir
}

func newArchivedReport(dataset string, kind model.Kind, mean, missing float64, at time.Time) *model.Report {
	r := model.NewReport(dataset, kind, kind.DefaultMethod())
	r.DataType = "SNP"
	r.NumLoci = 100
	r.NumIndividuals = 20
	r.MissingRate = missing
	r.Summary = model.Summary{N: 100, Min: mean - 0.1, Q1: mean, Median: mean, Mean: mean, Q3: mean, Max: mean + 0.05}
	r.CreatedAt = at
	return r
}

// TestHistoryList tests listing archived reports.
func TestHistoryList(t *testing.T) {
	t.Parallel()

	dir := seedArchive(t)

	t.Run("lists every report", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := runCLI(t, "history", "--archive-dir", dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "Archived reports (3)") {
			t.Errorf("expected three reports:\n%s", stdout)
		}
	})

	t.Run("filters by dataset and kind", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := runCLI(t, "history", "--archive-dir", dir, "--kind", "callrate", "turtles")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "Archived reports (2)") || strings.Contains(stdout, "geckos") {
			t.Errorf("expected two turtles reports:\n%s", stdout)
		}
	})

	t.Run("empty result prints a hint", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := runCLI(t, "history", "--archive-dir", dir, "lizards")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "No archived reports found") {
			t.Errorf("expected empty message:\n%s", stdout)
		}
	})

	t.Run("unknown kind fails", func(t *testing.T) {
		t.Parallel()

		if _, _, err := runCLI(t, "history", "--archive-dir", dir, "--kind", "heterozygosity"); err == nil {
			t.Error("expected error for unknown kind")
		}
	})
}

// TestHistoryDatasets tests the dataset listing.
func TestHistoryDatasets(t *testing.T) {
	t.Parallel()

	stdout, _, err := runCLI(t, "history", "datasets", "--archive-dir", seedArchive(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "Archived datasets (2)") {
		t.Errorf("expected two datasets:\n%s", stdout)
	}
	if strings.Index(stdout, "geckos") > strings.Index(stdout, "turtles") {
		t.Errorf("expected datasets sorted by name:\n%s", stdout)
	}
}

// TestHistoryShow tests printing an archived report.
func TestHistoryShow(t *testing.T) {
	t.Parallel()

	dir := seedArchive(t)

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{name: "text", args: []string{"1"}, want: "Reporting Call Rate by Locus"},
		{name: "markdown", args: []string{"--markdown", "3"}, want: "geckos"},
		{name: "invalid id", args: []string{"abc"}, wantErr: true},
		{name: "missing id", args: []string{"99"}, wantErr: true},
		{name: "conflicting formats", args: []string{"--json", "--markdown", "1"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			args := append([]string{"history", "show", "--archive-dir", dir}, tt.args...)
			stdout, _, err := runCLI(t, args...)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(stdout, tt.want) {
				t.Errorf("expected output to contain %q:\n%s", tt.want, stdout)
			}
		})
	}

	t.Run("json decodes to the stored report", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := runCLI(t, "history", "show", "--archive-dir", dir, "--json", "2")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var r model.Report
		if err := json.Unmarshal([]byte(stdout), &r); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, stdout)
		}
		if r.ID != 2 || r.Dataset != "turtles" || r.Summary.Mean != 0.95 {
			t.Errorf("unexpected report: %+v", r)
		}
	})
}

// TestHistoryCompare tests comparing archived reports.
func TestHistoryCompare(t *testing.T) {
	t.Parallel()

	dir := seedArchive(t)

	t.Run("text shows the trend", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := runCLI(t, "history", "compare", "--archive-dir", dir, "turtles")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"Call Rate by Locus: turtles", "Previous report: 1", "Current report:  2", "Mean trend: UP"} {
			if !strings.Contains(stdout, want) {
				t.Errorf("expected output to contain %q:\n%s", want, stdout)
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := runCLI(t, "history", "compare", "--archive-dir", dir, "--json", "turtles")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var result ComparisonResult
		if err := json.Unmarshal([]byte(stdout), &result); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if result.Trend != trendUp || result.Previous.ID != 1 || result.Current.ID != 2 {
			t.Errorf("unexpected comparison: %+v", result)
		}
	})

	t.Run("single report fails", func(t *testing.T) {
		t.Parallel()

		_, _, err := runCLI(t, "history", "compare", "--archive-dir", dir, "--kind", "rdepth", "geckos")
		if err == nil || !strings.Contains(err.Error(), "at least 2") {
			t.Errorf("expected at least 2 reports error, got %v", err)
		}
	})

	t.Run("with-id of another dataset fails", func(t *testing.T) {
		t.Parallel()

		_, _, err := runCLI(t, "history", "compare", "--archive-dir", dir, "--with-id", "3", "turtles")
		if err == nil || !strings.Contains(err.Error(), "report 3") {
			t.Errorf("expected mismatch error, got %v", err)
		}
	})

	t.Run("unknown dataset fails", func(t *testing.T) {
		t.Parallel()

		if _, _, err := runCLI(t, "history", "compare", "--archive-dir", dir, "lizards"); err == nil {
			t.Error("expected error for unknown dataset")
		}
	})
}

// TestHistoryDelete tests deleting an archived report.
func TestHistoryDelete(t *testing.T) {
	t.Parallel()

	dir := seedArchive(t)

	stdout, _, err := runCLI(t, "history", "delete", "--archive-dir", dir, "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "Deleted report 1") {
		t.Errorf("unexpected output: %s", stdout)
	}

	if _, _, err := runCLI(t, "history", "show", "--archive-dir", dir, "1"); err == nil {
		t.Error("expected deleted report to be gone")
	}
}

// TestCompareReports tests the comparison rows and trend.
func TestCompareReports(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		prev, cur float64
		want      string
	}{
		{"up", 0.5, 0.6, trendUp},
		{"down", 0.6, 0.5, trendDown},
		{"unchanged", 0.5, 0.5, trendUnchanged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			prev := newArchivedReport("x", model.KindCallRate, tt.prev, 0.1, at)
			cur := newArchivedReport("x", model.KindCallRate, tt.cur, 0.1, at.Add(time.Hour))
			result := compareReports(prev, cur)
			if result.Trend != tt.want {
				t.Errorf("expected trend %s, got %s", tt.want, result.Trend)
			}
			if len(result.Rows) != 8 {
				t.Fatalf("expected 8 rows, got %d", len(result.Rows))
			}
			if result.Rows[0].Name != "Loci" || result.Rows[0].Delta != 0 {
				t.Errorf("unexpected loci row: %+v", result.Rows[0])
			}
			if result.DataChanged != nil {
				t.Error("expected no data change verdict without fingerprints")
			}
		})
	}

	t.Run("fingerprints decide data change", func(t *testing.T) {
		t.Parallel()

		prev := newArchivedReport("x", model.KindCallRate, 0.5, 0.1, at)
		cur := newArchivedReport("x", model.KindCallRate, 0.5, 0.1, at)
		prev.Fingerprint, cur.Fingerprint = "aa", "aa"
		if r := compareReports(prev, cur); r.DataChanged == nil || *r.DataChanged {
			t.Errorf("expected unchanged data, got %v", r.DataChanged)
		}
		cur.Fingerprint = "bb"
		if r := compareReports(prev, cur); r.DataChanged == nil || !*r.DataChanged {
			t.Errorf("expected changed data, got %v", r.DataChanged)
		}
	})
}

// TestFormatDelta tests delta formatting.
func TestFormatDelta(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input float64
		want  string
	}{
		{5, "+5"},
		{-3, "-3"},
		{0, "0"},
		{0.05, "+0.0500"},
		{-0.125, "-0.1250"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()

			if got := formatDelta(tt.input); got != tt.want {
				t.Errorf("formatDelta(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestParseID tests report ID parsing.
func TestParseID(t *testing.T) {
	t.Parallel()

	if id, err := parseID("42"); err != nil || id != 42 {
		t.Errorf("expected 42, got %d %v", id, err)
	}
	for _, bad := range []string{"0", "-1", "x"} {
		if _, err := parseID(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
