package genotype

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// newTestDataset creates a 3x4 SNP dataset with two missing calls.
func newTestDataset(t *testing.T) *Dataset {
	t.Helper()

	nan := math.NaN()
	calls := mat.NewDense(3, 4, []float64{
		0, 1, 2, nan,
		1, 1, 0, 0,
		2, nan, 1, 1,
	})
	individuals := []Individual{
		{ID: "ind1", Population: "north"},
		{ID: "ind2", Population: "north"},
		{ID: "ind3", Population: "south"},
	}
	meta := LocusMetadata{
		Metrics: map[string][]float64{
			ColumnReadDepth: {10, 12.5, 8, nan},
		},
		TrimmedSequence: []string{"ACGT", "ACGTAC", "A", "ACG"},
	}

	ds, err := New("test", TypeSNP, individuals, []string{"L1", "L2", "L3", "L4"}, calls, meta)
	if err != nil {
		t.Fatalf("failed to create dataset: %v", err)
	}
	return ds
}

// TestNew tests dataset construction and validation.
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("valid dataset exposes dimensions", func(t *testing.T) {
		t.Parallel()

		ds := newTestDataset(t)
		if ds.NumIndividuals() != 3 {
			t.Errorf("expected 3 individuals, got %d", ds.NumIndividuals())
		}
		if ds.NumLoci() != 4 {
			t.Errorf("expected 4 loci, got %d", ds.NumLoci())
		}
		if ds.Type() != TypeSNP {
			t.Errorf("expected SNP, got %s", ds.Type())
		}
		if ds.Name() != "test" {
			t.Errorf("expected name 'test', got %q", ds.Name())
		}
	})

	t.Run("nil matrix returns ErrMissingField", func(t *testing.T) {
		t.Parallel()

		_, err := New("x", TypeSNP, nil, nil, nil, LocusMetadata{})
		if !errors.Is(err, ErrMissingField) {
			t.Errorf("expected ErrMissingField, got %v", err)
		}
	})

	t.Run("empty matrix returns ErrEmptyDataset", func(t *testing.T) {
		t.Parallel()

		_, err := New("x", TypeSNP, nil, nil, &mat.Dense{}, LocusMetadata{})
		if !errors.Is(err, ErrEmptyDataset) {
			t.Errorf("expected ErrEmptyDataset, got %v", err)
		}
	})

	t.Run("row count mismatch returns ErrDimensionMismatch", func(t *testing.T) {
		t.Parallel()

		calls := mat.NewDense(2, 1, []float64{0, 1})
		_, err := New("x", TypeSNP, []Individual{{ID: "a"}}, []string{"L1"}, calls, LocusMetadata{})
		if !errors.Is(err, ErrDimensionMismatch) {
			t.Errorf("expected ErrDimensionMismatch, got %v", err)
		}
	})

	t.Run("short metadata column returns ErrDimensionMismatch", func(t *testing.T) {
		t.Parallel()

		calls := mat.NewDense(1, 2, []float64{0, 1})
		meta := LocusMetadata{TrimmedSequence: []string{"ACGT"}}
		_, err := New("x", TypeSNP, []Individual{{ID: "a"}}, []string{"L1", "L2"}, calls, meta)
		if !errors.Is(err, ErrDimensionMismatch) {
			t.Errorf("expected ErrDimensionMismatch, got %v", err)
		}
	})

	t.Run("call out of range returns ErrInvalidCall", func(t *testing.T) {
		t.Parallel()

		calls := mat.NewDense(1, 1, []float64{2})
		_, err := New("x", TypeSilicoDArT, []Individual{{ID: "a"}}, []string{"L1"}, calls, LocusMetadata{})
		if !errors.Is(err, ErrInvalidCall) {
			t.Errorf("expected ErrInvalidCall, got %v", err)
		}
	})

	t.Run("inputs are copied", func(t *testing.T) {
		t.Parallel()

		calls := mat.NewDense(1, 1, []float64{0})
		loci := []string{"L1"}
		ds, err := New("x", TypeSNP, []Individual{{ID: "a"}}, loci, calls, LocusMetadata{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		calls.Set(0, 0, 2)
		loci[0] = "changed"

		if ds.Calls().At(0, 0) != 0 {
			t.Error("dataset shares the caller's matrix")
		}
		if ds.Loci()[0] != "L1" {
			t.Error("dataset shares the caller's locus slice")
		}
	})
}

// TestDatasetAccessorsReturnCopies verifies accessors cannot mutate the dataset.
func TestDatasetAccessorsReturnCopies(t *testing.T) {
	t.Parallel()

	ds := newTestDataset(t)

	ids := ds.Individuals()
	ids[0] = "mutated"
	if ds.Individuals()[0] != "ind1" {
		t.Error("Individuals returned shared slice")
	}

	pops := ds.Populations()
	pops[0] = "mutated"
	if ds.Populations()[0] != "north" {
		t.Error("Populations returned shared slice")
	}

	depth, ok := ds.Metric(ColumnReadDepth)
	if !ok {
		t.Fatal("expected rdepth metric")
	}
	depth[0] = -1
	again, _ := ds.Metric(ColumnReadDepth)
	if again[0] != 10 {
		t.Error("Metric returned shared slice")
	}

	seqs, ok := ds.TrimmedSequences()
	if !ok {
		t.Fatal("expected trimmed sequences")
	}
	seqs[0] = "mutated"
	again2, _ := ds.TrimmedSequences()
	if again2[0] != "ACGT" {
		t.Error("TrimmedSequences returned shared slice")
	}
}

// TestDatasetMissing tests missing call accounting.
func TestDatasetMissing(t *testing.T) {
	t.Parallel()

	ds := newTestDataset(t)

	if !ds.IsMissing(0, 3) {
		t.Error("expected call (0,3) to be missing")
	}
	if ds.IsMissing(0, 0) {
		t.Error("expected call (0,0) to be present")
	}
	if got := ds.MissingCount(); got != 2 {
		t.Errorf("expected 2 missing calls, got %d", got)
	}

	want := 2.0 / 12.0
	if got := ds.MissingRate(); math.Abs(got-want) > 1e-12 {
		t.Errorf("expected missing rate %v, got %v", want, got)
	}
}

// TestDatasetOptionalFields tests access to absent metadata.
func TestDatasetOptionalFields(t *testing.T) {
	t.Parallel()

	calls := mat.NewDense(1, 1, []float64{1})
	ds, err := New("x", TypeSNP, []Individual{{ID: "a"}}, []string{"L1"}, calls, LocusMetadata{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := ds.Metric(ColumnRepAvg); ok {
		t.Error("expected RepAvg to be absent")
	}
	if _, ok := ds.TrimmedSequences(); ok {
		t.Error("expected trimmed sequences to be absent")
	}
	if len(ds.MetricNames()) != 0 {
		t.Errorf("expected no metric names, got %v", ds.MetricNames())
	}
}

// TestDatasetFingerprint tests content digests.
func TestDatasetFingerprint(t *testing.T) {
	t.Parallel()

	a := newTestDataset(t)
	b := newTestDataset(t)
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("expected equal datasets to share a fingerprint")
	}
	if len(a.Fingerprint()) != 64 {
		t.Errorf("expected 64 hex characters, got %d", len(a.Fingerprint()))
	}

	calls := mat.DenseCopyOf(a.Calls())
	calls.Set(0, 0, 1)
	changed, err := New("test", TypeSNP,
		[]Individual{{ID: "ind1", Population: "north"}, {ID: "ind2", Population: "north"}, {ID: "ind3", Population: "south"}},
		[]string{"L1", "L2", "L3", "L4"}, calls, LocusMetadata{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed.Fingerprint() == a.Fingerprint() {
		t.Error("expected a changed call to change the fingerprint")
	}
}

// TestParseDataType tests data type parsing.
func TestParseDataType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    DataType
		wantErr bool
	}{
		{"SNP", TypeSNP, false},
		{"snp", TypeSNP, false},
		{"", TypeSNP, false},
		{"SilicoDArT", TypeSilicoDArT, false},
		{"pa", TypeSilicoDArT, false},
		{"microsat", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseDataType(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownDataType) {
					t.Errorf("expected ErrUnknownDataType, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
