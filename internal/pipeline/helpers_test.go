package pipeline

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/nao1215/genoreport/internal/genotype"
	"github.com/nao1215/genoreport/internal/model"
)

const (
	scenarioIndividuals = 20
	scenarioLoci        = 100
)

// newScenarioDataset builds a 20x100 SNP dataset with exactly 5% missing
// calls: individuals 0-9 miss 2 calls each and individuals 10-19 miss 8.
func newScenarioDataset(t *testing.T) *genotype.Dataset {
	t.Helper()

	calls := mat.NewDense(scenarioIndividuals, scenarioLoci, nil)
	individuals := make([]genotype.Individual, scenarioIndividuals)
	for i := 0; i < scenarioIndividuals; i++ {
		missing := 2
		if i >= 10 {
			missing = 8
		}
		for j := 0; j < scenarioLoci; j++ {
			if j < missing {
				calls.Set(i, j, math.NaN())
				continue
			}
			calls.Set(i, j, float64((i+j)%3))
		}
		pop := "north"
		if i%2 == 1 {
			pop = "south"
		}
		individuals[i] = genotype.Individual{ID: fmt.Sprintf("ind%02d", i), Population: pop}
	}

	loci := make([]string, scenarioLoci)
	seqs := make([]string, scenarioLoci)
	depth := make([]float64, scenarioLoci)
	for j := range loci {
		loci[j] = fmt.Sprintf("L%03d", j)
		seqs[j] = "ACGTACGTAC"[:1+j%10]
		depth[j] = float64(5 + j%20)
	}
	meta := genotype.LocusMetadata{
		Metrics:         map[string][]float64{genotype.ColumnReadDepth: depth},
		TrimmedSequence: seqs,
	}

	ds, err := genotype.New("scenario", genotype.TypeSNP, individuals, loci, calls, meta)
	if err != nil {
		t.Fatalf("failed to create dataset: %v", err)
	}
	return ds
}

// newBareDataset builds a dataset without locus metadata.
func newBareDataset(t *testing.T) *genotype.Dataset {
	t.Helper()

	calls := mat.NewDense(2, 2, []float64{0, 1, 2, math.NaN()})
	ds, err := genotype.New("bare", genotype.TypeSNP,
		[]genotype.Individual{{ID: "a", Population: "p"}, {ID: "b", Population: "p"}},
		[]string{"L1", "L2"}, calls, genotype.LocusMetadata{})
	if err != nil {
		t.Fatalf("failed to create dataset: %v", err)
	}
	return ds
}

// sameCalls compares two matrices treating NaN as equal to NaN.
func sameCalls(a, b mat.Matrix) bool {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != br || ac != bc {
		return false
	}
	for i := 0; i < ar; i++ {
		for j := 0; j < ac; j++ {
			x, y := a.At(i, j), b.At(i, j)
			if math.IsNaN(x) && math.IsNaN(y) {
				continue
			}
			if x != y {
				return false
			}
		}
	}
	return true
}

// recordingWarner collects warning messages.
type recordingWarner struct {
	mu       sync.Mutex
	messages []string
}

func (w *recordingWarner) Warnf(format string, args ...any) string {
	msg := fmt.Sprintf(format, args...)
	w.mu.Lock()
	w.messages = append(w.messages, msg)
	w.mu.Unlock()
	return msg
}

// recordingArchive collects saved reports.
type recordingArchive struct {
	mu      sync.Mutex
	reports []*model.Report
	err     error
}

func (a *recordingArchive) SaveReport(_ context.Context, r *model.Report) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return 0, a.err
	}
	a.reports = append(a.reports, r)
	r.ID = int64(len(a.reports))
	return r.ID, nil
}
