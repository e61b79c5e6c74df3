// Package metric computes the per-locus or per-individual statistic vector
// of each report kind from a dataset.
package metric

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/nao1215/genoreport/internal/genotype"
	"github.com/nao1215/genoreport/internal/model"
)

// Vector is the statistic computed for one report run.
type Vector struct {
	// Values holds one entry per locus or per individual. NaN marks an
	// entry without a value.
	Values []float64

	// Names holds the locus names or individual IDs of Values.
	Names []string

	// Groups holds the population of each entry. Only set for
	// individual-oriented vectors.
	Groups []string
}

// Len returns the number of entries of the vector.
func (v Vector) Len() int { return len(v.Values) }

// definition binds a kind to its validation and computation.
type definition struct {
	validate func(ds *genotype.Dataset) error
	compute  func(ds *genotype.Dataset, method model.Method) Vector
}

var definitions = map[model.Kind]definition{
	model.KindCallRate: {
		validate: func(*genotype.Dataset) error { return nil },
		compute:  callRate,
	},
	model.KindTagLength: {
		validate: requireSequences,
		compute:  tagLength,
	},
	model.KindReadDepth: {
		validate: requireMetric(genotype.ColumnReadDepth),
		compute:  metricColumn(genotype.ColumnReadDepth),
	},
	model.KindReproducibility: {
		validate: requireMetric(genotype.ColumnRepAvg),
		compute:  metricColumn(genotype.ColumnRepAvg),
	},
	model.KindMAF: {
		validate: requireSNP,
		compute:  minorAlleleFrequency,
	},
}

// Validate checks that the dataset exposes every field the kind needs and
// that the kind supports the method. It returns ErrMissingField or
// ErrUnsupportedMethod wrapped with details.
func Validate(ds *genotype.Dataset, kind model.Kind, method model.Method) error {
	if ds == nil {
		return fmt.Errorf("%w: dataset is nil", ErrMissingField)
	}
	def, ok := definitions[kind]
	if !ok {
		return fmt.Errorf("%w: %s", model.ErrUnknownKind, kind)
	}
	if !kind.Supports(method) {
		return fmt.Errorf("%w: %s does not support method %q", ErrUnsupportedMethod, kind, method)
	}
	return def.validate(ds)
}

// Compute returns the statistic vector of the kind.
// Validate must have succeeded for the same arguments.
func Compute(ds *genotype.Dataset, kind model.Kind, method model.Method) Vector {
	return definitions[kind].compute(ds, method)
}

func requireSequences(ds *genotype.Dataset) error {
	seqs, ok := ds.TrimmedSequences()
	if !ok {
		return fmt.Errorf("%w: dataset does not contain the locus metric %s",
			ErrMissingField, genotype.ColumnTrimmedSequence)
	}
	if len(seqs) != ds.NumLoci() {
		return fmt.Errorf("%w: %s has %d entries for %d loci",
			ErrMissingField, genotype.ColumnTrimmedSequence, len(seqs), ds.NumLoci())
	}
	return nil
}

func requireMetric(column string) func(*genotype.Dataset) error {
	return func(ds *genotype.Dataset) error {
		if _, ok := ds.Metric(column); !ok {
			available := "none"
			if names := ds.MetricNames(); len(names) > 0 {
				available = strings.Join(names, ", ")
			}
			return fmt.Errorf("%w: dataset does not contain the locus metric %s (available: %s)",
				ErrMissingField, column, available)
		}
		return nil
	}
}

func requireSNP(ds *genotype.Dataset) error {
	if ds.Type() != genotype.TypeSNP {
		return fmt.Errorf("%w: minor allele frequency needs SNP data, dataset is %s",
			ErrWrongDataType, ds.Type())
	}
	return nil
}

// callRate computes 1 - missing/total along the axis of the method.
func callRate(ds *genotype.Dataset, method model.Method) Vector {
	nInd, nLoc := ds.NumIndividuals(), ds.NumLoci()

	if method == model.MethodIndividual {
		values := make([]float64, nInd)
		for i := 0; i < nInd; i++ {
			missing := 0
			for j := 0; j < nLoc; j++ {
				if ds.IsMissing(i, j) {
					missing++
				}
			}
			values[i] = 1 - float64(missing)/float64(nLoc)
		}
		return Vector{Values: values, Names: ds.Individuals(), Groups: ds.Populations()}
	}

	values := make([]float64, nLoc)
	for j := 0; j < nLoc; j++ {
		missing := 0
		for i := 0; i < nInd; i++ {
			if ds.IsMissing(i, j) {
				missing++
			}
		}
		values[j] = 1 - float64(missing)/float64(nInd)
	}
	return Vector{Values: values, Names: ds.Loci()}
}

// tagLength counts the characters of each trimmed sequence. Loci without
// a sequence are NaN.
func tagLength(ds *genotype.Dataset, _ model.Method) Vector {
	seqs, _ := ds.TrimmedSequences()
	values := make([]float64, len(seqs))
	for j, seq := range seqs {
		if seq == "" {
			values[j] = math.NaN()
			continue
		}
		values[j] = float64(utf8.RuneCountInString(seq))
	}
	return Vector{Values: values, Names: ds.Loci()}
}

func metricColumn(column string) func(*genotype.Dataset, model.Method) Vector {
	return func(ds *genotype.Dataset, _ model.Method) Vector {
		values, _ := ds.Metric(column)
		return Vector{Values: values, Names: ds.Loci()}
	}
}

// minorAlleleFrequency computes min(p, 1-p) of the alternate allele per
// locus from 0/1/2 calls. Loci without any call are NaN.
func minorAlleleFrequency(ds *genotype.Dataset, _ model.Method) Vector {
	nInd, nLoc := ds.NumIndividuals(), ds.NumLoci()
	calls := ds.Calls()

	values := make([]float64, nLoc)
	for j := 0; j < nLoc; j++ {
		alt, called := 0.0, 0
		for i := 0; i < nInd; i++ {
			v := calls.At(i, j)
			if math.IsNaN(v) {
				continue
			}
			alt += v
			called++
		}
		if called == 0 {
			values[j] = math.NaN()
			continue
		}
		p := alt / float64(2*called)
		values[j] = math.Min(p, 1-p)
	}
	return Vector{Values: values, Names: ds.Loci()}
}
