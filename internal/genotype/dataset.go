package genotype

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/crypto/sha3"
	"gonum.org/v1/gonum/mat"
)

// DataType is the marker data type of a dataset.
type DataType string

const (
	// TypeSNP marks SNP data. Calls are 0 (homozygous reference),
	// 1 (heterozygous) or 2 (homozygous alternate).
	TypeSNP DataType = "SNP"

	// TypeSilicoDArT marks presence/absence data. Calls are 0 or 1.
	TypeSilicoDArT DataType = "SilicoDArT"
)

// ParseDataType converts a data type name into a DataType.
func ParseDataType(s string) (DataType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "snp", "":
		return TypeSNP, nil
	case "silicodart", "pa", "presence-absence":
		return TypeSilicoDArT, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDataType, s)
	}
}

// maxCall returns the largest valid call value of the data type.
func (t DataType) maxCall() float64 {
	if t == TypeSilicoDArT {
		return 1
	}
	return 2
}

// Well-known locus metadata columns.
const (
	// ColumnReadDepth is the per-locus average read depth column.
	ColumnReadDepth = "rdepth"

	// ColumnRepAvg is the per-locus reproducibility column.
	ColumnRepAvg = "RepAvg"

	// ColumnTrimmedSequence is the per-locus trimmed tag sequence column.
	ColumnTrimmedSequence = "TrimmedSequence"
)

// Dataset is an immutable genetic dataset.
//
// Rows of the call matrix are individuals, columns are loci and missing
// calls are NaN. All accessors return copies or read-only views, so a
// Dataset handed to a report can never be changed by it.
type Dataset struct {
	name        string
	dataType    DataType
	individuals []string
	populations []string
	loci        []string
	calls       *mat.Dense
	metrics     map[string][]float64
	sequences   []string
}

// Individual describes one row of the call matrix.
type Individual struct {
	ID         string
	Population string
}

// LocusMetadata holds the per-locus metadata table.
// Every slice must have one entry per locus.
type LocusMetadata struct {
	// Metrics maps numeric column names to their values. NaN marks missing.
	Metrics map[string][]float64

	// TrimmedSequence holds the trimmed tag sequence of each locus.
	// An empty string marks a locus without a sequence.
	TrimmedSequence []string
}

// New creates a Dataset from its parts.
// calls must have one row per individual and one column per locus.
// The inputs are copied.
func New(name string, dataType DataType, individuals []Individual, loci []string, calls *mat.Dense, meta LocusMetadata) (*Dataset, error) {
	if calls == nil {
		return nil, fmt.Errorf("%w: call matrix", ErrMissingField)
	}
	rows, cols := calls.Dims()
	if rows == 0 || cols == 0 {
		return nil, ErrEmptyDataset
	}
	if rows != len(individuals) {
		return nil, fmt.Errorf("%w: %d individuals but %d matrix rows", ErrDimensionMismatch, len(individuals), rows)
	}
	if cols != len(loci) {
		return nil, fmt.Errorf("%w: %d loci but %d matrix columns", ErrDimensionMismatch, len(loci), cols)
	}

	for col, values := range meta.Metrics {
		if len(values) != cols {
			return nil, fmt.Errorf("%w: metadata column %s has %d entries for %d loci",
				ErrDimensionMismatch, col, len(values), cols)
		}
	}
	if meta.TrimmedSequence != nil && len(meta.TrimmedSequence) != cols {
		return nil, fmt.Errorf("%w: metadata column %s has %d entries for %d loci",
			ErrDimensionMismatch, ColumnTrimmedSequence, len(meta.TrimmedSequence), cols)
	}

	maxCall := dataType.maxCall()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := calls.At(i, j)
			if math.IsNaN(v) {
				continue
			}
			if v < 0 || v > maxCall || v != math.Trunc(v) {
				return nil, fmt.Errorf("%w: %v at individual %s, locus %s",
					ErrInvalidCall, v, individuals[i].ID, loci[j])
			}
		}
	}

	ds := &Dataset{
		name:        name,
		dataType:    dataType,
		individuals: make([]string, rows),
		populations: make([]string, rows),
		loci:        append([]string(nil), loci...),
		calls:       mat.DenseCopyOf(calls),
		metrics:     make(map[string][]float64, len(meta.Metrics)),
	}
	for i, ind := range individuals {
		ds.individuals[i] = ind.ID
		ds.populations[i] = ind.Population
	}
	for col, values := range meta.Metrics {
		ds.metrics[col] = append([]float64(nil), values...)
	}
	if meta.TrimmedSequence != nil {
		ds.sequences = append([]string(nil), meta.TrimmedSequence...)
	}

	return ds, nil
}

// Name returns the dataset name.
func (d *Dataset) Name() string { return d.name }

// Type returns the marker data type.
func (d *Dataset) Type() DataType { return d.dataType }

// NumIndividuals returns the number of rows of the call matrix.
func (d *Dataset) NumIndividuals() int { return len(d.individuals) }

// NumLoci returns the number of columns of the call matrix.
func (d *Dataset) NumLoci() int { return len(d.loci) }

// Calls returns a read-only view of the call matrix.
func (d *Dataset) Calls() mat.Matrix { return d.calls }

// IsMissing reports whether the call of individual i at locus j is missing.
func (d *Dataset) IsMissing(i, j int) bool {
	return math.IsNaN(d.calls.At(i, j))
}

// Individuals returns the individual IDs in row order.
func (d *Dataset) Individuals() []string {
	return append([]string(nil), d.individuals...)
}

// Populations returns the population label of each individual in row order.
func (d *Dataset) Populations() []string {
	return append([]string(nil), d.populations...)
}

// Loci returns the locus names in column order.
func (d *Dataset) Loci() []string {
	return append([]string(nil), d.loci...)
}

// Metric returns a copy of a numeric locus metadata column.
// The second result is false if the column does not exist.
func (d *Dataset) Metric(name string) ([]float64, bool) {
	values, ok := d.metrics[name]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), values...), true
}

// MetricNames returns the sorted names of the numeric locus metadata columns.
func (d *Dataset) MetricNames() []string {
	names := make([]string, 0, len(d.metrics))
	for name := range d.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TrimmedSequences returns a copy of the trimmed tag sequences.
// The second result is false if the dataset has no sequence column.
func (d *Dataset) TrimmedSequences() ([]string, bool) {
	if d.sequences == nil {
		return nil, false
	}
	return append([]string(nil), d.sequences...), true
}

// MissingCount returns the number of missing calls in the matrix.
func (d *Dataset) MissingCount() int {
	rows, cols := d.calls.Dims()
	count := 0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if math.IsNaN(d.calls.At(i, j)) {
				count++
			}
		}
	}
	return count
}

// MissingRate returns count(missing)/(rows*columns).
// An empty matrix has a missing rate of 0.
func (d *Dataset) MissingRate() float64 {
	rows, cols := d.calls.Dims()
	if rows == 0 || cols == 0 {
		return 0
	}
	return float64(d.MissingCount()) / float64(rows*cols)
}

// Fingerprint returns the hex SHA3-256 digest of the data type, the
// individuals with their populations, the locus names and the call matrix.
// Two datasets with equal content have equal fingerprints regardless of how
// their files were formatted. Locus metadata is not included.
func (d *Dataset) Fingerprint() string {
	h := sha3.New256()
	writeField := func(s string) {
		var n [8]byte
		binary.LittleEndian.PutUint64(n[:], uint64(len(s)))
		h.Write(n[:])
		h.Write([]byte(s))
	}

	writeField(string(d.dataType))
	for i, id := range d.individuals {
		writeField(id)
		writeField(d.populations[i])
	}
	for _, locus := range d.loci {
		writeField(locus)
	}

	rows, cols := d.calls.Dims()
	var buf [8]byte
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := d.calls.At(i, j)
			bits := math.Float64bits(v)
			if math.IsNaN(v) {
				// Every NaN payload is the same missing call.
				bits = math.Float64bits(math.NaN())
			}
			binary.LittleEndian.PutUint64(buf[:], bits)
			h.Write(buf[:])
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
