package genotype

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// LocusFileSuffix is appended to a genotype file stem to find its
// locus metadata file, e.g. "sample.tsv" -> "sample.loci.tsv".
const LocusFileSuffix = ".loci.tsv"

// typeDirective starts the optional first line naming the data type.
const typeDirective = "#type="

// missingTokens are the cell values treated as missing calls.
var missingTokens = map[string]bool{
	"":   true,
	"-":  true,
	"NA": true,
	"na": true,
	".":  true,
}

// idColumns and popColumns are the accepted header names of the first two columns.
var (
	idColumns  = map[string]bool{"id": true, "ind": true, "individual": true, "sample": true}
	popColumns = map[string]bool{"pop": true, "population": true}
)

// locusKeyColumns are the accepted header names of the locus key column.
var locusKeyColumns = map[string]bool{"locus": true, "AlleleID": true, "loc": true}

// LoadFile reads a genotype file and, if present, its locus metadata file.
// When locusPath is empty the sibling "<stem>.loci.tsv" is used if it exists.
func LoadFile(genotypePath, locusPath string) (*Dataset, error) {
	f, err := os.Open(genotypePath) //nolint:gosec // User-provided dataset path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open genotype file: %w", err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(genotypePath), filepath.Ext(genotypePath))

	if locusPath == "" {
		sibling := SiblingLocusFile(genotypePath)
		if _, err := os.Stat(sibling); err == nil {
			locusPath = sibling
		}
	}

	var meta io.Reader
	if locusPath != "" {
		mf, err := os.Open(locusPath) //nolint:gosec // User-provided metadata path is intentional
		if err != nil {
			return nil, fmt.Errorf("failed to open locus metadata file: %w", err)
		}
		defer mf.Close()
		meta = mf
	}

	return Load(name, f, meta)
}

// SiblingLocusFile returns the default locus metadata path of a genotype file.
func SiblingLocusFile(genotypePath string) string {
	stem := strings.TrimSuffix(genotypePath, filepath.Ext(genotypePath))
	return stem + LocusFileSuffix
}

// Load parses a genotype table and an optional locus metadata table.
// meta may be nil.
func Load(name string, genotypes io.Reader, meta io.Reader) (*Dataset, error) {
	records, dataType, err := readTable(genotypes)
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, ErrEmptyDataset
	}

	header := records[0]
	if len(header) < 3 {
		return nil, fmt.Errorf("%w: header needs id, pop and at least one locus column", ErrMalformedFile)
	}
	if !idColumns[strings.ToLower(header[0])] || !popColumns[strings.ToLower(header[1])] {
		return nil, fmt.Errorf("%w: header must start with id and pop columns, got %q and %q",
			ErrMalformedFile, header[0], header[1])
	}

	loci := header[2:]
	rows := records[1:]
	calls := mat.NewDense(len(rows), len(loci), nil)
	individuals := make([]Individual, len(rows))

	for i, row := range rows {
		if len(row) != len(header) {
			return nil, fmt.Errorf("%w: line %d has %d fields, header has %d",
				ErrMalformedFile, i+2, len(row), len(header))
		}
		individuals[i] = Individual{ID: row[0], Population: row[1]}
		for j, cell := range row[2:] {
			v, err := parseCall(cell)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d, locus %s: %w", ErrMalformedFile, i+2, loci[j], err)
			}
			calls.Set(i, j, v)
		}
	}

	var locusMeta LocusMetadata
	if meta != nil {
		locusMeta, err = parseLocusMetadata(meta, loci)
		if err != nil {
			return nil, err
		}
	}

	return New(name, dataType, individuals, loci, calls, locusMeta)
}

// readTable reads a tab-separated table, consuming the optional type directive.
func readTable(r io.Reader) ([][]string, DataType, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.Comment = 0
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	dataType := TypeSNP
	var records [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, "", fmt.Errorf("%w: %w", ErrMalformedFile, err)
		}
		if len(record) > 0 && strings.HasPrefix(record[0], "#") {
			if strings.HasPrefix(record[0], typeDirective) {
				dataType, err = ParseDataType(strings.TrimPrefix(record[0], typeDirective))
				if err != nil {
					return nil, "", err
				}
			}
			continue
		}
		records = append(records, record)
	}
	return records, dataType, nil
}

// parseCall converts a genotype cell into a call value; missing cells are NaN.
func parseCall(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if missingTokens[cell] {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(cell, 64)
}

// parseLocusMetadata reads the locus metadata table and aligns it with loci.
// Loci absent from the table get NaN metrics and empty sequences.
func parseLocusMetadata(r io.Reader, loci []string) (LocusMetadata, error) {
	records, _, err := readTable(r)
	if err != nil {
		return LocusMetadata{}, err
	}
	if len(records) == 0 {
		return LocusMetadata{}, fmt.Errorf("%w: empty locus metadata file", ErrMalformedFile)
	}

	header := records[0]
	keyCol := -1
	for i, h := range header {
		if locusKeyColumns[h] {
			keyCol = i
			break
		}
	}
	if keyCol < 0 {
		return LocusMetadata{}, fmt.Errorf("%w: locus metadata needs a locus or AlleleID column", ErrMalformedFile)
	}

	index := make(map[string]int, len(loci))
	for j, locus := range loci {
		index[locus] = j
	}

	// A column is numeric when at least one of its cells parses; other
	// cells of a numeric column are NaN. TrimmedSequence is always text.
	// Loci without a metadata row stay NaN or "".
	numeric := make(map[int][]float64)
	parsed := make(map[int]int)
	rejected := make(map[int]bool)
	text := make(map[int][]string)
	for c, h := range header {
		if c == keyCol {
			continue
		}
		if h == ColumnTrimmedSequence {
			text[c] = make([]string, len(loci))
			continue
		}
		values := make([]float64, len(loci))
		for j := range values {
			values[j] = math.NaN()
		}
		numeric[c] = values
	}

	for line, row := range records[1:] {
		if len(row) != len(header) {
			return LocusMetadata{}, fmt.Errorf("%w: locus metadata line %d has %d fields, header has %d",
				ErrMalformedFile, line+2, len(row), len(header))
		}
		j, ok := index[row[keyCol]]
		if !ok {
			continue
		}
		for c, values := range text {
			cell := strings.TrimSpace(row[c])
			if missingTokens[cell] {
				cell = ""
			}
			values[j] = cell
		}
		for c, values := range numeric {
			cell := strings.TrimSpace(row[c])
			if missingTokens[cell] {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				rejected[c] = true
				continue
			}
			values[j] = v
			parsed[c]++
		}
	}

	for c := range rejected {
		if parsed[c] == 0 {
			delete(numeric, c)
		}
	}

	meta := LocusMetadata{Metrics: make(map[string][]float64, len(numeric))}
	for c, values := range numeric {
		meta.Metrics[header[c]] = values
	}
	for c, values := range text {
		if header[c] == ColumnTrimmedSequence {
			meta.TrimmedSequence = values
		}
	}
	return meta, nil
}
