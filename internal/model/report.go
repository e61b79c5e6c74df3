package model

import (
	"time"
)

// Report is the result of one report run over a dataset.
// It holds every table the text, Markdown and JSON writers print and is
// stored as JSON in the report archive.
type Report struct {
	// ID is the archive row ID. Zero until the report is archived.
	ID int64 `json:"id,omitempty"`

	// Dataset is the dataset name, usually the base name of its file.
	Dataset string `json:"dataset"`

	// DataType is the marker data type, "SNP" or "SilicoDArT".
	DataType string `json:"data_type"`

	// Kind is the statistic the report computed.
	Kind Kind `json:"kind"`

	// Method is the aggregation axis.
	Method Method `json:"method"`

	// Fingerprint is the content digest of the genotype data.
	Fingerprint string `json:"fingerprint,omitempty"`

	// NumLoci is the number of loci in the dataset.
	NumLoci int `json:"num_loci"`

	// NumIndividuals is the number of individuals in the dataset.
	NumIndividuals int `json:"num_individuals"`

	// Summary holds the descriptive statistics of the report vector.
	Summary Summary `json:"summary"`

	// MissingRate is count(missing)/(rows*columns) over the call matrix,
	// rounded to two decimals.
	MissingRate float64 `json:"missing_rate"`

	// Thresholds is the quantile threshold table, highest quantile first.
	Thresholds []ThresholdRow `json:"thresholds"`

	// Populations holds per-population means. Only set for individual reports.
	Populations []PopulationMean `json:"populations,omitempty"`

	// Lowest lists the individuals with the lowest values, ascending.
	// Only set for individual reports.
	Lowest []IndividualValue `json:"lowest,omitempty"`

	// ChartFiles lists the files written when the chart was saved.
	ChartFiles []string `json:"chart_files,omitempty"`

	// Warnings collects the non-fatal issues raised during the run.
	Warnings []string `json:"warnings,omitempty"`

	// CreatedAt is when the report was generated.
	CreatedAt time.Time `json:"created_at"`
}

// NewReport creates an empty report for the given dataset and statistic.
func NewReport(dataset string, kind Kind, method Method) *Report {
	return &Report{
		Dataset:    dataset,
		Kind:       kind,
		Method:     method,
		Thresholds: make([]ThresholdRow, 0, QuantileSteps+1),
		Warnings:   make([]string, 0),
		ChartFiles: make([]string, 0),
		CreatedAt:  time.Now(),
	}
}

// Title returns the report heading, e.g. "Call Rate by Locus".
func (r *Report) Title() string {
	by := "Locus"
	if r.Method == MethodIndividual {
		by = "Individual"
	}
	return r.Kind.Info().Label + " by " + by
}

// AddWarning records a non-fatal issue.
func (r *Report) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// IsIndividual reports whether the report aggregates per individual.
func (r *Report) IsIndividual() bool {
	return r.Method == MethodIndividual
}

// Summary holds the descriptive statistics of a numeric vector.
type Summary struct {
	// N is the number of finite values the statistics are computed over.
	N int `json:"n"`

	// NA is the number of non-finite values dropped before computing.
	NA int `json:"na"`

	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Mean   float64 `json:"mean"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// QuantileSteps is the number of intervals of the threshold table.
// 20 steps give the 21 points 0%, 5%, ..., 100%.
const QuantileSteps = 20

// ThresholdRow is one row of the quantile threshold table.
type ThresholdRow struct {
	// Quantile is the probability of the row in [0,1].
	Quantile float64 `json:"quantile"`

	// Threshold is the nearest-rank quantile value.
	Threshold float64 `json:"threshold"`

	// Retained counts values >= Threshold.
	Retained int `json:"retained"`

	// RetainedPercent is Retained as a percentage of all values.
	RetainedPercent float64 `json:"retained_percent"`

	// Filtered counts values < Threshold.
	Filtered int `json:"filtered"`

	// FilteredPercent is Filtered as a percentage of all values.
	FilteredPercent float64 `json:"filtered_percent"`
}

// PopulationMean is the mean statistic of the individuals of one population.
type PopulationMean struct {
	Population string  `json:"population"`
	N          int     `json:"n"`
	Mean       float64 `json:"mean"`
}

// IndividualValue is the statistic of one individual.
type IndividualValue struct {
	ID         string  `json:"id"`
	Population string  `json:"population"`
	Value      float64 `json:"value"`
}
