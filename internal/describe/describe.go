// Package describe computes the descriptive statistics printed by reports:
// the summary line, the quantile threshold table, per-population means and
// the lowest-N listing.
package describe

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/nao1215/genoreport/internal/model"
)

// Finite returns the finite values of v and the number of dropped entries.
func Finite(v []float64) ([]float64, int) {
	out := make([]float64, 0, len(v))
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		out = append(out, x)
	}
	return out, len(v) - len(out)
}

// Summarize computes minimum, quartiles, median, mean and maximum of the
// finite values of v. Non-finite entries are counted in Summary.NA.
// ErrNoValues is returned when no finite value remains.
func Summarize(v []float64) (model.Summary, error) {
	values, na := Finite(v)
	if len(values) == 0 {
		return model.Summary{NA: na}, ErrNoValues
	}

	data := stats.Float64Data(values)
	minimum, err := stats.Min(data)
	if err != nil {
		return model.Summary{}, err
	}
	maximum, err := stats.Max(data)
	if err != nil {
		return model.Summary{}, err
	}
	mean, err := stats.Mean(data)
	if err != nil {
		return model.Summary{}, err
	}
	median, err := stats.Median(data)
	if err != nil {
		return model.Summary{}, err
	}

	// Q1 and Q3 are medians of the lower and upper halves, without R-style
	// interpolation. A single value has no halves.
	q1, q3 := median, median
	if len(values) > 1 {
		quartiles, err := stats.Quartile(data)
		if err != nil {
			return model.Summary{}, err
		}
		q1, q3 = quartiles.Q1, quartiles.Q3
	}

	return model.Summary{
		N:      len(values),
		NA:     na,
		Min:    minimum,
		Q1:     q1,
		Median: median,
		Mean:   mean,
		Q3:     q3,
		Max:    maximum,
	}, nil
}

// Thresholds builds the quantile threshold table over the finite values of v.
//
// The table has model.QuantileSteps+1 rows for the probabilities
// 0, 1/steps, ..., 1. Thresholds are nearest-rank quantiles (the value at
// sorted index ceil(p*n), no interpolation). For each threshold the values
// >= threshold are retained and the values < threshold are filtered.
// Rows are ordered from the highest quantile to the lowest.
func Thresholds(v []float64) []model.ThresholdRow {
	values, _ := Finite(v)
	if len(values) == 0 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)

	rows := make([]model.ThresholdRow, 0, model.QuantileSteps+1)
	for k := model.QuantileSteps; k >= 0; k-- {
		p := float64(k) / model.QuantileSteps
		threshold := sorted[nearestRank(k, model.QuantileSteps, n)]

		// sorted is ascending, so the first index >= threshold splits the values.
		filtered := sort.SearchFloat64s(sorted, threshold)
		retained := n - filtered

		rows = append(rows, model.ThresholdRow{
			Quantile:        p,
			Threshold:       threshold,
			Retained:        retained,
			RetainedPercent: Round(float64(retained)*100/float64(n), 1),
			Filtered:        filtered,
			FilteredPercent: Round(float64(filtered)*100/float64(n), 1),
		})
	}
	return rows
}

// nearestRank returns the 0-based index of the k/steps quantile of n sorted
// values, ceil(k*n/steps)-1 clamped at 0.
func nearestRank(k, steps, n int) int {
	rank := (k*n + steps - 1) / steps
	if rank < 1 {
		return 0
	}
	return rank - 1
}

// PopulationMeans returns the mean of the finite values of each population,
// sorted by population name. values and pops must have equal length.
func PopulationMeans(values []float64, pops []string) []model.PopulationMean {
	groups := make(map[string][]float64)
	for i, pop := range pops {
		if i >= len(values) {
			break
		}
		x := values[i]
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		groups[pop] = append(groups[pop], x)
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]model.PopulationMean, 0, len(names))
	for _, name := range names {
		out = append(out, model.PopulationMean{
			Population: name,
			N:          len(groups[name]),
			Mean:       stat.Mean(groups[name], nil),
		})
	}
	return out
}

// Lowest returns the n individuals with the smallest values, ascending.
// Ties keep input order. Non-finite values are skipped.
// n larger than the number of individuals returns all of them.
func Lowest(values []float64, ids, pops []string, n int) []model.IndividualValue {
	all := make([]model.IndividualValue, 0, len(values))
	for i, x := range values {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		iv := model.IndividualValue{Value: x}
		if i < len(ids) {
			iv.ID = ids[i]
		}
		if i < len(pops) {
			iv.Population = pops[i]
		}
		all = append(all, iv)
	}

	sort.SliceStable(all, func(a, b int) bool {
		return all[a].Value < all[b].Value
	})

	if n < 0 {
		n = 0
	}
	if n < len(all) {
		all = all[:n]
	}
	return all
}

// Range returns the minimum and maximum of the finite values of v.
// ok is false when v has no finite value.
func Range(v []float64) (lo, hi float64, ok bool) {
	values, _ := Finite(v)
	if len(values) == 0 {
		return 0, 0, false
	}
	return floats.Min(values), floats.Max(values), true
}

// Round rounds x to the given number of decimal places.
func Round(x float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(x*pow) / pow
}
