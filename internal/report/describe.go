// Package report computes descriptive statistics over exported records and
// renders the text charts written next to the run summary.
package report

import (
	"math"
	"sort"

	"chatsynth/internal/dataset"
)

// ColumnStats summarizes one numeric column.
type ColumnStats struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"` // sample standard deviation, 0 below two values
	Min   float64 `json:"min"`
	P25   float64 `json:"25%"`
	P50   float64 `json:"50%"`
	P75   float64 `json:"75%"`
	Max   float64 `json:"max"`
}

// Description holds statistics for every numeric column and the count of
// missing values for every column.
type Description struct {
	Columns    map[string]ColumnStats
	NullCounts map[string]int
}

// welford accumulates mean and variance in one pass. Values are kept for
// the quartiles.
type welford struct {
	n        int
	mean, m2 float64
	min, max float64
	values   []float64
}

func (w *welford) add(x float64) {
	if w.n == 0 {
		w.min, w.max = x, x
	}
	w.n++
	delta := x - w.mean
	w.mean += delta / float64(w.n)
	w.m2 += delta * (x - w.mean)
	w.min = math.Min(w.min, x)
	w.max = math.Max(w.max, x)
	w.values = append(w.values, x)
}

func (w *welford) stats() ColumnStats {
	s := ColumnStats{Count: w.n, Mean: w.mean, Min: w.min, Max: w.max}
	if w.n > 1 {
		s.Std = math.Sqrt(w.m2 / float64(w.n-1))
	}
	sort.Float64s(w.values)
	s.P25 = quantile(w.values, 0.25)
	s.P50 = quantile(w.values, 0.50)
	s.P75 = quantile(w.values, 0.75)
	return s
}

// quantile interpolates linearly between the closest ranks of sorted.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Describe computes statistics over records. A column is numeric when it holds
// integer or float values; booleans and strings are not numeric. Only nil
// values count as missing; an empty string is a value.
func Describe(records []dataset.Record) Description {
	d := Description{
		Columns:    map[string]ColumnStats{},
		NullCounts: map[string]int{},
	}
	acc := map[string]*welford{}

	for _, rec := range records {
		for _, f := range rec {
			if _, ok := d.NullCounts[f.Name]; !ok {
				d.NullCounts[f.Name] = 0
			}
			if f.Value == nil {
				d.NullCounts[f.Name]++
				continue
			}
			x, ok := numeric(f.Value)
			if !ok {
				continue
			}
			w := acc[f.Name]
			if w == nil {
				w = &welford{}
				acc[f.Name] = w
			}
			w.add(x)
		}
	}

	for name, w := range acc {
		d.Columns[name] = w.stats()
	}
	return d
}

func numeric(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case float32:
		return float64(val), true
	case float64:
		return val, true
	}
	return 0, false
}
