package attributes

import (
	"sort"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the distribution of the computed values of a column.
type Summary struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Nulls  int     `json:"nulls"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Total  float64 `json:"total"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Median float64 `json:"median"`
}

// Summarize scans a column and returns statistics over its non Null values.
func (t *Table) Summarize(col int) (Summary, error) {
	if col < 0 || col >= len(t.columns) {
		return Summary{}, errors.New("column not found").
			WithType(ErrTypeColumnNotFound).
			WithTag("column", col)
	}

	c := t.columns[col]
	s := Summary{Column: c.Name}

	values := make([]float64, 0, len(t.rows))
	for _, r := range t.rows {
		v := r.values[c.physical]
		if v == Null {
			s.Nulls++
			continue
		}
		values = append(values, float64(v))
	}

	s.Count = len(values)
	if s.Count == 0 {
		s.Min, s.Max, s.Mean, s.StdDev, s.Median = -1, -1, -1, -1, -1
		return s, nil
	}

	sort.Float64s(values)
	s.Min = values[0]
	s.Max = values[len(values)-1]
	s.Total = floats.Sum(values)
	s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
	s.Median = stat.Quantile(0.5, stat.Empirical, values, nil)
	if s.Count == 1 {
		s.StdDev = 0
	}
	return s, nil
}

// SummarizeAll summarizes every column in column order.
func (t *Table) SummarizeAll() []Summary {
	summaries := make([]Summary, 0, len(t.columns))
	for i := range t.columns {
		s, _ := t.Summarize(i)
		summaries = append(summaries, s)
	}
	return summaries
}
