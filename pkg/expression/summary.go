package expression

import (
	"math"

	stats "github.com/dgryski/go-onlinestats"

	"github.com/Sternrassler/hepatodb-client/pkg/record"
)

// Summary describes a set of TPM values.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Stddev float64 `json:"stddev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Level  Level   `json:"level"`
}

// Summarize computes running statistics over values. The Level is that of the
// mean. NaN and infinite values are skipped; an input without finite values
// yields a zero Summary.
func Summarize(values []float64) Summary {
	r := stats.NewRunning()
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		r.Push(v)
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	if r.Len() == 0 {
		return Summary{}
	}

	s := Summary{
		Count: r.Len(),
		Mean:  r.Mean(),
		Min:   lo,
		Max:   hi,
	}
	if s.Count > 1 {
		s.Stddev = r.Stddev()
	}
	s.Level = Classify(s.Mean)
	return s
}

// SummarizeField collects the numeric values of field across records and
// summarizes them. Absent and non-numeric values are skipped.
func SummarizeField(records []record.Record, field string) Summary {
	values := make([]float64, 0, len(records))
	for _, r := range records {
		if f, ok := r.Get(field).Float64(); ok {
			values = append(values, f)
		}
	}
	return Summarize(values)
}
