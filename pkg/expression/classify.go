// Package expression classifies transcript abundance (TPM) values into the
// six display buckets used by the dashboard.
package expression

import (
	"errors"
	"math"

	"github.com/Sternrassler/hepatodb-client/pkg/record"
)

// ErrNotNumeric is returned by ClassifyValue for absent or non-numeric values.
var ErrNotNumeric = errors.New("value is not numeric")

// Level is one expression bucket.
type Level struct {
	Label          string `json:"label"`
	Interpretation string `json:"interpretation"`
}

// Buckets, lowest first. Lower bounds are inclusive, upper bounds exclusive.
var (
	VeryLow = Level{
		Label:          "Very Low / Noise",
		Interpretation: "The gene is essentially not expressed and the signal is indistinguishable from background noise.",
	}
	Low = Level{
		Label:          "Low Expression",
		Interpretation: "The gene is expressed at a low level, typical of tightly regulated or cell-type specific transcripts.",
	}
	Moderate = Level{
		Label:          "Moderate Expression",
		Interpretation: "The gene is actively transcribed at a level common to many housekeeping and signalling genes.",
	}
	High = Level{
		Label:          "High Expression",
		Interpretation: "The gene is strongly expressed and likely plays an important role in this tissue.",
	}
	VeryHigh = Level{
		Label:          "Very High Expression",
		Interpretation: "The gene is among the most abundant transcripts and is characteristic of the tissue's function.",
	}
	ExtremelyHigh = Level{
		Label:          "Extremely High Expression",
		Interpretation: "The gene dominates the transcriptome, as seen for major secreted proteins such as albumin in liver.",
	}
)

// Levels lists every bucket in ascending order.
var Levels = []Level{VeryLow, Low, Moderate, High, VeryHigh, ExtremelyHigh}

// Classify returns the bucket for a TPM value. NaN carries no signal and
// is treated as noise.
func Classify(v float64) Level {
	switch {
	case math.IsNaN(v), v < 0.1:
		return VeryLow
	case v < 1:
		return Low
	case v < 10:
		return Moderate
	case v < 100:
		return High
	case v < 1000:
		return VeryHigh
	default:
		return ExtremelyHigh
	}
}

// ClassifyValue classifies a record field, accepting numbers and numeric
// strings.
func ClassifyValue(v record.Value) (Level, error) {
	f, ok := v.Float64()
	if !ok {
		return Level{}, ErrNotNumeric
	}
	return Classify(f), nil
}
