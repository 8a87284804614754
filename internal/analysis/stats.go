package analysis

import (
	"math"
	"sort"
)

// Summary captures distribution statistics of a numeric series.
type Summary struct {
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	Std    float64 // sample standard deviation; 0 for a single value
	Median float64
	MAD    float64 // median absolute deviation
	// Lower/Upper bound the central 68% of values (16th and 84th percentiles).
	Lower float64
	Upper float64

	// Skipped counts NaN and infinite values left out.
	Skipped int
}

// Summarize computes a Summary over the finite values; NaN and infinities are
// counted in Skipped. The input is not modified.
func Summarize(values []float64) (Summary, error) {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	skipped := len(values) - len(finite)
	if len(finite) == 0 {
		return Summary{Skipped: skipped}, &EmptyInputError{Op: "summarize"}
	}
	sort.Float64s(finite)
	s := Summary{Count: len(finite), Skipped: skipped, Min: finite[0], Max: finite[len(finite)-1]}
	// Welford
	var mean, m2 float64
	for i, v := range finite {
		d := v - mean
		mean += d / float64(i+1)
		m2 += d * (v - mean)
	}
	s.Mean = mean
	if len(finite) > 1 {
		s.Std = math.Sqrt(m2 / float64(len(finite)-1))
	}
	s.Lower = quantile(finite, 0.16)
	s.Upper = quantile(finite, 0.84)
	s.Median, s.MAD = medianMAD(finite)
	return s, nil
}

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
