package plot

import (
	"math"
	"sort"
)

// DefaultBins is the bin count used when a caller does not ask for one.
const DefaultBins = 20

// Histogram is an equal-width binning of a series. len(Edges) == len(Counts)+1.
type Histogram struct {
	Edges  []float64
	Counts []int
	// Skipped counts NaN and infinite values left out of the binning.
	Skipped int
}

// Total returns the number of binned values.
func (h Histogram) Total() int {
	n := 0
	for _, c := range h.Counts {
		n += c
	}
	return n
}

// MaxCount returns the tallest bin.
func (h Histogram) MaxCount() int {
	m := 0
	for _, c := range h.Counts {
		if c > m {
			m = c
		}
	}
	return m
}

// Bin sorts values into bins equal-width bins spanning [min, max]. The maximum
// value lands in the last bin. A zero-width range is widened around the value.
func Bin(values []float64, bins int) Histogram {
	if bins <= 0 {
		bins = DefaultBins
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	switch {
	case lo > hi:
		lo, hi = -0.5, 0.5
	case lo == hi:
		lo, hi = widen(lo)
	}
	// dividing before subtracting keeps the width finite for ranges near MaxFloat64
	width := hi/float64(bins) - lo/float64(bins)
	if width <= 0 {
		// range below float resolution once divided into bins
		lo, hi = widen(lo/2 + hi/2)
		width = hi/float64(bins) - lo/float64(bins)
	}
	edges := make([]float64, bins+1)
	for i := range edges {
		edges[i] = math.Min(lo+float64(i)*width, hi)
	}
	edges[bins] = hi
	return BinEdges(values, edges)
}

// smallestNormal is the smallest positive normal float64.
const smallestNormal = 0x1p-1022

// widen returns a non-empty range around v, staying finite.
func widen(v float64) (lo, hi float64) {
	pad := math.Abs(v) * 0.05
	if pad < smallestNormal {
		pad = 0.5
	}
	lo, hi = v-pad, v+pad
	if math.IsInf(lo, 0) {
		lo = -math.MaxFloat64
	}
	if math.IsInf(hi, 0) {
		hi = math.MaxFloat64
	}
	return lo, hi
}

// BinEdges counts values into the bins delimited by the ascending edges. A
// value equal to an inner edge goes to the bin above it, the last edge belongs
// to the last bin. Values outside the edges are skipped.
func BinEdges(values []float64, edges []float64) Histogram {
	h := Histogram{Edges: edges, Counts: make([]int, len(edges)-1)}
	n := len(h.Counts)
	lo, hi := edges[0], edges[n]
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < lo || v > hi {
			h.Skipped++
			continue
		}
		i := sort.Search(len(edges), func(j int) bool { return edges[j] > v }) - 1
		h.Counts[min(max(i, 0), n-1)]++
	}
	return h
}

// Split partitions values at cut: below holds values < cut, above the rest.
// Both histograms share edges.
func Split(values []float64, edges []float64, cut float64) (below, above Histogram) {
	var lo, hi []float64
	for _, v := range values {
		if v < cut {
			lo = append(lo, v)
		} else {
			hi = append(hi, v)
		}
	}
	return BinEdges(lo, edges), BinEdges(hi, edges)
}
