package plot

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinCountsEveryFiniteValue(t *testing.T) {
	values := []float64{0, 0.5, 1, 1.5, 2, 2.5, 3, 3.5, 4, 10}
	h := Bin(values, 5)
	require.Len(t, h.Edges, 6)
	require.Len(t, h.Counts, 5)
	assert.Equal(t, 0.0, h.Edges[0])
	assert.Equal(t, 10.0, h.Edges[5])
	assert.Equal(t, len(values), h.Total())
	assert.Equal(t, []int{4, 4, 1, 0, 1}, h.Counts)
	assert.Equal(t, 4, h.MaxCount())
}

func TestBinMaxLandsInLastBin(t *testing.T) {
	h := Bin([]float64{1, 2, 3}, 2)
	assert.Equal(t, []int{1, 2}, h.Counts)
}

func TestBinSkipsNonFinite(t *testing.T) {
	h := Bin([]float64{1, math.NaN(), 2, math.Inf(1), math.Inf(-1)}, 4)
	assert.Equal(t, 2, h.Total())
	assert.Equal(t, 3, h.Skipped)
	assert.Equal(t, 1.0, h.Edges[0])
	assert.Equal(t, 2.0, h.Edges[4])
}

func TestBinDegenerateRange(t *testing.T) {
	h := Bin([]float64{3, 3, 3}, 4)
	assert.Less(t, h.Edges[0], 3.0)
	assert.Greater(t, h.Edges[4], 3.0)
	assert.Equal(t, 3, h.Total())

	zero := Bin([]float64{0}, 0)
	assert.Len(t, zero.Counts, DefaultBins)
	assert.Equal(t, -0.5, zero.Edges[0])
	assert.Equal(t, 0.5, zero.Edges[DefaultBins])
	assert.Equal(t, 1, zero.Total())

	none := Bin(nil, 3)
	assert.Equal(t, 0, none.Total())
	assert.Len(t, none.Edges, 4)
}

func TestSplitSharesEdges(t *testing.T) {
	values := []float64{0.2, 0.9, 1.4, 1.5, 1.6, 3}
	all := Bin(values, 6)
	below, above := Split(values, all.Edges, 1.5)
	assert.Equal(t, all.Edges, below.Edges)
	assert.Equal(t, all.Edges, above.Edges)
	assert.Equal(t, 3, below.Total())
	assert.Equal(t, 3, above.Total())
	for i := range all.Counts {
		assert.Equal(t, all.Counts[i], below.Counts[i]+above.Counts[i], "bin %d", i)
	}
}

func TestVariants(t *testing.T) {
	v := DefaultVariants()
	assert.Equal(t, []Variant{VariantLinear, VariantLog}, v.For("$N_1$"))
	assert.Equal(t, []Variant{VariantLinear}, v.For("$g_2$"))
	assert.Equal(t, "Log_$N_1$", VariantLog.BaseName("$N_1$"))
	assert.Equal(t, "$N_1$", VariantLinear.BaseName("$N_1$"))

	got, err := ParseVariant("log")
	require.NoError(t, err)
	assert.Equal(t, VariantLog, got)
	_, err = ParseVariant("sqrt")
	assert.Error(t, err)
}

func TestBinExtremeFiniteRanges(t *testing.T) {
	cases := map[string][]float64{
		"near max float":   {-1e308, 1e308},
		"subnormal spread": {0, 5e-324},
		"one ulp apart":    {1, math.Nextafter(1, 2)},
		"max float only":   {math.MaxFloat64, math.MaxFloat64},
	}
	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			var h Histogram
			require.NotPanics(t, func() { h = Bin(values, 20) })
			require.Len(t, h.Edges, 21)
			for i, e := range h.Edges {
				assert.False(t, math.IsNaN(e) || math.IsInf(e, 0), "edge %d = %v", i, e)
				if i > 0 {
					assert.LessOrEqual(t, h.Edges[i-1], e, "edges not ascending at %d", i)
				}
			}
			assert.Equal(t, len(values), h.Total())
			assert.Equal(t, 0, h.Skipped)
		})
	}
}

func TestBinEdgesClampsToRange(t *testing.T) {
	h := BinEdges([]float64{0, 1, 2, 3, -1, 4}, []float64{0, 1, 2, 3})
	assert.Equal(t, []int{1, 1, 2}, h.Counts)
	assert.Equal(t, 2, h.Skipped)
}
