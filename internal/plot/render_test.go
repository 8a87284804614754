package plot

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	root := t.TempDir()
	vec, ras := filepath.Join(root, "plots"), filepath.Join(root, "pngplots")
	require.NoError(t, os.Mkdir(vec, 0o755))
	require.NoError(t, os.Mkdir(ras, 0o755))
	r := NewRenderer(vec, ras)
	r.Width, r.Height = 400, 300
	return r
}

func TestRenderHistogramWritesBothFormats(t *testing.T) {
	r := newTestRenderer(t)
	art, err := r.RenderHistogram([]float64{1, 2, 2, 3, 5}, "GlobalErrorFunction", "GlobalErrorFunction", Options{
		Cut: &Line{X: 4, Label: "cutoff"},
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(r.VectorDir, "GlobalErrorFunction.svg"), art.VectorPath)
	assert.Equal(t, filepath.Join(r.RasterDir, "GlobalErrorFunction.png"), art.RasterPath)
	assert.Equal(t, 5, art.Histogram.Total())

	svg, err := os.ReadFile(art.VectorPath)
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")
	png, err := os.ReadFile(art.RasterPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestRenderHistogramIdempotentBins(t *testing.T) {
	r := newTestRenderer(t)
	series := []float64{0.1, 0.4, 0.4, 0.9, 1.2, 1.2, 1.2}
	first, err := r.RenderHistogram(series, "p", "p", Options{})
	require.NoError(t, err)
	second, err := r.RenderHistogram(series, "p", "p", Options{})
	require.NoError(t, err)
	assert.Equal(t, first.Histogram, second.Histogram)
}

func TestRenderHistogramLogVariant(t *testing.T) {
	r := newTestRenderer(t)
	art, err := r.RenderHistogram([]float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 50}, "$N_1$", VariantLog.BaseName("$N_1$"), Options{LogY: true})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(r.VectorDir, "Log_$N_1$.svg"))
	assert.FileExists(t, filepath.Join(r.RasterDir, "Log_$N_1$.png"))
	assert.Equal(t, 12, art.Histogram.Total())
}

func TestRenderCutHistogram(t *testing.T) {
	r := newTestRenderer(t)
	art, err := r.RenderCutHistogram([]float64{0.8, 1.1, 1.4, 1.6, 2.5}, "CutGlobalchi2", 1.5, Line{X: 0.8, Label: "replica_3"}, "CutGlobalchi2")
	require.NoError(t, err)
	assert.Equal(t, 5, art.Histogram.Total())
	assert.FileExists(t, art.VectorPath)
	assert.FileExists(t, art.RasterPath)
}

func TestRenderEmptySeries(t *testing.T) {
	r := newTestRenderer(t)
	_, err := r.RenderHistogram(nil, "x", "x", Options{})
	assert.ErrorIs(t, err, ErrEmptySeries)
	_, err = r.RenderCutHistogram([]float64{}, "x", 1, Line{}, "x")
	assert.ErrorIs(t, err, ErrEmptySeries)

	entries, err := os.ReadDir(r.VectorDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRenderMissingDirectory(t *testing.T) {
	r := newTestRenderer(t)
	r.RasterDir = filepath.Join(t.TempDir(), "absent")
	_, err := r.RenderHistogram([]float64{1, 2}, "x", "x", Options{})
	var ioe *IOError
	require.ErrorAs(t, err, &ioe)
	assert.Equal(t, r.RasterDir, ioe.Path)
	assert.NoFileExists(t, filepath.Join(r.VectorDir, "x.svg"))
}

func TestRenderDirectoryIsFile(t *testing.T) {
	r := newTestRenderer(t)
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	r.VectorDir = file
	_, err := r.RenderHistogram([]float64{1}, "x", "x", Options{})
	var ioe *IOError
	require.ErrorAs(t, err, &ioe)
}

func TestHTMLPageCollectsCharts(t *testing.T) {
	r := newTestRenderer(t)
	r.HTML = NewHTMLPage("Histograms")
	_, err := r.RenderHistogram([]float64{1, 2, 3}, "GlobalErrorFunction", "GlobalErrorFunction", Options{})
	require.NoError(t, err)
	_, err = r.RenderHistogram([]float64{1, 2, 30}, "$N_1$", "Log_$N_1$", Options{LogY: true})
	require.NoError(t, err)
	_, err = r.RenderCutHistogram([]float64{1, 2, 3}, "CutGlobalchi2", 1.5, Line{}, "CutGlobalchi2")
	require.NoError(t, err)
	assert.Equal(t, 3, r.HTML.Len())

	var buf bytes.Buffer
	require.NoError(t, r.HTML.Render(&buf))
	out := buf.String()
	assert.True(t, strings.Contains(out, "<html"), "expected an html document")
	assert.Contains(t, out, "GlobalErrorFunction")
	assert.Contains(t, out, "Histograms")
}
