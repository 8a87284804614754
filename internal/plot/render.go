package plot

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/fitreport/internal/utils"
)

// ErrEmptySeries is returned when asked to draw a histogram of nothing.
var ErrEmptySeries = errors.New("plot: empty series")

// IOError reports an output directory or image file that could not be written.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string { return fmt.Sprintf("write plot %s: %v", e.Path, e.Err) }

func (e *IOError) Unwrap() error { return e.Err }

// Line is a vertical overlay at X, named Label in the legend.
type Line struct {
	X     float64
	Label string
}

// Options tune a single histogram rendering.
type Options struct {
	// Bins overrides the renderer's default bin count when > 0.
	Bins int
	// LogY draws bin heights on a base-10 log scale.
	LogY bool
	// Cut draws a dashed threshold line.
	Cut *Line
	// Markers draw solid lines, e.g. for a highlighted replica.
	Markers []Line
}

// Artifact names the two files written for one histogram.
type Artifact struct {
	Base       string
	VectorPath string
	RasterPath string
	Histogram  Histogram
}

// Renderer writes every histogram twice: SVG into VectorDir and PNG into
// RasterDir, under the same base name.
type Renderer struct {
	VectorDir   string
	RasterDir   string
	Width       int
	Height      int
	DefaultBins int
	// HTML, when set, also collects each histogram into an interactive page.
	HTML *HTMLPage
}

// NewRenderer returns a renderer with the default size and bin count.
func NewRenderer(vectorDir, rasterDir string) *Renderer {
	return &Renderer{VectorDir: vectorDir, RasterDir: rasterDir, Width: 800, Height: 600, DefaultBins: DefaultBins}
}

var (
	colorBars      = drawing.Color{R: 31, G: 119, B: 180, A: 255}
	colorBarsFill  = drawing.Color{R: 31, G: 119, B: 180, A: 150}
	colorPass      = drawing.Color{R: 44, G: 160, B: 44, A: 255}
	colorPassFill  = drawing.Color{R: 44, G: 160, B: 44, A: 150}
	colorFail      = drawing.Color{R: 127, G: 127, B: 127, A: 255}
	colorFailFill  = drawing.Color{R: 127, G: 127, B: 127, A: 110}
	colorCut       = drawing.Color{R: 214, G: 39, B: 40, A: 255}
	colorHighlight = drawing.Color{R: 255, G: 127, B: 14, A: 255}
)

// RenderHistogram bins series and writes base.svg and base.png.
func (r *Renderer) RenderHistogram(series []float64, title, base string, opt Options) (Artifact, error) {
	if len(series) == 0 {
		return Artifact{}, ErrEmptySeries
	}
	h := Bin(series, r.bins(opt.Bins))
	fr := newFrame(h, opt.LogY)
	bars := fr.stepSeries("replicas", h, colorBars, colorBarsFill)
	lines := fr.overlays(opt.Cut, opt.Markers)
	ch := r.chart(title, fr, append([]chart.Series{bars}, lines...), len(lines) > 0)

	art, err := r.write(base, ch)
	if err != nil {
		return Artifact{}, err
	}
	art.Histogram = h
	if r.HTML != nil {
		r.HTML.Add(title, h, opt)
	}
	return art, nil
}

// RenderCutHistogram draws series with the bins split at cut: values below in
// one color, values at or above in another, and the counts in the legend.
// A highlight with a non-empty Label is marked with a solid line.
func (r *Renderer) RenderCutHistogram(series []float64, title string, cut float64, highlight Line, base string) (Artifact, error) {
	if len(series) == 0 {
		return Artifact{}, ErrEmptySeries
	}
	all := Bin(series, r.bins(0))
	below, above := Split(series, all.Edges, cut)
	fr := newFrame(all, false)

	cutLine := &Line{X: cut, Label: "cut = " + formatTick(cut)}
	var markers []Line
	if highlight.Label != "" {
		markers = append(markers, highlight)
	}
	// the stacked outline is drawn first, the passing part over it
	stacked := fr.stepSeries(fmt.Sprintf(">= cut: %d", above.Total()), all, colorFail, colorFailFill)
	pass := fr.stepSeries(fmt.Sprintf("< cut: %d", below.Total()), below, colorPass, colorPassFill)
	drawn := []chart.Series{stacked, pass}
	drawn = append(drawn, fr.overlays(cutLine, markers)...)

	fullTitle := fmt.Sprintf("%s (%d/%d below %s)", title, below.Total(), all.Total(), formatTick(cut))
	ch := r.chart(fullTitle, fr, drawn, true)
	art, err := r.write(base, ch)
	if err != nil {
		return Artifact{}, err
	}
	art.Histogram = all
	if r.HTML != nil {
		r.HTML.AddSplit(fullTitle, below, above)
	}
	return art, nil
}

func (r *Renderer) bins(n int) int {
	switch {
	case n > 0:
		return n
	case r.DefaultBins > 0:
		return r.DefaultBins
	}
	return DefaultBins
}

func (r *Renderer) chart(title string, f frame, series []chart.Series, legend bool) chart.Chart {
	w, h := r.Width, r.Height
	if w <= 0 {
		w = 800
	}
	if h <= 0 {
		h = 600
	}
	ch := chart.Chart{
		Title:      title,
		Width:      w,
		Height:     h,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Range:          &chart.ContinuousRange{Min: f.xMin, Max: f.xMax},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return formatTick(f)
				}
				return fmt.Sprint(v)
			},
		},
		YAxis: chart.YAxis{
			Name:  "replicas",
			Range: &chart.ContinuousRange{Min: f.yMin, Max: f.yMax},
			Ticks: f.yTicks,
		},
		Series: series,
	}
	if legend {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}
	return ch
}

// write renders both formats in memory before touching the filesystem and
// removes the first file again if the second cannot be written.
func (r *Renderer) write(base string, ch chart.Chart) (Artifact, error) {
	for _, dir := range []string{r.VectorDir, r.RasterDir} {
		if err := checkWritableDir(dir); err != nil {
			return Artifact{}, err
		}
	}
	var svg, png bytes.Buffer
	if err := ch.Render(chart.SVG, &svg); err != nil {
		return Artifact{}, fmt.Errorf("render %s.svg: %w", base, err)
	}
	if err := ch.Render(chart.PNG, &png); err != nil {
		return Artifact{}, fmt.Errorf("render %s.png: %w", base, err)
	}
	art := Artifact{
		Base:       base,
		VectorPath: filepath.Join(r.VectorDir, base+".svg"),
		RasterPath: filepath.Join(r.RasterDir, base+".png"),
	}
	if err := utils.SafeWriteFile(art.VectorPath, svg.Bytes()); err != nil {
		return Artifact{}, &IOError{Path: art.VectorPath, Err: err}
	}
	if err := utils.SafeWriteFile(art.RasterPath, png.Bytes()); err != nil {
		_ = os.Remove(art.VectorPath)
		return Artifact{}, &IOError{Path: art.RasterPath, Err: err}
	}
	return art, nil
}

func checkWritableDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return &IOError{Path: dir, Err: err}
	}
	if !info.IsDir() {
		return &IOError{Path: dir, Err: errors.New("not a directory")}
	}
	f, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return &IOError{Path: dir, Err: err}
	}
	name := f.Name()
	f.Close()
	if err := os.Remove(name); err != nil {
		return &IOError{Path: dir, Err: err}
	}
	return nil
}

// frame holds the axis geometry shared by all series of one chart.
type frame struct {
	log        bool
	xMin, xMax float64
	yMin, yMax float64
	yTicks     []chart.Tick
}

// logFloor is where empty bins sit on a log axis, half a decade under one count.
const logFloor = -0.5

func newFrame(h Histogram, logY bool) frame {
	f := frame{log: logY, xMin: h.Edges[0], xMax: h.Edges[len(h.Edges)-1]}
	peak := h.MaxCount()
	if logY {
		top := math.Ceil(math.Log10(math.Max(float64(peak), 1)))
		if top < 1 {
			top = 1
		}
		f.yMin, f.yMax = logFloor, top+0.2
		for k := 0.0; k <= top; k++ {
			f.yTicks = append(f.yTicks, chart.Tick{Value: k, Label: strconv.FormatFloat(math.Pow(10, k), 'f', 0, 64)})
		}
		return f
	}
	step := 1
	for peak/step > 8 {
		step *= 2
	}
	f.yMin = 0
	f.yMax = float64(peak) * 1.1
	if f.yMax < 1 {
		f.yMax = 1
	}
	for v := 0; float64(v) <= f.yMax; v += step {
		f.yTicks = append(f.yTicks, chart.Tick{Value: float64(v), Label: strconv.Itoa(v)})
	}
	return f
}

func (f frame) y(count int) float64 {
	if !f.log {
		return float64(count)
	}
	if count <= 0 {
		return logFloor
	}
	return math.Log10(float64(count))
}

// stepSeries outlines the histogram as a closed staircase so the fill covers each bar.
func (f frame) stepSeries(name string, h Histogram, stroke, fill drawing.Color) chart.ContinuousSeries {
	n := len(h.Counts)
	xs := make([]float64, 0, 2*n+2)
	ys := make([]float64, 0, 2*n+2)
	base := f.y(0)
	xs = append(xs, h.Edges[0])
	ys = append(ys, base)
	for i, c := range h.Counts {
		y := f.y(c)
		xs = append(xs, h.Edges[i], h.Edges[i+1])
		ys = append(ys, y, y)
	}
	xs = append(xs, h.Edges[n])
	ys = append(ys, base)
	return chart.ContinuousSeries{
		Name:    name,
		XValues: xs,
		YValues: ys,
		Style:   chart.Style{StrokeColor: stroke, StrokeWidth: 1.5, FillColor: fill},
	}
}

// overlays turns the cut and markers into vertical line series, widening the
// x range so every line is visible.
func (f *frame) overlays(cut *Line, markers []Line) []chart.Series {
	var out []chart.Series
	add := func(l Line, style chart.Style) {
		f.xMin = math.Min(f.xMin, l.X)
		f.xMax = math.Max(f.xMax, l.X)
		out = append(out, chart.ContinuousSeries{
			Name:    l.Label,
			XValues: []float64{l.X, l.X},
			YValues: []float64{f.yMin, f.yMax},
			Style:   style,
		})
	}
	if cut != nil {
		add(*cut, chart.Style{StrokeColor: colorCut, StrokeWidth: 2, StrokeDashArray: []float64{6, 4}})
	}
	for _, m := range markers {
		add(m, chart.Style{StrokeColor: colorHighlight, StrokeWidth: 2})
	}
	return out
}

func formatTick(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}
