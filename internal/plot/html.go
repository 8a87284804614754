package plot

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const htmlChartHeight = "420px"

// HTMLPage collects histograms as interactive bar charts on one page.
type HTMLPage struct {
	title  string
	charts []components.Charter
}

// NewHTMLPage starts an empty page.
func NewHTMLPage(title string) *HTMLPage {
	return &HTMLPage{title: title}
}

// Len returns the number of charts added so far.
func (p *HTMLPage) Len() int { return len(p.charts) }

// Add appends h as a bar chart. A log variant gets a log value axis.
func (p *HTMLPage) Add(title string, h Histogram, opt Options) {
	bar := newBar(title, h)
	if opt.LogY {
		bar.SetGlobalOptions(charts.WithYAxisOpts(opts.YAxis{Type: "log", Name: "replicas"}))
	}
	bar.AddSeries("replicas", barData(h.Counts, opt.LogY))
	p.charts = append(p.charts, bar)
}

// AddSplit appends below and above stacked in each bin.
func (p *HTMLPage) AddSplit(title string, below, above Histogram) {
	bar := newBar(title, below)
	bar.SetGlobalOptions(charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}))
	bar.AddSeries("below cut", barData(below.Counts, false),
		charts.WithBarChartOpts(opts.BarChart{Stack: "total"}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#2ca02c"}))
	bar.AddSeries("at or above cut", barData(above.Counts, false),
		charts.WithBarChartOpts(opts.BarChart{Stack: "total"}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#7f7f7f"}))
	p.charts = append(p.charts, bar)
}

// Render writes the page as a self-contained HTML document.
func (p *HTMLPage) Render(w io.Writer) error {
	page := components.NewPage()
	page.PageTitle = p.title
	page.AddCharts(p.charts...)
	return page.Render(w)
}

func newBar(title string, h Histogram) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: htmlChartHeight}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "replicas"}),
	)
	bar.SetXAxis(binLabels(h))
	return bar
}

func binLabels(h Histogram) []string {
	labels := make([]string, len(h.Counts))
	for i := range h.Counts {
		labels[i] = formatTick(h.Edges[i]) + " to " + formatTick(h.Edges[i+1])
	}
	return labels
}

// barData leaves empty bins out of log charts since log(0) is undefined.
func barData(counts []int, logY bool) []opts.BarData {
	out := make([]opts.BarData, len(counts))
	for i, c := range counts {
		if logY && c == 0 {
			out[i] = opts.BarData{Value: "-"}
			continue
		}
		out[i] = opts.BarData{Value: c}
	}
	return out
}
