package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/KaramelBytes/fitreport/internal/analysis"
	"github.com/KaramelBytes/fitreport/internal/plot"
	"github.com/KaramelBytes/fitreport/internal/results"
	"github.com/KaramelBytes/fitreport/internal/utils"
	"github.com/KaramelBytes/fitreport/internal/workspace"
)

// HTMLFileName is the interactive histogram page written when enabled.
const HTMLFileName = "histograms.html"

// Options configure one report run.
type Options struct {
	FitDir            string
	ReportDir         string
	ReportFile        string
	ReplicasConfigDir string
	TablesDir         string
	DataDir           string
	ResultFile        string
	CentralReplica    string
	Description       string

	// Cutoff and Chi2Cut fall back to analysis.DefaultCutoff and
	// analysis.DefaultChi2Cut when zero.
	Cutoff  float64
	Chi2Cut float64

	Bins     int
	Width    int
	Height   int
	Variants plot.Variants
	HTML     bool

	// KeepPartial leaves the report folder in place when the run fails.
	KeepPartial bool

	Logger *slog.Logger
}

// Result summarizes a finished run.
type Result struct {
	ReportPath     string
	HTMLPath       string
	Workspace      *workspace.Workspace
	Manifest       *workspace.Manifest
	Replicas       []string
	Selection      analysis.Selection
	CentralChi2    float64
	MinChi2        float64
	MinChi2Replica string
	Artifacts      []plot.Artifact
	Bytes          int
}

func (o *Options) defaults() {
	if o.ReportDir == "" {
		o.ReportDir = "FinalReport"
	}
	if o.ReportFile == "" {
		o.ReportFile = "FReport.md"
	}
	if o.ReplicasConfigDir == "" {
		o.ReplicasConfigDir = "RRconfig_ceres"
	}
	if o.TablesDir == "" {
		o.TablesDir = "tables"
	}
	if o.DataDir == "" {
		o.DataDir = "data"
	}
	if o.ResultFile == "" {
		o.ResultFile = results.ReportFileName
	}
	if o.CentralReplica == "" {
		o.CentralReplica = "replica_0"
	}
	if o.Cutoff == 0 {
		o.Cutoff = analysis.DefaultCutoff
	}
	if o.Chi2Cut == 0 {
		o.Chi2Cut = analysis.DefaultChi2Cut
	}
	if o.Variants == nil {
		o.Variants = plot.DefaultVariants()
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
}

type run struct {
	opt     Options
	log     *slog.Logger
	doc     Document
	ws      *workspace.Workspace
	render  *plot.Renderer
	res     *Result
	central results.Record
}

// Generate reads the fit in opt.FitDir and writes the Markdown report, its
// plots and a run manifest into opt.FitDir/opt.ReportDir. Any error aborts the
// run; the report folder is removed again unless KeepPartial is set.
func Generate(opt Options) (res *Result, err error) {
	opt.defaults()
	r := &run{opt: opt, log: opt.Logger, res: &Result{}}

	tablesPath := filepath.Join(opt.FitDir, opt.TablesDir, "config.yaml")
	tables, err := results.LoadTablesConfig(tablesPath)
	if err != nil {
		return nil, fmt.Errorf("tables configuration: %w", err)
	}
	r.log.Debug("loaded tables configuration", "path", tablesPath)

	cfgDir := filepath.Join(opt.FitDir, opt.ReplicasConfigDir)
	centralCfg, err := results.LoadFitConfig(results.FitConfigPath(cfgDir, opt.CentralReplica), opt.CentralReplica)
	if err != nil {
		return nil, fmt.Errorf("central replica configuration: %w", err)
	}

	ws, err := workspace.Create(opt.FitDir, opt.ReportDir)
	if err != nil {
		return nil, err
	}
	r.ws = ws
	r.res.Workspace = ws
	r.log.Info("created report folder", "dir", ws.Dir)
	defer func() {
		if err == nil || opt.KeepPartial {
			return
		}
		if derr := ws.Discard(); derr != nil {
			r.log.Warn("could not clean up report folder", "dir", ws.Dir, "err", derr)
		}
	}()

	excluded := map[string]struct{}{
		opt.TablesDir:         {},
		opt.DataDir:           {},
		opt.ReplicasConfigDir: {},
		opt.ReportDir:         {},
	}
	listed, err := results.ListReplicaFolders(opt.FitDir, excluded)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(listed))
	for _, id := range listed {
		if workspace.IsReport(filepath.Join(opt.FitDir, id)) {
			r.log.Debug("skipping earlier report folder", "dir", id)
			continue
		}
		ids = append(ids, id)
	}
	r.res.Replicas = ids
	records, err := r.loadRecords(ids)
	if err != nil {
		return nil, err
	}

	sel := analysis.SelectGood(records, opt.Cutoff)
	r.res.Selection = sel
	r.log.Info("selected good replicas", "good", len(sel.IDs), "total", sel.Candidates, "cutoff", opt.Cutoff)

	if r.central, err = r.centralRecord(records); err != nil {
		return nil, err
	}
	if r.res.CentralChi2, err = analysis.GlobalChi2(r.central); err != nil {
		return nil, fmt.Errorf("central replica: %w", err)
	}
	// listing order is arbitrary; minimum ties go to the first good replica listed
	if r.res.MinChi2, r.res.MinChi2Replica, err = analysis.FindMinimum(sel.Records, analysis.GlobalChi2); err != nil {
		return nil, fmt.Errorf("minimum global chi2: %w", err)
	}
	r.log.Info("minimum global chi2", "value", r.res.MinChi2, "replica", r.res.MinChi2Replica)

	r.writeOverview(tables, centralCfg)
	if err := r.writeMinimum(cfgDir, records); err != nil {
		return nil, err
	}

	r.render = plot.NewRenderer(ws.VectorDir(), ws.RasterDir())
	r.render.Width, r.render.Height, r.render.DefaultBins = opt.Width, opt.Height, opt.Bins
	if opt.HTML {
		r.render.HTML = plot.NewHTMLPage("Fit report histograms")
	}
	if err := r.globalPlots(sel); err != nil {
		return nil, err
	}
	if err := r.parameterPlots(sel); err != nil {
		return nil, err
	}

	r.res.ReportPath = ws.Path(opt.ReportFile)
	out := r.doc.Bytes()
	if err := utils.SafeWriteFile(r.res.ReportPath, out); err != nil {
		return nil, &plot.IOError{Path: r.res.ReportPath, Err: err}
	}
	r.res.Bytes = len(out)

	if opt.HTML {
		var buf bytes.Buffer
		if err := r.render.HTML.Render(&buf); err != nil {
			return nil, fmt.Errorf("render html page: %w", err)
		}
		r.res.HTMLPath = ws.Path(HTMLFileName)
		if err := utils.SafeWriteFile(r.res.HTMLPath, buf.Bytes()); err != nil {
			return nil, &plot.IOError{Path: r.res.HTMLPath, Err: err}
		}
	}

	if err := r.saveManifest(); err != nil {
		return nil, err
	}
	return r.res, nil
}

func (r *run) loadRecords(ids []string) ([]results.Record, error) {
	records := make([]results.Record, 0, len(ids))
	for _, id := range ids {
		rec, err := results.LoadReplicaFile(filepath.Join(r.opt.FitDir, id, r.opt.ResultFile), id)
		if err != nil {
			return nil, err
		}
		r.log.Debug("loaded replica", "id", id, "status", rec.Status, "gef", rec.GlobalErrorFunction)
		records = append(records, rec)
	}
	return records, nil
}

func (r *run) centralRecord(records []results.Record) (results.Record, error) {
	for _, rec := range records {
		if rec.ID == r.opt.CentralReplica {
			return rec, nil
		}
	}
	return results.LoadReplicaFile(filepath.Join(r.opt.FitDir, r.opt.CentralReplica, r.opt.ResultFile), r.opt.CentralReplica)
}

func (r *run) writeOverview(tables *results.TablesConfig, cfg *results.FitConfig) {
	d := &r.doc
	d.Heading(1, "Final report of the fit")
	d.Paragraph("__The final $\\chi^2$ is:__ %s", Code(formatFloat(r.res.CentralChi2)))

	desc := r.opt.Description
	if desc == "" {
		desc = cfg.Description
	}
	d.Paragraph("Description of the fit: %s", desc)
	d.Paragraph("This report is related to the output of the fit in the folder: %s", Code(r.opt.FitDir))
	d.Paragraph("The collinear __PDF set__ used for the generation of the tables is: %s", Code(tables.PDFSet.Name))
	d.Paragraph("The __perturbative order__ is: %s", Code(PerturbativeOrderName(tables.PerturbativeOrder)))
	d.Paragraph("The number of __replicas__ that __converged__ with global error function below %s is: %s out of %d",
		formatFloat(r.opt.Cutoff), Code(strconv.Itoa(len(r.res.Selection.IDs))), r.res.Selection.Candidates)

	d.Table(
		[]string{"Minimiser", "Seed", "qToQmax", "t0prescription", "Parameterisation"},
		[][]string{{cfg.Minimiser, strconv.FormatInt(cfg.Seed, 10), formatFloat(cfg.QToQmax), strconv.FormatBool(cfg.T0Prescription), cfg.Parameterisation}},
	)

	d.Heading(3, "Parameters")
	d.Heading(4, "T0 parameters")
	if len(cfg.T0Parameters) > 0 {
		header := make([]string, len(cfg.T0Parameters))
		row := make([]string, len(cfg.T0Parameters))
		for i, v := range cfg.T0Parameters {
			header[i] = Roman(i + 1)
			row[i] = formatFloat(v)
		}
		d.Table(header, [][]string{row})
	}
	d.Block("t0 parameters = " + formatList(cfg.T0Parameters))

	d.Paragraph("The __initial parameters__ of the fit for the central replica (__%s__) are:", r.opt.CentralReplica)
	initialTable(d, cfg)
	d.Paragraph("The __final parameters__ of the fit for the central replica (__%s__) are:", r.opt.CentralReplica)
	finalTable(d, r.central)
}

func (r *run) writeMinimum(cfgDir string, records []results.Record) error {
	d := &r.doc
	d.Paragraph("The minimum global chi2 is: %s (%s)", Code(formatFloat(r.res.MinChi2)), r.res.MinChi2Replica)
	if r.res.MinChi2Replica == r.central.ID {
		return nil
	}
	minCfg, err := results.LoadFitConfig(results.FitConfigPath(cfgDir, r.res.MinChi2Replica), r.res.MinChi2Replica)
	if err != nil {
		return fmt.Errorf("minimum chi2 replica configuration: %w", err)
	}
	d.Paragraph("The __initial parameters__ of the fit for the replica with the __minimum__ chisquare are:")
	initialTable(d, minCfg)
	for _, rec := range records {
		if rec.ID == r.res.MinChi2Replica {
			d.Paragraph("The __final parameters__ of the fit for the replica with the __minimum__ chisquare are:")
			finalTable(d, rec)
			return nil
		}
	}
	return errors.New("minimum chi2 replica missing from loaded records")
}

func initialTable(d *Document, cfg *results.FitConfig) {
	rows := make([][]string, len(cfg.Parameters))
	for i, p := range cfg.Parameters {
		rows[i] = []string{LatexName(p.Name), formatFloat(p.StartingValue), formatFloat(p.Step), strconv.FormatBool(p.Fix)}
	}
	d.Table([]string{"name", "starting value", "step", "fix"}, rows)
}

func finalTable(d *Document, rec results.Record) {
	rows := make([][]string, len(rec.Parameters))
	for i, p := range rec.Parameters {
		rows[i] = []string{p.Name, formatFloat(p.Value)}
	}
	d.Table([]string{"name", "value"}, rows)
}

func (r *run) globalPlots(sel analysis.Selection) error {
	gef, err := analysis.CollectSeries(sel.Records, analysis.GlobalErrorFunction)
	if err != nil {
		return err
	}
	chi2, err := analysis.CollectSeries(sel.Records, analysis.GlobalChi2)
	if err != nil {
		return err
	}
	cut := &plot.Line{X: r.opt.Cutoff, Label: "cutoff = " + formatFloat(r.opt.Cutoff)}
	if err := r.histogram(gef, "Global error function", "GlobalErrorFunction", plot.Options{Cut: cut}); err != nil {
		return err
	}
	if err := r.histogram(chi2, "Global chi2", "Globalchi2", plot.Options{}); err != nil {
		return err
	}
	art, err := r.render.RenderCutHistogram(chi2, "Global chi2", r.opt.Chi2Cut,
		plot.Line{X: r.res.MinChi2, Label: r.res.MinChi2Replica}, "CutGlobalchi2")
	if err != nil {
		return fmt.Errorf("plot CutGlobalchi2: %w", err)
	}
	r.res.Artifacts = append(r.res.Artifacts, art)

	r.doc.Figure(rasterRef("GlobalErrorFunction"), "Global Error functions")
	r.doc.Figure(rasterRef("Globalchi2"), "Global chi2")
	r.doc.Figure(rasterRef("CutGlobalchi2"), "Cut Global chi2")
	return nil
}

func (r *run) parameterPlots(sel analysis.Selection) error {
	d := &r.doc
	names := r.central.ParameterNames()
	var minRec results.Record
	for _, rec := range sel.Records {
		if rec.ID == r.res.MinChi2Replica {
			minRec = rec
			break
		}
	}

	summaries := make([][]string, 0, len(names))
	files := make(map[string]string, len(names))
	d.Heading(3, "Histograms of the final values of the parameters")
	for _, name := range names {
		ps, err := analysis.CollectParameterSeries(sel.Records, name)
		if err != nil {
			return err
		}
		if prev, ok := files[ps.FileName]; ok {
			return fmt.Errorf("parameters %q and %q share the plot file name %q", prev, name, ps.FileName)
		}
		files[ps.FileName] = name
		var markers []plot.Line
		if v, ok := minRec.Parameter(name); ok {
			markers = append(markers, plot.Line{X: v, Label: r.res.MinChi2Replica})
		}
		for _, v := range r.opt.Variants.For(name) {
			base := v.BaseName(ps.FileName)
			if err := r.histogram(ps.Values, name, base, plot.Options{LogY: v == plot.VariantLog, Markers: markers}); err != nil {
				return err
			}
			d.Figure(rasterRef(base), name)
		}
		s, err := analysis.Summarize(ps.Values)
		if err != nil {
			return fmt.Errorf("summarize %s: %w", name, err)
		}
		if s.Skipped > 0 {
			r.log.Warn("non-finite values left out of the summary", "parameter", name, "skipped", s.Skipped)
		}
		summaries = append(summaries, []string{
			name, strconv.Itoa(s.Count), fmt.Sprintf("%.4g", s.Mean), fmt.Sprintf("%.4g", s.Std),
			fmt.Sprintf("%.4g", s.Median), fmt.Sprintf("%.4g", s.Lower), fmt.Sprintf("%.4g", s.Upper),
			fmt.Sprintf("%.4g", s.Min), fmt.Sprintf("%.4g", s.Max),
		})
	}

	if len(summaries) > 0 {
		d.Heading(3, "Summary of the parameters over the good replicas")
		d.Table([]string{"name", "n", "mean", "std", "median", "16%", "84%", "min", "max"}, summaries)
	}
	return nil
}

func (r *run) histogram(series []float64, title, base string, opt plot.Options) error {
	art, err := r.render.RenderHistogram(series, title, base, opt)
	if err != nil {
		return fmt.Errorf("plot %s: %w", base, err)
	}
	r.log.Debug("rendered histogram", "base", base, "values", len(series), "log", opt.LogY)
	r.res.Artifacts = append(r.res.Artifacts, art)
	return nil
}

func (r *run) saveManifest() error {
	m := workspace.NewManifest(r.opt.FitDir)
	m.ReportFile = r.opt.ReportFile
	m.Cutoff = r.opt.Cutoff
	m.Chi2Cut = r.opt.Chi2Cut
	m.Replicas = len(r.res.Replicas)
	m.GoodReplicas = len(r.res.Selection.IDs)
	m.CentralReplica = r.opt.CentralReplica
	m.MinChi2Replica = r.res.MinChi2Replica
	for _, a := range r.res.Artifacts {
		m.Artifacts = append(m.Artifacts, workspace.Artifact{
			Name:   a.Base,
			Vector: filepath.ToSlash(filepath.Join(workspace.VectorDirName, a.Base+".svg")),
			Raster: filepath.ToSlash(filepath.Join(workspace.RasterDirName, a.Base+".png")),
		})
	}
	if err := m.Save(r.ws); err != nil {
		return fmt.Errorf("save manifest: %w", err)
	}
	r.res.Manifest = m
	return nil
}

func rasterRef(base string) string {
	return workspace.RasterDirName + "/" + base + ".png"
}
