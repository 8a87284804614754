package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/fitreport/internal/config"
	"github.com/KaramelBytes/fitreport/internal/report"
	"github.com/KaramelBytes/fitreport/internal/utils"
)

var (
	reportDirName     string
	reportFileName    string
	reportReplicasCfg string
	reportDescription string
	reportCutoff      float64
	reportChi2Cut     float64
	reportBins        int
	reportHTML        bool
	reportKeepPartial bool
	reportNoInput     bool
)

var reportCmd = &cobra.Command{
	Use:   "report [fit-folder]",
	Short: "Write the Markdown report of a fit",
	Long: `Loads every replica of the fit folder, selects the converged replicas with a
global error function below the cutoff and writes the report, its SVG and PNG
histograms and a report.json manifest into a new folder inside the fit folder.

Values not given as flags are asked for when stdin is a terminal.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := effectiveConfig()
		if err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		opts, err := reportOptions(cmd, c)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			opts.FitDir = args[0]
		}

		if !reportNoInput && isTerminal(os.Stdin) {
			if err := promptReport(cmd, &opts); err != nil {
				return err
			}
		}
		if opts.FitDir == "" {
			dir, err := utils.FindUpward("", c.TablesDir)
			if err != nil {
				return fmt.Errorf("no fit folder given and none found above the working directory: %w", err)
			}
			opts.FitDir = dir
		}
		if info, err := os.Stat(opts.FitDir); err != nil || !info.IsDir() {
			return fmt.Errorf("fit folder %s does not exist", opts.FitDir)
		}

		out := cmd.OutOrStdout()
		opts.Logger = newLogger(cmd.ErrOrStderr())
		res, err := report.Generate(opts)
		if err != nil {
			if opts.KeepPartial {
				warnf(cmd.ErrOrStderr(), "partial report kept in %s", filepath.Join(opts.FitDir, opts.ReportDir))
			}
			return err
		}

		sel := res.Selection
		okf(out, "Good replicas (converged, global error function < %s): %s out of %d",
			strconv.FormatFloat(opts.Cutoff, 'g', -1, 64), boldStyle.Render(strconv.Itoa(len(sel.IDs))), sel.Candidates)
		okf(out, "Global chi2 of the central replica: %s", boldStyle.Render(strconv.FormatFloat(res.CentralChi2, 'g', -1, 64)))
		okf(out, "Minimum global chi2: %s (%s)", boldStyle.Render(strconv.FormatFloat(res.MinChi2, 'g', -1, 64)), res.MinChi2Replica)
		okf(out, "Plots: %s pairs in %s", humanize.Comma(int64(len(res.Artifacts))), res.Workspace.Dir)
		if res.HTMLPath != "" {
			okf(out, "Interactive histograms: %s", res.HTMLPath)
		}
		okf(out, "Report written: %s (%s)", res.ReportPath, humanize.Bytes(uint64(res.Bytes)))
		return nil
	},
}

// reportOptions starts from the configuration and applies the flags that were set.
func reportOptions(cmd *cobra.Command, c *cfgpkg.Global) (report.Options, error) {
	variants, err := c.Variants()
	if err != nil {
		return report.Options{}, err
	}
	opts := report.Options{
		ReportDir:         c.ReportDir,
		ReportFile:        c.ReportFile,
		ReplicasConfigDir: c.ReplicasConfigDir,
		TablesDir:         c.TablesDir,
		DataDir:           c.DataDir,
		ResultFile:        c.ResultFile,
		CentralReplica:    c.CentralReplica,
		Cutoff:            c.GEFCutoff,
		Chi2Cut:           c.Chi2Cut,
		Bins:              c.HistogramBins,
		Width:             c.PlotWidth,
		Height:            c.PlotHeight,
		Variants:          variants,
		HTML:              c.HTMLPage,
		Description:       reportDescription,
		KeepPartial:       reportKeepPartial,
	}
	f := cmd.Flags()
	if f.Changed("report-dir") {
		opts.ReportDir = reportDirName
	}
	if f.Changed("report-file") {
		opts.ReportFile = reportFileName
	}
	if f.Changed("replicas-config") {
		opts.ReplicasConfigDir = reportReplicasCfg
	}
	if f.Changed("cutoff") {
		opts.Cutoff = reportCutoff
	}
	if f.Changed("chi2-cut") {
		opts.Chi2Cut = reportChi2Cut
	}
	if f.Changed("bins") {
		if reportBins <= 0 {
			return report.Options{}, fmt.Errorf("--bins must be positive, got %d", reportBins)
		}
		opts.Bins = reportBins
	}
	if f.Changed("html") {
		opts.HTML = reportHTML
	}
	return opts, nil
}

// promptReport asks for the folder and file names that were not given as
// flags, pre-filled with the configured defaults.
func promptReport(cmd *cobra.Command, opts *report.Options) error {
	f := cmd.Flags()
	var fields []huh.Field
	if opts.FitDir == "" {
		fields = append(fields, huh.NewInput().
			Title("Fit result folder").
			Description("Folder holding the replica_* result folders").
			Value(&opts.FitDir).
			Validate(validateFitDir))
	}
	if !f.Changed("report-dir") {
		fields = append(fields, huh.NewInput().
			Title("Report folder name").
			Value(&opts.ReportDir).
			Validate(validateName))
	}
	if !f.Changed("report-file") {
		fields = append(fields, huh.NewInput().
			Title("Markdown report file (.md)").
			Value(&opts.ReportFile).
			Validate(validateName))
	}
	if !f.Changed("replicas-config") {
		fields = append(fields, huh.NewInput().
			Title("Replicas configuration folder").
			Description("Folder of the fit holding fitconfig_<replica>.yaml").
			Value(&opts.ReplicasConfigDir).
			Validate(validateName))
	}
	if !f.Changed("desc") {
		fields = append(fields, huh.NewInput().
			Title("Description").
			Value(&opts.Description))
	}
	if len(fields) == 0 {
		return nil
	}
	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errors.New("aborted")
		}
		return fmt.Errorf("prompt: %w", err)
	}
	opts.FitDir = strings.TrimSpace(opts.FitDir)
	return nil
}

func validateFitDir(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("a fit folder is required")
	}
	info, err := os.Stat(s)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%s is not a folder", s)
	}
	return nil
}

func validateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("a name is required")
	}
	if strings.ContainsAny(s, `/\`) {
		return errors.New("use a plain name, not a path")
	}
	return nil
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVar(&reportDirName, "report-dir", "", "report folder created inside the fit folder (default from config: FinalReport)")
	reportCmd.Flags().StringVar(&reportFileName, "report-file", "", "Markdown report file name (default from config: FReport.md)")
	reportCmd.Flags().StringVar(&reportReplicasCfg, "replicas-config", "", "folder with fitconfig_<replica>.yaml (default from config: RRconfig_ceres)")
	reportCmd.Flags().StringVarP(&reportDescription, "desc", "d", "", "description of the fit")
	reportCmd.Flags().Float64Var(&reportCutoff, "cutoff", 0, "global error function cutoff for good replicas (default from config: 4)")
	reportCmd.Flags().Float64Var(&reportChi2Cut, "chi2-cut", 0, "global chi2 threshold drawn on CutGlobalchi2 (default from config: 1.5)")
	reportCmd.Flags().IntVar(&reportBins, "bins", 0, "histogram bin count (default from config: 20)")
	reportCmd.Flags().BoolVar(&reportHTML, "html", false, "also write an interactive histograms.html")
	reportCmd.Flags().BoolVar(&reportKeepPartial, "keep-partial", false, "keep the report folder when the run fails")
	reportCmd.Flags().BoolVar(&reportNoInput, "no-input", false, "never prompt; use flags and configuration only")
}
