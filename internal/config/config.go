package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/fitreport/internal/analysis"
	"github.com/KaramelBytes/fitreport/internal/plot"
)

// Global configuration structure.
type Global struct {
	// Selection
	GEFCutoff      float64 `mapstructure:"gef_cutoff" yaml:"gef_cutoff"`
	Chi2Cut        float64 `mapstructure:"chi2_cut" yaml:"chi2_cut"`
	CentralReplica string  `mapstructure:"central_replica" yaml:"central_replica"`

	// Fit folder layout
	ResultFile        string `mapstructure:"result_file" yaml:"result_file"`
	TablesDir         string `mapstructure:"tables_dir" yaml:"tables_dir"`
	DataDir           string `mapstructure:"data_dir" yaml:"data_dir"`
	ReplicasConfigDir string `mapstructure:"replicas_config_dir" yaml:"replicas_config_dir"`

	// Output
	ReportDir  string `mapstructure:"report_dir" yaml:"report_dir"`
	ReportFile string `mapstructure:"report_file" yaml:"report_file"`
	HTMLPage   bool   `mapstructure:"html_page" yaml:"html_page"`

	// Plots
	HistogramBins int               `mapstructure:"histogram_bins" yaml:"histogram_bins"`
	PlotWidth     int               `mapstructure:"plot_width" yaml:"plot_width"`
	PlotHeight    int               `mapstructure:"plot_height" yaml:"plot_height"`
	PlotVariants  []PlotVariantRule `mapstructure:"plot_variants" yaml:"plot_variants"`
}

// PlotVariantRule lists the renderings of one parameter. Kept as a list
// because viper folds map keys to lower case and parameter names are case sensitive.
type PlotVariantRule struct {
	Parameter string   `mapstructure:"parameter" yaml:"parameter"`
	Variants  []string `mapstructure:"variants" yaml:"variants"`
}

// Variants converts the configured rules into a plot variant table.
func (c *Global) Variants() (plot.Variants, error) {
	out := plot.Variants{}
	for _, r := range c.PlotVariants {
		if r.Parameter == "" {
			return nil, errors.New("plot_variants: empty parameter name")
		}
		for _, s := range r.Variants {
			v, err := plot.ParseVariant(s)
			if err != nil {
				return nil, fmt.Errorf("plot_variants[%s]: %w", r.Parameter, err)
			}
			out[r.Parameter] = append(out[r.Parameter], v)
		}
	}
	return out, nil
}

// Validate rejects values the report pipeline cannot work with.
func (c *Global) Validate() error {
	if c.HistogramBins <= 0 {
		return fmt.Errorf("histogram_bins must be positive, got %d", c.HistogramBins)
	}
	if c.PlotWidth <= 0 || c.PlotHeight <= 0 {
		return fmt.Errorf("plot size must be positive, got %dx%d", c.PlotWidth, c.PlotHeight)
	}
	if c.CentralReplica == "" || c.ResultFile == "" || c.ReportDir == "" || c.ReportFile == "" {
		return errors.New("central_replica, result_file, report_dir and report_file must be set")
	}
	_, err := c.Variants()
	return err
}

// ExcludedFolders returns the fit folder entries that are not replicas.
func (c *Global) ExcludedFolders() map[string]struct{} {
	out := map[string]struct{}{}
	for _, n := range []string{c.TablesDir, c.DataDir, c.ReplicasConfigDir, c.ReportDir} {
		if n != "" {
			out[n] = struct{}{}
		}
	}
	return out
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".fitreport"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.fitreport/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("FITREPORT")
	v.AutomaticEnv()

	v.SetDefault("gef_cutoff", analysis.DefaultCutoff)
	v.SetDefault("chi2_cut", analysis.DefaultChi2Cut)
	v.SetDefault("central_replica", "replica_0")
	v.SetDefault("result_file", "Report.yaml")
	v.SetDefault("tables_dir", "tables")
	v.SetDefault("data_dir", "data")
	v.SetDefault("replicas_config_dir", "RRconfig_ceres")
	v.SetDefault("report_dir", "FinalReport")
	v.SetDefault("report_file", "FReport.md")
	v.SetDefault("html_page", false)
	v.SetDefault("histogram_bins", plot.DefaultBins)
	v.SetDefault("plot_width", 800)
	v.SetDefault("plot_height", 600)
	v.SetDefault("plot_variants", defaultVariantRules())

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

func defaultVariantRules() []map[string]any {
	defaults := plot.DefaultVariants()
	names := make([]string, 0, len(defaults))
	for name := range defaults {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]map[string]any, 0, len(defaults))
	for _, name := range names {
		var vs []string
		for _, v := range defaults[name] {
			vs = append(vs, string(v))
		}
		out = append(out, map[string]any{"parameter": name, "variants": vs})
	}
	return out
}
