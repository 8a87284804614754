package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/fitreport/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set fitreport configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := effectiveConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "gef_cutoff: %g\n", c.GEFCutoff)
		fmt.Fprintf(out, "chi2_cut: %g\n", c.Chi2Cut)
		fmt.Fprintf(out, "central_replica: %s\n", c.CentralReplica)
		fmt.Fprintf(out, "result_file: %s\n", c.ResultFile)
		fmt.Fprintf(out, "tables_dir: %s\n", c.TablesDir)
		fmt.Fprintf(out, "data_dir: %s\n", c.DataDir)
		fmt.Fprintf(out, "replicas_config_dir: %s\n", c.ReplicasConfigDir)
		fmt.Fprintf(out, "report_dir: %s\n", c.ReportDir)
		fmt.Fprintf(out, "report_file: %s\n", c.ReportFile)
		fmt.Fprintf(out, "html_page: %t\n", c.HTMLPage)
		fmt.Fprintf(out, "histogram_bins: %d\n", c.HistogramBins)
		fmt.Fprintf(out, "plot_width: %d\n", c.PlotWidth)
		fmt.Fprintf(out, "plot_height: %d\n", c.PlotHeight)
		fmt.Fprintf(out, "plot_variants: %s\n", formatVariantRules(c.PlotVariants))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long: `Set a config value and save to disk.

plot_variants takes "name=variant,variant;name=variant", for example
'$N_1$=linear,log;$\sigma$=linear,log'.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := effectiveConfig()
		if err != nil {
			return err
		}
		switch key {
		case "gef_cutoff":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for gef_cutoff: %w", err)
			}
			c.GEFCutoff = f
		case "chi2_cut":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for chi2_cut: %w", err)
			}
			c.Chi2Cut = f
		case "central_replica":
			c.CentralReplica = val
		case "result_file":
			c.ResultFile = val
		case "tables_dir":
			c.TablesDir = val
		case "data_dir":
			c.DataDir = val
		case "replicas_config_dir":
			c.ReplicasConfigDir = val
		case "report_dir":
			c.ReportDir = val
		case "report_file":
			c.ReportFile = val
		case "html_page":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for html_page: %v", val)
			}
			c.HTMLPage = b
		case "histogram_bins", "plot_width", "plot_height":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid positive int for %s: %v", key, val)
			}
			switch key {
			case "histogram_bins":
				c.HistogramBins = i
			case "plot_width":
				c.PlotWidth = i
			default:
				c.PlotHeight = i
			}
		case "plot_variants":
			rules, err := parseVariantRules(val)
			if err != nil {
				return err
			}
			c.PlotVariants = rules
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		okf(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func parseVariantRules(s string) ([]cfgpkg.PlotVariantRule, error) {
	var rules []cfgpkg.PlotVariantRule
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, list, ok := strings.Cut(part, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid plot_variants entry %q (want name=variant,...)", part)
		}
		r := cfgpkg.PlotVariantRule{Parameter: strings.TrimSpace(name)}
		for _, v := range strings.Split(list, ",") {
			if v = strings.TrimSpace(v); v != "" {
				r.Variants = append(r.Variants, v)
			}
		}
		rules = append(rules, r)
	}
	return rules, nil
}

func formatVariantRules(rules []cfgpkg.PlotVariantRule) string {
	parts := make([]string, len(rules))
	for i, r := range rules {
		parts[i] = r.Parameter + "=" + strings.Join(r.Variants, ",")
	}
	return strings.Join(parts, ";")
}
