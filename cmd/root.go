package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/fitreport/internal/config"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	boldStyle = lipgloss.NewStyle().Bold(true)
)

var rootCmd = &cobra.Command{
	Use:   "fitreport",
	Short: "fitreport: Markdown reports for multi-replica fits",
	Long: `fitreport reads the per-replica results of a fit, keeps the replicas that
converged below a global error function cutoff and writes a Markdown report
with parameter tables and histograms next to the fit.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render("✗ Error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.fitreport/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// reported by effectiveConfig when a command needs the configuration
		return
	}
	cfg = c
}

// effectiveConfig returns the loaded configuration, loading it on demand when
// a command runs without cobra initialisation (tests).
func effectiveConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	return c, nil
}

func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func okf(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, okStyle.Render("✓"), fmt.Sprintf(format, args...))
}

func warnf(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, warnStyle.Render("⚠ Warning:"), fmt.Sprintf(format, args...))
}
