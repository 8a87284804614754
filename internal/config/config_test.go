package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/fitreport/internal/analysis"
	"github.com/KaramelBytes/fitreport/internal/plot"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, analysis.DefaultCutoff, c.GEFCutoff)
	assert.Equal(t, analysis.DefaultChi2Cut, c.Chi2Cut)
	assert.Equal(t, "replica_0", c.CentralReplica)
	assert.Equal(t, "Report.yaml", c.ResultFile)
	assert.Equal(t, "FinalReport", c.ReportDir)
	assert.Equal(t, "FReport.md", c.ReportFile)
	assert.Equal(t, plot.DefaultBins, c.HistogramBins)
	require.NoError(t, c.Validate())

	v, err := c.Variants()
	require.NoError(t, err)
	assert.Equal(t, plot.DefaultVariants(), v)

	ex := c.ExcludedFolders()
	for _, name := range []string{"tables", "data", "RRconfig_ceres", "FinalReport"} {
		assert.Contains(t, ex, name)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FITREPORT_CHI2_CUT", "2.5")
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `gef_cutoff: 3
histogram_bins: 40
plot_variants:
  - parameter: $g_2$
    variants: [log]
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3.0, c.GEFCutoff)
	assert.Equal(t, 2.5, c.Chi2Cut)
	assert.Equal(t, 40, c.HistogramBins)

	v, err := c.Variants()
	require.NoError(t, err)
	assert.Equal(t, []plot.Variant{plot.VariantLog}, v.For("$g_2$"))
	assert.Equal(t, []plot.Variant{plot.VariantLinear}, v.For("$N_1$"))
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gef_cutoff: [1\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)

	c.HistogramBins = 0
	assert.Error(t, c.Validate())
	c.HistogramBins = 10

	c.PlotVariants = []PlotVariantRule{{Parameter: "$N_1$", Variants: []string{"cubic"}}}
	assert.Error(t, c.Validate())
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)
	c.GEFCutoff = 5
	c.HTMLPage = true

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, Save(c, path))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got.GEFCutoff)
	assert.True(t, got.HTMLPage)
	assert.Equal(t, c.PlotVariants, got.PlotVariants)
}
