package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/fitreport/internal/utils"
)

// ManifestFileName is written next to the report.
const ManifestFileName = "report.json"

// Manifest records what a report run produced.
type Manifest struct {
	RunID          string     `json:"run_id"`
	CreatedAt      time.Time  `json:"created_at"`
	FitDir         string     `json:"fit_dir"`
	ReportFile     string     `json:"report_file"`
	Cutoff         float64    `json:"cutoff"`
	Chi2Cut        float64    `json:"chi2_cut"`
	Replicas       int        `json:"replicas"`
	GoodReplicas   int        `json:"good_replicas"`
	CentralReplica string     `json:"central_replica"`
	MinChi2Replica string     `json:"min_chi2_replica"`
	Artifacts      []Artifact `json:"artifacts"`
}

// Artifact is one plot pair, relative to the report folder.
type Artifact struct {
	Name   string `json:"name"`
	Vector string `json:"vector"`
	Raster string `json:"raster"`
}

// NewManifest stamps a fresh run ID and creation time.
func NewManifest(fitDir string) *Manifest {
	return &Manifest{
		RunID:     uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		FitDir:    fitDir,
	}
}

// Save writes the manifest into the workspace.
func (m *Manifest) Save(w *Workspace) error {
	data, err := utils.PrettyJSON(m)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(w.Path(ManifestFileName), data)
}

// IsReport reports whether dir holds a manifest, i.e. is the output of an
// earlier run rather than a replica.
func IsReport(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ManifestFileName))
	return err == nil && !info.IsDir()
}

// LoadManifest reads a manifest written by Save.
func LoadManifest(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}
