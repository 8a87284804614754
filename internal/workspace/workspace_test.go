package workspace_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/KaramelBytes/fitreport/internal/workspace"
)

func TestCreateMakesPlotFolders(t *testing.T) {
	fit := t.TempDir()
	w, err := workspace.Create(fit, "FinalReport")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !w.Created() {
		t.Fatalf("expected Created() for a new folder")
	}
	for _, d := range []string{w.VectorDir(), w.RasterDir()} {
		info, err := os.Stat(d)
		if err != nil || !info.IsDir() {
			t.Fatalf("missing %s: %v", d, err)
		}
	}
	if got := w.Path("FReport.md"); got != filepath.Join(fit, "FinalReport", "FReport.md") {
		t.Fatalf("unexpected path %s", got)
	}
}

func TestCreateRefusesNonEmptyFolder(t *testing.T) {
	fit := t.TempDir()
	dir := filepath.Join(fit, "FinalReport")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "FReport.md"), []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := workspace.Create(fit, "FinalReport")
	if !errors.Is(err, workspace.ErrNotEmpty) {
		t.Fatalf("expected ErrNotEmpty, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "FReport.md")); err != nil {
		t.Fatalf("existing report must be left alone: %v", err)
	}
}

func TestDiscard(t *testing.T) {
	fit := t.TempDir()
	w, err := workspace.Create(fit, "FinalReport")
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Discard(); err != nil {
		t.Fatalf("discard: %v", err)
	}
	if _, err := os.Stat(w.Dir); !os.IsNotExist(err) {
		t.Fatalf("expected folder removed, stat err=%v", err)
	}

	// a pre-existing empty folder survives, emptied
	dir := filepath.Join(fit, "Existing")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	w, err = workspace.Create(fit, "Existing")
	if err != nil {
		t.Fatal(err)
	}
	if w.Created() {
		t.Fatalf("folder existed before the run")
	}
	if err := w.Discard(); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("folder should remain: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty folder, got %d entries", len(entries))
	}
}

func TestManifestRoundTrip(t *testing.T) {
	fit := t.TempDir()
	w, err := workspace.Create(fit, "FinalReport")
	if err != nil {
		t.Fatal(err)
	}
	m := workspace.NewManifest(fit)
	m.GoodReplicas = 3
	m.Artifacts = append(m.Artifacts, workspace.Artifact{Name: "Globalchi2", Vector: "plots/Globalchi2.svg", Raster: "pngplots/Globalchi2.png"})
	if err := m.Save(w); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := workspace.LoadManifest(w.Path(workspace.ManifestFileName))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := uuid.Parse(got.RunID); err != nil {
		t.Fatalf("run id is not a uuid: %q", got.RunID)
	}
	if got.GoodReplicas != 3 || len(got.Artifacts) != 1 || got.Artifacts[0].Name != "Globalchi2" {
		t.Fatalf("unexpected manifest %+v", got)
	}
}

func TestIsReport(t *testing.T) {
	fit := t.TempDir()
	w, err := workspace.Create(fit, "FinalReport")
	if err != nil {
		t.Fatal(err)
	}
	if workspace.IsReport(w.Dir) {
		t.Fatalf("folder without manifest is not a report")
	}
	if err := workspace.NewManifest(fit).Save(w); err != nil {
		t.Fatal(err)
	}
	if !workspace.IsReport(w.Dir) {
		t.Fatalf("folder with manifest should be a report")
	}
	if workspace.IsReport(filepath.Join(fit, "replica_0")) {
		t.Fatalf("missing folder is not a report")
	}
}
