package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/fitreport/internal/utils"
)

const (
	// VectorDirName holds the SVG plots.
	VectorDirName = "plots"
	// RasterDirName holds the PNG plots embedded by the report.
	RasterDirName = "pngplots"
)

// ErrNotEmpty is returned when the report folder already holds files.
var ErrNotEmpty = errors.New("report folder exists and is not empty")

// Workspace is the report output folder of one run.
type Workspace struct {
	Dir     string
	created bool
}

// Create prepares fitDir/name with its plot subfolders. An existing empty
// folder is reused; a non-empty one is refused so an earlier report is never
// overwritten.
func Create(fitDir, name string) (*Workspace, error) {
	dir := filepath.Join(fitDir, name)
	w := &Workspace{Dir: dir}
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		w.created = true
	case err != nil:
		return nil, fmt.Errorf("stat report folder: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("%s is not a directory", dir)
	default:
		empty, err := utils.IsEmptyDir(dir)
		if err != nil {
			return nil, fmt.Errorf("read report folder: %w", err)
		}
		if !empty {
			return nil, fmt.Errorf("%s: %w", dir, ErrNotEmpty)
		}
	}
	for _, sub := range []string{w.VectorDir(), w.RasterDir()} {
		if err := utils.EnsureDir(sub); err != nil {
			_ = w.Discard()
			return nil, fmt.Errorf("create %s: %w", sub, err)
		}
	}
	return w, nil
}

// VectorDir returns the folder for SVG plots.
func (w *Workspace) VectorDir() string { return filepath.Join(w.Dir, VectorDirName) }

// RasterDir returns the folder for PNG plots.
func (w *Workspace) RasterDir() string { return filepath.Join(w.Dir, RasterDirName) }

// Path joins elem onto the report folder.
func (w *Workspace) Path(elem ...string) string {
	return filepath.Join(append([]string{w.Dir}, elem...)...)
}

// Created reports whether this run made the report folder.
func (w *Workspace) Created() bool { return w.created }

// Discard removes what a failed run left behind. A folder that existed before
// the run only loses its contents.
func (w *Workspace) Discard() error {
	if w.created {
		return os.RemoveAll(w.Dir)
	}
	entries, err := os.ReadDir(w.Dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(w.Dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
