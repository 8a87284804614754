package results

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// TablesConfig is the subset of tables/config.yaml shown in the report.
type TablesConfig struct {
	PDFSet struct {
		Name string `yaml:"name"`
	} `yaml:"pdfset"`
	PerturbativeOrder int `yaml:"PerturbativeOrder"`
}

// InitialParameter is a parameter's starting point in a replica fit configuration.
type InitialParameter struct {
	Name          string  `yaml:"name"`
	StartingValue float64 `yaml:"starting_value"`
	Step          float64 `yaml:"step"`
	Fix           bool    `yaml:"fix"`
}

// FitConfig is the per-replica fit configuration (fitconfig_<replica>.yaml).
type FitConfig struct {
	Description      string             `yaml:"Description"`
	Minimiser        string             `yaml:"Minimiser"`
	Seed             int64              `yaml:"Seed"`
	QToQmax          float64            `yaml:"qToQmax"`
	T0Prescription   bool               `yaml:"t0prescription"`
	Parameterisation string             `yaml:"Parameterisation"`
	T0Parameters     []float64          `yaml:"t0parameters"`
	Parameters       []InitialParameter `yaml:"Parameters"`
}

// FitConfigPath returns the configuration file of replica id inside dir.
func FitConfigPath(dir, id string) string {
	return filepath.Join(dir, "fitconfig_"+id+".yaml")
}

// LoadTablesConfig reads tables/config.yaml.
func LoadTablesConfig(path string) (*TablesConfig, error) {
	var c TablesConfig
	if err := decodeFile(path, "", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFitConfig reads a replica fit configuration file.
func LoadFitConfig(path, id string) (*FitConfig, error) {
	var c FitConfig
	if err := decodeFile(path, id, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func decodeFile(path, id string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &MissingFileError{Path: path, ReplicaID: id, Err: err}
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, v); err != nil {
		return &MalformedRecordError{Path: path, ReplicaID: id, Err: err}
	}
	return nil
}
