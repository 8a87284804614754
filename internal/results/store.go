package results

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ReportFileName is the per-replica result file written by the fit.
const ReportFileName = "Report.yaml"

// Keys of the result file.
const (
	KeyStatus              = "Status"
	KeyGlobalErrorFunction = "Global error function"
	KeyGlobalChi2          = "Global chi2"
	KeyParameters          = "Parameters"
)

// LoadReplica reads root/id/Report.yaml into a Record.
func LoadReplica(root, id string) (Record, error) {
	return LoadReplicaFile(filepath.Join(root, id, ReportFileName), id)
}

// LoadReplicaFile parses the result file at path for the replica id.
func LoadReplicaFile(path, id string) (Record, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Record{}, &MissingFileError{Path: path, ReplicaID: id, Err: err}
		}
		return Record{}, fmt.Errorf("read %s: %w", path, err)
	}
	malformed := func(field string, err error) error {
		return &MalformedRecordError{Path: path, ReplicaID: id, Field: field, Err: err}
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return Record{}, malformed("", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return Record{}, malformed("", errors.New("expected a mapping at top level"))
	}
	top := doc.Content[0]

	rec := Record{ID: id}

	n := mappingValue(top, KeyStatus)
	if n == nil {
		return Record{}, malformed(KeyStatus, errors.New("missing"))
	}
	code, err := scalarInt(n)
	if err != nil {
		return Record{}, malformed(KeyStatus, err)
	}
	rec.Status = Status(code)

	n = mappingValue(top, KeyGlobalErrorFunction)
	if n == nil {
		return Record{}, malformed(KeyGlobalErrorFunction, errors.New("missing"))
	}
	if rec.GlobalErrorFunction, err = scalarFloat(n); err != nil {
		return Record{}, malformed(KeyGlobalErrorFunction, err)
	}

	if n = mappingValue(top, KeyGlobalChi2); n != nil && n.Tag != "!!null" {
		if rec.GlobalChi2, err = scalarFloat(n); err != nil {
			return Record{}, malformed(KeyGlobalChi2, err)
		}
		rec.HasGlobalChi2 = true
	}

	if n = mappingValue(top, KeyParameters); n != nil && n.Tag != "!!null" {
		if n.Kind != yaml.MappingNode {
			return Record{}, malformed(KeyParameters, errors.New("expected a mapping of name to value"))
		}
		for i := 0; i+1 < len(n.Content); i += 2 {
			name := n.Content[i].Value
			v, err := scalarFloat(n.Content[i+1])
			if err != nil {
				return Record{}, malformed(KeyParameters+"."+name, err)
			}
			rec.Parameters = append(rec.Parameters, Parameter{Name: name, Value: v})
		}
	}
	return rec, nil
}

// ListReplicaFolders returns the subdirectories of root that are not in excluded.
// The order is the directory enumeration order of the filesystem, which is
// unspecified; use SortNumeric when replica number order matters.
func ListReplicaFolders(root string, excluded map[string]struct{}) ([]string, error) {
	d, err := os.Open(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &MissingFileError{Path: root, Err: err}
		}
		return nil, fmt.Errorf("open result set: %w", err)
	}
	defer d.Close()
	entries, err := d.ReadDir(-1)
	if err != nil {
		return nil, fmt.Errorf("list result set: %w", err)
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if _, skip := excluded[name]; skip {
			continue
		}
		isDir := e.IsDir()
		if e.Type()&fs.ModeSymlink != 0 {
			if info, err := os.Stat(filepath.Join(root, name)); err == nil {
				isDir = info.IsDir()
			}
		}
		if isDir {
			out = append(out, name)
		}
	}
	return out, nil
}

// LoadAll loads every replica in ids, in order, stopping at the first error.
func LoadAll(root string, ids []string) ([]Record, error) {
	recs := make([]Record, 0, len(ids))
	for _, id := range ids {
		r, err := LoadReplica(root, id)
		if err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}
	return recs, nil
}

// SortNumeric orders identifiers by their trailing number ("replica_2" before
// "replica_10"). Identifiers without a number sort after numbered ones, by name.
func SortNumeric(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool {
		ni, oki := trailingNumber(ids[i])
		nj, okj := trailingNumber(ids[j])
		switch {
		case oki && okj && ni != nj:
			return ni < nj
		case oki != okj:
			return oki
		default:
			return ids[i] < ids[j]
		}
	})
}

func trailingNumber(s string) (int, bool) {
	end := len(s)
	start := end
	for start > 0 && s[start-1] >= '0' && s[start-1] <= '9' {
		start--
	}
	if start == end {
		return 0, false
	}
	n, err := strconv.Atoi(s[start:end])
	return n, err == nil
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func scalarFloat(n *yaml.Node) (float64, error) {
	if n.Kind != yaml.ScalarNode || n.Tag == "!!null" {
		return 0, fmt.Errorf("expected a number, got %s", describe(n))
	}
	s := strings.TrimSpace(n.Value)
	switch strings.ToLower(s) {
	case ".inf", "+.inf":
		return math.Inf(1), nil
	case "-.inf":
		return math.Inf(-1), nil
	case ".nan":
		return math.NaN(), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("expected a number, got %q", n.Value)
	}
	return f, nil
}

func scalarInt(n *yaml.Node) (int, error) {
	if n.Kind != yaml.ScalarNode || n.Tag == "!!null" {
		return 0, fmt.Errorf("expected an integer, got %s", describe(n))
	}
	s := strings.TrimSpace(n.Value)
	if i, err := strconv.Atoi(s); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("expected an integer, got %q", n.Value)
	}
	return int(f), nil
}

func describe(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "a mapping"
	case yaml.SequenceNode:
		return "a sequence"
	default:
		if n.Tag == "!!null" {
			return "null"
		}
		return fmt.Sprintf("%q", n.Value)
	}
}
