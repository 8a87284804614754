package analysis

import (
	"strings"

	"github.com/KaramelBytes/fitreport/internal/results"
)

// Metric projects a record to a single number.
type Metric func(results.Record) (float64, error)

// GlobalErrorFunction is the metric for the global error function, always present on loaded records.
func GlobalErrorFunction(r results.Record) (float64, error) {
	return r.GlobalErrorFunction, nil
}

// GlobalChi2 fails with MissingFieldError for records without a global chi2.
func GlobalChi2(r results.Record) (float64, error) {
	if !r.HasGlobalChi2 {
		return 0, &results.MissingFieldError{ReplicaID: r.ID, Field: results.KeyGlobalChi2}
	}
	return r.GlobalChi2, nil
}

// ParameterValue returns a metric reading the named fitted parameter.
func ParameterValue(name string) Metric {
	return func(r results.Record) (float64, error) {
		v, ok := r.Parameter(name)
		if !ok {
			return 0, &results.MissingFieldError{ReplicaID: r.ID, Field: name}
		}
		return v, nil
	}
}

// CollectSeries maps every record through metric, in order. A missing field on
// any record fails the whole series.
func CollectSeries(records []results.Record, metric Metric) ([]float64, error) {
	out := make([]float64, 0, len(records))
	for _, r := range records {
		v, err := metric(r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ParameterSeries holds one parameter's values across the selected replicas.
type ParameterSeries struct {
	Name string
	// FileName is Name made safe for use as a file base name.
	FileName string
	Values   []float64
}

// CollectParameterSeries gathers the named parameter from every record.
func CollectParameterSeries(records []results.Record, name string) (ParameterSeries, error) {
	vals, err := CollectSeries(records, ParameterValue(name))
	if err != nil {
		return ParameterSeries{}, err
	}
	return ParameterSeries{Name: name, FileName: SafeFileName(name), Values: vals}, nil
}

// SafeFileName strips backslashes (LaTeX markup) and path separators from name.
func SafeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\\', '/':
			return -1
		}
		return r
	}, name)
}
