package analysis

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/fitreport/internal/results"
)

const (
	// DefaultCutoff is the global error function cutoff used when none is configured.
	DefaultCutoff = 4.0
	// DefaultChi2Cut is the global chi2 threshold of the cut histogram.
	DefaultChi2Cut = 1.5
)

// EmptyInputError is returned when an extremum or statistic is requested over no records.
type EmptyInputError struct {
	Op string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("%s: no input records", e.Op)
}

// Selection is the outcome of filtering replicas for quality.
type Selection struct {
	// IDs of accepted replicas, in input order.
	IDs []string
	// Records parallel to IDs.
	Records    []results.Record
	Cutoff     float64
	Candidates int
}

// Rejected returns how many candidates were not accepted.
func (s Selection) Rejected() int { return s.Candidates - len(s.IDs) }

// SelectGood keeps the records whose minimiser converged and whose global
// error function is strictly below cutoff, preserving input order.
func SelectGood(records []results.Record, cutoff float64) Selection {
	sel := Selection{Cutoff: cutoff, Candidates: len(records)}
	for _, r := range records {
		if r.Status == results.StatusConverged && r.GlobalErrorFunction < cutoff {
			sel.IDs = append(sel.IDs, r.ID)
			sel.Records = append(sel.Records, r)
		}
	}
	return sel
}

// FindMinimum scans records for the smallest metric value and returns it with
// the record's ID. Ties go to the first occurrence; NaN only wins when every
// value is NaN.
func FindMinimum(records []results.Record, metric Metric) (float64, string, error) {
	if len(records) == 0 {
		return 0, "", &EmptyInputError{Op: "find minimum"}
	}
	best := math.NaN()
	bestID := ""
	for i, r := range records {
		v, err := metric(r)
		if err != nil {
			return 0, "", err
		}
		if i == 0 || v < best || (math.IsNaN(best) && !math.IsNaN(v)) {
			best, bestID = v, r.ID
		}
	}
	return best, bestID, nil
}
