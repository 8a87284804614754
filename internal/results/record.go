package results

import "fmt"

// Status is the minimiser exit code stored in a replica report.
type Status int

const (
	StatusNotConverged Status = 0
	StatusConverged    Status = 1
)

// Converged reports whether the minimiser converged for the replica.
func (s Status) Converged() bool { return s == StatusConverged }

func (s Status) String() string {
	switch s {
	case StatusConverged:
		return "converged"
	case StatusNotConverged:
		return "not-converged"
	default:
		return fmt.Sprintf("code %d", int(s))
	}
}

// Parameter is one fitted parameter of a replica, in file order.
type Parameter struct {
	Name  string
	Value float64
}

// Record is the typed content of one replica's result file. Records are
// immutable after LoadReplica returns them.
type Record struct {
	ID                  string
	Status              Status
	GlobalErrorFunction float64
	// GlobalChi2 is only meaningful when HasGlobalChi2 is true.
	GlobalChi2    float64
	HasGlobalChi2 bool
	Parameters    []Parameter
}

// Parameter returns the value of the named parameter.
func (r Record) Parameter(name string) (float64, bool) {
	for _, p := range r.Parameters {
		if p.Name == name {
			return p.Value, true
		}
	}
	return 0, false
}

// ParameterNames returns parameter names in file order.
func (r Record) ParameterNames() []string {
	names := make([]string, len(r.Parameters))
	for i, p := range r.Parameters {
		names[i] = p.Name
	}
	return names
}
