package results

import "fmt"

// MissingFileError indicates an expected result or configuration file is absent.
type MissingFileError struct {
	Path      string
	ReplicaID string
	Err       error
}

func (e *MissingFileError) Error() string {
	if e.ReplicaID != "" {
		return fmt.Sprintf("missing result file for %s: %s", e.ReplicaID, e.Path)
	}
	return fmt.Sprintf("missing file: %s", e.Path)
}

func (e *MissingFileError) Unwrap() error { return e.Err }

// MalformedRecordError indicates a required field could not be parsed to its expected type.
type MalformedRecordError struct {
	Path      string
	ReplicaID string
	Field     string
	Err       error
}

func (e *MalformedRecordError) Error() string {
	msg := fmt.Sprintf("malformed record %s", e.Path)
	if e.Field != "" {
		msg += fmt.Sprintf(": field %q", e.Field)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

// MissingFieldError indicates a metric or parameter is absent from one record of a series.
type MissingFieldError struct {
	ReplicaID string
	Field     string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("replica %s has no %q", e.ReplicaID, e.Field)
}
