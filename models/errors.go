package models

import "fmt"

// ParseError records a cell that could not be coerced to its column kind.
// The cell becomes absent; the row is kept.
type ParseError struct {
	Dataset Dataset
	Row     int
	Column  string
	Value   any
	Kind    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s row %d: column %q: cannot parse %v as %s", e.Dataset, e.Row, e.Column, e.Value, e.Kind)
}

// EmptyDatasetError reports a dataset that was missing or had no usable rows.
type EmptyDatasetError struct {
	Dataset Dataset
	Reason  string
}

func (e *EmptyDatasetError) Error() string {
	return fmt.Sprintf("%s: dataset empty: %s", e.Dataset, e.Reason)
}
