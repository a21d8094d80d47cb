package coerce

import "fmt"

// RowShapeError means a raw row's cell count does not match the table's
// column count. Rows are position-indexed, so a short or long row cannot be
// mapped onto the schema at all.
type RowShapeError struct {
	Table    string
	RowIndex int
	Expected int
	Actual   int
}

func (e *RowShapeError) Error() string {
	return fmt.Sprintf("row shape mismatch in %s at row %d: expected %d cells, got %d",
		e.Table, e.RowIndex, e.Expected, e.Actual)
}

// CoercionError means a raw cell could not be converted to its column's
// logical type. It names the column, row index and offending value.
type CoercionError struct {
	Table    string
	Column   string
	RowIndex int
	Value    any
	Reason   string
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot coerce %s.%s at row %d: value=%v - %s",
		e.Table, e.Column, e.RowIndex, e.Value, e.Reason)
}
