package schema

import "fmt"

// LoadError means the schema document could not be read or parsed.
type LoadError struct {
	Path   string
	Reason error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("schema load failed for %s: %v", e.Path, e.Reason)
}

func (e *LoadError) Unwrap() error { return e.Reason }

// UnknownTableError means a table name is not registered in the schema document.
type UnknownTableError struct {
	Table string
}

func (e *UnknownTableError) Error() string {
	return fmt.Sprintf("unknown table %q", e.Table)
}

// DefinitionError means a registered table's column definitions are unusable.
type DefinitionError struct {
	Table  string
	Column string // empty for table-level problems
	Reason string
}

func (e *DefinitionError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("invalid schema for table %s: %s", e.Table, e.Reason)
	}
	return fmt.Sprintf("invalid schema for table %s, column %s: %s", e.Table, e.Column, e.Reason)
}
