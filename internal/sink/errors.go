package sink

import "fmt"

// WriteError means an output document could not be persisted.
type WriteError struct {
	Path   string
	Reason error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write failed for %s: %v", e.Path, e.Reason)
}

func (e *WriteError) Unwrap() error { return e.Reason }

// ReadbackError means a written document failed post-write validation:
// the file is missing or does not parse as JSON.
type ReadbackError struct {
	Path   string
	Reason error
}

func (e *ReadbackError) Error() string {
	return fmt.Sprintf("readback validation failed for %s: %v", e.Path, e.Reason)
}

func (e *ReadbackError) Unwrap() error { return e.Reason }
