package importer

import "fmt"

// LineParseError marks a record that could not be converted. The import goes on.
type LineParseError struct {
	Line int
	Err  error
}

func (e *LineParseError) Error() string {
	return fmt.Sprintf("line %d: parse: %v", e.Line, e.Err)
}

func (e *LineParseError) Unwrap() error { return e.Err }

// PersistenceError marks a record whose writes failed. Earlier writes are kept.
type PersistenceError struct {
	Line int
	Op   string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("line %d: %s: %v", e.Line, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
