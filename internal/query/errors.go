package query

import (
	"errors"
	"fmt"
)

// ErrQueryExecution is returned when a page cannot be materialized.
var ErrQueryExecution = errors.New("query execution failed")

// ExecutionError carries the context of a failed query.
type ExecutionError struct {
	Entity string
	Column string
	Err    error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("query %s ordered by %s: %v", e.Entity, e.Column, e.Err)
}

func (e *ExecutionError) Unwrap() []error { return []error{ErrQueryExecution, e.Err} }
