package domain

import "math"

// QuerySpec is a caller's request for one page of a collection.
// OrderBy is untrusted until resolved against a column policy.
type QuerySpec struct {
	Search    string
	OrderBy   string
	Direction string
	Page      int
	PageSize  int
}

// Validate checks paging bounds. maxPageSize <= 0 disables the upper bound.
func (q QuerySpec) Validate(maxPageSize int) error {
	var errs []FieldError

	if q.Page < 1 {
		errs = append(errs, FieldError{Field: "page", Message: "must be at least 1"})
	}
	if q.PageSize < 1 {
		errs = append(errs, FieldError{Field: "page_size", Message: "must be at least 1"})
	} else if maxPageSize > 0 && q.PageSize > maxPageSize {
		errs = append(errs, FieldError{Field: "page_size", Message: "exceeds maximum"})
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// Offset returns the number of items skipped before the requested page.
// It saturates at math.MaxInt when the page lies beyond any addressable offset.
func (q QuerySpec) Offset() int {
	off, ok := PageOffset(q.Page, q.PageSize)
	if !ok {
		return math.MaxInt
	}
	return off
}

// PageOffset returns (page-1)*pageSize. ok is false when the product does
// not fit in an int; no collection can hold such a page, so it is empty.
// Pages below 1 and non-positive sizes yield offset 0.
func PageOffset(page, pageSize int) (offset int, ok bool) {
	if page < 1 || pageSize < 1 {
		return 0, true
	}
	if page-1 > math.MaxInt/pageSize {
		return 0, false
	}
	return (page - 1) * pageSize, true
}

// SortDirection parses Direction.
func (q QuerySpec) SortDirection() SortDirection {
	return ParseSortDirection(q.Direction)
}
