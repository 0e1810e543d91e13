package ingest

import "fmt"

// ParseError wraps a specific error with context about where it occurred.
type ParseError struct {
	File   string
	Line   int
	Record []string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse error at line %d: %v (record: %v)", e.File, e.Line, e.Err, e.Record)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var (
	ErrMissingColumn    = fmt.Errorf("missing column")
	ErrEmptyRecord      = fmt.Errorf("empty record")
	ErrInvalidStaffing  = fmt.Errorf("invalid staffing count")
	ErrInvalidStartTime = fmt.Errorf("invalid start time")
	ErrInvalidEndTime   = fmt.Errorf("invalid end time")
	ErrInvalidBool      = fmt.Errorf("invalid boolean")
)
