package scope

import (
	"errors"
	"fmt"
)

// ErrInvalidDate is returned (wrapped in an *InvalidDateError) when the
// requested components cannot form a real calendar date.
var ErrInvalidDate = errors.New("invalid date")

// InvalidDateError describes which components were rejected.
type InvalidDateError struct {
	Year   int
	Month  int
	Day    int
	Reason string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %04d-%02d-%02d: %s", e.Year, e.Month, e.Day, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidDate) match.
func (e *InvalidDateError) Is(target error) bool {
	return target == ErrInvalidDate
}
