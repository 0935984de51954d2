package calc

import "fmt"

// DimensionMismatchError indicates vectors of unequal length were fed into
// one matrix build.
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// InsufficientDataError indicates fewer observations than a computation
// requires.
type InsufficientDataError struct {
	What string
	Need int
	Got  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: need %d %s, got %d", e.Need, e.What, e.Got)
}
