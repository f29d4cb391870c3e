// Package errs declares error types used across the library.
package errs

import "fmt"

// OutOfRange encodes an error where a value is out of its valid range.
type OutOfRange struct {
	What      string
	ValidLow  int
	ValidHigh int
	Actual    string
}

// Error implements the error interface.
func (e OutOfRange) Error() string {
	if e.ValidHigh < e.ValidLow {
		return fmt.Sprintf(
			"out of range: %s has no valid value, but is %s", e.What, e.Actual)
	}
	return fmt.Sprintf(
		"out of range: %s must be from %d to %d, but is %s",
		e.What, e.ValidLow, e.ValidHigh, e.Actual)
}

// ArityMismatch encodes an error where the expected number of values is out of
// its valid range. A ValidHigh of -1 means that any number of values at least
// ValidLow is valid.
type ArityMismatch struct {
	What      string
	ValidLow  int
	ValidHigh int
	Actual    int
}

// Error implements the error interface.
func (e ArityMismatch) Error() string {
	switch {
	case e.ValidHigh == -1:
		return fmt.Sprintf(
			"arity mismatch: %s must be %d or more values, but is %d %s",
			e.What, e.ValidLow, e.Actual, values(e.Actual))
	case e.ValidHigh == e.ValidLow:
		return fmt.Sprintf(
			"arity mismatch: %s must be %d %s, but is %d %s",
			e.What, e.ValidLow, values(e.ValidLow), e.Actual, values(e.Actual))
	default:
		return fmt.Sprintf(
			"arity mismatch: %s must be %d to %d values, but is %d %s",
			e.What, e.ValidLow, e.ValidHigh, e.Actual, values(e.Actual))
	}
}

func values(n int) string {
	if n == 1 {
		return "value"
	}
	return "values"
}
