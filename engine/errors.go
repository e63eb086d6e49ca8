package engine

import "fmt"

// ============================================================================
// SOLVER ERRORS
// ============================================================================

// UnsupportedFormError reports a target the engine has no method for, such
// as a non-polynomial equation handed to solve or a product of two
// non-constant factors handed to integrate.
type UnsupportedFormError struct {
	Form   string // canonical serialization of the offending (sub)expression
	Detail string
}

func (e *UnsupportedFormError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("unsupported form: %s", e.Form)
	}
	return fmt.Sprintf("unsupported form: %s (%s)", e.Form, e.Detail)
}

// NoClosedFormError reports that the numeric fallback ran out of iterations
// before converging. Best carries the estimates at the point of giving up so
// a caller can still show something.
type NoClosedFormError struct {
	Iterations int
	Tolerance  float64
	Best       []Root
}

func (e *NoClosedFormError) Error() string {
	return fmt.Sprintf("no closed form: numeric fallback did not converge within %d iterations (tolerance %g)",
		e.Iterations, e.Tolerance)
}
