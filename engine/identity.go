package engine

import (
	"github.com/stepwise-org/stepwise/expr"
	"github.com/stepwise-org/stepwise/parser"
)

// ============================================================================
// PROVE — identity checking by normal forms
// ============================================================================

// proveIdentity expands and simplifies LHS - RHS. A zero residual means the
// two sides agree for every value of the variables. A nonzero residual is a
// verdict, not an error.
func proveIdentity(eq *parser.Equation, rec Recorder, limit int) (*IdentityOutcome, []string, error) {
	if !eq.Explicit {
		return nil, nil, &UnsupportedFormError{
			Form:   eq.LHS.String(),
			Detail: "an identity needs two sides joined by an equals sign",
		}
	}
	diff := expr.Sub(eq.LHS, eq.RHS)
	rec.Record(RuleMoveLeft, eq.LHS, diff)

	reduced, warnings := expandNode(diff, rec, limit)
	if num, ok := reduced.(*expr.Num); ok && num.IsZero() {
		return &IdentityOutcome{Holds: true}, warnings, nil
	}
	return &IdentityOutcome{Holds: false, Residual: reduced.String()}, warnings, nil
}
