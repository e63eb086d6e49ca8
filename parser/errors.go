package parser

import "fmt"

// ============================================================================
// PARSE ERRORS — typed failures, never silent drops
// ============================================================================

// Reason classifies why normalization rejected an input.
type Reason string

const (
	// ReasonUnknownToken: a word or symbol outside the vocabulary.
	ReasonUnknownToken Reason = "unknown-token"
	// ReasonUnbalancedGrouping: unmatched parenthesis.
	ReasonUnbalancedGrouping Reason = "unbalanced-grouping"
	// ReasonEmptyInput: nothing to parse after whitespace folding.
	ReasonEmptyInput Reason = "empty-input"
	// ReasonTrailingOperator: the input ends where an operand is required.
	ReasonTrailingOperator Reason = "trailing-operator"
	// ReasonBadNumber: a malformed numeric literal such as "1.2.3".
	ReasonBadNumber Reason = "bad-number"
	// ReasonStrayEquals: more than one equals sign, or one where an
	// expression (not an equation) was expected.
	ReasonStrayEquals Reason = "stray-equals"
)

// ParseError reports a rejected input together with the offending token.
type ParseError struct {
	Reason Reason
	Token  string
	Pos    int
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("parse error: %s", e.Reason)
	}
	return fmt.Sprintf("parse error: %s at %q (offset %d)", e.Reason, e.Token, e.Pos)
}

func parseErr(reason Reason, token string, pos int) *ParseError {
	return &ParseError{Reason: reason, Token: token, Pos: pos}
}
