package intent

import (
	"fmt"
	"strings"
)

// ============================================================================
// CLASSIFICATION ERRORS
// ============================================================================

// UnrecognizedIntentError reports an input with no recognizable verb phrase.
// The classifier never guesses an operation.
type UnrecognizedIntentError struct {
	Input string
}

func (e *UnrecognizedIntentError) Error() string {
	return fmt.Sprintf("unrecognized intent: no operation verb in %q", e.Input)
}

// AmbiguousVariableError reports an input whose target has several free
// variables and no explicit "with respect to" designation.
type AmbiguousVariableError struct {
	Variables []string
}

func (e *AmbiguousVariableError) Error() string {
	return fmt.Sprintf("ambiguous variable: candidates %s, say which one (e.g. \"with respect to %s\")",
		strings.Join(e.Variables, ", "), e.Variables[0])
}
