package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/stepwise-org/stepwise/intent"
)

// ============================================================================
// PROGRESS EVENTS — concept-tagged outcomes for progress tracking
// ============================================================================

// Event is a single concept-tagged outcome. The engine only emits; counting
// streaks and awarding anything is the consumer's business.
type Event struct {
	ID      string    `json:"id"`
	Op      intent.Op `json:"op"`
	Concept string    `json:"concept"`
	Success bool      `json:"success"`
	At      time.Time `json:"at"`
}

// opConcepts tags each operation with the concept it exercises. Solve is
// refined by degree below.
var opConcepts = map[intent.Op]string{
	intent.OpSolve:     "polynomial-equations",
	intent.OpGraph:     "graphing",
	intent.OpFactor:    "factoring",
	intent.OpSimplify:  "simplification",
	intent.OpExpand:    "expansion",
	intent.OpDerive:    "differentiation",
	intent.OpIntegrate: "integration",
	intent.OpProve:     "identities",
}

var solveConceptsByDegree = map[int]string{
	1: "linear-equations",
	2: "quadratic-equations",
	3: "cubic-equations",
}

// NewEvent tags a finished request. res may be nil when the solver failed;
// the event then records a non-success against the operation's concept.
func NewEvent(op intent.Op, res *Result) Event {
	concept := opConcepts[op]
	if res != nil && op == intent.OpSolve {
		if c, ok := solveConceptsByDegree[res.Degree]; ok {
			concept = c
		}
	}
	return Event{
		ID:      uuid.NewString(),
		Op:      op,
		Concept: concept,
		Success: res != nil,
		At:      time.Now().UTC(),
	}
}
