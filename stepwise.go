// Package stepwise turns spoken or typed algebra into worked derivations.
// An algebra tutor core: phrase in, answer plus every rewrite step out.
//
// Usage:
//
//	import "github.com/stepwise-org/stepwise/tutor"
//
//	t := tutor.New()
//	resp, err := t.Ask(ctx, "solve x squared plus three x minus ten equals negative five x", "")
//
// The pipeline normalizes the phrase into an expression tree (parser),
// classifies what is being asked (intent), and runs the requested
// operation (engine), recording each rewrite as a step. Graph requests
// return a render-ready chart config instead of roots.
//
// Everything is computed locally with exact rational arithmetic where a
// closed form exists; the engine never calls any external service.
package stepwise
