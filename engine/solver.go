// Package engine executes classified requests against expression trees and
// records every rewrite on the way, so a frontend can show the derivation,
// not just the answer. Closed forms are preferred throughout; numerics are
// a last resort and always flagged.
package engine

import (
	"context"

	"github.com/stepwise-org/stepwise/expr"
	"github.com/stepwise-org/stepwise/intent"
	"github.com/stepwise-org/stepwise/parser"
)

// Solve executes one classified request. The error taxonomy is small and
// typed: UnsupportedFormError for targets outside the engine's methods,
// NoClosedFormError when the numeric fallback gives up. Everything else is
// a Result, possibly with warnings.
func Solve(ctx context.Context, req *intent.Request, opts ...Option) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := applyOptions(opts)
	rec := cfg.Recorder

	res := &Result{Op: req.Op, Exact: true, Input: inputText(req.Target)}

	var err error
	switch req.Op {
	case intent.OpSolve:
		err = runSolve(cfg, rec, req, res)
	case intent.OpGraph:
		err = runGraph(cfg, rec, req, res)
	case intent.OpFactor:
		runFactor(rec, req, res)
	case intent.OpSimplify:
		runSimplify(cfg, rec, req, res)
	case intent.OpExpand:
		runExpand(cfg, rec, req, res)
	case intent.OpDerive:
		err = runDerive(cfg, rec, req, res)
	case intent.OpIntegrate:
		err = runIntegrate(cfg, rec, req, res)
	case intent.OpProve:
		res.Identity, res.Warnings, err = proveIdentity(req.Target, rec, cfg.RewriteLimit)
	default:
		err = &UnsupportedFormError{Form: string(req.Op), Detail: "unknown operation"}
	}
	if err != nil {
		return nil, err
	}

	if sr, ok := rec.(*StepRecorder); ok {
		res.Steps = sr.Steps()
	}
	return res, nil
}

// inputText is the canonical serialization of the classified target.
func inputText(eq *parser.Equation) string {
	if eq.Explicit {
		return eq.LHS.String() + " = " + eq.RHS.String()
	}
	return eq.LHS.String()
}

// leftSide rewrites "LHS = RHS" into "LHS - RHS = 0", recording the move
// when there was anything to move.
func leftSide(eq *parser.Equation, rec Recorder) expr.Node {
	if num, ok := eq.RHS.(*expr.Num); ok && num.IsZero() {
		return eq.LHS
	}
	moved := expr.Sub(eq.LHS, eq.RHS)
	rec.Record(RuleMoveLeft, eq.LHS, moved)
	return moved
}

// variableOr falls back to x for requests over constant targets.
func variableOr(v string) string {
	if v == "" {
		return "x"
	}
	return v
}

// ============================================================================
// PER-OPERATION DRIVERS
// ============================================================================

func runSolve(cfg *config, rec Recorder, req *intent.Request, res *Result) error {
	lhs := leftSide(req.Target, rec)
	coeffs, err := expr.Coeffs(lhs, variableOr(req.Variable))
	if err != nil {
		return &UnsupportedFormError{Form: lhs.String(), Detail: "not a polynomial in " + variableOr(req.Variable)}
	}
	p := newPolynomial(coeffs, variableOr(req.Variable))
	res.Degree = p.degree()

	// Folding into coefficient form may have combined like terms; surface
	// that as its own step so the chain of states stays unbroken.
	if poly := p.node(); !poly.Equal(lhs) {
		rec.Record(RuleCombineTerms, lhs, poly)
	}

	if p.degree() == 0 {
		if p.at(0).Sign() == 0 {
			res.Warnings = append(res.Warnings, "every value of the variable satisfies the equation")
		} else {
			res.Warnings = append(res.Warnings, "no value of the variable satisfies the equation")
		}
		return nil
	}

	roots, exact, warnings, err := solvePoly(cfg, rec, p)
	if err != nil {
		return err
	}
	res.Roots = roots
	res.Exact = exact
	res.Warnings = append(res.Warnings, warnings...)
	return nil
}

func runGraph(cfg *config, rec Recorder, req *intent.Request, res *Result) error {
	lhs := leftSide(req.Target, rec)
	lo, hi := cfg.GraphLo, cfg.GraphHi
	if req.Bounds != nil {
		lo, hi = req.Bounds[0], req.Bounds[1]
		if lo > hi {
			lo, hi = hi, lo
		}
	}
	chart, err := buildChart(cfg, lhs, req.Variable, lo, hi)
	if err != nil {
		return err
	}
	res.Chart = chart
	res.Exact = false
	return nil
}

func runFactor(rec Recorder, req *intent.Request, res *Result) {
	lhs := leftSide(req.Target, rec)
	factors, warnings := factorExpr(lhs, req.Variable, rec)
	res.Factors = factors
	res.FactorTexts = make([]string, len(factors))
	for i, f := range factors {
		res.FactorTexts[i] = f.String()
	}
	res.setExpression(expr.Product(factors...))
	res.Warnings = append(res.Warnings, warnings...)
}

func runSimplify(cfg *config, rec Recorder, req *intent.Request, res *Result) {
	out, warnings := simplifyNode(leftSide(req.Target, rec), rec, cfg.RewriteLimit)
	res.setExpression(out)
	res.Warnings = append(res.Warnings, warnings...)
}

func runExpand(cfg *config, rec Recorder, req *intent.Request, res *Result) {
	out, warnings := expandNode(leftSide(req.Target, rec), rec, cfg.RewriteLimit)
	res.setExpression(out)
	res.Warnings = append(res.Warnings, warnings...)
}

func runDerive(cfg *config, rec Recorder, req *intent.Request, res *Result) error {
	d, err := deriveNode(leftSide(req.Target, rec), variableOr(req.Variable), rec, func(x expr.Node) expr.Node { return x }, true)
	if err != nil {
		return err
	}
	out, warnings := simplifyNode(d, rec, cfg.RewriteLimit)
	res.setExpression(out)
	res.Warnings = append(res.Warnings, warnings...)
	return nil
}

func runIntegrate(cfg *config, rec Recorder, req *intent.Request, res *Result) error {
	in, err := integrateNode(leftSide(req.Target, rec), variableOr(req.Variable), rec, func(x expr.Node) expr.Node { return x }, true)
	if err != nil {
		return err
	}
	out, warnings := simplifyNode(in, rec, cfg.RewriteLimit)
	res.setExpression(out)
	res.Warnings = append(res.Warnings, warnings...)
	res.Warnings = append(res.Warnings, "an arbitrary constant of integration is omitted")
	return nil
}
