package engine

import (
	"math/big"

	"github.com/stepwise-org/stepwise/expr"
)

// ============================================================================
// INTEGRATE — antiderivative pattern table
// ============================================================================
// Pattern-based, not symbolic-complete: constants, powers of the variable
// (including 1/x), sums, constant multiples, exponentials, and the basic
// function table. Anything else is an unsupported form. The constant of
// integration is omitted and flagged as a warning by the solver.
//
// Rules apply outside in over whole-expression states, with not-yet-resolved
// subtrees standing in as pending int(...)dx forms, so each step's After is
// the next step's Before.
// ============================================================================

// recordIntegrate records one rule application against the full working
// expression. The very first state is the bare target.
func recordIntegrate(rec Recorder, rule string, at site, n expr.Node, name string, root bool, replacement expr.Node) {
	before := n
	if !root {
		before = expr.Integ(n, name)
	}
	rec.Record(rule, at(before), at(replacement))
}

func integrateNode(n expr.Node, name string, rec Recorder, at site, root bool) (expr.Node, error) {
	x := expr.V(name)

	if !dependsOn(n, name) {
		out := expr.Product(n, x)
		recordIntegrate(rec, RuleIntegrateConstant, at, n, name, root, out)
		return out, nil
	}

	switch v := n.(type) {
	case *expr.Var:
		// x -> x^2/2
		out := expr.Product(expr.Rat(1, 2), expr.Power(x, expr.Int(2)))
		recordIntegrate(rec, RuleIntegratePower, at, n, name, root, out)
		return out, nil

	case *expr.Add:
		return integrateSum(v, name, rec, at, root)

	case *expr.Mul:
		// Pull the constant part out, integrate the rest.
		constant, variable := splitByDependence(v, name)
		if constant == nil {
			return nil, &UnsupportedFormError{Form: n.String(), Detail: "product of non-constant factors"}
		}
		pulled := expr.Product(constant, expr.Integ(variable, name))
		recordIntegrate(rec, RuleIntegrateScale, at, n, name, root, pulled)
		inner, err := integrateNode(variable, name, rec, func(y expr.Node) expr.Node {
			return at(expr.Product(constant, y))
		}, false)
		if err != nil {
			return nil, err
		}
		return expr.Product(constant, inner), nil

	case *expr.Pow:
		return integratePower(v, name, rec, at, root)

	case *expr.Call:
		return integrateCall(v, name, rec, at, root)
	}
	return nil, &UnsupportedFormError{Form: n.String(), Detail: "no antiderivative pattern"}
}

// integrateSum splits the integral over the terms, then resolves each
// pending term left to right so the recorded states chain.
func integrateSum(a *expr.Add, name string, rec Recorder, at site, root bool) (expr.Node, error) {
	terms := a.Terms()
	marked := make([]expr.Node, len(terms))
	for i, t := range terms {
		marked[i] = expr.Integ(t, name)
	}
	recordIntegrate(rec, RuleIntegrateSum, at, a, name, root, expr.Sum(marked...))

	done := make([]expr.Node, len(terms))
	for i, t := range terms {
		termSite := func(y expr.Node) expr.Node {
			parts := make([]expr.Node, len(terms))
			copy(parts, done[:i])
			parts[i] = y
			copy(parts[i+1:], marked[i+1:])
			return at(expr.Sum(parts...))
		}
		it, err := integrateNode(t, name, rec, termSite, false)
		if err != nil {
			return nil, err
		}
		done[i] = it
	}
	return expr.Sum(done...), nil
}

// splitByDependence separates a product into its constant and variable
// parts. A product with two or more variable factors returns nil.
func splitByDependence(m *expr.Mul, name string) (constant, variable expr.Node) {
	var constFactors, varFactors []expr.Node
	for _, f := range m.Factors() {
		if dependsOn(f, name) {
			varFactors = append(varFactors, f)
		} else {
			constFactors = append(constFactors, f)
		}
	}
	if len(varFactors) != 1 {
		return nil, nil
	}
	return expr.Product(constFactors...), varFactors[0]
}

func integratePower(p *expr.Pow, name string, rec Recorder, at site, root bool) (expr.Node, error) {
	x := expr.V(name)

	// x^n for constant n.
	if base, ok := p.Base().(*expr.Var); ok && base.Name() == name {
		exp, ok := p.Exp().(*expr.Num)
		if !ok {
			return nil, &UnsupportedFormError{Form: p.String(), Detail: "non-constant exponent"}
		}
		if exp.Rational().Cmp(big.NewRat(-1, 1)) == 0 {
			out := expr.Fn("ln", expr.Fn("abs", x))
			recordIntegrate(rec, RuleIntegrateLog, at, p, name, root, out)
			return out, nil
		}
		newExp := new(big.Rat).Add(exp.Rational(), big.NewRat(1, 1))
		out := expr.Product(
			expr.FromRat(new(big.Rat).Inv(newExp)),
			expr.Power(x, expr.FromRat(newExp)),
		)
		recordIntegrate(rec, RuleIntegratePower, at, p, name, root, out)
		return out, nil
	}

	// a^x for constant a.
	if !dependsOn(p.Base(), name) {
		if e, ok := p.Exp().(*expr.Var); ok && e.Name() == name {
			out := expr.Product(p, expr.Power(expr.Fn("ln", p.Base()), expr.Int(-1)))
			recordIntegrate(rec, RuleIntegrateFunction, at, p, name, root, out)
			return out, nil
		}
	}
	return nil, &UnsupportedFormError{Form: p.String(), Detail: "no antiderivative pattern"}
}

// antiderivatives for direct calls on the bare variable.
func integrateCall(c *expr.Call, name string, rec Recorder, at site, root bool) (expr.Node, error) {
	arg, ok := c.Arg().(*expr.Var)
	if !ok || arg.Name() != name {
		return nil, &UnsupportedFormError{Form: c.String(), Detail: "composite argument"}
	}
	x := expr.V(name)
	var out expr.Node
	switch c.FuncName() {
	case "sin":
		out = expr.Neg(expr.Fn("cos", x))
	case "cos":
		out = expr.Fn("sin", x)
	case "exp":
		out = expr.Fn("exp", x)
	case "sqrt":
		// x^(1/2) -> (2/3) x^(3/2)
		out = expr.Product(expr.Rat(2, 3), expr.Power(x, expr.Rat(3, 2)))
	default:
		return nil, &UnsupportedFormError{Form: c.String(), Detail: "no antiderivative pattern"}
	}
	recordIntegrate(rec, RuleIntegrateFunction, at, c, name, root, out)
	return out, nil
}
