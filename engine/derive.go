package engine

import (
	"github.com/stepwise-org/stepwise/expr"
)

// ============================================================================
// DERIVE — structural differentiation
// ============================================================================
// Rules apply outside in, one step per application, over whole-expression
// states: a subtree whose rule has not fired yet appears as a pending
// d/dx(...) form, so each step's After is the next step's Before.
// ============================================================================

// site embeds a subexpression into the full expression being derived, so a
// step can be recorded against the whole state rather than the subtree.
type site func(expr.Node) expr.Node

// recordDerive records one rule application. The state before the first rule
// is the bare target; after that, the subtree under rewrite stands in its
// pending form.
func recordDerive(rec Recorder, rule string, at site, n expr.Node, name string, root bool, replacement expr.Node) {
	before := n
	if !root {
		before = expr.D(n, name)
	}
	rec.Record(rule, at(before), at(replacement))
}

func deriveNode(n expr.Node, name string, rec Recorder, at site, root bool) (expr.Node, error) {
	switch v := n.(type) {
	case *expr.Num, *expr.Const:
		recordDerive(rec, RuleDeriveConstant, at, n, name, root, expr.Int(0))
		return expr.Int(0), nil

	case *expr.Var:
		if v.Name() != name {
			recordDerive(rec, RuleDeriveConstant, at, n, name, root, expr.Int(0))
			return expr.Int(0), nil
		}
		recordDerive(rec, RuleDeriveVariable, at, n, name, root, expr.Int(1))
		return expr.Int(1), nil

	case *expr.Add:
		return deriveSum(v, name, rec, at, root)

	case *expr.Mul:
		return deriveProduct(v, name, rec, at, root)

	case *expr.Pow:
		return derivePower(v, name, rec, at, root)

	case *expr.Call:
		return deriveCall(v, name, rec, at, root)
	}
	return nil, &UnsupportedFormError{Form: n.String(), Detail: "cannot differentiate"}
}

// deriveSum differentiates term by term, then resolves each pending term
// left to right so the recorded states chain.
func deriveSum(a *expr.Add, name string, rec Recorder, at site, root bool) (expr.Node, error) {
	terms := a.Terms()
	marked := make([]expr.Node, len(terms))
	for i, t := range terms {
		marked[i] = expr.D(t, name)
	}
	recordDerive(rec, RuleDeriveSum, at, a, name, root, expr.Sum(marked...))

	derived := make([]expr.Node, len(terms))
	for i, t := range terms {
		termSite := func(x expr.Node) expr.Node {
			parts := make([]expr.Node, len(terms))
			copy(parts, derived[:i])
			parts[i] = x
			copy(parts[i+1:], marked[i+1:])
			return at(expr.Sum(parts...))
		}
		dt, err := deriveNode(t, name, rec, termSite, false)
		if err != nil {
			return nil, err
		}
		derived[i] = dt
	}
	return expr.Sum(derived...), nil
}

// deriveProduct applies the product rule across all factors:
// (f g h)' = f'gh + fg'h + fgh'. Factors free of the variable contribute
// nothing and fall out through the zero annihilation in Sum.
func deriveProduct(m *expr.Mul, name string, rec Recorder, at site, root bool) (expr.Node, error) {
	factors := m.Factors()
	var depIdx []int
	for i, f := range factors {
		if dependsOn(f, name) {
			depIdx = append(depIdx, i)
		}
	}
	if len(depIdx) == 0 {
		recordDerive(rec, RuleDeriveConstant, at, m, name, root, expr.Int(0))
		return expr.Int(0), nil
	}

	// termFor is one product-rule summand, with x standing in for the
	// derivative of factor j.
	termFor := func(j int, x expr.Node) expr.Node {
		others := make([]expr.Node, 0, len(factors))
		others = append(others, factors[:j]...)
		others = append(others, factors[j+1:]...)
		return expr.Product(append(others, x)...)
	}

	rule := RuleDeriveProduct
	if hasNegativePower(factors) {
		rule = RuleDeriveQuotient
	}
	marked := make([]expr.Node, len(depIdx))
	for k, j := range depIdx {
		marked[k] = termFor(j, expr.D(factors[j], name))
	}
	recordDerive(rec, rule, at, m, name, root, expr.Sum(marked...))

	derived := make([]expr.Node, len(depIdx))
	for k, j := range depIdx {
		factorSite := func(x expr.Node) expr.Node {
			parts := make([]expr.Node, len(depIdx))
			copy(parts, derived[:k])
			parts[k] = termFor(j, x)
			copy(parts[k+1:], marked[k+1:])
			return at(expr.Sum(parts...))
		}
		df, err := deriveNode(factors[j], name, rec, factorSite, false)
		if err != nil {
			return nil, err
		}
		derived[k] = termFor(j, df)
	}
	return expr.Sum(derived...), nil
}

// derivePower handles u^c for constant c (power rule with chain) and c^u
// for constant base (exponential rule). A variable in both positions has no
// rule here.
func derivePower(p *expr.Pow, name string, rec Recorder, at site, root bool) (expr.Node, error) {
	baseDep := dependsOn(p.Base(), name)
	expDep := dependsOn(p.Exp(), name)

	switch {
	case baseDep && !expDep:
		newExp := expr.Sub(p.Exp(), expr.Int(1))
		shell := func(x expr.Node) expr.Node {
			return expr.Product(p.Exp(), expr.Power(p.Base(), newExp), x)
		}
		recordDerive(rec, powerRuleName(p), at, p, name, root, shell(expr.D(p.Base(), name)))
		du, err := deriveNode(p.Base(), name, rec, func(x expr.Node) expr.Node { return at(shell(x)) }, false)
		if err != nil {
			return nil, err
		}
		return shell(du), nil

	case !baseDep && expDep:
		shell := func(x expr.Node) expr.Node {
			return expr.Product(p, expr.Fn("ln", p.Base()), x)
		}
		recordDerive(rec, RuleDeriveExp, at, p, name, root, shell(expr.D(p.Exp(), name)))
		du, err := deriveNode(p.Exp(), name, rec, func(x expr.Node) expr.Node { return at(shell(x)) }, false)
		if err != nil {
			return nil, err
		}
		return shell(du), nil

	case !baseDep && !expDep:
		recordDerive(rec, RuleDeriveConstant, at, p, name, root, expr.Int(0))
		return expr.Int(0), nil
	}
	return nil, &UnsupportedFormError{Form: p.String(), Detail: "variable in both base and exponent"}
}

// powerRuleName distinguishes the plain power rule from the quotient shape
// u^-n that the parser produces for division.
func powerRuleName(p *expr.Pow) string {
	if num, ok := p.Exp().(*expr.Num); ok && num.IsNegative() {
		return RuleDeriveQuotient
	}
	return RuleDerivePower
}

// callDerivative maps a function to its derivative shape in terms of the
// inner argument u.
func callDerivative(fn string, u expr.Node) (expr.Node, bool) {
	switch fn {
	case "sin":
		return expr.Fn("cos", u), true
	case "cos":
		return expr.Neg(expr.Fn("sin", u)), true
	case "tan":
		return expr.Power(expr.Fn("cos", u), expr.Int(-2)), true
	case "ln":
		return expr.Power(u, expr.Int(-1)), true
	case "sqrt":
		return expr.Div(expr.Int(1), expr.Product(expr.Int(2), expr.Fn("sqrt", u))), true
	case "exp":
		return expr.Fn("exp", u), true
	}
	return nil, false
}

func deriveCall(c *expr.Call, name string, rec Recorder, at site, root bool) (expr.Node, error) {
	if !dependsOn(c, name) {
		recordDerive(rec, RuleDeriveConstant, at, c, name, root, expr.Int(0))
		return expr.Int(0), nil
	}
	outer, ok := callDerivative(c.FuncName(), c.Arg())
	if !ok {
		return nil, &UnsupportedFormError{Form: c.String(), Detail: "no derivative rule"}
	}
	shell := func(x expr.Node) expr.Node { return expr.Product(outer, x) }
	recordDerive(rec, RuleDeriveChain, at, c, name, root, shell(expr.D(c.Arg(), name)))
	du, err := deriveNode(c.Arg(), name, rec, func(x expr.Node) expr.Node { return at(shell(x)) }, false)
	if err != nil {
		return nil, err
	}
	return shell(du), nil
}

func dependsOn(n expr.Node, name string) bool {
	for _, v := range expr.FreeVars(n) {
		if v == name {
			return true
		}
	}
	return false
}

func hasNegativePower(factors []expr.Node) bool {
	for _, f := range factors {
		if p, ok := f.(*expr.Pow); ok {
			if num, ok := p.Exp().(*expr.Num); ok && num.IsNegative() {
				return true
			}
		}
	}
	return false
}
