package engine

import (
	"fmt"
	"math/big"

	"github.com/stepwise-org/stepwise/expr"
)

// ============================================================================
// SIMPLIFY — fixed-point rewriting over an ordered rule list
// ============================================================================
// Each pass applies the first rule that changes the tree and records one
// step, then restarts from the top of the list, so earlier rules always get
// another look at the rewritten tree. The loop stops at a fixed point or at
// the configured rewrite ceiling. Simplification is idempotent: a tree at
// fixed point is unchanged by another call.
// ============================================================================

type rewriteRule struct {
	name string
	fn   func(expr.Node) expr.Node
}

var simplifyRules = []rewriteRule{
	{RuleEvalFunction, evalFunctions},
	{RuleCollapsePower, collapsePowers},
	{RuleMergeExponents, mergeExponents},
	{RuleCombineTerms, combineLikeTerms},
}

// simplifyNode drives the tree to a fixed point. The returned warnings are
// non-fatal; hitting the rewrite ceiling leaves a partially simplified tree.
func simplifyNode(n expr.Node, rec Recorder, limit int) (expr.Node, []string) {
	cur := n
	for pass := 0; pass < limit; pass++ {
		changed := false
		for _, rule := range simplifyRules {
			next := rule.fn(cur)
			if !next.Equal(cur) {
				rec.Record(rule.name, cur, next)
				cur = next
				changed = true
				break
			}
		}
		if !changed {
			return cur, nil
		}
	}
	return cur, []string{fmt.Sprintf("simplification stopped after %d rewrite passes", limit)}
}

// rebuild walks post-order, reconstructing every interior node through the
// canonicalizing constructors, then applies f at each node on the way up.
func rebuild(n expr.Node, f func(expr.Node) expr.Node) expr.Node {
	switch v := n.(type) {
	case *expr.Add:
		terms := make([]expr.Node, 0, len(v.Terms()))
		for _, t := range v.Terms() {
			terms = append(terms, rebuild(t, f))
		}
		return f(expr.Sum(terms...))
	case *expr.Mul:
		factors := make([]expr.Node, 0, len(v.Factors()))
		for _, fac := range v.Factors() {
			factors = append(factors, rebuild(fac, f))
		}
		return f(expr.Product(factors...))
	case *expr.Pow:
		return f(expr.Power(rebuild(v.Base(), f), rebuild(v.Exp(), f)))
	case *expr.Call:
		return f(expr.Fn(v.FuncName(), rebuild(v.Arg(), f)))
	default:
		return f(n)
	}
}

// ============================================================================
// RULES
// ============================================================================

// evalFunctions folds function calls at constant arguments: sqrt of a
// perfect square, ln(1), sin(0), cos(pi) and friends.
func evalFunctions(n expr.Node) expr.Node {
	return rebuild(n, func(m expr.Node) expr.Node {
		call, ok := m.(*expr.Call)
		if !ok {
			return m
		}
		switch arg := call.Arg().(type) {
		case *expr.Num:
			if out, ok := foldCall(call.FuncName(), arg); ok {
				return out
			}
		case *expr.Const:
			if out, ok := foldConstCall(call.FuncName(), arg.Name()); ok {
				return out
			}
		}
		return m
	})
}

func foldCall(fn string, arg *expr.Num) (expr.Node, bool) {
	r := arg.Rational()
	switch fn {
	case "abs":
		return expr.FromRat(new(big.Rat).Abs(r)), true
	case "sqrt":
		if r.Sign() < 0 {
			return nil, false
		}
		if root, ok := ratSqrt(r); ok {
			return expr.FromRat(root), true
		}
	case "ln":
		if r.Cmp(big.NewRat(1, 1)) == 0 {
			return expr.Int(0), true
		}
	case "sin", "tan":
		if r.Sign() == 0 {
			return expr.Int(0), true
		}
	case "cos":
		if r.Sign() == 0 {
			return expr.Int(1), true
		}
	case "exp":
		if r.Sign() == 0 {
			return expr.Int(1), true
		}
	}
	return nil, false
}

func foldConstCall(fn, constName string) (expr.Node, bool) {
	switch {
	case fn == "ln" && constName == "e":
		return expr.Int(1), true
	case fn == "sin" && constName == "pi":
		return expr.Int(0), true
	case fn == "cos" && constName == "pi":
		return expr.Int(-1), true
	case fn == "tan" && constName == "pi":
		return expr.Int(0), true
	}
	return nil, false
}

// ratSqrt returns the exact square root of a non-negative rational, when
// both numerator and denominator are perfect squares.
func ratSqrt(r *big.Rat) (*big.Rat, bool) {
	num, ok := intSqrt(r.Num())
	if !ok {
		return nil, false
	}
	den, ok := intSqrt(r.Denom())
	if !ok {
		return nil, false
	}
	return new(big.Rat).SetFrac(num, den), true
}

func intSqrt(n *big.Int) (*big.Int, bool) {
	if n.Sign() < 0 {
		return nil, false
	}
	root := new(big.Int).Sqrt(n)
	if new(big.Int).Mul(root, root).Cmp(n) != 0 {
		return nil, false
	}
	return root, true
}

// collapsePowers rewrites (b^a)^n to b^(a*n) for integer outer exponents.
// Non-integer outer exponents stay put: (x^2)^(1/2) is |x|, not x.
func collapsePowers(n expr.Node) expr.Node {
	return rebuild(n, func(m expr.Node) expr.Node {
		outer, ok := m.(*expr.Pow)
		if !ok {
			return m
		}
		exp, ok := outer.Exp().(*expr.Num)
		if !ok || !exp.IsInteger() {
			return m
		}
		inner, ok := outer.Base().(*expr.Pow)
		if !ok {
			return m
		}
		return expr.Power(inner.Base(), expr.Product(inner.Exp(), exp))
	})
}

// mergeExponents combines factors sharing a base: x*x^2 becomes x^3, and
// (x+1)*(x+1)^-1 cancels to 1.
func mergeExponents(n expr.Node) expr.Node {
	return rebuild(n, func(m expr.Node) expr.Node {
		mul, ok := m.(*expr.Mul)
		if !ok {
			return m
		}
		type group struct {
			base expr.Node
			exps []expr.Node
		}
		var coeffs []expr.Node
		order := []string{}
		groups := map[string]*group{}
		for _, f := range mul.Factors() {
			if _, isNum := f.(*expr.Num); isNum {
				coeffs = append(coeffs, f)
				continue
			}
			base, exp := baseExp(f)
			key := base.String()
			g, seen := groups[key]
			if !seen {
				g = &group{base: base}
				groups[key] = g
				order = append(order, key)
			}
			g.exps = append(g.exps, exp)
		}
		rebuilt := coeffs
		for _, key := range order {
			g := groups[key]
			rebuilt = append(rebuilt, expr.Power(g.base, expr.Sum(g.exps...)))
		}
		return expr.Product(rebuilt...)
	})
}

func baseExp(f expr.Node) (expr.Node, expr.Node) {
	if p, ok := f.(*expr.Pow); ok {
		return p.Base(), p.Exp()
	}
	return f, expr.Int(1)
}

// combineLikeTerms merges addends sharing a variable part: 2x+3x becomes 5x.
func combineLikeTerms(n expr.Node) expr.Node {
	return rebuild(n, func(m expr.Node) expr.Node {
		add, ok := m.(*expr.Add)
		if !ok {
			return m
		}
		type bucket struct {
			rest  expr.Node // nil for the pure-number bucket
			coeff *big.Rat
		}
		order := []string{}
		buckets := map[string]*bucket{}
		for _, t := range add.Terms() {
			coeff, rest := splitCoeff(t)
			key := ""
			if rest != nil {
				key = rest.String()
			}
			b, seen := buckets[key]
			if !seen {
				b = &bucket{rest: rest, coeff: new(big.Rat)}
				buckets[key] = b
				order = append(order, key)
			}
			b.coeff.Add(b.coeff, coeff)
		}
		terms := make([]expr.Node, 0, len(order))
		for _, key := range order {
			b := buckets[key]
			if b.rest == nil {
				terms = append(terms, expr.FromRat(b.coeff))
				continue
			}
			terms = append(terms, expr.Product(expr.FromRat(b.coeff), b.rest))
		}
		return expr.Sum(terms...)
	})
}

// splitCoeff splits a term into its rational coefficient and the rest of
// the product. A pure number yields a nil rest.
func splitCoeff(t expr.Node) (*big.Rat, expr.Node) {
	switch v := t.(type) {
	case *expr.Num:
		return v.Rational(), nil
	case *expr.Mul:
		factors := v.Factors()
		if num, ok := factors[0].(*expr.Num); ok {
			return num.Rational(), expr.Product(factors[1:]...)
		}
	}
	return big.NewRat(1, 1), t
}
