package engine

import (
	"github.com/stepwise-org/stepwise/expr"
)

// ============================================================================
// EXPAND — distribute products over sums
// ============================================================================

// expandNode distributes products over sums and multiplies out positive
// integer powers of sums, one recorded rewrite per pass, then hands the
// result to simplify to collect like terms.
func expandNode(n expr.Node, rec Recorder, limit int) (expr.Node, []string) {
	cur := n
	pass := 0
	for ; pass < limit; pass++ {
		next := expandPowers(cur)
		if !next.Equal(cur) {
			rec.Record(RuleExpandPower, cur, next)
			cur = next
			continue
		}
		next = distribute(cur)
		if !next.Equal(cur) {
			rec.Record(RuleDistribute, cur, next)
			cur = next
			continue
		}
		break
	}
	out, warnings := simplifyNode(cur, rec, limit)
	if pass == limit {
		warnings = append(warnings, "expansion stopped at the rewrite ceiling")
	}
	return out, warnings
}

// maxExpandExponent bounds how large a power of a sum gets multiplied out.
const maxExpandExponent = 12

// expandPowers rewrites (a+b)^n as repeated multiplication for small
// positive integer n, leaving one distribute pass to do the rest.
func expandPowers(n expr.Node) expr.Node {
	return rebuild(n, func(m expr.Node) expr.Node {
		p, ok := m.(*expr.Pow)
		if !ok {
			return m
		}
		if _, isSum := p.Base().(*expr.Add); !isSum {
			return m
		}
		exp, ok := p.Exp().(*expr.Num)
		if !ok || !exp.IsInteger() || exp.IsNegative() || exp.IsZero() {
			return m
		}
		k := exp.Rational().Num().Int64()
		if k < 2 || k > maxExpandExponent {
			return m
		}
		factors := make([]expr.Node, k)
		for i := range factors {
			factors[i] = p.Base()
		}
		return expr.Product(factors...)
	})
}

// distribute pushes one level of products into sums: a(b+c) becomes ab+ac.
func distribute(n expr.Node) expr.Node {
	return rebuild(n, func(m expr.Node) expr.Node {
		mul, ok := m.(*expr.Mul)
		if !ok {
			return m
		}
		factors := mul.Factors()
		sumAt := -1
		for i, f := range factors {
			if _, isSum := f.(*expr.Add); isSum {
				sumAt = i
				break
			}
		}
		if sumAt < 0 {
			return m
		}
		sum := factors[sumAt].(*expr.Add)
		rest := make([]expr.Node, 0, len(factors)-1)
		rest = append(rest, factors[:sumAt]...)
		rest = append(rest, factors[sumAt+1:]...)
		terms := make([]expr.Node, 0, len(sum.Terms()))
		for _, t := range sum.Terms() {
			withTerm := append(append([]expr.Node{}, rest...), t)
			terms = append(terms, expr.Product(withTerm...))
		}
		return expr.Sum(terms...)
	})
}
