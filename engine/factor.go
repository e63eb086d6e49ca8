package engine

import (
	"math/big"

	"github.com/stepwise-org/stepwise/expr"
)

// ============================================================================
// FACTOR — fixed pattern priority
// ============================================================================
// Patterns are tried in a fixed order on every factor produced so far:
//   1. greatest common factor
//   2. difference of squares
//   3. perfect square trinomial
//   4. quadratic trinomial with rational roots
//   5. factor by grouping (four terms)
// An expression no pattern matches is returned unfactored with a warning,
// never an error.
// ============================================================================

const noFactorWarning = "no factoring pattern matched"

// factorExpr factors as far as the pattern table reaches. The returned
// slice multiplies back to the input.
func factorExpr(n expr.Node, name string, rec Recorder) ([]expr.Node, []string) {
	queue := []expr.Node{n}
	if m, ok := n.(*expr.Mul); ok {
		queue = m.Factors()
	}
	var done []expr.Node
	split := false

	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		parts, rule := factorOnce(f, name)
		if parts == nil {
			done = append(done, f)
			continue
		}
		// Steps show the whole product at each state, not the lone
		// factor under rewrite, so consecutive steps chain.
		before := factorState(done, []expr.Node{f}, queue)
		after := factorState(done, parts, queue)
		rec.Record(rule, before, after)
		split = true
		queue = append(queue, parts...)
	}

	if !split {
		return done, []string{noFactorWarning}
	}
	return done, nil
}

// factorState is the full working product at one point of the loop, with
// current standing in for the factor under rewrite.
func factorState(done, current, queue []expr.Node) expr.Node {
	all := make([]expr.Node, 0, len(done)+len(current)+len(queue))
	all = append(all, done...)
	all = append(all, current...)
	all = append(all, queue...)
	return expr.Product(all...)
}

// factorOnce applies the first matching pattern, returning the new factors
// and the rule name, or nil when nothing matches.
func factorOnce(n expr.Node, name string) ([]expr.Node, string) {
	add, ok := n.(*expr.Add)
	if !ok {
		return nil, ""
	}
	if parts := factorCommon(add); parts != nil {
		return parts, RuleFactorCommon
	}
	if name != "" {
		if parts := factorDiffSquares(n, name); parts != nil {
			return parts, RuleFactorDiffSquares
		}
		if parts := factorPerfectSquare(n, name); parts != nil {
			return parts, RuleFactorPerfectSquare
		}
		if parts := factorQuadratic(n, name); parts != nil {
			return parts, RuleFactorQuadratic
		}
	}
	if parts := factorGrouping(add); parts != nil {
		return parts, RuleFactorGrouping
	}
	return nil, ""
}

// ============================================================================
// PATTERN 1 — greatest common factor
// ============================================================================

type factorPart struct {
	base expr.Node
	exp  *big.Rat
}

// termFactorization splits one addend into a rational coefficient and a
// keyed factor map. Non-numeric exponents are treated as atomic factors.
func termFactorization(t expr.Node) (*big.Rat, map[string]factorPart) {
	parts := map[string]factorPart{}
	coeff := big.NewRat(1, 1)

	addFactor := func(f expr.Node) {
		base, exp := baseExp(f)
		e := big.NewRat(1, 1)
		if num, ok := exp.(*expr.Num); ok {
			e = num.Rational()
		} else {
			base = f // atomic: x^y counts as a whole
		}
		key := base.String()
		if prev, ok := parts[key]; ok {
			e = new(big.Rat).Add(prev.exp, e)
		}
		parts[key] = factorPart{base: base, exp: e}
	}

	switch v := t.(type) {
	case *expr.Num:
		coeff = v.Rational()
	case *expr.Mul:
		for _, f := range v.Factors() {
			if num, ok := f.(*expr.Num); ok {
				coeff.Mul(coeff, num.Rational())
				continue
			}
			addFactor(f)
		}
	default:
		addFactor(t)
	}
	return coeff, parts
}

// ratGCD is gcd(p1,p2)/lcm(q1,q2), the usual extension to rationals.
func ratGCD(a, b *big.Rat) *big.Rat {
	num := new(big.Int).GCD(nil, nil, new(big.Int).Abs(a.Num()), new(big.Int).Abs(b.Num()))
	g := new(big.Int).GCD(nil, nil, a.Denom(), b.Denom())
	den := new(big.Int).Mul(a.Denom(), new(big.Int).Div(b.Denom(), g))
	return new(big.Rat).SetFrac(num, den)
}

// commonOf extracts the shared factor of a term list. Nil when the only
// common factor is 1.
func commonOf(terms []expr.Node) (expr.Node, []expr.Node) {
	coeffs := make([]*big.Rat, len(terms))
	maps := make([]map[string]factorPart, len(terms))
	for i, t := range terms {
		coeffs[i], maps[i] = termFactorization(t)
		if coeffs[i].Sign() == 0 {
			return nil, nil
		}
	}

	gcd := new(big.Rat).Abs(coeffs[0])
	for _, c := range coeffs[1:] {
		gcd = ratGCD(gcd, new(big.Rat).Abs(c))
	}

	// Shared bases at their minimum exponent.
	shared := map[string]factorPart{}
	for key, part := range maps[0] {
		min := part.exp
		presentInAll := true
		for _, m := range maps[1:] {
			other, ok := m[key]
			if !ok || other.exp.Sign() <= 0 || min.Sign() <= 0 {
				presentInAll = false
				break
			}
			if other.exp.Cmp(min) < 0 {
				min = other.exp
			}
		}
		if presentInAll && min.Sign() > 0 {
			shared[key] = factorPart{base: part.base, exp: min}
		}
	}

	one := big.NewRat(1, 1)
	if gcd.Cmp(one) == 0 && len(shared) == 0 {
		return nil, nil
	}

	commonFactors := []expr.Node{expr.FromRat(gcd)}
	for _, part := range shared {
		commonFactors = append(commonFactors, expr.Power(part.base, expr.FromRat(part.exp)))
	}
	common := expr.Product(commonFactors...)

	remainders := make([]expr.Node, len(terms))
	for i := range terms {
		fs := []expr.Node{expr.FromRat(new(big.Rat).Quo(coeffs[i], gcd))}
		for key, part := range maps[i] {
			exp := part.exp
			if sh, ok := shared[key]; ok {
				exp = new(big.Rat).Sub(exp, sh.exp)
			}
			if exp.Sign() != 0 {
				fs = append(fs, expr.Power(part.base, expr.FromRat(exp)))
			}
		}
		remainders[i] = expr.Product(fs...)
	}
	return common, remainders
}

func factorCommon(add *expr.Add) []expr.Node {
	common, remainders := commonOf(add.Terms())
	if common == nil {
		return nil
	}
	if num, ok := common.(*expr.Num); ok && num.IsOne() {
		return nil
	}
	return []expr.Node{common, expr.Sum(remainders...)}
}

// ============================================================================
// POLYNOMIAL PATTERNS
// ============================================================================

// polyInVar reads the expression as a polynomial, or nil.
func polyInVar(n expr.Node, name string) *polynomial {
	coeffs, err := expr.Coeffs(n, name)
	if err != nil {
		return nil
	}
	return newPolynomial(coeffs, name)
}

// factorDiffSquares matches a x^2k - c with square a and c.
func factorDiffSquares(n expr.Node, name string) []expr.Node {
	p := polyInVar(n, name)
	if p == nil || p.degree() < 2 || p.degree()%2 != 0 {
		return nil
	}
	k := p.degree() / 2
	lead, low := p.at(p.degree()), p.at(0)
	if lead.Sign() <= 0 || low.Sign() >= 0 {
		return nil
	}
	for d := 1; d < p.degree(); d++ {
		if p.at(d).Sign() != 0 {
			return nil
		}
	}
	s, ok := ratSqrt(lead)
	if !ok {
		return nil
	}
	t, ok := ratSqrt(new(big.Rat).Neg(low))
	if !ok {
		return nil
	}
	xk := expr.Power(expr.V(name), expr.Int(int64(k)))
	left := expr.Sub(expr.Product(expr.FromRat(s), xk), expr.FromRat(t))
	right := expr.Sum(expr.Product(expr.FromRat(s), xk), expr.FromRat(t))
	return []expr.Node{left, right}
}

// factorPerfectSquare matches a x^2 + b x + c with b^2 = 4ac and square a, c.
func factorPerfectSquare(n expr.Node, name string) []expr.Node {
	p := polyInVar(n, name)
	if p == nil || p.degree() != 2 {
		return nil
	}
	a, b, c := p.at(2), p.at(1), p.at(0)
	if a.Sign() <= 0 || c.Sign() <= 0 || b.Sign() == 0 {
		return nil
	}
	bb := new(big.Rat).Mul(b, b)
	fourAC := new(big.Rat).Mul(big.NewRat(4, 1), new(big.Rat).Mul(a, c))
	if bb.Cmp(fourAC) != 0 {
		return nil
	}
	s, ok := ratSqrt(a)
	if !ok {
		return nil
	}
	t, ok := ratSqrt(c)
	if !ok {
		return nil
	}
	if b.Sign() < 0 {
		t.Neg(t)
	}
	binomial := expr.Sum(expr.Product(expr.FromRat(s), expr.V(name)), expr.FromRat(t))
	return []expr.Node{expr.Power(binomial, expr.Int(2))}
}

// factorQuadratic splits a quadratic with rational roots into linear
// factors: a(x - r1)(x - r2).
func factorQuadratic(n expr.Node, name string) []expr.Node {
	p := polyInVar(n, name)
	if p == nil || p.degree() != 2 {
		return nil
	}
	a, b, c := p.at(2), p.at(1), p.at(0)
	disc := new(big.Rat).Mul(b, b)
	disc.Sub(disc, new(big.Rat).Mul(big.NewRat(4, 1), new(big.Rat).Mul(a, c)))
	if disc.Sign() < 0 {
		return nil
	}
	sq, ok := ratSqrt(disc)
	if !ok {
		return nil
	}
	twoA := new(big.Rat).Mul(big.NewRat(2, 1), a)
	negB := new(big.Rat).Neg(b)
	r1 := new(big.Rat).Quo(new(big.Rat).Add(negB, sq), twoA)
	r2 := new(big.Rat).Quo(new(big.Rat).Sub(negB, sq), twoA)

	x := expr.V(name)
	factors := []expr.Node{
		expr.Sub(x, expr.FromRat(r1)),
		expr.Sub(x, expr.FromRat(r2)),
	}
	if a.Cmp(big.NewRat(1, 1)) != 0 {
		factors = append([]expr.Node{expr.FromRat(a)}, factors...)
	}
	return factors
}

// ============================================================================
// PATTERN 5 — grouping
// ============================================================================

// factorGrouping tries the three pairings of a four-term sum, looking for
// pairs whose shared-factor remainders coincide.
func factorGrouping(add *expr.Add) []expr.Node {
	terms := add.Terms()
	if len(terms) != 4 {
		return nil
	}
	pairings := [][2][2]int{
		{{0, 1}, {2, 3}},
		{{0, 2}, {1, 3}},
		{{0, 3}, {1, 2}},
	}
	for _, pairing := range pairings {
		pairA := []expr.Node{terms[pairing[0][0]], terms[pairing[0][1]]}
		pairB := []expr.Node{terms[pairing[1][0]], terms[pairing[1][1]]}
		g1, r1 := commonOf(pairA)
		g2, r2 := commonOf(pairB)
		if g1 == nil && g2 == nil {
			continue
		}
		// One pair may share only a trivial factor, as in
		// x^3 + x^2 + x + 1 = x^2(x + 1) + 1(x + 1).
		if g1 == nil {
			g1, r1 = expr.Int(1), pairA
		}
		if g2 == nil {
			g2, r2 = expr.Int(1), pairB
		}
		sum1 := expr.Sum(r1...)
		sum2 := expr.Sum(r2...)
		if !sum1.Equal(sum2) {
			continue
		}
		return []expr.Node{sum1, expr.Sum(g1, g2)}
	}
	return nil
}
