package engine

import (
	"fmt"
	"math"
	"math/big"
	"math/cmplx"
	"sort"

	"github.com/stepwise-org/stepwise/expr"
)

// ============================================================================
// ROOT FINDING — closed forms first, numerics last
// ============================================================================
// Dispatch order for a polynomial target:
//   degree 1          isolate
//   degree 2          discriminant closed form (real, double, or complex pair)
//   degree 4, odd=0   biquadratic substitution u = x^2
//   degree 3..6       rational root extraction + synthetic deflation, then
//                     recurse on the quotient
//   degree 3          depressed cubic (trig for three real, Cardano for one)
//   degree 4..6       bounded Newton scan fallback
// Anything above degree 6 is rejected.
// ============================================================================

const maxSolvableDegree = 6

// polynomial is a dense rational coefficient vector, index = degree.
type polynomial struct {
	coeffs []*big.Rat
	name   string
}

func newPolynomial(coeffs map[int]*big.Rat, name string) *polynomial {
	deg := 0
	for d, c := range coeffs {
		if c.Sign() != 0 && d > deg {
			deg = d
		}
	}
	dense := make([]*big.Rat, deg+1)
	for i := range dense {
		dense[i] = new(big.Rat)
		if c, ok := coeffs[i]; ok {
			dense[i].Set(c)
		}
	}
	return &polynomial{coeffs: dense, name: name}
}

func (p *polynomial) degree() int { return len(p.coeffs) - 1 }

func (p *polynomial) at(d int) *big.Rat {
	if d < 0 || d >= len(p.coeffs) {
		return new(big.Rat)
	}
	return p.coeffs[d]
}

func (p *polynomial) node() expr.Node {
	m := make(map[int]*big.Rat, len(p.coeffs))
	for d, c := range p.coeffs {
		m[d] = c
	}
	return expr.FromCoeffs(m, p.name)
}

func (p *polynomial) floats() []float64 {
	out := make([]float64, len(p.coeffs))
	for i, c := range p.coeffs {
		out[i], _ = c.Float64()
	}
	return out
}

// evalRat evaluates exactly by Horner's method.
func (p *polynomial) evalRat(x *big.Rat) *big.Rat {
	acc := new(big.Rat)
	for d := p.degree(); d >= 0; d-- {
		acc.Mul(acc, x)
		acc.Add(acc, p.coeffs[d])
	}
	return acc
}

// deflate divides out a known root by synthetic division. The remainder is
// zero by construction when root actually is one.
func (p *polynomial) deflate(root *big.Rat) *polynomial {
	n := p.degree()
	out := make([]*big.Rat, n)
	carry := new(big.Rat).Set(p.coeffs[n])
	out[n-1] = new(big.Rat).Set(carry)
	for d := n - 1; d >= 1; d-- {
		carry.Mul(carry, root)
		carry.Add(carry, p.coeffs[d])
		out[d-1] = new(big.Rat).Set(carry)
	}
	return &polynomial{coeffs: out, name: p.name}
}

// ============================================================================
// DISPATCH
// ============================================================================

func solvePoly(cfg *config, rec Recorder, p *polynomial) ([]Root, bool, []string, error) {
	switch deg := p.degree(); {
	case deg == 1:
		return solveLinear(rec, p)
	case deg == 2:
		return solveQuadratic(rec, p)
	case deg > maxSolvableDegree:
		return nil, false, nil, &UnsupportedFormError{
			Form:   p.node().String(),
			Detail: fmt.Sprintf("degree %d exceeds %d", deg, maxSolvableDegree),
		}
	}

	if p.degree() == 4 && p.at(1).Sign() == 0 && p.at(3).Sign() == 0 {
		return solveBiquadratic(cfg, rec, p)
	}

	if root, ok := p.rationalRoot(); ok {
		quotient := p.deflate(root)
		rec.Record(RuleDeflate, p.node(), quotient.node())
		rest, exact, warnings, err := solvePoly(cfg, rec, quotient)
		if err != nil {
			return nil, false, nil, err
		}
		return append([]Root{exactRoot(root)}, rest...), exact, warnings, nil
	}

	if p.degree() == 3 {
		return solveCubic(rec, p)
	}
	return newtonScan(cfg, p)
}

// ============================================================================
// CLOSED FORMS
// ============================================================================

func solveLinear(rec Recorder, p *polynomial) ([]Root, bool, []string, error) {
	root := new(big.Rat).Quo(p.at(0), p.at(1))
	root.Neg(root)
	rec.Record(RuleIsolate, p.node(), expr.FromRat(root))
	return []Root{exactRoot(root)}, true, nil, nil
}

func solveQuadratic(rec Recorder, p *polynomial) ([]Root, bool, []string, error) {
	a, b, c := p.at(2), p.at(1), p.at(0)
	poly := p.node()

	// disc = b^2 - 4ac, exactly.
	disc := new(big.Rat).Mul(b, b)
	fourAC := new(big.Rat).Mul(big.NewRat(4, 1), new(big.Rat).Mul(a, c))
	disc.Sub(disc, fourAC)
	rec.Annotate(RuleDiscriminant, poly, expr.FromRat(disc))

	twoA := new(big.Rat).Mul(big.NewRat(2, 1), a)
	negB := new(big.Rat).Neg(b)

	switch disc.Sign() {
	case 0:
		root := new(big.Rat).Quo(negB, twoA)
		rec.Record(RuleQuadraticFormula, poly, expr.FromRat(root))
		r := exactRoot(root)
		r.Multiplicity = 2
		return []Root{r}, true, nil, nil

	case 1:
		formula := expr.Div(
			expr.Sum(expr.FromRat(negB), expr.Fn("sqrt", expr.FromRat(disc))),
			expr.FromRat(twoA),
		)
		rec.Record(RuleQuadraticFormula, poly, formula)

		if sq, ok := ratSqrt(disc); ok {
			plus := new(big.Rat).Add(negB, sq)
			plus.Quo(plus, twoA)
			minus := new(big.Rat).Sub(negB, sq)
			minus.Quo(minus, twoA)
			return []Root{exactRoot(plus), exactRoot(minus)}, true, nil, nil
		}
		df, _ := disc.Float64()
		bf, _ := negB.Float64()
		tf, _ := twoA.Float64()
		sd := math.Sqrt(df)
		return []Root{realRoot((bf + sd) / tf), realRoot((bf - sd) / tf)}, false, nil, nil

	default:
		rec.Annotate(RuleComplexPair, poly, expr.FromRat(disc))
		df, _ := disc.Float64()
		bf, _ := negB.Float64()
		tf, _ := twoA.Float64()
		re := bf / tf
		im := math.Sqrt(-df) / math.Abs(tf)
		return []Root{complexRoot(re, im), complexRoot(re, -im)}, false, nil, nil
	}
}

// solveBiquadratic handles ax^4 + bx^2 + c via u = x^2.
func solveBiquadratic(cfg *config, rec Recorder, p *polynomial) ([]Root, bool, []string, error) {
	uPoly := &polynomial{
		coeffs: []*big.Rat{
			new(big.Rat).Set(p.at(0)),
			new(big.Rat).Set(p.at(2)),
			new(big.Rat).Set(p.at(4)),
		},
		name: "u",
	}
	rec.Record(RuleSubstitute, p.node(), uPoly.node())

	uRoots, exact, warnings, err := solvePoly(cfg, rec, uPoly)
	if err != nil {
		return nil, false, nil, err
	}

	var roots []Root
	for _, u := range uRoots {
		for m := 0; m < u.Multiplicity; m++ {
			switch {
			case u.Im == 0 && u.Re >= 0:
				if u.Exact != nil {
					if sq, ok := ratSqrt(u.Exact); ok {
						roots = append(roots, exactRoot(sq), exactRoot(new(big.Rat).Neg(sq)))
						continue
					}
				}
				s := math.Sqrt(u.Re)
				roots = append(roots, realRoot(s), realRoot(-s))
				exact = false
			case u.Im == 0:
				s := math.Sqrt(-u.Re)
				roots = append(roots, complexRoot(0, s), complexRoot(0, -s))
				exact = false
			default:
				s := cmplx.Sqrt(complex(u.Re, u.Im))
				roots = append(roots,
					complexRoot(real(s), imag(s)),
					complexRoot(-real(s), -imag(s)))
				exact = false
			}
		}
	}
	return roots, exact, warnings, nil
}

// solveCubic handles an irreducible cubic: depress, then the trigonometric
// form for three real roots or Cardano's form for one real root plus a
// complex pair. Irrational throughout, so the results are floats.
func solveCubic(rec Recorder, p *polynomial) ([]Root, bool, []string, error) {
	cf := p.floats()
	a := cf[2] / cf[3]
	b := cf[1] / cf[3]
	c := cf[0] / cf[3]

	// x = t - a/3 gives t^3 + pt + q.
	pp := b - a*a/3
	q := 2*a*a*a/27 - a*b/3 + c
	shift := a / 3

	depressed := expr.FromCoeffs(map[int]*big.Rat{
		3: big.NewRat(1, 1),
		1: floatRat(pp),
		0: floatRat(q),
	}, p.name)
	rec.Record(RuleDepress, p.node(), depressed)

	d := q*q/4 + pp*pp*pp/27
	if d > 0 {
		u := math.Cbrt(-q/2 + math.Sqrt(d))
		v := math.Cbrt(-q/2 - math.Sqrt(d))
		t := u + v
		real0 := t - shift

		// Deflate numerically to expose the conjugate pair.
		q2b := a + real0
		q2c := b + real0*q2b
		disc := q2b*q2b - 4*q2c
		rec.Annotate(RuleComplexPair, depressed, expr.FromRat(floatRat(disc)))
		re := -q2b / 2
		im := math.Sqrt(-disc) / 2
		return []Root{realRoot(real0), complexRoot(re, im), complexRoot(re, -im)}, false, nil, nil
	}

	// Three real roots (a repeated root when d == 0).
	m := 2 * math.Sqrt(-pp/3)
	theta := math.Acos(clamp(3*q/(pp*m), -1, 1)) / 3
	roots := make([]Root, 0, 3)
	for k := 0; k < 3; k++ {
		t := m * math.Cos(theta-2*math.Pi*float64(k)/3)
		roots = append(roots, realRoot(t-shift))
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].Re > roots[j].Re })
	return roots, false, nil, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func floatRat(v float64) *big.Rat {
	r := new(big.Rat).SetFloat64(v)
	if r == nil {
		return new(big.Rat)
	}
	return r
}

// ============================================================================
// RATIONAL ROOT TEST
// ============================================================================

// rationalRootBound caps divisor enumeration so pathological coefficients
// do not stall the solver.
var rationalRootBound = big.NewInt(1_000_000)

func (p *polynomial) rationalRoot() (*big.Rat, bool) {
	zero := new(big.Rat)
	if p.at(0).Sign() == 0 {
		return zero, true
	}

	// Clear denominators to an integer polynomial.
	lcm := big.NewInt(1)
	for _, c := range p.coeffs {
		g := new(big.Int).GCD(nil, nil, lcm, c.Denom())
		lcm.Mul(lcm, new(big.Int).Div(c.Denom(), g))
	}
	constant := new(big.Int).Abs(new(big.Int).Div(new(big.Int).Mul(p.at(0).Num(), lcm), p.at(0).Denom()))
	leading := new(big.Int).Abs(new(big.Int).Div(new(big.Int).Mul(p.at(p.degree()).Num(), lcm), p.at(p.degree()).Denom()))
	if constant.Cmp(rationalRootBound) > 0 || leading.Cmp(rationalRootBound) > 0 {
		return nil, false
	}

	for _, num := range divisors(constant.Int64()) {
		for _, den := range divisors(leading.Int64()) {
			for _, sign := range []int64{1, -1} {
				cand := big.NewRat(sign*num, den)
				if p.evalRat(cand).Sign() == 0 {
					return cand, true
				}
			}
		}
	}
	return nil, false
}

func divisors(n int64) []int64 {
	if n < 0 {
		n = -n
	}
	var out []int64
	for d := int64(1); d*d <= n; d++ {
		if n%d == 0 {
			out = append(out, d)
			if q := n / d; q != d {
				out = append(out, q)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ============================================================================
// NEWTON FALLBACK
// ============================================================================

// newtonScan hunts real roots of a polynomial with no closed form left,
// starting Newton's method from a grid of points. Complex roots are out of
// reach here, so the result can be partial.
func newtonScan(cfg *config, p *polynomial) ([]Root, bool, []string, error) {
	cf := p.floats()
	deriv := make([]float64, len(cf)-1)
	for d := 1; d < len(cf); d++ {
		deriv[d-1] = cf[d] * float64(d)
	}

	const gridPoints = 80
	const span = 100.0

	var found []float64
	best := math.NaN()
	bestVal := math.Inf(1)

	for g := 0; g <= gridPoints; g++ {
		x := -span + 2*span*float64(g)/gridPoints
		converged := false
		for i := 0; i < cfg.MaxIterations; i++ {
			fx := horner(cf, x)
			if math.Abs(fx) < cfg.Tolerance {
				converged = true
				break
			}
			if math.Abs(fx) < bestVal {
				bestVal = math.Abs(fx)
				best = x
			}
			dfx := horner(deriv, x)
			if dfx == 0 || math.IsNaN(dfx) {
				break
			}
			next := x - fx/dfx
			if math.IsNaN(next) || math.IsInf(next, 0) {
				break
			}
			x = next
		}
		if converged && !containsApprox(found, x, cfg.Tolerance*100) {
			found = append(found, x)
		}
	}

	if len(found) == 0 {
		nerr := &NoClosedFormError{Iterations: cfg.MaxIterations, Tolerance: cfg.Tolerance}
		if !math.IsNaN(best) {
			nerr.Best = []Root{realRoot(best)}
		}
		return nil, false, nil, nerr
	}

	sort.Float64s(found)
	roots := make([]Root, 0, len(found))
	for _, v := range found {
		roots = append(roots, realRoot(v))
	}
	warnings := []string{fmt.Sprintf(
		"roots are numeric approximations from Newton's method (tolerance %g)", cfg.Tolerance)}
	if len(found) < p.degree() {
		warnings = append(warnings,
			"complex or out-of-range roots are not listed")
	}
	return roots, false, warnings, nil
}

func horner(coeffs []float64, x float64) float64 {
	acc := 0.0
	for d := len(coeffs) - 1; d >= 0; d-- {
		acc = acc*x + coeffs[d]
	}
	return acc
}

func containsApprox(xs []float64, v, tol float64) bool {
	for _, x := range xs {
		if math.Abs(x-v) <= tol {
			return true
		}
	}
	return false
}
