package expr

import (
	"fmt"
	"math/big"
)

// ============================================================================
// POLYNOMIAL VIEW — coefficient extraction over one variable
// ============================================================================
// The solver works on degree→coefficient maps. Extraction accepts sums of
// monomial terms (c, c*x^k, x^k, x); anything else (unexpanded products,
// functions of the variable, fractional or negative exponents) is rejected so
// the caller can expand first or fail with a typed error.
// ============================================================================

// Coeffs extracts polynomial coefficients of n in the named variable.
// The returned map has one entry per non-zero degree; a zero polynomial
// yields {0: 0}.
func Coeffs(n Node, name string) (map[int]*big.Rat, error) {
	out := map[int]*big.Rat{}
	terms := []Node{n}
	if a, ok := n.(*Add); ok {
		terms = a.terms
	}
	for _, t := range terms {
		deg, coeff, err := monomial(t, name)
		if err != nil {
			return nil, err
		}
		if existing, ok := out[deg]; ok {
			existing.Add(existing, coeff)
		} else {
			out[deg] = coeff
		}
	}
	if len(out) == 0 {
		out[0] = new(big.Rat)
	}
	return out, nil
}

// Degree reports the polynomial degree of n in the named variable, or an
// error for non-polynomial forms.
func Degree(n Node, name string) (int, error) {
	coeffs, err := Coeffs(n, name)
	if err != nil {
		return 0, err
	}
	max := 0
	for d, c := range coeffs {
		if c.Sign() != 0 && d > max {
			max = d
		}
	}
	return max, nil
}

// monomial decomposes a single term into (degree, coefficient).
func monomial(t Node, name string) (int, *big.Rat, error) {
	switch v := t.(type) {
	case *Num:
		return 0, v.Rational(), nil
	case *Const:
		return 0, nil, fmt.Errorf("expr: constant %s is not rational", v.name)
	case *Var:
		if v.name == name {
			return 1, big.NewRat(1, 1), nil
		}
		return 0, nil, fmt.Errorf("expr: term contains foreign variable %q", v.name)
	case *Pow:
		return powMonomial(v, name)
	case *Mul:
		deg := 0
		coeff := big.NewRat(1, 1)
		for _, f := range v.factors {
			fd, fc, err := monomial(f, name)
			if err != nil {
				return 0, nil, err
			}
			deg += fd
			coeff.Mul(coeff, fc)
		}
		return deg, coeff, nil
	}
	return 0, nil, fmt.Errorf("expr: non-polynomial term %s", t.String())
}

func powMonomial(p *Pow, name string) (int, *big.Rat, error) {
	base, ok := p.base.(*Var)
	if !ok || base.name != name {
		return 0, nil, fmt.Errorf("expr: non-polynomial power %s", p.String())
	}
	e, ok := p.exp.(*Num)
	if !ok || !e.IsInteger() || e.IsNegative() {
		return 0, nil, fmt.Errorf("expr: non-polynomial exponent in %s", p.String())
	}
	return int(e.val.Num().Int64()), big.NewRat(1, 1), nil
}

// FromCoeffs rebuilds a canonical polynomial expression from a coefficient
// map. The inverse of Coeffs up to like-term combination.
func FromCoeffs(coeffs map[int]*big.Rat, name string) Node {
	terms := make([]Node, 0, len(coeffs))
	for deg, c := range coeffs {
		if c.Sign() == 0 {
			continue
		}
		switch deg {
		case 0:
			terms = append(terms, FromRat(c))
		case 1:
			terms = append(terms, Product(FromRat(c), V(name)))
		default:
			terms = append(terms, Product(FromRat(c), Power(V(name), Int(int64(deg)))))
		}
	}
	return Sum(terms...)
}
