// Package expr provides immutable, canonical symbolic expression trees.
//
// Every constructor canonicalizes its result: nested sums and products are
// flattened, numeric operands are folded into a single exact rational,
// identity elements are dropped, and commutative operand lists are sorted by
// a deterministic ordering. Structurally equal mathematical expressions
// therefore compare Equal, and String output is stable across runs.
//
// Trees are never mutated after construction. All transformations elsewhere
// in the module build new trees.
package expr

import (
	"math/big"
	"sort"
)

// ============================================================================
// NODE — the expression tree interface
// ============================================================================

// Node is a single node of an expression tree.
type Node interface {
	// String renders the canonical infix serialization. The output is
	// re-parseable: parsing it yields a structurally equal tree.
	String() string
	// LaTeX renders the node for math-aware frontends.
	LaTeX() string
	// Equal reports structural equality with another node.
	Equal(other Node) bool

	isNode()
}

// ============================================================================
// NUM — exact rational constant
// ============================================================================

// Num is an exact rational constant backed by math/big.Rat.
type Num struct {
	val *big.Rat
}

// Int builds a numeric node from an integer.
func Int(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }

// Rat builds a numeric node p/q. It panics when q is zero.
func Rat(p, q int64) *Num {
	if q == 0 {
		panic("expr: zero denominator")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

// FromRat wraps an existing rational (copied, the node stays immutable).
func FromRat(r *big.Rat) *Num { return &Num{val: new(big.Rat).Set(r)} }

func (n *Num) isNode() {}

// Rational returns a copy of the underlying rational value.
func (n *Num) Rational() *big.Rat { return new(big.Rat).Set(n.val) }

// Float64 returns the closest float64 value.
func (n *Num) Float64() float64 { f, _ := n.val.Float64(); return f }

func (n *Num) IsZero() bool     { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool      { return n.val.Cmp(ratOne) == 0 }
func (n *Num) IsNegative() bool { return n.val.Sign() < 0 }
func (n *Num) IsInteger() bool  { return n.val.IsInt() }

func (n *Num) Equal(other Node) bool {
	o, ok := other.(*Num)
	return ok && n.val.Cmp(o.val) == 0
}

var (
	ratOne    = big.NewRat(1, 1)
	ratNegOne = big.NewRat(-1, 1)
)

// ============================================================================
// VAR — free variable
// ============================================================================

// Var is a free variable. Variable names are single letters by convention;
// the parser never produces anything longer.
type Var struct {
	name string
}

// V builds a variable node.
func V(name string) *Var { return &Var{name: name} }

func (v *Var) isNode()      {}
func (v *Var) Name() string { return v.name }

func (v *Var) Equal(other Node) bool {
	o, ok := other.(*Var)
	return ok && v.name == o.name
}

// ============================================================================
// CONST — named mathematical constant
// ============================================================================

// Const is a named constant such as pi. Unlike Var it is not a free variable
// and evaluates to a fixed value.
type Const struct {
	name  string
	value float64
}

// Known constants. The parser's vocabulary maps onto exactly these.
var (
	constPi = &Const{name: "pi", value: 3.141592653589793}
	constE  = &Const{name: "e", value: 2.718281828459045}
)

// Pi returns the constant pi node.
func Pi() *Const { return constPi }

// Euler returns the constant e node.
func Euler() *Const { return constE }

// ConstByName looks up a named constant.
func ConstByName(name string) (*Const, bool) {
	switch name {
	case "pi":
		return constPi, true
	case "e":
		return constE, true
	}
	return nil, false
}

func (c *Const) isNode()          {}
func (c *Const) Name() string     { return c.name }
func (c *Const) Value() float64   { return c.value }
func (c *Const) Equal(o Node) bool {
	oc, ok := o.(*Const)
	return ok && c.name == oc.name
}

// ============================================================================
// ADD — sum of terms
// ============================================================================

// Add is a flattened, sorted sum with at least two terms.
type Add struct {
	terms []Node
}

func (a *Add) isNode() {}

// Terms returns the ordered term list. Callers must not modify it.
func (a *Add) Terms() []Node { return a.terms }

func (a *Add) Equal(other Node) bool {
	o, ok := other.(*Add)
	if !ok || len(a.terms) != len(o.terms) {
		return false
	}
	for i := range a.terms {
		if !a.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

// Sum builds a canonical sum: flattens nested sums, folds numeric terms,
// drops zeros, and sorts the remaining terms by descending degree.
func Sum(terms ...Node) Node {
	flat := make([]Node, 0, len(terms))
	numSum := new(big.Rat)
	for _, t := range terms {
		switch v := t.(type) {
		case *Add:
			for _, inner := range v.terms {
				if n, ok := inner.(*Num); ok {
					numSum.Add(numSum, n.val)
				} else {
					flat = append(flat, inner)
				}
			}
		case *Num:
			numSum.Add(numSum, v.val)
		default:
			flat = append(flat, t)
		}
	}
	if numSum.Sign() != 0 {
		flat = append(flat, &Num{val: numSum})
	}
	switch len(flat) {
	case 0:
		return Int(0)
	case 1:
		return flat[0]
	}
	sortTerms(flat)
	return &Add{terms: flat}
}

// Sub builds a - b.
func Sub(a, b Node) Node { return Sum(a, Neg(b)) }

// ============================================================================
// MUL — product of factors
// ============================================================================

// Mul is a flattened, sorted product with at least two factors. A numeric
// coefficient, when present, is always the first factor.
type Mul struct {
	factors []Node
}

func (m *Mul) isNode() {}

// Factors returns the ordered factor list. Callers must not modify it.
func (m *Mul) Factors() []Node { return m.factors }

func (m *Mul) Equal(other Node) bool {
	o, ok := other.(*Mul)
	if !ok || len(m.factors) != len(o.factors) {
		return false
	}
	for i := range m.factors {
		if !m.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

// Product builds a canonical product: flattens nested products, folds numeric
// factors, annihilates on zero, drops ones, and sorts the rest.
func Product(factors ...Node) Node {
	flat := make([]Node, 0, len(factors))
	coeff := new(big.Rat).SetInt64(1)
	for _, f := range factors {
		switch v := f.(type) {
		case *Mul:
			for _, inner := range v.factors {
				if n, ok := inner.(*Num); ok {
					coeff.Mul(coeff, n.val)
				} else {
					flat = append(flat, inner)
				}
			}
		case *Num:
			coeff.Mul(coeff, v.val)
		default:
			flat = append(flat, f)
		}
	}
	if coeff.Sign() == 0 {
		return Int(0)
	}
	sortFactors(flat)
	if coeff.Cmp(ratOne) != 0 {
		flat = append([]Node{&Num{val: coeff}}, flat...)
	}
	switch len(flat) {
	case 0:
		return Int(1)
	case 1:
		return flat[0]
	}
	return &Mul{factors: flat}
}

// Neg builds -n.
func Neg(n Node) Node { return Product(Int(-1), n) }

// Div builds a/b as a * b^-1.
func Div(a, b Node) Node { return Product(a, Power(b, Int(-1))) }

// ============================================================================
// POW — exponentiation
// ============================================================================

// Pow is base^exp.
type Pow struct {
	base Node
	exp  Node
}

func (p *Pow) isNode()    {}
func (p *Pow) Base() Node { return p.base }
func (p *Pow) Exp() Node  { return p.exp }

func (p *Pow) Equal(other Node) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

// smallPowLimit bounds numeric exponent folding so canonicalization stays
// cheap even for adversarial input like 7^300.
const smallPowLimit = 16

// Power builds a canonical power. x^1 collapses to x, x^0 to 1, and small
// integer powers of rationals are folded exactly.
func Power(base, exp Node) Node {
	if e, ok := exp.(*Num); ok {
		if e.IsZero() {
			return Int(1)
		}
		if e.IsOne() {
			return base
		}
		if b, ok2 := base.(*Num); ok2 && e.IsInteger() {
			n := e.val.Num().Int64()
			abs := n
			if abs < 0 {
				abs = -abs
			}
			if abs <= smallPowLimit && !(b.IsZero() && n < 0) {
				out := new(big.Rat).SetInt64(1)
				for i := int64(0); i < abs; i++ {
					out.Mul(out, b.val)
				}
				if n < 0 {
					out.Inv(out)
				}
				return &Num{val: out}
			}
		}
	}
	return &Pow{base: base, exp: exp}
}

// ============================================================================
// CALL — fixed function application
// ============================================================================

// Functions the tree supports. The parser rejects anything else.
var knownFunctions = map[string]bool{
	"sqrt": true, "sin": true, "cos": true, "tan": true,
	"ln": true, "abs": true, "exp": true,
}

// KnownFunction reports whether name is in the supported function set.
func KnownFunction(name string) bool { return knownFunctions[name] }

// Call is the application of a known single-argument function.
type Call struct {
	fn  string
	arg Node
}

// Fn builds a function application node. It panics on an unknown function
// name; callers validate via KnownFunction first.
func Fn(name string, arg Node) *Call {
	if !knownFunctions[name] {
		panic("expr: unknown function " + name)
	}
	return &Call{fn: name, arg: arg}
}

func (c *Call) isNode()        {}
func (c *Call) FuncName() string { return c.fn }
func (c *Call) Arg() Node      { return c.arg }

func (c *Call) Equal(other Node) bool {
	o, ok := other.(*Call)
	return ok && c.fn == o.fn && c.arg.Equal(o.arg)
}

// ============================================================================
// CANONICAL ORDERING
// ============================================================================
// Sums sort by descending polynomial degree, ties broken by the canonical
// string; products sort non-numeric factors by string. Numeric coefficients
// are handled by the constructors (folded to one leading/trailing Num).
// ============================================================================

func sortTerms(terms []Node) {
	sort.SliceStable(terms, func(i, j int) bool {
		di, dj := termDegree(terms[i]), termDegree(terms[j])
		if di != dj {
			return di > dj
		}
		return terms[i].String() < terms[j].String()
	})
}

func sortFactors(factors []Node) {
	sort.SliceStable(factors, func(i, j int) bool {
		return factors[i].String() < factors[j].String()
	})
}

// termDegree is the ordering heuristic for sum terms: the total degree of the
// term treating every variable as degree one and any integer power as its
// exponent. Non-polynomial shapes count as degree one.
func termDegree(n Node) int {
	switch v := n.(type) {
	case *Num:
		return 0
	case *Const:
		return 0
	case *Var:
		return 1
	case *Pow:
		if e, ok := v.exp.(*Num); ok && e.IsInteger() {
			d := int(e.val.Num().Int64())
			if d > 0 {
				return d * termDegree(v.base)
			}
		}
		return 1
	case *Mul:
		total := 0
		for _, f := range v.factors {
			total += termDegree(f)
		}
		return total
	default:
		return 1
	}
}
