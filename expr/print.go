package expr

import (
	"strings"
)

// ============================================================================
// CANONICAL INFIX PRINTING
// ============================================================================
// String output is the serialization boundary of the module: renderers and
// voice output consume it, and parser.Normalize accepts it back. Printing
// therefore only emits forms the tokenizer can re-read: implicit
// multiplication is used only after a numeric coefficient or before a
// parenthesized group, everything else gets an explicit '*'.
// ============================================================================

func (n *Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.Num().String() + "/" + n.val.Denom().String()
}

func (v *Var) String() string   { return v.name }
func (c *Const) String() string { return c.name }

func (a *Add) String() string {
	var b strings.Builder
	for i, t := range a.terms {
		neg, abs := splitSign(t)
		if i == 0 {
			if neg {
				b.WriteString("-")
			}
		} else {
			if neg {
				b.WriteString(" - ")
			} else {
				b.WriteString(" + ")
			}
		}
		b.WriteString(abs.String())
	}
	return b.String()
}

func (m *Mul) String() string {
	num, denom := splitQuotient(m)
	s := renderProduct(num)
	if len(denom) == 0 {
		return s
	}
	if s == "" {
		s = "1"
	}
	denomNode := rebuildProduct(denom)
	ds := denomNode.String()
	if needsGroupParens(denomNode) {
		ds = "(" + ds + ")"
	}
	return s + "/" + ds
}

func (p *Pow) String() string {
	// Negative numeric exponents render as quotients: x^-1 → "1/x".
	if e, ok := p.exp.(*Num); ok && e.IsNegative() {
		return "1/" + Power(p.base, &Num{val: e.Rational().Neg(e.val)}).String()
	}
	base := p.base.String()
	if needsBaseParens(p.base) {
		base = "(" + base + ")"
	}
	exp := p.exp.String()
	if needsExpParens(p.exp) {
		exp = "(" + exp + ")"
	}
	return base + "^" + exp
}

func (c *Call) String() string { return c.fn + "(" + c.arg.String() + ")" }

// ── print helpers ───────────────────────────────────────────────────────────

// splitSign separates a leading minus from a term so sums can print
// "a - b" instead of "a + -b".
func splitSign(n Node) (bool, Node) {
	switch v := n.(type) {
	case *Num:
		if v.IsNegative() {
			return true, &Num{val: v.Rational().Neg(v.val)}
		}
	case *Mul:
		if c, ok := v.factors[0].(*Num); ok && c.IsNegative() {
			rest := make([]Node, 0, len(v.factors))
			negated := &Num{val: c.Rational().Neg(c.val)}
			if !negated.IsOne() {
				rest = append(rest, negated)
			}
			rest = append(rest, v.factors[1:]...)
			return true, rebuildProduct(rest)
		}
	}
	return false, n
}

// splitQuotient separates the factors of a product into numerator and
// denominator. Factors with a negative numeric exponent go below the bar with
// the exponent negated.
func splitQuotient(m *Mul) (num, denom []Node) {
	for _, f := range m.factors {
		if p, ok := f.(*Pow); ok {
			if e, ok2 := p.exp.(*Num); ok2 && e.IsNegative() {
				denom = append(denom, Power(p.base, &Num{val: e.Rational().Neg(e.val)}))
				continue
			}
		}
		num = append(num, f)
	}
	return num, denom
}

// rebuildProduct reassembles a factor list without re-sorting semantics
// getting in the way, since the inputs are already canonical.
func rebuildProduct(factors []Node) Node {
	switch len(factors) {
	case 0:
		return Int(1)
	case 1:
		return factors[0]
	}
	return &Mul{factors: factors}
}

func renderProduct(factors []Node) string {
	var b strings.Builder
	for i, f := range factors {
		s := f.String()
		// A leading numeric coefficient never needs parens: "-2x" and
		// "1/2x" both re-parse to the same product under left
		// associativity. Sums always do.
		if _, isAdd := f.(*Add); isAdd {
			s = "(" + s + ")"
		} else if _, isNum := f.(*Num); isNum && i > 0 {
			s = "(" + s + ")"
		}
		if i == 0 {
			// A coefficient of -1 renders as a bare sign.
			if c, ok := f.(*Num); ok && c.val.Cmp(ratNegOne) == 0 && len(factors) > 1 {
				b.WriteString("-")
				continue
			}
			b.WriteString(s)
			continue
		}
		_, prevIsNum := factors[i-1].(*Num)
		startsWithDigit := s != "" && s[0] >= '0' && s[0] <= '9'
		if (prevIsNum && !startsWithDigit) || strings.HasPrefix(s, "(") {
			// Juxtaposition is unambiguous here: "2x", "3(x+1)".
			b.WriteString(s)
		} else {
			b.WriteString("*")
			b.WriteString(s)
		}
	}
	return b.String()
}

func needsGroupParens(n Node) bool {
	switch v := n.(type) {
	case *Add:
		return true
	case *Mul:
		return true
	case *Num:
		return v.IsNegative() || !v.IsInteger()
	}
	return false
}

func needsBaseParens(n Node) bool {
	switch v := n.(type) {
	case *Add, *Mul, *Pow:
		return true
	case *Num:
		return v.IsNegative() || !v.IsInteger()
	}
	return false
}

func needsExpParens(n Node) bool {
	switch v := n.(type) {
	case *Add, *Mul, *Pow:
		return true
	case *Num:
		return v.IsNegative() || !v.IsInteger()
	}
	return false
}

// ============================================================================
// LATEX PRINTING
// ============================================================================

func (n *Num) LaTeX() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	sign := ""
	p, q := n.val.Num().String(), n.val.Denom().String()
	if strings.HasPrefix(p, "-") {
		sign = "-"
		p = p[1:]
	}
	return sign + "\\frac{" + p + "}{" + q + "}"
}

func (v *Var) LaTeX() string { return v.name }

func (c *Const) LaTeX() string {
	if c.name == "pi" {
		return "\\pi"
	}
	return c.name
}

func (a *Add) LaTeX() string {
	var b strings.Builder
	for i, t := range a.terms {
		neg, abs := splitSign(t)
		if i == 0 {
			if neg {
				b.WriteString("-")
			}
		} else if neg {
			b.WriteString(" - ")
		} else {
			b.WriteString(" + ")
		}
		b.WriteString(abs.LaTeX())
	}
	return b.String()
}

func (m *Mul) LaTeX() string {
	num, denom := splitQuotient(m)
	if len(denom) > 0 {
		return "\\frac{" + rebuildProduct(num).LaTeX() + "}{" + rebuildProduct(denom).LaTeX() + "}"
	}
	var b strings.Builder
	for i, f := range num {
		s := f.LaTeX()
		if needsGroupParens(f) {
			if c, ok := f.(*Num); !ok || c.IsNegative() {
				s = "\\left(" + s + "\\right)"
			}
		}
		if i == 0 {
			if c, ok := f.(*Num); ok && c.val.Cmp(ratNegOne) == 0 && len(num) > 1 {
				b.WriteString("-")
				continue
			}
			b.WriteString(s)
			continue
		}
		if _, prevIsNum := num[i-1].(*Num); prevIsNum {
			b.WriteString(" ")
		} else {
			b.WriteString(" \\cdot ")
		}
		b.WriteString(s)
	}
	return b.String()
}

func (p *Pow) LaTeX() string {
	if e, ok := p.exp.(*Num); ok && e.IsNegative() {
		return "\\frac{1}{" + Power(p.base, &Num{val: e.Rational().Neg(e.val)}).LaTeX() + "}"
	}
	base := p.base.LaTeX()
	if needsBaseParens(p.base) {
		base = "\\left(" + base + "\\right)"
	}
	return base + "^{" + p.exp.LaTeX() + "}"
}

func (c *Call) LaTeX() string {
	switch c.fn {
	case "sqrt":
		return "\\sqrt{" + c.arg.LaTeX() + "}"
	case "abs":
		return "\\left|" + c.arg.LaTeX() + "\\right|"
	case "exp":
		return "e^{" + c.arg.LaTeX() + "}"
	case "sin", "cos", "tan", "ln":
		return "\\" + c.fn + "\\left(" + c.arg.LaTeX() + "\\right)"
	}
	return c.fn + "(" + c.arg.LaTeX() + ")"
}
