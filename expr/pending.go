package expr

// ============================================================================
// PENDING OPERATORS — unevaluated derivative and integral forms
// ============================================================================
// These nodes never come from the parser and never evaluate. The solver
// builds them to present a whole expression mid-derivation: a subtree whose
// rule has not fired yet appears wrapped in its pending operator.
// ============================================================================

// Deriv is the unevaluated derivative of its operand with respect to a
// variable.
type Deriv struct {
	arg  Node
	name string
}

// D builds an unevaluated derivative node.
func D(arg Node, name string) *Deriv { return &Deriv{arg: arg, name: name} }

func (d *Deriv) isNode()      {}
func (d *Deriv) Arg() Node    { return d.arg }
func (d *Deriv) Name() string { return d.name }

func (d *Deriv) Equal(other Node) bool {
	o, ok := other.(*Deriv)
	return ok && d.name == o.name && d.arg.Equal(o.arg)
}

func (d *Deriv) String() string {
	return "d/d" + d.name + "(" + d.arg.String() + ")"
}

func (d *Deriv) LaTeX() string {
	return "\\frac{d}{d" + d.name + "}\\left(" + d.arg.LaTeX() + "\\right)"
}

// Integral is the unevaluated integral of its operand with respect to a
// variable.
type Integral struct {
	arg  Node
	name string
}

// Integ builds an unevaluated integral node.
func Integ(arg Node, name string) *Integral { return &Integral{arg: arg, name: name} }

func (in *Integral) isNode()      {}
func (in *Integral) Arg() Node    { return in.arg }
func (in *Integral) Name() string { return in.name }

func (in *Integral) Equal(other Node) bool {
	o, ok := other.(*Integral)
	return ok && in.name == o.name && in.arg.Equal(o.arg)
}

func (in *Integral) String() string {
	return "int(" + in.arg.String() + ")d" + in.name
}

func (in *Integral) LaTeX() string {
	return "\\int " + in.arg.LaTeX() + "\\,d" + in.name
}
