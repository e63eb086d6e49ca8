package expr

import (
	"fmt"
	"math"
	"sort"
)

// ============================================================================
// SUBSTITUTION & EVALUATION
// ============================================================================

// Substitute replaces every occurrence of the named variable with repl,
// returning a new canonical tree.
func Substitute(n Node, name string, repl Node) Node {
	switch v := n.(type) {
	case *Num, *Const:
		return n
	case *Var:
		if v.name == name {
			return repl
		}
		return n
	case *Add:
		terms := make([]Node, len(v.terms))
		for i, t := range v.terms {
			terms[i] = Substitute(t, name, repl)
		}
		return Sum(terms...)
	case *Mul:
		factors := make([]Node, len(v.factors))
		for i, f := range v.factors {
			factors[i] = Substitute(f, name, repl)
		}
		return Product(factors...)
	case *Pow:
		return Power(Substitute(v.base, name, repl), Substitute(v.exp, name, repl))
	case *Call:
		return Fn(v.fn, Substitute(v.arg, name, repl))
	}
	return n
}

// EvalAt numerically evaluates the tree with the given variable bindings.
// It fails when a free variable is unbound or a function argument leaves the
// real domain (sqrt of a negative, ln of a non-positive).
func EvalAt(n Node, vars map[string]float64) (float64, error) {
	switch v := n.(type) {
	case *Num:
		return v.Float64(), nil
	case *Const:
		return v.value, nil
	case *Var:
		val, ok := vars[v.name]
		if !ok {
			return 0, fmt.Errorf("expr: unbound variable %q", v.name)
		}
		return val, nil
	case *Add:
		total := 0.0
		for _, t := range v.terms {
			f, err := EvalAt(t, vars)
			if err != nil {
				return 0, err
			}
			total += f
		}
		return total, nil
	case *Mul:
		total := 1.0
		for _, f := range v.factors {
			fv, err := EvalAt(f, vars)
			if err != nil {
				return 0, err
			}
			total *= fv
		}
		return total, nil
	case *Pow:
		base, err := EvalAt(v.base, vars)
		if err != nil {
			return 0, err
		}
		exp, err := EvalAt(v.exp, vars)
		if err != nil {
			return 0, err
		}
		return math.Pow(base, exp), nil
	case *Call:
		arg, err := EvalAt(v.arg, vars)
		if err != nil {
			return 0, err
		}
		return evalCall(v.fn, arg)
	}
	return 0, fmt.Errorf("expr: cannot evaluate %T", n)
}

func evalCall(fn string, arg float64) (float64, error) {
	switch fn {
	case "sqrt":
		if arg < 0 {
			return 0, fmt.Errorf("expr: sqrt of negative value %g", arg)
		}
		return math.Sqrt(arg), nil
	case "sin":
		return math.Sin(arg), nil
	case "cos":
		return math.Cos(arg), nil
	case "tan":
		return math.Tan(arg), nil
	case "ln":
		if arg <= 0 {
			return 0, fmt.Errorf("expr: ln of non-positive value %g", arg)
		}
		return math.Log(arg), nil
	case "abs":
		return math.Abs(arg), nil
	case "exp":
		return math.Exp(arg), nil
	}
	return 0, fmt.Errorf("expr: unknown function %q", fn)
}

// ============================================================================
// FREE VARIABLES
// ============================================================================

// FreeVars returns the sorted set of free variable names in the tree.
// Named constants (pi, e) do not count.
func FreeVars(n Node) []string {
	seen := map[string]bool{}
	collectVars(n, seen)
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func collectVars(n Node, seen map[string]bool) {
	switch v := n.(type) {
	case *Var:
		seen[v.name] = true
	case *Add:
		for _, t := range v.terms {
			collectVars(t, seen)
		}
	case *Mul:
		for _, f := range v.factors {
			collectVars(f, seen)
		}
	case *Pow:
		collectVars(v.base, seen)
		collectVars(v.exp, seen)
	case *Call:
		collectVars(v.arg, seen)
	case *Deriv:
		collectVars(v.arg, seen)
	case *Integral:
		collectVars(v.arg, seen)
	}
}
