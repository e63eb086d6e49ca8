package parser

import (
	"math/big"

	"github.com/stepwise-org/stepwise/expr"
)

// ============================================================================
// NORMALIZER — raw phrase → canonical expression tree
// ============================================================================
// Pure: the only state is the immutable vocabulary table injected at
// construction, so one Normalizer serves concurrent requests without locks.
//
// Precedence, tightest first: exponent (right-assoc) > unary minus >
// multiply/divide > add/subtract. Parentheses group explicitly.
// ============================================================================

// Normalizer turns raw input text into canonical expression trees.
type Normalizer struct {
	vocab *Vocabulary
}

// NewNormalizer builds a Normalizer around a vocabulary table.
func NewNormalizer(vocab *Vocabulary) *Normalizer {
	return &Normalizer{vocab: vocab}
}

// Default returns a Normalizer over the embedded vocabulary.
func Default() *Normalizer { return NewNormalizer(DefaultVocabulary()) }

// Equation is a normalized input. Explicit reports whether the input carried
// an equals sign; when it did not, RHS is zero.
type Equation struct {
	LHS      expr.Node
	RHS      expr.Node
	Explicit bool
}

// Normalize parses a single expression. An equals sign is an error here;
// use NormalizeEquation for solver-style input.
func (n *Normalizer) Normalize(raw string) (expr.Node, error) {
	tokens, err := Tokenize(raw, n.vocab)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, parseErr(ReasonEmptyInput, "", 0)
	}
	for _, t := range tokens {
		if t.isOp("=") {
			return nil, parseErr(ReasonStrayEquals, "=", t.Pos)
		}
	}
	return parseAll(tokens)
}

// NormalizeEquation parses input that may contain a single equals sign.
// "x^2 - 4 = 0" and "x^2 - 4" normalize to the same Equation apart from
// the Explicit flag.
func (n *Normalizer) NormalizeEquation(raw string) (*Equation, error) {
	tokens, err := Tokenize(raw, n.vocab)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, parseErr(ReasonEmptyInput, "", 0)
	}

	split := -1
	for i, t := range tokens {
		if t.isOp("=") {
			if split >= 0 {
				return nil, parseErr(ReasonStrayEquals, "=", t.Pos)
			}
			split = i
		}
	}
	if split < 0 {
		lhs, err := parseAll(tokens)
		if err != nil {
			return nil, err
		}
		return &Equation{LHS: lhs, RHS: expr.Int(0)}, nil
	}
	if split == 0 || split == len(tokens)-1 {
		return nil, parseErr(ReasonEmptyInput, "=", tokens[split].Pos)
	}
	lhs, err := parseAll(tokens[:split])
	if err != nil {
		return nil, err
	}
	rhs, err := parseAll(tokens[split+1:])
	if err != nil {
		return nil, err
	}
	return &Equation{LHS: lhs, RHS: rhs, Explicit: true}, nil
}

// ============================================================================
// RECURSIVE DESCENT
// ============================================================================

type tokenReader struct {
	tokens []Token
	i      int
}

func (r *tokenReader) peek() (Token, bool) {
	if r.i >= len(r.tokens) {
		return Token{}, false
	}
	return r.tokens[r.i], true
}

func (r *tokenReader) next() (Token, bool) {
	t, ok := r.peek()
	if ok {
		r.i++
	}
	return t, ok
}

func (r *tokenReader) last() Token { return r.tokens[len(r.tokens)-1] }

func parseAll(tokens []Token) (expr.Node, error) {
	r := &tokenReader{tokens: tokens}
	node, err := parseSum(r)
	if err != nil {
		return nil, err
	}
	if t, ok := r.peek(); ok {
		if t.isOp(")") {
			return nil, parseErr(ReasonUnbalancedGrouping, ")", t.Pos)
		}
		return nil, parseErr(ReasonUnknownToken, t.Raw, t.Pos)
	}
	return node, nil
}

func parseSum(r *tokenReader) (expr.Node, error) {
	left, err := parseProduct(r)
	if err != nil {
		return nil, err
	}
	for {
		t, ok := r.peek()
		if !ok || !(t.isOp("+") || t.isOp("-")) {
			break
		}
		r.next()
		right, err := parseProduct(r)
		if err != nil {
			return nil, err
		}
		if t.Raw == "+" {
			left = expr.Sum(left, right)
		} else {
			left = expr.Sub(left, right)
		}
	}
	return left, nil
}

func parseProduct(r *tokenReader) (expr.Node, error) {
	left, err := parseUnary(r)
	if err != nil {
		return nil, err
	}
	for {
		t, ok := r.peek()
		if !ok || !(t.isOp("*") || t.isOp("/")) {
			break
		}
		r.next()
		right, err := parseUnary(r)
		if err != nil {
			return nil, err
		}
		if t.Raw == "*" {
			left = expr.Product(left, right)
		} else {
			left = expr.Div(left, right)
		}
	}
	return left, nil
}

func parseUnary(r *tokenReader) (expr.Node, error) {
	if t, ok := r.peek(); ok && t.isOp("-") {
		r.next()
		operand, err := parseUnary(r)
		if err != nil {
			return nil, err
		}
		return expr.Neg(operand), nil
	}
	return parsePower(r)
}

func parsePower(r *tokenReader) (expr.Node, error) {
	base, err := parsePrimary(r)
	if err != nil {
		return nil, err
	}
	t, ok := r.peek()
	if !ok || !t.isOp("^") {
		return base, nil
	}
	r.next()
	// Right-associative, and the exponent may carry its own unary minus.
	exp, err := parseUnary(r)
	if err != nil {
		return nil, err
	}
	return expr.Power(base, exp), nil
}

func parsePrimary(r *tokenReader) (expr.Node, error) {
	t, ok := r.next()
	if !ok {
		last := r.last()
		return nil, parseErr(ReasonTrailingOperator, last.Raw, last.Pos)
	}
	switch t.Kind {
	case KindNumber:
		rat, ok := new(big.Rat).SetString(t.Raw)
		if !ok {
			return nil, parseErr(ReasonBadNumber, t.Raw, t.Pos)
		}
		return expr.FromRat(rat), nil
	case KindVariable:
		return expr.V(t.Raw), nil
	case KindConstant:
		c, ok := expr.ConstByName(t.Raw)
		if !ok {
			return nil, parseErr(ReasonUnknownToken, t.Raw, t.Pos)
		}
		return c, nil
	case KindFunction:
		return parseFunctionArg(r, t)
	case KindOperator:
		if t.Raw == ")" {
			return nil, parseErr(ReasonUnbalancedGrouping, ")", t.Pos)
		}
		if t.Raw == "(" {
			inner, err := parseSum(r)
			if err != nil {
				return nil, err
			}
			closing, ok := r.next()
			if !ok || !closing.isOp(")") {
				return nil, parseErr(ReasonUnbalancedGrouping, "(", t.Pos)
			}
			return inner, nil
		}
	}
	return nil, parseErr(ReasonUnknownToken, t.Raw, t.Pos)
}

// parseFunctionArg handles both "sqrt(x+1)" and the spoken form
// "square root of x", where the argument is the next unary operand.
func parseFunctionArg(r *tokenReader, fn Token) (expr.Node, error) {
	if t, ok := r.peek(); ok && t.isOp("(") {
		r.next()
		inner, err := parseSum(r)
		if err != nil {
			return nil, err
		}
		closing, ok := r.next()
		if !ok || !closing.isOp(")") {
			return nil, parseErr(ReasonUnbalancedGrouping, "(", t.Pos)
		}
		return expr.Fn(fn.Raw, inner), nil
	}
	arg, err := parseUnary(r)
	if err != nil {
		return nil, err
	}
	return expr.Fn(fn.Raw, arg), nil
}
