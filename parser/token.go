package parser

// ============================================================================
// TOKENS — atomic lexical units
// ============================================================================

// Kind classifies a token.
type Kind string

const (
	KindNumber   Kind = "number"
	KindVariable Kind = "variable"
	KindOperator Kind = "operator" // + - * / ^ = ( )
	KindFunction Kind = "function" // sqrt, sin, ... (typed or folded from speech)
	KindConstant Kind = "constant" // pi, e
	KindSpoken   Kind = "spoken-word"
)

// Token is one atomic lexical unit of the input text. Immutable once
// produced; Pos is the rune offset of the token's first character in the
// raw input (spoken-phrase folds keep the position of their first word).
type Token struct {
	Raw  string
	Kind Kind
	Pos  int
}

func (t Token) isOp(op string) bool { return t.Kind == KindOperator && t.Raw == op }
