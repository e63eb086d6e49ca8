package parser

import (
	"strconv"
	"strings"
	"unicode"
)

// ============================================================================
// LEXER — raw text → folded token stream
// ============================================================================
// Three passes, applied left to right as the grammar requires:
//   1. scan:      split into spoken-word, number, and operator tokens
//   2. fold:      resolve spoken-word tokens into math tokens
//   3. implicits: insert multiplication between adjacent operands
// ============================================================================

// scan splits the input into raw tokens. Letter runs come out as KindSpoken;
// fold resolves them against the vocabulary, so no spoken-word token survives
// the full pipeline.
func scan(input string) ([]Token, error) {
	var tokens []Token
	runes := []rune(input)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || (r == '.' && i+1 < len(runes) && unicode.IsDigit(runes[i+1])):
			start := i
			dots := 0
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				if runes[i] == '.' {
					dots++
				}
				i++
			}
			text := string(runes[start:i])
			if dots > 1 {
				return nil, parseErr(ReasonBadNumber, text, start)
			}
			tokens = append(tokens, Token{Raw: text, Kind: KindNumber, Pos: start})
		case unicode.IsLetter(r):
			start := i
			for i < len(runes) && unicode.IsLetter(runes[i]) {
				i++
			}
			tokens = append(tokens, Token{Raw: strings.ToLower(string(runes[start:i])), Kind: KindSpoken, Pos: start})
		case strings.ContainsRune("+-*/^=()", r):
			tokens = append(tokens, Token{Raw: string(r), Kind: KindOperator, Pos: i})
			i++
		default:
			return nil, parseErr(ReasonUnknownToken, string(r), i)
		}
	}
	return tokens, nil
}

// fold resolves spoken-word tokens into math tokens; every other kind passes
// through unchanged. Every word must resolve: unmatched multi-letter words
// are an error, never dropped.
func fold(raw []Token, vocab *Vocabulary) ([]Token, error) {
	var tokens []Token
	i := 0
	for i < len(raw) {
		t := raw[i]

		if t.Kind != KindSpoken {
			tokens = append(tokens, t)
			i++
			continue
		}

		// Collect the run of consecutive words for phrase matching.
		words := []string{}
		for j := i; j < len(raw) && raw[j].Kind == KindSpoken; j++ {
			words = append(words, raw[j].Raw)
		}
		n, kind, value, num := vocab.lookup(words)
		switch kind {
		case phraseOperator:
			tokens = append(tokens, Token{Raw: value, Kind: KindOperator, Pos: t.Pos})
		case phraseFunction:
			tokens = append(tokens, Token{Raw: value, Kind: KindFunction, Pos: t.Pos})
		case phraseConstant:
			tokens = append(tokens, Token{Raw: value, Kind: KindConstant, Pos: t.Pos})
		case phraseNumber:
			tokens = append(tokens, Token{Raw: strconv.FormatInt(num, 10), Kind: KindNumber, Pos: t.Pos})
		case phraseSuffix:
			// "x squared", an exponent applied to the preceding primary.
			if len(tokens) == 0 {
				return nil, parseErr(ReasonUnknownToken, t.Raw, t.Pos)
			}
			tokens = append(tokens,
				Token{Raw: "^", Kind: KindOperator, Pos: t.Pos},
				Token{Raw: strconv.FormatInt(num, 10), Kind: KindNumber, Pos: t.Pos},
			)
			n = 1
		case phraseNone:
			word := words[0]
			if isFunctionName(word) {
				tokens = append(tokens, Token{Raw: word, Kind: KindFunction, Pos: t.Pos})
				n = 1
				break
			}
			if len(word) == 1 {
				tokens = append(tokens, Token{Raw: word, Kind: KindVariable, Pos: t.Pos})
				n = 1
				break
			}
			return nil, parseErr(ReasonUnknownToken, word, t.Pos)
		}
		i += n
	}
	return tokens, nil
}

func isFunctionName(word string) bool {
	switch word {
	case "sqrt", "sin", "cos", "tan", "ln", "abs", "exp":
		return true
	}
	return false
}

// insertImplicits applies the implicit-multiplication grammar rule:
// "2x", "3(x+1)", "x y" and "2 pi" all gain an explicit '*'. Two adjacent
// number tokens do not; "twenty one" style compounds are rejected later
// rather than silently multiplied.
func insertImplicits(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	for i, t := range tokens {
		if i > 0 && startsOperand(t) && endsOperand(tokens[i-1]) {
			if !(t.Kind == KindNumber && tokens[i-1].Kind == KindNumber) {
				out = append(out, Token{Raw: "*", Kind: KindOperator, Pos: t.Pos})
			}
		}
		out = append(out, t)
	}
	return out
}

// startsOperand reports whether a token can begin an operand.
func startsOperand(t Token) bool {
	switch t.Kind {
	case KindNumber, KindVariable, KindConstant, KindFunction:
		return true
	case KindOperator:
		return t.Raw == "("
	}
	return false
}

// endsOperand reports whether a token can end an operand.
func endsOperand(t Token) bool {
	switch t.Kind {
	case KindNumber, KindVariable, KindConstant:
		return true
	case KindOperator:
		return t.Raw == ")"
	}
	return false
}

// Tokenize runs the full lexical pipeline against a vocabulary.
func Tokenize(input string, vocab *Vocabulary) ([]Token, error) {
	raw, err := scan(input)
	if err != nil {
		return nil, err
	}
	tokens, err := fold(raw, vocab)
	if err != nil {
		return nil, err
	}
	return insertImplicits(tokens), nil
}
