package parser

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/stepwise-org/stepwise/expr"
)

// ============================================================================
// VOCABULARY — versioned spoken-phrase table
// ============================================================================
// The table is data, not code: it ships as an embedded YAML file so the
// supported grammar is reviewable and versioned in one place. It is built
// once, never mutated, and shared read-only across requests.
// ============================================================================

//go:embed vocab.yaml
var vocabYAML []byte

// Vocabulary is the immutable spoken-phrase lookup table.
type Vocabulary struct {
	Version   int               `yaml:"version"`
	Operators map[string]string `yaml:"operators"`
	Suffixes  map[string]int64  `yaml:"suffixes"`
	Functions map[string]string `yaml:"functions"`
	Constants map[string]string `yaml:"constants"`
	Numbers   map[string]int64  `yaml:"numbers"`

	// maxWords is the longest phrase length in words, bounding lookahead.
	maxWords int
}

var (
	defaultVocabOnce sync.Once
	defaultVocab     *Vocabulary
)

// DefaultVocabulary returns the embedded table. It panics only if the
// embedded file is invalid, which is a build defect, not a runtime one.
func DefaultVocabulary() *Vocabulary {
	defaultVocabOnce.Do(func() {
		v, err := ParseVocabulary(vocabYAML)
		if err != nil {
			panic("parser: embedded vocab.yaml is invalid: " + err.Error())
		}
		defaultVocab = v
	})
	return defaultVocab
}

// ParseVocabulary loads and validates a vocabulary table.
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("vocabulary: %w", err)
	}
	if v.Version < 1 {
		return nil, fmt.Errorf("vocabulary: missing version")
	}
	for phrase, sym := range v.Operators {
		if !strings.ContainsAny(sym, "+-*/^=()") || len(sym) != 1 {
			return nil, fmt.Errorf("vocabulary: phrase %q maps to unknown symbol %q", phrase, sym)
		}
	}
	for phrase, fn := range v.Functions {
		if !expr.KnownFunction(fn) {
			return nil, fmt.Errorf("vocabulary: phrase %q maps to unknown function %q", phrase, fn)
		}
	}
	for phrase, c := range v.Constants {
		if _, ok := expr.ConstByName(c); !ok {
			return nil, fmt.Errorf("vocabulary: phrase %q maps to unknown constant %q", phrase, c)
		}
	}
	v.maxWords = 1
	for _, m := range []map[string]string{v.Operators, v.Functions, v.Constants} {
		for phrase := range m {
			if n := len(strings.Fields(phrase)); n > v.maxWords {
				v.maxWords = n
			}
		}
	}
	return &v, nil
}

// phraseKind is the folding result for a matched word sequence.
type phraseKind int

const (
	phraseNone phraseKind = iota
	phraseOperator
	phraseSuffix
	phraseFunction
	phraseConstant
	phraseNumber
)

// lookup matches the longest phrase starting at words[0], returning the
// matched word count, the fold category, and the mapped value.
func (v *Vocabulary) lookup(words []string) (int, phraseKind, string, int64) {
	limit := v.maxWords
	if limit > len(words) {
		limit = len(words)
	}
	for n := limit; n >= 1; n-- {
		phrase := strings.Join(words[:n], " ")
		if sym, ok := v.Operators[phrase]; ok {
			return n, phraseOperator, sym, 0
		}
		if fn, ok := v.Functions[phrase]; ok {
			return n, phraseFunction, fn, 0
		}
		if c, ok := v.Constants[phrase]; ok {
			return n, phraseConstant, c, 0
		}
		if n == 1 {
			if exp, ok := v.Suffixes[phrase]; ok {
				return 1, phraseSuffix, "", exp
			}
			if num, ok := v.Numbers[phrase]; ok {
				return 1, phraseNumber, "", num
			}
		}
	}
	return 0, phraseNone, "", 0
}
