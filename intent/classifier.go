// Package intent turns a normalized phrase into a solver request. The
// classifier strips a leading operation verb, resolves the target variable,
// and for graph requests extracts an optional bounds phrase. It never
// guesses: input without a known verb is rejected.
package intent

import (
	"sort"
	"strings"
	"sync"

	"github.com/stepwise-org/stepwise/expr"
	"github.com/stepwise-org/stepwise/parser"
)

// Modality records how the raw phrase reached the pipeline.
type Modality string

const (
	ModalityTyped Modality = "typed"
	ModalityVoice Modality = "voice"
)

// Request is a fully classified solver request.
type Request struct {
	Op       Op               `json:"op"`
	Target   *parser.Equation `json:"-"`
	Variable string           `json:"variable,omitempty"`
	Bounds   *[2]float64      `json:"bounds,omitempty"`
	Modality Modality         `json:"modality"`
	Raw      string           `json:"raw"`
}

// Classifier resolves raw phrases against a verb table and a normalizer.
// Safe for concurrent use.
type Classifier struct {
	table *Table
	norm  *parser.Normalizer
}

// NewClassifier builds a classifier. A nil table or normalizer selects the
// embedded defaults.
func NewClassifier(table *Table, norm *parser.Normalizer) *Classifier {
	if table == nil {
		table = DefaultTable()
	}
	if norm == nil {
		norm = parser.Default()
	}
	return &Classifier{table: table, norm: norm}
}

var (
	defaultClassifierOnce sync.Once
	defaultClassifier     *Classifier
)

// Default returns a classifier over the embedded tables.
func Default() *Classifier {
	defaultClassifierOnce.Do(func() {
		defaultClassifier = NewClassifier(nil, nil)
	})
	return defaultClassifier
}

// fillerWords are politeness noise stripped before verb matching.
var fillerWords = map[string]bool{
	"please": true, "can": true, "could": true, "you": true, "hey": true,
}

// operations that act on a single variable and therefore need one resolved.
var needsVariable = map[Op]bool{
	OpSolve: true, OpGraph: true, OpDerive: true, OpIntegrate: true,
}

// Classify resolves a raw phrase into a Request. Modality defaults to typed;
// callers carrying transcribed audio overwrite it.
func (c *Classifier) Classify(raw string) (*Request, error) {
	words := strings.Fields(strings.ToLower(raw))
	for len(words) > 0 && fillerWords[words[0]] {
		words = words[1:]
	}

	op, n := c.table.match(words)
	if n == 0 {
		return nil, &UnrecognizedIntentError{Input: raw}
	}
	rest := words[n:]

	var bounds *[2]float64
	if op == OpGraph {
		bounds, rest = c.extractBounds(rest)
	}
	explicit, rest := extractVariable(rest)

	eq, err := c.norm.NormalizeEquation(strings.Join(rest, " "))
	if err != nil {
		return nil, err
	}

	variable, err := resolveVariable(op, eq, explicit)
	if err != nil {
		return nil, err
	}

	return &Request{
		Op:       op,
		Target:   eq,
		Variable: variable,
		Bounds:   bounds,
		Modality: ModalityTyped,
		Raw:      raw,
	}, nil
}

// extractBounds strips a trailing "from A to B" phrase where both endpoints
// evaluate to plain numbers ("negative ten", "two pi"). Anything else is
// left for the normalizer.
func (c *Classifier) extractBounds(words []string) (*[2]float64, []string) {
	from := -1
	for i := len(words) - 1; i >= 0; i-- {
		if words[i] == "from" {
			from = i
			break
		}
	}
	if from < 0 {
		return nil, words
	}
	for to := from + 1; to < len(words); to++ {
		if words[to] != "to" {
			continue
		}
		lo, okLo := c.evalNumeric(words[from+1 : to])
		hi, okHi := c.evalNumeric(words[to+1:])
		if okLo && okHi {
			return &[2]float64{lo, hi}, words[:from]
		}
	}
	return nil, words
}

func (c *Classifier) evalNumeric(words []string) (float64, bool) {
	if len(words) == 0 {
		return 0, false
	}
	node, err := c.norm.Normalize(strings.Join(words, " "))
	if err != nil {
		return 0, false
	}
	v, err := expr.EvalAt(node, nil)
	if err != nil {
		return 0, false
	}
	return v, true
}

// extractVariable strips a trailing "with respect to v" or "for v"
// designation, where v is a single letter.
func extractVariable(words []string) (string, []string) {
	n := len(words)
	if n >= 4 && words[n-4] == "with" && words[n-3] == "respect" &&
		words[n-2] == "to" && isVarWord(words[n-1]) {
		return words[n-1], words[:n-4]
	}
	if n >= 2 && words[n-2] == "for" && isVarWord(words[n-1]) {
		return words[n-1], words[:n-2]
	}
	return "", words
}

func isVarWord(w string) bool {
	return len(w) == 1 && w[0] >= 'a' && w[0] <= 'z'
}

// resolveVariable picks the target variable: an explicit designation wins,
// else the sole free variable. Operations that need a variable fail on two
// or more candidates instead of picking one.
func resolveVariable(op Op, eq *parser.Equation, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	set := map[string]bool{}
	for _, v := range expr.FreeVars(eq.LHS) {
		set[v] = true
	}
	for _, v := range expr.FreeVars(eq.RHS) {
		set[v] = true
	}
	free := make([]string, 0, len(set))
	for v := range set {
		free = append(free, v)
	}
	sort.Strings(free)

	switch {
	case len(free) == 1:
		return free[0], nil
	case len(free) == 0:
		return "", nil
	case needsVariable[op]:
		return "", &AmbiguousVariableError{Variables: free}
	default:
		return "", nil
	}
}
