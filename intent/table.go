package intent

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// ============================================================================
// VERB TABLE — embedded, versioned phrase → operation mapping
// ============================================================================

//go:embed intents.yaml
var builtinIntents []byte

// Op names a solver operation selected by the classifier.
type Op string

const (
	OpSolve     Op = "solve"
	OpGraph     Op = "graph"
	OpFactor    Op = "factor"
	OpSimplify  Op = "simplify"
	OpDerive    Op = "derive"
	OpExpand    Op = "expand"
	OpIntegrate Op = "integrate"
	OpProve     Op = "prove"
)

var knownOps = map[Op]bool{
	OpSolve: true, OpGraph: true, OpFactor: true, OpSimplify: true,
	OpDerive: true, OpExpand: true, OpIntegrate: true, OpProve: true,
}

// verbEntry pairs one phrase with its operation, pre-split into words.
type verbEntry struct {
	words []string
	op    Op
}

// Table is a compiled verb table. Entries are ordered longest phrase first
// so greedy prefix matching picks the most specific verb.
type Table struct {
	Version int
	entries []verbEntry
}

type rawTable struct {
	Version int                 `yaml:"version"`
	Verbs   map[string][]string `yaml:"verbs"`
}

// ParseTable compiles a YAML verb table, rejecting unknown operations and
// empty phrases.
func ParseTable(data []byte) (*Table, error) {
	var raw rawTable
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("intent table: %w", err)
	}
	if raw.Version < 1 {
		return nil, fmt.Errorf("intent table: missing version")
	}
	t := &Table{Version: raw.Version}
	for opName, phrases := range raw.Verbs {
		op := Op(opName)
		if !knownOps[op] {
			return nil, fmt.Errorf("intent table: unknown operation %q", opName)
		}
		for _, phrase := range phrases {
			words := strings.Fields(strings.ToLower(phrase))
			if len(words) == 0 {
				return nil, fmt.Errorf("intent table: empty phrase under %q", opName)
			}
			t.entries = append(t.entries, verbEntry{words: words, op: op})
		}
	}
	sort.Slice(t.entries, func(i, j int) bool {
		a, b := t.entries[i], t.entries[j]
		if len(a.words) != len(b.words) {
			return len(a.words) > len(b.words)
		}
		return strings.Join(a.words, " ") < strings.Join(b.words, " ")
	})
	return t, nil
}

var (
	defaultTableOnce sync.Once
	defaultTable     *Table
)

// DefaultTable returns the embedded verb table.
func DefaultTable() *Table {
	defaultTableOnce.Do(func() {
		t, err := ParseTable(builtinIntents)
		if err != nil {
			panic(fmt.Sprintf("embedded intents.yaml: %v", err))
		}
		defaultTable = t
	})
	return defaultTable
}

// Phrases lists the table's phrases grouped by operation, alphabetically
// within each group. Used by the CLI to print the verb table.
func (t *Table) Phrases() map[Op][]string {
	out := make(map[Op][]string, len(knownOps))
	for _, e := range t.entries {
		out[e.op] = append(out[e.op], strings.Join(e.words, " "))
	}
	for op := range out {
		sort.Strings(out[op])
	}
	return out
}

// match reports the operation whose phrase prefixes words, and how many
// words the phrase consumed. A zero count means no verb matched.
func (t *Table) match(words []string) (Op, int) {
	for _, e := range t.entries {
		if len(e.words) > len(words) {
			continue
		}
		hit := true
		for i, w := range e.words {
			if words[i] != w {
				hit = false
				break
			}
		}
		if hit {
			return e.op, len(e.words)
		}
	}
	return "", 0
}
