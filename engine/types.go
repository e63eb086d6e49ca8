package engine

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/stepwise-org/stepwise/expr"
	"github.com/stepwise-org/stepwise/intent"
)

// ============================================================================
// ENGINE TYPES — render-ready solver output
// ============================================================================

// Result is the engine's render-ready output. Exactly which fields are
// populated depends on the operation: Roots for solve, Factors for factor,
// Expression for the rewriting operations, Chart for graph, Identity for
// prove. Steps always carries the full derivation.
type Result struct {
	Op intent.Op `json:"op"`

	// Input is the canonical serialization of the classified target.
	Input string `json:"input"`

	Roots  []Root `json:"roots,omitempty"`
	Degree int    `json:"degree,omitempty"`

	Expression expr.Node `json:"-"`
	Text       string    `json:"text,omitempty"`
	LaTeX      string    `json:"latex,omitempty"`

	Factors     []expr.Node `json:"-"`
	FactorTexts []string    `json:"factors,omitempty"`

	Chart    *ChartConfig     `json:"chartConfig,omitempty"`
	Identity *IdentityOutcome `json:"identity,omitempty"`

	// Exact reports whether every root was produced by rational arithmetic
	// with no floating-point rounding.
	Exact    bool     `json:"exact"`
	Warnings []string `json:"warnings,omitempty"`
	Steps    []Step   `json:"steps"`
}

// setExpression fills the three views of a rewritten expression.
func (r *Result) setExpression(n expr.Node) {
	r.Expression = n
	r.Text = n.String()
	r.LaTeX = n.LaTeX()
}

// Root is one solution of a polynomial equation. Im is nonzero for the
// members of a complex conjugate pair. Exact carries the rational value when
// the root was derived without floating point.
type Root struct {
	Re           float64  `json:"re"`
	Im           float64  `json:"im,omitempty"`
	Exact        *big.Rat `json:"-"`
	Multiplicity int      `json:"multiplicity,omitempty"`
	Text         string   `json:"text"`
}

func exactRoot(v *big.Rat) Root {
	f, _ := v.Float64()
	return Root{Re: f, Exact: v, Multiplicity: 1, Text: expr.FromRat(v).String()}
}

func realRoot(v float64) Root {
	return Root{Re: v, Multiplicity: 1, Text: formatFloat(v)}
}

func complexRoot(re, im float64) Root {
	sign := "+"
	if im < 0 {
		sign = "-"
	}
	return Root{
		Re: re, Im: im, Multiplicity: 1,
		Text: fmt.Sprintf("%s %s %si", formatFloat(re), sign, formatFloat(abs(im))),
	}
}

func formatFloat(v float64) string {
	s := fmt.Sprintf("%.6f", v)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" || s == "" {
		return "0"
	}
	return s
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// IdentityOutcome is the verdict of a prove request. Residual is the
// simplified difference of the two sides when the identity does not hold.
type IdentityOutcome struct {
	Holds    bool   `json:"holds"`
	Residual string `json:"residual,omitempty"`
}

// Step is one recorded rewrite in a derivation. Before and After are
// canonical serializations, so a renderer can re-parse them if needed.
type Step struct {
	Index       int    `json:"index"`
	Rule        string `json:"rule"`
	Before      string `json:"before"`
	After       string `json:"after"`
	BeforeLaTeX string `json:"beforeLatex"`
	AfterLaTeX  string `json:"afterLatex"`
	Description string `json:"description"`
}

// ============================================================================
// CHART TYPES
// ============================================================================

// ChartConfig defines how to render a chart. The shape is stable so
// frontends can consume it unchanged.
type ChartConfig struct {
	ChartType  string        `json:"chartType"`
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartPoint represents a single data point.
type ChartPoint struct {
	Label string  `json:"label"`
	X     float64 `json:"x"`
	Value float64 `json:"value"`
}
