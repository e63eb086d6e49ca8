package engine

import (
	"fmt"

	"github.com/stepwise-org/stepwise/expr"
)

// ============================================================================
// STEP RECORDER — observable rewrites
// ============================================================================

// Rule names. Every recorded step carries one of these, and the description
// table below turns them into tutoring prose.
const (
	RuleMoveLeft         = "move-to-left-side"
	RuleIsolate          = "isolate-variable"
	RuleDiscriminant     = "compute-discriminant"
	RuleQuadraticFormula = "apply-quadratic-formula"
	RuleComplexPair      = "complex-conjugate-pair"
	RuleDeflate          = "extract-rational-root"
	RuleDepress          = "depress-cubic"
	RuleSubstitute       = "substitute-square"

	RuleFoldConstants  = "fold-constants"
	RuleCombineTerms   = "combine-like-terms"
	RuleMergeExponents = "merge-exponents"
	RuleCollapsePower  = "collapse-nested-power"
	RuleEvalFunction   = "evaluate-function"

	RuleDistribute  = "distribute"
	RuleExpandPower = "expand-power"

	RuleFactorCommon        = "factor-common"
	RuleFactorDiffSquares   = "factor-difference-of-squares"
	RuleFactorPerfectSquare = "factor-perfect-square"
	RuleFactorQuadratic     = "factor-quadratic"
	RuleFactorGrouping      = "factor-by-grouping"

	RuleDeriveConstant = "derive-constant"
	RuleDeriveVariable = "derive-variable"
	RuleDerivePower    = "derive-power"
	RuleDeriveSum      = "derive-sum"
	RuleDeriveProduct  = "derive-product"
	RuleDeriveQuotient = "derive-quotient"
	RuleDeriveChain    = "derive-chain"
	RuleDeriveExp      = "derive-exponential"

	RuleIntegratePower    = "integrate-power"
	RuleIntegrateSum      = "integrate-sum"
	RuleIntegrateConstant = "integrate-constant"
	RuleIntegrateScale    = "integrate-constant-multiple"
	RuleIntegrateFunction = "integrate-function"
	RuleIntegrateLog      = "integrate-reciprocal"
)

// ruleDescriptions maps rule names to the leading clause of a step
// description. Unknown rules fall back to a plain rewrite sentence.
var ruleDescriptions = map[string]string{
	RuleMoveLeft:         "move every term to the left side, leaving zero on the right",
	RuleIsolate:          "isolate the variable",
	RuleDiscriminant:     "compute the discriminant b^2 - 4ac",
	RuleQuadraticFormula: "apply the quadratic formula",
	RuleComplexPair:      "the discriminant is negative, so the roots are a complex conjugate pair",
	RuleDeflate:          "divide out a rational root found by the rational root test",
	RuleDepress:          "substitute to remove the squared term",
	RuleSubstitute:       "substitute u for the squared variable",

	RuleFoldConstants:  "evaluate the constant arithmetic",
	RuleCombineTerms:   "combine like terms",
	RuleMergeExponents: "multiply powers of the same base by adding exponents",
	RuleCollapsePower:  "raise a power to a power by multiplying exponents",
	RuleEvalFunction:   "evaluate the function at its constant argument",

	RuleDistribute:  "distribute the product over the sum",
	RuleExpandPower: "expand the power of the sum",

	RuleFactorCommon:        "factor out the greatest common factor",
	RuleFactorDiffSquares:   "factor the difference of squares",
	RuleFactorPerfectSquare: "recognize a perfect square trinomial",
	RuleFactorQuadratic:     "split the quadratic into two linear factors",
	RuleFactorGrouping:      "factor by grouping pairs of terms",

	RuleDeriveConstant: "the derivative of a constant is zero",
	RuleDeriveVariable: "the derivative of the variable is one",
	RuleDerivePower:    "apply the power rule",
	RuleDeriveSum:      "differentiate term by term",
	RuleDeriveProduct:  "apply the product rule",
	RuleDeriveQuotient: "apply the quotient rule",
	RuleDeriveChain:    "apply the chain rule",
	RuleDeriveExp:      "differentiate the exponential",

	RuleIntegratePower:    "apply the power rule for integrals",
	RuleIntegrateSum:      "integrate term by term",
	RuleIntegrateConstant: "the integral of a constant is the constant times the variable",
	RuleIntegrateScale:    "pull the constant factor out of the integral",
	RuleIntegrateFunction: "apply the antiderivative table",
	RuleIntegrateLog:      "the integral of 1/x is the natural log of |x|",
}

// Recorder observes rewrites as the solver applies them. Implementations
// must tolerate being called from a single goroutine only.
//
// Record steps rewrite the whole working expression, so across a derivation
// each After equals the next step's Before. Annotate steps compute a side
// quantity (the discriminant, say) without rewriting; their Before and After
// are both the current working expression, keeping the chain intact.
type Recorder interface {
	Record(rule string, before, after expr.Node)
	Annotate(rule string, state, value expr.Node)
}

// StepRecorder accumulates Steps in application order.
type StepRecorder struct {
	steps []Step
}

// NewStepRecorder returns an empty recorder.
func NewStepRecorder() *StepRecorder {
	return &StepRecorder{}
}

// Record appends one step. Index is assigned sequentially from zero.
func (r *StepRecorder) Record(rule string, before, after expr.Node) {
	r.steps = append(r.steps, Step{
		Index:       len(r.steps),
		Rule:        rule,
		Before:      before.String(),
		After:       after.String(),
		BeforeLaTeX: before.LaTeX(),
		AfterLaTeX:  after.LaTeX(),
		Description: describe(rule, before, after),
	})
}

// Annotate appends a non-rewriting step: the working expression stands still
// while the description carries the computed quantity.
func (r *StepRecorder) Annotate(rule string, state, value expr.Node) {
	r.steps = append(r.steps, Step{
		Index:       len(r.steps),
		Rule:        rule,
		Before:      state.String(),
		After:       state.String(),
		BeforeLaTeX: state.LaTeX(),
		AfterLaTeX:  state.LaTeX(),
		Description: describeValue(rule, value),
	})
}

// Steps returns the recorded steps in order.
func (r *StepRecorder) Steps() []Step {
	return r.steps
}

func describe(rule string, before, after expr.Node) string {
	lead, ok := ruleDescriptions[rule]
	if !ok {
		return fmt.Sprintf("rewrite %s as %s", before, after)
	}
	return fmt.Sprintf("%s: %s becomes %s", lead, before, after)
}

func describeValue(rule string, value expr.Node) string {
	lead, ok := ruleDescriptions[rule]
	if !ok {
		return fmt.Sprintf("compute %s", value)
	}
	return fmt.Sprintf("%s: %s", lead, value)
}

// nopRecorder is installed when the caller supplies none. The solver runs
// the identical derivation and discards the steps.
type nopRecorder struct{}

func (nopRecorder) Record(string, expr.Node, expr.Node)   {}
func (nopRecorder) Annotate(string, expr.Node, expr.Node) {}
