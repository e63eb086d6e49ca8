package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stepwise-org/stepwise/intent"
)

// run classifies text and solves it with a recorder installed.
func run(t *testing.T, text string, opts ...Option) *Result {
	t.Helper()
	req, err := intent.Default().Classify(text)
	require.NoError(t, err, "classify %q", text)
	res, err := Solve(context.Background(), req, append(opts, WithRecorder(NewStepRecorder()))...)
	require.NoError(t, err, "solve %q", text)
	return res
}

func rootValues(roots []Root) []float64 {
	out := make([]float64, len(roots))
	for i, r := range roots {
		out[i] = r.Re
	}
	return out
}

// ============================================================================
// SOLVE
// ============================================================================

func TestSolveQuadratic(t *testing.T) {
	res := run(t, "solve 2x^2 + 3x - 5 = 0")
	require.Len(t, res.Roots, 2)
	assert.Equal(t, []float64{1, -2.5}, rootValues(res.Roots))
	assert.True(t, res.Exact)
	assert.Equal(t, 2, res.Degree)
	assert.Equal(t, "-5/2", res.Roots[1].Text)
	require.NotNil(t, res.Roots[0].Exact)

	rules := stepRules(res.Steps)
	assert.Contains(t, rules, RuleDiscriminant)
	assert.Contains(t, rules, RuleQuadraticFormula)
}

func TestSolveSpokenQuadratic(t *testing.T) {
	res := run(t, "solve x squared minus four equals zero")
	require.Len(t, res.Roots, 2)
	assert.Equal(t, []float64{2, -2}, rootValues(res.Roots))
	assert.True(t, res.Exact)
}

func TestSolveFactorQuadraticScenario(t *testing.T) {
	res := run(t, "factor x^2 - 4")
	assert.Empty(t, res.Warnings)
	assert.ElementsMatch(t, []string{"x - 2", "x + 2"}, res.FactorTexts)
}

func TestSolveComplexPair(t *testing.T) {
	res := run(t, "solve x^2 + x + 1 = 0")
	require.Len(t, res.Roots, 2)
	assert.False(t, res.Exact)
	assert.InDelta(t, -0.5, res.Roots[0].Re, 1e-12)
	assert.InDelta(t, 0.8660254, res.Roots[0].Im, 1e-6)
	assert.InDelta(t, -0.8660254, res.Roots[1].Im, 1e-6)
	assert.Contains(t, stepRules(res.Steps), RuleComplexPair)
}

func TestSolveMovesRightSide(t *testing.T) {
	res := run(t, "solve x^2 = 4")
	assert.Equal(t, []float64{2, -2}, rootValues(res.Roots))
	require.NotEmpty(t, res.Steps)
	assert.Equal(t, RuleMoveLeft, res.Steps[0].Rule)
	assert.Equal(t, "x^2 - 4", res.Steps[0].After)
}

func TestSolveLinear(t *testing.T) {
	res := run(t, "solve 2x + 3 = 7")
	require.Len(t, res.Roots, 1)
	assert.Equal(t, "2", res.Roots[0].Text)
	assert.True(t, res.Exact)
	assert.Equal(t, 1, res.Degree)
}

func TestSolveDoubleRoot(t *testing.T) {
	res := run(t, "solve x^2 - 2x + 1 = 0")
	require.Len(t, res.Roots, 1)
	assert.Equal(t, "1", res.Roots[0].Text)
	assert.Equal(t, 2, res.Roots[0].Multiplicity)
}

func TestSolveIrrationalQuadratic(t *testing.T) {
	res := run(t, "solve x^2 - 2 = 0")
	require.Len(t, res.Roots, 2)
	assert.False(t, res.Exact)
	assert.InDelta(t, 1.41421356, res.Roots[0].Re, 1e-6)
	assert.InDelta(t, -1.41421356, res.Roots[1].Re, 1e-6)
}

func TestSolveCubicRationalRoots(t *testing.T) {
	res := run(t, "solve x^3 - 6x^2 + 11x - 6 = 0")
	require.Len(t, res.Roots, 3)
	assert.ElementsMatch(t, []float64{1, 2, 3}, rootValues(res.Roots))
	assert.True(t, res.Exact)
	assert.Contains(t, stepRules(res.Steps), RuleDeflate)
}

func TestSolveCubicIrrational(t *testing.T) {
	// x^3 - 2 = 0, single real root at cbrt(2).
	res := run(t, "solve x^3 - 2 = 0")
	require.Len(t, res.Roots, 3)
	assert.False(t, res.Exact)
	assert.InDelta(t, 1.25992105, res.Roots[0].Re, 1e-9)
	assert.NotZero(t, res.Roots[1].Im)
	assert.NotZero(t, res.Roots[2].Im)
}

func TestSolveCubicThreeRealIrrational(t *testing.T) {
	// x^3 - 3x + 1 has three irrational real roots.
	res := run(t, "solve x^3 - 3x + 1 = 0")
	require.Len(t, res.Roots, 3)
	for _, r := range res.Roots {
		assert.Zero(t, r.Im)
		assert.InDelta(t, 0, r.Re*r.Re*r.Re-3*r.Re+1, 1e-9)
	}
}

func TestSolveBiquadratic(t *testing.T) {
	res := run(t, "solve x^4 - 5x^2 + 4 = 0")
	require.Len(t, res.Roots, 4)
	assert.ElementsMatch(t, []float64{2, -2, 1, -1}, rootValues(res.Roots))
	assert.True(t, res.Exact)
	assert.Contains(t, stepRules(res.Steps), RuleSubstitute)
}

func TestSolveQuinticNumeric(t *testing.T) {
	res := run(t, "solve x^5 - x - 1 = 0")
	require.Len(t, res.Roots, 1)
	assert.InDelta(t, 1.1673039, res.Roots[0].Re, 1e-6)
	assert.False(t, res.Exact)
	assert.NotEmpty(t, res.Warnings)
}

func TestSolveConstantEquation(t *testing.T) {
	req, err := intent.Default().Classify("solve 2 = 2")
	require.NoError(t, err)
	res, err := Solve(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, res.Roots)
	assert.Contains(t, res.Warnings[0], "every value")
}

func TestSolveErrors(t *testing.T) {
	t.Run("non-polynomial", func(t *testing.T) {
		req, err := intent.Default().Classify("solve sin(x) = 0")
		require.NoError(t, err)
		_, err = Solve(context.Background(), req)
		var uerr *UnsupportedFormError
		require.ErrorAs(t, err, &uerr)
	})
	t.Run("degree above ceiling", func(t *testing.T) {
		req, err := intent.Default().Classify("solve x^7 - 1 = 0")
		require.NoError(t, err)
		_, err = Solve(context.Background(), req)
		var uerr *UnsupportedFormError
		require.ErrorAs(t, err, &uerr)
	})
	t.Run("numeric fallback exhausted", func(t *testing.T) {
		req, err := intent.Default().Classify("solve x^5 - x - 1 = 0")
		require.NoError(t, err)
		_, err = Solve(context.Background(), req, WithMaxIterations(1))
		var nerr *NoClosedFormError
		require.ErrorAs(t, err, &nerr)
		assert.Equal(t, 1, nerr.Iterations)
		assert.NotEmpty(t, nerr.Best)
	})
	t.Run("cancelled context", func(t *testing.T) {
		req, err := intent.Default().Classify("solve x = 1")
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = Solve(ctx, req)
		require.ErrorIs(t, err, context.Canceled)
	})
}

// Without a recorder the result is identical, just step-free.
func TestSolveWithoutRecorder(t *testing.T) {
	req, err := intent.Default().Classify("solve 2x^2 + 3x - 5 = 0")
	require.NoError(t, err)
	res, err := Solve(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, -2.5}, rootValues(res.Roots))
	assert.Empty(t, res.Steps)
}

// ============================================================================
// GRAPH
// ============================================================================

func TestGraphQuadratic(t *testing.T) {
	res := run(t, "graph x^2 - 4")
	require.NotNil(t, res.Chart)
	chart := res.Chart

	assert.Equal(t, "line", chart.ChartType)
	assert.Equal(t, "y = x^2 - 4", chart.Title)
	assert.Equal(t, "x", chart.XAxis)
	require.Len(t, chart.Series, 3) // curve, vertex, roots
	assert.Len(t, chart.Series[0].Data, 200)
	assert.InDelta(t, -10, chart.Series[0].Data[0].X, 1e-12)
	assert.InDelta(t, 10, chart.Series[0].Data[199].X, 1e-12)

	assert.Equal(t, "vertex", chart.Series[1].Name)
	assert.InDelta(t, 0, chart.Series[1].Data[0].X, 1e-12)
	assert.InDelta(t, -4, chart.Series[1].Data[0].Value, 1e-12)

	assert.Equal(t, "roots", chart.Series[2].Name)
	assert.Len(t, chart.Series[2].Data, 2)
}

func TestGraphBoundsAndSamples(t *testing.T) {
	res := run(t, "graph x^2 from 0 to 4", WithGraphSamples(50))
	chart := res.Chart
	require.NotNil(t, chart)
	assert.Len(t, chart.Series[0].Data, 50)
	assert.InDelta(t, 0, chart.Series[0].Data[0].X, 1e-12)
	assert.InDelta(t, 4, chart.Series[0].Data[49].X, 1e-12)

	// Only the root inside the range is marked.
	roots := chart.Series[len(chart.Series)-1]
	require.Equal(t, "roots", roots.Name)
	require.Len(t, roots.Data, 1)
	assert.InDelta(t, 2, roots.Data[0].X, 1e-12)
}

func TestGraphDefaultRangeOption(t *testing.T) {
	res := run(t, "graph x^3", WithGraphRange(-2, 2))
	data := res.Chart.Series[0].Data
	assert.InDelta(t, -2, data[0].X, 1e-12)
	assert.InDelta(t, 2, data[len(data)-1].X, 1e-12)
}

func TestGraphSkipsPoles(t *testing.T) {
	res := run(t, "graph 1/x")
	require.NotNil(t, res.Chart)
	for _, pt := range res.Chart.Series[0].Data {
		assert.False(t, pt.X == 0)
	}
}

// ============================================================================
// EVENTS
// ============================================================================

func TestEvents(t *testing.T) {
	res := run(t, "solve x^2 - 4 = 0")
	ev := NewEvent(intent.OpSolve, res)
	assert.NotEmpty(t, ev.ID)
	assert.True(t, ev.Success)
	assert.Equal(t, "quadratic-equations", ev.Concept)

	failed := NewEvent(intent.OpFactor, nil)
	assert.False(t, failed.Success)
	assert.Equal(t, "factoring", failed.Concept)
}

func mustClassify(t *testing.T, text string) *intent.Request {
	t.Helper()
	req, err := intent.Default().Classify(text)
	require.NoError(t, err)
	return req
}

func solveReq(req *intent.Request) (*Result, error) {
	return Solve(context.Background(), req)
}

func stepRules(steps []Step) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.Rule
	}
	return out
}

// assertStepChain checks that the recorded derivation reads as one unbroken
// rewrite sequence: each After is the next step's Before.
func assertStepChain(t *testing.T, steps []Step) {
	t.Helper()
	for i := 0; i < len(steps)-1; i++ {
		assert.Equal(t, steps[i].After, steps[i+1].Before,
			"step %d does not chain", i)
	}
}

func TestSolveStepChain(t *testing.T) {
	t.Run("quadratic", func(t *testing.T) {
		res := run(t, "solve 2x^2 + 3x - 5 = 0")
		require.NotEmpty(t, res.Steps)
		assert.Equal(t, "2x^2 + 3x - 5", res.Steps[0].Before)
		assertStepChain(t, res.Steps)
	})
	t.Run("moved right side", func(t *testing.T) {
		res := run(t, "solve x^2 = 4")
		require.NotEmpty(t, res.Steps)
		assert.Equal(t, "x^2", res.Steps[0].Before)
		assertStepChain(t, res.Steps)
	})
	t.Run("cubic with deflation", func(t *testing.T) {
		res := run(t, "solve x^3 - 6x^2 + 11x - 6 = 0")
		require.NotEmpty(t, res.Steps)
		assert.Equal(t, "x^3 - 6x^2 + 11x - 6", res.Steps[0].Before)
		assertStepChain(t, res.Steps)
	})
	t.Run("complex pair", func(t *testing.T) {
		res := run(t, "solve x^2 + x + 1 = 0")
		require.NotEmpty(t, res.Steps)
		assert.Equal(t, "x^2 + x + 1", res.Steps[0].Before)
		assertStepChain(t, res.Steps)
	})
}

// Folding the target into coefficient form can combine like terms; that
// rewrite must appear as its own step so the chain stays unbroken.
func TestSolveCombinesTermsStep(t *testing.T) {
	res := run(t, "solve x^2 + x + x = 0")
	require.NotEmpty(t, res.Steps)
	assert.Equal(t, RuleCombineTerms, res.Steps[0].Rule)
	assert.Equal(t, "x^2 + x + x", res.Steps[0].Before)
	assert.Equal(t, "x^2 + 2x", res.Steps[0].After)
	assertStepChain(t, res.Steps)
}

// Numeric fallback results always say so, naming the tolerance they were
// accepted at.
func TestSolveNumericWarningNamesTolerance(t *testing.T) {
	res := run(t, "solve x^5 - x - 1 = 0")
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "Newton")
	assert.Contains(t, res.Warnings[0], "tolerance")
	assert.Contains(t, res.Warnings[0], "1e-09")
}
