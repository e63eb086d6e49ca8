package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stepwise-org/stepwise/expr"
	"github.com/stepwise-org/stepwise/parser"
)

func mustParse(t *testing.T, raw string) expr.Node {
	t.Helper()
	n, err := parser.Default().Normalize(raw)
	require.NoError(t, err)
	return n
}

// ============================================================================
// SIMPLIFY
// ============================================================================

func TestSimplify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"simplify 2x + 3x", "5x"},
		{"simplify x*x", "x^2"},
		{"simplify x^2*x^3", "x^5"},
		{"simplify (x + 1)/(x + 1)", "1"},
		{"simplify sqrt(16)", "4"},
		{"simplify sin(0) + cos(0)", "1"},
		{"simplify 2x + 3x - 5x", "0"},
		{"simplify x + x + x", "3x"},
		{"simplify (x^2)^3", "x^6"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			res := run(t, tc.in)
			assert.Equal(t, tc.want, res.Text)
		})
	}
}

func TestSimplifyRecordsSteps(t *testing.T) {
	res := run(t, "simplify 2x + 3x")
	require.NotEmpty(t, res.Steps)
	assert.Equal(t, RuleCombineTerms, res.Steps[0].Rule)
	assert.Equal(t, "2x + 3x", res.Steps[0].Before)
	assert.Equal(t, "5x", res.Steps[0].After)
	assert.NotEmpty(t, res.Steps[0].Description)
}

// A fixed point stays fixed: simplifying the output again is a no-op.
func TestSimplifyIdempotent(t *testing.T) {
	first := run(t, "simplify 2x + 3x - 1 + 4")
	second := run(t, "simplify "+first.Text)
	assert.Equal(t, first.Text, second.Text)
	assert.Empty(t, second.Steps)
}

// Steps chain: each After is the next Before, ending at the result.
func TestSimplifyStepChain(t *testing.T) {
	res := run(t, "simplify x*x + 2x + 3x + sqrt(4)")
	require.NotEmpty(t, res.Steps)
	for i := 0; i < len(res.Steps)-1; i++ {
		assert.Equal(t, res.Steps[i].After, res.Steps[i+1].Before,
			"step %d does not chain", i)
	}
	assert.Equal(t, res.Text, res.Steps[len(res.Steps)-1].After)
}

func TestSimplifyRewriteCeiling(t *testing.T) {
	res := run(t, "simplify x*x + x*x + sqrt(4)", WithRewriteLimit(1))
	assert.NotEmpty(t, res.Warnings)
}

// ============================================================================
// EXPAND
// ============================================================================

func TestExpand(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"expand (x + 1)(x - 1)", "x^2 - 1"},
		{"expand (x + 1)^2", "x^2 + 2x + 1"},
		{"expand 3(x + 2)", "3x + 6"},
		{"expand (x + 1)^3", "x^3 + 3x^2 + 3x + 1"},
		{"expand x(x + y)", "x^2 + x*y"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			res := run(t, tc.in)
			assert.True(t, res.Expression.Equal(mustParse(t, tc.want)),
				"got %s, want %s", res.Text, tc.want)
		})
	}
}

func TestExpandRecordsSteps(t *testing.T) {
	res := run(t, "expand (x + 1)^2")
	rules := stepRules(res.Steps)
	assert.Contains(t, rules, RuleExpandPower)
	assert.Contains(t, rules, RuleDistribute)
	assert.Contains(t, rules, RuleCombineTerms)
}

// ============================================================================
// FACTOR
// ============================================================================

func TestFactor(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"difference of squares", "factor x^2 - 9", []string{"x - 3", "x + 3"}},
		{"common factor", "factor 2x^2 + 4x", []string{"2x", "x + 2"}},
		{"perfect square", "factor x^2 + 2x + 1", []string{"(x + 1)^2"}},
		{"quadratic trinomial", "factor x^2 + 5x + 6", []string{"x + 2", "x + 3"}},
		{"leading coefficient", "factor 2x^2 - 2x - 4", []string{"2", "x - 2", "x + 1"}},
		{"grouping", "factor x^3 + x^2 + 2x + 2", []string{"x + 1", "x^2 + 2"}},
		{"quartic", "factor x^4 - 16", []string{"x - 2", "x + 2", "x^2 + 4"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := run(t, tc.in)
			assert.Empty(t, res.Warnings)
			assert.ElementsMatch(t, tc.want, res.FactorTexts)
		})
	}
}

func TestFactorNoPattern(t *testing.T) {
	res := run(t, "factor x^2 + x + 1")
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "no factoring pattern matched", res.Warnings[0])
	assert.Equal(t, []string{"x^2 + x + 1"}, res.FactorTexts)
}

func TestFactorRecordsSteps(t *testing.T) {
	res := run(t, "factor 2x^2 - 18")
	rules := stepRules(res.Steps)
	assert.Contains(t, rules, RuleFactorCommon)
	assert.Contains(t, rules, RuleFactorDiffSquares)
}

// Each factoring step shows the whole product, so the states chain.
func TestFactorStepChain(t *testing.T) {
	res := run(t, "factor 2x^2 - 18")
	require.Len(t, res.Steps, 2)
	assert.Equal(t, "2x^2 - 18", res.Steps[0].Before)
	assertStepChain(t, res.Steps)
	assert.Equal(t, res.Text, res.Steps[len(res.Steps)-1].After)
}

// A lone power no pattern applies to comes back unfactored with the same
// warning a sum gets.
func TestFactorUnfactorableMonomial(t *testing.T) {
	res := run(t, "factor x^2")
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "no factoring pattern matched", res.Warnings[0])
	assert.Equal(t, []string{"x^2"}, res.FactorTexts)
}

// Grouping still works when one pair shares only the trivial factor 1:
// x^3 + x^2 + x + 1 = x^2(x + 1) + 1(x + 1).
func TestFactorGroupingUnitPair(t *testing.T) {
	res := run(t, "factor x^3 + x^2 + x + 1")
	assert.Empty(t, res.Warnings)
	assert.ElementsMatch(t, []string{"x + 1", "x^2 + 1"}, res.FactorTexts)
}

// ============================================================================
// DERIVE
// ============================================================================

func TestDerive(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"derivative of x^3 - 2x", "3x^2 - 2"},
		{"derivative of x^2", "2x"},
		{"derivative of 5", "0"},
		{"derivative of 3x + 1", "3"},
		{"derivative of x*sin(x)", "sin(x) + x cos(x)"},
		{"derivative of 1/x", "-1/x^2"},
		{"derivative of sin(x^2)", "2x cos(x^2)"},
		{"derivative of sqrt(x)", "1/(2 sqrt(x))"},
		{"derivative of ln(x)", "1/x"},
		{"derivative of 2^x", "2^x ln(2)"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			res := run(t, tc.in)
			assert.True(t, res.Expression.Equal(mustParse(t, tc.want)),
				"got %s, want %s", res.Text, tc.want)
		})
	}
}

func TestDeriveWithRespectTo(t *testing.T) {
	res := run(t, "derivative of x^2 y with respect to y")
	assert.True(t, res.Expression.Equal(mustParse(t, "x^2")))
}

func TestDeriveRecordsRules(t *testing.T) {
	res := run(t, "derivative of x*sin(x)")
	rules := stepRules(res.Steps)
	assert.Contains(t, rules, RuleDeriveProduct)
	assert.Contains(t, rules, RuleDeriveChain)
}

func TestDeriveQuotientRule(t *testing.T) {
	res := run(t, "derivative of x/(x + 1)")
	assert.Contains(t, stepRules(res.Steps), RuleDeriveQuotient)
}

// Differentiation steps read top down over the whole expression, with
// untouched subtrees shown in d/dx form, so consecutive states chain.
func TestDeriveStepChain(t *testing.T) {
	t.Run("polynomial", func(t *testing.T) {
		res := run(t, "derivative of x^3 - 2x")
		require.NotEmpty(t, res.Steps)
		assert.Equal(t, "x^3 - 2x", res.Steps[0].Before)
		assertStepChain(t, res.Steps)
		assert.Equal(t, res.Text, res.Steps[len(res.Steps)-1].After)
	})
	t.Run("product and chain rules", func(t *testing.T) {
		res := run(t, "derivative of x*sin(x)")
		require.NotEmpty(t, res.Steps)
		assert.Equal(t, res.Input, res.Steps[0].Before)
		assertStepChain(t, res.Steps)
		assert.Equal(t, res.Text, res.Steps[len(res.Steps)-1].After)
	})
}

func TestDeriveUnsupported(t *testing.T) {
	req := mustClassify(t, "derivative of x^x")
	_, err := solveReq(req)
	var uerr *UnsupportedFormError
	require.ErrorAs(t, err, &uerr)
}

// ============================================================================
// INTEGRATE
// ============================================================================

func TestIntegrate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"integrate x^2", "1/3x^3"},
		{"integrate x", "1/2x^2"},
		{"integrate 5", "5x"},
		{"integrate 3x^2 + 2x", "x^3 + x^2"},
		{"integrate 1/x", "ln(abs(x))"},
		{"integrate sin(x)", "-cos(x)"},
		{"integrate cos(x)", "sin(x)"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			res := run(t, tc.in)
			assert.True(t, res.Expression.Equal(mustParse(t, tc.want)),
				"got %s, want %s", res.Text, tc.want)
			assert.Contains(t, res.Warnings, "an arbitrary constant of integration is omitted")
		})
	}
}

// Integration steps read top down over the whole expression, with pending
// subtrees shown in int(...)dx form, so consecutive states chain.
func TestIntegrateStepChain(t *testing.T) {
	res := run(t, "integrate 3x^2 + 2x")
	require.NotEmpty(t, res.Steps)
	assert.Equal(t, "3x^2 + 2x", res.Steps[0].Before)
	assertStepChain(t, res.Steps)
	assert.Equal(t, res.Text, res.Steps[len(res.Steps)-1].After)

	rules := stepRules(res.Steps)
	assert.Contains(t, rules, RuleIntegrateSum)
	assert.Contains(t, rules, RuleIntegrateScale)
	assert.Contains(t, rules, RuleIntegratePower)
}

func TestIntegrateUnsupported(t *testing.T) {
	req := mustClassify(t, "integrate x*sin(x)")
	_, err := solveReq(req)
	var uerr *UnsupportedFormError
	require.ErrorAs(t, err, &uerr)
}

// ============================================================================
// PROVE
// ============================================================================

func TestProve(t *testing.T) {
	t.Run("holds", func(t *testing.T) {
		res := run(t, "prove that (x + 1)^2 = x^2 + 2x + 1")
		require.NotNil(t, res.Identity)
		assert.True(t, res.Identity.Holds)
		assert.Empty(t, res.Identity.Residual)
	})
	t.Run("fails with residual", func(t *testing.T) {
		res := run(t, "prove that (x + 1)^2 = x^2 + 1")
		require.NotNil(t, res.Identity)
		assert.False(t, res.Identity.Holds)
		assert.Equal(t, "2x", res.Identity.Residual)
	})
	t.Run("needs an equation", func(t *testing.T) {
		req := mustClassify(t, "prove x^2 + 1")
		_, err := solveReq(req)
		var uerr *UnsupportedFormError
		require.ErrorAs(t, err, &uerr)
	})
}
