package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stepwise-org/stepwise/expr"
)

func mustNormalize(t *testing.T, raw string) expr.Node {
	t.Helper()
	node, err := Default().Normalize(raw)
	require.NoError(t, err, "normalize %q", raw)
	return node
}

// ============================================================================
// TYPED INPUT
// ============================================================================

func TestNormalizeTyped(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string // canonical serialization
	}{
		{"quadratic", "2x^2 + 3x - 5", "2x^2 + 3x - 5"},
		{"implicit multiplication", "3(x+1)", "3(x + 1)"},
		{"adjacent variables", "x y", "x*y"},
		{"precedence", "1 + 2*x^3", "2x^3 + 1"},
		{"unary minus binds below exponent", "-x^2", "-x^2"},
		{"nested groups", "((x))", "x"},
		{"quotient", "x/2", "1/2x"},
		{"function call", "sqrt(x + 1)", "sqrt(x + 1)"},
		{"decimal literal", "2.5x", "5/2x"},
		{"constant folding", "2 + 3*4", "14"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, mustNormalize(t, tc.in).String())
		})
	}
}

// ============================================================================
// VOICE-STYLE INPUT
// ============================================================================

func TestNormalizeSpoken(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"squared suffix", "x squared minus four", "x^2 - 4"},
		{"cubed suffix", "two x cubed", "2x^3"},
		{"plus and times", "three times x plus five", "3x + 5"},
		{"divided by", "x divided by two", "1/2x"},
		{"power phrase", "x to the power of five", "x^5"},
		{"square root", "square root of x", "sqrt(x)"},
		{"pi constant", "two pi", "2pi"},
		{"negative", "negative x plus one", "-x + 1"},
		{"spoken parentheses", "open parenthesis x plus one close parenthesis squared", "(x + 1)^2"},
		{"case insensitive", "X Squared Minus FOUR", "x^2 - 4"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, mustNormalize(t, tc.in).String())
		})
	}
}

// ============================================================================
// EQUATIONS
// ============================================================================

func TestNormalizeEquation(t *testing.T) {
	n := Default()

	t.Run("explicit equals", func(t *testing.T) {
		eq, err := n.NormalizeEquation("x squared minus four equals zero")
		require.NoError(t, err)
		assert.True(t, eq.Explicit)
		assert.Equal(t, "x^2 - 4", eq.LHS.String())
		assert.Equal(t, "0", eq.RHS.String())
	})

	t.Run("implicit zero right side", func(t *testing.T) {
		eq, err := n.NormalizeEquation("x^2 - 4")
		require.NoError(t, err)
		assert.False(t, eq.Explicit)
		assert.Equal(t, "0", eq.RHS.String())
	})

	t.Run("two equals signs rejected", func(t *testing.T) {
		_, err := n.NormalizeEquation("x = 1 = 2")
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, ReasonStrayEquals, perr.Reason)
	})
}

// ============================================================================
// FAILURES — typed, never silent
// ============================================================================

func TestNormalizeErrors(t *testing.T) {
	cases := []struct {
		name   string
		in     string
		reason Reason
	}{
		{"empty input", "   ", ReasonEmptyInput},
		{"unknown word", "florble x", ReasonUnknownToken},
		{"unknown symbol", "x $ y", ReasonUnknownToken},
		{"trailing operator", "x +", ReasonTrailingOperator},
		{"unbalanced open", "(x + 1", ReasonUnbalancedGrouping},
		{"unbalanced close", "x + 1)", ReasonUnbalancedGrouping},
		{"leading close", ") x", ReasonUnbalancedGrouping},
		{"bad number", "1.2.3", ReasonBadNumber},
		{"equals in expression", "x = 1", ReasonStrayEquals},
		{"adjacent spoken numbers", "twenty one", ReasonUnknownToken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Default().Normalize(tc.in)
			var perr *ParseError
			require.ErrorAs(t, err, &perr, "input %q", tc.in)
			assert.Equal(t, tc.reason, perr.Reason)
		})
	}
}

// ============================================================================
// PROPERTIES
// ============================================================================

// Canonical serialization must re-parse to a structurally equal tree.
func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"2x^2 + 3x - 5",
		"x squared minus four",
		"(x + 1)^2 / (x - 1)",
		"sqrt(x) + sin(x)*cos(x)",
		"2 pi x",
		"-3x + 1/2",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			first := mustNormalize(t, in)
			second := mustNormalize(t, first.String())
			assert.True(t, first.Equal(second),
				"round trip of %q: %s != %s", in, first.String(), second.String())
		})
	}
}

// Same input, same tree, same serialization, determinism across calls.
func TestNormalizeDeterminism(t *testing.T) {
	const in = "three x squared plus two x minus one"
	a := mustNormalize(t, in)
	b := mustNormalize(t, in)
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.String(), b.String())
}

func TestVocabularyVersioned(t *testing.T) {
	v := DefaultVocabulary()
	assert.GreaterOrEqual(t, v.Version, 1)
	assert.NotEmpty(t, v.Operators)
	assert.NotEmpty(t, v.Numbers)
}
