package expr

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoeffs(t *testing.T) {
	x := V("x")
	poly := Sum(Product(Int(2), Power(x, Int(2))), Product(Int(3), x), Int(-5))

	coeffs, err := Coeffs(poly, "x")
	require.NoError(t, err)

	assert.Equal(t, 0, coeffs[2].Cmp(big.NewRat(2, 1)))
	assert.Equal(t, 0, coeffs[1].Cmp(big.NewRat(3, 1)))
	assert.Equal(t, 0, coeffs[0].Cmp(big.NewRat(-5, 1)))
}

func TestCoeffsRejectsNonPolynomial(t *testing.T) {
	x := V("x")

	cases := []struct {
		name string
		node Node
	}{
		{"function of the variable", Fn("sin", x)},
		{"negative exponent", Power(x, Int(-2))},
		{"variable exponent", Power(Int(2), x)},
		{"foreign variable", Sum(x, V("y"))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Coeffs(tc.node, "x")
			assert.Error(t, err)
		})
	}
}

func TestDegree(t *testing.T) {
	x := V("x")

	deg, err := Degree(Sum(Power(x, Int(3)), x), "x")
	require.NoError(t, err)
	assert.Equal(t, 3, deg)

	deg, err = Degree(Int(7), "x")
	require.NoError(t, err)
	assert.Equal(t, 0, deg)
}

func TestFromCoeffsRoundTrip(t *testing.T) {
	x := V("x")
	poly := Sum(Power(x, Int(2)), Product(Int(-1), x), Int(4))

	coeffs, err := Coeffs(poly, "x")
	require.NoError(t, err)
	rebuilt := FromCoeffs(coeffs, "x")
	assert.True(t, rebuilt.Equal(poly), "got %s", rebuilt.String())
}
