package zp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_polynomial_secret_at_zero(t *testing.T) {
	f, err := NewField(bigPrime)
	require.NoError(t, err)

	secret := f.Element(1234)
	for degree := 0; degree < 5; degree++ {
		poly, err := NewRandomPolynomial(nil, secret, degree)
		require.NoError(t, err)
		require.Equal(t, degree, poly.Degree())
		require.True(t, poly.Secret().Equal(secret))

		y, err := poly.Evaluate(f.Zero())
		require.NoError(t, err)
		require.True(t, y.Equal(secret))
	}
}

func Test_polynomial_degree_zero_is_constant(t *testing.T) {
	f, err := NewField(11)
	require.NoError(t, err)

	poly, err := NewRandomPolynomial(nil, f.Element(5), 0)
	require.NoError(t, err)

	for x := uint64(1); x < 11; x++ {
		y, err := poly.Evaluate(f.Element(x))
		require.NoError(t, err)
		require.Equal(t, uint64(5), y.Value())
	}
}

func Test_polynomial_invalid_degree(t *testing.T) {
	f, err := NewField(11)
	require.NoError(t, err)

	_, err = NewRandomPolynomial(nil, f.One(), -1)
	require.Error(t, err)
}

func Test_polynomial_uninitialized_secret(t *testing.T) {
	_, err := NewRandomPolynomial(nil, Element{}, 2)
	require.ErrorIs(t, err, ErrFieldMismatch)
}
