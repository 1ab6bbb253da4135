package zp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

const bigPrime = 43112609

func Test_field_rejects_non_prime(t *testing.T) {
	for _, p := range []uint64{0, 1, 2, 4, 9, 15, 43112610} {
		_, err := NewField(p)
		require.ErrorIs(t, err, ErrNotPrime, "modulus %d", p)
	}

	f, err := NewField(bigPrime)
	require.NoError(t, err)
	require.Equal(t, uint64(bigPrime), f.Modulus())
}

func Test_field_reduces(t *testing.T) {
	f, err := NewField(11)
	require.NoError(t, err)

	require.Equal(t, uint64(3), f.Element(25).Value())
	require.True(t, f.Element(11).IsZero())

	a := f.Element(7)
	b := f.Element(9)

	sum, err := a.Add(b)
	require.NoError(t, err)
	require.Equal(t, uint64(5), sum.Value())

	diff, err := a.Sub(b)
	require.NoError(t, err)
	require.Equal(t, uint64(9), diff.Value())

	prod, err := a.Mul(b)
	require.NoError(t, err)
	require.Equal(t, uint64(8), prod.Value())

	require.Equal(t, uint64(4), a.Neg().Value())
	require.Equal(t, uint64(2), a.Exp(3).Value())
}

func Test_field_inverse(t *testing.T) {
	f, err := NewField(bigPrime)
	require.NoError(t, err)

	for _, v := range []uint64{1, 2, 3, 1000, bigPrime - 1} {
		e := f.Element(v)
		inv, err := e.Inverse()
		require.NoError(t, err)

		one, err := e.Mul(inv)
		require.NoError(t, err)
		require.True(t, one.Equal(f.One()), "value %d", v)
	}

	_, err = f.Zero().Inverse()
	require.ErrorIs(t, err, ErrNotInvertible)

	_, err = f.One().Div(f.Zero())
	require.ErrorIs(t, err, ErrNotInvertible)
}

func Test_field_mismatch(t *testing.T) {
	f11, err := NewField(11)
	require.NoError(t, err)
	f13, err := NewField(13)
	require.NoError(t, err)

	_, err = f11.One().Add(f13.One())
	require.True(t, errors.Is(err, ErrFieldMismatch))

	_, err = f11.One().Mul(f13.One())
	require.ErrorIs(t, err, ErrFieldMismatch)

	require.False(t, f11.One().Equal(f13.One()))
}

func Test_field_random_in_range(t *testing.T) {
	f, err := NewField(13)
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		e, err := f.Random(nil)
		require.NoError(t, err)
		require.Less(t, e.Value(), uint64(13))
	}
}

func Test_field_parse(t *testing.T) {
	f, err := NewField(bigPrime)
	require.NoError(t, err)

	e, err := f.Parse("385", "43112609")
	require.NoError(t, err)
	require.Equal(t, uint64(385), e.Value())
	require.Equal(t, "385", e.Text())
	require.Equal(t, "385 (mod 43112609)", e.String())

	_, err = f.Parse("385", "11")
	require.ErrorIs(t, err, ErrFieldMismatch)

	_, err = f.Parse("43112609", "43112609")
	require.Error(t, err)

	_, err = f.Parse("abc", "43112609")
	require.Error(t, err)
}
