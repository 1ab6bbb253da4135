package mpc

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/mpcmul/zp"
)

func Test_Gate_Resolves_On_Quorum_Only(t *testing.T) {
	field, err := zp.NewField(testModulus)
	require.NoError(t, err)

	// n = 5, t = 1: recombination over ordinals 1, 2, 3
	gate, err := NewMultiplicationGate(field, 0, 5, recombinationSet(1))
	require.NoError(t, err)
	require.Equal(t, GatePending, gate.State())

	// each party reshares its local product h_i = 10 * i, which lies on the
	// degree 1 polynomial 10x, so the product is 0
	for _, ordinal := range []int{5, 4, 1, 2} {
		stored, err := gate.Receive(ordinal, field.Element(uint64(10*ordinal)))
		require.NoError(t, err)
		require.True(t, stored)

		resolved, err := gate.Resolve()
		require.NoError(t, err)
		require.False(t, resolved)
		require.Equal(t, GateCollecting, gate.State())
	}

	_, ok := gate.Value()
	require.False(t, ok)

	stored, err := gate.Receive(3, field.Element(30))
	require.NoError(t, err)
	require.True(t, stored)

	resolved, err := gate.Resolve()
	require.NoError(t, err)
	require.True(t, resolved)
	require.Equal(t, GateResolved, gate.State())

	value, ok := gate.Value()
	require.True(t, ok)
	require.True(t, value.IsZero())

	require.Equal(t, []int{1, 2, 3, 4, 5}, gate.Received())
	require.Equal(t, []int{1, 2, 3}, gate.Quorum())
}

func Test_Gate_Resolves_Once(t *testing.T) {
	field, err := zp.NewField(11)
	require.NoError(t, err)

	gate, err := NewMultiplicationGate(field, 1, 3, recombinationSet(1))
	require.NoError(t, err)

	for ordinal := 1; ordinal <= 3; ordinal++ {
		_, err := gate.Receive(ordinal, field.Element(7))
		require.NoError(t, err)
	}

	resolved, err := gate.Resolve()
	require.NoError(t, err)
	require.True(t, resolved)

	first, _ := gate.Value()
	require.Equal(t, uint64(7), first.Value())

	// a later share from the same ordinal is ignored
	stored, err := gate.Receive(2, field.Element(1))
	require.NoError(t, err)
	require.False(t, stored)

	resolved, err = gate.Resolve()
	require.NoError(t, err)
	require.False(t, resolved)

	second, _ := gate.Value()
	require.True(t, first.Equal(second))
}

func Test_Gate_Invalid_Ordinals(t *testing.T) {
	field, err := zp.NewField(11)
	require.NoError(t, err)

	_, err = NewMultiplicationGate(field, 0, 2, recombinationSet(1))
	require.Error(t, err)

	gate, err := NewMultiplicationGate(field, 0, 3, recombinationSet(1))
	require.NoError(t, err)

	_, err = gate.Receive(0, field.One())
	require.Error(t, err)
	_, err = gate.Receive(4, field.One())
	require.Error(t, err)
}
