package message

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/mpcmul/types"
)

func Test_Directory_Index_Determinism(t *testing.T) {
	identities := []string{"carol", "alice", "eve", "bob", "dave"}

	reference := NewDirectory(len(identities))
	for _, id := range identities {
		added, err := reference.Add(id, id+":addr")
		require.NoError(t, err)
		require.True(t, added)
	}

	for i := 0; i < 10; i++ {
		shuffled := append([]string(nil), identities...)
		rand.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		d := NewDirectory(len(identities))
		for _, id := range shuffled {
			_, err := d.Add(id, id+":addr")
			require.NoError(t, err)
		}

		for _, id := range identities {
			expected, err := reference.Index(id)
			require.NoError(t, err)
			got, err := d.Index(id)
			require.NoError(t, err)
			require.Equal(t, expected, got)
		}
		require.Equal(t, reference.Fingerprint(), d.Fingerprint())
	}

	require.Equal(t, []string{"alice", "bob", "carol", "dave", "eve"}, reference.Participants())

	index, err := reference.Index("alice")
	require.NoError(t, err)
	require.Equal(t, 1, index)

	index, err = reference.Index("eve")
	require.NoError(t, err)
	require.Equal(t, 5, index)
}

func Test_Directory_Unknown(t *testing.T) {
	d := NewDirectory(2)

	_, err := d.Index("alice")
	require.ErrorIs(t, err, types.ErrUnknownParticipant)

	_, err = d.Address("alice")
	require.ErrorIs(t, err, types.ErrUnknownParticipant)

	_, err = d.Add("", "addr")
	require.ErrorIs(t, err, types.ErrUnknownParticipant)
}

func Test_Directory_Frozen_When_Complete(t *testing.T) {
	d := NewDirectory(2)

	_, err := d.Add("bob", "b")
	require.NoError(t, err)
	require.False(t, d.Complete())

	_, err = d.Add("alice", "a")
	require.NoError(t, err)
	require.True(t, d.Complete())

	fingerprint := d.Fingerprint()

	_, err = d.Add("aaron", "c")
	require.ErrorIs(t, err, types.ErrRosterFull)

	// known participants can still update their address
	added, err := d.Add("alice", "a2")
	require.NoError(t, err)
	require.False(t, added)

	addr, err := d.Address("alice")
	require.NoError(t, err)
	require.Equal(t, "a2", addr)

	require.Equal(t, fingerprint, d.Fingerprint())
	require.Equal(t, []types.Member{{Identity: "alice", Addr: "a2"}, {Identity: "bob", Addr: "b"}}, d.Members())
}

func Test_Directory_Fingerprint_Differs(t *testing.T) {
	a := NewDirectory(2)
	a.Add("ab", "x")
	a.Add("c", "y")

	b := NewDirectory(2)
	b.Add("a", "x")
	b.Add("bc", "y")

	require.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}
