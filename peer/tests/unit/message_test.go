package unit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	z "go.dedis.ch/mpcmul/internal/testing"
	"go.dedis.ch/mpcmul/transport/channel"
)

func Test_Join_Connects_Everyone(t *testing.T) {
	transp := channel.NewTransport()

	nodeA := z.NewTestNode(t, peerFac, transp, "127.0.0.1:0", z.WithIdentity("a"))
	defer nodeA.Stop()
	nodeB := z.NewTestNode(t, peerFac, transp, "127.0.0.1:0", z.WithIdentity("b"))
	defer nodeB.Stop()
	nodeC := z.NewTestNode(t, peerFac, transp, "127.0.0.1:0", z.WithIdentity("c"))
	defer nodeC.Stop()

	require.NoError(t, nodeB.Connect(nodeA.GetAddr()))
	require.Eventually(t, func() bool {
		return len(nodeB.Participants()) == 2
	}, time.Second*2, time.Millisecond*10)

	require.NoError(t, nodeC.Connect(nodeA.GetAddr()))

	expected := []string{"a", "b", "c"}
	for _, node := range []z.TestNode{nodeA, nodeB, nodeC} {
		node := node
		require.Eventually(t, func() bool {
			return len(node.Participants()) == 3
		}, time.Second*2, time.Millisecond*10)
		require.Equal(t, expected, node.Participants())
	}

	require.Equal(t, nodeA.Status().Roster, nodeB.Status().Roster)
	require.Equal(t, nodeA.Status().Roster, nodeC.Status().Roster)

	// the roster is complete, the computation can run
	submitAll(t, []z.TestNode{nodeA, nodeB, nodeC}, []uint64{5, 7, 11})
	for _, node := range []z.TestNode{nodeA, nodeB, nodeC} {
		res := z.WaitResult(t, node, time.Second*5)
		require.Equal(t, uint64(385), res.Value())
	}
}

func Test_Join_Refused_When_Full(t *testing.T) {
	transp := channel.NewTransport()

	nodeA := z.NewTestNode(t, peerFac, transp, "127.0.0.1:0", z.WithIdentity("a"), z.WithParticipants(2, 0))
	defer nodeA.Stop()
	nodeB := z.NewTestNode(t, peerFac, transp, "127.0.0.1:0", z.WithIdentity("b"), z.WithParticipants(2, 0))
	defer nodeB.Stop()
	nodeC := z.NewTestNode(t, peerFac, transp, "127.0.0.1:0", z.WithIdentity("c"), z.WithParticipants(2, 0))
	defer nodeC.Stop()

	z.Introduce(t, nodeA, nodeB)

	require.NoError(t, nodeC.Connect(nodeA.GetAddr()))

	require.Eventually(t, func() bool {
		return len(nodeA.GetIns()) > 0
	}, time.Second*2, time.Millisecond*10)
	time.Sleep(time.Millisecond * 200)

	require.Equal(t, []string{"a", "b"}, nodeA.Participants())
	require.Equal(t, []string{"c"}, nodeC.Participants())
}

func Test_Chat_Broadcast(t *testing.T) {
	nodes := setupNPeers(t, channel.NewTransport(), 3, 1)
	for _, node := range nodes {
		defer node.Stop()
	}

	require.NoError(t, nodes[0].Chat("hello"))

	for _, node := range nodes[1:] {
		node := node
		require.Eventually(t, func() bool {
			return len(node.GetChats()) == 1
		}, time.Second*2, time.Millisecond*10)

		chat := node.GetChats()[0]
		require.Equal(t, nodes[0].Identity(), chat.Identity)
		require.Equal(t, "hello", chat.Message)
	}

	require.Len(t, nodes[0].GetChats(), 1)
}
