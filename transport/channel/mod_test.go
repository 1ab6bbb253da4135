package channel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/mpcmul/transport"
)

func newPacket(src, dst string) transport.Packet {
	header := transport.NewHeader(src, src, dst)
	return transport.Packet{
		Header: &header,
		Msg:    &transport.Message{Type: "chat", Payload: []byte("hi")},
	}
}

func Test_Channel_Assigns_Ports(t *testing.T) {
	transp := NewTransport()

	sockA, err := transp.CreateSocket("127.0.0.1:0")
	require.NoError(t, err)
	defer sockA.Close()

	sockB, err := transp.CreateSocket("127.0.0.1:0")
	require.NoError(t, err)
	defer sockB.Close()

	require.NotEqual(t, sockA.GetAddress(), sockB.GetAddress())

	_, err = transp.CreateSocket(sockA.GetAddress())
	require.Error(t, err)
}

func Test_Channel_FIFO(t *testing.T) {
	transp := NewTransport()

	sockA, err := transp.CreateSocket("127.0.0.1:0")
	require.NoError(t, err)
	defer sockA.Close()

	sockB, err := transp.CreateSocket("127.0.0.1:0")
	require.NoError(t, err)
	defer sockB.Close()

	sent := make([]string, 10)
	for i := range sent {
		pkt := newPacket(sockA.GetAddress(), sockB.GetAddress())
		sent[i] = pkt.Header.PacketID
		require.NoError(t, sockA.Send(sockB.GetAddress(), pkt, 0))
	}

	for i := range sent {
		pkt, err := sockB.Recv(time.Second)
		require.NoError(t, err)
		require.Equal(t, sent[i], pkt.Header.PacketID)
	}

	require.Len(t, sockA.GetOuts(), 10)
	require.Len(t, sockB.GetIns(), 10)
}

func Test_Channel_Timeout_And_Close(t *testing.T) {
	transp := NewTransport()

	sock, err := transp.CreateSocket("127.0.0.1:0")
	require.NoError(t, err)

	_, err = sock.Recv(time.Millisecond * 20)
	require.ErrorIs(t, err, transport.TimeoutError(0))

	addr := sock.GetAddress()
	require.NoError(t, sock.Close())
	require.Error(t, sock.Close())

	other, err := transp.CreateSocket("127.0.0.1:0")
	require.NoError(t, err)
	defer other.Close()

	err = other.Send(addr, newPacket(other.GetAddress(), addr), time.Second)
	require.Error(t, err)
}
