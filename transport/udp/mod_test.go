package udp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/mpcmul/transport"
)

func Test_UDP_Send_Recv(t *testing.T) {
	transp := NewUDP()

	sockA, err := transp.CreateSocket("127.0.0.1:0")
	require.NoError(t, err)
	defer sockA.Close()

	sockB, err := transp.CreateSocket("127.0.0.1:0")
	require.NoError(t, err)
	defer sockB.Close()

	header := transport.NewHeader(sockA.GetAddress(), sockA.GetAddress(), sockB.GetAddress())
	msg := transport.Message{Type: "chat", Payload: []byte{1, 2, 3}}

	err = sockA.Send(sockB.GetAddress(), transport.Packet{Header: &header, Msg: &msg}, time.Second)
	require.NoError(t, err)

	pkt, err := sockB.Recv(time.Second)
	require.NoError(t, err)
	require.Equal(t, header.PacketID, pkt.Header.PacketID)
	require.Equal(t, msg.Payload, pkt.Msg.Payload)

	require.Len(t, sockA.GetOuts(), 1)
	require.Len(t, sockB.GetIns(), 1)
}

func Test_UDP_Recv_Timeout(t *testing.T) {
	sock, err := NewUDP().CreateSocket("127.0.0.1:0")
	require.NoError(t, err)
	defer sock.Close()

	_, err = sock.Recv(time.Millisecond * 50)
	require.ErrorIs(t, err, transport.TimeoutError(0))
}

func Test_UDP_Invalid_Address(t *testing.T) {
	_, err := NewUDP().CreateSocket("localhost")
	require.Error(t, err)

	_, err = NewUDP().CreateSocket("abc:123")
	require.Error(t, err)
}

func Test_UDP_Close_Twice(t *testing.T) {
	sock, err := NewUDP().CreateSocket("127.0.0.1:0")
	require.NoError(t, err)

	require.NoError(t, sock.Close())
	require.Error(t, sock.Close())
}
