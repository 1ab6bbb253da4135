package standard

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/mpcmul/transport"
	"go.dedis.ch/mpcmul/types"
)

func packetOf(t *testing.T, r *Registry, msg types.Message) transport.Packet {
	tmsg, err := r.MarshalMessage(msg)
	require.NoError(t, err)

	header := transport.NewHeader("127.0.0.1:1", "127.0.0.1:1", "127.0.0.1:2")
	return transport.Packet{Header: &header, Msg: &tmsg}
}

func Test_Registry_Dispatch(t *testing.T) {
	r := NewRegistry()

	var got *types.ProductShareMessage
	r.RegisterMessageCallback(types.ProductShareMessage{}, func(m types.Message, _ transport.Packet) error {
		got = m.(*types.ProductShareMessage)
		return nil
	})

	sent := types.ProductShareMessage{
		Gate: 2,
		Share: types.MPCShare{
			Owner:   "alice",
			ID:      "id",
			Roster:  "abcd",
			Value:   "42",
			Modulus: "43112609",
		},
	}

	err := r.ProcessPacket(packetOf(t, r, sent))
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, sent, *got)
}

func Test_Registry_Unknown_Type(t *testing.T) {
	r := NewRegistry()

	err := r.ProcessPacket(packetOf(t, r, types.ChatMessage{Message: "hi"}))
	require.ErrorIs(t, err, types.ErrMalformedMessage)
}

func Test_Registry_Malformed_Payload(t *testing.T) {
	r := NewRegistry()
	r.RegisterMessageCallback(types.FinalShareMessage{}, func(types.Message, transport.Packet) error {
		return nil
	})

	header := transport.NewHeader("a", "a", "b")
	pkt := transport.Packet{
		Header: &header,
		Msg:    &transport.Message{Type: types.FinalShareMessage{}.Name(), Payload: []byte{0xff, 0x00}},
	}

	err := r.ProcessPacket(pkt)
	require.ErrorIs(t, err, types.ErrMalformedMessage)
}

func Test_Registry_Handler_Error_Is_Wrapped(t *testing.T) {
	r := NewRegistry()
	r.RegisterMessageCallback(types.InputShareMessage{}, func(types.Message, transport.Packet) error {
		return types.ErrRosterMismatch
	})

	err := r.ProcessPacket(packetOf(t, r, types.InputShareMessage{}))
	require.ErrorIs(t, err, types.ErrRosterMismatch)
}
