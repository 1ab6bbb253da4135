package transport

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"
)

// Factory defines the general function to create a network.
type Factory func() Transport

// Transport defines the primitives to handle a layer 4 transport.
type Transport interface {
	CreateSocket(address string) (ClosableSocket, error)
}

// Socket describes the primitives of a socket.
type Socket interface {
	// Send sends a msg to the destination. If the timeout is reached without
	// having sent the message, returns a TimeoutError. A value of 0 means no
	// timeout.
	Send(dest string, pkt Packet, timeout time.Duration) error

	// Recv blocks until a packet is received, or the timeout is reached. In
	// the case the timeout is reached, returns a TimeoutError. A value of 0
	// means no timeout.
	Recv(timeout time.Duration) (Packet, error)

	// GetAddress returns the address assigned. Can be useful in the case one
	// provided a :0 address, which makes the system use a random free port.
	GetAddress() string

	// GetIns must return all the messages received so far.
	GetIns() []Packet

	// GetOuts must return all the messages sent so far.
	GetOuts() []Packet
}

// ClosableSocket augments the Socket interface with a close function.
type ClosableSocket interface {
	Socket

	// Close closes the connection. It returns an error if the socket is
	// already closed.
	Close() error
}

// Packet is a type of data sent over the network.
type Packet struct {
	Header *Header
	Msg    *Message
}

// Marshal transforms a packet to something that can be sent over the network.
func (p *Packet) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

// Unmarshal transforms a marshaled packet to an actual packet. Does not
// create a copy of the provided buffer.
func (p *Packet) Unmarshal(buf []byte) error {
	return json.Unmarshal(buf, p)
}

// Copy returns a copy of the packet.
func (p Packet) Copy() Packet {
	var h *Header
	if p.Header != nil {
		hc := p.Header.Copy()
		h = &hc
	}

	var m *Message
	if p.Msg != nil {
		mc := p.Msg.Copy()
		m = &mc
	}

	return Packet{Header: h, Msg: m}
}

// String implements fmt.Stringer.
func (p Packet) String() string {
	return fmt.Sprintf("%s - %s", p.Header, p.Msg)
}

// Header contains the metadata of a packet needed for its transport.
type Header struct {
	// PacketID is a unique packet identifier. Used for debug purposes.
	PacketID string

	// Timestamp is the creation timestamp of the packet, in nanoseconds.
	Timestamp int64

	// Source is the address of the packet's creator.
	Source string

	// RelayedBy is the address of the node that sends the packet.
	RelayedBy string

	// Destination is empty in the case of a broadcast, otherwise contains the
	// destination address.
	Destination string
}

// NewHeader returns a new header with initialized fields.
func NewHeader(source, relayedBy, destination string) Header {
	return Header{
		PacketID:    xid.New().String(),
		Timestamp:   time.Now().UnixNano(),
		Source:      source,
		RelayedBy:   relayedBy,
		Destination: destination,
	}
}

// Copy returns the copy of header.
func (h Header) Copy() Header {
	return h
}

// String implements fmt.Stringer.
func (h *Header) String() string {
	if h == nil {
		return "<nil header>"
	}
	return fmt.Sprintf("{id %s, %s -> %s, relayed by %s}",
		h.PacketID, h.Source, h.Destination, h.RelayedBy)
}

// Message defines the type of message sent over the network. Payload is the
// encoded types.Message, and Type its name.
type Message struct {
	Type    string
	Payload []byte
}

// Copy returns a copy of the message.
func (m Message) Copy() Message {
	payload := make([]byte, len(m.Payload))
	copy(payload, m.Payload)

	return Message{Type: m.Type, Payload: payload}
}

// String implements fmt.Stringer.
func (m *Message) String() string {
	if m == nil {
		return "<nil message>"
	}
	return fmt.Sprintf("{type %s, %d bytes}", m.Type, len(m.Payload))
}

// TimeoutError is a type of error used by the network interface if a timeout
// is reached when sending or receiving.
type TimeoutError time.Duration

// Error implements error.
func (err TimeoutError) Error() string {
	return fmt.Sprintf("timeout reached after %d", err)
}

// Is implements error.
func (TimeoutError) Is(err error) bool {
	_, ok := err.(TimeoutError)
	return ok
}
