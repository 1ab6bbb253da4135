package registry

import (
	"go.dedis.ch/mpcmul/transport"
	"go.dedis.ch/mpcmul/types"
)

// Exec is the type of function executed upon message reception. The message
// is a pointer to the registered type, for example *types.ChatMessage.
type Exec func(types.Message, transport.Packet) error

// Registry defines the functions to register callbacks and to
// marshal/unmarshal messages.
type Registry interface {
	// RegisterMessageCallback registers the callback executed when a message
	// of the given type is received. A second registration for the same type
	// replaces the first one.
	RegisterMessageCallback(types.Message, Exec)

	// ProcessPacket decodes the message of the packet and executes the
	// registered callback.
	ProcessPacket(transport.Packet) error

	// MarshalMessage encodes a message into a transport message.
	MarshalMessage(types.Message) (transport.Message, error)

	// UnmarshalMessage decodes the payload of a transport message into the
	// given message, which must be a pointer.
	UnmarshalMessage(*transport.Message, types.Message) error
}
