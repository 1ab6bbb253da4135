package peer

import "go.dedis.ch/mpcmul/types"

// Messaging defines the roster and messaging functions of a party.
type Messaging interface {
	// Identity returns the identity of the party.
	Identity() string

	// GetAddress returns the address of the party's socket.
	GetAddress() string

	// Connect asks the party at addr to let us join. The join is forwarded
	// to the other members, and the answer carries the roster.
	Connect(addr string) error

	// AddParticipant registers a participant without any exchange.
	AddParticipant(identity, addr string) error

	// Participants returns the sorted identities of the roster.
	Participants() []string

	// Chat broadcasts a free text message to the roster.
	Chat(text string) error

	// GetChats returns the chat messages received so far.
	GetChats() []types.ChatMessage
}
