package types

import "fmt"

// -----------------------------------------------------------------------------
// JoinMessage

// NewEmpty implements types.Message.
func (m JoinMessage) NewEmpty() Message {
	return &JoinMessage{}
}

// Name implements types.Message.
func (JoinMessage) Name() string {
	return "join"
}

// String implements types.Message.
func (m JoinMessage) String() string {
	return fmt.Sprintf("{join %s at %s (forwarded: %t)}", m.Member.Identity, m.Member.Addr, m.Forwarded)
}

// HTML implements types.Message.
func (m JoinMessage) HTML() string {
	return m.String()
}

// -----------------------------------------------------------------------------
// WelcomeMessage

// NewEmpty implements types.Message.
func (m WelcomeMessage) NewEmpty() Message {
	return &WelcomeMessage{}
}

// Name implements types.Message.
func (WelcomeMessage) Name() string {
	return "welcome"
}

// String implements types.Message.
func (m WelcomeMessage) String() string {
	return fmt.Sprintf("{welcome with %d members}", len(m.Members))
}

// HTML implements types.Message.
func (m WelcomeMessage) HTML() string {
	return m.String()
}

// -----------------------------------------------------------------------------
// ChatMessage

// NewEmpty implements types.Message.
func (m ChatMessage) NewEmpty() Message {
	return &ChatMessage{}
}

// Name implements types.Message.
func (ChatMessage) Name() string {
	return "chat"
}

// String implements types.Message.
func (m ChatMessage) String() string {
	return fmt.Sprintf("<%s> %s", m.Identity, m.Message)
}

// HTML implements types.Message.
func (m ChatMessage) HTML() string {
	return m.String()
}
