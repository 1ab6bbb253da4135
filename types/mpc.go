package types

import "fmt"

// -----------------------------------------------------------------------------
// InputShareMessage

// NewEmpty implements types.Message.
func (m InputShareMessage) NewEmpty() Message {
	return &InputShareMessage{}
}

// Name implements types.Message.
func (InputShareMessage) Name() string {
	return "mpcinput"
}

// String implements types.Message.
func (m InputShareMessage) String() string {
	return fmt.Sprintf("{mpc input share %d/%d %s from %s}", m.Seq+1, m.Count, m.Share.ID, m.Share.Owner)
}

// HTML implements types.Message.
func (m InputShareMessage) HTML() string {
	return m.String()
}

// -----------------------------------------------------------------------------
// ProductShareMessage

// NewEmpty implements types.Message.
func (m ProductShareMessage) NewEmpty() Message {
	return &ProductShareMessage{}
}

// Name implements types.Message.
func (ProductShareMessage) Name() string {
	return "mpcproduct"
}

// String implements types.Message.
func (m ProductShareMessage) String() string {
	return fmt.Sprintf("{mpc product share for gate %d from %s}", m.Gate, m.Share.Owner)
}

// HTML implements types.Message.
func (m ProductShareMessage) HTML() string {
	return m.String()
}

// -----------------------------------------------------------------------------
// FinalShareMessage

// NewEmpty implements types.Message.
func (m FinalShareMessage) NewEmpty() Message {
	return &FinalShareMessage{}
}

// Name implements types.Message.
func (FinalShareMessage) Name() string {
	return "mpcfinal"
}

// String implements types.Message.
func (m FinalShareMessage) String() string {
	return fmt.Sprintf("{mpc final share from %s: %s}", m.Share.Owner, m.Share.Value)
}

// HTML implements types.Message.
func (m FinalShareMessage) HTML() string {
	return m.String()
}
