package types

// Member is a participant of the roster together with its address.
type Member struct {
	Identity string
	Addr     string
}

// JoinMessage is sent by a party that wants to join the computation. A
// member receiving it forwards it to the rest of the roster, with Forwarded
// set so that it is not forwarded again.
type JoinMessage struct {
	Member    Member
	Forwarded bool
}

// WelcomeMessage answers a JoinMessage with the roster known by the sender.
type WelcomeMessage struct {
	Members []Member
}

// ChatMessage is a free text message broadcast to the roster.
type ChatMessage struct {
	Identity string
	Message  string
}
