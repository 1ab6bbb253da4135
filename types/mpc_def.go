package types

// MPCShare is a share of a shared variable as it travels on the wire. Values
// are decimal strings so that the modulus is never implicit.
type MPCShare struct {
	Owner   string // identity of the party that produced the share
	ID      string // shared variable identifier
	Roster  string // fingerprint of the sender's roster
	Value   string
	Modulus string
}

// InputShareMessage carries the share of one of a party's private inputs,
// sent to the participant whose ordinal is the evaluation point. A party
// submits Count inputs, numbered by Seq from 0.
type InputShareMessage struct {
	Seq   int
	Count int
	Share MPCShare
}

// ProductShareMessage carries the reshared local product of a multiplication
// gate.
type ProductShareMessage struct {
	Gate  int
	Share MPCShare
}

// FinalShareMessage opens the share of the final product. It is broadcast to
// every participant.
type FinalShareMessage struct {
	Share MPCShare
}

// MPCShareStatus describes a share held by a party.
type MPCShareStatus struct {
	Owner   string
	Ordinal int
	Seq     int
	Value   string
}

// MPCGateStatus describes the state of a multiplication gate.
type MPCGateStatus struct {
	Index    int
	State    string
	Issued   bool  // our local product was reshared
	Received []int // ordinals we got a product share from
	Quorum   []int // ordinals needed to resolve
	Value    string
}

// MPCStatus is a read-only snapshot of a party session.
type MPCStatus struct {
	Identity     string
	Ordinal      int
	Participants []string
	Roster       string
	Threshold    int
	Modulus      uint64

	InputSubmitted bool
	OwnInputs      []string // our plaintext inputs, in submission order
	InputCount     int      // inputs of the whole roster, 0 until known
	Inputs         []MPCShareStatus
	Gates          []MPCGateStatus
	FinalShares    []MPCShareStatus

	Opened bool   // our final share was broadcast
	Result string // reconstructed product, empty until available
}
