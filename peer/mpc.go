package peer

import (
	"go.dedis.ch/mpcmul/types"
	"go.dedis.ch/mpcmul/zp"
)

// MPC defines the secure multiplication functions of a party.
type MPC interface {
	// SubmitInput shares the party's private input with the roster. The
	// roster must be complete, and a party submits its inputs only once.
	SubmitInput(secret uint64) error

	// SubmitInputs shares several private inputs at once. The product covers
	// the inputs of every party, ordered by party then submission order.
	SubmitInputs(secrets ...uint64) error

	// AdvanceMultiplication issues the next step of the chain, either the
	// next gate or the opening of the final share.
	AdvanceMultiplication() error

	// ReconstructedResult returns the product of all inputs once enough final
	// shares were received.
	ReconstructedResult() (zp.Element, error)

	// Status returns a snapshot of the session.
	Status() types.MPCStatus
}
