package peer

import (
	"crypto/ecdsa"
	"io"

	"go.dedis.ch/mpcmul/registry"
	"go.dedis.ch/mpcmul/storage"
	"go.dedis.ch/mpcmul/transport"
)

// DefaultModulus is the prime used when none is configured.
const DefaultModulus = 43112609

// Peer defines the interface of a party of the computation.
type Peer interface {
	Service
	Messaging
	MPC
}

// Factory is the type of function we are using to create new instances of
// peers.
type Factory func(Configuration) (Peer, error)

// Configuration is used when we create a new peer.
type Configuration struct {
	Socket          transport.Socket
	MessageRegistry registry.Registry

	// PrivateKey identifies the party. A fresh key is generated when nil.
	PrivateKey *ecdsa.PrivateKey

	// Identity is the name of the party in the roster. It defaults to the
	// address derived from PrivateKey. Identities define the ordinals, they
	// must be unique.
	Identity string

	// Participants is the number of parties of the computation, including
	// this one.
	Participants int

	// Threshold is the degree of the sharing polynomials. It must satisfy
	// 0 <= Threshold and 2*Threshold < Participants.
	Threshold int

	// Modulus is the prime of the field. Default: DefaultModulus.
	Modulus uint64

	// ManualAdvance disables automatic progression of the multiplication
	// chain. Each step must then be issued with AdvanceMultiplication.
	ManualAdvance bool

	// Rand is the source of randomness for sharing polynomials. Default:
	// crypto/rand.
	Rand io.Reader

	// Storage keeps the party's own input. Default: in-memory.
	Storage storage.KVStore
}

// DefaultThreshold returns the largest threshold n parties can support.
func DefaultThreshold(n int) int {
	if n < 1 {
		return 0
	}
	return (n - 1) / 2
}

// Service defines the functions for the basic operations of a peer.
type Service interface {
	// Start starts the node. It should, among other things, start listening
	// on its address using the socket.
	Start() error

	// Stop stops the node. This function must block until all goroutines are
	// done.
	Stop() error
}
