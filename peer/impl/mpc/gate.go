package mpc

import (
	"go.dedis.ch/mpcmul/zp"
	"golang.org/x/xerrors"
)

// GateState is the state of a multiplication gate.
type GateState int

const (
	// GatePending means the gate exists but holds no product share yet.
	GatePending GateState = iota
	// GateCollecting means product shares are being collected.
	GateCollecting
	// GateResolved is terminal: the gate holds our share of the product.
	GateResolved
)

func (s GateState) String() string {
	switch s {
	case GatePending:
		return "pending"
	case GateCollecting:
		return "collecting"
	case GateResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// MultiplicationGate collects the reshared local products of a gate and
// recombines them into a degree-t share of the product.
//
// The local products lie on a polynomial of degree 2t, so they are
// recombined over a fixed set of 2t+1 ordinals, the same for every party.
// The gate resolves once and only once, when all of them are received.
// Shares from other participants are kept but play no role.
type MultiplicationGate struct {
	index  int
	issued bool

	// received is indexed by sender ordinal, slot 0 is unused
	received []zp.Element
	have     []bool

	quorum  []int
	weights []zp.Element

	resolved bool
	value    zp.Element
}

// NewMultiplicationGate creates the gate for n participants recombining over
// the given ordinals.
func NewMultiplicationGate(field *zp.Field, index, n int, quorum []int) (*MultiplicationGate, error) {
	for _, ordinal := range quorum {
		if ordinal < 1 || ordinal > n {
			return nil, xerrors.Errorf("quorum ordinal %d out of [1, %d]", ordinal, n)
		}
	}

	weights, err := zp.LagrangeCoefficients(field, quorum)
	if err != nil {
		return nil, xerrors.Errorf("failed to compute recombination weights: %w", err)
	}

	return &MultiplicationGate{
		index:    index,
		received: make([]zp.Element, n+1),
		have:     make([]bool, n+1),
		quorum:   append([]int(nil), quorum...),
		weights:  weights,
	}, nil
}

// Index returns the position of the gate in the chain.
func (g *MultiplicationGate) Index() int {
	return g.index
}

// State returns the state of the gate.
func (g *MultiplicationGate) State() GateState {
	if g.resolved {
		return GateResolved
	}
	for _, ok := range g.have {
		if ok {
			return GateCollecting
		}
	}
	return GatePending
}

// Receive stores the product share sent by the participant with the given
// ordinal. It returns false if a share from that ordinal was already stored,
// in which case the first one is kept.
func (g *MultiplicationGate) Receive(ordinal int, share zp.Element) (bool, error) {
	if ordinal < 1 || ordinal >= len(g.have) {
		return false, xerrors.Errorf("ordinal %d out of [1, %d]", ordinal, len(g.have)-1)
	}
	if g.have[ordinal] {
		return false, nil
	}

	g.received[ordinal] = share
	g.have[ordinal] = true

	return true, nil
}

// Resolve recombines the product shares if the gate is not resolved yet and
// all the quorum shares are present. It returns true only the first time the
// gate resolves.
func (g *MultiplicationGate) Resolve() (bool, error) {
	if g.resolved {
		return false, nil
	}
	for _, ordinal := range g.quorum {
		if !g.have[ordinal] {
			return false, nil
		}
	}

	acc := g.weights[0].Field().Zero()
	for i, ordinal := range g.quorum {
		term, err := g.received[ordinal].Mul(g.weights[i])
		if err != nil {
			return false, err
		}
		acc, err = acc.Add(term)
		if err != nil {
			return false, err
		}
	}

	g.value = acc
	g.resolved = true

	return true, nil
}

// Value returns our share of the product once resolved.
func (g *MultiplicationGate) Value() (zp.Element, bool) {
	return g.value, g.resolved
}

// Received returns the ordinals we hold a product share from.
func (g *MultiplicationGate) Received() []int {
	res := []int{}
	for ordinal, ok := range g.have {
		if ok {
			res = append(res, ordinal)
		}
	}
	return res
}

// Quorum returns the recombination ordinals.
func (g *MultiplicationGate) Quorum() []int {
	return append([]int(nil), g.quorum...)
}

// recombinationSet returns the 2t+1 lowest ordinals.
func recombinationSet(threshold int) []int {
	set := make([]int, 2*threshold+1)
	for i := range set {
		set[i] = i + 1
	}
	return set
}
