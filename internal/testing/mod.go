// Package testing provides the helpers to run parties in tests.
package testing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/mpcmul/peer"
	"go.dedis.ch/mpcmul/registry/standard"
	"go.dedis.ch/mpcmul/transport"
	"go.dedis.ch/mpcmul/zp"
)

type configTemplate struct {
	identity      string
	participants  int
	threshold     int
	modulus       uint64
	manualAdvance bool
	autoStart     bool
}

func newConfigTemplate() configTemplate {
	return configTemplate{
		participants: 3,
		threshold:    1,
		modulus:      peer.DefaultModulus,
		autoStart:    true,
	}
}

// Option is the type of option when creating a test node.
type Option func(*configTemplate)

// WithIdentity sets the identity of the party.
func WithIdentity(identity string) Option {
	return func(ct *configTemplate) {
		ct.identity = identity
	}
}

// WithParticipants sets the number of parties and the threshold.
func WithParticipants(n, threshold int) Option {
	return func(ct *configTemplate) {
		ct.participants = n
		ct.threshold = threshold
	}
}

// WithModulus sets the prime of the field.
func WithModulus(p uint64) Option {
	return func(ct *configTemplate) {
		ct.modulus = p
	}
}

// WithManualAdvance disables the automatic progression of the chain.
func WithManualAdvance() Option {
	return func(ct *configTemplate) {
		ct.manualAdvance = true
	}
}

// WithAutostart sets whether the node is started when created.
func WithAutostart(autostart bool) Option {
	return func(ct *configTemplate) {
		ct.autoStart = autostart
	}
}

// TestNode is a party with its socket, for tests.
type TestNode struct {
	peer.Peer
	t      *testing.T
	socket transport.ClosableSocket
}

// NewTestNode returns a new test node listening on addr.
func NewTestNode(t *testing.T, f peer.Factory, trans transport.Transport,
	addr string, opts ...Option) TestNode {

	template := newConfigTemplate()
	for _, opt := range opts {
		opt(&template)
	}

	socket, err := trans.CreateSocket(addr)
	require.NoError(t, err)

	config := peer.Configuration{
		Socket:          socket,
		MessageRegistry: standard.NewRegistry(),
		Identity:        template.identity,
		Participants:    template.participants,
		Threshold:       template.threshold,
		Modulus:         template.modulus,
		ManualAdvance:   template.manualAdvance,
	}

	node, err := f(config)
	require.NoError(t, err)

	if template.autoStart {
		require.NoError(t, node.Start())
	}

	return TestNode{
		Peer:   node,
		t:      t,
		socket: socket,
	}
}

// GetAddr returns the node's socket address.
func (t TestNode) GetAddr() string {
	return t.socket.GetAddress()
}

// GetIns returns all the packets received so far.
func (t TestNode) GetIns() []transport.Packet {
	return t.socket.GetIns()
}

// GetOuts returns all the packets sent so far.
func (t TestNode) GetOuts() []transport.Packet {
	return t.socket.GetOuts()
}

// Stop stops the node and closes its socket.
func (t TestNode) Stop() {
	require.NoError(t.t, t.Peer.Stop())
	require.NoError(t.t, t.socket.Close())
}

// Introduce registers every node in the roster of every other node, without
// any exchange of messages.
func Introduce(t *testing.T, nodes ...TestNode) {
	for _, a := range nodes {
		for _, b := range nodes {
			require.NoError(t, a.AddParticipant(b.Identity(), b.GetAddr()))
		}
	}
}

// WaitResult waits until the node reconstructed the product.
func WaitResult(t *testing.T, node TestNode, timeout time.Duration) zp.Element {
	var res zp.Element

	require.Eventually(t, func() bool {
		var err error
		res, err = node.ReconstructedResult()
		return err == nil
	}, timeout, time.Millisecond*10, "%s did not reconstruct the product", node.Identity())

	return res
}
