package mpc

import (
	"go.dedis.ch/mpcmul/peer"
	"go.dedis.ch/mpcmul/peer/impl/message"
	"go.dedis.ch/mpcmul/types"
	"go.dedis.ch/mpcmul/zp"
)

// MPCModule runs the multiplication session of a party on top of the
// messaging module.
//
// - implements peer.MPC
type MPCModule struct {
	*message.MessageModule
	conf *peer.Configuration

	session *Session
}

// NewMPCModule creates the module and registers its message callbacks. The
// configuration must already be validated.
func NewMPCModule(conf *peer.Configuration, field *zp.Field, messageModule *message.MessageModule) *MPCModule {
	m := MPCModule{
		MessageModule: messageModule,
		conf:          conf,
	}

	m.session = NewSession(messageModule, SessionConfig{
		Field:         field,
		Participants:  conf.Participants,
		Threshold:     conf.Threshold,
		ManualAdvance: conf.ManualAdvance,
		Rand:          conf.Rand,
		Ledger:        conf.Storage,
	})

	messageModule.OnRosterChange(m.session.RosterChanged)

	// message registery
	m.conf.MessageRegistry.RegisterMessageCallback(types.InputShareMessage{}, m.ProcessInputShareMsg)
	m.conf.MessageRegistry.RegisterMessageCallback(types.ProductShareMessage{}, m.ProcessProductShareMsg)
	m.conf.MessageRegistry.RegisterMessageCallback(types.FinalShareMessage{}, m.ProcessFinalShareMsg)

	return &m
}

/** Feature Functions **/

// SubmitInput implements peer.MPC
func (m *MPCModule) SubmitInput(secret uint64) error {
	return m.session.SubmitInput(secret)
}

// SubmitInputs implements peer.MPC
func (m *MPCModule) SubmitInputs(secrets ...uint64) error {
	return m.session.SubmitInputs(secrets...)
}

// AdvanceMultiplication implements peer.MPC
func (m *MPCModule) AdvanceMultiplication() error {
	return m.session.AdvanceMultiplication()
}

// ReconstructedResult implements peer.MPC
func (m *MPCModule) ReconstructedResult() (zp.Element, error) {
	return m.session.ReconstructedResult()
}

// Status implements peer.MPC
func (m *MPCModule) Status() types.MPCStatus {
	return m.session.Status()
}
