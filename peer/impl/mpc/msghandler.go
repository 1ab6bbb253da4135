package mpc

import (
	"fmt"

	"go.dedis.ch/mpcmul/transport"
	"go.dedis.ch/mpcmul/types"
)

// ProcessInputShareMsg is a callback function to handle the share of another
// party's input.
func (m *MPCModule) ProcessInputShareMsg(msg types.Message, pkt transport.Packet) error {
	inputMsg, ok := msg.(*types.InputShareMessage)
	if !ok {
		return fmt.Errorf("wrong type: %T", msg)
	}

	return m.handle(pkt.Header.Source, inputMsg)
}

// ProcessProductShareMsg is a callback function to handle a reshared local
// product.
func (m *MPCModule) ProcessProductShareMsg(msg types.Message, pkt transport.Packet) error {
	productMsg, ok := msg.(*types.ProductShareMessage)
	if !ok {
		return fmt.Errorf("wrong type: %T", msg)
	}

	return m.handle(pkt.Header.Source, productMsg)
}

// ProcessFinalShareMsg is a callback function to handle an opened share of
// the product.
func (m *MPCModule) ProcessFinalShareMsg(msg types.Message, pkt transport.Packet) error {
	finalMsg, ok := msg.(*types.FinalShareMessage)
	if !ok {
		return fmt.Errorf("wrong type: %T", msg)
	}

	return m.handle(pkt.Header.Source, finalMsg)
}

// handle passes a share to the session with the address it was sent from,
// which must be the address of the share's owner.
func (m *MPCModule) handle(from string, msg types.Message) error {
	messagesCounter.WithLabelValues(m.Identity(), msg.Name()).Inc()

	err := m.session.Handle(from, msg)
	if err != nil {
		droppedCounter.WithLabelValues(m.Identity(), msg.Name()).Inc()
	}
	return err
}
