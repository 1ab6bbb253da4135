package standard

import (
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/rs/zerolog/log"
	"go.dedis.ch/mpcmul/registry"
	"go.dedis.ch/mpcmul/transport"
	"go.dedis.ch/mpcmul/types"
	"golang.org/x/xerrors"
)

// NewRegistry returns a new initialized registry. Payloads are CBOR encoded.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]handler),
	}
}

type handler struct {
	empty types.Message
	exec  registry.Exec
}

// Registry is the standard registry.
//
// - implements registry.Registry
type Registry struct {
	sync.RWMutex
	handlers map[string]handler
}

// RegisterMessageCallback implements registry.Registry.
func (r *Registry) RegisterMessageCallback(m types.Message, exec registry.Exec) {
	r.Lock()
	defer r.Unlock()

	r.handlers[m.Name()] = handler{empty: m, exec: exec}
}

// ProcessPacket implements registry.Registry. The callback runs without the
// registry lock held.
func (r *Registry) ProcessPacket(pkt transport.Packet) error {
	if pkt.Header == nil || pkt.Msg == nil {
		return xerrors.Errorf("%w: incomplete packet", types.ErrMalformedMessage)
	}

	r.RLock()
	h, found := r.handlers[pkt.Msg.Type]
	r.RUnlock()

	if !found {
		return xerrors.Errorf("%w: no handler for type %q", types.ErrMalformedMessage, pkt.Msg.Type)
	}

	msg := h.empty.NewEmpty()
	err := r.UnmarshalMessage(pkt.Msg, msg)
	if err != nil {
		return err
	}

	log.Debug().Str("type", pkt.Msg.Type).Str("from", pkt.Header.Source).Msgf("processing %s", msg)

	err = h.exec(msg, pkt)
	if err != nil {
		return xerrors.Errorf("failed to process %s: %w", pkt.Msg.Type, err)
	}

	return nil
}

// MarshalMessage implements registry.Registry.
func (r *Registry) MarshalMessage(msg types.Message) (transport.Message, error) {
	payload, err := cbor.Marshal(msg)
	if err != nil {
		return transport.Message{}, xerrors.Errorf("failed to marshal %s: %v", msg.Name(), err)
	}

	return transport.Message{
		Type:    msg.Name(),
		Payload: payload,
	}, nil
}

// UnmarshalMessage implements registry.Registry.
func (r *Registry) UnmarshalMessage(msg *transport.Message, m types.Message) error {
	if msg.Type != m.Name() {
		return xerrors.Errorf("%w: expected %q, got %q", types.ErrMalformedMessage, m.Name(), msg.Type)
	}

	err := cbor.Unmarshal(msg.Payload, m)
	if err != nil {
		return xerrors.Errorf("%w: %v", types.ErrMalformedMessage, err)
	}

	return nil
}
