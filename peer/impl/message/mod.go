package message

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.dedis.ch/mpcmul/peer"
	"go.dedis.ch/mpcmul/transport"
	"go.dedis.ch/mpcmul/types"
	"golang.org/x/xerrors"
)

const ReadTimeout = time.Millisecond * 100
const WriteTimeout = time.Second

// MessageModule handles the roster and the exchange of messages with the
// other parties. Parties are directly connected: packets are never relayed.
type MessageModule struct {
	conf     *peer.Configuration
	identity string

	directory *Directory
	chats     SafeChats

	listenersMu sync.Mutex
	listeners   []func()
}

// NewMessageModule creates the module and registers ourself in the roster.
func NewMessageModule(conf *peer.Configuration, identity string) (*MessageModule, error) {
	m := MessageModule{
		conf:      conf,
		identity:  identity,
		directory: NewDirectory(conf.Participants),
		chats:     *NewSafeChats(),
	}

	_, err := m.directory.Add(identity, conf.Socket.GetAddress())
	if err != nil {
		return nil, xerrors.Errorf("failed to register ourself: %w", err)
	}

	// message registery
	m.conf.MessageRegistry.RegisterMessageCallback(types.JoinMessage{}, m.ProcessJoinMsg)
	m.conf.MessageRegistry.RegisterMessageCallback(types.WelcomeMessage{}, m.ProcessWelcomeMsg)
	m.conf.MessageRegistry.RegisterMessageCallback(types.ChatMessage{}, m.ProcessChatMsg)

	return &m, nil
}

/** Feature Functions **/

// Identity implements peer.Messaging
func (m *MessageModule) Identity() string {
	return m.identity
}

// Self returns our identity.
func (m *MessageModule) Self() string {
	return m.identity
}

// GetAddress implements peer.Messaging
func (m *MessageModule) GetAddress() string {
	return m.conf.Socket.GetAddress()
}

// Participants implements peer.Messaging
func (m *MessageModule) Participants() []string {
	return m.directory.Participants()
}

// Index returns the ordinal of a participant.
func (m *MessageModule) Index(identity string) (int, error) {
	return m.directory.Index(identity)
}

// Address returns the address of a participant.
func (m *MessageModule) Address(identity string) (string, error) {
	return m.directory.Address(identity)
}

// Fingerprint returns the fingerprint of our roster.
func (m *MessageModule) Fingerprint() string {
	return m.directory.Fingerprint()
}

// Complete tells if all the parties joined.
func (m *MessageModule) Complete() bool {
	return m.directory.Complete()
}

// Directory returns the roster.
func (m *MessageModule) Directory() *Directory {
	return m.directory
}

// OnRosterChange registers a function called each time a participant joins.
// It is called without any lock held.
func (m *MessageModule) OnRosterChange(f func()) {
	m.listenersMu.Lock()
	defer m.listenersMu.Unlock()

	m.listeners = append(m.listeners, f)
}

// AddParticipant implements peer.Messaging
func (m *MessageModule) AddParticipant(identity, addr string) error {
	added, err := m.directory.Add(identity, addr)
	if err != nil {
		return err
	}
	if !added {
		return nil
	}

	log.Info().Str("party", m.identity).Str("participant", identity).Str("addr", addr).
		Msgf("participant joined (%d/%d)", m.directory.Len(), m.directory.Expected())

	m.listenersMu.Lock()
	listeners := append([]func(){}, m.listeners...)
	m.listenersMu.Unlock()

	for _, f := range listeners {
		f()
	}

	return nil
}

// Connect implements peer.Messaging
func (m *MessageModule) Connect(addr string) error {
	join := types.JoinMessage{
		Member: types.Member{Identity: m.identity, Addr: m.GetAddress()},
	}

	err := m.SendTo(addr, join)
	if err != nil {
		return xerrors.Errorf("failed to join %s: %v", addr, err)
	}
	return nil
}

// Chat implements peer.Messaging
func (m *MessageModule) Chat(text string) error {
	chat := types.ChatMessage{Identity: m.identity, Message: text}
	m.chats.add(chat)

	return m.Broadcast(chat)
}

// GetChats implements peer.Messaging
func (m *MessageModule) GetChats() []types.ChatMessage {
	return m.chats.getAll()
}

// Send sends a message to a participant.
func (m *MessageModule) Send(to string, msg types.Message) error {
	addr, err := m.directory.Address(to)
	if err != nil {
		return err
	}
	return m.SendTo(addr, msg)
}

// Broadcast sends a message to every participant but ourself. Every
// participant is tried, the first error is returned.
func (m *MessageModule) Broadcast(msg types.Message) error {
	var first error
	for _, member := range m.directory.Members() {
		if member.Identity == m.identity {
			continue
		}
		err := m.SendTo(member.Addr, msg)
		if err != nil {
			log.Warn().Str("party", m.identity).Str("to", member.Identity).Err(err).
				Msgf("failed to send %s", msg.Name())
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// SendTo sends a message to an address.
func (m *MessageModule) SendTo(addr string, msg types.Message) error {
	tmsg, err := m.conf.MessageRegistry.MarshalMessage(msg)
	if err != nil {
		return err
	}

	header := transport.NewHeader(m.GetAddress(), m.GetAddress(), addr)
	pkt := transport.Packet{Header: &header, Msg: &tmsg}

	return m.conf.Socket.Send(addr, pkt, WriteTimeout)
}

/** Daemon **/

// MessagingDaemon starts a new loop to listen to the messages. It stops when
// the context is done, and calls wg.Done.
func (m *MessageModule) MessagingDaemon(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			select {
			case <-ctx.Done():
				return
			default:
				pkt, err := m.conf.Socket.Recv(ReadTimeout)
				if xerrors.Is(err, transport.TimeoutError(0)) {
					continue
				}
				if err != nil {
					if ctx.Err() == nil {
						log.Debug().Str("party", m.identity).Err(err).Msg("failed to receive")
					}
					continue
				}

				err = m.processPkt(pkt)
				if err != nil {
					log.Warn().Str("party", m.identity).Str("packet", pkt.String()).Err(err).
						Msg("dropping packet")
				}
			}
		}
	}()
}

/** Private Helper Functions **/

// processPkt processes a packet received. Handler errors only affect the
// packet itself.
func (m *MessageModule) processPkt(pkt transport.Packet) error {
	if pkt.Header == nil || pkt.Msg == nil {
		return xerrors.Errorf("%w: incomplete packet", types.ErrMalformedMessage)
	}
	if pkt.Header.Destination != m.GetAddress() {
		return xerrors.Errorf("packet for %s received on %s", pkt.Header.Destination, m.GetAddress())
	}

	return m.conf.MessageRegistry.ProcessPacket(pkt)
}
