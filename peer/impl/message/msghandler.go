package message

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"go.dedis.ch/mpcmul/transport"
	"go.dedis.ch/mpcmul/types"
	"golang.org/x/xerrors"
)

// ProcessJoinMsg is a callback function to handle a join request. The
// newcomer gets our roster, and the other members learn about the newcomer.
func (m *MessageModule) ProcessJoinMsg(msg types.Message, pkt transport.Packet) error {
	join, ok := msg.(*types.JoinMessage)
	if !ok {
		return fmt.Errorf("wrong type: %T", msg)
	}

	newcomer := join.Member
	if newcomer.Identity == m.identity {
		return nil
	}

	err := m.AddParticipant(newcomer.Identity, newcomer.Addr)
	if err != nil {
		return xerrors.Errorf("failed to accept %s: %w", newcomer.Identity, err)
	}

	if join.Forwarded {
		return nil
	}

	members := m.directory.Members()

	err = m.SendTo(newcomer.Addr, types.WelcomeMessage{Members: members})
	if err != nil {
		return xerrors.Errorf("failed to welcome %s: %v", newcomer.Identity, err)
	}

	forward := types.JoinMessage{Member: newcomer, Forwarded: true}
	for _, member := range members {
		if member.Identity == m.identity || member.Identity == newcomer.Identity {
			continue
		}
		err = m.SendTo(member.Addr, forward)
		if err != nil {
			log.Warn().Str("party", m.identity).Str("to", member.Identity).Err(err).
				Msg("failed to forward join")
		}
	}

	return nil
}

// ProcessWelcomeMsg is a callback function to handle the roster sent back
// after a join.
func (m *MessageModule) ProcessWelcomeMsg(msg types.Message, pkt transport.Packet) error {
	welcome, ok := msg.(*types.WelcomeMessage)
	if !ok {
		return fmt.Errorf("wrong type: %T", msg)
	}

	for _, member := range welcome.Members {
		if member.Identity == m.identity {
			continue
		}
		err := m.AddParticipant(member.Identity, member.Addr)
		if err != nil {
			log.Warn().Str("party", m.identity).Str("participant", member.Identity).Err(err).
				Msg("ignoring welcomed member")
		}
	}

	return nil
}

// ProcessChatMsg is a callback function to handle a chat message.
func (m *MessageModule) ProcessChatMsg(msg types.Message, pkt transport.Packet) error {
	chat, ok := msg.(*types.ChatMessage)
	if !ok {
		return fmt.Errorf("wrong type: %T", msg)
	}

	log.Info().Str("party", m.identity).Msg(chat.String())
	m.chats.add(*chat)

	return nil
}
