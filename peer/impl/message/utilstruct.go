package message

import (
	"sync"

	"go.dedis.ch/mpcmul/types"
)

// SafeChats implements a thread-safe chat history
type SafeChats struct {
	*sync.RWMutex
	chats []types.ChatMessage
}

func (c *SafeChats) add(chat types.ChatMessage) {
	c.Lock()
	defer c.Unlock()
	c.chats = append(c.chats, chat)
}
func (c *SafeChats) getAll() []types.ChatMessage {
	c.RLock()
	defer c.RUnlock()
	return append([]types.ChatMessage(nil), c.chats...)
}
func NewSafeChats() *SafeChats {
	return &SafeChats{&sync.RWMutex{}, nil}
}
