package client

import (
	"sync"

	"github.com/daechang/placetalk/internal/domain"
)

// MessageCache is the per-room ordered view a viewer sees: the initial fetch
// merged with the live stream, with duplicates suppressed.
//
// Duplicate delivery is normal, not exceptional: the sender's own message
// comes back once as the mutation response (optimistic append) and again on
// the subscription stream. The cache recognizes a repeat by the
// (senderEmail, sendAt, text) identity and keeps exactly one entry.
type MessageCache struct {
	mu   sync.RWMutex
	list []domain.Message
	seen map[domain.MessageIdentity]bool
}

// NewMessageCache creates an empty cache.
func NewMessageCache() *MessageCache {
	return &MessageCache{
		seen: make(map[domain.MessageIdentity]bool),
	}
}

// Seed replaces the cache content with the result of a full fetch. It is
// called once per room-open and again after a reconnect, since the bus does
// not replay events missed while disconnected.
func (c *MessageCache) Seed(msgs []domain.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.list = c.list[:0]
	c.seen = make(map[domain.MessageIdentity]bool, len(msgs))
	for _, msg := range msgs {
		if c.seen[msg.Identity()] {
			continue
		}
		c.seen[msg.Identity()] = true
		c.list = append(c.list, msg)
	}
}

// Add appends a message unless one with the same identity is already
// present. It reports whether the message was actually added.
func (c *MessageCache) Add(msg domain.Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.seen[msg.Identity()] {
		return false
	}
	c.seen[msg.Identity()] = true
	c.list = append(c.list, msg)
	return true
}

// Messages returns a copy of the cached list in arrival order.
func (c *MessageCache) Messages() []domain.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	msgs := make([]domain.Message, len(c.list))
	copy(msgs, c.list)
	return msgs
}

// Len returns the number of cached messages.
func (c *MessageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.list)
}
