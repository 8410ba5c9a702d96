package pubsub

import (
	"context"
	"sync"
)

// Message is the structure passed between components on the bus.
// It is intentionally simple to act as a wrapper for raw data.
type Message struct {
	// Topic identifies the channel the message belongs to
	// (e.g., "chat.message.new.<chatId>").
	Topic string
	// Payload contains the raw message data (JSON).
	Payload []byte
	// Metadata can contain arbitrary key-value pairs for context.
	Metadata map[string]string
}

// Handler defines the function signature for processing a received message.
type Handler func(ctx context.Context, msg Message) error

// Publisher defines the contract for sending messages to the Pub/Sub system.
//
// Publishing to a topic with no active subscription delivers to nobody and
// is not an error: the bus has no buffering and no replay. A subscriber that
// attaches after a publish never sees that event and must rely on an initial
// full fetch from the store instead.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Subscriber defines the contract for receiving messages from the Pub/Sub
// system. Events for one topic reach a given subscription in publish order;
// no ordering is guaranteed across topics or across subscriptions.
type Subscriber interface {
	// Subscribe attaches the handler to the topic and returns immediately.
	// The handler runs on a background goroutine until the subscription is
	// cancelled (or the bus is closed). Undelivered events for a cancelled
	// subscription are discarded.
	Subscribe(ctx context.Context, topic string, handler Handler) (*Subscription, error)
	Close() error
}

// Subscription is the handle for one live topic attachment. Unsubscribe
// releases the underlying resources; events still queued for the handle are
// dropped.
type Subscription struct {
	topic  string
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Topic returns the topic this subscription is attached to.
func (s *Subscription) Topic() string {
	return s.topic
}

// Unsubscribe cancels the subscription. It is idempotent and safe to call
// from any goroutine.
func (s *Subscription) Unsubscribe() {
	s.once.Do(s.cancel)
}

// Done is closed once the subscription's delivery loop has fully stopped.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}
