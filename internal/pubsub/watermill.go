package pubsub

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// WatermillBridge implements the Publisher and Subscriber interfaces using
// watermill's GoChannel, an in-memory pub/sub. The bridge is process-scoped
// state: it is created at startup, holds the channel-key to subscriber
// registry internally, and drops every registration when closed. Nothing
// about a subscription survives a restart.
type WatermillBridge struct {
	pub message.Publisher
	sub message.Subscriber
	// Logger for watermill to use.
	logger watermill.LoggerAdapter
}

const metaKeyTopic = "topic"

// NewWatermillBridge initializes the in-memory Pub/Sub system.
func NewWatermillBridge() *WatermillBridge {
	logger := watermill.NewStdLogger(false, false)
	goChannel := gochannel.NewGoChannel(
		gochannel.Config{},
		logger,
	)

	return &WatermillBridge{
		pub:    goChannel,
		sub:    goChannel,
		logger: logger,
	}
}

// mapToWatermillMessage converts our pubsub.Message to a watermill message.
func mapToWatermillMessage(msg Message) *message.Message {
	wmMsg := message.NewMessage(watermill.NewUUID(), msg.Payload)

	wmMsg.Metadata.Set(metaKeyTopic, msg.Topic)
	for k, v := range msg.Metadata {
		wmMsg.Metadata.Set(k, v)
	}

	return wmMsg
}

// mapToPubSubMessage converts a watermill message back to our internal
// pubsub.Message.
func mapToPubSubMessage(wmMsg *message.Message) Message {
	topic := wmMsg.Metadata.Get(metaKeyTopic)

	metadata := make(map[string]string)
	for k, v := range wmMsg.Metadata {
		if k != metaKeyTopic {
			metadata[k] = v
		}
	}

	return Message{
		Topic:    topic,
		Payload:  wmMsg.Payload,
		Metadata: metadata,
	}
}

// Publish implements the Publisher interface. With no subscriber on the
// topic the message goes nowhere; GoChannel does not persist it.
func (wb *WatermillBridge) Publish(ctx context.Context, msg Message) error {
	wmMsg := mapToWatermillMessage(msg)
	return wb.pub.Publish(msg.Topic, wmMsg)
}

// Subscribe implements the Subscriber interface. The returned Subscription's
// Unsubscribe cancels the delivery loop; watermill closes the message
// channel once the subscription context is done, which ends the goroutine.
func (wb *WatermillBridge) Subscribe(ctx context.Context, topic string, handler Handler) (*Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)

	messages, err := wb.sub.Subscribe(subCtx, topic)
	if err != nil {
		cancel()
		return nil, err
	}

	sub := &Subscription{
		topic:  topic,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	// Run the message processing in a separate goroutine so that Subscribe
	// is non-blocking. Delivery order within the topic is the channel order.
	go func() {
		defer close(sub.done)
		for wmMsg := range messages {
			msg := mapToPubSubMessage(wmMsg)

			if err := handler(subCtx, msg); err != nil {
				slog.Error("Failed to handle message", "topic", topic, "msg_id", wmMsg.UUID, "error", err)
				// The in-memory bus has no redelivery; nack for visibility
				// and move on.
				wmMsg.Nack()
			} else {
				wmMsg.Ack()
			}
		}
		slog.Debug("Subscription message loop ended", "topic", topic)
	}()

	return sub, nil
}

// Close shuts down the bridge. Closing the subscriber closes the gochannel
// and stops message consumption for every outstanding subscription.
func (wb *WatermillBridge) Close() error {
	return wb.sub.Close()
}
