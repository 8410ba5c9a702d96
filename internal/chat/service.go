package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/daechang/placetalk/internal/domain"
	"github.com/daechang/placetalk/internal/pubsub"
	"github.com/daechang/placetalk/internal/store"
)

// Service is the externally-callable contract for the chatroom messaging
// engine. It wraps the store and triggers realtime delivery.
type Service interface {
	// CreateChatroom creates an empty chatroom. Fails with
	// domain.ErrChatroomExists on a chatId collision.
	CreateChatroom(ctx context.Context, room domain.Chatroom) (*domain.Chatroom, error)

	// DeleteChatroom removes a chatroom and its whole message log, returning
	// the removed room. Fails with domain.ErrChatroomNotFound if absent.
	DeleteChatroom(ctx context.Context, chatID string) (*domain.Chatroom, error)

	// GetChatrooms lists all chatrooms, or the one matching chatID when it
	// is non-empty. No match yields an empty list, not an error.
	GetChatrooms(ctx context.Context, chatID string) ([]domain.Chatroom, error)

	// AddMessage validates, appends, and publishes a message. Validation
	// failures surface domain.ErrInvalidMessage before any store mutation;
	// an unknown room surfaces domain.ErrChatroomNotFound and nothing is
	// published.
	AddMessage(ctx context.Context, chatID string, msg domain.Message) (*domain.Message, error)
}

type service struct {
	store store.ChatroomStore
	pub   pubsub.Publisher
}

// NewService creates a new chat Service backed by the given store and
// publisher.
func NewService(st store.ChatroomStore, pub pubsub.Publisher) Service {
	return &service{store: st, pub: pub}
}

// CreateChatroom delegates to the store.
func (s *service) CreateChatroom(ctx context.Context, room domain.Chatroom) (*domain.Chatroom, error) {
	if err := room.Validate(); err != nil {
		return nil, fmt.Errorf("invalid chatroom: %w", err)
	}
	return s.store.CreateChatroom(ctx, room)
}

// DeleteChatroom delegates to the store.
func (s *service) DeleteChatroom(ctx context.Context, chatID string) (*domain.Chatroom, error) {
	return s.store.DeleteChatroom(ctx, chatID)
}

// GetChatrooms delegates to the store.
func (s *service) GetChatrooms(ctx context.Context, chatID string) ([]domain.Chatroom, error) {
	return s.store.ListChatrooms(ctx, chatID)
}

// AddMessage appends the message and then publishes it on the room's
// channel. The publish happens strictly after the store write has been
// acknowledged, so a subscriber can never be notified of a message that a
// fresh fetch would not return.
func (s *service) AddMessage(ctx context.Context, chatID string, msg domain.Message) (*domain.Message, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	stored, err := s.store.AppendMessage(ctx, chatID, msg)
	if err != nil {
		// No partial effect: a failed append publishes nothing.
		return nil, err
	}

	payload, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message event: %w", err)
	}

	event := pubsub.Message{
		Topic:   NewMessageTopic(chatID),
		Payload: payload,
		Metadata: map[string]string{
			"chatId": chatID,
		},
	}
	if err := s.pub.Publish(ctx, event); err != nil {
		// The message is committed; subscribers recover it on their next
		// full fetch. Surfacing an error here would tell the sender the
		// message failed when it did not.
		slog.Error("Failed to publish new-message event", "chatId", chatID, "error", err)
	}

	return stored, nil
}
