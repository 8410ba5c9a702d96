package store

import (
	"context"

	"github.com/daechang/placetalk/internal/domain"
)

// ChatroomStore is the single source of truth for chatrooms and their
// message logs. Implementations must serialize mutating calls for the same
// chatId so the resulting log order is well-defined: two concurrent appends
// to one room may not lose either message, and a create or delete for a
// chatId must not interleave with a pending append on that same id.
//
// Every mutation is flushed to the backing storage before it returns, so a
// crash between operations loses at most the in-flight call.
type ChatroomStore interface {
	// CreateChatroom stores a new chatroom with an empty message log.
	// Returns domain.ErrChatroomExists if the chatId is already taken.
	CreateChatroom(ctx context.Context, room domain.Chatroom) (*domain.Chatroom, error)

	// DeleteChatroom removes the chatroom and discards its message log,
	// returning the removed room (with its final log) for caller-side
	// cleanup. Returns domain.ErrChatroomNotFound if absent.
	DeleteChatroom(ctx context.Context, chatID string) (*domain.Chatroom, error)

	// AppendMessage appends to the end of the room's log and returns the
	// stored message unchanged. Returns domain.ErrChatroomNotFound if the
	// room does not exist.
	AppendMessage(ctx context.Context, chatID string, msg domain.Message) (*domain.Message, error)

	// ListMessages returns the full log in append order. An existing room
	// with no messages yields an empty slice, not an error. Returns
	// domain.ErrChatroomNotFound if the room itself does not exist.
	ListMessages(ctx context.Context, chatID string) ([]domain.Message, error)

	// ListChatrooms returns all chatrooms, or the single matching one when
	// filterChatID is non-empty. No match yields an empty slice, not an
	// error, preserving the query-by-optional-id semantics of the API.
	ListChatrooms(ctx context.Context, filterChatID string) ([]domain.Chatroom, error)
}

// MarkerStore persists map markers. Markers share the same document as
// chatrooms in the file driver, so marker and chatroom lifecycles flush
// together.
type MarkerStore interface {
	// CreateMarker stores a new marker.
	CreateMarker(ctx context.Context, m domain.Marker) (*domain.Marker, error)

	// DeleteMarker removes a marker by id, returning the removed marker.
	// Returns domain.ErrMarkerNotFound if absent.
	DeleteMarker(ctx context.Context, id string) (*domain.Marker, error)

	// ListMarkers returns all markers.
	ListMarkers(ctx context.Context) ([]domain.Marker, error)
}
