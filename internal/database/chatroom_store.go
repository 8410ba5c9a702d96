package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/surrealdb/surrealdb.go"

	"github.com/daechang/placetalk/internal/domain"
	"github.com/daechang/placetalk/internal/store"
)

const (
	chatroomTable = "chatroom"
	markerTable   = "marker"
)

// Compile-time checks against the store contracts.
var (
	_ store.ChatroomStore = (*SurrealStore)(nil)
	_ store.MarkerStore   = (*SurrealStore)(nil)
)

// keyLocks hands out one mutex per key so mutations on the same chatId
// serialize while different rooms proceed independently. Locks are never
// reclaimed; the key space is bounded by the number of rooms ever seen by
// this process, which is fine at this scale.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[string]*sync.Mutex)}
}

func (k *keyLocks) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()

	lock, ok := k.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	return lock
}

// SurrealStore is the SurrealDB-backed chatroom and marker store. Each
// chatroom is one record with its message log embedded as an array, so
// append order is the stored array order, exactly like the file driver's
// document.
type SurrealStore struct {
	db    *surrealdb.DB
	rooms *keyLocks
}

// NewSurrealStore creates a SurrealStore on an established connection.
func NewSurrealStore(db *surrealdb.DB) *SurrealStore {
	return &SurrealStore{db: db, rooms: newKeyLocks()}
}

func (s *SurrealStore) getRoom(ctx context.Context, chatID string) (*domain.Chatroom, error) {
	return QueryOne[domain.Chatroom](ctx, s.db,
		"SELECT * FROM "+chatroomTable+" WHERE chatId = $chatId",
		map[string]any{"chatId": chatID})
}

// CreateChatroom implements store.ChatroomStore.
func (s *SurrealStore) CreateChatroom(ctx context.Context, room domain.Chatroom) (*domain.Chatroom, error) {
	lock := s.rooms.get(room.ChatID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.getRoom(ctx, room.ChatID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("chatroom %q: %w", room.ChatID, domain.ErrChatroomExists)
	}

	room.Messages = []domain.Message{}
	created, err := QueryOne[domain.Chatroom](ctx, s.db,
		"CREATE "+chatroomTable+" CONTENT $room",
		map[string]any{"room": room})
	if err != nil {
		return nil, fmt.Errorf("failed to create chatroom: %w", err)
	}
	if created == nil {
		return nil, fmt.Errorf("chatroom %q was not created", room.ChatID)
	}
	return created, nil
}

// DeleteChatroom implements store.ChatroomStore.
func (s *SurrealStore) DeleteChatroom(ctx context.Context, chatID string) (*domain.Chatroom, error) {
	lock := s.rooms.get(chatID)
	lock.Lock()
	defer lock.Unlock()

	removed, err := s.getRoom(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if removed == nil {
		return nil, fmt.Errorf("chatroom %q: %w", chatID, domain.ErrChatroomNotFound)
	}

	if err := Execute(ctx, s.db,
		"DELETE "+chatroomTable+" WHERE chatId = $chatId",
		map[string]any{"chatId": chatID}); err != nil {
		return nil, fmt.Errorf("failed to delete chatroom: %w", err)
	}
	return removed, nil
}

// AppendMessage implements store.ChatroomStore.
func (s *SurrealStore) AppendMessage(ctx context.Context, chatID string, msg domain.Message) (*domain.Message, error) {
	lock := s.rooms.get(chatID)
	lock.Lock()
	defer lock.Unlock()

	updated, err := Query[domain.Chatroom](ctx, s.db,
		"UPDATE "+chatroomTable+" SET messages += $msg WHERE chatId = $chatId",
		map[string]any{"chatId": chatID, "msg": msg})
	if err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}
	if len(updated) == 0 {
		return nil, fmt.Errorf("chatroom %q: %w", chatID, domain.ErrChatroomNotFound)
	}

	stored := msg
	return &stored, nil
}

// ListMessages implements store.ChatroomStore.
func (s *SurrealStore) ListMessages(ctx context.Context, chatID string) ([]domain.Message, error) {
	room, err := s.getRoom(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, fmt.Errorf("chatroom %q: %w", chatID, domain.ErrChatroomNotFound)
	}
	if room.Messages == nil {
		return []domain.Message{}, nil
	}
	return room.Messages, nil
}

// ListChatrooms implements store.ChatroomStore.
func (s *SurrealStore) ListChatrooms(ctx context.Context, filterChatID string) ([]domain.Chatroom, error) {
	query := "SELECT * FROM " + chatroomTable
	params := map[string]any{}
	if filterChatID != "" {
		query += " WHERE chatId = $chatId"
		params["chatId"] = filterChatID
	}

	rooms, err := Query[domain.Chatroom](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list chatrooms: %w", err)
	}
	if rooms == nil {
		rooms = []domain.Chatroom{}
	}
	return rooms, nil
}

// CreateMarker implements store.MarkerStore.
func (s *SurrealStore) CreateMarker(ctx context.Context, m domain.Marker) (*domain.Marker, error) {
	created, err := QueryOne[domain.Marker](ctx, s.db,
		"CREATE "+markerTable+" CONTENT $marker",
		map[string]any{"marker": m})
	if err != nil {
		return nil, fmt.Errorf("failed to create marker: %w", err)
	}
	if created == nil {
		return nil, fmt.Errorf("marker %q was not created", m.ID)
	}
	return created, nil
}

// DeleteMarker implements store.MarkerStore.
func (s *SurrealStore) DeleteMarker(ctx context.Context, id string) (*domain.Marker, error) {
	removed, err := QueryOne[domain.Marker](ctx, s.db,
		"SELECT * FROM "+markerTable+" WHERE markerId = $id",
		map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if removed == nil {
		return nil, fmt.Errorf("marker %q: %w", id, domain.ErrMarkerNotFound)
	}

	if err := Execute(ctx, s.db,
		"DELETE "+markerTable+" WHERE markerId = $id",
		map[string]any{"id": id}); err != nil {
		return nil, fmt.Errorf("failed to delete marker: %w", err)
	}
	return removed, nil
}

// ListMarkers implements store.MarkerStore.
func (s *SurrealStore) ListMarkers(ctx context.Context) ([]domain.Marker, error) {
	markers, err := Query[domain.Marker](ctx, s.db, "SELECT * FROM "+markerTable, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list markers: %w", err)
	}
	if markers == nil {
		markers = []domain.Marker{}
	}
	return markers, nil
}
