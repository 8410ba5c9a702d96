package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"github.com/daechang/placetalk/internal/domain"
)

// document is the on-disk shape of the file store: one JSON document holding
// every chatroom (with its embedded message log) and every marker. Writes
// are full-document rewrites, which is acceptable at this scale.
type document struct {
	Chatrooms []domain.Chatroom `json:"chatrooms"`
	Markers   []domain.Marker   `json:"markers"`
}

// Ensure FileStore satisfies both store contracts at compile time.
var (
	_ ChatroomStore = (*FileStore)(nil)
	_ MarkerStore   = (*FileStore)(nil)
)

// FileStore keeps the whole document in memory and flushes it to an
// afero.Fs after every mutation. A single write lock guards the document;
// since every mutation rewrites the full file there is nothing to gain from
// per-chatId locking here, and the single lock trivially satisfies the
// per-chatId serialization requirement.
type FileStore struct {
	fs   afero.Fs
	path string

	mu  sync.RWMutex
	doc document
}

// NewFileStore opens (or initializes) the document at path. A missing file
// is not an error; the store starts empty and creates the file on the first
// flush.
func NewFileStore(fs afero.Fs, path string) (*FileStore, error) {
	s := &FileStore{fs: fs, path: path}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read store document: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.doc); err != nil {
		return nil, fmt.Errorf("failed to parse store document %q: %w", path, err)
	}
	return s, nil
}

// flush rewrites the document. Callers must hold the write lock.
func (s *FileStore) flush() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store document: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create store directory: %w", err)
		}
	}
	if err := afero.WriteFile(s.fs, s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write store document: %w", err)
	}
	return nil
}

func (s *FileStore) findRoom(chatID string) int {
	for i := range s.doc.Chatrooms {
		if s.doc.Chatrooms[i].ChatID == chatID {
			return i
		}
	}
	return -1
}

// CreateChatroom implements ChatroomStore.
func (s *FileStore) CreateChatroom(ctx context.Context, room domain.Chatroom) (*domain.Chatroom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findRoom(room.ChatID) >= 0 {
		return nil, fmt.Errorf("chatroom %q: %w", room.ChatID, domain.ErrChatroomExists)
	}

	room.Messages = []domain.Message{}
	s.doc.Chatrooms = append(s.doc.Chatrooms, room)
	if err := s.flush(); err != nil {
		s.doc.Chatrooms = s.doc.Chatrooms[:len(s.doc.Chatrooms)-1]
		return nil, err
	}

	created := room
	return &created, nil
}

// DeleteChatroom implements ChatroomStore.
func (s *FileStore) DeleteChatroom(ctx context.Context, chatID string) (*domain.Chatroom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.findRoom(chatID)
	if i < 0 {
		return nil, fmt.Errorf("chatroom %q: %w", chatID, domain.ErrChatroomNotFound)
	}

	removed := s.doc.Chatrooms[i]
	s.doc.Chatrooms = append(s.doc.Chatrooms[:i], s.doc.Chatrooms[i+1:]...)
	if err := s.flush(); err != nil {
		s.doc.Chatrooms = append(s.doc.Chatrooms[:i], append([]domain.Chatroom{removed}, s.doc.Chatrooms[i:]...)...)
		return nil, err
	}
	return &removed, nil
}

// AppendMessage implements ChatroomStore.
func (s *FileStore) AppendMessage(ctx context.Context, chatID string, msg domain.Message) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.findRoom(chatID)
	if i < 0 {
		return nil, fmt.Errorf("chatroom %q: %w", chatID, domain.ErrChatroomNotFound)
	}

	s.doc.Chatrooms[i].Messages = append(s.doc.Chatrooms[i].Messages, msg)
	if err := s.flush(); err != nil {
		msgs := s.doc.Chatrooms[i].Messages
		s.doc.Chatrooms[i].Messages = msgs[:len(msgs)-1]
		return nil, err
	}

	stored := msg
	return &stored, nil
}

// ListMessages implements ChatroomStore.
func (s *FileStore) ListMessages(ctx context.Context, chatID string) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.findRoom(chatID)
	if i < 0 {
		return nil, fmt.Errorf("chatroom %q: %w", chatID, domain.ErrChatroomNotFound)
	}

	msgs := make([]domain.Message, len(s.doc.Chatrooms[i].Messages))
	copy(msgs, s.doc.Chatrooms[i].Messages)
	return msgs, nil
}

// ListChatrooms implements ChatroomStore.
func (s *FileStore) ListChatrooms(ctx context.Context, filterChatID string) ([]domain.Chatroom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := make([]domain.Chatroom, 0, len(s.doc.Chatrooms))
	for _, room := range s.doc.Chatrooms {
		if filterChatID != "" && room.ChatID != filterChatID {
			continue
		}
		copied := room
		copied.Messages = make([]domain.Message, len(room.Messages))
		copy(copied.Messages, room.Messages)
		rooms = append(rooms, copied)
	}
	return rooms, nil
}

// CreateMarker implements MarkerStore.
func (s *FileStore) CreateMarker(ctx context.Context, m domain.Marker) (*domain.Marker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc.Markers = append(s.doc.Markers, m)
	if err := s.flush(); err != nil {
		s.doc.Markers = s.doc.Markers[:len(s.doc.Markers)-1]
		return nil, err
	}

	created := m
	return &created, nil
}

// DeleteMarker implements MarkerStore.
func (s *FileStore) DeleteMarker(ctx context.Context, id string) (*domain.Marker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.doc.Markers {
		if s.doc.Markers[i].ID != id {
			continue
		}
		removed := s.doc.Markers[i]
		s.doc.Markers = append(s.doc.Markers[:i], s.doc.Markers[i+1:]...)
		if err := s.flush(); err != nil {
			s.doc.Markers = append(s.doc.Markers[:i], append([]domain.Marker{removed}, s.doc.Markers[i:]...)...)
			return nil, err
		}
		return &removed, nil
	}
	return nil, fmt.Errorf("marker %q: %w", id, domain.ErrMarkerNotFound)
}

// ListMarkers implements MarkerStore.
func (s *FileStore) ListMarkers(ctx context.Context) ([]domain.Marker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	markers := make([]domain.Marker, len(s.doc.Markers))
	copy(markers, s.doc.Markers)
	return markers, nil
}
