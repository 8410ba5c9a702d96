package marker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/daechang/placetalk/internal/chat"
	"github.com/daechang/placetalk/internal/domain"
	"github.com/daechang/placetalk/internal/store"
)

// Service owns the marker lifecycle and keeps chatrooms in step with it:
// placing a marker creates its chatroom, removing the marker deletes the
// room and its whole log. The chat core itself stays a clean
// request/response collaborator; markers only ever hand it a chatId.
type Service struct {
	markers store.MarkerStore
	chat    chat.Service
	ttl     time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// NewService creates a marker Service. ttl bounds a marker's lifetime for
// the expiry sweep; a non-positive ttl disables expiry.
func NewService(markers store.MarkerStore, chatService chat.Service, ttl time.Duration) *Service {
	return &Service{
		markers: markers,
		chat:    chatService,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Create stores a new marker and its chatroom. The chatId is generated here,
// once, and binds the two for the marker's lifetime.
func (s *Service) Create(ctx context.Context, m domain.Marker) (*domain.Marker, error) {
	m.ID = uuid.NewString()
	m.ChatID = uuid.NewString()
	m.CreatedAt = s.now().UTC()

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid marker: %w", err)
	}

	if _, err := s.chat.CreateChatroom(ctx, domain.Chatroom{
		ChatID:       m.ChatID,
		OwnerEmail:   m.OwnerEmail,
		RoadAddress:  m.RoadAddress,
		JibunAddress: m.JibunAddress,
	}); err != nil {
		return nil, fmt.Errorf("failed to create chatroom for marker: %w", err)
	}

	created, err := s.markers.CreateMarker(ctx, m)
	if err != nil {
		// Do not leave an orphaned chatroom behind.
		if _, cleanupErr := s.chat.DeleteChatroom(ctx, m.ChatID); cleanupErr != nil {
			slog.Error("Failed to clean up chatroom for failed marker", "chatId", m.ChatID, "error", cleanupErr)
		}
		return nil, err
	}
	return created, nil
}

// Delete removes a marker and tears down its chatroom.
func (s *Service) Delete(ctx context.Context, id string) (*domain.Marker, error) {
	removed, err := s.markers.DeleteMarker(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.chat.DeleteChatroom(ctx, removed.ChatID); err != nil &&
		!errors.Is(err, domain.ErrChatroomNotFound) {
		slog.Error("Failed to delete chatroom for marker", "markerId", id, "chatId", removed.ChatID, "error", err)
	}
	return removed, nil
}

// List returns all markers.
func (s *Service) List(ctx context.Context) ([]domain.Marker, error) {
	return s.markers.ListMarkers(ctx)
}

// Sweep deletes every marker whose lifetime has passed, along with its
// chatroom, and returns how many were removed.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	markers, err := s.markers.ListMarkers(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now().UTC()
	removed := 0
	for _, m := range markers {
		if !m.Expired(s.ttl, now) {
			continue
		}
		if _, err := s.Delete(ctx, m.ID); err != nil {
			slog.Error("Failed to sweep expired marker", "markerId", m.ID, "error", err)
			continue
		}
		removed++
	}
	if removed > 0 {
		slog.Info("Expired markers swept", "count", removed)
	}
	return removed, nil
}

// RunSweeper runs Sweep on the given interval until the context is
// cancelled. It is a no-op when expiry is disabled.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				slog.Error("Marker sweep failed", "error", err)
			}
		}
	}
}
