package marker

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daechang/placetalk/internal/chat"
	"github.com/daechang/placetalk/internal/domain"
	"github.com/daechang/placetalk/internal/pubsub"
	"github.com/daechang/placetalk/internal/store"
)

func newTestService(t *testing.T, ttl time.Duration) (*Service, chat.Service) {
	t.Helper()
	st, err := store.NewFileStore(afero.NewMemMapFs(), "db.json")
	require.NoError(t, err)

	bus := pubsub.NewWatermillBridge()
	t.Cleanup(func() { bus.Close() })

	chatService := chat.NewService(st, bus)
	return NewService(st, chatService, ttl), chatService
}

func testMarker() domain.Marker {
	return domain.Marker{
		OwnerEmail:   "owner@x.com",
		Title:        "old bicycle",
		Price:        50000,
		Latitude:     37.5665,
		Longitude:    126.9780,
		RoadAddress:  "1 Main St",
		JibunAddress: "10-1",
	}
}

func TestService_CreateMakesChatroom(t *testing.T) {
	svc, chatService := newTestService(t, 0)
	ctx := context.Background()

	created, err := svc.Create(ctx, testMarker())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.NotEmpty(t, created.ChatID)

	rooms, err := chatService.GetChatrooms(ctx, created.ChatID)
	require.NoError(t, err)
	require.Len(t, rooms, 1, "placing a marker must create its chatroom")
	assert.Equal(t, "1 Main St", rooms[0].RoadAddress)
	assert.Equal(t, "owner@x.com", rooms[0].OwnerEmail)
	assert.Empty(t, rooms[0].Messages)
}

func TestService_CreateRejectsInvalid(t *testing.T) {
	svc, _ := newTestService(t, 0)

	m := testMarker()
	m.OwnerEmail = "not-an-email"
	_, err := svc.Create(context.Background(), m)
	assert.Error(t, err)
}

func TestService_DeleteTearsDownChatroom(t *testing.T) {
	svc, chatService := newTestService(t, 0)
	ctx := context.Background()

	created, err := svc.Create(ctx, testMarker())
	require.NoError(t, err)

	removed, err := svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ChatID, removed.ChatID)

	rooms, err := chatService.GetChatrooms(ctx, created.ChatID)
	require.NoError(t, err)
	assert.Empty(t, rooms, "deleting a marker must delete its chatroom")

	_, err = svc.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrMarkerNotFound)
}

func TestService_SweepRemovesExpiredOnly(t *testing.T) {
	svc, chatService := newTestService(t, time.Hour)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	svc.now = func() time.Time { return base }
	stale, err := svc.Create(ctx, testMarker())
	require.NoError(t, err)

	svc.now = func() time.Time { return base.Add(50 * time.Minute) }
	fresh, err := svc.Create(ctx, testMarker())
	require.NoError(t, err)

	// An hour and a half in, only the first marker has outlived its TTL.
	svc.now = func() time.Time { return base.Add(90 * time.Minute) }
	removed, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	markers, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, markers, 1)
	assert.Equal(t, fresh.ID, markers[0].ID)

	rooms, err := chatService.GetChatrooms(ctx, stale.ChatID)
	require.NoError(t, err)
	assert.Empty(t, rooms, "the expired marker's chatroom goes with it")
}

func TestService_SweepDisabledWithoutTTL(t *testing.T) {
	svc, _ := newTestService(t, 0)
	ctx := context.Background()

	svc.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	_, err := svc.Create(ctx, testMarker())
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }
	removed, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed, "a zero TTL disables expiry")
}
