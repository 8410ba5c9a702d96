package server_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daechang/placetalk/internal/client"
	"github.com/daechang/placetalk/internal/config"
	"github.com/daechang/placetalk/internal/domain"
	"github.com/daechang/placetalk/internal/server"
	"github.com/daechang/placetalk/internal/store"
)

func newTestServer(t *testing.T) (*server.Server, string) {
	t.Helper()

	st, err := store.NewFileStore(afero.NewMemMapFs(), "db.json")
	require.NoError(t, err)

	cfg := &config.Config{
		StoreDriver:   config.DriverFile,
		SessionSecret: "test-secret",
		SweepInterval: time.Hour,
	}
	s := server.NewWithStores(cfg, st, st, nil)

	ts := httptest.NewServer(s.E)
	t.Cleanup(ts.Close)
	return s, ts.URL
}

func newTestClient(t *testing.T, baseURL, email string) *client.Client {
	t.Helper()
	c, err := client.New(baseURL)
	require.NoError(t, err)
	require.NoError(t, c.SignIn(context.Background(), email))
	return c
}

// waitForSubscriber blocks until the room has the expected number of live
// websocket connections, so a send cannot race the subscribe handshake.
func waitForSubscriber(t *testing.T, s *server.Server, chatID string, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(s.Bridge().Manager().GetByRoom(chatID)) == n
	}, 2*time.Second, 10*time.Millisecond, "subscriber never registered")
}

func TestServer_MarkerAndChatroomFlow(t *testing.T) {
	_, url := newTestServer(t)
	ctx := context.Background()
	c := newTestClient(t, url, "seller@x.com")

	created, err := c.CreateMarker(ctx, domain.Marker{
		OwnerEmail:   "seller@x.com",
		Title:        "standing desk",
		Price:        120000,
		Latitude:     37.5,
		Longitude:    127.0,
		RoadAddress:  "1 Main St",
		JibunAddress: "10-1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ChatID)

	rooms, err := c.Chatrooms(ctx, created.ChatID)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "1 Main St", rooms[0].RoadAddress)

	first, err := c.AddMessage(ctx, created.ChatID, domain.Message{
		SenderEmail: "buyer@x.com", Text: "is this available?", SendAt: "2024-01-01T10:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, "is this available?", first.Text)

	_, err = c.AddMessage(ctx, created.ChatID, domain.Message{
		SenderEmail: "seller@x.com", Text: "yes it is", SendAt: "2024-01-01T10:01:00Z",
	})
	require.NoError(t, err)

	rooms, err = c.Chatrooms(ctx, created.ChatID)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	require.Len(t, rooms[0].Messages, 2)
	assert.Equal(t, "is this available?", rooms[0].Messages[0].Text)
	assert.Equal(t, "yes it is", rooms[0].Messages[1].Text)

	// Removing the marker removes the room and its whole log.
	_, err = c.DeleteMarker(ctx, created.ID)
	require.NoError(t, err)

	rooms, err = c.Chatrooms(ctx, created.ChatID)
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func TestServer_SessionIdentityFillsSender(t *testing.T) {
	_, url := newTestServer(t)
	ctx := context.Background()
	c := newTestClient(t, url, "viewer@x.com")

	_, err := c.CreateChatroom(ctx, domain.Chatroom{ChatID: "room-1"})
	require.NoError(t, err)

	stored, err := c.AddMessage(ctx, "room-1", domain.Message{
		Text: "hello", SendAt: "2024-01-01T10:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, "viewer@x.com", stored.SenderEmail)
}

func TestServer_ErrorStatusMapping(t *testing.T) {
	_, url := newTestServer(t)
	ctx := context.Background()
	c := newTestClient(t, url, "viewer@x.com")

	_, err := c.CreateChatroom(ctx, domain.Chatroom{ChatID: "room-1"})
	require.NoError(t, err)

	_, err = c.CreateChatroom(ctx, domain.Chatroom{ChatID: "room-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "409", "duplicate chatId conflicts")

	_, err = c.DeleteChatroom(ctx, "no-such-room")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	_, err = c.AddMessage(ctx, "no-such-room", domain.Message{
		SenderEmail: "a@x.com", Text: "hi", SendAt: "2024-01-01T10:00:00Z",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	// Missing sendAt fails validation before anything is stored.
	_, err = c.AddMessage(ctx, "room-1", domain.Message{SenderEmail: "a@x.com", Text: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")

	rooms, err := c.Chatrooms(ctx, "room-1")
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Empty(t, rooms[0].Messages, "rejected message must not be appended")
}

func TestServer_RealtimeDelivery(t *testing.T) {
	s, url := newTestServer(t)
	ctx := context.Background()

	seller := newTestClient(t, url, "seller@x.com")
	buyer := newTestClient(t, url, "buyer@x.com")

	created, err := seller.CreateMarker(ctx, domain.Marker{
		OwnerEmail:   "seller@x.com",
		Title:        "bookshelf",
		RoadAddress:  "2 Oak Ave",
		JibunAddress: "20-3",
	})
	require.NoError(t, err)
	chatID := created.ChatID

	alerts := client.NewAlertAggregator("seller@x.com")
	sess, err := seller.OpenRoom(ctx, chatID, alerts)
	require.NoError(t, err)
	defer sess.Close()
	waitForSubscriber(t, s, chatID, 1)

	_, err = buyer.AddMessage(ctx, chatID, domain.Message{
		SenderEmail: "buyer@x.com", Text: "still for sale?", SendAt: "2024-01-01T10:00:00Z",
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return sess.Cache.Len() == 1
	}, 2*time.Second, 10*time.Millisecond, "live message never arrived")

	messages := sess.Cache.Messages()
	assert.Equal(t, "still for sale?", messages[0].Text)

	require.Equal(t, 1, alerts.UnreadCount())
	groups := alerts.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, "2 Oak Ave", groups[0].Key.RoadAddress)
	assert.Equal(t, chatID, groups[0].Key.ChatID)
}

func TestServer_OptimisticEchoDeliveredOnce(t *testing.T) {
	s, url := newTestServer(t)
	ctx := context.Background()
	c := newTestClient(t, url, "sender@x.com")

	_, err := c.CreateChatroom(ctx, domain.Chatroom{ChatID: "room-1"})
	require.NoError(t, err)

	alerts := client.NewAlertAggregator("sender@x.com")
	sess, err := c.OpenRoom(ctx, "room-1", alerts)
	require.NoError(t, err)
	defer sess.Close()
	waitForSubscriber(t, s, "room-1", 1)

	msg := domain.Message{SenderEmail: "sender@x.com", Text: "mine", SendAt: "2024-01-01T10:00:00Z"}

	// Optimistic append: the UI shows the message immediately, then the
	// subscription echoes the same event back.
	require.True(t, sess.Cache.Add(msg))
	_, err = c.AddMessage(ctx, "room-1", msg)
	require.NoError(t, err)

	// The echo must be suppressed, not doubled. Give it time to arrive.
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 1, sess.Cache.Len())
	assert.Zero(t, alerts.UnreadCount(), "own messages never become alerts")
}

func TestServer_RoomIsolation(t *testing.T) {
	s, url := newTestServer(t)
	ctx := context.Background()

	watcher := newTestClient(t, url, "watcher@x.com")
	other := newTestClient(t, url, "other@x.com")

	_, err := watcher.CreateChatroom(ctx, domain.Chatroom{ChatID: "room-a"})
	require.NoError(t, err)
	_, err = watcher.CreateChatroom(ctx, domain.Chatroom{ChatID: "room-b"})
	require.NoError(t, err)

	sess, err := watcher.OpenRoom(ctx, "room-a", nil)
	require.NoError(t, err)
	defer sess.Close()
	waitForSubscriber(t, s, "room-a", 1)

	_, err = other.AddMessage(ctx, "room-b", domain.Message{
		SenderEmail: "other@x.com", Text: "wrong room", SendAt: "2024-01-01T10:00:00Z",
	})
	require.NoError(t, err)

	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, sess.Cache.Len(), "events from other rooms must not leak in")
}

func TestServer_DisconnectReleasesSubscription(t *testing.T) {
	s, url := newTestServer(t)
	ctx := context.Background()
	c := newTestClient(t, url, "viewer@x.com")

	_, err := c.CreateChatroom(ctx, domain.Chatroom{ChatID: "room-1"})
	require.NoError(t, err)

	sess, err := c.OpenRoom(ctx, "room-1", nil)
	require.NoError(t, err)
	waitForSubscriber(t, s, "room-1", 1)

	require.NoError(t, sess.Close())

	require.Eventually(t, func() bool {
		return s.Bridge().Manager().Count() == 0
	}, 2*time.Second, 10*time.Millisecond, "connection never released")

	select {
	case <-sess.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("read loop never ended after close")
	}
}

func TestServer_ReconnectRecoversLogByRefetch(t *testing.T) {
	s, url := newTestServer(t)
	ctx := context.Background()

	reader := newTestClient(t, url, "reader@x.com")
	writer := newTestClient(t, url, "writer@x.com")

	_, err := reader.CreateChatroom(ctx, domain.Chatroom{ChatID: "room-1"})
	require.NoError(t, err)

	sess, err := reader.OpenRoom(ctx, "room-1", nil)
	require.NoError(t, err)
	waitForSubscriber(t, s, "room-1", 1)
	require.NoError(t, sess.Close())
	waitForSubscriber(t, s, "room-1", 0)

	// Sent while the reader is offline; the bus replays nothing.
	_, err = writer.AddMessage(ctx, "room-1", domain.Message{
		SenderEmail: "writer@x.com", Text: "missed you", SendAt: "2024-01-01T10:00:00Z",
	})
	require.NoError(t, err)

	// Reopening re-fetches the log, which is where the missed message lives.
	sess2, err := reader.OpenRoom(ctx, "room-1", nil)
	require.NoError(t, err)
	defer sess2.Close()

	require.Equal(t, 1, sess2.Cache.Len())
	assert.Equal(t, "missed you", sess2.Cache.Messages()[0].Text)
}
