package websocket

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/daechang/placetalk/internal/chat"
	"github.com/daechang/placetalk/internal/pubsub"
)

// EmailResolver extracts the viewer's identity from the request, typically
// from the cookie session. Returning "" means anonymous; the stream works
// either way since chat participants are not authenticated.
type EmailResolver func(c echo.Context) string

// Bridge turns Event Bus subscriptions into per-connection WebSocket
// streams. Each accepted connection maps to exactly one bus subscription on
// the room's channel; when the peer disconnects the subscription is released
// so nothing keeps consuming on behalf of a dead socket.
//
// The bus does not replay, so a client that reconnects must re-fetch the
// room log over the query API to recover anything missed while offline.
type Bridge struct {
	subscriber pubsub.Subscriber
	manager    *ClientManager
	resolver   EmailResolver
}

// NewBridge creates a Bridge that opens subscriptions on the given bus.
func NewBridge(sub pubsub.Subscriber, resolver EmailResolver) *Bridge {
	return &Bridge{
		subscriber: sub,
		manager:    NewClientManager(),
		resolver:   resolver,
	}
}

// Manager exposes the live-connection registry, useful for tests.
func (b *Bridge) Manager() *ClientManager {
	return b.manager
}

// Handler returns the echo handler for GET /ws/chatrooms/:chatid. It blocks
// for the lifetime of the connection and tears everything down — bus
// subscription included — when the peer goes away.
func (b *Bridge) Handler() echo.HandlerFunc {
	return func(c echo.Context) error {
		chatID := c.Param("chatid")
		if chatID == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "chatid is required")
		}

		email := ""
		if b.resolver != nil {
			email = b.resolver(c)
		}

		conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
			InsecureSkipVerify: true, // In production, check origin.
		})
		if err != nil {
			slog.Error("Failed to upgrade connection to WebSocket", "chatId", chatID, "error", err)
			return err
		}

		client := newClient(uuid.NewString(), chatID, email, conn)

		// The handler only forwards the raw event payload; decoding and
		// deduplication are the receiving client's concern.
		sub, err := b.subscriber.Subscribe(c.Request().Context(), chat.NewMessageTopic(chatID), func(ctx context.Context, msg pubsub.Message) error {
			client.Deliver(msg.Payload)
			return nil
		})
		if err != nil {
			conn.Close(websocket.StatusInternalError, "subscription failed")
			slog.Error("Failed to subscribe to room channel", "chatId", chatID, "error", err)
			return err
		}

		b.manager.Add(client)
		slog.Info("Subscriber connected", "clientID", client.ID, "chatId", chatID, "email", email)

		go client.writePump()

		// Block on the read loop; returning from it means the transport
		// dropped. Release the subscription first so no event can race into
		// a closed send channel.
		client.readPump(c.Request().Context())

		sub.Unsubscribe()
		<-sub.Done()
		b.manager.Remove(client.ID)
		slog.Info("Subscriber disconnected", "clientID", client.ID, "chatId", chatID)

		return nil
	}
}
