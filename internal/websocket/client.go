package websocket

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/coder/websocket"
)

// Client represents one subscriber connection: a single (viewer, chatroom)
// stream. The send channel is the only way frames reach the socket; the
// write pump owns the connection for writing.
type Client struct {
	// ID uniquely identifies the connection, not the user. One user opening
	// the same room twice holds two clients.
	ID string
	// ChatID is the chatroom this connection is subscribed to.
	ChatID string
	// Email is the viewer identity from the session, if any. Informational;
	// the stream carries every room event regardless of sender.
	Email string

	conn *websocket.Conn
	send chan []byte
}

const sendBuffer = 256

func newClient(id, chatID, email string, conn *websocket.Conn) *Client {
	return &Client{
		ID:     id,
		ChatID: chatID,
		Email:  email,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}
}

// Deliver queues a frame for the client. If the client's buffer is full the
// frame is dropped; a lagging client recovers by re-fetching the room log.
func (c *Client) Deliver(payload []byte) {
	select {
	case c.send <- payload:
	default:
		slog.Warn("Client send channel full, dropping frame", "clientID", c.ID, "chatId", c.ChatID)
	}
}

// readPump drains inbound frames until the peer disconnects. Clients do not
// send application data on the subscription socket (mutations go over HTTP),
// so everything read is discarded; the read loop exists to notice the close.
// It blocks until the connection ends.
func (c *Client) readPump(ctx context.Context) {
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				slog.Info("WebSocket closed normally by client", "clientID", c.ID, "chatId", c.ChatID)
			} else if err != io.EOF && ctx.Err() == nil {
				slog.Debug("WebSocket read ended", "clientID", c.ID, "chatId", c.ChatID, "error", err)
			}
			return
		}
	}
}

// writePump pumps frames from the send channel to the WebSocket connection.
// It exits when the channel is closed or a write fails.
func (c *Client) writePump() {
	defer c.conn.Close(websocket.StatusNormalClosure, "Server-side cleanup")

	for payload := range c.send {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := c.conn.Write(ctx, websocket.MessageText, payload)
		cancel()
		if err != nil {
			slog.Error("WebSocket write error", "clientID", c.ID, "chatId", c.ChatID, "error", err)
			return
		}
	}
}
