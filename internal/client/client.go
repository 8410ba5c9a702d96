package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/daechang/placetalk/internal/domain"
)

// Client talks to the placetalk server: queries and mutations over HTTP,
// the newMessage subscription over a WebSocket per room. A shared cookie jar
// carries the viewer session across both transports.
type Client struct {
	baseURL string
	http    *http.Client
	dialer  *websocket.Dialer
}

// New creates a Client for the given base URL (e.g. "http://localhost:4000").
func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Jar: jar},
		dialer:  &websocket.Dialer{Jar: jar},
	}, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, apiErr.Message)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// SignIn stores the viewer identity in the server session.
func (c *Client) SignIn(ctx context.Context, email string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/session", map[string]string{"email": email}, nil)
}

// Chatrooms runs the chatrooms query. An empty chatID lists every room.
func (c *Client) Chatrooms(ctx context.Context, chatID string) ([]domain.Chatroom, error) {
	path := "/api/chatrooms"
	if chatID != "" {
		path += "?chatid=" + url.QueryEscape(chatID)
	}
	var rooms []domain.Chatroom
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// CreateChatroom runs the createChatroom mutation.
func (c *Client) CreateChatroom(ctx context.Context, room domain.Chatroom) (*domain.Chatroom, error) {
	var created domain.Chatroom
	if err := c.doJSON(ctx, http.MethodPost, "/api/chatrooms", room, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteChatroom runs the deleteChatroom mutation and returns the removed
// room with its final log.
func (c *Client) DeleteChatroom(ctx context.Context, chatID string) (*domain.Chatroom, error) {
	var removed domain.Chatroom
	path := "/api/chatrooms/" + url.PathEscape(chatID)
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, &removed); err != nil {
		return nil, err
	}
	return &removed, nil
}

// CreateMarker places a marker; the server creates its chatroom and returns
// the generated chatId on the marker.
func (c *Client) CreateMarker(ctx context.Context, m domain.Marker) (*domain.Marker, error) {
	var created domain.Marker
	if err := c.doJSON(ctx, http.MethodPost, "/api/markers", m, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteMarker removes a marker and its chatroom.
func (c *Client) DeleteMarker(ctx context.Context, id string) (*domain.Marker, error) {
	var removed domain.Marker
	if err := c.doJSON(ctx, http.MethodDelete, "/api/markers/"+url.PathEscape(id), nil, &removed); err != nil {
		return nil, err
	}
	return &removed, nil
}

// AddMessage runs the addMessage mutation and returns the stored message.
func (c *Client) AddMessage(ctx context.Context, chatID string, msg domain.Message) (*domain.Message, error) {
	var stored domain.Message
	path := "/api/chatrooms/" + url.PathEscape(chatID) + "/messages"
	if err := c.doJSON(ctx, http.MethodPost, path, msg, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

// RoomSession is one open chatroom on the client: the seeded message cache
// plus the live subscription feeding it. Closing the session closes the
// socket, which releases the server-side bus subscription.
type RoomSession struct {
	ChatID string
	Cache  *MessageCache

	conn      *websocket.Conn
	closeOnce sync.Once
	done      chan struct{}
}

// OpenRoom fetches the room's log, seeds a cache with it, and subscribes to
// the live stream. Delivered events merge into the cache with duplicate
// suppression; events from other senders are also recorded on the alerts
// aggregator when one is given.
//
// After a disconnect the session is dead: the caller reconnects by calling
// OpenRoom again, which re-fetches the log, because the server replays
// nothing.
func (c *Client) OpenRoom(ctx context.Context, chatID string, alerts *AlertAggregator) (*RoomSession, error) {
	rooms, err := c.Chatrooms(ctx, chatID)
	if err != nil {
		return nil, err
	}

	cache := NewMessageCache()
	var road, jibun string
	if len(rooms) > 0 {
		cache.Seed(rooms[0].Messages)
		road, jibun = rooms[0].RoadAddress, rooms[0].JibunAddress
	}

	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/ws/chatrooms/" + url.PathEscape(chatID)
	conn, resp, err := c.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial subscription socket: %w", err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	session := &RoomSession{
		ChatID: chatID,
		Cache:  cache,
		conn:   conn,
		done:   make(chan struct{}),
	}

	go session.readLoop(alerts, road, jibun)

	return session, nil
}

func (s *RoomSession) readLoop(alerts *AlertAggregator, road, jibun string) {
	defer close(s.done)

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("Subscription stream ended", "chatId", s.ChatID, "error", err)
			}
			return
		}

		var msg domain.Message
		if err := json.Unmarshal(payload, &msg); err != nil {
			// Lenient read path: a frame that does not decode is dropped.
			slog.Warn("Dropping undecodable frame", "chatId", s.ChatID, "error", err)
			continue
		}

		// A duplicate (the echo of our own optimistic append, or a repeated
		// delivery) must not reach the alert list either.
		if !s.Cache.Add(msg) {
			continue
		}

		if alerts != nil {
			alerts.Record(AlertMessage{
				Message:      msg,
				ChatID:       s.ChatID,
				RoadAddress:  road,
				JibunAddress: jibun,
			})
		}
	}
}

// Done is closed when the live stream has ended, whether by Close or by a
// transport drop.
func (s *RoomSession) Done() <-chan struct{} {
	return s.done
}

// Close ends the subscription. Safe to call more than once.
func (s *RoomSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "room closed"),
			time.Now().Add(time.Second))
		err = s.conn.Close()
	})
	return err
}
