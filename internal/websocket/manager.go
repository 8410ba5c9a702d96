package websocket

import (
	"sync"
)

// ClientManager tracks the live subscriber connections, indexed by chatroom.
type ClientManager struct {
	clients map[string]*Client
	rooms   map[string]map[string]bool // chatID -> set of clientIDs
	mu      sync.RWMutex
}

// NewClientManager creates a new ClientManager.
func NewClientManager() *ClientManager {
	return &ClientManager{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]bool),
	}
}

// Add registers a new client.
func (m *ClientManager) Add(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.clients[client.ID] = client

	if _, ok := m.rooms[client.ChatID]; !ok {
		m.rooms[client.ChatID] = make(map[string]bool)
	}
	m.rooms[client.ChatID][client.ID] = true
}

// Remove unregisters a client and closes its send channel, which terminates
// the write pump. Removing an unknown id is a no-op.
func (m *ClientManager) Remove(clientID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	client, ok := m.clients[clientID]
	if !ok {
		return
	}
	delete(m.clients, clientID)

	if room := m.rooms[client.ChatID]; room != nil {
		delete(room, clientID)
		if len(room) == 0 {
			delete(m.rooms, client.ChatID)
		}
	}
	close(client.send)
}

// GetByRoom returns all clients subscribed to the given chatroom.
func (m *ClientManager) GetByRoom(chatID string) []*Client {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var roomClients []*Client
	for id := range m.rooms[chatID] {
		if client, ok := m.clients[id]; ok {
			roomClients = append(roomClients, client)
		}
	}
	return roomClients
}

// Count returns the number of live connections across all rooms.
func (m *ClientManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}
