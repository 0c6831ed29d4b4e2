package ws

import (
	"encoding/json"
	"sync"
)

// Client is one websocket connection bound to a user.
type Client struct {
	UserID uint
	Send   chan []byte
}

func NewClient(userID uint) *Client {
	return &Client{UserID: userID, Send: make(chan []byte, 256)}
}

func (c *Client) Close() {
	close(c.Send)
}

// Room fans messages out to the connections attached to one chat thread.
type Room struct {
	ChatID  uint
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func newRoom(chatID uint) *Room {
	return &Room{ChatID: chatID, clients: make(map[*Client]struct{})}
}

func (r *Room) Join(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c] = struct{}{}
}

func (r *Room) Leave(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, c)
}

// Broadcast sends payload to every member except from (nil broadcasts to
// all). Slow consumers are skipped rather than blocked on.
func (r *Room) Broadcast(from *Client, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	r.mu.RLock()
	targets := make([]*Client, 0, len(r.clients))
	for c := range r.clients {
		if c != from {
			targets = append(targets, c)
		}
	}
	r.mu.RUnlock()
	for _, c := range targets {
		select {
		case c.Send <- data:
		default:
		}
	}
}

// ChatHub holds the live rooms, one per chat thread.
type ChatHub struct {
	mu    sync.RWMutex
	rooms map[uint]*Room
}

func NewChatHub() *ChatHub {
	return &ChatHub{rooms: make(map[uint]*Room)}
}

func (h *ChatHub) GetOrCreateRoom(chatID uint) *Room {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[chatID]; ok {
		return r
	}
	r := newRoom(chatID)
	h.rooms[chatID] = r
	return r
}

// GetRoom returns the live room for chatID, or nil when nobody is connected.
func (h *ChatHub) GetRoom(chatID uint) *Room {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[chatID]
}

// Notify broadcasts to a room if it exists; used by HTTP handlers that
// persist a message and want connected peers to see it immediately.
func (h *ChatHub) Notify(chatID uint, payload interface{}) {
	if r := h.GetRoom(chatID); r != nil {
		r.Broadcast(nil, payload)
	}
}
