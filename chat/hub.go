package chat

import (
	"encoding/json"
	"log"
	"sync"
)

// Hub is the room registry: it knows which connections exist and which
// named broadcast rooms each belongs to. It is an explicit dependency of
// the gateway, passed by reference, so lifecycle and test isolation stay
// in the caller's hands rather than in package-level state.
//
// All membership maps are guarded by mu. Broadcasts only take the read
// lock, so fan-outs from different connections proceed concurrently; there
// is no cross-room global ordering.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		rooms:   make(map[string]map[*Client]struct{}),
	}
}

// Register admits an authenticated connection to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	log.Printf("chat: client %s registered (user %d)", c.ID, c.UserID)
}

// Unregister removes a connection from the hub and from every room it
// joined, then marks it closed. No other cleanup is needed: everything else
// the connection participated in is ephemeral.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	for room := range c.rooms {
		if members, ok := h.rooms[room]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	c.rooms = make(map[string]struct{})
	delete(h.clients, c)
	h.mu.Unlock()

	c.close()
	log.Printf("chat: client %s unregistered (user %d)", c.ID, c.UserID)
}

// Join subscribes a connection to a room. Joining a room the connection is
// already a member of is a no-op.
func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	if _, ok := c.rooms[room]; ok {
		return
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	c.rooms[room] = struct{}{}
}

// Broadcast fans an event out to every current member of a room. A room
// with no members is a silent no-op. The envelope is marshalled once and
// the bytes are queued per member without blocking.
func (h *Hub) Broadcast(room string, event string, data any) {
	b, err := json.Marshal(envelope{Event: event, Data: data})
	if err != nil {
		log.Printf("chat: failed to marshal %s broadcast for room %s: %v", event, room, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[room] {
		c.enqueue(b)
	}
}

// RoomSize reports how many connections are currently in a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
