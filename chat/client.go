package chat

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// sendQueueSize bounds the per-connection outbound queue. A connection that
// cannot drain this many events is treated as dead weight: further events
// are dropped and the missing ack tells the client something went wrong.
const sendQueueSize = 64

// Client is the ephemeral server-side state of one authenticated websocket
// connection. It is created only after a successful handshake and destroyed
// on disconnect; it carries no state beyond its identity and room
// memberships.
type Client struct {
	ID     uuid.UUID
	UserID uint

	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once

	// rooms is owned by the Hub and only touched under its lock.
	rooms map[string]struct{}
}

func newClient(conn *websocket.Conn, userID uint) *Client {
	return &Client{
		ID:     uuid.New(),
		UserID: userID,
		conn:   conn,
		send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
		rooms:  make(map[string]struct{}),
	}
}

// Send marshals an event envelope and queues it for delivery to this
// connection only. It never blocks: events for a closed or saturated
// connection are dropped, not retried or queued elsewhere.
func (c *Client) Send(event string, data any) {
	b, err := json.Marshal(envelope{Event: event, Data: data})
	if err != nil {
		log.Printf("chat: failed to marshal %s event for client %s: %v", event, c.ID, err)
		return
	}
	c.enqueue(b)
}

func (c *Client) enqueue(b []byte) {
	select {
	case <-c.done:
	default:
		select {
		case c.send <- b:
		default:
			log.Printf("chat: dropping %d-byte event for slow client %s (user %d)", len(b), c.ID, c.UserID)
		}
	}
}

// close marks the client dead. Idempotent; safe to call from both the read
// and write sides.
func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
	})
}

// writePump drains the send queue onto the socket. It runs in its own
// goroutine so broadcasts from other connections never block on a slow
// socket write.
func (c *Client) writePump() {
	defer c.close()
	for {
		select {
		case <-c.done:
			return
		case b := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				log.Printf("chat: write error for client %s (user %d): %v", c.ID, c.UserID, err)
				return
			}
		}
	}
}
