package chat

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/platewise/chefchat/models"
)

// MaxContentLength bounds a single message's content, in runes.
const MaxContentLength = 4000

// handshakeTimeout is the only server-enforced timeout in the subsystem:
// the auth frame must arrive within it or the connection is refused.
const handshakeTimeout = 10 * time.Second

// Dispatcher delivers best-effort push notifications. Failures never affect
// an already-committed message.
type Dispatcher interface {
	Push(userID uint, title, body string, data map[string]string) error
}

// Gateway accepts websocket connections, runs the auth handshake, and
// routes every inbound operation to the messaging, typing, and read-receipt
// pipelines. All collaborators are injected; the gateway holds no global
// state.
type Gateway struct {
	hub      *Hub
	store    MessageStore
	verifier TokenVerifier
	notifier Dispatcher
	validate *validator.Validate
}

func NewGateway(hub *Hub, store MessageStore, verifier TokenVerifier, notifier Dispatcher) *Gateway {
	return &Gateway{
		hub:      hub,
		store:    store,
		verifier: verifier,
		notifier: notifier,
		validate: validator.New(),
	}
}

func (g *Gateway) Hub() *Hub {
	return g.hub
}

// ServeWS drives one websocket connection for its whole life: handshake,
// registration, read loop, teardown. Each connection gets its own goroutine
// from the server, so a connection blocked on the store never stalls the
// others.
func (g *Gateway) ServeWS(conn *websocket.Conn) {
	client, ok := g.handshake(conn)
	if !ok {
		conn.Close()
		return
	}

	g.hub.Register(client)
	g.hub.Join(client, PersonalRoom(client.UserID))
	go client.writePump()
	client.Send(EventAuthSuccess, authSuccessEvent{UserID: client.UserID})

	defer func() {
		g.hub.Unregister(client)
		conn.Close()
	}()

	for {
		var frame Frame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("chat: client %s disconnected (user %d): %v", client.ID, client.UserID, err)
			} else {
				log.Printf("chat: read error for client %s (user %d): %v", client.ID, client.UserID, err)
			}
			return
		}
		g.dispatch(client, frame)
	}
}

// handshake reads and verifies the auth frame. On any failure the
// connection is refused before a Client exists or any room is joined.
func (g *Gateway) handshake(conn *websocket.Conn) (*Client, bool) {
	refuse := func(msg string) {
		_ = conn.WriteJSON(envelope{Event: EventError, Data: errorEvent{Code: CodeAuthError, Message: msg}})
	}

	if err := conn.SetReadDeadline(time.Now().Add(handshakeTimeout)); err != nil {
		refuse("handshake failed")
		return nil, false
	}

	var frame Frame
	if err := conn.ReadJSON(&frame); err != nil || frame.Event != EventAuth {
		refuse("expected auth frame")
		return nil, false
	}
	var payload AuthPayload
	if err := json.Unmarshal(frame.Data, &payload); err != nil || payload.Token == "" {
		refuse("missing token")
		return nil, false
	}

	userID, err := g.verifier.Verify(payload.Token)
	if err != nil {
		log.Printf("chat: handshake rejected: %v", err)
		refuse("invalid or expired token")
		return nil, false
	}

	if err := conn.SetReadDeadline(time.Time{}); err != nil {
		refuse("handshake failed")
		return nil, false
	}
	return newClient(conn, userID), true
}

// dispatch decodes one frame into its typed payload and runs the matching
// operation. Operation failures go back to this connection only.
func (g *Gateway) dispatch(c *Client, frame Frame) {
	var opErr *OpError
	switch frame.Event {
	case EventJoinConversation:
		var p JoinConversationPayload
		if opErr = g.decode(frame.Data, &p); opErr == nil {
			opErr = g.joinConversation(c, p)
		}
	case EventSendMessage:
		var p SendMessagePayload
		if opErr = g.decode(frame.Data, &p); opErr == nil {
			opErr = g.sendMessage(context.Background(), c, p)
		}
	case EventTypingStart:
		var p TypingPayload
		if opErr = g.decode(frame.Data, &p); opErr == nil {
			g.relayTyping(c, p, true)
		}
	case EventTypingStop:
		var p TypingPayload
		if opErr = g.decode(frame.Data, &p); opErr == nil {
			g.relayTyping(c, p, false)
		}
	case EventMarkRead:
		var p MarkReadPayload
		if opErr = g.decode(frame.Data, &p); opErr == nil {
			opErr = g.markRead(context.Background(), c, p)
		}
	default:
		opErr = validationError("unknown event " + strconv.Quote(frame.Event))
	}

	if opErr != nil {
		c.Send(EventError, errorEvent{Code: opErr.Code, Message: opErr.Message})
	}
}

func (g *Gateway) decode(data json.RawMessage, payload any) *OpError {
	if len(data) > 0 {
		if err := json.Unmarshal(data, payload); err != nil {
			return validationError("malformed payload")
		}
	}
	if err := g.validate.Struct(payload); err != nil {
		return validationError(err.Error())
	}
	return nil
}

// joinConversation subscribes the connection to the canonical room for
// (self, other). Re-joining is a no-op; the ack is sent either way.
func (g *Gateway) joinConversation(c *Client, p JoinConversationPayload) *OpError {
	if p.OtherUserID == c.UserID {
		return validationError("cannot start a conversation with yourself")
	}
	conversationID := ConversationID(c.UserID, p.OtherUserID)
	g.hub.Join(c, ConversationRoom(conversationID))
	c.Send(EventConversationJoined, conversationJoinedEvent{ConversationID: conversationID})
	return nil
}

// sendMessage is the message pipeline: validate, persist, ack the sender,
// broadcast to the receiver's personal room, then fire-and-forget a push.
// The ack is emitted only after persistence has succeeded, never before.
func (g *Gateway) sendMessage(ctx context.Context, c *Client, p SendMessagePayload) *OpError {
	// A self-addressed message would be tagged "n-n", an id no conversation
	// ever produces and the read-receipt tracker would never accept.
	if p.ReceiverID == c.UserID {
		return validationError("cannot send a message to yourself")
	}
	if p.Content == "" {
		return validationError("content must not be empty")
	}
	if utf8.RuneCountInString(p.Content) > MaxContentLength {
		return validationError("content exceeds " + strconv.Itoa(MaxContentLength) + " characters")
	}

	msg := &models.Message{
		ConversationID: ConversationID(c.UserID, p.ReceiverID),
		SenderID:       c.UserID,
		ReceiverID:     p.ReceiverID,
		Content:        p.Content,
		IsRead:         false,
	}
	if err := g.store.CreateMessage(ctx, msg); err != nil {
		log.Printf("chat: failed to persist message from user %d to user %d: %v", c.UserID, p.ReceiverID, err)
		return persistenceError("failed to save message")
	}

	c.Send(EventMessageSent, messageEvent{Message: msg})
	g.hub.Broadcast(PersonalRoom(p.ReceiverID), EventNewMessage, messageEvent{Message: msg})

	if g.notifier != nil {
		go g.pushNewMessage(msg)
	}
	return nil
}

func (g *Gateway) pushNewMessage(msg *models.Message) {
	body := msg.Content
	if utf8.RuneCountInString(body) > 120 {
		body = string([]rune(body)[:117]) + "..."
	}
	err := g.notifier.Push(msg.ReceiverID, "New message", body, map[string]string{
		"conversation_id": msg.ConversationID,
		"sender_id":       strconv.FormatUint(uint64(msg.SenderID), 10),
		"message_id":      strconv.FormatUint(uint64(msg.ID), 10),
	})
	if err != nil {
		log.Printf("chat: push dispatch failed for user %d: %v", msg.ReceiverID, err)
	}
}

// relayTyping forwards a typing signal to whichever of the receiver's
// sessions are connected right now. An offline receiver means the signal
// simply evaporates; nothing is stored, queued, or retried, and expiry of a
// stale typing-start is the receiving client's job.
func (g *Gateway) relayTyping(c *Client, p TypingPayload, start bool) {
	event := EventUserStopTyping
	if start {
		event = EventUserTyping
	}
	g.hub.Broadcast(PersonalRoom(p.ReceiverID), event, typingEvent{SenderID: c.UserID})
}

// markRead runs the read-receipt pipeline for a socket connection.
func (g *Gateway) markRead(ctx context.Context, c *Client, p MarkReadPayload) *OpError {
	_, err := g.MarkRead(ctx, c.UserID, p.ConversationID)
	return err
}

// MarkRead flips every unread message addressed to the reader in the
// conversation to read and, when anything actually changed, notifies the
// counterpart's personal room. Shared by the socket operation and the REST
// endpoint. A second call with nothing newly unread changes no rows and
// emits nothing.
func (g *Gateway) MarkRead(ctx context.Context, readerID uint, conversationID string) (int64, *OpError) {
	counterpart, err := Counterpart(conversationID, readerID)
	if err != nil {
		return 0, validationError(err.Error())
	}

	updated, err := g.store.MarkConversationRead(ctx, conversationID, readerID, time.Now().UTC())
	if err != nil {
		log.Printf("chat: failed to mark conversation %s read for user %d: %v", conversationID, readerID, err)
		return 0, persistenceError("failed to update read state")
	}
	if updated == 0 {
		return 0, nil
	}

	g.hub.Broadcast(PersonalRoom(counterpart), EventMessagesRead, messagesReadEvent{
		ConversationID: conversationID,
		ReaderID:       readerID,
	})
	return updated, nil
}
