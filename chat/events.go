package chat

import (
	"encoding/json"

	"github.com/platewise/chefchat/models"
)

// Inbound event names accepted from clients.
const (
	EventAuth             = "auth"
	EventJoinConversation = "join_conversation"
	EventSendMessage      = "send_message"
	EventTypingStart      = "typing_start"
	EventTypingStop       = "typing_stop"
	EventMarkRead         = "mark_read"
)

// Outbound event names delivered to clients.
const (
	EventAuthSuccess        = "auth_success"
	EventConversationJoined = "conversation_joined"
	EventMessageSent        = "message_sent"
	EventNewMessage         = "new_message"
	EventUserTyping         = "user_typing"
	EventUserStopTyping     = "user_stop_typing"
	EventMessagesRead       = "messages_read"
	EventError              = "error"
)

// Frame is the envelope every inbound client frame arrives in. The payload
// stays raw until the event name selects which typed struct to decode it
// into, so a mistyped payload fails at the boundary instead of deep inside a
// handler.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type AuthPayload struct {
	Token string `json:"token" validate:"required"`
}

type JoinConversationPayload struct {
	OtherUserID uint `json:"other_user_id" validate:"required"`
}

type SendMessagePayload struct {
	ReceiverID uint   `json:"receiver_id" validate:"required"`
	Content    string `json:"content"`
}

type TypingPayload struct {
	ReceiverID uint `json:"receiver_id" validate:"required"`
}

type MarkReadPayload struct {
	ConversationID string `json:"conversation_id" validate:"required"`
}

// envelope is the outbound counterpart of Frame.
type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type authSuccessEvent struct {
	UserID uint `json:"user_id"`
}

type conversationJoinedEvent struct {
	ConversationID string `json:"conversation_id"`
}

type messageEvent struct {
	Message *models.Message `json:"message"`
}

type typingEvent struct {
	SenderID uint `json:"sender_id"`
}

type messagesReadEvent struct {
	ConversationID string `json:"conversation_id"`
	ReaderID       uint   `json:"reader_id"`
}

type errorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
