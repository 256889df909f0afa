package models

import (
	"time"
)

// Message is append-only: rows are never deleted, and the only mutation after
// creation is the unread -> read transition (IsRead flips to true, ReadAt is
// set exactly once at that point).
type Message struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	ConversationID string     `gorm:"size:64;not null;index" json:"conversation_id"`
	SenderID       uint       `gorm:"not null;index" json:"sender_id"`
	ReceiverID     uint       `gorm:"not null;index" json:"receiver_id"`
	Content        string     `gorm:"type:text;not null" json:"content"`
	IsRead         bool       `gorm:"not null;default:false" json:"is_read"`
	ReadAt         *time.Time `json:"read_at"`
	CreatedAt      time.Time  `json:"created_at"`
}
