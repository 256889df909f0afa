package chat

import (
	"context"
	"time"

	"github.com/platewise/chefchat/models"
	"gorm.io/gorm"
)

// ConversationSummary is one row of a user's conversation list.
type ConversationSummary struct {
	ConversationID string          `json:"conversation_id"`
	CounterpartID  uint            `json:"counterpart_id"`
	LastMessage    *models.Message `json:"last_message"`
	UnreadCount    int64           `json:"unread_count"`
}

// UnreadDigest summarizes one user's backlog of unread messages.
type UnreadDigest struct {
	ReceiverID uint
	Unread     int64
	OldestAt   time.Time
}

// MessageStore is the durable persistence port for Message rows. The
// gateway, the REST handlers, and the digest job all go through it, which
// keeps the socket pipeline testable without a database.
type MessageStore interface {
	// CreateMessage persists a new message and fills in its server-assigned
	// id and timestamp.
	CreateMessage(ctx context.Context, msg *models.Message) error

	// MarkConversationRead flips every unread message addressed to readerID
	// in the conversation to read, stamping readAt, and reports how many
	// rows changed. Calling it again with nothing newly unread changes
	// nothing.
	MarkConversationRead(ctx context.Context, conversationID string, readerID uint, readAt time.Time) (int64, error)

	// ListMessages returns a page of a conversation's messages, newest
	// first.
	ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]models.Message, error)

	// ListConversations returns the conversations a user participates in,
	// most recently active first.
	ListConversations(ctx context.Context, userID uint, limit, offset int) ([]ConversationSummary, error)

	// ListUnreadDigests groups unread messages older than the cutoff by
	// receiver.
	ListUnreadDigests(ctx context.Context, olderThan time.Time) ([]UnreadDigest, error)
}

// GormMessageStore is the production MessageStore backed by GORM.
type GormMessageStore struct {
	db *gorm.DB
}

func NewGormMessageStore(db *gorm.DB) *GormMessageStore {
	return &GormMessageStore{db: db}
}

func (s *GormMessageStore) CreateMessage(ctx context.Context, msg *models.Message) error {
	return s.db.WithContext(ctx).Create(msg).Error
}

func (s *GormMessageStore) MarkConversationRead(ctx context.Context, conversationID string, readerID uint, readAt time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("conversation_id = ? AND receiver_id = ? AND is_read = ?", conversationID, readerID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": readAt})
	return res.RowsAffected, res.Error
}

func (s *GormMessageStore) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]models.Message, error) {
	var messages []models.Message
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	return messages, err
}

func (s *GormMessageStore) ListConversations(ctx context.Context, userID uint, limit, offset int) ([]ConversationSummary, error) {
	var rows []struct {
		ConversationID string
	}
	err := s.db.WithContext(ctx).
		Model(&models.Message{}).
		Select("conversation_id, MAX(created_at) AS last_at").
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Group("conversation_id").
		Order("last_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]ConversationSummary, 0, len(rows))
	for _, row := range rows {
		counterpart, err := Counterpart(row.ConversationID, userID)
		if err != nil {
			continue
		}

		var last models.Message
		if err := s.db.WithContext(ctx).
			Where("conversation_id = ?", row.ConversationID).
			Order("created_at DESC").
			First(&last).Error; err != nil {
			return nil, err
		}

		var unread int64
		if err := s.db.WithContext(ctx).
			Model(&models.Message{}).
			Where("conversation_id = ? AND receiver_id = ? AND is_read = ?", row.ConversationID, userID, false).
			Count(&unread).Error; err != nil {
			return nil, err
		}

		summaries = append(summaries, ConversationSummary{
			ConversationID: row.ConversationID,
			CounterpartID:  counterpart,
			LastMessage:    &last,
			UnreadCount:    unread,
		})
	}
	return summaries, nil
}

func (s *GormMessageStore) ListUnreadDigests(ctx context.Context, olderThan time.Time) ([]UnreadDigest, error) {
	var digests []UnreadDigest
	err := s.db.WithContext(ctx).
		Model(&models.Message{}).
		Select("receiver_id, COUNT(*) AS unread, MIN(created_at) AS oldest_at").
		Where("is_read = ? AND created_at < ?", false, olderThan).
		Group("receiver_id").
		Scan(&digests).Error
	return digests, err
}
