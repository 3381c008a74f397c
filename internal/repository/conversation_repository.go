package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"handyhub/internal/domain/conversation"
	"handyhub/internal/domain/message"
	handyhub_errors "handyhub/pkg/errors"
)

const upsertBatchSize = 200

type PostgresConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &PostgresConversationRepository{db: db}
}

func unreadColumn(viewerID, otherID int64) string {
	low, _ := conversation.Pair(viewerID, otherID)
	if viewerID == low {
		return "unread_low"
	}
	return "unread_high"
}

// RecordMessage folds a freshly stored message into the pair's row, creating
// it on first contact. The receiver's unread counter grows by one; the last
// message columns only move forward.
func (r *PostgresConversationRepository) RecordMessage(ctx context.Context, m message.Message) error {
	now := time.Now().UTC()
	row := conversation.New(m.SenderID, m.ReceiverID)
	row.LastMessageID = m.ID
	row.LastMessageSenderID = m.SenderID
	row.LastMessageContent = m.Content
	row.LastMessageType = m.Type
	row.LastMessageAt = m.SentAt
	row.CreatedAt = now
	row.UpdatedAt = now

	unread := unreadColumn(m.ReceiverID, m.SenderID)
	if unread == "unread_low" {
		row.UnreadLow = 1
	} else {
		row.UnreadHigh = 1
	}

	// Same ordering as message.After: latest sentAt wins, ties go to the higher id.
	newer := func(column string, value interface{}) clause.Expr {
		return gorm.Expr(
			"CASE WHEN conversations.last_message_at < ? OR (conversations.last_message_at = ? AND conversations.last_message_id < ?) "+
				"THEN ? ELSE conversations."+column+" END",
			m.SentAt, m.SentAt, m.ID, value,
		)
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"last_message_sender_id": newer("last_message_sender_id", m.SenderID),
				"last_message_content":   newer("last_message_content", m.Content),
				"last_message_type":      newer("last_message_type", m.Type),
				"last_message_at":        newer("last_message_at", m.SentAt),
				"last_message_id":        newer("last_message_id", m.ID),
				unread:                   gorm.Expr("conversations." + unread + " + 1"),
				"updated_at":             now,
			}),
		}).
		Create(row).Error
}

// ResetUnread zeroes viewer's counter. Missing rows are left alone.
func (r *PostgresConversationRepository) ResetUnread(ctx context.Context, viewerID, otherID int64) error {
	return r.db.WithContext(ctx).
		Model(&conversation.Conversation{}).
		Where("id = ?", conversation.ID(viewerID, otherID)).
		Updates(map[string]interface{}{
			unreadColumn(viewerID, otherID): 0,
			"updated_at":                    time.Now().UTC(),
		}).Error
}

func (r *PostgresConversationRepository) Get(ctx context.Context, a, b int64) (conversation.Conversation, error) {
	var c conversation.Conversation
	err := r.db.WithContext(ctx).
		Where("id = ?", conversation.ID(a, b)).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return conversation.Conversation{}, handyhub_errors.ErrNotFound
		}
		return conversation.Conversation{}, err
	}
	return c, nil
}

func (r *PostgresConversationRepository) ListForUser(ctx context.Context, userID int64) ([]conversation.Conversation, error) {
	var rows []conversation.Conversation
	err := r.db.WithContext(ctx).
		Where("user_low_id = ? OR user_high_id = ?", userID, userID).
		Order("last_message_at DESC, last_message_id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Upsert overwrites whole rows; used when rebuilding from the message log.
func (r *PostgresConversationRepository) Upsert(ctx context.Context, rows []conversation.Conversation) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(rows, upsertBatchSize).Error
}

func (r *PostgresConversationRepository) Truncate(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&conversation.Conversation{}).Error
}
