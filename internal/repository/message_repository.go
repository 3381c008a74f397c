package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"handyhub/internal/domain/message"
	handyhub_errors "handyhub/pkg/errors"
)

const pairCondition = "((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?))"

type PostgresMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &PostgresMessageRepository{db: db}
}

// Create stamps the message with the server time and stores it unread.
func (r *PostgresMessageRepository) Create(ctx context.Context, m *message.Message) error {
	m.ID = 0
	m.SentAt = time.Now().UTC()
	m.IsRead = false
	if m.Type == "" {
		m.Type = message.TypeText
	}
	res := r.db.WithContext(ctx).Omit("Sender", "Receiver").Create(m)
	if res.Error != nil {
		if isForeignKeyViolation(res.Error) {
			return handyhub_errors.ErrNotFound
		}
		return res.Error
	}
	return nil
}

func (r *PostgresMessageRepository) FindBetween(ctx context.Context, a, b int64) ([]message.Message, error) {
	var messages []message.Message
	err := r.db.WithContext(ctx).
		Where(pairCondition, a, b, b, a).
		Order("sent_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// FindBetweenPage returns up to limit messages of the pair, newest first.
// When beforeID is positive the page holds what precedes that message in
// (sent_at, id) order; an unknown cursor yields an empty page.
func (r *PostgresMessageRepository) FindBetweenPage(ctx context.Context, a, b, beforeID int64, limit int) ([]message.Message, error) {
	var messages []message.Message
	q := r.db.WithContext(ctx).
		Where(pairCondition, a, b, b, a)

	if beforeID > 0 {
		cursor := r.db.WithContext(ctx).Model(&message.Message{}).Select("sent_at").Where("id = ?", beforeID)
		q = q.Where("(sent_at < (?) OR (sent_at = (?) AND id < ?))", cursor, cursor, beforeID)
	}

	err := q.Order("sent_at DESC, id DESC").Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *PostgresMessageRepository) FindForUser(ctx context.Context, userID int64) ([]message.Message, error) {
	var messages []message.Message
	err := r.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("sent_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *PostgresMessageRepository) Scan(ctx context.Context, afterID int64, batch int) ([]message.Message, error) {
	var messages []message.Message
	err := r.db.WithContext(ctx).
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(batch).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *PostgresMessageRepository) CountUnread(ctx context.Context, senderID, receiverID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&message.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", senderID, receiverID, false).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// MarkRead flips every unread message from sender to receiver in one
// statement and reports how many rows changed.
func (r *PostgresMessageRepository) MarkRead(ctx context.Context, senderID, receiverID int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&message.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", senderID, receiverID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
