package conversation

import (
	"time"

	"handyhub/internal/domain/message"
)

// Conversation represents the conversations table: one row per user pair,
// maintained in the same transaction as every send and mark-read.
type Conversation struct {
	ID                  string    `gorm:"primaryKey;size:41"`
	UserLowID           int64     `gorm:"not null;index"`
	UserHighID          int64     `gorm:"not null;index"`
	LastMessageID       int64     `gorm:"not null"`
	LastMessageSenderID int64     `gorm:"not null"`
	LastMessageContent  string    `gorm:"type:text;not null"`
	LastMessageType     string    `gorm:"size:16;not null;default:TEXT"`
	LastMessageAt       time.Time `gorm:"not null;index"`
	UnreadLow           int64     `gorm:"not null;default:0"`
	UnreadHigh          int64     `gorm:"not null;default:0"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (Conversation) TableName() string {
	return "conversations"
}

// New returns an empty aggregate for the pair.
func New(a, b int64) *Conversation {
	low, high := Pair(a, b)
	return &Conversation{ID: ID(a, b), UserLowID: low, UserHighID: high}
}

// Counterparty returns the participant that is not viewer.
func (c Conversation) Counterparty(viewer int64) int64 {
	if c.UserLowID == viewer {
		return c.UserHighID
	}
	return c.UserLowID
}

// UnreadFor returns how many messages viewer has not read yet.
func (c Conversation) UnreadFor(viewer int64) int64 {
	if c.UserLowID == viewer {
		return c.UnreadLow
	}
	return c.UnreadHigh
}

// Apply folds one message of the pair into the aggregate.
func (c *Conversation) Apply(m message.Message) {
	if c.LastMessageID == 0 || m.After(c.lastMessage()) {
		c.LastMessageID = m.ID
		c.LastMessageSenderID = m.SenderID
		c.LastMessageContent = m.Content
		c.LastMessageType = m.Type
		c.LastMessageAt = m.SentAt
	}
	if m.IsRead {
		return
	}
	if m.ReceiverID == c.UserLowID {
		c.UnreadLow++
	} else {
		c.UnreadHigh++
	}
}

func (c Conversation) lastMessage() message.Message {
	return message.Message{
		ID:         c.LastMessageID,
		SenderID:   c.LastMessageSenderID,
		ReceiverID: c.Counterparty(c.LastMessageSenderID),
		Content:    c.LastMessageContent,
		Type:       c.LastMessageType,
		SentAt:     c.LastMessageAt,
	}
}

// Thread projects the aggregate onto viewer's side of the pair.
func (c Conversation) Thread(viewer int64) Thread {
	return Thread{
		ID:             c.ID,
		CounterpartyID: c.Counterparty(viewer),
		Last:           c.lastMessage(),
		Unread:         c.UnreadFor(viewer),
	}
}
