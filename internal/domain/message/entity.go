package message

import (
	"time"

	"handyhub/internal/domain/user"
)

// Type tags. Content is always text; the tag only tells clients how to
// render it.
const (
	TypeText   = "TEXT"
	TypeImage  = "IMAGE"
	TypeFile   = "FILE"
	TypeSystem = "SYSTEM"
)

// Message represents the messages table. Rows are append-only; IsRead is the
// only column that ever changes and only from false to true.
type Message struct {
	ID         int64      `gorm:"primaryKey;autoIncrement"`
	SenderID   int64      `gorm:"not null;index:idx_messages_pair_read,priority:1"`
	ReceiverID int64      `gorm:"not null;index:idx_messages_pair_read,priority:2;index:idx_messages_receiver"`
	Content    string     `gorm:"type:text;not null"`
	Type       string     `gorm:"size:16;not null;default:TEXT"`
	SentAt     time.Time  `gorm:"not null;index"`
	IsRead     bool       `gorm:"not null;default:false;index:idx_messages_pair_read,priority:3"`
	Sender     *user.User `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE"`
	Receiver   *user.User `gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE"`
}

func (Message) TableName() string {
	return "messages"
}

// Involves reports whether the user is the sender or the receiver.
func (m Message) Involves(userID int64) bool {
	return m.SenderID == userID || m.ReceiverID == userID
}

// Counterparty returns the other participant as seen by viewer.
func (m Message) Counterparty(viewer int64) int64 {
	if m.SenderID == viewer {
		return m.ReceiverID
	}
	return m.SenderID
}

// After orders messages by send time, falling back to the id when two
// messages share a timestamp.
func (m Message) After(other Message) bool {
	if m.SentAt.Equal(other.SentAt) {
		return m.ID > other.ID
	}
	return m.SentAt.After(other.SentAt)
}

// View is the wire representation shared by the HTTP API and real-time
// pushes.
type View struct {
	ID           int64     `json:"id"`
	SenderID     int64     `json:"senderId"`
	SenderName   string    `json:"senderName"`
	ReceiverID   int64     `json:"receiverId"`
	ReceiverName string    `json:"receiverName"`
	Content      string    `json:"content"`
	Type         string    `json:"type"`
	SentAt       time.Time `json:"sentAt"`
	IsRead       bool      `json:"isRead"`
}

// NewView builds the wire representation; names are resolved by the caller.
func NewView(m Message, senderName, receiverName string) View {
	return View{
		ID:           m.ID,
		SenderID:     m.SenderID,
		SenderName:   senderName,
		ReceiverID:   m.ReceiverID,
		ReceiverName: receiverName,
		Content:      m.Content,
		Type:         m.Type,
		SentAt:       m.SentAt,
		IsRead:       m.IsRead,
	}
}
