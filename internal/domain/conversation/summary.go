package conversation

import "time"

// Summary is the conversation list entry returned to clients.
type Summary struct {
	ID                  string    `json:"id"`
	OtherUserID         int64     `json:"otherUserId"`
	OtherUserName       string    `json:"otherUserName"`
	LastMessageText     string    `json:"lastMessageText"`
	LastMessageTime     time.Time `json:"lastMessageTime"`
	UnreadCount         int64     `json:"unreadCount"`
	LastMessageSender   string    `json:"lastMessageSender"`
	LastMessageSenderID int64     `json:"lastMessageSenderId"`
}

// Summarize resolves participant names for a thread. Unknown ids render as
// an empty name.
func (t Thread) Summarize(names map[int64]string) Summary {
	return Summary{
		ID:                  t.ID,
		OtherUserID:         t.CounterpartyID,
		OtherUserName:       names[t.CounterpartyID],
		LastMessageText:     t.Last.Content,
		LastMessageTime:     t.Last.SentAt,
		UnreadCount:         t.Unread,
		LastMessageSender:   names[t.Last.SenderID],
		LastMessageSenderID: t.Last.SenderID,
	}
}
