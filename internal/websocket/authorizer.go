package websocket

import (
	"handyhub/internal/domain/conversation"
	"handyhub/internal/events"
)

// CanSubscribe decides whether userID may listen on destination. Users get
// their own notification queue and the topics of conversations they take
// part in; everything else is denied.
func CanSubscribe(userID int64, destination string) bool {
	if owner, ok := events.UserOf(destination); ok {
		return owner == userID
	}
	if id, ok := events.ConversationOf(destination); ok {
		a, b, err := conversation.ParseID(id)
		if err != nil {
			return false
		}
		return a == userID || b == userID
	}
	return false
}
