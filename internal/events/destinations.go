package events

import (
	"strconv"
	"strings"
)

const (
	conversationPrefix = "conversation/"
	userPrefix         = "user/"
	userQueueSuffix    = "/notifications"

	// BusPrefix namespaces destinations on the shared Redis bus.
	BusPrefix = "chat:"
)

func ConversationTopic(conversationID string) string {
	return conversationPrefix + conversationID
}

func UserQueue(userID int64) string {
	return userPrefix + strconv.FormatInt(userID, 10) + userQueueSuffix
}

// ConversationOf returns the conversation id of a conversation topic.
func ConversationOf(destination string) (string, bool) {
	if !strings.HasPrefix(destination, conversationPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(destination, conversationPrefix)
	return id, id != ""
}

// UserOf returns the user id of a user notification queue.
func UserOf(destination string) (int64, bool) {
	if !strings.HasPrefix(destination, userPrefix) || !strings.HasSuffix(destination, userQueueSuffix) {
		return 0, false
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(destination, userPrefix), userQueueSuffix)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func BusChannel(destination string) string {
	return BusPrefix + destination
}

func DestinationOf(channel string) (string, bool) {
	if !strings.HasPrefix(channel, BusPrefix) {
		return "", false
	}
	return strings.TrimPrefix(channel, BusPrefix), true
}
