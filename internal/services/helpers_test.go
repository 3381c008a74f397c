package services_test

import "handyhub/internal/domain/conversation"

func conversationID(a, b int64) string {
	return conversation.ID(a, b)
}
