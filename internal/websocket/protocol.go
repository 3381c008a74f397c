package websocket

import (
	"encoding/json"

	"handyhub/internal/events"
)

// Client actions.
const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
	ActionSendMessage = "sendMessage"
	ActionAddUser     = "addUser"
	ActionMarkAsRead  = "markAsRead"
)

// Server-only events, alongside those in package events.
const (
	EventError        = "error"
	EventSubscribed   = "subscribed"
	EventUnsubscribed = "unsubscribed"
)

// InboundFrame is what clients write on the socket.
type InboundFrame struct {
	Action         string          `json:"action"`
	Destination    string          `json:"destination,omitempty"`
	ConversationID string          `json:"conversationId,omitempty"`
	Payload        json.RawMessage `json:"payload,omitempty"`
}

type sendMessagePayload struct {
	SenderID   int64  `json:"senderId"`
	ReceiverID int64  `json:"receiverId"`
	Content    string `json:"content"`
	Type       string `json:"type,omitempty"`
}

type addUserPayload struct {
	Sender string `json:"sender"`
}

type markAsReadPayload struct {
	UserID int64 `json:"userId"`
}

type errorPayload struct {
	Action string `json:"action,omitempty"`
	Error  string `json:"error"`
	Code   string `json:"code"`
}

type ackPayload struct {
	Action string `json:"action"`
}

func encodeFrame(event, destination string, payload interface{}) []byte {
	env, err := events.NewEnvelope(event, destination, payload)
	if err != nil {
		return nil
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil
	}
	return data
}
