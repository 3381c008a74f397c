package events

// Event names carried in Envelope.Event.
const (
	EventMessageCreated = "message.created"
	EventMessageRead    = "message.read"
	EventUserJoined     = "user.joined"
)

// MessageReadPayload is pushed to the conversation topic after a mark-read.
type MessageReadPayload struct {
	ConversationID string `json:"conversationId"`
	SenderID       int64  `json:"senderId"`
	ReceiverID     int64  `json:"receiverId"`
	Updated        int64  `json:"updated"`
}

// UserJoinedPayload announces that a participant opened the conversation.
type UserJoinedPayload struct {
	ConversationID string `json:"conversationId"`
	Username       string `json:"username"`
	// PeerOnline tells the joining user whether the other participant has a
	// live socket.
	PeerOnline bool `json:"peerOnline"`
}
