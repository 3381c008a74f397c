package httpdto

type SendMessageRequest struct {
	SenderID   int64  `json:"senderId" binding:"required"`
	ReceiverID int64  `json:"receiverId" binding:"required"`
	Text       string `json:"text"`
	Type       string `json:"type"`
}

type MarkReadRequest struct {
	SenderID   int64 `json:"senderId" binding:"required"`
	ReceiverID int64 `json:"receiverId" binding:"required"`
}

type UnreadCountResponse struct {
	UnreadCount int64 `json:"unreadCount"`
}
