package httpdto

// RecentMessagesQuery pages backwards through a conversation. BeforeID 0
// starts from the newest message.
type RecentMessagesQuery struct {
	BeforeID int64 `form:"beforeId" binding:"min=0"`
	Limit    int   `form:"limit" binding:"min=0"`
}

type UnreadCountQuery struct {
	SenderID   int64 `form:"senderId" binding:"required"`
	ReceiverID int64 `form:"receiverId" binding:"required"`
}
