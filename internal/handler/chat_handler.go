package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"handyhub/internal/domain/conversation"
	"handyhub/internal/domain/message"
	"handyhub/internal/services"
	"handyhub/internal/transport/httpdto"
	handyhub_errors "handyhub/pkg/errors"
)

//go:generate mockgen -destination=mocks/chat_service_mock.go -package=mocks handyhub/internal/handler ChatService

type ChatService interface {
	ListConversations(ctx context.Context, userID int64) ([]conversation.Summary, error)
	ListMessages(ctx context.Context, a, b int64) ([]message.View, error)
	RecentMessages(ctx context.Context, a, b, beforeID int64, limit int) ([]message.View, error)
	Send(ctx context.Context, in services.SendInput) (message.View, error)
	MarkRead(ctx context.Context, senderID, receiverID int64) error
	UnreadCount(ctx context.Context, senderID, receiverID int64) (int64, error)
}

type ChatHandler struct {
	service ChatService
}

func NewChatHandler(service ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// RegisterRoutes mounts the chat endpoints on rg. send, when given, runs in
// front of POST /messages only.
func (h *ChatHandler) RegisterRoutes(rg *gin.RouterGroup, send ...gin.HandlerFunc) {
	rg.GET("/conversations/:userId", h.ListConversations)
	rg.GET("/conversation/:conversationId", h.Conversation)
	rg.GET("/conversation/:conversationId/recent", h.Recent)
	rg.POST("/messages", append(send, h.Send)...)
	rg.POST("/messages/mark-read", h.MarkRead)
	rg.GET("/messages/unread-count", h.UnreadCount)
}

func (h *ChatHandler) ListConversations(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid userId", "INVALID_REQUEST"))
		return
	}
	if err := services.ActingAs(c.Request.Context(), userID); err != nil {
		fail(c, err)
		return
	}

	items, err := h.service.ListConversations(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(items))
}

// Conversation returns the full history of a pair, oldest first.
func (h *ChatHandler) Conversation(c *gin.Context) {
	a, b, ok := h.conversationParam(c)
	if !ok {
		return
	}

	items, err := h.service.ListMessages(c.Request.Context(), a, b)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(items))
}

func (h *ChatHandler) Recent(c *gin.Context) {
	a, b, ok := h.conversationParam(c)
	if !ok {
		return
	}
	var q httpdto.RecentMessagesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid query", "INVALID_REQUEST"))
		return
	}

	items, err := h.service.RecentMessages(c.Request.Context(), a, b, q.BeforeID, q.Limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(items))
}

func (h *ChatHandler) Send(c *gin.Context) {
	var req httpdto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	if err := services.ActingAs(c.Request.Context(), req.SenderID); err != nil {
		fail(c, err)
		return
	}

	view, err := h.service.Send(c.Request.Context(), services.SendInput{
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		Content:    req.Text,
		Type:       req.Type,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(view))
}

// MarkRead marks what senderId sent to receiverId as read; only the
// receiver may do that.
func (h *ChatHandler) MarkRead(c *gin.Context) {
	var req httpdto.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	if err := services.ActingAs(c.Request.Context(), req.ReceiverID); err != nil {
		fail(c, err)
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), req.SenderID, req.ReceiverID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

func (h *ChatHandler) UnreadCount(c *gin.Context) {
	var q httpdto.UnreadCountQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("senderId and receiverId are required", "INVALID_REQUEST"))
		return
	}
	if err := services.ActingAs(c.Request.Context(), q.ReceiverID); err != nil {
		fail(c, err)
		return
	}

	count, err := h.service.UnreadCount(c.Request.Context(), q.SenderID, q.ReceiverID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.UnreadCountResponse{UnreadCount: count}))
}

// conversationParam parses :conversationId and checks the caller takes part
// in it. It writes the error response itself.
func (h *ChatHandler) conversationParam(c *gin.Context) (int64, int64, bool) {
	a, b, err := conversation.ParseID(c.Param("conversationId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid conversation id", "INVALID_REQUEST"))
		return 0, 0, false
	}
	ctx := c.Request.Context()
	if services.ActingAs(ctx, a) != nil && services.ActingAs(ctx, b) != nil {
		fail(c, fmt.Errorf("conversation %s: %w", c.Param("conversationId"), handyhub_errors.ErrForbidden))
		return 0, 0, false
	}
	return a, b, true
}

// fail answers with the status and code of err. Internal details stay in
// the logs.
func fail(c *gin.Context, err error) {
	if httpdto.Internal(err) {
		_ = c.Error(err)
	}
	c.JSON(httpdto.ErrorFrom(err))
}
