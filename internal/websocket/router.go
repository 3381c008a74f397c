package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"handyhub/internal/domain/conversation"
	"handyhub/internal/domain/message"
	"handyhub/internal/events"
	"handyhub/internal/services"
	handyhub_errors "handyhub/pkg/errors"
	"handyhub/pkg/logger"
)

//go:generate mockgen -destination=mocks/chat_backend_mock.go -package=mocks handyhub/internal/websocket ChatBackend

// ChatBackend is the part of the chat service reachable from a socket.
type ChatBackend interface {
	Send(ctx context.Context, in services.SendInput) (message.View, error)
	MarkRead(ctx context.Context, senderID, receiverID int64) error
}

// Router executes inbound frames on behalf of one client. Failures are
// answered with an error frame to that client only.
type Router struct {
	hub      *Hub
	chat     ChatBackend
	presence PresenceTracker
	notifier services.Notifier
	log      *logger.Logger
}

func NewRouter(hub *Hub, chat ChatBackend, presence PresenceTracker, notifier services.Notifier, log *logger.Logger) *Router {
	if presence == nil {
		presence = NewMemoryPresence()
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Router{
		hub:      hub,
		chat:     chat,
		presence: presence,
		notifier: notifier,
		log:      log.Named("ws-router"),
	}
}

func (r *Router) Handle(ctx context.Context, c *Client, raw []byte) {
	var f InboundFrame
	if err := json.Unmarshal(raw, &f); err != nil {
		r.fail(ctx, c, f, fmt.Errorf("malformed frame: %w", handyhub_errors.ErrInvalidInput))
		return
	}

	var err error
	switch f.Action {
	case ActionSubscribe:
		err = r.subscribe(c, f)
	case ActionUnsubscribe:
		r.hub.Unsubscribe(c, f.Destination)
		c.SendMessage(encodeFrame(EventUnsubscribed, f.Destination, ackPayload{Action: f.Action}))
	case ActionSendMessage:
		err = r.sendMessage(ctx, c, f)
	case ActionAddUser:
		err = r.addUser(ctx, c, f)
	case ActionMarkAsRead:
		err = r.markAsRead(ctx, c, f)
	default:
		err = fmt.Errorf("unknown action %q: %w", f.Action, handyhub_errors.ErrInvalidInput)
	}
	if err != nil {
		r.fail(ctx, c, f, err)
	}
}

func (r *Router) subscribe(c *Client, f InboundFrame) error {
	dest := f.Destination
	if id, ok := events.ConversationOf(dest); ok {
		a, b, err := conversation.ParseID(id)
		if err != nil {
			return err
		}
		dest = events.ConversationTopic(conversation.ID(a, b))
	}
	if !CanSubscribe(c.UserID(), dest) {
		return fmt.Errorf("subscribe %q: %w", f.Destination, handyhub_errors.ErrForbidden)
	}
	r.hub.Subscribe(c, dest)
	c.SendMessage(encodeFrame(EventSubscribed, dest, ackPayload{Action: f.Action}))
	return nil
}

// conversationOf parses the frame's conversation and checks that the
// socket's user belongs to it.
func conversationOf(c *Client, f InboundFrame) (int64, int64, error) {
	a, b, err := conversation.ParseID(f.ConversationID)
	if err != nil {
		return 0, 0, err
	}
	if user := c.UserID(); user != a && user != b {
		return 0, 0, fmt.Errorf("conversation %s: %w", f.ConversationID, handyhub_errors.ErrForbidden)
	}
	return a, b, nil
}

func (r *Router) sendMessage(ctx context.Context, c *Client, f InboundFrame) error {
	a, b, err := conversationOf(c, f)
	if err != nil {
		return err
	}
	var p sendMessagePayload
	if err := json.Unmarshal(f.Payload, &p); err != nil {
		return fmt.Errorf("sendMessage payload: %w", handyhub_errors.ErrInvalidInput)
	}
	if conversation.ID(p.SenderID, p.ReceiverID) != conversation.ID(a, b) {
		return fmt.Errorf("message does not belong to conversation %s: %w", f.ConversationID, handyhub_errors.ErrInvalidInput)
	}
	if p.SenderID != c.UserID() {
		return fmt.Errorf("cannot send as user %d: %w", p.SenderID, handyhub_errors.ErrForbidden)
	}

	_, err = r.chat.Send(ctx, services.SendInput{
		SenderID:   p.SenderID,
		ReceiverID: p.ReceiverID,
		Content:    p.Content,
		Type:       p.Type,
	})
	return err
}

func (r *Router) addUser(ctx context.Context, c *Client, f InboundFrame) error {
	a, b, err := conversationOf(c, f)
	if err != nil {
		return err
	}
	id := conversation.ID(a, b)
	peer := a
	if peer == c.UserID() {
		peer = b
	}
	var p addUserPayload
	if err := json.Unmarshal(f.Payload, &p); err != nil || p.Sender == "" {
		return fmt.Errorf("addUser payload: %w", handyhub_errors.ErrInvalidInput)
	}

	c.Session.Set(AttrUsername, p.Sender)
	c.Session.Set(AttrConversationID, id)

	if err := r.presence.Track(ctx, c.Session.ID, c.UserID(), c.Session.Snapshot()); err != nil {
		r.log.Ctx(ctx).Warn("presence update failed", zap.String("session_id", c.Session.ID), zap.Error(err))
	}
	if r.notifier != nil {
		r.notifier.Notify(ctx, events.EventUserJoined, events.UserJoinedPayload{
			ConversationID: id,
			Username:       p.Sender,
			PeerOnline:     r.online(ctx, peer),
		}, events.ConversationTopic(id))
	}
	return nil
}

// online treats a presence lookup failure as offline.
func (r *Router) online(ctx context.Context, userID int64) bool {
	ok, err := r.presence.IsOnline(ctx, userID)
	if err != nil {
		r.log.Ctx(ctx).Debug("presence lookup failed", zap.Int64("user_id", userID), zap.Error(err))
		return false
	}
	return ok
}

// markAsRead marks what the other participant sent to userId as read.
func (r *Router) markAsRead(ctx context.Context, c *Client, f InboundFrame) error {
	a, b, err := conversationOf(c, f)
	if err != nil {
		return err
	}
	var p markAsReadPayload
	if err := json.Unmarshal(f.Payload, &p); err != nil {
		return fmt.Errorf("markAsRead payload: %w", handyhub_errors.ErrInvalidInput)
	}
	if p.UserID != a && p.UserID != b {
		return fmt.Errorf("user %d not in conversation %s: %w", p.UserID, f.ConversationID, handyhub_errors.ErrInvalidInput)
	}
	if p.UserID != c.UserID() {
		return fmt.Errorf("cannot mark as user %d: %w", p.UserID, handyhub_errors.ErrForbidden)
	}

	other := a
	if other == p.UserID {
		other = b
	}
	return r.chat.MarkRead(ctx, other, p.UserID)
}

func (r *Router) fail(ctx context.Context, c *Client, f InboundFrame, err error) {
	r.log.Ctx(ctx).Warn("websocket action failed",
		zap.String("action", f.Action),
		zap.String("session_id", c.Session.ID),
		zap.Error(err))

	msg := err.Error()
	if errors.Is(err, handyhub_errors.ErrInternal) {
		msg = "internal error"
	}
	c.SendMessage(encodeFrame(EventError, f.Destination, errorPayload{
		Action: f.Action,
		Error:  msg,
		Code:   handyhub_errors.Code(err),
	}))
}
