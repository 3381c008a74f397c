package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"handyhub/internal/domain/conversation"
	"handyhub/internal/domain/message"
	"handyhub/internal/domain/user"
	"handyhub/internal/events"
	"handyhub/internal/repository"
	handyhub_errors "handyhub/pkg/errors"
	"handyhub/pkg/logger"
)

const (
	DefaultRecentLimit = 50
	MaxRecentLimit     = 100
)

var validate = validator.New()

// Notifier hands real-time pushes to the delivery channel. Implementations
// must not block.
type Notifier interface {
	Notify(ctx context.Context, event string, payload interface{}, destinations ...string)
}

type SendInput struct {
	SenderID   int64  `validate:"gt=0"`
	ReceiverID int64  `validate:"gt=0,nefield=SenderID"`
	Content    string `validate:"required"`
	Type       string `validate:"oneof=TEXT IMAGE FILE SYSTEM"`
}

type ChatService struct {
	store         repository.Store
	conversations *ConversationService
	notifier      Notifier
	log           *logger.Logger
}

func NewChatService(store repository.Store, conversations *ConversationService, notifier Notifier, log *logger.Logger) *ChatService {
	if log == nil {
		log = logger.NewNop()
	}
	return &ChatService{
		store:         store,
		conversations: conversations,
		notifier:      notifier,
		log:           log.Named("chat"),
	}
}

// ListConversations returns one summary per counterparty of userID. Only an
// unknown user is reported; any other failure yields an empty list.
func (s *ChatService) ListConversations(ctx context.Context, userID int64) ([]conversation.Summary, error) {
	if userID <= 0 {
		return nil, invalid("user id %d", userID)
	}
	exists, err := s.store.Users().Exists(ctx, userID)
	if err != nil {
		return Fail[conversation.Summary](err).OrEmpty(ctx, s.log, "list conversations"), nil
	}
	if !exists {
		return nil, fmt.Errorf("user %d: %w", userID, handyhub_errors.ErrNotFound)
	}
	return s.summaries(ctx, userID).OrEmpty(ctx, s.log, "list conversations"), nil
}

func (s *ChatService) summaries(ctx context.Context, userID int64) Result[conversation.Summary] {
	threads, err := s.conversations.Threads(ctx, userID)
	if err != nil {
		return Fail[conversation.Summary](err)
	}
	ids := lo.Map(threads, func(t conversation.Thread, _ int) int64 { return t.CounterpartyID })
	names, err := userNames(ctx, s.store, append(ids, userID)...)
	if err != nil {
		return Fail[conversation.Summary](err)
	}
	return Ok(lo.Map(threads, func(t conversation.Thread, _ int) conversation.Summary {
		return t.Summarize(names)
	}))
}

// ListMessages returns the full history of the pair, oldest first.
func (s *ChatService) ListMessages(ctx context.Context, a, b int64) ([]message.View, error) {
	names, err := participants(ctx, s.store, a, b)
	if err != nil {
		return nil, err
	}
	msgs, err := s.store.Messages().FindBetween(ctx, a, b)
	if err != nil {
		return nil, storeErr("load messages", err)
	}
	return views(msgs, names), nil
}

// RecentMessages returns a window of the pair's history, newest first.
// beforeID 0 starts from the latest message.
func (s *ChatService) RecentMessages(ctx context.Context, a, b, beforeID int64, limit int) ([]message.View, error) {
	if beforeID < 0 {
		return nil, invalid("before id %d", beforeID)
	}
	switch {
	case limit <= 0:
		limit = DefaultRecentLimit
	case limit > MaxRecentLimit:
		limit = MaxRecentLimit
	}

	names, err := participants(ctx, s.store, a, b)
	if err != nil {
		return nil, err
	}
	msgs, err := s.store.Messages().FindBetweenPage(ctx, a, b, beforeID, limit)
	if err != nil {
		return nil, storeErr("load messages", err)
	}
	return views(msgs, names), nil
}

// Send stores a message and updates the pair's conversation in one unit of
// work, then queues the pushes to the conversation topic and the receiver's
// queue.
func (s *ChatService) Send(ctx context.Context, in SendInput) (message.View, error) {
	if in.Type == "" {
		in.Type = message.TypeText
	}
	if err := validateSend(in); err != nil {
		return message.View{}, err
	}

	var view message.View
	err := s.store.Transaction(ctx, func(repos repository.Repositories) error {
		names, err := participants(ctx, repos, in.SenderID, in.ReceiverID)
		if err != nil {
			return err
		}

		m := message.Message{
			SenderID:   in.SenderID,
			ReceiverID: in.ReceiverID,
			Content:    in.Content,
			Type:       in.Type,
		}
		if err := repos.Messages().Create(ctx, &m); err != nil {
			return storeErr("store message", err)
		}
		if err := repos.Conversations().RecordMessage(ctx, m); err != nil {
			return storeErr("update conversation", err)
		}

		view = message.NewView(m, names[m.SenderID], names[m.ReceiverID])
		return nil
	})
	if err != nil {
		return message.View{}, err
	}

	s.notify(ctx, events.EventMessageCreated, view,
		events.ConversationTopic(conversation.ID(in.SenderID, in.ReceiverID)),
		events.UserQueue(in.ReceiverID))
	return view, nil
}

// MarkRead marks every message from senderID to receiverID as read.
func (s *ChatService) MarkRead(ctx context.Context, senderID, receiverID int64) error {
	var updated int64
	err := s.store.Transaction(ctx, func(repos repository.Repositories) error {
		if _, err := participants(ctx, repos, senderID, receiverID); err != nil {
			return err
		}
		// Conversation row first. Send only inserts into messages, so it never
		// holds a row the update below waits on.
		if err := repos.Conversations().ResetUnread(ctx, receiverID, senderID); err != nil {
			return storeErr("reset unread", err)
		}
		n, err := repos.Messages().MarkRead(ctx, senderID, receiverID)
		if err != nil {
			return storeErr("mark read", err)
		}
		updated = n
		return nil
	})
	if err != nil {
		return err
	}

	if updated > 0 {
		id := conversation.ID(senderID, receiverID)
		s.notify(ctx, events.EventMessageRead, events.MessageReadPayload{
			ConversationID: id,
			SenderID:       senderID,
			ReceiverID:     receiverID,
			Updated:        updated,
		}, events.ConversationTopic(id))
	}
	return nil
}

// UnreadCount returns how many messages from senderID receiverID has not read.
func (s *ChatService) UnreadCount(ctx context.Context, senderID, receiverID int64) (int64, error) {
	if _, err := participants(ctx, s.store, senderID, receiverID); err != nil {
		return 0, err
	}
	n, err := s.store.Messages().CountUnread(ctx, senderID, receiverID)
	if err != nil {
		return 0, storeErr("count unread", err)
	}
	return n, nil
}

func (s *ChatService) notify(ctx context.Context, event string, payload interface{}, destinations ...string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, event, payload, destinations...)
}

func validateSend(in SendInput) error {
	trimmed := in
	trimmed.Content = strings.TrimSpace(in.Content)
	err := validate.Struct(trimmed)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := lo.Map(verrs, func(fe validator.FieldError, _ int) string {
			return fe.Field() + " " + fe.Tag()
		})
		return invalid("send message: %s", strings.Join(fields, ", "))
	}
	return invalid("send message: %v", err)
}

// participants resolves both users of a pair, failing with ErrNotFound when
// either is unknown.
func participants(ctx context.Context, repos repository.Repositories, a, b int64) (map[int64]string, error) {
	if a <= 0 || b <= 0 {
		return nil, invalid("user ids %d and %d", a, b)
	}
	if a == b {
		return nil, invalid("user %d cannot talk to itself", a)
	}
	names, err := userNames(ctx, repos, a, b)
	if err != nil {
		return nil, err
	}
	for _, id := range []int64{a, b} {
		if _, ok := names[id]; !ok {
			return nil, fmt.Errorf("user %d: %w", id, handyhub_errors.ErrNotFound)
		}
	}
	return names, nil
}

func userNames(ctx context.Context, repos repository.Repositories, ids ...int64) (map[int64]string, error) {
	users, err := repos.Users().GetByIDs(ctx, lo.Uniq(ids))
	if err != nil {
		return nil, storeErr("load users", err)
	}
	return lo.SliceToMap(users, func(u user.User) (int64, string) {
		return u.ID, u.Name
	}), nil
}

func views(msgs []message.Message, names map[int64]string) []message.View {
	return lo.Map(msgs, func(m message.Message, _ int) message.View {
		return message.NewView(m, names[m.SenderID], names[m.ReceiverID])
	})
}
