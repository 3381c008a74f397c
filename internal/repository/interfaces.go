package repository

import (
	"context"

	"handyhub/internal/domain/conversation"
	"handyhub/internal/domain/message"
	"handyhub/internal/domain/user"
)

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id int64) (user.User, error)
	GetByIDs(ctx context.Context, ids []int64) ([]user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type MessageRepository interface {
	Create(ctx context.Context, m *message.Message) error

	FindBetween(ctx context.Context, a, b int64) ([]message.Message, error)
	FindBetweenPage(ctx context.Context, a, b, beforeID int64, limit int) ([]message.Message, error)
	FindForUser(ctx context.Context, userID int64) ([]message.Message, error)
	Scan(ctx context.Context, afterID int64, batch int) ([]message.Message, error)

	CountUnread(ctx context.Context, senderID, receiverID int64) (int64, error)
	MarkRead(ctx context.Context, senderID, receiverID int64) (int64, error)
}

type ConversationRepository interface {
	RecordMessage(ctx context.Context, m message.Message) error
	ResetUnread(ctx context.Context, viewerID, otherID int64) error

	Get(ctx context.Context, a, b int64) (conversation.Conversation, error)
	ListForUser(ctx context.Context, userID int64) ([]conversation.Conversation, error)

	Upsert(ctx context.Context, rows []conversation.Conversation) error
	Truncate(ctx context.Context) error
}

// Repositories groups the repositories bound to one connection or transaction.
type Repositories interface {
	Users() UserRepository
	Messages() MessageRepository
	Conversations() ConversationRepository
}

// Store is the unit of work. Everything fn does through the given
// Repositories commits or rolls back together.
type Store interface {
	Repositories
	Transaction(ctx context.Context, fn func(Repositories) error) error
}
