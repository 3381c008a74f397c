package services

import (
	"context"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"handyhub/config"
	"handyhub/internal/domain/conversation"
	"handyhub/internal/repository"
	"handyhub/pkg/logger"
)

const defaultRebuildBatch = 500

// ConversationService answers "which conversations does this user have"
// from either the conversations table or the raw message log.
type ConversationService struct {
	store  repository.Store
	source string
	log    *logger.Logger
}

func NewConversationService(store repository.Store, source string, log *logger.Logger) *ConversationService {
	if source != config.ConversationSourceDerived {
		source = config.ConversationSourceAggregate
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &ConversationService{store: store, source: source, log: log.Named("conversations")}
}

func (s *ConversationService) Source() string {
	return s.source
}

// Threads lists userID's conversations, most recent first.
func (s *ConversationService) Threads(ctx context.Context, userID int64) ([]conversation.Thread, error) {
	if s.source == config.ConversationSourceDerived {
		msgs, err := s.store.Messages().FindForUser(ctx, userID)
		if err != nil {
			return nil, storeErr("load message log", err)
		}
		return conversation.Derive(userID, msgs), nil
	}

	rows, err := s.store.Conversations().ListForUser(ctx, userID)
	if err != nil {
		return nil, storeErr("load conversations", err)
	}
	threads := lo.Map(rows, func(c conversation.Conversation, _ int) conversation.Thread {
		return c.Thread(userID)
	})
	conversation.SortThreads(threads)
	return threads, nil
}

// Rebuild discards the conversations table and recomputes it from the
// message log. It returns the number of rows written.
func (s *ConversationService) Rebuild(ctx context.Context, batch int) (int, error) {
	if batch <= 0 {
		batch = defaultRebuildBatch
	}
	start := time.Now()

	var written int
	err := s.store.Transaction(ctx, func(repos repository.Repositories) error {
		if err := repos.Conversations().Truncate(ctx); err != nil {
			return storeErr("truncate conversations", err)
		}

		acc := make(map[string]*conversation.Conversation)
		var afterID int64
		for {
			msgs, err := repos.Messages().Scan(ctx, afterID, batch)
			if err != nil {
				return storeErr("scan messages", err)
			}
			if len(msgs) == 0 {
				break
			}
			conversation.Fold(acc, msgs)
			afterID = msgs[len(msgs)-1].ID
		}

		rows := lo.MapToSlice(acc, func(_ string, c *conversation.Conversation) conversation.Conversation {
			return *c
		})
		written = len(rows)
		if err := repos.Conversations().Upsert(ctx, rows); err != nil {
			return storeErr("write conversations", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Ctx(ctx).Info("conversations rebuilt",
		zap.Int("rows", written),
		zap.Duration("took", time.Since(start)))
	return written, nil
}
