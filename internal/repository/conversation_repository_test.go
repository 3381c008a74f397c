package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"handyhub/internal/domain/conversation"
	"handyhub/internal/domain/message"
	"handyhub/internal/repository"
	"handyhub/internal/repository/repotest"
	handyhub_errors "handyhub/pkg/errors"
)

func TestRecordMessageMaintainsAggregate(t *testing.T) {
	ctx := context.Background()
	db := repotest.Open(t)
	users := repotest.Users(t, db, "Ana", "Bo")
	a, b := users[0].ID, users[1].ID
	store := repository.NewStore(db)

	for _, pair := range [][2]int64{{a, b}, {a, b}, {b, a}} {
		m := send(t, store.Messages(), pair[0], pair[1], "x")
		require.NoError(t, store.Conversations().RecordMessage(ctx, m))
	}

	row, err := store.Conversations().Get(ctx, b, a)
	require.NoError(t, err)
	require.Equal(t, conversation.ID(a, b), row.ID)
	require.Equal(t, b, row.LastMessageSenderID)
	require.Equal(t, int64(2), row.UnreadFor(b))
	require.Equal(t, int64(1), row.UnreadFor(a))

	require.NoError(t, store.Conversations().ResetUnread(ctx, b, a))
	row, err = store.Conversations().Get(ctx, a, b)
	require.NoError(t, err)
	require.Zero(t, row.UnreadFor(b))
	require.Equal(t, int64(1), row.UnreadFor(a))
}

func TestRecordMessageKeepsNewestLast(t *testing.T) {
	ctx := context.Background()
	db := repotest.Open(t)
	users := repotest.Users(t, db, "Ana", "Bo")
	a, b := users[0].ID, users[1].ID
	store := repository.NewStore(db)

	older := send(t, store.Messages(), a, b, "older")
	newer := send(t, store.Messages(), b, a, "newer")

	require.NoError(t, store.Conversations().RecordMessage(ctx, newer))
	require.NoError(t, store.Conversations().RecordMessage(ctx, older))

	row, err := store.Conversations().Get(ctx, a, b)
	require.NoError(t, err)
	require.Equal(t, newer.ID, row.LastMessageID)
	require.Equal(t, "newer", row.LastMessageContent)
}

func TestRecordMessageOrdersBySentAt(t *testing.T) {
	ctx := context.Background()
	db := repotest.Open(t)
	users := repotest.Users(t, db, "Ana", "Bo")
	a, b := users[0].ID, users[1].ID
	store := repository.NewStore(db)

	t0 := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	later := send(t, store.Messages(), a, b, "later")
	earlier := send(t, store.Messages(), b, a, "earlier")
	backdate(t, db, &later, t0.Add(time.Minute))
	backdate(t, db, &earlier, t0)

	require.NoError(t, store.Conversations().RecordMessage(ctx, later))
	require.NoError(t, store.Conversations().RecordMessage(ctx, earlier))

	row, err := store.Conversations().Get(ctx, a, b)
	require.NoError(t, err)
	require.Equal(t, later.ID, row.LastMessageID)
	require.Equal(t, "later", row.LastMessageContent)
	require.Equal(t, int64(1), row.UnreadFor(a))
	require.Equal(t, int64(1), row.UnreadFor(b))

	tie := send(t, store.Messages(), a, b, "tie")
	backdate(t, db, &tie, later.SentAt)
	require.NoError(t, store.Conversations().RecordMessage(ctx, tie))

	row, err = store.Conversations().Get(ctx, a, b)
	require.NoError(t, err)
	require.Equal(t, tie.ID, row.LastMessageID)
}

func TestConversationGetMissing(t *testing.T) {
	db := repotest.Open(t)
	_, err := repository.NewConversationRepository(db).Get(context.Background(), 1, 2)
	require.ErrorIs(t, err, handyhub_errors.ErrNotFound)
}

func TestUpsertAndTruncate(t *testing.T) {
	ctx := context.Background()
	db := repotest.Open(t)
	users := repotest.Users(t, db, "Ana", "Bo", "Cy")
	store := repository.NewStore(db)

	var msgs []message.Message
	msgs = append(msgs, send(t, store.Messages(), users[0].ID, users[1].ID, "1"))
	msgs = append(msgs, send(t, store.Messages(), users[2].ID, users[0].ID, "2"))

	rows := make([]conversation.Conversation, 0)
	for _, c := range conversation.Fold(nil, msgs) {
		rows = append(rows, *c)
	}
	require.NoError(t, store.Conversations().Upsert(ctx, rows))
	require.NoError(t, store.Conversations().Upsert(ctx, rows))

	list, err := store.Conversations().ListForUser(ctx, users[0].ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, conversation.ID(users[0].ID, users[2].ID), list[0].ID)

	require.NoError(t, store.Conversations().Truncate(ctx))
	list, err = store.Conversations().ListForUser(ctx, users[0].ID)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	db := repotest.Open(t)
	users := repotest.Users(t, db, "Ana", "Bo")
	store := repository.NewStore(db)
	boom := errors.New("boom")

	err := store.Transaction(ctx, func(repos repository.Repositories) error {
		m := message.Message{SenderID: users[0].ID, ReceiverID: users[1].ID, Content: "lost"}
		if err := repos.Messages().Create(ctx, &m); err != nil {
			return err
		}
		if err := repos.Conversations().RecordMessage(ctx, m); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	msgs, err := store.Messages().FindBetween(ctx, users[0].ID, users[1].ID)
	require.NoError(t, err)
	require.Empty(t, msgs)

	_, err = store.Conversations().Get(ctx, users[0].ID, users[1].ID)
	require.ErrorIs(t, err, handyhub_errors.ErrNotFound)
}
