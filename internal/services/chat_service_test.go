package services_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"handyhub/config"
	"handyhub/internal/domain/message"
	"handyhub/internal/domain/user"
	"handyhub/internal/events"
	"handyhub/internal/repository"
	"handyhub/internal/repository/repotest"
	"handyhub/internal/services"
	handyhub_errors "handyhub/pkg/errors"
	"handyhub/pkg/logger"
)

type push struct {
	event        string
	payload      []byte
	destinations []string
}

type recordingNotifier struct {
	mu     sync.Mutex
	pushes []push
}

func (n *recordingNotifier) Notify(_ context.Context, event string, payload interface{}, destinations ...string) {
	data, _ := json.Marshal(payload)
	n.mu.Lock()
	n.pushes = append(n.pushes, push{event: event, payload: data, destinations: destinations})
	n.mu.Unlock()
}

type fixture struct {
	db       *gorm.DB
	chat     *services.ChatService
	store    *repository.GormStore
	notifier *recordingNotifier
	ana, bo  user.User
	cy       user.User
}

func newFixture(t *testing.T, source string) fixture {
	t.Helper()
	db := repotest.Open(t)
	users := repotest.Users(t, db, "Ana", "Bo", "Cy")
	store := repository.NewStore(db)
	notifier := &recordingNotifier{}
	convs := services.NewConversationService(store, source, logger.NewNop())
	return fixture{
		db:       db,
		chat:     services.NewChatService(store, convs, notifier, logger.NewNop()),
		store:    store,
		notifier: notifier,
		ana:      users[0],
		bo:       users[1],
		cy:       users[2],
	}
}

func (f fixture) send(t *testing.T, from, to user.User, content string) message.View {
	t.Helper()
	v, err := f.chat.Send(context.Background(), services.SendInput{
		SenderID:   from.ID,
		ReceiverID: to.ID,
		Content:    content,
	})
	require.NoError(t, err)
	return v
}

func TestSendStoresAndPushes(t *testing.T) {
	f := newFixture(t, config.ConversationSourceAggregate)

	v := f.send(t, f.ana, f.bo, "hi")

	require.NotZero(t, v.ID)
	require.Equal(t, "Ana", v.SenderName)
	require.Equal(t, "Bo", v.ReceiverName)
	require.Equal(t, message.TypeText, v.Type)
	require.False(t, v.IsRead)

	require.Len(t, f.notifier.pushes, 1)
	p := f.notifier.pushes[0]
	require.Equal(t, events.EventMessageCreated, p.event)
	require.Equal(t, []string{
		events.ConversationTopic(conversationID(f.ana.ID, f.bo.ID)),
		events.UserQueue(f.bo.ID),
	}, p.destinations)

	var pushed message.View
	require.NoError(t, json.Unmarshal(p.payload, &pushed))
	require.Equal(t, v.ID, pushed.ID)
	require.Equal(t, "hi", pushed.Content)
}

func TestSendRejectsBadInput(t *testing.T) {
	f := newFixture(t, config.ConversationSourceAggregate)
	ctx := context.Background()

	cases := []services.SendInput{
		{SenderID: f.ana.ID, ReceiverID: f.bo.ID, Content: "   "},
		{SenderID: f.ana.ID, ReceiverID: f.ana.ID, Content: "me"},
		{SenderID: 0, ReceiverID: f.bo.ID, Content: "x"},
		{SenderID: f.ana.ID, ReceiverID: f.bo.ID, Content: "x", Type: "VIDEO"},
	}
	for _, in := range cases {
		_, err := f.chat.Send(ctx, in)
		require.ErrorIs(t, err, handyhub_errors.ErrInvalidInput, "%+v", in)
	}
	require.Empty(t, f.notifier.pushes)
}

func TestSendUnknownReceiver(t *testing.T) {
	f := newFixture(t, config.ConversationSourceAggregate)

	_, err := f.chat.Send(context.Background(), services.SendInput{
		SenderID: f.ana.ID, ReceiverID: 9999, Content: "hello?",
	})

	require.ErrorIs(t, err, handyhub_errors.ErrNotFound)
	require.Empty(t, f.notifier.pushes)

	msgs, err := f.store.Messages().FindForUser(context.Background(), f.ana.ID)
	require.NoError(t, err)
	require.Empty(t, msgs)
}

func TestListConversationsSingleEntryPerPair(t *testing.T) {
	for _, source := range []string{config.ConversationSourceAggregate, config.ConversationSourceDerived} {
		t.Run(source, func(t *testing.T) {
			f := newFixture(t, source)
			ctx := context.Background()

			f.send(t, f.ana, f.bo, "hi")
			f.send(t, f.bo, f.ana, "hello")

			list, err := f.chat.ListConversations(ctx, f.ana.ID)
			require.NoError(t, err)
			require.Len(t, list, 1)

			s := list[0]
			require.Equal(t, conversationID(f.ana.ID, f.bo.ID), s.ID)
			require.Equal(t, f.bo.ID, s.OtherUserID)
			require.Equal(t, "Bo", s.OtherUserName)
			require.Equal(t, "hello", s.LastMessageText)
			require.Equal(t, "Bo", s.LastMessageSender)
			require.Equal(t, f.bo.ID, s.LastMessageSenderID)
			require.Equal(t, int64(1), s.UnreadCount)
		})
	}
}

func TestConversationSourcesAgree(t *testing.T) {
	f := newFixture(t, config.ConversationSourceAggregate)
	ctx := context.Background()

	f.send(t, f.ana, f.bo, "1")
	f.send(t, f.bo, f.ana, "2")
	f.send(t, f.cy, f.ana, "3")
	f.send(t, f.cy, f.ana, "4")
	f.send(t, f.bo, f.cy, "5")
	require.NoError(t, f.chat.MarkRead(ctx, f.bo.ID, f.ana.ID))
	f.send(t, f.ana, f.cy, "6")

	// Bo's instance clock runs behind: his reply is stored after Ana's
	// message but stamped a minute earlier.
	ahead := message.Message{SenderID: f.ana.ID, ReceiverID: f.bo.ID, Content: "ahead"}
	require.NoError(t, f.store.Messages().Create(ctx, &ahead))
	require.NoError(t, f.store.Conversations().RecordMessage(ctx, ahead))
	behind := message.Message{SenderID: f.bo.ID, ReceiverID: f.ana.ID, Content: "behind"}
	require.NoError(t, f.store.Messages().Create(ctx, &behind))
	behind.SentAt = ahead.SentAt.Add(-time.Minute)
	require.NoError(t, f.db.Model(&message.Message{}).Where("id = ?", behind.ID).
		Update("sent_at", behind.SentAt).Error)
	require.NoError(t, f.store.Conversations().RecordMessage(ctx, behind))

	derived := services.NewChatService(f.store,
		services.NewConversationService(f.store, config.ConversationSourceDerived, logger.NewNop()),
		nil, logger.NewNop())

	for _, u := range []user.User{f.ana, f.bo, f.cy} {
		fromAggregate, err := f.chat.ListConversations(ctx, u.ID)
		require.NoError(t, err)
		fromLog, err := derived.ListConversations(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, fromLog, fromAggregate, u.Name)
	}

	list, err := f.chat.ListConversations(ctx, f.bo.ID)
	require.NoError(t, err)
	require.Equal(t, "ahead", list[0].LastMessageText)
}

func TestListConversationsFailures(t *testing.T) {
	f := newFixture(t, config.ConversationSourceAggregate)
	ctx := context.Background()

	_, err := f.chat.ListConversations(ctx, 4242)
	require.ErrorIs(t, err, handyhub_errors.ErrNotFound)

	list, err := f.chat.ListConversations(ctx, f.cy.ID)
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Empty(t, list)
}

func TestListConversationsStoreFailureYieldsEmpty(t *testing.T) {
	for source, table := range map[string]string{
		config.ConversationSourceAggregate: "conversations",
		config.ConversationSourceDerived:   "messages",
	} {
		t.Run(source, func(t *testing.T) {
			f := newFixture(t, source)
			ctx := context.Background()
			f.send(t, f.ana, f.bo, "hi")

			require.NoError(t, f.db.Migrator().DropTable(table))

			list, err := f.chat.ListConversations(ctx, f.ana.ID)
			require.NoError(t, err)
			require.NotNil(t, list)
			require.Empty(t, list)
		})
	}

	f := newFixture(t, config.ConversationSourceAggregate)
	require.NoError(t, f.db.Migrator().DropTable("users"))
	list, err := f.chat.ListConversations(context.Background(), f.ana.ID)
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Empty(t, list)
}

func TestMarkReadAndUnreadCount(t *testing.T) {
	f := newFixture(t, config.ConversationSourceAggregate)
	ctx := context.Background()

	f.send(t, f.ana, f.bo, "1")
	f.send(t, f.ana, f.bo, "2")
	f.notifier.pushes = nil

	n, err := f.chat.UnreadCount(ctx, f.ana.ID, f.bo.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	require.NoError(t, f.chat.MarkRead(ctx, f.ana.ID, f.bo.ID))
	require.NoError(t, f.chat.MarkRead(ctx, f.ana.ID, f.bo.ID))

	n, err = f.chat.UnreadCount(ctx, f.ana.ID, f.bo.ID)
	require.NoError(t, err)
	require.Zero(t, n)

	list, err := f.chat.ListConversations(ctx, f.bo.ID)
	require.NoError(t, err)
	require.Zero(t, list[0].UnreadCount)

	require.Len(t, f.notifier.pushes, 1)
	require.Equal(t, events.EventMessageRead, f.notifier.pushes[0].event)

	err = f.chat.MarkRead(ctx, f.ana.ID, 4242)
	require.ErrorIs(t, err, handyhub_errors.ErrNotFound)

	_, err = f.chat.UnreadCount(ctx, 4242, f.bo.ID)
	require.ErrorIs(t, err, handyhub_errors.ErrNotFound)
}

func TestListAndRecentMessages(t *testing.T) {
	f := newFixture(t, config.ConversationSourceAggregate)
	ctx := context.Background()

	var ids []int64
	for _, c := range []string{"a", "b", "c"} {
		ids = append(ids, f.send(t, f.ana, f.bo, c).ID)
	}
	f.send(t, f.ana, f.cy, "other")

	all, err := f.chat.ListMessages(ctx, f.bo.ID, f.ana.ID)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "a", all[0].Content)
	require.Equal(t, "Ana", all[0].SenderName)

	recent, err := f.chat.RecentMessages(ctx, f.ana.ID, f.bo.ID, 0, 2)
	require.NoError(t, err)
	require.Equal(t, []int64{ids[2], ids[1]}, []int64{recent[0].ID, recent[1].ID})

	older, err := f.chat.RecentMessages(ctx, f.ana.ID, f.bo.ID, ids[1], 0)
	require.NoError(t, err)
	require.Len(t, older, 1)
	require.Equal(t, ids[0], older[0].ID)

	_, err = f.chat.ListMessages(ctx, f.ana.ID, 4242)
	require.ErrorIs(t, err, handyhub_errors.ErrNotFound)
}

func TestRebuildRestoresAggregate(t *testing.T) {
	f := newFixture(t, config.ConversationSourceAggregate)
	ctx := context.Background()

	f.send(t, f.ana, f.bo, "1")
	f.send(t, f.cy, f.ana, "2")
	f.send(t, f.bo, f.cy, "3")

	before, err := f.chat.ListConversations(ctx, f.ana.ID)
	require.NoError(t, err)

	require.NoError(t, f.store.Conversations().Truncate(ctx))
	emptied, err := f.chat.ListConversations(ctx, f.ana.ID)
	require.NoError(t, err)
	require.Empty(t, emptied)

	convs := services.NewConversationService(f.store, config.ConversationSourceAggregate, logger.NewNop())
	n, err := convs.Rebuild(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	after, err := f.chat.ListConversations(ctx, f.ana.ID)
	require.NoError(t, err)
	require.Equal(t, before, after)
}
