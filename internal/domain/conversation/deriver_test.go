package conversation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"handyhub/internal/domain/message"
)

var base = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

func msg(id, from, to int64, offset time.Duration, read bool) message.Message {
	return message.Message{
		ID:         id,
		SenderID:   from,
		ReceiverID: to,
		Content:    "m",
		Type:       message.TypeText,
		SentAt:     base.Add(offset),
		IsRead:     read,
	}
}

func TestDeriveSingleExchange(t *testing.T) {
	hi := msg(1, 3, 7, 0, false)
	hi.Content = "hi"
	hello := msg(2, 7, 3, time.Minute, false)
	hello.Content = "hello"

	threads := Derive(3, []message.Message{hi, hello})

	require.Len(t, threads, 1)
	require.Equal(t, "3-7", threads[0].ID)
	require.Equal(t, int64(7), threads[0].CounterpartyID)
	require.Equal(t, "hello", threads[0].Last.Content)
	require.Equal(t, int64(1), threads[0].Unread)

	other := Derive(7, []message.Message{hi, hello})
	require.Len(t, other, 1)
	require.Equal(t, "3-7", other[0].ID)
	require.Equal(t, int64(1), other[0].Unread)
}

func TestDeriveOrdersByLastMessage(t *testing.T) {
	msgs := []message.Message{
		msg(1, 1, 2, 0, true),
		msg(2, 3, 1, time.Hour, false),
		msg(3, 1, 4, 30*time.Minute, false),
		msg(4, 2, 1, 10*time.Minute, false),
		msg(5, 2, 1, 10*time.Minute, false),
	}

	threads := Derive(1, msgs)

	require.Len(t, threads, 3)
	require.Equal(t, []int64{3, 4, 2}, []int64{threads[0].CounterpartyID, threads[1].CounterpartyID, threads[2].CounterpartyID})
	require.Equal(t, int64(5), threads[2].Last.ID)
	require.Equal(t, int64(2), threads[2].Unread)
	require.Equal(t, int64(0), threads[1].Unread)
}

func TestDeriveIgnoresForeignAndSelfMessages(t *testing.T) {
	msgs := []message.Message{
		msg(1, 5, 6, 0, false),
		msg(2, 1, 1, 0, false),
	}

	require.Empty(t, Derive(1, msgs))
}

func TestFoldMatchesDerive(t *testing.T) {
	msgs := []message.Message{
		msg(1, 1, 2, 0, true),
		msg(2, 2, 1, time.Minute, false),
		msg(3, 2, 1, 2*time.Minute, false),
		msg(4, 3, 1, 3*time.Minute, false),
		msg(5, 1, 3, 3*time.Minute, false),
	}

	agg := Fold(nil, msgs)
	require.Len(t, agg, 2)

	threads := make([]Thread, 0, len(agg))
	for _, c := range agg {
		threads = append(threads, c.Thread(1))
	}
	SortThreads(threads)

	derived := Derive(1, msgs)
	require.Len(t, threads, len(derived))
	for i := range derived {
		require.Equal(t, derived[i].ID, threads[i].ID)
		require.Equal(t, derived[i].CounterpartyID, threads[i].CounterpartyID)
		require.Equal(t, derived[i].Last.ID, threads[i].Last.ID)
		require.Equal(t, derived[i].Unread, threads[i].Unread)
	}

	c := agg["1-3"]
	require.Equal(t, int64(5), c.LastMessageID)
	require.Equal(t, int64(1), c.UnreadFor(1))
	require.Equal(t, int64(1), c.UnreadFor(3))
}

func TestSummarize(t *testing.T) {
	th := Thread{ID: "3-7", CounterpartyID: 7, Last: msg(9, 7, 3, 0, false), Unread: 2}

	s := th.Summarize(map[int64]string{3: "Ana", 7: "Bo"})

	require.Equal(t, "Bo", s.OtherUserName)
	require.Equal(t, "Bo", s.LastMessageSender)
	require.Equal(t, int64(7), s.LastMessageSenderID)
	require.Equal(t, int64(2), s.UnreadCount)
	require.Equal(t, base, s.LastMessageTime)
}
