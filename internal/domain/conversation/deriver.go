package conversation

import (
	"sort"

	"github.com/samber/lo"

	"handyhub/internal/domain/message"
)

// Thread is one conversation as seen by a single viewer.
type Thread struct {
	ID             string
	CounterpartyID int64
	Last           message.Message
	Unread         int64
}

// Derive groups every message touching viewer by counterparty and returns
// one thread per counterparty, most recent first. The unread count of a
// thread is the number of its messages addressed to viewer and not yet read.
func Derive(viewer int64, msgs []message.Message) []Thread {
	touching := lo.Filter(msgs, func(m message.Message, _ int) bool {
		return m.Involves(viewer) && m.SenderID != m.ReceiverID
	})
	groups := lo.GroupBy(touching, func(m message.Message) int64 {
		return m.Counterparty(viewer)
	})

	threads := make([]Thread, 0, len(groups))
	for counterparty, group := range groups {
		threads = append(threads, Thread{
			ID:             ID(viewer, counterparty),
			CounterpartyID: counterparty,
			Last: lo.MaxBy(group, func(a, b message.Message) bool {
				return a.After(b)
			}),
			Unread: int64(lo.CountBy(group, func(m message.Message) bool {
				return m.ReceiverID == viewer && !m.IsRead
			})),
		})
	}
	SortThreads(threads)
	return threads
}

// SortThreads orders threads by last message, newest first.
func SortThreads(threads []Thread) {
	sort.SliceStable(threads, func(i, j int) bool {
		return threads[i].Last.After(threads[j].Last)
	})
}

// Fold accumulates messages into per-pair aggregates. acc may be nil.
func Fold(acc map[string]*Conversation, msgs []message.Message) map[string]*Conversation {
	if acc == nil {
		acc = make(map[string]*Conversation)
	}
	for _, m := range msgs {
		if m.SenderID == m.ReceiverID {
			continue
		}
		id := ID(m.SenderID, m.ReceiverID)
		c, ok := acc[id]
		if !ok {
			c = New(m.SenderID, m.ReceiverID)
			acc[id] = c
		}
		c.Apply(m)
	}
	return acc
}
