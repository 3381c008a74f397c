package message

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAfterBreaksTiesOnID(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	older := Message{ID: 4, SentAt: at}
	newer := Message{ID: 9, SentAt: at}
	later := Message{ID: 2, SentAt: at.Add(time.Second)}

	require.True(t, newer.After(older))
	require.False(t, older.After(newer))
	require.True(t, later.After(newer))
}

func TestCounterparty(t *testing.T) {
	m := Message{SenderID: 3, ReceiverID: 8}

	require.Equal(t, int64(8), m.Counterparty(3))
	require.Equal(t, int64(3), m.Counterparty(8))
	require.True(t, m.Involves(8))
	require.False(t, m.Involves(5))
}
