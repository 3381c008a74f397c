package websocket

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session attribute keys.
const (
	AttrUsername       = "username"
	AttrConversationID = "conversationId"
)

// Session is the per-connection key/value context. It lives exactly as long
// as the socket and is handed to presence tracking on every change.
type Session struct {
	ID          string
	UserID      int64
	ConnectedAt time.Time

	mu    sync.RWMutex
	attrs map[string]string
}

func NewSession(userID int64) *Session {
	return &Session{
		ID:          uuid.New().String(),
		UserID:      userID,
		ConnectedAt: time.Now().UTC(),
		attrs:       make(map[string]string),
	}
}

func (s *Session) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.attrs[key]
	return v, ok
}

func (s *Session) Set(key, value string) {
	s.mu.Lock()
	s.attrs[key] = value
	s.mu.Unlock()
}

// Snapshot returns a copy of the attributes.
func (s *Session) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.attrs))
	for k, v := range s.attrs {
		out[k] = v
	}
	return out
}
