package websocket

import (
	"context"
	"sync"
)

// PresenceTracker records which sessions are connected. Tracking is best
// effort: callers log failures and carry on.
type PresenceTracker interface {
	Track(ctx context.Context, sessionID string, userID int64, attrs map[string]string) error
	Forget(ctx context.Context, sessionID string, userID int64) error
	IsOnline(ctx context.Context, userID int64) (bool, error)
}

type presenceEntry struct {
	userID int64
	attrs  map[string]string
}

// MemoryPresence is the single-instance tracker used when Redis is off.
type MemoryPresence struct {
	mu       sync.RWMutex
	sessions map[string]presenceEntry
}

func NewMemoryPresence() *MemoryPresence {
	return &MemoryPresence{sessions: make(map[string]presenceEntry)}
}

func (p *MemoryPresence) Track(_ context.Context, sessionID string, userID int64, attrs map[string]string) error {
	copied := make(map[string]string, len(attrs))
	for k, v := range attrs {
		copied[k] = v
	}
	p.mu.Lock()
	p.sessions[sessionID] = presenceEntry{userID: userID, attrs: copied}
	p.mu.Unlock()
	return nil
}

func (p *MemoryPresence) Forget(_ context.Context, sessionID string, _ int64) error {
	p.mu.Lock()
	delete(p.sessions, sessionID)
	p.mu.Unlock()
	return nil
}

func (p *MemoryPresence) IsOnline(_ context.Context, userID int64) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, e := range p.sessions {
		if e.userID == userID {
			return true, nil
		}
	}
	return false, nil
}

// Attributes returns what was last tracked for a session.
func (p *MemoryPresence) Attributes(sessionID string) (map[string]string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.sessions[sessionID]
	return e.attrs, ok
}
