package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// PresenceStore keeps one hash per websocket session and one set of session
// ids per user. Both expire unless refreshed, so sessions lost without a
// clean disconnect disappear after the TTL.
type PresenceStore struct {
	client *goredis.Client
	ttl    time.Duration
}

const (
	presenceSessionPrefix = "presence:session:"
	presenceUserPrefix    = "presence:user:"
)

func NewPresenceStore(client *goredis.Client, ttl time.Duration) *PresenceStore {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &PresenceStore{client: client, ttl: ttl}
}

func sessionKey(sessionID string) string {
	return presenceSessionPrefix + sessionID
}

func userKey(userID int64) string {
	return presenceUserPrefix + strconv.FormatInt(userID, 10)
}

// Track stores the session attributes and refreshes both TTLs. It is called
// on connect, on every pong and whenever the session attributes change.
func (p *PresenceStore) Track(ctx context.Context, sessionID string, userID int64, attrs map[string]string) error {
	fields := make(map[string]interface{}, len(attrs)+2)
	for k, v := range attrs {
		fields[k] = v
	}
	fields["userId"] = strconv.FormatInt(userID, 10)
	fields["seenAt"] = time.Now().UTC().Format(time.RFC3339)

	pipe := p.client.TxPipeline()
	pipe.HSet(ctx, sessionKey(sessionID), fields)
	pipe.Expire(ctx, sessionKey(sessionID), p.ttl)
	if userID > 0 {
		pipe.SAdd(ctx, userKey(userID), sessionID)
		pipe.Expire(ctx, userKey(userID), p.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("track session %s: %w", sessionID, err)
	}
	return nil
}

func (p *PresenceStore) Forget(ctx context.Context, sessionID string, userID int64) error {
	pipe := p.client.TxPipeline()
	pipe.Del(ctx, sessionKey(sessionID))
	if userID > 0 {
		pipe.SRem(ctx, userKey(userID), sessionID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("forget session %s: %w", sessionID, err)
	}
	return nil
}

// Session returns the stored attributes of a session, empty when unknown.
func (p *PresenceStore) Session(ctx context.Context, sessionID string) (map[string]string, error) {
	return p.client.HGetAll(ctx, sessionKey(sessionID)).Result()
}

// IsOnline reports whether userID has at least one live session.
func (p *PresenceStore) IsOnline(ctx context.Context, userID int64) (bool, error) {
	n, err := p.client.SCard(ctx, userKey(userID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
