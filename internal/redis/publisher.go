package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"handyhub/internal/events"
)

// Publisher pushes envelopes onto the shared bus so every instance can
// deliver them to its own sockets.
type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) Publish(ctx context.Context, destination string, payload []byte) error {
	return p.client.Publish(ctx, events.BusChannel(destination), payload).Err()
}
