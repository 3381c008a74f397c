package websocket

import (
	"context"

	"handyhub/internal/events"
)

// RedisBridge re-broadcasts bus traffic into the local hub, so a push
// published by any instance reaches sockets held by this one.
type RedisBridge struct {
	subscriber events.Subscriber
	hub        *Hub
}

func NewRedisBridge(subscriber events.Subscriber, hub *Hub) *RedisBridge {
	return &RedisBridge{subscriber: subscriber, hub: hub}
}

func (b *RedisBridge) Run(ctx context.Context) error {
	return b.subscriber.Subscribe(ctx, []string{events.BusPrefix + "*"}, func(channel string, payload []byte) {
		if dest, ok := events.DestinationOf(channel); ok {
			b.hub.Broadcast(dest, payload)
		}
	})
}
