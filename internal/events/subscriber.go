package events

import "context"

//go:generate mockgen -destination=mocks/publisher_mock.go -package=mocks handyhub/internal/events Publisher

// Publisher delivers an encoded envelope to one destination.
type Publisher interface {
	Publish(ctx context.Context, destination string, payload []byte) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, channels []string, handler func(channel string, payload []byte)) error
}
