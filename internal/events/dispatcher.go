package events

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"handyhub/pkg/logger"
)

const DefaultQueueSize = 1024

// Dispatcher fans envelopes out to a Publisher from a single background
// worker. Producers never wait: when the queue is full the envelope is
// dropped. Delivery failures are logged and forgotten.
type Dispatcher struct {
	publisher Publisher
	queue     chan Envelope
	log       *logger.Logger
}

func NewDispatcher(publisher Publisher, size int, log *logger.Logger) *Dispatcher {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Dispatcher{
		publisher: publisher,
		queue:     make(chan Envelope, size),
		log:       log.Named("dispatcher"),
	}
}

// Dispatch enqueues env and reports whether it was accepted.
func (d *Dispatcher) Dispatch(env Envelope) bool {
	select {
	case d.queue <- env:
		return true
	default:
		d.log.Logger.Warn("fan-out queue full, dropping push",
			zap.String("event", env.Event),
			zap.String("destination", env.Destination))
		return false
	}
}

// Notify wraps payload once per destination and enqueues the envelopes in
// order.
func (d *Dispatcher) Notify(ctx context.Context, event string, payload interface{}, destinations ...string) {
	for _, dest := range destinations {
		env, err := NewEnvelope(event, dest, payload)
		if err != nil {
			d.log.Ctx(ctx).Error("build envelope", zap.String("event", event), zap.Error(err))
			return
		}
		d.Dispatch(env)
	}
}

// Pending returns the number of queued envelopes.
func (d *Dispatcher) Pending() int {
	return len(d.queue)
}

// Run publishes queued envelopes until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-d.queue:
			d.publish(ctx, env)
		}
	}
}

func (d *Dispatcher) publish(ctx context.Context, env Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		d.log.Logger.Error("encode envelope", zap.String("event", env.Event), zap.Error(err))
		return
	}
	if err := d.publisher.Publish(ctx, env.Destination, data); err != nil {
		d.log.Logger.Warn("push failed",
			zap.String("event", env.Event),
			zap.String("destination", env.Destination),
			zap.Error(err))
	}
}
