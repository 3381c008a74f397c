package websocket

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"handyhub/pkg/logger"
)

type opKind int

const (
	opRegister opKind = iota
	opUnregister
	opSubscribe
	opUnsubscribe
)

// hubOp is a membership change. Ops are applied in the order they were
// queued so a client never outlives its own unregister.
type hubOp struct {
	kind    opKind
	client  *Client
	channel string
}

// Hub manages WebSocket client connections and destination subscriptions.
// It is the local events.Publisher.
type Hub struct {
	mu sync.RWMutex

	// clients maps client ID to client (for cleanup)
	clients map[string]*Client

	// channels maps destination to set of clients subscribed to it
	channels map[string]map[*Client]struct{}

	ops  chan hubOp
	done chan struct{}
	log  *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.NewNop()
	}
	return &Hub{
		clients:  make(map[string]*Client),
		channels: make(map[string]map[*Client]struct{}),
		ops:      make(chan hubOp, 512),
		done:     make(chan struct{}),
		log:      log.Named("hub"),
	}
}

// Run applies membership changes until ctx ends, then closes every
// connection it still holds.
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()
	for {
		select {
		case <-ctx.Done():
			return
		case op := <-h.ops:
			h.apply(op)
		}
	}
}

func (h *Hub) enqueue(op hubOp) {
	select {
	case h.ops <- op:
	case <-h.done:
	}
}

func (h *Hub) Register(client *Client) {
	h.enqueue(hubOp{kind: opRegister, client: client})
}

func (h *Hub) Unregister(client *Client) {
	h.enqueue(hubOp{kind: opUnregister, client: client})
}

func (h *Hub) Subscribe(client *Client, channel string) {
	h.enqueue(hubOp{kind: opSubscribe, client: client, channel: channel})
}

func (h *Hub) Unsubscribe(client *Client, channel string) {
	h.enqueue(hubOp{kind: opUnsubscribe, client: client, channel: channel})
}

// Publish delivers payload to every local subscriber of destination.
func (h *Hub) Publish(_ context.Context, destination string, payload []byte) error {
	h.Broadcast(destination, payload)
	return nil
}

// Broadcast sends a message to all clients subscribed to a destination and
// returns how many accepted it.
func (h *Hub) Broadcast(channel string, payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for c := range h.channels[channel] {
		if c.SendMessage(payload) {
			delivered++
			continue
		}
		h.log.Logger.Warn("client buffer full, dropping frame",
			zap.String("client_id", c.ID),
			zap.String("destination", channel))
	}
	return delivered
}

func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) GetChannelSubscriberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

func (h *Hub) apply(op hubOp) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch op.kind {
	case opRegister:
		h.clients[op.client.ID] = op.client
	case opUnregister:
		h.removeClient(op.client)
	case opSubscribe:
		// late subscribe for a client that is already gone
		if h.clients[op.client.ID] != op.client {
			return
		}
		if _, ok := h.channels[op.channel]; !ok {
			h.channels[op.channel] = make(map[*Client]struct{})
		}
		h.channels[op.channel][op.client] = struct{}{}
		op.client.subscribe(op.channel)
	case opUnsubscribe:
		h.dropSubscription(op.client, op.channel)
		op.client.unsubscribe(op.channel)
	}
}

// removeClient removes a client and all its subscriptions. Callers hold mu.
func (h *Hub) removeClient(client *Client) {
	if h.clients[client.ID] != client {
		return
	}
	for _, channel := range client.GetChannels() {
		h.dropSubscription(client, channel)
	}
	delete(h.clients, client.ID)
	close(client.Send)
}

func (h *Hub) dropSubscription(client *Client, channel string) {
	if subscribers, ok := h.channels[channel]; ok {
		delete(subscribers, client)
		if len(subscribers) == 0 {
			delete(h.channels, channel)
		}
	}
}

func (h *Hub) shutdown() {
	close(h.done)
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients {
		c.close()
	}
}
