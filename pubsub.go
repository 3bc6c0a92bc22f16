package live

import (
	"context"
	"log/slog"
	"sync"
)

// PubSubTransport carries broadcasts between engines.
type PubSubTransport interface {
	// Publish a message onto the given topic.
	Publish(ctx context.Context, topic string, msg Event) error
	// Listen blocks, handing every published message to p, until ctx is
	// done.
	Listen(ctx context.Context, p *PubSub) error
}

// PubSub fans broadcasts out to every engine subscribed to a topic. With a
// LocalTransport those are the engines in this process; another transport
// could span nodes.
type PubSub struct {
	transport PubSubTransport

	mu      sync.Mutex
	engines map[string][]*Engine
}

// NewPubSub creates a PubSub and starts listening on the transport.
func NewPubSub(ctx context.Context, t PubSubTransport) *PubSub {
	p := &PubSub{
		transport: t,
		engines:   map[string][]*Engine{},
	}
	go func() {
		if err := t.Listen(ctx, p); err != nil {
			slog.Error("pubsub listen error", "err", err)
		}
	}()
	return p
}

// Publish send a message on a topic.
func (p *PubSub) Publish(ctx context.Context, topic string, msg Event) error {
	return p.transport.Publish(ctx, topic, msg)
}

// Receive delivers a message from the transport to the subscribed engines.
func (p *PubSub) Receive(topic string, msg Event) {
	p.mu.Lock()
	engines := append([]*Engine(nil), p.engines[topic]...)
	p.mu.Unlock()
	for _, e := range engines {
		e.sendAll(msg)
	}
}

func (p *PubSub) subscribe(topic string, e *Engine) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.engines[topic] = append(p.engines[topic], e)
}

// WithPubSub routes the engine's broadcasts through p on topic, and
// delivers everything published on topic to the engine's sockets.
func WithPubSub(p *PubSub, topic string) EngineConfig {
	return func(e *Engine) error {
		p.subscribe(topic, e)
		e.BroadcastHandler = func(ctx context.Context, _ *Engine, msg Event) {
			if err := p.Publish(ctx, topic, msg); err != nil {
				slog.Error("could not publish broadcast", "topic", topic, "err", err)
			}
		}
		return nil
	}
}

// TransportMessage a published event and its topic.
type TransportMessage struct {
	Topic string
	Msg   Event
}

// LocalTransport connects engines within one process.
type LocalTransport struct {
	queue chan TransportMessage
}

// NewLocalTransport create a new LocalTransport.
func NewLocalTransport() *LocalTransport {
	return &LocalTransport{
		queue: make(chan TransportMessage),
	}
}

// Publish blocks until the listener takes the message or ctx is done.
func (l *LocalTransport) Publish(ctx context.Context, topic string, msg Event) error {
	select {
	case l.queue <- TransportMessage{Topic: topic, Msg: msg}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Listen listen for new published messages.
func (l *LocalTransport) Listen(ctx context.Context, p *PubSub) error {
	for {
		select {
		case msg := <-l.queue:
			p.Receive(msg.Topic, msg.Msg)
		case <-ctx.Done():
			return nil
		}
	}
}
