package live

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestPubSubSharesBroadcasts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ps := NewPubSub(ctx, NewLocalTransport())
	a := NewHttpHandler(ctx, NewHandler(), WithPubSub(ps, "title"))
	b := NewHttpHandler(ctx, NewHandler(), WithPubSub(ps, "title"))

	sa := NewSocket("a")
	sb := NewSocket("b")
	a.AddSocket(sa)
	b.AddSocket(sb)

	if err := a.Broadcast(EventTitle, "0.5"); err != nil {
		t.Fatal(err)
	}

	for _, s := range []*Socket{sa, sb} {
		select {
		case msg := <-s.Messages():
			if msg.T != EventTitle {
				t.Errorf("socket %s: got event %q", s.ID(), msg.T)
			}
			var v string
			if err := json.Unmarshal(msg.Data, &v); err != nil {
				t.Fatal(err)
			}
			if v != "0.5" {
				t.Errorf("socket %s: got title %q", s.ID(), v)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("socket %s never received the broadcast", s.ID())
		}
	}
}

func TestLocalTransportPublishHonoursContext(t *testing.T) {
	l := NewLocalTransport()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Publish(ctx, "t", Event{T: "x"}); err == nil {
		t.Error("publish without a listener should fail once the context is done")
	}
}
