package live

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/coder/websocket"
	"golang.org/x/net/html"
)

const (
	// maxMessageBufferSize the maximum number of messages per socket in a buffer.
	maxMessageBufferSize = 16
)

// SocketID identifies a socket.
type SocketID string

// Socket describes a connected user, and the state that they
// are in.
type Socket struct {
	id SocketID

	connected     atomic.Bool
	currentRender *html.Node
	msgs          chan Event
	closeSlow     func()

	data   any
	dataMu sync.Mutex

	// eventMu serialises everything that touches the assigned data.
	eventMu sync.Mutex
}

// NewSocket creates a new socket. An empty ID generates one.
func NewSocket(ID SocketID) *Socket {
	if ID == "" {
		ID = SocketID(NewID())
	}
	return &Socket{
		id:   ID,
		msgs: make(chan Event, maxMessageBufferSize),
	}
}

// ID return an ID for this socket.
func (s *Socket) ID() SocketID {
	return s.id
}

// Assigns returns the data currently assigned to this
// socket.
func (s *Socket) Assigns() any {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	return s.data
}

// Assign set data to this socket. This will happen automatically
// if you return data from an `EventHandler`. Nil is ignored.
func (s *Socket) Assign(data any) {
	if data == nil {
		return
	}
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	s.data = data
}

// Connected returns if this socket is connected via the websocket.
func (s *Socket) Connected() bool {
	return s.connected.Load()
}

// Send an event to this socket's client, to be handled there. Events
// sent before the socket connects are dropped once the buffer is full.
func (s *Socket) Send(event string, data any, options ...EventConfig) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("could not encode data for send: %w", err)
	}
	msg := Event{T: event, Data: payload}
	for _, o := range options {
		if err := o(&msg); err != nil {
			return fmt.Errorf("could not configure event: %w", err)
		}
	}
	select {
	case s.msgs <- msg:
	default:
		if s.closeSlow != nil && s.Connected() {
			go s.closeSlow()
		}
	}
	return nil
}

// LatestRender return the latest render that this socket generated.
func (s *Socket) LatestRender() *html.Node {
	return s.currentRender
}

// UpdateRender set the latest render.
func (s *Socket) UpdateRender(render *html.Node) {
	s.currentRender = render
}

// Messages returns the channel of events on this socket.
func (s *Socket) Messages() chan Event {
	return s.msgs
}

func (s *Socket) assignWS(c *websocket.Conn) {
	s.closeSlow = func() {
		slog.Warn("socket too slow, closing", "socket", s.id)
		c.Close(websocket.StatusPolicyViolation, "connection too slow to keep up with messages")
	}
	s.connected.Store(true)
}
