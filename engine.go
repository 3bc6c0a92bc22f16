package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/livelab/live/title"
	"golang.org/x/time/rate"
)

// EngineConfig applies configuration to an engine.
type EngineConfig func(e *Engine) error

// WithSessionStore set the store which links a page load to its websocket.
func WithSessionStore(store HttpSessionStore) EngineConfig {
	return func(e *Engine) error {
		if store == nil {
			return errors.New("nil session store")
		}
		e.sessionStore = store
		return nil
	}
}

// WithStateTTL set how long a rendered page waits for its websocket before
// its state is unmounted.
func WithStateTTL(ttl time.Duration) EngineConfig {
	return func(e *Engine) error {
		if ttl <= 0 {
			return fmt.Errorf("state ttl must be positive, got %s", ttl)
		}
		e.stateTTL = ttl
		return nil
	}
}

// WithWebsocketMaxMessageSize set the read limit of the websocket.
func WithWebsocketMaxMessageSize(n int64) EngineConfig {
	return func(e *Engine) error {
		n = max(n, -1)
		e.MaxMessageSize = n
		return nil
	}
}

// WithBroadcastLimit set the rate at which broadcasts are sent.
func WithBroadcastLimit(every time.Duration, burst int) EngineConfig {
	return func(e *Engine) error {
		e.BroadcastLimiter = rate.NewLimiter(rate.Every(every), burst)
		return nil
	}
}

// WithTitle keeps every client's document title in step with d.
func WithTitle(d *title.Display) EngineConfig {
	return func(e *Engine) error {
		e.title = d
		return nil
	}
}

// BroadcastHandler a way for processes to communicate.
type BroadcastHandler func(ctx context.Context, e *Engine, msg Event)

// Engine handles live inner workings.
type Engine struct {
	// Handler implements all the developer defined logic.
	Handler *Handler

	// BroadcastLimiter limit broadcast ratehandler.
	BroadcastLimiter *rate.Limiter
	// BroadcastHandler handle a broadcast.
	BroadcastHandler BroadcastHandler

	// socket handling channels.
	addSocketC      chan engineAddSocket
	deleteSocketC   chan engineDeleteSocket
	iterateSocketsC chan engineIterateSockets
	broadcastC      chan Event

	// IgnoreFaviconRequest setting to ignore requests for /favicon.ico.
	IgnoreFaviconRequest bool

	// MaxMessageSize is the maximum size of websocket messages before they are rejected. Defaults to 32K (32768). Can be set to -1 to disable.
	MaxMessageSize int64

	socketStateStore SocketStateStore
	sessionStore     HttpSessionStore
	stateTTL         time.Duration
	title            *title.Display

	// ctx bounds the engine's goroutines.
	ctx context.Context
}

type engineAddSocket struct {
	Socket *Socket
	resp   chan struct{}
}

type engineDeleteSocket struct {
	ID   SocketID
	resp chan struct{}
}

type engineIterateSockets struct {
	resp chan []*Socket
}

func (e *Engine) operate(ctx context.Context) {
	socketMap := map[SocketID]*Socket{}
	for {
		select {
		case op := <-e.addSocketC:
			socketMap[op.Socket.ID()] = op.Socket
			op.resp <- struct{}{}
		case op := <-e.deleteSocketC:
			delete(socketMap, op.ID)
			op.resp <- struct{}{}
		case op := <-e.iterateSocketsC:
			sockets := make([]*Socket, 0, len(socketMap))
			for _, s := range socketMap {
				sockets = append(sockets, s)
			}
			op.resp <- sockets
		case <-ctx.Done():
			return
		}
	}
}

// broadcaster sends queued broadcasts in order, no faster than the limiter
// allows.
func (e *Engine) broadcaster(ctx context.Context) {
	for {
		select {
		case ev := <-e.broadcastC:
			if err := e.BroadcastLimiter.Wait(ctx); err != nil {
				return
			}
			e.BroadcastHandler(ctx, e, ev)
		case <-ctx.Done():
			return
		}
	}
}

// NewHttpHandler serve the handler.
func NewHttpHandler(ctx context.Context, h *Handler, configs ...EngineConfig) *Engine {
	e := &Engine{
		BroadcastLimiter: rate.NewLimiter(rate.Every(time.Millisecond*100), 8),
		BroadcastHandler: func(ctx context.Context, e *Engine, msg Event) {
			e.sendAll(msg)
		},
		IgnoreFaviconRequest: true,
		MaxMessageSize:       32768,
		Handler:              h,
		addSocketC:           make(chan engineAddSocket),
		deleteSocketC:        make(chan engineDeleteSocket),
		iterateSocketsC:      make(chan engineIterateSockets),
		broadcastC:           make(chan Event, 64),
		stateTTL:             30 * time.Second,
		ctx:                  ctx,
	}
	for _, conf := range configs {
		if err := conf(e); err != nil {
			slog.Warn(fmt.Sprintf("could not apply config to engine: %s", err))
		}
	}
	e.socketStateStore = NewMemorySocketStateStore(ctx, WithEvict(e.evict))
	if e.sessionStore == nil {
		e.sessionStore = NewCookieStore("_live", []byte(NewID()))
	}
	if e.title != nil {
		unsubscribe := e.title.Subscribe(func(v string) {
			e.Broadcast(EventTitle, v)
		})
		context.AfterFunc(ctx, unsubscribe)
	}
	go e.operate(ctx)
	go e.broadcaster(ctx)
	return e
}

// Broadcast queue a message for all sockets connected to this engine. It
// fails once the engine's context is done.
func (e *Engine) Broadcast(event string, data any) error {
	select {
	case e.broadcastC <- Event{T: event, Payload: data}:
		return nil
	case <-e.ctx.Done():
		return e.ctx.Err()
	}
}

// sendAll sends a message to every connected client.
func (e *Engine) sendAll(msg Event) {
	for _, s := range e.sockets() {
		if err := s.Send(msg.T, msg.Payload); err != nil {
			slog.Error("broadcast send error", "socket", s.ID(), "err", err)
		}
	}
}

// AddSocket add a socket to the engine.
func (e *Engine) AddSocket(sock *Socket) {
	op := engineAddSocket{
		Socket: sock,
		resp:   make(chan struct{}),
	}
	defer close(op.resp)
	e.addSocketC <- op
	<-op.resp
}

// DeleteSocket remove a socket from the engine and unmount it.
func (e *Engine) DeleteSocket(sock *Socket) {
	op := engineDeleteSocket{
		ID:   sock.ID(),
		resp: make(chan struct{}),
	}
	defer close(op.resp)
	e.deleteSocketC <- op
	<-op.resp

	sock.eventMu.Lock()
	defer sock.eventMu.Unlock()
	if err := e.Handler.UnmountHandler(sock); err != nil {
		slog.Error("socket unmount error", "err", err)
	}
	e.socketStateStore.Delete(sock.ID())
}

func (e *Engine) sockets() []*Socket {
	op := engineIterateSockets{
		resp: make(chan []*Socket, 1),
	}
	e.iterateSocketsC <- op
	return <-op.resp
}

// evict unmounts state whose page never connected.
func (e *Engine) evict(ID SocketID, state SocketState) {
	sock := NewSocket(ID)
	sock.Assign(state.Data)
	if err := e.Handler.UnmountHandler(sock); err != nil {
		slog.Error("stale socket unmount error", "socket", ID, "err", err)
	}
}

// CallEvent route an event to the correct handler.
func (e *Engine) CallEvent(ctx context.Context, t string, sock *Socket, msg Event) error {
	handler, err := e.Handler.getEvent(t)
	if err != nil {
		return err
	}

	params, err := msg.Params()
	if err != nil {
		return fmt.Errorf("received message and could not extract params: %w", err)
	}

	data, err := handler(ctx, sock, params)
	if err != nil {
		return err
	}
	sock.Assign(data)

	return nil
}

// ServeHTTP serves this handler.
func (e *Engine) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/favicon.ico" {
		if e.IgnoreFaviconRequest {
			w.WriteHeader(http.StatusNotFound)
			return
		}
	}

	// Check if we are going to upgrade to a websocket.
	upgrade := slices.Contains(r.Header["Upgrade"], "websocket")

	ctx := httpContext(w, r)

	if !upgrade {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		e.get(ctx, w, r)
		return
	}

	// Upgrade to the websocket version.
	e.serveWS(ctx, w, r)
}

// get renderer.
func (e *Engine) get(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	sock := NewSocket("")

	// Run mount, this generates the state for the page we are on.
	data, err := e.Handler.MountHandler(ctx, sock)
	if err != nil {
		e.Handler.ErrorHandler(ctx, err)
		return
	}
	sock.Assign(data)

	// Render the HTML to display the page.
	render, err := RenderSocket(ctx, e, sock)
	if err != nil {
		e.unmountFailed(sock)
		e.Handler.ErrorHandler(ctx, err)
		return
	}
	rendered, err := renderBytes(render)
	if err != nil {
		e.unmountFailed(sock)
		e.Handler.ErrorHandler(ctx, err)
		return
	}

	// Keep the mounted data for the websocket that follows.
	if err := e.socketStateStore.Set(sock.ID(), SocketState{Render: rendered, Data: sock.Assigns()}, e.stateTTL); err != nil {
		e.unmountFailed(sock)
		e.Handler.ErrorHandler(ctx, err)
		return
	}
	if err := e.sessionStore.Save(w, r, Session{ID: string(sock.ID())}); err != nil {
		e.Handler.ErrorHandler(ctx, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(rendered)
}

func (e *Engine) unmountFailed(sock *Socket) {
	if err := e.Handler.UnmountHandler(sock); err != nil {
		slog.Error("socket unmount error", "err", err)
	}
}

// serveWS serve a websocket request to the handler.
func (e *Engine) serveWS(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	opts := websocket.AcceptOptions{}
	if strings.Contains(r.UserAgent(), "Safari") {
		opts.CompressionMode = websocket.CompressionDisabled
	}

	c, err := websocket.Accept(w, r, &opts)
	if err != nil {
		slog.Error("ws accept", "err", err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "")
	c.SetReadLimit(e.MaxMessageSize)
	writeTimeout(ctx, time.Second*5, c, Event{T: EventConnect})
	{
		err := e._serveWS(ctx, r, c)
		if errors.Is(err, context.Canceled) {
			return
		}
		switch websocket.CloseStatus(err) {
		case websocket.StatusNormalClosure:
			return
		case websocket.StatusGoingAway:
			return
		case -1:
			if err != nil {
				slog.Error("ws closed", "err", err)
			}
			return
		default:
			slog.Error("ws closed", "err", fmt.Errorf("ws closed with status (%d): %w", websocket.CloseStatus(err), err))
			return
		}
	}
}

// connectSocket builds the socket for a websocket connection. The state
// its page load left behind is claimed at most once; without it the page
// is mounted from scratch under a new ID.
func (e *Engine) connectSocket(ctx context.Context, r *http.Request) (*Socket, error) {
	session, err := e.sessionStore.Get(r)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	state, err := e.socketStateStore.Claim(SocketID(session.ID))
	switch {
	case err == nil:
		sock := NewSocket(SocketID(session.ID))
		sock.Assign(state.Data)
		render, err := parseRender(state.Render)
		if err != nil {
			e.unmountFailed(sock)
			return nil, err
		}
		sock.UpdateRender(render)
		return sock, nil
	case errors.Is(err, ErrNoState):
		sock := NewSocket("")
		data, err := e.Handler.MountHandler(ctx, sock)
		if err != nil {
			return nil, fmt.Errorf("socket mount error: %w", err)
		}
		sock.Assign(data)
		return sock, nil
	default:
		return nil, fmt.Errorf("socket state: %w", err)
	}
}

// _serveWS implement the logic for a web socket connection.
func (e *Engine) _serveWS(ctx context.Context, r *http.Request, c *websocket.Conn) error {
	sock, err := e.connectSocket(ctx, r)
	if err != nil {
		return fmt.Errorf("failed precondition: %w", err)
	}
	sock.assignWS(c)
	e.AddSocket(sock)
	defer e.DeleteSocket(sock)

	// Read errors end the connection.
	readErrors := make(chan error, 1)

	// Connect, then handle events coming from the websocket connection.
	go func() {
		if err := e.connected(ctx, sock); err != nil {
			readErrors <- err
			return
		}
		for {
			t, d, err := c.Read(ctx)
			if err != nil {
				readErrors <- err
				return
			}
			switch t {
			case websocket.MessageText:
				var m Event
				if err := json.Unmarshal(d, &m); err != nil {
					slog.Error("malformed event", "err", err)
					continue
				}
				e.handleClientEvent(ctx, sock, m)
			case websocket.MessageBinary:
				slog.Warn("binary messages unhandled")
			}
		}
	}()

	// Send events to the websocket connection.
	for {
		select {
		case msg := <-sock.msgs:
			if err := writeTimeout(ctx, time.Second*5, c, msg); err != nil {
				return fmt.Errorf("writing to socket error: %w", err)
			}
		case err := <-readErrors:
			return err
		case <-ctx.Done():
			return nil
		}
	}
}

// connected runs the connect handler and the first websocket render.
func (e *Engine) connected(ctx context.Context, sock *Socket) error {
	sock.eventMu.Lock()
	defer sock.eventMu.Unlock()

	if e.title != nil {
		sock.Send(EventTitle, e.title.Get())
	}
	if err := e.Handler.ConnectHandler(ctx, sock); err != nil {
		return fmt.Errorf("socket connect error: %w", err)
	}
	render, err := RenderSocket(ctx, e, sock)
	if err != nil {
		return fmt.Errorf("socket render error: %w", err)
	}
	sock.UpdateRender(render)
	return nil
}

// handleClientEvent runs a client event, renders and acknowledges it.
// Handler errors are returned to the client ahead of the ack.
func (e *Engine) handleClientEvent(ctx context.Context, sock *Socket, m Event) {
	sock.eventMu.Lock()
	defer sock.eventMu.Unlock()

	err := e.CallEvent(ctx, m.T, sock, m)
	switch {
	case err == nil:
	case errors.Is(err, ErrNoEventHandler):
		slog.Error("event error", "event", m.T, "err", err)
	default:
		if serr := sock.Send(EventError, ErrorEvent{Source: m, Err: err.Error()}); serr != nil {
			slog.Error("socket send error", "err", serr)
		}
	}

	render, err := RenderSocket(ctx, e, sock)
	if err != nil {
		slog.Error("socket render error", "err", err)
	} else {
		sock.UpdateRender(render)
	}
	if err := sock.Send(EventAck, nil, WithID(m.ID)); err != nil {
		slog.Error("socket send error", "err", err)
	}
}

func writeTimeout(ctx context.Context, timeout time.Duration, c *websocket.Conn, msg Event) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	data, err := json.Marshal(&msg)
	if err != nil {
		return fmt.Errorf("failed writeTimeout: %w", err)
	}

	return c.Write(ctx, websocket.MessageText, data)
}
