package live

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// HandlerConfig applies config to a handler.
type HandlerConfig func(h *Handler) error

// MountHandler the func that is called by a handler to gather data to
// be rendered in a template. This is called once per socket, on the first
// GET or when a websocket connects without a preceding page load.
type MountHandler func(ctx context.Context, c *Socket) (any, error)

// UnmountHandler the func that is called by a handler to report that a
// connection is closed or its state went stale. This is called once per
// mount.
type UnmountHandler func(c *Socket) error

// ConnectHandler is called once a websocket has connected and the socket has
// its data, before the first render over the websocket.
type ConnectHandler func(ctx context.Context, c *Socket) error

// RenderHandler the func that is called to render the current state of the
// data for the socket.
type RenderHandler func(ctx context.Context, rc *RenderContext) (io.Reader, error)

// ErrorHandler if an error occurs during the mount and render cycle
// a handler of this type will be called.
type ErrorHandler func(ctx context.Context, err error)

// EventHandler a function to handle events, returns the data that should
// be set to the socket after handling.
type EventHandler func(context.Context, *Socket, Params) (any, error)

// FallbackHandler handles a client event of type t that has no handler of
// its own.
type FallbackHandler func(ctx context.Context, t string, s *Socket, p Params) (any, error)

// Handler contains the developer defined logic of a live page.
type Handler struct {
	// MountHandler a user should provide the mount function. This is what
	// is called on initial GET request. Data to render the handler should
	// be fetched here and returned.
	MountHandler MountHandler
	// UnmountHandler used to track socket disconnects.
	UnmountHandler UnmountHandler
	// ConnectHandler called when the websocket is ready.
	ConnectHandler ConnectHandler
	// RenderHandler is called to generate the HTML of a Socket.
	RenderHandler RenderHandler
	// ErrorHandler is called when an error occurs during the mount and render
	// stages of the handler lifecycle.
	ErrorHandler ErrorHandler

	// eventHandlers the map of client event handlers.
	eventHandlers map[string]EventHandler
	// fallbackHandler handles client events with no specific handler.
	fallbackHandler FallbackHandler
}

// NewHandler creates a new live handler.
func NewHandler(configs ...HandlerConfig) *Handler {
	h := &Handler{
		eventHandlers: make(map[string]EventHandler),
		MountHandler: func(ctx context.Context, s *Socket) (any, error) {
			return nil, nil
		},
		UnmountHandler: func(s *Socket) error {
			return nil
		},
		ConnectHandler: func(ctx context.Context, s *Socket) error {
			return nil
		},
		RenderHandler: func(ctx context.Context, rc *RenderContext) (io.Reader, error) {
			return nil, ErrNoRenderer
		},
		ErrorHandler: func(ctx context.Context, err error) {
			slog.Error("live handler error", "err", err)
			w := Writer(ctx)
			if w != nil {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(err.Error()))
			}
		},
	}
	for _, conf := range configs {
		if err := conf(h); err != nil {
			slog.Warn("could not apply config to handler", "err", err)
		}
	}
	return h
}

// WithMount sets the mount handler.
func WithMount(fn MountHandler) HandlerConfig {
	return func(h *Handler) error {
		h.MountHandler = fn
		return nil
	}
}

// WithUnmount sets the unmount handler.
func WithUnmount(fn UnmountHandler) HandlerConfig {
	return func(h *Handler) error {
		h.UnmountHandler = fn
		return nil
	}
}

// WithRender sets the render handler.
func WithRender(fn RenderHandler) HandlerConfig {
	return func(h *Handler) error {
		if fn == nil {
			return ErrNoRenderer
		}
		h.RenderHandler = fn
		return nil
	}
}

// HandleEvent handles an event that comes from the client. For example a click
// from `live-click="myevent"`.
func (h *Handler) HandleEvent(t string, handler EventHandler) {
	h.eventHandlers[t] = handler
}

// HandleFallback handles any client event which has no handler of its own.
func (h *Handler) HandleFallback(handler FallbackHandler) {
	h.fallbackHandler = handler
}

func (h *Handler) getEvent(t string) (EventHandler, error) {
	handler, ok := h.eventHandlers[t]
	if ok {
		return handler, nil
	}
	if h.fallbackHandler != nil {
		return func(ctx context.Context, s *Socket, p Params) (any, error) {
			return h.fallbackHandler(ctx, t, s, p)
		}, nil
	}
	return nil, fmt.Errorf("no event handler for %s: %w", t, ErrNoEventHandler)
}
