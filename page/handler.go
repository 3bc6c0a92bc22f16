package page

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/livelab/live"
)

// rootID is the ID given to the root component of every page.
const rootID = "root"

// ComponentConstructor a func for creating a new root component.
type ComponentConstructor func(ctx context.Context, s *live.Socket) (ComponentLifecycle, error)

// NewHandler creates a new handler for a page made of components. Further
// configs apply after the component wiring.
func NewHandler(construct ComponentConstructor, configs ...live.HandlerConfig) *live.Handler {
	return live.NewHandler(append([]live.HandlerConfig{
		withComponentMount(construct),
		withComponentUnmount(),
		withComponentConnect(),
		withComponentRenderer(),
		withComponentEvents(),
	}, configs...)...)
}

// StartRoot begins the lifecycle of a page's root component, rendering on
// socket s.
func StartRoot(ctx context.Context, s *live.Socket, comp ComponentLifecycle) error {
	if err := comp.register(rootID, newScope(s), comp); err != nil {
		return fmt.Errorf("could not register root component: %w", err)
	}
	if err := comp.Mount(ctx); err != nil {
		comp.unregister()
		return fmt.Errorf("could not mount root component: %w", err)
	}
	return nil
}

// Dispatch routes a scoped event to the component of root's page that
// handles it.
func Dispatch(ctx context.Context, root ComponentLifecycle, t string, p live.Params) error {
	sc := root.base().scope
	if sc == nil {
		return fmt.Errorf("component not started: %w", live.ErrNoEventHandler)
	}
	return sc.dispatch(ctx, t, p)
}

func rootOf(data any) (ComponentLifecycle, error) {
	c, ok := data.(ComponentLifecycle)
	if !ok {
		return nil, fmt.Errorf("root data is not a component")
	}
	return c, nil
}

// withComponentMount set the live.Handler to mount the root component.
func withComponentMount(construct ComponentConstructor) live.HandlerConfig {
	return live.WithMount(func(ctx context.Context, s *live.Socket) (any, error) {
		comp, err := construct(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("could not create root component: %w", err)
		}
		if err := StartRoot(ctx, s, comp); err != nil {
			return nil, err
		}
		return comp, nil
	})
}

// withComponentUnmount stops the root component when its socket goes.
func withComponentUnmount() live.HandlerConfig {
	return live.WithUnmount(func(s *live.Socket) error {
		comp, err := rootOf(s.Assigns())
		if err != nil {
			return err
		}
		return Stop(comp)
	})
}

// withComponentConnect moves the components onto the connected socket.
func withComponentConnect() live.HandlerConfig {
	return func(h *live.Handler) error {
		h.ConnectHandler = func(ctx context.Context, s *live.Socket) error {
			comp, err := rootOf(s.Assigns())
			if err != nil {
				return err
			}
			comp.base().scope.socket = s
			if cc, ok := comp.(ComponentConnect); ok {
				return cc.Connect(ctx)
			}
			return nil
		}
		return nil
	}
}

// withComponentRenderer set the live.Handler to use a root component to render.
func withComponentRenderer() live.HandlerConfig {
	return live.WithRender(func(_ context.Context, data *live.RenderContext) (io.Reader, error) {
		comp, err := rootOf(data.Assigns)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := comp.Render().Render(&buf); err != nil {
			return nil, err
		}
		return &buf, nil
	})
}

// withComponentEvents routes client events to the component that scoped
// them.
func withComponentEvents() live.HandlerConfig {
	return func(h *live.Handler) error {
		h.HandleFallback(func(ctx context.Context, t string, s *live.Socket, p live.Params) (any, error) {
			comp, err := rootOf(s.Assigns())
			if err != nil {
				return nil, err
			}
			if err := Dispatch(ctx, comp, t, p); err != nil {
				return nil, err
			}
			return comp, nil
		})
		return nil
	}
}
