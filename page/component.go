package page

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/livelab/live"
	g "github.com/maragudk/gomponents"
)

// EventHandler for a component, only needs the params as the event is scoped to both the socket and the component
// itself.
type EventHandler func(ctx context.Context, p live.Params) error

// ComponentMount describes the needed function for mounting a component.
type ComponentMount interface {
	Mount(context.Context) error
}

// ComponentUnmount describes the needed function for unmounting a component.
type ComponentUnmount interface {
	Unmount() error
}

// ComponentConnect is implemented by root components that want to know when
// the websocket connects.
type ComponentConnect interface {
	Connect(context.Context) error
}

// ComponentRender describes the needed functions for rendering a component.
type ComponentRender interface {
	Render() g.Node
	Event(string) string
}

// ComponentLifecycle describes all that is needed to describe a component.
type ComponentLifecycle interface {
	isComponent
	componentRegister
	ComponentMount
	ComponentUnmount
	ComponentRender
}

type componentRegister interface {
	register(ID string, sc *scope, comp any) error
	unregister()
}

type isComponent interface {
	_isComponent()
	base() *Component
}

// scope is shared by a root component and all of its children. It holds the
// socket they render on and the events they handle.
type scope struct {
	socket *live.Socket
	events map[string]EventHandler
}

func newScope(s *live.Socket) *scope {
	return &scope{
		socket: s,
		events: map[string]EventHandler{},
	}
}

func (sc *scope) dispatch(ctx context.Context, t string, p live.Params) error {
	handler, ok := sc.events[t]
	if !ok {
		return fmt.Errorf("no component handler for %s: %w", t, live.ErrNoEventHandler)
	}
	return handler(ctx, p)
}

// Component is a self contained component on the page. Components compose
// an interface out of smaller pieces, each with its own events and render.
//
// Remember to use a unique ID and use the Event function which scopes the event-name
// to trigger the event in the right component.
type Component struct {
	// ID identifies the component on the page. It must be unique amongst
	// the components of a page.
	ID string

	scope *scope
}

func (c *Component) _isComponent() {}

func (c *Component) base() *Component {
	return c
}

// Socket the socket this component renders on. It changes once, when the
// page's websocket connects.
func (c *Component) Socket() *live.Socket {
	if c.scope == nil {
		return nil
	}
	return c.scope.socket
}

// Mount a default component mount function.
func (c *Component) Mount(ctx context.Context) error {
	return nil
}

// Unmount a default component unmount function.
func (c *Component) Unmount() error {
	return nil
}

// Render a default component render function.
func (c *Component) Render() g.Node {
	return g.Group(nil)
}

// Event scopes an event string so that it applies to this instance of this component
// only.
func (c *Component) Event(event string) string {
	return c.ID + "--" + event
}

// HandleEvent handles a component event sent from a connected socket.
func (c *Component) HandleEvent(event string, handler EventHandler) {
	c.scope.events[c.Event(event)] = handler
}

var (
	compMethodDetect = regexp.MustCompile(`^On[A-Z]`)
	compMethodSplit  = regexp.MustCompile(`[A-Z][^A-Z]*`)

	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	paramsType  = reflect.TypeOf(live.Params{})
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// register scopes the component and handles an event for every method of
// the form On<Name>(context.Context, live.Params) error. OnRandomizeNumber
// handles "randomize-number".
func (c *Component) register(ID string, sc *scope, t any) error {
	if ID == "" {
		return errors.New("component ID is empty")
	}
	c.ID = ID
	c.scope = sc

	ty := reflect.TypeOf(t)
	va := reflect.ValueOf(t)
	for i := 0; i < va.NumMethod(); i++ {
		method := ty.Method(i)
		if !compMethodDetect.MatchString(method.Name) {
			continue
		}
		fn := va.Method(i)
		if !isEventMethod(fn.Type()) {
			continue
		}
		parts := compMethodSplit.FindAllString(method.Name, -1)
		if len(parts) < 2 {
			continue
		}
		c.HandleEvent(eventName(parts), func(ctx context.Context, p live.Params) error {
			res := fn.Call([]reflect.Value{reflect.ValueOf(ctx), reflect.ValueOf(p)})
			err, _ := res[0].Interface().(error)
			return err
		})
	}
	return nil
}

// unregister drops every event of this component.
func (c *Component) unregister() {
	if c.scope == nil {
		return
	}
	prefix := c.Event("")
	for k := range c.scope.events {
		if strings.HasPrefix(k, prefix) {
			delete(c.scope.events, k)
		}
	}
}

func isEventMethod(t reflect.Type) bool {
	return t.NumIn() == 2 &&
		t.In(0) == contextType &&
		t.In(1) == paramsType &&
		t.NumOut() == 1 &&
		t.Out(0) == errorType
}

func eventName(parts []string) string {
	out := []string{}
	for _, p := range parts[1:] {
		out = append(out, strings.ToLower(p))
	}
	return strings.Join(out, "-")
}

// Start begins a child component's lifecycle: its events are registered
// alongside its parent's and it is mounted. IDs must be unique on the page.
func Start(ctx context.Context, ID string, parent *Component, comp ComponentLifecycle) error {
	if parent == nil || parent.scope == nil {
		return fmt.Errorf("could not start component %s: parent not started", ID)
	}
	if err := comp.register(ID, parent.scope, comp); err != nil {
		return fmt.Errorf("could not spawn component on register: %w", err)
	}
	if err := comp.Mount(ctx); err != nil {
		comp.unregister()
		return fmt.Errorf("could not spawn component on mount: %w", err)
	}
	return nil
}

// Stop ends a component's lifecycle. Its events are no longer handled and it
// is unmounted.
func Stop(comp ComponentLifecycle) error {
	comp.unregister()
	if err := comp.Unmount(); err != nil {
		return fmt.Errorf("could not unmount component %s: %w", comp.base().ID, err)
	}
	return nil
}
