package views

import (
	"context"

	"github.com/livelab/live"
	"github.com/livelab/live/diag"
	"github.com/livelab/live/lifecycle"
	"github.com/livelab/live/page"
	"github.com/livelab/live/title"
	g "github.com/maragudk/gomponents"
	h "github.com/maragudk/gomponents/html"
)

// ClassState is the single record held by a class style view.
type ClassState struct {
	Number    float64
	Timestamp string
}

// Class is the class style view. Its state lives in a lifecycle machine and
// changes only through merges.
type Class struct {
	page.Component

	log     *diag.Logger
	title   *title.Display
	deps    Deps
	machine *lifecycle.Machine[ClassState]
}

// NewClass creates a class style view seeded with initNumber.
func NewClass(deps Deps, initNumber float64) *Class {
	deps = deps.withDefaults()
	c := &Class{
		log:   diag.New(deps.Logger, deps.Counter, diag.Class),
		title: deps.Title,
		deps:  deps,
	}
	c.machine = lifecycle.New(ClassState{
		Number:    initNumber,
		Timestamp: formatTimestamp(deps.Clock()),
	}, classLifecycle{c})
	return c
}

// Mount attaches the view.
func (c *Class) Mount(ctx context.Context) error {
	c.machine.Mount()
	return nil
}

// Unmount detaches the view. The view is finished afterwards.
func (c *Class) Unmount() error {
	c.machine.Unmount()
	return nil
}

// RandomizeNumber merges a random number in [0, 1) into the state.
func (c *Class) RandomizeNumber() {
	n := c.deps.Rand()
	c.machine.SetState(func(s ClassState) ClassState {
		s.Number = n
		return s
	})
}

// RefreshTimestamp merges the current time into the state.
func (c *Class) RefreshTimestamp() {
	ts := formatTimestamp(c.deps.Clock())
	c.machine.SetState(func(s ClassState) ClassState {
		s.Timestamp = ts
		return s
	})
}

// State the current state.
func (c *Class) State() ClassState {
	return c.machine.State()
}

// Phase the current lifecycle phase.
func (c *Class) Phase() lifecycle.Phase {
	return c.machine.Phase()
}

// OnRandomizeNumber handles "randomize-number".
func (c *Class) OnRandomizeNumber(ctx context.Context, p live.Params) error {
	c.RandomizeNumber()
	return nil
}

// OnRefreshTimestamp handles "refresh-timestamp".
func (c *Class) OnRefreshTimestamp(ctx context.Context, p live.Params) error {
	c.RefreshTimestamp()
	return nil
}

func (c *Class) Render() g.Node {
	s := c.machine.State()
	return h.Div(h.Class("container"), h.ID(c.ID),
		h.H2(g.Text("Class Style Comp")),
		h.P(g.Text("Number : "+formatNumber(s.Number))),
		h.P(g.Text("Date : "+s.Timestamp)),
		h.Input(h.Type("button"), h.Value("random"), page.Click(c, "randomize-number")),
		h.Input(h.Type("button"), h.Value("date"), page.Click(c, "refresh-timestamp")),
	)
}

// classLifecycle receives the machine's notifications for a Class.
type classLifecycle struct {
	c *Class
}

var (
	_ lifecycle.WillMounter               = classLifecycle{}
	_ lifecycle.DidMounter                = classLifecycle{}
	_ lifecycle.ShouldUpdater[ClassState] = classLifecycle{}
	_ lifecycle.WillUpdater[ClassState]   = classLifecycle{}
	_ lifecycle.DidUpdater[ClassState]    = classLifecycle{}
	_ lifecycle.WillUnmounter             = classLifecycle{}
	_ lifecycle.Renderer                  = classLifecycle{}
)

func (l classLifecycle) WillMount() {
	l.c.log.Log("componentWillMount")
}

// DidMount is the first point the view touches the title.
func (l classLifecycle) DidMount() {
	l.c.log.Log("componentDidMount")
	l.c.title.Set(formatNumber(l.c.machine.State().Number))
}

// ShouldUpdate never filters.
func (l classLifecycle) ShouldUpdate(next, current ClassState) bool {
	l.c.log.Log("shouldComponentUpdate")
	return true
}

func (l classLifecycle) WillUpdate(next, current ClassState) {
	l.c.log.Log("componentWillUpdate")
}

func (l classLifecycle) DidUpdate(prev, current ClassState) {
	l.c.log.Log("componentDidUpdate")
	switch {
	case prev.Number != current.Number:
		l.c.title.Set(formatNumber(current.Number))
	case prev.Timestamp != current.Timestamp:
		l.c.title.Set(current.Timestamp)
	}
}

func (l classLifecycle) WillUnmount() {
	l.c.log.Log("componentWillUnmount")
}

func (l classLifecycle) Render() {
	l.c.log.Log("render")
}
