package views

import (
	"context"

	"github.com/livelab/live"
	"github.com/livelab/live/diag"
	"github.com/livelab/live/page"
	"github.com/livelab/live/reaction"
	"github.com/livelab/live/title"
	g "github.com/maragudk/gomponents"
	h "github.com/maragudk/gomponents/html"
)

// Diagnostic lines of the function style view.
const (
	mountRun      = "useEffect (componentDidMount)"
	mountCleanup  = "useEffect return (componentDidMount)"
	numberRun     = "useEffect number (componentDidMount & componentDidUpdate)"
	numberCleanup = "useEffect number return (componentDidMount & componentDidUpdate)"
	dateRun       = "useEffect date (componentDidMount & componentDidUpdate)"
	dateCleanup   = "useEffect date return (componentDidMount & componentDidUpdate)"
)

// Function is the function style view. Number and timestamp are separate
// cells; three reactions follow them:
//
//	mount      runs on the first pass, cleans up on destroy
//	number     runs whenever the number changes and titles the page with it
//	timestamp  runs whenever the timestamp changes and titles the page with it
type Function struct {
	page.Component

	log   *diag.Logger
	title *title.Display
	deps  Deps

	number    float64
	timestamp string
	reactions reaction.Table
}

// NewFunction creates a function style view seeded with initNumber.
func NewFunction(deps Deps, initNumber float64) *Function {
	deps = deps.withDefaults()
	return &Function{
		log:       diag.New(deps.Logger, deps.Counter, diag.Function),
		title:     deps.Title,
		deps:      deps,
		number:    initNumber,
		timestamp: formatTimestamp(deps.Clock()),
	}
}

// Mount declares the reactions and runs the first pass.
func (f *Function) Mount(ctx context.Context) error {
	f.reactions.Declare("mount", nil, func() reaction.Cleanup {
		f.log.Log(mountRun)
		return func() {
			f.log.Log(mountCleanup)
		}
	})
	f.reactions.Declare("number", func() any { return f.number }, func() reaction.Cleanup {
		f.log.Log(numberRun)
		f.title.Set(formatNumber(f.number))
		return func() {
			f.log.Log(numberCleanup)
		}
	})
	f.reactions.Declare("timestamp", func() any { return f.timestamp }, func() reaction.Cleanup {
		f.log.Log(dateRun)
		f.title.Set(f.timestamp)
		return func() {
			f.log.Log(dateCleanup)
		}
	})
	f.pass()
	return nil
}

// Unmount runs every outstanding cleanup. The view is finished afterwards.
func (f *Function) Unmount() error {
	f.reactions.Dispose()
	return nil
}

// pass is one render: the render line, then the due reactions.
func (f *Function) pass() {
	if f.reactions.Disposed() {
		return
	}
	f.log.Log("render")
	f.reactions.Evaluate()
}

// RandomizeNumber replaces the number with a random one in [0, 1).
func (f *Function) RandomizeNumber() {
	if f.reactions.Disposed() {
		return
	}
	f.number = f.deps.Rand()
	f.pass()
}

// RefreshTimestamp replaces the timestamp with the current time.
func (f *Function) RefreshTimestamp() {
	if f.reactions.Disposed() {
		return
	}
	f.timestamp = formatTimestamp(f.deps.Clock())
	f.pass()
}

// Number the current number.
func (f *Function) Number() float64 {
	return f.number
}

// Timestamp the current timestamp.
func (f *Function) Timestamp() string {
	return f.timestamp
}

// OnRandomizeNumber handles "randomize-number".
func (f *Function) OnRandomizeNumber(ctx context.Context, p live.Params) error {
	f.RandomizeNumber()
	return nil
}

// OnRefreshTimestamp handles "refresh-timestamp".
func (f *Function) OnRefreshTimestamp(ctx context.Context, p live.Params) error {
	f.RefreshTimestamp()
	return nil
}

func (f *Function) Render() g.Node {
	return h.Div(h.Class("container"), h.ID(f.ID),
		h.H2(g.Text("Function Style Comp")),
		h.P(g.Text("Number : "+formatNumber(f.number))),
		h.P(g.Text("Date : "+f.timestamp)),
		h.Input(h.Type("button"), h.Value("random"), page.Click(f, "randomize-number")),
		h.Input(h.Type("button"), h.Value("date"), page.Click(f, "refresh-timestamp")),
	)
}
