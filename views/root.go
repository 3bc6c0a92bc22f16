package views

import (
	"context"
	"log/slog"
	"time"

	"github.com/livelab/live"
	"github.com/livelab/live/diag"
	"github.com/livelab/live/page"
	"github.com/livelab/live/title"
	g "github.com/maragudk/gomponents"
	c "github.com/maragudk/gomponents/components"
	h "github.com/maragudk/gomponents/html"
)

// Options configure a page.
type Options struct {
	// InitNumber seeds both child views.
	InitNumber float64
	// Console shows the recent diagnostic lines on the page.
	Console bool
	// ConsoleLines is how many lines are kept for the console.
	ConsoleLines int
	// Handler receives every diagnostic line after the page has seen it.
	Handler slog.Handler
	// Title is the process wide display title.
	Title *title.Display
	// Clock and Rand are handed to the child views.
	Clock func() time.Time
	Rand  func() float64
}

// Root is the page. It shows each child until that child is hidden, after
// which the child is destroyed for good.
type Root struct {
	page.Component

	opts     Options
	recorder *diag.Recorder
	deps     Deps

	showFunction bool
	showClass    bool
	function     *Function
	class        *Class
}

// NewRoot creates a page. Its diagnostic lines are numbered by a counter of
// its own.
func NewRoot(opts Options) *Root {
	if opts.Handler == nil {
		opts.Handler = slog.Default().Handler()
	}
	if opts.Title == nil {
		opts.Title = &title.Display{}
	}
	r := &Root{
		opts:     opts,
		recorder: diag.NewRecorder(opts.Handler, opts.ConsoleLines),
	}
	r.deps = Deps{
		Logger:  slog.New(r.recorder),
		Counter: &diag.Counter{},
		Title:   opts.Title,
		Clock:   opts.Clock,
		Rand:    opts.Rand,
	}
	r.recorder.OnLine(r.forward)
	return r
}

// Mount creates and starts both children.
func (r *Root) Mount(ctx context.Context) error {
	r.function = NewFunction(r.deps, r.opts.InitNumber)
	if err := page.Start(ctx, "func", &r.Component, r.function); err != nil {
		return err
	}
	r.showFunction = true

	r.class = NewClass(r.deps, r.opts.InitNumber)
	if err := page.Start(ctx, "class", &r.Component, r.class); err != nil {
		return err
	}
	r.showClass = true
	return nil
}

// Unmount destroys whichever children are left.
func (r *Root) Unmount() error {
	r.HideFunctionChild()
	r.HideClassChild()
	return nil
}

// Connect replays the lines logged before the websocket connected.
func (r *Root) Connect(ctx context.Context) error {
	for _, l := range r.recorder.Lines() {
		r.forward(l)
	}
	return nil
}

// forward mirrors a line on the browser console.
func (r *Root) forward(l diag.Line) {
	s := r.Socket()
	if s == nil || !s.Connected() {
		return
	}
	s.Send(live.EventLog, live.ConsoleMessage{
		Text:  l.String(),
		Style: l.Style.Colour(),
	})
}

// HideFunctionChild destroys the function style child. Repeated calls do
// nothing.
func (r *Root) HideFunctionChild() {
	if !r.showFunction {
		return
	}
	r.showFunction = false
	if err := page.Stop(r.function); err != nil {
		slog.Error("stop function child", "err", err)
	}
	r.function = nil
}

// HideClassChild destroys the class style child. Repeated calls do nothing.
func (r *Root) HideClassChild() {
	if !r.showClass {
		return
	}
	r.showClass = false
	if err := page.Stop(r.class); err != nil {
		slog.Error("stop class child", "err", err)
	}
	r.class = nil
}

// Function the function style child, nil once hidden.
func (r *Root) Function() *Function {
	return r.function
}

// Class the class style child, nil once hidden.
func (r *Root) Class() *Class {
	return r.class
}

// Recorder the page's diagnostic lines.
func (r *Root) Recorder() *diag.Recorder {
	return r.recorder
}

// OnHideFunction handles "hide-function".
func (r *Root) OnHideFunction(ctx context.Context, p live.Params) error {
	r.HideFunctionChild()
	return nil
}

// OnHideClass handles "hide-class".
func (r *Root) OnHideClass(ctx context.Context, p live.Params) error {
	r.HideClassChild()
	return nil
}

func (r *Root) Render() g.Node {
	body := []g.Node{
		h.Div(h.Class("App"),
			h.H1(g.Text("Hello World!")),
			h.Input(h.Type("button"), h.Value("remove func"), page.Click(r, "hide-function")),
			h.Input(h.Type("button"), h.Value("remove class"), page.Click(r, "hide-class")),
			page.Render(r.showFunction, r.function),
			page.Render(r.showClass, r.class),
		),
	}
	if r.opts.Console {
		body = append(body, r.console())
	}
	body = append(body, page.Script())

	return c.HTML5(c.HTML5Props{
		Title:    r.opts.Title.Get(),
		Language: "en",
		Head: []g.Node{
			h.StyleEl(h.Type("text/css"), g.Raw(stylesheet)),
		},
		Body: body,
	})
}

// console lists the recent diagnostic lines.
func (r *Root) console() g.Node {
	return h.Div(h.Class("console"),
		h.H2(g.Text("Console")),
		h.Ul(g.Group(g.Map(r.recorder.Lines(), func(l diag.Line) g.Node {
			return h.Li(h.Style(l.Style.Colour()), g.Text(l.String()))
		}))),
	)
}

const stylesheet = `body {font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;}
.container {border: 5px solid gray; margin: 5px; padding: 5px;}
.console li {font-family: monospace; list-style: none;}`
