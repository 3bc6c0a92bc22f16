package page

import (
	"context"
	"fmt"
	"net/http"

	"github.com/livelab/live"
	g "github.com/maragudk/gomponents"
	c "github.com/maragudk/gomponents/components"
	h "github.com/maragudk/gomponents/html"
)

// Counter is a component with a single event.
type Counter struct {
	Component
	count int
}

// OnIncrement handles "increment".
func (c *Counter) OnIncrement(ctx context.Context, p live.Params) error {
	c.count++
	return nil
}

func (c *Counter) Render() g.Node {
	return h.Div(
		h.P(g.Textf("%d", c.count)),
		h.Button(Click(c, "increment"), g.Text("+")),
	)
}

// Greeter is a root component containing a counter.
type Greeter struct {
	Component
	name    string
	counter *Counter
}

func (gr *Greeter) Mount(ctx context.Context) error {
	gr.counter = &Counter{}
	return Start(ctx, "counter", &gr.Component, gr.counter)
}

func (gr *Greeter) Unmount() error {
	return Stop(gr.counter)
}

func (gr *Greeter) Render() g.Node {
	return c.HTML5(c.HTML5Props{
		Title:    "greeter",
		Language: "en",
		Body: []g.Node{
			h.Div(h.Class("greeter"), g.Textf("Hello %s", gr.name)),
			Render(true, gr.counter),
			Script(),
		},
	})
}

func Example() {
	handler := NewHandler(func(ctx context.Context, s *live.Socket) (ComponentLifecycle, error) {
		return &Greeter{name: "World!"}, nil
	})

	counter := &Counter{}
	fmt.Println(counter.Event("increment"))

	ctx := context.Background()
	http.Handle("/", live.NewHttpHandler(ctx, handler))
	http.Handle(live.JavascriptPath, live.Javascript{})
	// Output: --increment
}
