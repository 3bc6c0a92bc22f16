package page

import (
	"github.com/livelab/live"
	g "github.com/maragudk/gomponents"
	h "github.com/maragudk/gomponents/html"
)

// Click triggers the component's event when the node is clicked.
func Click(c ComponentRender, event string) g.Node {
	return g.Attr("live-click", c.Event(event))
}

// Script loads the live client.
func Script() g.Node {
	return h.Script(h.Src(live.JavascriptPath))
}

// Render renders a component when show is true.
func Render(show bool, c ComponentRender) g.Node {
	if !show || c == nil {
		return g.Group(nil)
	}
	return c.Render()
}
