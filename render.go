package live

import (
	"bytes"
	"context"
	"fmt"

	"golang.org/x/net/html"
)

// RenderContext contains the sockets current data for rendering.
type RenderContext struct {
	Socket  *Socket
	Assigns any
}

// RenderSocket renders the socket to html. When the socket has rendered
// before, the differences are sent to the client as patches.
func RenderSocket(ctx context.Context, e *Engine, s *Socket) (*html.Node, error) {
	rc := &RenderContext{
		Socket:  s,
		Assigns: s.Assigns(),
	}

	output, err := e.Handler.RenderHandler(ctx, rc)
	if err != nil {
		return nil, fmt.Errorf("render error: %w", err)
	}
	render, err := html.Parse(output)
	if err != nil {
		return nil, fmt.Errorf("html parse error: %w", err)
	}
	shapeTree(render)

	if s.LatestRender() == nil {
		anchorTree(render)
		return render, nil
	}

	patches, err := Diff(s.LatestRender(), render)
	if err != nil {
		return nil, fmt.Errorf("diff error: %w", err)
	}
	if len(patches) != 0 {
		if err := s.Send(EventPatch, patches); err != nil {
			return nil, err
		}
	}
	return render, nil
}

// renderBytes serialises a render.
func renderBytes(render *html.Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, render); err != nil {
		return nil, fmt.Errorf("could not render html: %w", err)
	}
	return buf.Bytes(), nil
}

// parseRender rebuilds a stored render, keeping its anchors.
func parseRender(b []byte) (*html.Node, error) {
	render, err := html.Parse(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("html parse error: %w", err)
	}
	shapeTree(render)
	return render, nil
}
