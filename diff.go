package live

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"golang.org/x/net/html"
)

const (
	// anchorPrefix prefixes the attribute which identifies a node in the
	// rendered tree.
	anchorPrefix = "_l"
	// renderedAttr is set on the body once it has been rendered by live.
	renderedAttr = "live-rendered"
)

// PatchAction available actions to take by a patch.
type PatchAction uint32

// Actions available.
const (
	Noop PatchAction = iota
	Replace
	Append
)

// Patch a location in the frontend dom.
type Patch struct {
	Anchor string
	Action PatchAction
	HTML   string
}

func (p Patch) String() string {
	action := ""
	switch p.Action {
	case Noop:
		action = "NO"
	case Replace:
		action = "RE"
	case Append:
		action = "AP"
	}
	return fmt.Sprintf("%s %s %s", p.Anchor, action, p.HTML)
}

// Diff compares two shaped trees and returns the patches needed to turn
// current into proposed. Both trees are anchored as a side effect.
func Diff(current, proposed *html.Node) ([]Patch, error) {
	if current == nil || proposed == nil {
		return nil, fmt.Errorf("cannot diff nil trees")
	}
	anchorTree(current)
	anchorTree(proposed)
	return compareChildren(current, proposed)
}

// compareChildren walks the children of two nodes pairwise. A change that
// cannot be pinned to an element child replaces the parent.
func compareChildren(current, proposed *html.Node) ([]Patch, error) {
	cs := children(current)
	ps := children(proposed)

	var patches []Patch
	for i := 0; i < max(len(cs), len(ps)); i++ {
		switch {
		case i >= len(cs):
			if ps[i].Type != html.ElementNode {
				return replaceNode(current, proposed)
			}
			p, err := appendNode(current, ps[i])
			if err != nil {
				return nil, err
			}
			patches = append(patches, p...)
		case i >= len(ps):
			if cs[i].Type != html.ElementNode {
				return replaceNode(current, proposed)
			}
			patches = append(patches, Patch{Anchor: anchorOf(cs[i]), Action: Replace})
		case cs[i].Type != html.ElementNode || ps[i].Type != html.ElementNode:
			if !sameNode(cs[i], ps[i]) {
				return replaceNode(current, proposed)
			}
		case !sameNode(cs[i], ps[i]):
			p, err := replaceNode(cs[i], ps[i])
			if err != nil {
				return nil, err
			}
			patches = append(patches, p...)
		default:
			p, err := compareChildren(cs[i], ps[i])
			if err != nil {
				return nil, err
			}
			patches = append(patches, p...)
		}
	}
	return patches, nil
}

// sameNode shallow compares two nodes, children are not considered.
func sameNode(a, b *html.Node) bool {
	if a.Type != b.Type || a.Data != b.Data || a.Namespace != b.Namespace {
		return false
	}
	return cmp.Equal(a.Attr, b.Attr, cmpopts.EquateEmpty())
}

func replaceNode(current, proposed *html.Node) ([]Patch, error) {
	anchor := anchorOf(current)
	if anchor == "" {
		return nil, fmt.Errorf("no anchor found for %s node", current.Data)
	}
	out, err := renderNode(proposed)
	if err != nil {
		return nil, err
	}
	return []Patch{{Anchor: anchor, Action: Replace, HTML: out}}, nil
}

func appendNode(parent, child *html.Node) ([]Patch, error) {
	anchor := anchorOf(parent)
	if anchor == "" {
		return nil, fmt.Errorf("no anchor found for %s node", parent.Data)
	}
	out, err := renderNode(child)
	if err != nil {
		return nil, err
	}
	return []Patch{{Anchor: anchor, Action: Append, HTML: out}}, nil
}

func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", fmt.Errorf("could not render patch: %w", err)
	}
	return buf.String(), nil
}

func children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// anchorTree marks every element with an attribute describing its position
// in the tree, _l_0_1_2 being the third child of the second child of the
// first node.
func anchorTree(root *html.Node) {
	var walk func(n *html.Node, path string)
	walk = func(n *html.Node, path string) {
		i := 0
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			p := fmt.Sprintf("%s_%d", path, i)
			i++
			if c.Type != html.ElementNode {
				continue
			}
			c.Attr = removeAnchor(c.Attr)
			c.Attr = append(c.Attr, html.Attribute{Key: p})
			walk(c, p)
		}
	}
	walk(root, anchorPrefix)
}

func anchorOf(n *html.Node) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if strings.HasPrefix(a.Key, anchorPrefix+"_") {
			return a.Key
		}
	}
	return ""
}

func removeAnchor(attrs []html.Attribute) []html.Attribute {
	out := attrs[:0]
	for _, a := range attrs {
		if strings.HasPrefix(a.Key, anchorPrefix+"_") {
			continue
		}
		out = append(out, a)
	}
	return out
}

// shapeTree removes insignificant whitespace and comments, and marks the
// body as rendered.
func shapeTree(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch {
		case c.Type == html.CommentNode:
			n.RemoveChild(c)
		case c.Type == html.TextNode && strings.TrimSpace(c.Data) == "" && !preserveWhitespace(n):
			n.RemoveChild(c)
		default:
			shapeTree(c)
		}
		c = next
	}
	if n.Type == html.ElementNode && n.Data == "body" {
		for _, a := range n.Attr {
			if a.Key == renderedAttr {
				return
			}
		}
		n.Attr = append(n.Attr, html.Attribute{Key: renderedAttr})
	}
}

func preserveWhitespace(n *html.Node) bool {
	return n.Type == html.ElementNode && (n.Data == "pre" || n.Data == "textarea")
}
