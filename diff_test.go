package live

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"
)

type diffTest struct {
	root     string
	proposed string
	patches  []Patch
}

func TestSingleTextChange(t *testing.T) {
	runDiffTest(diffTest{
		root:     "<div>Hello</div>",
		proposed: "<div>World</div>",
		patches: []Patch{
			{Anchor: "_l_0_1_0", Action: Replace, HTML: `<div _l_0_1_0="">World</div>`},
		},
	}, t)
}

func TestMultipleTextChange(t *testing.T) {
	runDiffTest(diffTest{
		root:     `<div>Hello</div><div>World</div>`,
		proposed: `<div>World</div><div>Hello</div>`,
		patches: []Patch{
			{Anchor: "_l_0_1_0", Action: Replace, HTML: `<div _l_0_1_0="">World</div>`},
			{Anchor: "_l_0_1_1", Action: Replace, HTML: `<div _l_0_1_1="">Hello</div>`},
		},
	}, t)
}

func TestNodeAppend(t *testing.T) {
	runDiffTest(diffTest{
		root:     `<div>World</div>`,
		proposed: `<div>Hello</div><div>World</div>`,
		patches: []Patch{
			{Anchor: "_l_0_1_0", Action: Replace, HTML: `<div _l_0_1_0="">Hello</div>`},
			{Anchor: "_l_0_1", Action: Append, HTML: `<div _l_0_1_1="">World</div>`},
		},
	}, t)
	runDiffTest(diffTest{
		root:     `<div>Hello</div>`,
		proposed: `<div>Hello</div><div>World</div>`,
		patches: []Patch{
			{Anchor: "_l_0_1", Action: Append, HTML: `<div _l_0_1_1="">World</div>`},
		},
	}, t)
}

func TestNodeDeletion(t *testing.T) {
	runDiffTest(diffTest{
		root:     `<div>Hello</div><div>World</div>`,
		proposed: `<div>World</div>`,
		patches: []Patch{
			{Anchor: "_l_0_1_0", Action: Replace, HTML: `<div _l_0_1_0="">World</div>`},
			{Anchor: "_l_0_1_1", Action: Replace, HTML: ""},
		},
	}, t)
	runDiffTest(diffTest{
		root:     `<div>Hello</div><div>World</div>`,
		proposed: `<div>Hello</div>`,
		patches: []Patch{
			{Anchor: "_l_0_1_1", Action: Replace, HTML: ""},
		},
	}, t)
}

func TestAttributeValueChange(t *testing.T) {
	runDiffTest(diffTest{
		root:     `<div place="World">Hello</div>`,
		proposed: `<div place="Change">Hello</div>`,
		patches: []Patch{
			{Anchor: "_l_0_1_0", Action: Replace, HTML: `<div place="Change" _l_0_1_0="">Hello</div>`},
		},
	}, t)
}

func TestNestedAppend(t *testing.T) {
	runDiffTest(diffTest{
		root:     `<form><input type="text"/><input type="submit"/></form>`,
		proposed: `<form><div>Extra</div><input type="text"/><input type="submit"/></form>`,
		patches: []Patch{
			{Anchor: "_l_0_1_0_0", Action: Replace, HTML: `<div _l_0_1_0_0="">Extra</div>`},
			{Anchor: "_l_0_1_0_1", Action: Replace, HTML: `<input type="text" _l_0_1_0_1=""/>`},
			{Anchor: "_l_0_1_0", Action: Append, HTML: `<input type="submit" _l_0_1_0_2=""/>`},
		},
	}, t)
}

func TestDoc(t *testing.T) {
	runDiffTest(diffTest{
		root:     "<!doctype><html><head><title>1</title></head><body><div>1</div></body></html>",
		proposed: "<!doctype><html><head><title>2</title></head><body><div>2</div></body></html>",
		patches: []Patch{
			{Anchor: "_l_1_0_0", Action: Replace, HTML: `<title _l_1_0_0="">2</title>`},
			{Anchor: "_l_1_1_0", Action: Replace, HTML: `<div _l_1_1_0="">2</div>`},
		},
	}, t)
}

func TestNoChange(t *testing.T) {
	runDiffTest(diffTest{
		root:     `<div class="container"><p>Number : 2</p></div>`,
		proposed: `<div class="container"><p>Number : 2</p></div>`,
	}, t)
}

func TestEarlyChildDeletion(t *testing.T) {
	runDiffTest(diffTest{
		root: `
		    <form>
		        <div>1</div>
		        <div>2</div>
		        <div>3</div>
		        <input type="text"/>
		        <input type="submit"/>
		    </form>`,
		proposed: `
		    <form>
		        <input type="text"/>
		        <input type="submit"/>
		    </form>`,
		patches: []Patch{
			{Anchor: "_l_0_1_0_0", Action: Replace, HTML: `<input type="text" _l_0_1_0_0=""/>`},
			{Anchor: "_l_0_1_0_1", Action: Replace, HTML: `<input type="submit" _l_0_1_0_1=""/>`},
			{Anchor: "_l_0_1_0_2", Action: Replace, HTML: ``},
			{Anchor: "_l_0_1_0_3", Action: Replace, HTML: ``},
			{Anchor: "_l_0_1_0_4", Action: Replace, HTML: ``},
		},
	}, t)
}

func TestChildViewRemoved(t *testing.T) {
	runDiffTest(diffTest{
		root: `
		    <h1>Hello World!</h1>
		    <div class="container" id="func"><p>Number : 2</p></div>
		    <div class="container" id="class"><p>Number : 2</p></div>
		    <script src="/live.js"></script>`,
		proposed: `
		    <h1>Hello World!</h1>
		    <div class="container" id="class"><p>Number : 2</p></div>
		    <script src="/live.js"></script>`,
		patches: []Patch{
			{Anchor: "_l_0_1_1", Action: Replace, HTML: `<div class="container" id="class" _l_0_1_1=""><p _l_0_1_1_0="">Number : 2</p></div>`},
			{Anchor: "_l_0_1_2", Action: Replace, HTML: `<script src="/live.js" _l_0_1_2=""></script>`},
			{Anchor: "_l_0_1_3", Action: Replace, HTML: ``},
		},
	}, t)
}

func TestInsignificantWhitespace(t *testing.T) {
	runDiffTest(diffTest{
		root: `
		    <form>
		        <input type="text"/>
		        <input type="submit"/>
		    </form>`,
		proposed: `
		    <form>
		    <div>Extra</div>
		    <input type="text"/>
		    <input type="submit"/>
		    </form>`,
		patches: []Patch{
			{Anchor: "_l_0_1_0_0", Action: Replace, HTML: `<div _l_0_1_0_0="">Extra</div>`},
			{Anchor: "_l_0_1_0_1", Action: Replace, HTML: `<input type="text" _l_0_1_0_1=""/>`},
			{Anchor: "_l_0_1_0", Action: Append, HTML: `<input type="submit" _l_0_1_0_2=""/>`},
		},
	}, t)
}

func TestIssue6(t *testing.T) {
	tests := []diffTest{
		{
			root: `
		    <form>
		        <input type="text"/>
		        <input type="submit"/>
		    </form>

		    <script src="./live.js"></script>
		    `,
			proposed: `
		    <form>
		        <input type="text"/>
		        <input type="submit"/>
		    </form>

		    <pre>1</pre>

		    <script src="./live.js"></script>
		    `,
			patches: []Patch{
				{Anchor: "_l_0_1_1", Action: Replace, HTML: `<pre _l_0_1_1="">1</pre>`},
				{Anchor: "_l_0_1", Action: Append, HTML: `<script src="./live.js" _l_0_1_2=""></script>`},
			},
		},
		{
			root:     `<form><input type="text"/><input type="submit"/></form><script src="./live.js"></script>`,
			proposed: `<form><input type="text"/><input type="submit"/></form><pre>1</pre><script src="./live.js"></script>`,
			patches: []Patch{
				{Anchor: "_l_0_1_1", Action: Replace, HTML: `<pre _l_0_1_1="">1</pre>`},
				{Anchor: "_l_0_1", Action: Append, HTML: `<script src="./live.js" _l_0_1_2=""></script>`},
			},
		},
	}
	for _, d := range tests {
		runDiffTest(d, t)
	}
}

func TestTreeShape(t *testing.T) {
	h := `<html>
            <head></head>
            <body>
                <!-- gone -->
                <form>
                    <div>1</div>
                    <div>2</div>
                    <input type="text"/>
                </form>
            </body>
        </html>
    `
	e := `<html><head></head><body live-rendered=""><form><div>1</div><div>2</div><input type="text"/></form></body></html>`
	tree, err := html.Parse(strings.NewReader(h))
	if err != nil {
		t.Fatal(err)
	}
	shapeTree(tree)

	var d bytes.Buffer
	html.Render(&d, tree)
	if e != d.String() {
		t.Fatalf("prune failed\nexpected\n'%s'\ngot\n'%s'\n", e, d.String())
	}
}

func TestAnchorTreeIsIdempotent(t *testing.T) {
	tree, err := html.Parse(strings.NewReader(`<div><p>1</p></div>`))
	if err != nil {
		t.Fatal(err)
	}
	shapeTree(tree)
	anchorTree(tree)
	anchorTree(tree)

	var d bytes.Buffer
	html.Render(&d, tree)
	e := `<html _l_0=""><head _l_0_0=""></head><body live-rendered="" _l_0_1=""><div _l_0_1_0=""><p _l_0_1_0_0="">1</p></div></body></html>`
	if e != d.String() {
		t.Fatalf("anchor failed\nexpected\n'%s'\ngot\n'%s'\n", e, d.String())
	}
}

func runDiffTest(tt diffTest, t *testing.T) {
	t.Helper()
	rootNode, err := html.Parse(strings.NewReader(tt.root))
	if err != nil {
		t.Error(err)
		return
	}
	shapeTree(rootNode)
	proposedNode, err := html.Parse(strings.NewReader(tt.proposed))
	if err != nil {
		t.Error(err)
		return
	}
	shapeTree(proposedNode)
	patches, err := Diff(rootNode, proposedNode)
	if err != nil {
		t.Error(err)
		return
	}

	if diff := cmp.Diff(tt.patches, patches); diff != "" {
		t.Errorf("patches mismatch (-want +got):\n%s", diff)
	}
}
