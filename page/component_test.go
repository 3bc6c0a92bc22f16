package page

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/livelab/live"
	g "github.com/maragudk/gomponents"
)

type widget struct {
	Component
	calls   []string
	mounted bool
	stopped bool
}

func (p *widget) OnRandomizeNumber(ctx context.Context, params live.Params) error {
	p.calls = append(p.calls, "randomize-number")
	return nil
}

func (p *widget) OnFail(ctx context.Context, params live.Params) error {
	return errors.New("failed")
}

// OnWrongShape does not have the event signature and is ignored.
func (p *widget) OnWrongShape() {}

func (p *widget) Mount(ctx context.Context) error {
	p.mounted = true
	return nil
}

func (p *widget) Unmount() error {
	p.stopped = true
	return nil
}

func TestRegisterScopesEvents(t *testing.T) {
	sc := newScope(nil)
	p := &widget{}
	if err := p.register("func", sc, p); err != nil {
		t.Fatal(err)
	}

	var got []string
	for k := range sc.events {
		got = append(got, k)
	}
	want := []string{"func--fail", "func--randomize-number"}
	if diff := cmp.Diff(want, got, cmpSorted()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}

	if err := sc.dispatch(context.Background(), "func--randomize-number", live.Params{}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"randomize-number"}, p.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	if err := sc.dispatch(context.Background(), "func--fail", live.Params{}); err == nil || err.Error() != "failed" {
		t.Errorf("expected handler error, got %v", err)
	}
	if err := sc.dispatch(context.Background(), "class--fail", live.Params{}); !errors.Is(err, live.ErrNoEventHandler) {
		t.Errorf("expected ErrNoEventHandler, got %v", err)
	}
}

func TestStartStop(t *testing.T) {
	root := &Component{}
	if err := Start(context.Background(), "child", root, &widget{}); err == nil {
		t.Fatal("start under an unregistered parent should fail")
	}

	if err := root.register(rootID, newScope(nil), root); err != nil {
		t.Fatal(err)
	}
	a, b := &widget{}, &widget{}
	if err := Start(context.Background(), "func", root, a); err != nil {
		t.Fatal(err)
	}
	if err := Start(context.Background(), "function", root, b); err != nil {
		t.Fatal(err)
	}
	if !a.mounted || !b.mounted {
		t.Fatal("children not mounted")
	}

	if err := Stop(a); err != nil {
		t.Fatal(err)
	}
	if !a.stopped {
		t.Error("child not unmounted")
	}
	err := root.scope.dispatch(context.Background(), "func--randomize-number", live.Params{})
	if !errors.Is(err, live.ErrNoEventHandler) {
		t.Errorf("stopped child still handles events: %v", err)
	}
	if err := root.scope.dispatch(context.Background(), "function--randomize-number", live.Params{}); err != nil {
		t.Errorf("sibling lost its events: %v", err)
	}
}

type shell struct {
	Component
	child *widget
}

func (s *shell) Mount(ctx context.Context) error {
	s.child = &widget{}
	return Start(ctx, "func", &s.Component, s.child)
}

func (s *shell) Unmount() error {
	return Stop(s.child)
}

func (s *shell) Render() g.Node {
	return g.El("main", g.Textf("calls %d", len(s.child.calls)), Render(true, s.child))
}

func TestHandlerRendersRoot(t *testing.T) {
	var root *shell
	h := NewHandler(func(ctx context.Context, s *live.Socket) (ComponentLifecycle, error) {
		root = &shell{}
		return root, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	e := live.NewHttpHandler(ctx, h)

	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "calls 0") {
		t.Errorf("unexpected body %s", rr.Body.String())
	}
	if root == nil || root.ID != rootID || !root.child.mounted {
		t.Fatal("root not mounted")
	}
	if root.Socket() == nil {
		t.Error("root has no socket")
	}
}

func cmpSorted() cmp.Option {
	return cmpopts.SortSlices(func(a, b string) bool { return a < b })
}
