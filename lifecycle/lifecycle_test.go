package lifecycle

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type pair struct {
	A int
	B string
}

// journal records every notification it receives.
type journal struct {
	log  []string
	veto bool
}

func (j *journal) WillMount()   { j.log = append(j.log, "will-mount") }
func (j *journal) DidMount()    { j.log = append(j.log, "did-mount") }
func (j *journal) Render()      { j.log = append(j.log, "render") }
func (j *journal) WillUnmount() { j.log = append(j.log, "will-unmount") }

func (j *journal) ShouldUpdate(next, current pair) bool {
	j.log = append(j.log, fmt.Sprintf("should-update %v->%v", current, next))
	return !j.veto
}

func (j *journal) WillUpdate(next, current pair) {
	j.log = append(j.log, "will-update")
}

func (j *journal) DidUpdate(prev, current pair) {
	j.log = append(j.log, fmt.Sprintf("did-update %v->%v", prev, current))
}

func TestLifecycleOrder(t *testing.T) {
	j := &journal{}
	m := New(pair{A: 1, B: "x"}, j)
	if m.Phase() != Unmounted {
		t.Fatalf("initial phase %s", m.Phase())
	}

	if !m.Mount() {
		t.Fatal("mount refused")
	}
	if m.Phase() != Mounted {
		t.Errorf("after mount phase %s", m.Phase())
	}
	if !m.SetState(func(c pair) pair { c.A = 2; return c }) {
		t.Fatal("update refused")
	}
	if m.Phase() != Updated {
		t.Errorf("after update phase %s", m.Phase())
	}
	if !m.Unmount() {
		t.Fatal("unmount refused")
	}

	want := []string{
		"will-mount",
		"render",
		"did-mount",
		"should-update {1 x}->{2 x}",
		"will-update",
		"render",
		"did-update {1 x}->{2 x}",
		"will-unmount",
	}
	if diff := cmp.Diff(want, j.log); diff != "" {
		t.Errorf("notifications mismatch (-want +got):\n%s", diff)
	}
	if m.Phase() != Unmounted || !m.Done() {
		t.Errorf("after unmount phase %s done %v", m.Phase(), m.Done())
	}
	if m.State() != (pair{}) {
		t.Errorf("state should be discarded, got %v", m.State())
	}
}

func TestGuardVeto(t *testing.T) {
	j := &journal{veto: true}
	m := New(pair{A: 1}, j)
	m.Mount()
	j.log = nil

	if m.SetState(func(c pair) pair { c.A = 9; return c }) {
		t.Fatal("vetoed update committed")
	}
	if m.State().A != 1 {
		t.Errorf("state changed to %v", m.State())
	}
	if m.Phase() != Mounted {
		t.Errorf("phase after veto %s", m.Phase())
	}
	if diff := cmp.Diff([]string{"should-update {1 }->{9 }"}, j.log); diff != "" {
		t.Errorf("notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultGuardCommitsEverything(t *testing.T) {
	m := New(0, Funcs[int]{})
	m.Mount()
	for i := 1; i <= 5; i++ {
		if !m.SetState(func(c int) int { return c + 1 }) {
			t.Fatalf("update %d dropped", i)
		}
	}
	if m.State() != 5 {
		t.Errorf("state: got %d want 5", m.State())
	}
}

func TestMergeKeepsOtherField(t *testing.T) {
	m := New(pair{A: 1, B: "keep"})
	m.Mount()
	m.SetState(func(c pair) pair { c.A = 7; return c })
	if m.State() != (pair{A: 7, B: "keep"}) {
		t.Errorf("merge clobbered state: %v", m.State())
	}
}

func TestIgnoredRequests(t *testing.T) {
	j := &journal{}
	m := New(pair{}, j)

	if m.SetState(func(c pair) pair { return c }) {
		t.Error("update before mount should be ignored")
	}
	if m.Unmount() {
		t.Error("unmount before mount should be ignored")
	}
	m.Mount()
	if m.Mount() {
		t.Error("second mount should be ignored")
	}
	m.Unmount()
	j.log = nil

	if m.Mount() || m.SetState(func(c pair) pair { return c }) || m.Unmount() {
		t.Error("terminal machine should ignore everything")
	}
	if len(j.log) != 0 {
		t.Errorf("no notifications expected, got %v", j.log)
	}
}

func TestNotifierOrderAndTransitions(t *testing.T) {
	var log []string
	first := Funcs[int]{DidMountFunc: func() { log = append(log, "first") }}
	second := Funcs[int]{DidMountFunc: func() { log = append(log, "second") }}
	var phases []string
	tr := transitions(func(from, to Phase) {
		phases = append(phases, from.String()+">"+to.String())
	})

	m := New(0, first)
	m.Register(second)
	m.Register(tr)
	m.Mount()
	m.SetState(func(c int) int { return c + 1 })
	m.Unmount()

	if diff := cmp.Diff([]string{"first", "second"}, log); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	wantPhases := []string{
		"unmounted>pre-mount",
		"pre-mount>mounted",
		"mounted>pre-update",
		"pre-update>updated",
		"updated>will-unmount",
		"will-unmount>unmounted",
	}
	if diff := cmp.Diff(wantPhases, phases); diff != "" {
		t.Errorf("phases mismatch (-want +got):\n%s", diff)
	}
}

func TestSetStateFromDidMount(t *testing.T) {
	var m *Machine[int]
	m = New(0, Funcs[int]{DidMountFunc: func() {
		m.SetState(func(c int) int { return 42 })
	}})
	m.Mount()
	if m.State() != 42 || m.Phase() != Updated {
		t.Errorf("got state %d phase %s", m.State(), m.Phase())
	}
}

type transitions func(from, to Phase)

func (t transitions) Transition(from, to Phase) { t(from, to) }
