// Package lifecycle implements the explicit lifecycle state machine used by
// class style views.
//
// A Machine holds the view state and its current Phase. Notifiers are
// registered as plain values; each one receives the notifications for the
// capability interfaces it implements (WillMounter, DidMounter,
// ShouldUpdater, WillUpdater, DidUpdater, WillUnmounter, Renderer and
// Transitioner). Notifiers are called in registration order.
//
//	Unmounted -> PreMount -> Mounted
//	Mounted|Updated -> PreUpdate -> (guard) -> Updated
//	Mounted|Updated -> WillUnmount -> Unmounted (terminal)
package lifecycle

// Phase is a discrete stage in a view's existence.
type Phase int

// Phases.
const (
	Unmounted Phase = iota
	PreMount
	Mounted
	PreUpdate
	Updated
	WillUnmount
)

func (p Phase) String() string {
	switch p {
	case Unmounted:
		return "unmounted"
	case PreMount:
		return "pre-mount"
	case Mounted:
		return "mounted"
	case PreUpdate:
		return "pre-update"
	case Updated:
		return "updated"
	case WillUnmount:
		return "will-unmount"
	}
	return "unknown"
}

// WillMounter is notified before the view is attached.
type WillMounter interface {
	WillMount()
}

// DidMounter is notified after the view is attached and rendered.
type DidMounter interface {
	DidMount()
}

// ShouldUpdater guards a proposed state change. Returning false skips the
// update and the render.
type ShouldUpdater[S any] interface {
	ShouldUpdate(next, current S) bool
}

// WillUpdater is notified before a state change is committed.
type WillUpdater[S any] interface {
	WillUpdate(next, current S)
}

// DidUpdater is notified after a state change is committed and rendered.
type DidUpdater[S any] interface {
	DidUpdate(prev, current S)
}

// WillUnmounter is notified before the view is detached.
type WillUnmounter interface {
	WillUnmount()
}

// Renderer is asked to render on mount and after every committed update.
type Renderer interface {
	Render()
}

// Transitioner observes every phase change.
type Transitioner interface {
	Transition(from, to Phase)
}

// Machine is the lifecycle of a single view instance.
type Machine[S any] struct {
	phase     Phase
	state     S
	notifiers []any
	done      bool
}

// New creates a machine in the Unmounted phase holding the initial state.
func New[S any](initial S, notifiers ...any) *Machine[S] {
	return &Machine[S]{
		state:     initial,
		notifiers: notifiers,
	}
}

// Register adds a notifier.
func (m *Machine[S]) Register(n any) {
	m.notifiers = append(m.notifiers, n)
}

// Phase returns the current phase.
func (m *Machine[S]) Phase() Phase {
	return m.phase
}

// State returns the current state.
func (m *Machine[S]) State() S {
	return m.state
}

// Done reports whether the machine has been unmounted. A done machine
// ignores every further request.
func (m *Machine[S]) Done() bool {
	return m.done
}

// Mount attaches the view: WillMount, Render, then DidMount. It returns
// false when the machine is not in a mountable phase.
func (m *Machine[S]) Mount() bool {
	if m.done || m.phase != Unmounted {
		return false
	}
	m.transition(PreMount)
	for _, n := range m.notifiers {
		if wm, ok := n.(WillMounter); ok {
			wm.WillMount()
		}
	}
	m.render()
	m.transition(Mounted)
	for _, n := range m.notifiers {
		if dm, ok := n.(DidMounter); ok {
			dm.DidMount()
		}
	}
	return true
}

// SetState proposes the state merge returns and, if every guard agrees,
// commits it: WillUpdate, commit, Render, DidUpdate. It reports whether the
// change was committed. Requests outside Mounted and Updated are ignored.
func (m *Machine[S]) SetState(merge func(current S) S) bool {
	if m.phase != Mounted && m.phase != Updated {
		return false
	}
	from := m.phase
	current := m.state
	next := merge(current)

	m.transition(PreUpdate)
	for _, n := range m.notifiers {
		su, ok := n.(ShouldUpdater[S])
		if !ok {
			continue
		}
		if !su.ShouldUpdate(next, current) {
			m.transition(from)
			return false
		}
	}

	for _, n := range m.notifiers {
		if wu, ok := n.(WillUpdater[S]); ok {
			wu.WillUpdate(next, current)
		}
	}
	m.state = next
	m.render()
	m.transition(Updated)
	for _, n := range m.notifiers {
		if du, ok := n.(DidUpdater[S]); ok {
			du.DidUpdate(current, m.state)
		}
	}
	return true
}

// Unmount detaches the view: WillUnmount fires, the state is discarded and
// the machine becomes terminal. It returns false if the view was not
// mounted.
func (m *Machine[S]) Unmount() bool {
	if m.phase != Mounted && m.phase != Updated {
		return false
	}
	m.transition(WillUnmount)
	for _, n := range m.notifiers {
		if wu, ok := n.(WillUnmounter); ok {
			wu.WillUnmount()
		}
	}
	var zero S
	m.state = zero
	m.done = true
	m.transition(Unmounted)
	m.notifiers = nil
	return true
}

func (m *Machine[S]) render() {
	for _, n := range m.notifiers {
		if r, ok := n.(Renderer); ok {
			r.Render()
		}
	}
}

func (m *Machine[S]) transition(to Phase) {
	from := m.phase
	m.phase = to
	for _, n := range m.notifiers {
		if t, ok := n.(Transitioner); ok {
			t.Transition(from, to)
		}
	}
}
