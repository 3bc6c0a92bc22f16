package lifecycle

var (
	_ WillMounter        = Funcs[int]{}
	_ DidMounter         = Funcs[int]{}
	_ ShouldUpdater[int] = Funcs[int]{}
	_ WillUpdater[int]   = Funcs[int]{}
	_ DidUpdater[int]    = Funcs[int]{}
	_ WillUnmounter      = Funcs[int]{}
	_ Renderer           = Funcs[int]{}
)

// Funcs adapts plain functions to every capability. Nil fields do nothing
// and a nil ShouldUpdateFunc always agrees.
type Funcs[S any] struct {
	WillMountFunc    func()
	DidMountFunc     func()
	ShouldUpdateFunc func(next, current S) bool
	WillUpdateFunc   func(next, current S)
	DidUpdateFunc    func(prev, current S)
	WillUnmountFunc  func()
	RenderFunc       func()
}

func (f Funcs[S]) WillMount() {
	if f.WillMountFunc != nil {
		f.WillMountFunc()
	}
}

func (f Funcs[S]) DidMount() {
	if f.DidMountFunc != nil {
		f.DidMountFunc()
	}
}

func (f Funcs[S]) ShouldUpdate(next, current S) bool {
	if f.ShouldUpdateFunc == nil {
		return true
	}
	return f.ShouldUpdateFunc(next, current)
}

func (f Funcs[S]) WillUpdate(next, current S) {
	if f.WillUpdateFunc != nil {
		f.WillUpdateFunc(next, current)
	}
}

func (f Funcs[S]) DidUpdate(prev, current S) {
	if f.DidUpdateFunc != nil {
		f.DidUpdateFunc(prev, current)
	}
}

func (f Funcs[S]) WillUnmount() {
	if f.WillUnmountFunc != nil {
		f.WillUnmountFunc()
	}
}

func (f Funcs[S]) Render() {
	if f.RenderFunc != nil {
		f.RenderFunc()
	}
}
