package diag

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

var _ slog.Handler = &Recorder{}

// Line is a diagnostic record as retained by a Recorder.
type Line struct {
	Seq   uint64
	Style Style
	Msg   string
}

// String formats the line the way the browser console shows it.
func (l Line) String() string {
	if l.Style == "" {
		return l.Msg
	}
	return fmt.Sprintf("%s => %s %d", l.Style, l.Msg, l.Seq)
}

func (l *Line) apply(a slog.Attr) {
	switch a.Key {
	case SeqKey:
		if a.Value.Kind() == slog.KindUint64 {
			l.Seq = a.Value.Uint64()
		}
	case StyleKey:
		l.Style = Style(a.Value.String())
	}
}

type lineBuffer struct {
	mu     sync.Mutex
	lines  []Line
	limit  int
	onLine []func(Line)
}

func (b *lineBuffer) add(l Line) []func(Line) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, l)
	if b.limit > 0 && len(b.lines) > b.limit {
		b.lines = slices.Clone(b.lines[len(b.lines)-b.limit:])
	}
	return slices.Clone(b.onLine)
}

// Recorder is a slog.Handler that retains the records it sees and then
// passes them on to the next handler, if any. Handlers derived through
// WithAttrs and WithGroup share the same retained lines.
type Recorder struct {
	buf   *lineBuffer
	next  slog.Handler
	attrs []slog.Attr
}

// NewRecorder creates a recorder keeping at most limit lines. A limit of
// zero keeps everything.
func NewRecorder(next slog.Handler, limit int) *Recorder {
	return &Recorder{
		buf:  &lineBuffer{limit: limit},
		next: next,
	}
}

// Enabled always reports true so every line is retained; the next handler
// still applies its own level.
func (r *Recorder) Enabled(context.Context, slog.Level) bool {
	return true
}

// Handle retains the record and forwards it.
func (r *Recorder) Handle(ctx context.Context, rec slog.Record) error {
	line := Line{Msg: rec.Message}
	for _, a := range r.attrs {
		line.apply(a)
	}
	rec.Attrs(func(a slog.Attr) bool {
		line.apply(a)
		return true
	})
	for _, fn := range r.buf.add(line) {
		fn(line)
	}
	if r.next != nil && r.next.Enabled(ctx, rec.Level) {
		return r.next.Handle(ctx, rec)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (r *Recorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := r.next
	if next != nil {
		next = next.WithAttrs(attrs)
	}
	return &Recorder{
		buf:   r.buf,
		next:  next,
		attrs: append(slices.Clone(r.attrs), attrs...),
	}
}

// WithGroup implements slog.Handler.
func (r *Recorder) WithGroup(name string) slog.Handler {
	next := r.next
	if next != nil {
		next = next.WithGroup(name)
	}
	return &Recorder{
		buf:   r.buf,
		next:  next,
		attrs: r.attrs,
	}
}

// OnLine registers a function called with every new line, after it has
// been retained.
func (r *Recorder) OnLine(fn func(Line)) {
	r.buf.mu.Lock()
	defer r.buf.mu.Unlock()
	r.buf.onLine = append(r.buf.onLine, fn)
}

// Lines returns a copy of the retained lines, oldest first.
func (r *Recorder) Lines() []Line {
	r.buf.mu.Lock()
	defer r.buf.mu.Unlock()
	return slices.Clone(r.buf.lines)
}

// Messages returns just the message of every retained line.
func (r *Recorder) Messages() []string {
	lines := r.Lines()
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.Msg)
	}
	return out
}

// Reset drops every retained line.
func (r *Recorder) Reset() {
	r.buf.mu.Lock()
	defer r.buf.mu.Unlock()
	r.buf.lines = nil
}
