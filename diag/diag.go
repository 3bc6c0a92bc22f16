// Package diag is the diagnostic channel the views report their lifecycle
// on. Every line carries a sequence number taken from an injected Counter
// and a style marker telling the two view styles apart.
package diag

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// Attribute keys attached to every diagnostic record.
const (
	SeqKey   = "seq"
	StyleKey = "style"
)

// Style marks which kind of view emitted a line.
type Style string

// Known styles.
const (
	Function Style = "func"
	Class    Style = "class"
)

// Colour returns the console colour used by the client for this style.
func (s Style) Colour() string {
	switch s {
	case Function:
		return "color:blue"
	case Class:
		return "color:red"
	}
	return ""
}

// Counter hands out monotonically increasing sequence numbers. The zero
// value is ready to use.
type Counter struct {
	n atomic.Uint64
}

// Next increments the counter and returns the new value.
func (c *Counter) Next() uint64 {
	return c.n.Add(1)
}

// Current returns the last value handed out.
func (c *Counter) Current() uint64 {
	return c.n.Load()
}

// Logger writes diagnostic lines for one view style.
type Logger struct {
	log     *slog.Logger
	counter *Counter
	style   Style
}

// New creates a logger. A nil slog.Logger falls back to slog.Default and a
// nil counter gets a private one.
func New(log *slog.Logger, counter *Counter, style Style) *Logger {
	if log == nil {
		log = slog.Default()
	}
	if counter == nil {
		counter = &Counter{}
	}
	return &Logger{
		log:     log,
		counter: counter,
		style:   style,
	}
}

// Log emits a line and returns the sequence number it was tagged with.
func (l *Logger) Log(msg string) uint64 {
	seq := l.counter.Next()
	l.log.LogAttrs(context.Background(), slog.LevelInfo, msg,
		slog.Uint64(SeqKey, seq),
		slog.String(StyleKey, string(l.style)),
	)
	return seq
}

// Style returns the style this logger tags lines with.
func (l *Logger) Style() Style {
	return l.style
}
