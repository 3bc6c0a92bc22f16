// Package views holds the demo page: a root view showing a function style
// view and a class style view side by side.
//
// The function style view keeps its number and timestamp in independent
// cells and reacts to them through a reaction.Table. The class style view
// keeps both in one record driven by a lifecycle.Machine. Both report every
// step on the diagnostic channel and write the shared display title.
package views

import (
	"log/slog"
	"math/rand"
	"strconv"
	"time"

	"github.com/livelab/live/diag"
	"github.com/livelab/live/title"
)

// TimestampLayout is how timestamps are shown.
const TimestampLayout = "Mon Jan 02 2006 15:04:05 GMT-0700 (MST)"

// Deps are the collaborators of a child view.
type Deps struct {
	// Logger receives the diagnostic lines.
	Logger *slog.Logger
	// Counter numbers the diagnostic lines.
	Counter *diag.Counter
	// Title is the display title written by the views.
	Title *title.Display
	// Clock reads the current time.
	Clock func() time.Time
	// Rand returns a number in [0, 1).
	Rand func() float64
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Counter == nil {
		d.Counter = &diag.Counter{}
	}
	if d.Title == nil {
		d.Title = &title.Display{}
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.Rand == nil {
		d.Rand = rand.Float64
	}
	return d
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func formatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}
