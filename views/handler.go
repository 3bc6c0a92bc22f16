package views

import (
	"context"
	"math"

	"github.com/livelab/live"
	"github.com/livelab/live/page"
)

// NewHandler serves a fresh Root per page load. A numeric init query
// parameter overrides the seed number.
func NewHandler(opts Options, configs ...live.HandlerConfig) *live.Handler {
	return page.NewHandler(func(ctx context.Context, s *live.Socket) (page.ComponentLifecycle, error) {
		o := opts
		if n, ok := initNumber(ctx); ok {
			o.InitNumber = n
		}
		return NewRoot(o), nil
	}, configs...)
}

func initNumber(ctx context.Context) (float64, bool) {
	r := live.Request(ctx)
	if r == nil {
		return 0, false
	}
	n, ok := live.NewParamsFromRequest(r).Float64("init")
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
