// Package reaction implements dependency keyed effects for function style
// views.
//
// A Table holds an ordered list of records, each made of a key, the value
// that key had on the previous pass, an effect and the cleanup the effect
// returned. The owning view calls Evaluate once per render pass. A record
// runs on the first pass and afterwards only when its key value changed;
// records without a key run on the first pass only. Dispose runs every
// outstanding cleanup and retires the table.
//
//	var t reaction.Table
//	t.Declare("title", func() any { return v.number }, func() reaction.Cleanup {
//	    display.Set(fmt.Sprint(v.number))
//	    return nil
//	})
//	t.Evaluate()
package reaction

import "github.com/google/go-cmp/cmp"

// Cleanup undoes an effect. It runs right before the effect runs again and
// once when the table is disposed.
type Cleanup func()

// Effect is the work attached to a record. It may return a nil Cleanup.
type Effect func() Cleanup

// Key returns the current value a record depends on. Values are compared
// with cmp.Equal so they should be plain values. A nil Key declares a mount
// only record.
type Key func() any

type record struct {
	name    string
	key     Key
	prev    any
	ran     bool
	effect  Effect
	cleanup Cleanup
}

// Table is an ordered set of reactions. The zero value is ready to use. A
// Table is not safe for concurrent use; it belongs to a single view.
type Table struct {
	records  []*record
	passes   int
	disposed bool
}

// Declare appends a reaction. Reactions run in declaration order. A
// reaction declared after the first pass runs on the next pass.
func (t *Table) Declare(name string, key Key, effect Effect) {
	if t.disposed {
		return
	}
	t.records = append(t.records, &record{
		name:   name,
		key:    key,
		effect: effect,
	})
}

// Evaluate runs one render pass and returns the names of the reactions that
// ran, in order. The cleanups of every due reaction run first, then the
// effects.
func (t *Table) Evaluate() []string {
	if t.disposed {
		return nil
	}
	t.passes++

	type due struct {
		r     *record
		value any
	}
	var pending []due
	for _, r := range t.records {
		var value any
		if r.key != nil {
			value = r.key()
		}
		switch {
		case !r.ran:
		case r.key == nil:
			continue
		case cmp.Equal(value, r.prev):
			continue
		}
		pending = append(pending, due{r: r, value: value})
	}

	for _, d := range pending {
		if d.r.cleanup != nil {
			cleanup := d.r.cleanup
			d.r.cleanup = nil
			cleanup()
		}
	}

	ran := make([]string, 0, len(pending))
	for _, d := range pending {
		d.r.prev = d.value
		d.r.ran = true
		d.r.cleanup = d.r.effect()
		ran = append(ran, d.r.name)
	}
	return ran
}

// Dispose runs every outstanding cleanup in declaration order. After
// Dispose the table never runs anything again. Dispose is idempotent.
func (t *Table) Dispose() {
	if t.disposed {
		return
	}
	t.disposed = true
	for _, r := range t.records {
		if r.cleanup == nil {
			continue
		}
		cleanup := r.cleanup
		r.cleanup = nil
		cleanup()
	}
	t.records = nil
}

// Disposed reports whether Dispose has been called.
func (t *Table) Disposed() bool {
	return t.disposed
}

// Passes returns how many render passes have been evaluated.
func (t *Table) Passes() int {
	return t.passes
}
