// Package title holds the display title shared by every view in the
// process. The last writer wins and there is no read-back contract beyond
// Get.
package title

import "sync"

// Display is a process wide display title.
type Display struct {
	mu          sync.Mutex
	value       string
	subscribers map[int]func(string)
	nextID      int
}

// New creates a display with an initial title.
func New(initial string) *Display {
	return &Display{
		value:       initial,
		subscribers: map[int]func(string){},
	}
}

// Set replaces the title and notifies subscribers, in subscription order.
// Subscribers are called outside the lock so they may call Get.
func (d *Display) Set(v string) {
	d.mu.Lock()
	d.value = v
	subs := make([]func(string), 0, len(d.subscribers))
	for id := 0; id < d.nextID; id++ {
		if fn, ok := d.subscribers[id]; ok {
			subs = append(subs, fn)
		}
	}
	d.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}

// Get returns the current title.
func (d *Display) Get() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value
}

// Subscribe registers fn to be called after every Set. The returned func
// removes the subscription.
func (d *Display) Subscribe(fn func(string)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.subscribers == nil {
		d.subscribers = map[int]func(string){}
	}
	id := d.nextID
	d.nextID++
	d.subscribers[id] = fn
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.subscribers, id)
	}
}
