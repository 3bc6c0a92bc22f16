package live

import "errors"

var (
	// ErrNoRenderer returned when no renderer has been set on the handler.
	ErrNoRenderer = errors.New("no renderer has been set on the handler")

	// ErrNoEventHandler returned when a handler has no event handler for that event.
	ErrNoEventHandler = errors.New("view missing event handler")

	// ErrMessageMalformed returned when a message could not be parsed correctly.
	ErrMessageMalformed = errors.New("message malformed")
)
