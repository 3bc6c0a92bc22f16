package live

import "encoding/json"

// Live events.
const (
	EventError   = "err"
	EventPatch   = "patch"
	EventAck     = "ack"
	EventConnect = "connect"
	EventTitle   = "title"
	EventLog     = "log"
)

// Event messages that are sent and received by the
// socket.
type Event struct {
	T       string          `json:"t"`
	ID      int             `json:"i,omitempty"`
	Data    json.RawMessage `json:"d,omitempty"`
	Payload any             `json:"-"`
}

// Params extract params from inbound message.
func (e Event) Params() (Params, error) {
	if len(e.Data) == 0 {
		return Params{}, nil
	}
	var p Params
	if err := json.Unmarshal(e.Data, &p); err != nil {
		return nil, ErrMessageMalformed
	}
	if p == nil {
		return Params{}, nil
	}
	return p, nil
}

// EventConfig configures an event.
type EventConfig func(e *Event) error

// WithID sets an ID on an event.
func WithID(ID int) EventConfig {
	return func(e *Event) error {
		e.ID = ID
		return nil
	}
}

// ErrorEvent describes an event error.
type ErrorEvent struct {
	Source Event  `json:"source"`
	Err    string `json:"err"`
}

// ConsoleMessage is printed to the client console, Style being a CSS
// string applied to the text.
type ConsoleMessage struct {
	Text  string `json:"text"`
	Style string `json:"style,omitempty"`
}
