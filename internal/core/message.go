package core

import (
	"encoding/json"

	"github.com/dkeye/Meet/internal/domain"
)

// Message is one inbound client command.
type Message struct {
	Type   string          `json:"type"`
	Room   domain.RoomID   `json:"room,omitempty"`
	Target domain.ConnID   `json:"target,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Decode unmarshals Data into v. Empty data leaves v untouched.
func (m Message) Decode(v any) error {
	if len(m.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(m.Data, v); err != nil {
		return domain.Errorf(domain.CodeInvalidParameter, "bad %s payload", m.Type)
	}
	return nil
}

// Event is one outbound message to a client.
type Event struct {
	Type string        `json:"type"`
	Room domain.RoomID `json:"room,omitempty"`
	Data any           `json:"data,omitempty"`
}

func (e Event) Encode() (Frame, error) {
	return json.Marshal(e)
}

type ErrorData struct {
	Code    domain.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

func ErrorEvent(err error) Event {
	return Event{Type: EvError, Data: ErrorData{Code: domain.CodeOf(err), Message: err.Error()}}
}
