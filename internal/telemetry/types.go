package telemetry

import (
	"bytes"
	"encoding/json"
	"time"
)

// Number is a JSON number that tolerates null, absence, and non-numeric
// values. Anything that isn't a finite JSON number decodes as invalid
// instead of failing the whole payload.
type Number struct {
	Value float64
	Valid bool
}

// Num returns a valid Number. Handy in tests and fixtures.
func Num(v float64) Number {
	return Number{Value: v, Valid: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] == 'n' {
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		// Wrong type: treat as missing.
		return nil
	}
	*n = Number{Value: f, Valid: true}
	return nil
}

// MarshalJSON implements json.Marshaler; invalid numbers encode as null.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Timestamp is the server's opaque event timestamp. It is only ever compared
// for equality, so it keeps the compact JSON encoding as its key.
type Timestamp struct {
	key string
}

// TS builds a Timestamp from a JSON literal such as `1712.5` or `"abc"`.
func TS(literal string) Timestamp {
	var t Timestamp
	_ = t.UnmarshalJSON([]byte(literal))
	return t
}

// UnmarshalJSON implements json.Unmarshaler. Null and the falsy literals
// (0, "", false) mean "no timestamp".
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	t.key = ""
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return nil
	}
	switch s := buf.String(); s {
	case "", "null", "0", `""`, "false":
		return nil
	default:
		t.key = s
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.key == "" {
		return []byte("null"), nil
	}
	return []byte(t.key), nil
}

// Present reports whether the server supplied a usable timestamp.
func (t Timestamp) Present() bool {
	return t.key != ""
}

// Key returns the comparison key.
func (t Timestamp) Key() string {
	return t.key
}

// Event is the payload of GET /api/last_event?id=<vehicle>.
type Event struct {
	Vehicle           string    `json:"vehicle"`
	Distance          Number    `json:"distance_m"`
	Bearing           Number    `json:"bearing"`
	Direction         string    `json:"direction"`
	TS                Timestamp `json:"ts"`
	Status            string    `json:"status"`
	PriorityTriggered bool      `json:"priority_triggered"`

	// Raw is the body as received, shown in the detail view.
	Raw json.RawMessage `json:"-"`
}

// ControllerState is the payload of GET /api/state.
type ControllerState struct {
	Mode      string `json:"mode"`
	Direction string `json:"direction"`

	Raw json.RawMessage `json:"-"`
}

// Snapshot is the joined result of one successful fetch cycle.
type Snapshot struct {
	// IDs are the vehicle ids passed to Fetch; Events is aligned with them.
	IDs        []string
	Events     []Event
	Controller ControllerState
	FetchedAt  time.Time
	Elapsed    time.Duration
}

// Event returns the event for a vehicle id.
func (s *Snapshot) Event(id string) (Event, bool) {
	if s == nil {
		return Event{}, false
	}
	for i, v := range s.IDs {
		if v == id && i < len(s.Events) {
			return s.Events[i], true
		}
	}
	return Event{}, false
}
