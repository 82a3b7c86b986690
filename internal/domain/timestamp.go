package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// naiveISOLayout matches ISO-8601 timestamps without a zone offset, which the
// ticket API emits for its UTC creation times.
const naiveISOLayout = "2006-01-02T15:04:05.999999999"

// Timestamp decodes both RFC 3339 and zone-less ISO-8601 values. Zone-less
// values are taken as UTC. The string as sent by the API is kept for search
// and re-encoding.
type Timestamp struct {
	time.Time
	raw string
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// UnmarshalJSON implements json.Unmarshaler.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*ts = Timestamp{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.Raw())
}

// Raw returns the value as the API sent it, or RFC 3339 for timestamps built
// in code.
func (ts Timestamp) Raw() string {
	if ts.raw != "" {
		return ts.raw
	}
	return ts.Time.Format(time.RFC3339Nano)
}

// ParseTimestamp parses raw as RFC 3339, falling back to zone-less ISO-8601.
func ParseTimestamp(raw string) (Timestamp, error) {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return Timestamp{Time: t, raw: raw}, nil
	}
	t, err := time.ParseInLocation(naiveISOLayout, raw, time.UTC)
	if err != nil {
		return Timestamp{}, fmt.Errorf("timestamp %q: unrecognized format", raw)
	}
	return Timestamp{Time: t, raw: raw}, nil
}
