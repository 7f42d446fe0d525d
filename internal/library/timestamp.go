package library

import (
	"encoding/json"
	"fmt"
	"time"
)

// wireTime is the datastore's timestamp form: UTC ISO-8601 with
// millisecond precision.
const wireTime = "2006-01-02T15:04:05.000Z"

// Timestamp is a time.Time that marshals in the datastore's wire form
// and round-trips JSON null for its zero value, matching records that
// have never been touched.
type Timestamp struct {
	time.Time
}

func now() Timestamp {
	return Timestamp{time.Now().UTC()}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.UTC().Format(wireTime) + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		t.Time = time.Time{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse timestamp: %w", err)
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	t.Time = parsed.UTC()
	return nil
}
