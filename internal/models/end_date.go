package models

import (
	"encoding/json"
	"time"
)

// EndDate is the wire form of a ban end date. Besides RFC 3339 it accepts
// ISO 8601 values without a zone offset, which are read as UTC.
type EndDate struct {
	time.Time
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses an RFC 3339 or zone-less ISO 8601 date-time.
func ParseTimestamp(field, raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, NewValidationError(field, raw, field+" must be an ISO 8601 date-time")
}

func (t EndDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.UTC().Format(time.RFC3339Nano))
}

func (t *EndDate) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return NewValidationError("end_date", string(b), "end_date must be an ISO 8601 date-time string")
	}
	parsed, err := ParseTimestamp("end_date", raw)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}
