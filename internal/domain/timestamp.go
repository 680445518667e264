package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Timestamp is a date/time field that may be absent or malformed upstream.
// Decoding never fails: anything that cannot be parsed becomes an invalid
// Timestamp, which the filter engine treats as "no match" and sorts oldest.
type Timestamp struct {
	Time  time.Time
	Valid bool

	// Floating is set when the source carried no UTC offset. Its wall clock
	// belongs to the dashboard's time zone, not to UTC.
	Floating bool
}

// LocalLayout is the datetime-local layout used by the dashboard forms.
const LocalLayout = "2006-01-02T15:04:05"

// DayLayout is the calendar-day key layout.
const DayLayout = "2006-01-02"

var offsetLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
}

var floatingLayouts = []string{
	LocalLayout,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	DayLayout,
}

// ParseTimestamp parses s with the layouts seen in upstream payloads.
// Values without an offset are read in loc (UTC when loc is nil).
func ParseTimestamp(s string, loc *time.Location) Timestamp {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t, Valid: true}
		}
	}
	for _, layout := range floatingLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return Timestamp{Time: t, Valid: true, Floating: true}
		}
	}
	return Timestamp{}
}

// In returns the instant t denotes in loc. A floating value keeps its wall
// clock and is pinned to loc; a value with an offset is converted.
func (t Timestamp) In(loc *time.Location) Timestamp {
	if !t.Valid {
		return t
	}
	if loc == nil {
		loc = time.UTC
	}
	if !t.Floating {
		t.Time = t.Time.In(loc)
		return t
	}
	y, mo, d := t.Time.Date()
	h, mi, sec := t.Time.Clock()
	t.Time = time.Date(y, mo, d, h, mi, sec, t.Time.Nanosecond(), loc)
	return t
}

// NewTimestamp wraps t; the zero time is invalid.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t, Valid: !t.IsZero()}
}

// Day returns the calendar-day key ("2006-01-02") or "" when invalid.
func (t Timestamp) Day() string {
	if !t.Valid {
		return ""
	}
	return t.Time.Format(DayLayout)
}

// UnmarshalJSON accepts strings in any known layout, null, or junk.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	*t = Timestamp{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	*t = ParseTimestamp(s, nil)
	return nil
}

// MarshalJSON writes RFC3339 or null.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}
