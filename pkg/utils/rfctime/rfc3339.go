package rfctime

import (
	"bytes"
	"encoding/json"
	"time"
)

// Format string for date-time in RFC3339, disallowing Z as time-offset.
//
// Use it to stringify time.Time forcing timezone offset not to use "Z".
const RFC3339DateTimeFormat string = "2006-01-02T15:04:05.999-07:00"

// Format string for date-time in RFC3339, allowing Z as time-offset.
const RFC3339DateTimeFormatZ string = time.RFC3339Nano

// The following formats are used to parse abbreviated forms of RFC3339 date-time.
const (
	RFC3339DateSec       = "2006-01-02T15:04:05"
	RFC3339DateSecZ      = "2006-01-02T15:04:05Z07:00"
	RFC3339DateSecSpace  = "2006-01-02 15:04:05"
	RFC3339DateSecZSpace = "2006-01-02 15:04:05Z07:00"

	RFC3339DateMin      = "2006-01-02T15:04"
	RFC3339DateMinZ     = "2006-01-02T15:04Z07:00"
	RFC3339DateMinSpace = "2006-01-02 15:04"

	RFC3339DateOnly  = "2006-01-02"
	RFC3339DateOnlyZ = "2006-01-02Z07:00"
)

// date-time in https://www.ietf.org/rfc/rfc3339.txt .
// this is known as a subset of ISO8601 extended format.
//
// This type is useful to interchange timestamps via network/file.
type RFC3339 time.Time

func New(t time.Time) RFC3339 {
	return RFC3339(t)
}

func (t RFC3339) Time() time.Time {
	return time.Time(t)
}

func (t RFC3339) Equal(other RFC3339) bool {
	return t.Time().Equal(other.Time())
}

func (t RFC3339) String() string {
	return time.Time(t).Format(RFC3339DateTimeFormat)
}

func (t RFC3339) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *RFC3339) UnmarshalJSON(b []byte) error {
	var s string
	dec := json.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseRFC3339DateTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Parse a strict RFC3339 date-time expression.
func ParseRFC3339DateTime(s string) (RFC3339, error) {
	t, err := time.Parse(RFC3339DateTimeFormatZ, s)
	if err != nil {
		return *new(RFC3339), err
	}
	return RFC3339(t), nil
}

// ParseLooseRFC3339 parses s, also accepting abbreviated forms
// (seconds, minutes or date only; "T" or space as the delimiter).
// When the time offset is omitted, the local timezone is assumed.
func ParseLooseRFC3339(s string) (RFC3339, error) {
	withZone := []string{
		RFC3339DateTimeFormatZ,
		RFC3339DateSecZ, RFC3339DateSecZSpace,
		RFC3339DateMinZ,
		RFC3339DateOnlyZ,
	}
	for _, format := range withZone {
		if t, err := time.Parse(format, s); err == nil {
			return RFC3339(t), nil
		}
	}

	withoutZone := []string{
		RFC3339DateSec, RFC3339DateSecSpace,
		RFC3339DateMin, RFC3339DateMinSpace,
		RFC3339DateOnly,
	}
	var lastErr error
	for _, format := range withoutZone {
		t, err := time.ParseInLocation(format, s, time.Local)
		if err == nil {
			return RFC3339(t), nil
		}
		lastErr = err
	}
	return RFC3339{}, lastErr
}
