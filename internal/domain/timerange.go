package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ClockTime is a wall-clock time of day with second precision, stored as
// seconds since midnight. It carries no date; bookings are scoped to the
// single day their venue belongs to.
type ClockTime int

const secondsPerDay = 24 * 60 * 60

// ParseClockTime parses "HH:MM" or "HH:MM:SS" on a 24-hour clock.
func ParseClockTime(s string) (ClockTime, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q is not HH:MM", ErrInvalidRange, s)
	}
	limits := []int{23, 59, 59}
	var vals [3]int
	for i, p := range parts {
		if len(p) != 2 {
			return 0, fmt.Errorf("%w: %q is not HH:MM", ErrInvalidRange, s)
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > limits[i] {
			return 0, fmt.Errorf("%w: %q is not a valid time of day", ErrInvalidRange, s)
		}
		vals[i] = n
	}
	return ClockTime(vals[0]*3600 + vals[1]*60 + vals[2]), nil
}

// Hour returns the hour component.
func (c ClockTime) Hour() int { return int(c) / 3600 }

// Minute returns the minute component.
func (c ClockTime) Minute() int { return int(c) % 3600 / 60 }

// Second returns the second component.
func (c ClockTime) Second() int { return int(c) % 60 }

// Key returns the zero-padded "HH:MM" form used as the time-slot bucket key.
// Lexicographic order of keys equals chronological order.
func (c ClockTime) Key() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// String returns "HH:MM", or "HH:MM:SS" when seconds are set.
func (c ClockTime) String() string {
	if c.Second() != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", c.Hour(), c.Minute(), c.Second())
	}
	return c.Key()
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Value stores the time as a Postgres TIME literal.
func (c ClockTime) Value() (driver.Value, error) {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour(), c.Minute(), c.Second()), nil
}

// Scan reads a Postgres TIME column, which lib/pq returns as text or time.Time.
func (c *ClockTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*c = ClockTime(v.Hour()*3600 + v.Minute()*60 + v.Second())
		return nil
	case []byte:
		return c.scanString(string(v))
	case string:
		return c.scanString(v)
	default:
		return fmt.Errorf("cannot scan %T into ClockTime", src)
	}
}

func (c *ClockTime) scanString(s string) error {
	// Drop fractional seconds and any zone suffix.
	if i := strings.IndexAny(s, ".+-Z"); i > 0 {
		s = s[:i]
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// TimeRange is a closed-open interval [Start, End) within one day.
type TimeRange struct {
	Start ClockTime `json:"start_time"`
	End   ClockTime `json:"end_time"`
}

// NewTimeRange returns the range [start, end). It fails with ErrInvalidRange
// unless end is strictly after start.
func NewTimeRange(start, end ClockTime) (TimeRange, error) {
	if start < 0 || end > secondsPerDay {
		return TimeRange{}, fmt.Errorf("%w: out of day bounds", ErrInvalidRange)
	}
	if end <= start {
		return TimeRange{}, fmt.Errorf("%w: end %s must be after start %s", ErrInvalidRange, end, start)
	}
	return TimeRange{Start: start, End: end}, nil
}

// ParseTimeRange parses both ends and builds a TimeRange.
func ParseTimeRange(start, end string) (TimeRange, error) {
	s, err := ParseClockTime(start)
	if err != nil {
		return TimeRange{}, err
	}
	e, err := ParseClockTime(end)
	if err != nil {
		return TimeRange{}, err
	}
	return NewTimeRange(s, e)
}

// Overlaps reports whether the two ranges share any instant. Back-to-back
// ranges (one ends exactly when the other starts) do not overlap.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start < other.End && other.Start < r.End
}

// Contains reports whether other lies entirely within r.
func (r TimeRange) Contains(other TimeRange) bool {
	return other.Start >= r.Start && other.End <= r.End
}

// Intersection returns the overlapping part of two ranges, or false when they
// do not overlap.
func (r TimeRange) Intersection(other TimeRange) (TimeRange, bool) {
	if !r.Overlaps(other) {
		return TimeRange{}, false
	}
	return TimeRange{Start: max(r.Start, other.Start), End: min(r.End, other.End)}, true
}

// Duration returns the exact length of the range.
func (r TimeRange) Duration() time.Duration {
	return time.Duration(r.End-r.Start) * time.Second
}

// DurationMinutes returns the whole minutes between start and end.
func (r TimeRange) DurationMinutes() int {
	return int(r.End-r.Start) / 60
}

func (r TimeRange) String() string {
	return r.Start.String() + "-" + r.End.String()
}
