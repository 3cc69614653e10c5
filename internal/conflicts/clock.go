// ABOUTME: Parses wall-clock labels and day lists used by course meeting schedules.
// ABOUTME: Supports 12-hour labels with a meridiem and 24-hour labels, with or without seconds.

package conflicts

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MinutesPerDay bounds every parsed clock value.
const MinutesPerDay = 24 * 60

var (
	// ErrUnparseableTime indicates a clock label in none of the accepted layouts.
	ErrUnparseableTime = errors.New("unparseable time")
	// ErrNoDays indicates a schedule without meeting days.
	ErrNoDays = errors.New("no meeting days")
	// ErrUnknownDay indicates a day token that is not a weekday name.
	ErrUnknownDay = errors.New("unknown day")
)

var clockLayouts = []string{
	"3:04:05 PM",
	"3:04 PM",
	"3:04:05PM",
	"3:04PM",
	"3 PM",
	"3PM",
	"15:04:05",
	"15:04",
}

// ParseClock converts a label such as "9:30:00 AM" or "13:15" to minutes after midnight.
// Seconds are truncated.
func ParseClock(label string) (int, error) {
	s := strings.ToUpper(strings.TrimSpace(label))
	s = strings.ReplaceAll(s, ".", "")
	if s == "" {
		return 0, fmt.Errorf("%w: empty label", ErrUnparseableTime)
	}
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.Hour()*60 + t.Minute(), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnparseableTime, label)
}

// FormatClock renders minutes after midnight as a 12-hour label.
func FormatClock(minute int) string {
	t := time.Date(0, 1, 1, minute/60, minute%60, 0, 0, time.UTC)
	return t.Format("3:04 PM")
}

var dayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sun":       time.Sunday,
	"mon":       time.Monday,
	"tue":       time.Tuesday,
	"tues":      time.Tuesday,
	"wed":       time.Wednesday,
	"thu":       time.Thursday,
	"thur":      time.Thursday,
	"thurs":     time.Thursday,
	"fri":       time.Friday,
	"sat":       time.Saturday,
}

// ParseDays splits a whitespace or comma separated list of weekday names.
// Repeated days collapse to one.
func ParseDays(tokens []string) ([]time.Weekday, error) {
	var out []time.Weekday
	seen := make(map[time.Weekday]bool)
	for _, tok := range tokens {
		for _, part := range strings.FieldsFunc(tok, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n'
		}) {
			d, ok := dayNames[strings.ToLower(part)]
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnknownDay, part)
			}
			if !seen[d] {
				seen[d] = true
				out = append(out, d)
			}
		}
	}
	if len(out) == 0 {
		return nil, ErrNoDays
	}
	return out, nil
}
