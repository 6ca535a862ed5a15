// Package ranges generates per-entity future timestamp grids. Each entity's
// grid is anchored to its own last observed timestamp and advanced by a
// frequency-aware calendar step, so month lengths and weekend-skipping
// business days are handled correctly rather than by fixed-duration
// arithmetic.
package ranges

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Unit is the calendar unit of a Frequency step.
type Unit int

const (
	// UnitIndex steps an integer-indexed panel by one position. Integer
	// indices are encoded as seconds since the Unix epoch (see panel.IndexTime).
	UnitIndex Unit = iota
	UnitSecond
	UnitMinute
	UnitHour
	UnitDay
	UnitWeek
	UnitMonth
	UnitQuarter
	UnitYear
	// UnitBusinessDay steps by calendar days, skipping Saturdays and Sundays.
	UnitBusinessDay
)

var unitNames = map[Unit]string{
	UnitIndex:       "i",
	UnitSecond:      "s",
	UnitMinute:      "m",
	UnitHour:        "h",
	UnitDay:         "d",
	UnitWeek:        "w",
	UnitMonth:       "mo",
	UnitQuarter:     "q",
	UnitYear:        "y",
	UnitBusinessDay: "bd",
}

// Frequency describes the spacing between consecutive observations, e.g.
// {N: 15, Unit: UnitMinute} for quarter-hourly data.
type Frequency struct {
	N    int
	Unit Unit
}

var freqPattern = regexp.MustCompile(`^(\d+)(i|s|m|h|d|w|mo|q|y|bd)$`)

// Parse parses a frequency shorthand: "1i", "30s", "15m", "1h", "1d", "1bd",
// "1w", "1mo", "1q", "1y".
func Parse(s string) (Frequency, error) {
	m := freqPattern.FindStringSubmatch(s)
	if m == nil {
		return Frequency{}, fmt.Errorf("invalid frequency %q", s)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return Frequency{}, fmt.Errorf("invalid frequency multiple in %q", s)
	}
	for unit, name := range unitNames {
		if name == m[2] {
			return Frequency{N: n, Unit: unit}, nil
		}
	}
	return Frequency{}, fmt.Errorf("invalid frequency unit in %q", s)
}

func (f Frequency) String() string {
	return fmt.Sprintf("%d%s", f.N, unitNames[f.Unit])
}

// Valid reports whether the frequency has a positive multiple and known unit.
func (f Frequency) Valid() bool {
	_, ok := unitNames[f.Unit]
	return ok && f.N > 0
}

// Next returns the timestamp one frequency step after t.
func (f Frequency) Next(t time.Time) time.Time {
	switch f.Unit {
	case UnitIndex, UnitSecond:
		return t.Add(time.Duration(f.N) * time.Second)
	case UnitMinute:
		return t.Add(time.Duration(f.N) * time.Minute)
	case UnitHour:
		return t.Add(time.Duration(f.N) * time.Hour)
	case UnitDay:
		return t.AddDate(0, 0, f.N)
	case UnitWeek:
		return t.AddDate(0, 0, 7*f.N)
	case UnitMonth:
		return t.AddDate(0, f.N, 0)
	case UnitQuarter:
		return t.AddDate(0, 3*f.N, 0)
	case UnitYear:
		return t.AddDate(f.N, 0, 0)
	case UnitBusinessDay:
		out := t
		for i := 0; i < f.N; i++ {
			out = nextBusinessDay(out)
		}
		return out
	default:
		return t
	}
}

func nextBusinessDay(t time.Time) time.Time {
	out := t.AddDate(0, 0, 1)
	for out.Weekday() == time.Saturday || out.Weekday() == time.Sunday {
		out = out.AddDate(0, 0, 1)
	}
	return out
}
