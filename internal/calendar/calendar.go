// Package calendar derives categorical seasonality columns from timestamps.
// Effects are pure functions of a timestamp, so the same effect set can be
// applied to observed history at fit time and to a future grid at predict
// time with identical encodings.
package calendar

import (
	"fmt"

	"time"

	"github.com/panelcast/panelcast/internal/panel"
)

// Effect identifies one calendar-derived column.
type Effect int

const (
	Weekday Effect = iota
	Day
	Week
	Month
	Quarter
	Hour
)

var effectNames = map[Effect]string{
	Weekday: "weekday",
	Day:     "day",
	Week:    "week",
	Month:   "month",
	Quarter: "quarter",
	Hour:    "hour",
}

func (e Effect) String() string { return effectNames[e] }

// Valid reports whether e is a known effect.
func (e Effect) Valid() bool {
	_, ok := effectNames[e]
	return ok
}

// ParseEffect parses an effect name like "weekday" or "month".
func ParseEffect(name string) (Effect, error) {
	for e, n := range effectNames {
		if n == name {
			return e, nil
		}
	}
	return 0, fmt.Errorf("unknown calendar effect %q", name)
}

// ParseEffects parses a list of effect names.
func ParseEffects(names []string) ([]Effect, error) {
	effects := make([]Effect, 0, len(names))
	for _, n := range names {
		e, err := ParseEffect(n)
		if err != nil {
			return nil, err
		}
		effects = append(effects, e)
	}
	return effects, nil
}

// Columns returns the column name for each effect, in order.
func Columns(effects []Effect) []string {
	cols := make([]string, len(effects))
	for i, e := range effects {
		cols[i] = "calendar__" + e.String()
	}
	return cols
}

// Value encodes a single effect for a timestamp. Weekday is 0-6 starting
// Monday, week is the ISO week number, the rest follow time.Time.
func Value(t time.Time, e Effect) float64 {
	switch e {
	case Weekday:
		return float64((int(t.Weekday()) + 6) % 7)
	case Day:
		return float64(t.Day())
	case Week:
		_, week := t.ISOWeek()
		return float64(week)
	case Month:
		return float64(int(t.Month()))
	case Quarter:
		return float64((int(t.Month())-1)/3 + 1)
	case Hour:
		return float64(t.Hour())
	default:
		return 0
	}
}

// Values encodes every effect for a timestamp, aligned with Columns.
func Values(t time.Time, effects []Effect) []float64 {
	vals := make([]float64, len(effects))
	for i, e := range effects {
		vals[i] = Value(t, e)
	}
	return vals
}

// Join appends one categorical column per effect to the panel, computed
// from each row's timestamp.
func Join(f *panel.Frame, effects []Effect) (*panel.Frame, error) {
	if len(effects) == 0 {
		return f, nil
	}
	for _, e := range effects {
		if !e.Valid() {
			return nil, fmt.Errorf("unknown calendar effect %d", e)
		}
	}

	calCols := Columns(effects)
	cols := append(f.ValueCols(), calCols...)

	src := f.Rows()
	rows := make([]panel.Row, len(src))
	for i, r := range src {
		vals := make([]float64, 0, len(r.Values)+len(effects))
		vals = append(vals, r.Values...)
		vals = append(vals, Values(r.Time, effects)...)
		rows[i] = panel.Row{Entity: r.Entity, Time: r.Time, Values: vals}
	}

	joined, err := f.WithColumns(cols, rows)
	if err != nil {
		return nil, err
	}
	return joined.MarkCategorical(calCols...), nil
}
