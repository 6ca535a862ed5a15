package panel

import (
	"fmt"
	"time"
)

// SchemaError reports malformed panel input: wrong column layout, unordered
// or duplicate timestamps, non-numeric values. It carries enough context to
// locate the offending row.
type SchemaError struct {
	Reason string
	Entity string
	Column string
	Time   time.Time
}

func (e *SchemaError) Error() string {
	msg := "schema error: " + e.Reason
	if e.Entity != "" {
		msg += fmt.Sprintf(" (entity %q", e.Entity)
		if !e.Time.IsZero() {
			msg += " at " + e.Time.Format(time.RFC3339)
		}
		msg += ")"
	}
	if e.Column != "" {
		msg += fmt.Sprintf(" [column %q]", e.Column)
	}
	return msg
}
