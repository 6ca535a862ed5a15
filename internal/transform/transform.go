// Package transform provides algebraically invertible preprocessing for
// panel data. A transform remembers per-entity state during Forward so that
// Invert can map transformed values back to original scale exactly. State is
// owned by the transform instance that produced it, is keyed per entity with
// no cross-entity sharing, and is read-only once Forward returns.
package transform

import (
	"fmt"
	"time"

	"github.com/panelcast/panelcast/internal/panel"
)

// Transform maps a panel forward into transformed space and back. Invert
// requires the state captured by a prior Forward on the same instance.
type Transform interface {
	Forward(f *panel.Frame) (*panel.Frame, error)
	Invert(f *panel.Frame) (*panel.Frame, error)
}

// DomainError reports a value outside a transform's valid domain, e.g. a
// non-positive input to the Box-Cox power transform.
type DomainError struct {
	Entity string
	Column string
	Value  float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("value %v out of transform domain (entity %q, column %q)",
		e.Value, e.Entity, e.Column)
}

// InsufficientHistoryError reports an Invert call over positions the
// retained per-entity state does not cover.
type InsufficientHistoryError struct {
	Entity string
	Time   time.Time
	Reason string
}

func (e *InsufficientHistoryError) Error() string {
	msg := fmt.Sprintf("insufficient history for entity %q", e.Entity)
	if !e.Time.IsZero() {
		msg += " at " + e.Time.Format(time.RFC3339)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}
