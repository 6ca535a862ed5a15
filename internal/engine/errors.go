package engine

import (
	"fmt"
	"strings"
)

// InsufficientDataError reports a required horizon left with zero training
// rows for some entity after insufficient-history rows were dropped.
type InsufficientDataError struct {
	Entity  string
	Horizon int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("entity %q has no training rows for horizon %d", e.Entity, e.Horizon)
}

// ConfigError reports an incompatible strategy/parameter combination.
type ConfigError struct {
	Reason  string
	Columns []string
}

func (e *ConfigError) Error() string {
	if len(e.Columns) == 0 {
		return e.Reason
	}
	return fmt.Sprintf("%s (columns: %s)", e.Reason, strings.Join(e.Columns, ", "))
}
