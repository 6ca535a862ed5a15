package ranges

import (
	"fmt"
	"time"

	"github.com/panelcast/panelcast/internal/panel"
)

// EntityRange holds one entity's future timestamp grid in increasing order.
type EntityRange struct {
	Entity string
	Times  []time.Time
}

// Grid is an ordered set of per-entity future ranges. Entity order follows
// the order in which ranges were built (canonical frame order).
type Grid []EntityRange

// Keys flattens the grid into (entity, time) keys in grid order.
func (g Grid) Keys() []panel.Key {
	var keys []panel.Key
	for _, er := range g {
		for _, ts := range er.Times {
			keys = append(keys, panel.Key{Entity: er.Entity, Time: ts})
		}
	}
	return keys
}

// FutureRange returns exactly fh timestamps for one entity, starting one
// frequency step after last.
func FutureRange(last time.Time, freq Frequency, fh int) ([]time.Time, error) {
	if fh <= 0 {
		return nil, fmt.Errorf("forecast horizon must be positive, got %d", fh)
	}
	if !freq.Valid() {
		return nil, fmt.Errorf("invalid frequency %v", freq)
	}
	out := make([]time.Time, fh)
	cur := last
	for i := 0; i < fh; i++ {
		cur = freq.Next(cur)
		out[i] = cur
	}
	return out, nil
}

// FutureGrid builds each entity's future range anchored to that entity's own
// last observed timestamp. Entities keep the canonical order of lastTimes.
func FutureGrid(entities []string, lastTimes map[string]time.Time, freq Frequency, fh int) (Grid, error) {
	grid := make(Grid, 0, len(entities))
	for _, entity := range entities {
		last, ok := lastTimes[entity]
		if !ok {
			return nil, fmt.Errorf("no last observed timestamp for entity %q", entity)
		}
		times, err := FutureRange(last, freq, fh)
		if err != nil {
			return nil, fmt.Errorf("entity %q: %w", entity, err)
		}
		grid = append(grid, EntityRange{Entity: entity, Times: times})
	}
	return grid, nil
}
