// Package feature turns per-entity series history into supervised-learning
// feature rows: lagged values and rolling-window statistics, aligned so a
// row anchored at time t only ever references observations strictly before
// the forecast origin. Rows lacking the required history are dropped, never
// null-filled.
package feature

import (
	"fmt"
)

// Stat is a rolling-window statistic.
type Stat int

const (
	StatMean Stat = iota
	StatStd
	StatMin
	StatMax
	StatSum
)

var statNames = map[Stat]string{
	StatMean: "mean",
	StatStd:  "std",
	StatMin:  "min",
	StatMax:  "max",
	StatSum:  "sum",
}

func (s Stat) String() string { return statNames[s] }

// ParseStat parses a statistic name.
func ParseStat(name string) (Stat, error) {
	for s, n := range statNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown window statistic %q", name)
}

// Window requests one rolling statistic over a trailing window of Size
// observations.
type Window struct {
	Size int
	Stat Stat
}

// Spec declares the lag offsets and rolling windows to build. All lag
// offsets are in observation-count units per entity and must be >= 1.
type Spec struct {
	Lags    []int
	Windows []Window
}

// Validate checks lag and window constraints.
func (s Spec) Validate() error {
	if len(s.Lags) == 0 && len(s.Windows) == 0 {
		return fmt.Errorf("feature spec requests no lags and no windows")
	}
	for _, k := range s.Lags {
		if k < 1 {
			return fmt.Errorf("lag offsets must be >= 1, got %d", k)
		}
	}
	for _, w := range s.Windows {
		if w.Size < 1 {
			return fmt.Errorf("window size must be >= 1, got %d", w.Size)
		}
		if _, ok := statNames[w.Stat]; !ok {
			return fmt.Errorf("unknown window statistic %d", w.Stat)
		}
	}
	return nil
}

// MaxLag returns the largest requested lag, or 0.
func (s Spec) MaxLag() int {
	max := 0
	for _, k := range s.Lags {
		if k > max {
			max = k
		}
	}
	return max
}

// MaxWindow returns the largest requested window size, or 0.
func (s Spec) MaxWindow() int {
	max := 0
	for _, w := range s.Windows {
		if w.Size > max {
			max = w.Size
		}
	}
	return max
}

// MinHistory returns the number of past observations a feature row needs
// when its target sits offset steps ahead of the forecast origin.
func (s Spec) MinHistory(offset int) int {
	need := s.MaxLag() + offset - 1
	if w := s.MaxWindow() + offset - 1; w > need {
		need = w
	}
	return need
}
