package engine

import "fmt"

// Strategy selects how multi-horizon forecasts are produced.
type Strategy int

const (
	// Recursive trains one one-step model and walks forward, feeding each
	// prediction back as a lag input. Error compounds across steps.
	Recursive Strategy = iota
	// Direct trains one model per horizon step, each predicting its step
	// directly from observed history.
	Direct
	// Ensemble averages the direct and recursive predictions per horizon.
	Ensemble
)

var strategyNames = map[Strategy]string{
	Recursive: "recursive",
	Direct:    "direct",
	Ensemble:  "ensemble",
}

func (s Strategy) String() string { return strategyNames[s] }

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	_, ok := strategyNames[s]
	return ok
}

// ParseStrategy parses a strategy name.
func ParseStrategy(name string) (Strategy, error) {
	for s, n := range strategyNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown strategy %q", name)
}
