// Package utils holds small shared helpers with no domain dependencies.
package utils

// ToFloat64 converts a loosely typed numeric cell to float64. JSON decoding
// yields float64 for all numbers, but CSV loaders and manual callers may hand
// us any integer width.
func ToFloat64(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	default:
		return 0, false
	}
}
