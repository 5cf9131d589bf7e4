package utils

import "fmt"

// ToString converts various types to string. Upstream reservation payloads
// carry numbers, booleans, and strings interchangeably, so every value read
// from them goes through here.
func ToString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case float64:
		// JSON numbers decode as float64; render integral values without
		// a trailing ".0" so remote IDs round-trip cleanly.
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
