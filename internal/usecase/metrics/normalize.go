package metrics

// Plausible physical range for a temperature reading in °C. Values outside
// are sensor artifacts (commonly mis-scaled raw registers) and are
// discarded, never clamped.
const (
	minPlausibleTemp = -30.0
	maxPlausibleTemp = 200.0
)

// NormalizeTemperature validates a reading against the plausible range.
// Returns nil for absent or out-of-range values.
func NormalizeTemperature(value *float64) *float64 {
	if value == nil {
		return nil
	}
	if *value < minPlausibleTemp || *value > maxPlausibleTemp {
		return nil
	}
	return value
}
