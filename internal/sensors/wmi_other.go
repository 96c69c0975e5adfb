//go:build !windows

package sensors

// vendorCPUTemperature has no non-Windows implementation; the generic
// sensor path covers Linux and macOS.
func vendorCPUTemperature() *float64 {
	return nil
}
