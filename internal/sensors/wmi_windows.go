//go:build windows

package sensors

import "github.com/yusufpapurcu/wmi"

type thermalZone struct {
	CurrentTemperature uint32
}

// vendorCPUTemperature reads the ACPI thermal zone via WMI. The zone
// reports tenths of Kelvin; the hottest zone wins. Returns nil when the
// query fails, which is common without admin privileges.
func vendorCPUTemperature() *float64 {
	var zones []thermalZone
	err := wmi.QueryNamespace(
		"SELECT CurrentTemperature FROM MSAcpi_ThermalZoneTemperature",
		&zones,
		`root\WMI`,
	)
	if err != nil || len(zones) == 0 {
		return nil
	}

	var best *float64
	for _, z := range zones {
		celsius := float64(z.CurrentTemperature)/10.0 - 273.15
		if best == nil || celsius > *best {
			c := celsius
			best = &c
		}
	}
	return best
}
