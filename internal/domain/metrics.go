package domain

// Metrics is the aggregate system snapshot returned by a single collection
// pass. Optional fields are nil when no source supplied a valid reading;
// callers must treat "no data" and zero as distinct.
type Metrics struct {
	CPUUsage       float64     `json:"cpu_usage"`
	CPUTemperature *float64    `json:"cpu_temperature,omitempty"`
	GPUUsage       *float64    `json:"gpu_usage,omitempty"`
	GPUTemperature *float64    `json:"gpu_temperature,omitempty"`
	MemoryTotal    uint64      `json:"memory_total"`
	MemoryUsed     uint64      `json:"memory_used"`
	Disks          []DiskUsage `json:"disks"`
}

// DiskUsage describes one mounted filesystem.
type DiskUsage struct {
	Name           string  `json:"name"`
	MountPoint     string  `json:"mount_point"`
	TotalSpace     uint64  `json:"total_space"`
	AvailableSpace uint64  `json:"available_space"`
	UsedSpace      uint64  `json:"used_space"`
	UsagePercent   float64 `json:"usage_percent"`
}

// SensorDomain classifies which physical component a temperature sensor
// belongs to.
type SensorDomain string

const (
	SensorCPU   SensorDomain = "cpu"
	SensorGPU   SensorDomain = "gpu"
	SensorOther SensorDomain = "other"
)

// SensorReading is a single labeled temperature sample produced by the
// sensor probe. Readings are transient and never persisted.
type SensorReading struct {
	Label       string
	Domain      SensorDomain
	Temperature float64
}

// Float returns a pointer to v, for filling optional metric fields.
func Float(v float64) *float64 {
	return &v
}
