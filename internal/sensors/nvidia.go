package sensors

import (
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// nvidiaQuery runs one nvidia-smi query and returns the maximum value
// across all devices, or nil when the tool or driver is absent. The
// management CLI is the portable way to reach NVML without a cgo binding.
func nvidiaQuery(ctx context.Context, field string) *float64 {
	if _, err := exec.LookPath("nvidia-smi"); err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "nvidia-smi",
		"--query-gpu="+field, "--format=csv,noheader,nounits")
	output, err := cmd.Output()
	if err != nil {
		return nil
	}

	var best *float64
	for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		value, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
		if err != nil {
			continue
		}
		if best == nil || value > *best {
			v := value
			best = &v
		}
	}
	return best
}

func nvidiaGPUUsage(ctx context.Context) *float64 {
	return nvidiaQuery(ctx, "utilization.gpu")
}

func nvidiaGPUTemperature(ctx context.Context) *float64 {
	return nvidiaQuery(ctx, "temperature.gpu")
}
