package sidecar

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/pixoolab/divoom-bridge/internal/domain"
)

// Payload mirrors the sidecar's GET / response. Absent or null fields mean
// the sidecar did not measure that value.
type Payload struct {
	CPUUsage       *float64           `json:"cpu_usage"`
	CPUTemperature *float64           `json:"cpu_temperature"`
	GPUUsage       *float64           `json:"gpu_usage"`
	GPUTemperature *float64           `json:"gpu_temperature"`
	MemoryTotal    *uint64            `json:"memory_total"`
	MemoryUsed     *uint64            `json:"memory_used"`
	Disks          []domain.DiskUsage `json:"disks"`
}

// Client talks to the telemetry sidecar on the local loopback. Every call
// carries a short timeout so a hung sidecar can never stall the caller.
type Client struct {
	port int
	http *http.Client
}

func NewClient(port int) *Client {
	return &Client{
		port: port,
		http: &http.Client{Timeout: 500 * time.Millisecond},
	}
}

func (c *Client) Port() int {
	return c.port
}

// Metrics fetches the current telemetry payload. Any transport failure,
// non-2xx status or malformed body is returned as an error; the caller
// treats all of them as "sidecar absent for this call".
func (c *Client) Metrics(ctx context.Context) (*Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/"), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("sidecar returned status %d", resp.StatusCode)
	}

	var payload Payload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("parse sidecar response: %w", err)
	}
	return &payload, nil
}

// Shutdown asks the sidecar to terminate gracefully. The response body is
// irrelevant; only transport success matters.
func (c *Client) Shutdown(ctx context.Context) error {
	shutdownClient := &http.Client{Timeout: 2 * time.Second}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/shutdown"), nil)
	if err != nil {
		return err
	}

	resp, err := shutdownClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// Alive probes the sidecar port with a bare TCP dial.
func (c *Client) Alive(timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", c.addr(), timeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func (c *Client) url(path string) string {
	return fmt.Sprintf("http://127.0.0.1:%d%s", c.port, path)
}

func (c *Client) addr() string {
	return fmt.Sprintf("127.0.0.1:%d", c.port)
}
