package divoom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/pixoolab/divoom-bridge/internal/domain"
)

const defaultCommandTimeout = 500 * time.Millisecond

// Client sends commands to a Divoom device's local JSON endpoint. Every
// command is a POST to http://<ip>/post with a Command discriminator field.
type Client struct {
	logger *slog.Logger
	http   *http.Client
	picID  atomic.Uint32
}

func NewClient(logger *slog.Logger) *Client {
	c := &Client{
		logger: logger,
		http:   &http.Client{},
	}
	c.picID.Store(1000)
	return c
}

// Send posts a command with the default timeout and returns the raw
// response body for callers that need fields out of it.
func (c *Client) Send(ctx context.Context, ip string, command map[string]any) (json.RawMessage, error) {
	return c.SendWithTimeout(ctx, ip, command, defaultCommandTimeout)
}

func (c *Client) SendWithTimeout(ctx context.Context, ip string, command map[string]any, timeout time.Duration) (json.RawMessage, error) {
	name, _ := command["Command"].(string)

	body, err := json.Marshal(command)
	if err != nil {
		return nil, domain.ErrDeviceCommand{Command: name, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("http://%s/post", ip), bytes.NewReader(body))
	if err != nil {
		return nil, domain.ErrDeviceCommand{Command: name, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, domain.ErrDeviceCommand{Command: name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.ErrDeviceCommand{Command: name, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.ErrDeviceCommand{Command: name, Err: err}
	}
	return raw, nil
}

// allConf mirrors the fields of Channel/GetAllConf the bridge cares about.
type allConf struct {
	Brightness      *uint8  `json:"Brightness"`
	RotationFlag    *uint8  `json:"RotationFlag"`
	DateFormat      *string `json:"DateFormat"`
	Time24Flag      *uint8  `json:"Time24Flag"`
	TemperatureMode *uint8  `json:"TemperatureMode"`
	MirrorFlag      *uint8  `json:"MirrorFlag"`
	LightSwitch     *uint8  `json:"LightSwitch"`
}

// Settings reads the device's current configuration.
func (c *Client) Settings(ctx context.Context, ip string) (domain.DeviceSettings, error) {
	raw, err := c.Send(ctx, ip, map[string]any{"Command": "Channel/GetAllConf"})
	if err != nil {
		return domain.DeviceSettings{}, err
	}

	var conf allConf
	if err := json.Unmarshal(raw, &conf); err != nil {
		return domain.DeviceSettings{}, domain.ErrDeviceCommand{Command: "Channel/GetAllConf", Err: err}
	}

	return domain.DeviceSettings{
		Brightness:      conf.Brightness,
		RotationFlag:    conf.RotationFlag,
		DateFormat:      conf.DateFormat,
		Time24Flag:      conf.Time24Flag,
		TemperatureMode: conf.TemperatureMode,
		MirrorFlag:      conf.MirrorFlag,
		LightSwitch:     conf.LightSwitch,
	}, nil
}

func (c *Client) SetBrightness(ctx context.Context, ip string, value int) error {
	_, err := c.Send(ctx, ip, map[string]any{
		"Command":    "Channel/SetBrightness",
		"Brightness": value,
	})
	return err
}

// SetScreen switches the display on (1) or off (0).
func (c *Client) SetScreen(ctx context.Context, ip string, on int) error {
	_, err := c.Send(ctx, ip, map[string]any{
		"Command": "Channel/OnOffScreen",
		"OnOff":   on,
	})
	return err
}

// SetTemperatureMode selects 0 for Celsius, 1 for Fahrenheit.
func (c *Client) SetTemperatureMode(ctx context.Context, ip string, mode int) error {
	_, err := c.Send(ctx, ip, map[string]any{
		"Command": "Device/SetDisTempMode",
		"Mode":    mode,
	})
	return err
}

// SetMirrorMode selects 0 to disable, 1 to enable display mirroring.
func (c *Client) SetMirrorMode(ctx context.Context, ip string, mode int) error {
	_, err := c.Send(ctx, ip, map[string]any{
		"Command": "Device/SetMirrorMode",
		"Mode":    mode,
	})
	return err
}

// Set24HourMode selects 0 for 12-hour, 1 for 24-hour clock.
func (c *Client) Set24HourMode(ctx context.Context, ip string, mode int) error {
	_, err := c.Send(ctx, ip, map[string]any{
		"Command": "Device/SetTime24Flag",
		"Mode":    mode,
	})
	return err
}

func (c *Client) Reboot(ctx context.Context, ip string) error {
	_, err := c.Send(ctx, ip, map[string]any{"Command": "Device/SysReboot"})
	return err
}

func (c *Client) nextPicID() uint32 {
	return c.picID.Add(1)
}
