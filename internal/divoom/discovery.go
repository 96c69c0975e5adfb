package divoom

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/pixoolab/divoom-bridge/internal/domain"
)

const defaultCloudBaseURL = "https://app.divoom-gz.com"

// hardwareNames maps Divoom hardware codes to model names.
var hardwareNames = map[int]string{
	400: "Times Gate",
	401: "Pixoo 64",
	402: "Pixoo 32",
	403: "Pixoo 16",
	404: "Ditoo",
	405: "Ditoo Plus",
	406: "Ditoo Pro",
	407: "Pixoo Max",
	408: "Pixoo Mini",
}

// Cloud talks to the Divoom cloud API, which knows which devices share the
// caller's LAN and holds per-device screen layouts.
type Cloud struct {
	baseURL string
	http    *retryablehttp.Client
	logger  *slog.Logger
}

func NewCloud(logger *slog.Logger) *Cloud {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.Logger = nil

	return &Cloud{
		baseURL: defaultCloudBaseURL,
		http:    client,
		logger:  logger,
	}
}

type cloudDevice struct {
	DeviceName      string `json:"DeviceName"`
	DevicePrivateIP string `json:"DevicePrivateIP"`
	DeviceMac       string `json:"DeviceMac"`
	Hardware        int    `json:"Hardware"`
	DeviceID        uint64 `json:"DeviceId"`
}

type sameLANResponse struct {
	DeviceList []cloudDevice `json:"DeviceList"`
}

// Discover lists Divoom devices on the caller's LAN, de-duplicated by IP
// and MAC address.
func (c *Cloud) Discover(ctx context.Context) ([]domain.Device, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/Device/ReturnSameLANDevice", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("divoom discovery: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("divoom discovery: status %d", resp.StatusCode)
	}

	var body sameLANResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("divoom discovery: parse response: %w", err)
	}

	var devices []domain.Device
	for _, d := range body.DeviceList {
		name := d.DeviceName
		if name == "" {
			name = "Unknown Device"
		}

		model, ok := hardwareNames[d.Hardware]
		if !ok {
			model = "Unknown Divoom Device"
		}

		devices = append(devices, domain.Device{
			Name:       name,
			MACAddress: d.DeviceMac,
			DeviceType: model,
			IPAddress:  d.DevicePrivateIP,
			Connected:  true,
			DeviceID:   d.DeviceID,
		})
	}

	return dedupe(devices), nil
}

// FindByIP resolves a discovered device by its LAN address.
func (c *Cloud) FindByIP(ctx context.Context, ip string) (domain.Device, error) {
	devices, err := c.Discover(ctx)
	if err != nil {
		return domain.Device{}, err
	}
	for _, d := range devices {
		if d.IPAddress == ip {
			return d, nil
		}
	}
	return domain.Device{}, domain.ErrDeviceNotFound{IP: ip}
}

type lcdInfoResponse struct {
	LcdIndependenceList []struct {
		LcdIndependence uint64 `json:"LcdIndependence"`
		LcdList         []struct {
			LcdClockID uint64 `json:"LcdClockId"`
		} `json:"LcdList"`
	} `json:"LcdIndependenceList"`
}

// LcdLayout fetches the screen layout of a multi-screen device.
func (c *Cloud) LcdLayout(ctx context.Context, deviceID uint64) (domain.LcdLayout, error) {
	url := fmt.Sprintf("%s/Channel/Get5LcdInfoV2?DeviceType=LCD&DeviceId=%d", c.baseURL, deviceID)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.LcdLayout{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.LcdLayout{}, fmt.Errorf("lcd info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.LcdLayout{}, fmt.Errorf("lcd info: status %d", resp.StatusCode)
	}

	var body lcdInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.LcdLayout{}, fmt.Errorf("lcd info: parse response: %w", err)
	}

	layout := domain.LcdLayout{DeviceID: deviceID}
	for _, item := range body.LcdIndependenceList {
		indep := domain.LcdIndependence{LcdIndependence: item.LcdIndependence}
		for _, lcd := range item.LcdList {
			indep.LcdList = append(indep.LcdList, domain.LcdInfo{LcdClockID: lcd.LcdClockID})
		}
		layout.IndependenceList = append(layout.IndependenceList, indep)
	}
	return layout, nil
}

// dedupe drops devices that repeat an already seen IP or MAC address; the
// cloud occasionally lists the same unit twice.
func dedupe(devices []domain.Device) []domain.Device {
	var unique []domain.Device
	for _, d := range devices {
		duplicate := false
		for _, u := range unique {
			if (d.IPAddress != "" && u.IPAddress == d.IPAddress) ||
				(d.MACAddress != "" && u.MACAddress == d.MACAddress) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			unique = append(unique, d)
		}
	}
	return unique
}
