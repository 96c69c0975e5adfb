package divoom

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"net/http"
	"time"

	"github.com/disintegration/imaging"

	"github.com/pixoolab/divoom-bridge/internal/domain"
)

const (
	// screenSize is the pixel resolution of one Times Gate panel.
	screenSize = 128

	// pcMonitorClockID is the built-in "PC Monitor" clock face.
	pcMonitorClockID = 625

	imageFetchTimeout = 30 * time.Second
)

// UploadImageFromURL downloads an image, fits it to the panel and sends it
// to the given screen.
func (c *Client) UploadImageFromURL(ctx context.Context, ip string, screenIndex int, url string) error {
	img, err := fetchImage(ctx, url)
	if err != nil {
		return err
	}
	return c.uploadImage(ctx, ip, screenIndex, img)
}

// UploadImageFromFile reads an image from disk, fits it to the panel and
// sends it to the given screen.
func (c *Client) UploadImageFromFile(ctx context.Context, ip string, screenIndex int, path string) error {
	img, err := imaging.Open(path)
	if err != nil {
		return fmt.Errorf("open image file: %w", err)
	}
	return c.uploadImage(ctx, ip, screenIndex, img)
}

func (c *Client) uploadImage(ctx context.Context, ip string, screenIndex int, img image.Image) error {
	encoded, err := encodeForPanel(img)
	if err != nil {
		return err
	}

	// LCDArray flags which of the five panels receives the frame.
	lcdArray := [5]int{}
	if screenIndex >= 0 && screenIndex < len(lcdArray) {
		lcdArray[screenIndex] = 1
	}

	_, err = c.SendWithTimeout(ctx, ip, map[string]any{
		"Command":   "Draw/SendHttpGif",
		"LCDArray":  lcdArray,
		"PicNum":    1,
		"PicWidth":  screenSize,
		"PicOffset": 0,
		"PicID":     c.nextPicID(),
		"PicSpeed":  1000,
		"PicData":   base64.StdEncoding.EncodeToString(encoded),
	}, time.Second)
	return err
}

// SetScreenText places a text overlay on one screen, applying the device
// defaults for any unset layout fields.
func (c *Client) SetScreenText(ctx context.Context, ip string, screenIndex int, text domain.TextConfig) error {
	color := text.Color
	if color == "" {
		color = "255,255,255"
	}

	font := uint8(7)
	if text.Font != nil {
		font = *text.Font
	}

	alignment := uint8(0)
	if text.Alignment != nil {
		alignment = *text.Alignment
	}

	textWidth := uint8(64)
	if text.TextWidth != nil {
		textWidth = *text.TextWidth
	}

	_, err := c.Send(ctx, ip, map[string]any{
		"Command":    "Draw/SendHttpText",
		"LcdIndex":   screenIndex,
		"TextId":     text.ID,
		"x":          text.X,
		"y":          text.Y,
		"dir":        0,
		"font":       font,
		"TextWidth":  textWidth,
		"speed":      100,
		"TextString": text.Content,
		"color":      color,
		"align":      alignment,
	})
	return err
}

// ActivatePCMonitor binds the PC Monitor clock face to one screen so the
// metrics push loop has somewhere to render.
func (c *Client) ActivatePCMonitor(ctx context.Context, ip string, deviceID, lcdIndependence uint64, lcdIndex int) error {
	_, err := c.Send(ctx, ip, map[string]any{
		"Command":         "Channel/SetClockSelectId",
		"LcdIndependence": lcdIndependence,
		"DeviceId":        deviceID,
		"LcdIndex":        lcdIndex,
		"ClockId":         pcMonitorClockID,
	})
	return err
}

// SendPCMetrics pushes pre-rendered metric strings to the PC Monitor clock.
func (c *Client) SendPCMetrics(ctx context.Context, ip string, lcdIndex int, dispData []string) error {
	_, err := c.Send(ctx, ip, map[string]any{
		"Command": "Device/UpdatePCParaInfo",
		"ScreenList": []map[string]any{{
			"LcdId":    lcdIndex,
			"DispData": dispData,
		}},
	})
	return err
}

func fetchImage(ctx context.Context, url string) (image.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, imageFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download image: status %d", resp.StatusCode)
	}

	img, err := imaging.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// encodeForPanel resizes to the panel resolution and encodes as JPEG, the
// densest format the Draw/SendHttpGif command accepts.
func encodeForPanel(img image.Image) ([]byte, error) {
	resized := imaging.Resize(img, screenSize, screenSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
