package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pixoolab/divoom-bridge/internal/config"
	"github.com/pixoolab/divoom-bridge/internal/divoom"
	"github.com/pixoolab/divoom-bridge/internal/domain"
	"github.com/pixoolab/divoom-bridge/internal/settings"
	"github.com/pixoolab/divoom-bridge/internal/sidecar"
)

type response struct {
	Ok    bool   `json:"ok"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Collector takes a metrics snapshot; this is the "take a snapshot" command
// the GUI shell polls.
type Collector interface {
	Collect(ctx context.Context) domain.Metrics
}

type statusResponse struct {
	Version        string        `json:"version"`
	InstallationID string        `json:"installation_id"`
	Sidecar        sidecar.State `json:"sidecar"`
}

type modeRequest struct {
	Mode int `json:"mode"`
}

type brightnessRequest struct {
	Value int `json:"value"`
}

type screenRequest struct {
	On int `json:"on"`
}

type imageRequest struct {
	URL      string `json:"url"`
	FilePath string `json:"file_path"`
}

type monitorRequest struct {
	DeviceID        uint64 `json:"device_id"`
	LcdIndependence uint64 `json:"lcd_independence"`
	LcdIndex        int    `json:"lcd_index"`
}

type updateSettingsRequest struct {
	CloseToTray *bool   `json:"close_to_tray"`
	DeviceIP    *string `json:"device_ip"`
	PushEnabled *bool   `json:"push_enabled"`
	PushScreen  *int    `json:"push_screen"`
}

type API struct {
	collector  Collector
	supervisor *sidecar.Supervisor
	device     *divoom.Client
	cloud      *divoom.Cloud
	store      *settings.Store
	logger     *slog.Logger
}

func NewAPI(collector Collector, supervisor *sidecar.Supervisor, device *divoom.Client, cloud *divoom.Cloud, store *settings.Store, logger *slog.Logger) *API {
	return &API{
		collector:  collector,
		supervisor: supervisor,
		device:     device,
		cloud:      cloud,
		store:      store,
		logger:     logger,
	}
}

func (a *API) RegisterRoutes(router *gin.Engine) {
	router.GET("/ping", a.ping)
	router.GET("/status", a.status)
	router.GET("/metrics", a.metrics)
	router.GET("/devices", a.scanDevices)
	router.GET("/devices/:ip/settings", a.deviceSettings)
	router.GET("/devices/:ip/lcd", a.lcdLayout)
	router.POST("/devices/:ip/brightness", a.setBrightness)
	router.POST("/devices/:ip/screen", a.setScreen)
	router.POST("/devices/:ip/temperature-mode", a.setTemperatureMode)
	router.POST("/devices/:ip/mirror-mode", a.setMirrorMode)
	router.POST("/devices/:ip/time-mode", a.set24HourMode)
	router.POST("/devices/:ip/reboot", a.reboot)
	router.POST("/devices/:ip/screens/:index/image", a.uploadImage)
	router.POST("/devices/:ip/screens/:index/text", a.setScreenText)
	router.POST("/devices/:ip/monitor", a.activateMonitor)
	router.GET("/settings", a.getSettings)
	router.PUT("/settings", a.updateSettings)
}

func (a *API) ping(c *gin.Context) {
	c.JSON(http.StatusOK, response{Ok: true})
}

func (a *API) status(c *gin.Context) {
	c.JSON(http.StatusOK, response{Ok: true, Data: statusResponse{
		Version:        config.Version,
		InstallationID: a.store.Get().InstallationID,
		Sidecar:        a.supervisor.State(),
	}})
}

// metrics never fails: degraded sources only reduce field completeness and
// the shell distinguishes "no data" by field presence.
func (a *API) metrics(c *gin.Context) {
	c.JSON(http.StatusOK, response{Ok: true, Data: a.collector.Collect(c.Request.Context())})
}

func (a *API) scanDevices(c *gin.Context) {
	devices, err := a.cloud.Discover(c.Request.Context())
	if err != nil {
		a.logger.Warn("device scan failed", "err", err)
		c.JSON(http.StatusBadGateway, response{Ok: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, response{Ok: true, Data: devices})
}

func (a *API) deviceSettings(c *gin.Context) {
	conf, err := a.device.Settings(c.Request.Context(), c.Param("ip"))
	if err != nil {
		c.JSON(http.StatusBadGateway, response{Ok: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, response{Ok: true, Data: conf})
}

func (a *API) lcdLayout(c *gin.Context) {
	device, err := a.cloud.FindByIP(c.Request.Context(), c.Param("ip"))
	if err != nil {
		c.JSON(http.StatusNotFound, response{Ok: false, Error: err.Error()})
		return
	}

	layout, err := a.cloud.LcdLayout(c.Request.Context(), device.DeviceID)
	if err != nil {
		c.JSON(http.StatusBadGateway, response{Ok: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, response{Ok: true, Data: layout})
}

func (a *API) setBrightness(c *gin.Context) {
	var req brightnessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response{Ok: false, Error: err.Error()})
		return
	}
	a.deviceCommand(c, func(ctx context.Context, ip string) error {
		return a.device.SetBrightness(ctx, ip, req.Value)
	})
}

func (a *API) setScreen(c *gin.Context) {
	var req screenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response{Ok: false, Error: err.Error()})
		return
	}
	a.deviceCommand(c, func(ctx context.Context, ip string) error {
		return a.device.SetScreen(ctx, ip, req.On)
	})
}

func (a *API) setTemperatureMode(c *gin.Context) {
	a.modeCommand(c, a.device.SetTemperatureMode)
}

func (a *API) setMirrorMode(c *gin.Context) {
	a.modeCommand(c, a.device.SetMirrorMode)
}

func (a *API) set24HourMode(c *gin.Context) {
	a.modeCommand(c, a.device.Set24HourMode)
}

func (a *API) reboot(c *gin.Context) {
	a.deviceCommand(c, a.device.Reboot)
}

func (a *API) uploadImage(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response{Ok: false, Error: "invalid screen index"})
		return
	}

	var req imageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response{Ok: false, Error: err.Error()})
		return
	}

	ip := c.Param("ip")
	ctx := c.Request.Context()

	switch {
	case req.URL != "":
		err = a.device.UploadImageFromURL(ctx, ip, index, req.URL)
	case req.FilePath != "":
		err = a.device.UploadImageFromFile(ctx, ip, index, req.FilePath)
	default:
		c.JSON(http.StatusBadRequest, response{Ok: false, Error: "url or file_path is required"})
		return
	}

	if err != nil {
		a.logger.Warn("image upload failed", "device", ip, "err", err)
		c.JSON(http.StatusBadGateway, response{Ok: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, response{Ok: true})
}

func (a *API) setScreenText(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response{Ok: false, Error: "invalid screen index"})
		return
	}

	var text domain.TextConfig
	if err := c.ShouldBindJSON(&text); err != nil {
		c.JSON(http.StatusBadRequest, response{Ok: false, Error: err.Error()})
		return
	}

	a.deviceCommand(c, func(ctx context.Context, ip string) error {
		return a.device.SetScreenText(ctx, ip, index, text)
	})
}

func (a *API) activateMonitor(c *gin.Context) {
	var req monitorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response{Ok: false, Error: err.Error()})
		return
	}
	a.deviceCommand(c, func(ctx context.Context, ip string) error {
		return a.device.ActivatePCMonitor(ctx, ip, req.DeviceID, req.LcdIndependence, req.LcdIndex)
	})
}

func (a *API) getSettings(c *gin.Context) {
	c.JSON(http.StatusOK, response{Ok: true, Data: a.store.Get()})
}

func (a *API) updateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response{Ok: false, Error: err.Error()})
		return
	}

	err := a.store.Update(func(s *settings.Settings) {
		if req.CloseToTray != nil {
			s.CloseToTray = *req.CloseToTray
		}
		if req.DeviceIP != nil {
			s.DeviceIP = *req.DeviceIP
		}
		if req.PushEnabled != nil {
			s.PushEnabled = *req.PushEnabled
		}
		if req.PushScreen != nil {
			s.PushScreen = *req.PushScreen
		}
	})
	if err != nil {
		a.logger.Error("failed to persist settings", "err", err)
		c.JSON(http.StatusInternalServerError, response{Ok: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, response{Ok: true, Data: a.store.Get()})
}

func (a *API) modeCommand(c *gin.Context, fn func(ctx context.Context, ip string, mode int) error) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response{Ok: false, Error: err.Error()})
		return
	}
	a.deviceCommand(c, func(ctx context.Context, ip string) error {
		return fn(ctx, ip, req.Mode)
	})
}

func (a *API) deviceCommand(c *gin.Context, fn func(ctx context.Context, ip string) error) {
	ip := c.Param("ip")
	if err := fn(c.Request.Context(), ip); err != nil {
		a.logger.Warn("device command failed", "device", ip, "err", err)
		c.JSON(http.StatusBadGateway, response{Ok: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, response{Ok: true})
}
