package domain

// Device is a Divoom display discovered on the local network.
type Device struct {
	Name           string `json:"name"`
	MACAddress     string `json:"mac_address,omitempty"`
	DeviceType     string `json:"device_type"`
	IPAddress      string `json:"ip_address,omitempty"`
	SignalStrength int    `json:"signal_strength,omitempty"`
	Connected      bool   `json:"is_connected"`
	DeviceID       uint64 `json:"device_id,omitempty"`
}

// DeviceSettings mirrors the fields of the Channel/GetAllConf response the
// bridge cares about. Pointer fields are nil when the device omitted them.
type DeviceSettings struct {
	Brightness      *uint8  `json:"brightness"`
	RotationFlag    *uint8  `json:"rotation_flag"`
	DateFormat      *string `json:"date_format"`
	Time24Flag      *uint8  `json:"time24_flag"`
	TemperatureMode *uint8  `json:"temperature_mode"`
	MirrorFlag      *uint8  `json:"mirror_flag"`
	LightSwitch     *uint8  `json:"light_switch"`
}

// TextConfig describes a text overlay placed on one device screen.
type TextConfig struct {
	ID        uint8  `json:"id"`
	Content   string `json:"content"`
	X         uint8  `json:"x"`
	Y         uint8  `json:"y"`
	Font      *uint8 `json:"font"`
	Color     string `json:"color,omitempty"`
	Alignment *uint8 `json:"alignment"`
	TextWidth *uint8 `json:"text_width"`
}

// LcdInfo identifies the clock bound to one LCD panel.
type LcdInfo struct {
	LcdClockID uint64 `json:"lcd_clock_id"`
}

// LcdIndependence groups the panels of one independent screen cluster on
// multi-screen devices such as the Times Gate.
type LcdIndependence struct {
	LcdIndependence uint64    `json:"lcd_independence"`
	LcdList         []LcdInfo `json:"lcd_list"`
}

// LcdLayout is the full screen layout of one device.
type LcdLayout struct {
	DeviceID         uint64            `json:"device_id"`
	IndependenceList []LcdIndependence `json:"independence_list"`
}
