package scans

import (
	"strings"

	"github.com/mileusna/useragent"
)

// DeviceInfo is the derived device/browser breakdown of a user-agent string.
type DeviceInfo struct {
	Class   DeviceClass
	OS      string
	Browser string
}

// ParseUserAgent classifies a raw user-agent string. Empty or unparseable
// input yields DeviceUnknown with empty fields.
func ParseUserAgent(raw string) DeviceInfo {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DeviceInfo{Class: DeviceUnknown}
	}

	ua := useragent.Parse(raw)

	info := DeviceInfo{
		Class:   DeviceUnknown,
		OS:      ua.OS,
		Browser: ua.Name,
	}

	switch {
	case ua.Bot:
		info.Class = DeviceBot
	case ua.Mobile:
		info.Class = DeviceMobile
	case ua.Tablet:
		info.Class = DeviceTablet
	case ua.Desktop:
		info.Class = DeviceDesktop
	}

	return info
}
