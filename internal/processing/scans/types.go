package scans

import "time"

// DeviceClass buckets the scanning device.
type DeviceClass string

const (
	DeviceDesktop DeviceClass = "desktop"
	DeviceMobile  DeviceClass = "mobile"
	DeviceTablet  DeviceClass = "tablet"
	DeviceBot     DeviceClass = "bot"
	DeviceUnknown DeviceClass = "unknown"
)

// Event is one recorded scan. Immutable once written.
type Event struct {
	ID   string
	Code string
	At   time.Time

	IP          string
	Country     string
	CountryCode string
	City        string

	DeviceClass DeviceClass
	OS          string
	Browser     string
	UserAgent   string

	Referrer string
}

// RequestContext carries the raw request attributes a scan is derived from.
type RequestContext struct {
	IP        string
	UserAgent string
	Referrer  string
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// Aggregate is the rollup of scan events for one code within a window.
type Aggregate struct {
	Total     int64            `json:"total"`
	Today     int64            `json:"today"`
	Timeline  []DailyCount     `json:"timeline"`
	Devices   map[string]int64 `json:"devices"`
	Browsers  map[string]int64 `json:"browsers"`
	Countries map[string]int64 `json:"countries"`
	Recent    []RecentScan     `json:"recentScans"`
}

// RecentScan is the trimmed event shape exposed on the analytics surface.
type RecentScan struct {
	At      time.Time `json:"scannedAt"`
	Country string    `json:"country,omitempty"`
	City    string    `json:"city,omitempty"`
	Device  string    `json:"device,omitempty"`
	Browser string    `json:"browser,omitempty"`
	OS      string    `json:"os,omitempty"`
}
