package events

// ScanRecorded is emitted when a resolution reaches a terminal state with
// analytics enabled. Consumed by the scan consumer for durable persistence.
type ScanRecorded struct {
	EventID     string `json:"eventId"`
	Code        string `json:"code"`
	OccurredAt  string `json:"occurredAt"`
	IP          string `json:"ip,omitempty"`
	Country     string `json:"country,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
	City        string `json:"city,omitempty"`
	DeviceClass string `json:"deviceClass,omitempty"`
	OS          string `json:"os,omitempty"`
	Browser     string `json:"browser,omitempty"`
	UserAgent   string `json:"userAgent,omitempty"`
	Referrer    string `json:"referrer,omitempty"`
}
