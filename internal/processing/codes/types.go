package codes

import "time"

// Record is a short code mapping to a mutable destination URL.
type Record struct {
	Code           string
	DestinationURL string
	OwnerID        string
	Title          string

	Active           bool
	ShowPreview      bool
	AnalyticsEnabled bool

	Color      string
	Background string

	TotalScans int64

	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt *time.Time
}

// Resolvable reports whether the record may be served at the given instant.
func (r *Record) Resolvable(now time.Time) bool {
	if !r.Active {
		return false
	}
	if r.ExpiresAt != nil && now.UTC().After(r.ExpiresAt.UTC()) {
		return false
	}
	return true
}

type CreateInput struct {
	DestinationURL   string
	OwnerID          string
	Title            string
	ShowPreview      bool
	AnalyticsEnabled bool
	Color            string
	Background       string
	ExpiresAt        *time.Time
}

// EditFields is a partial edit: nil fields are left untouched.
type EditFields struct {
	DestinationURL   *string
	Title            *string
	ShowPreview      *bool
	AnalyticsEnabled *bool
	Color            *string
	Background       *string
	ExpiresAt        *time.Time
	ClearExpiration  bool
}
