package scans

import (
	"context"
	"time"
)

// Location is a resolved IP geography, all fields empty when unknown.
type Location struct {
	Country     string
	CountryCode string
	City        string
}

// Geolocator resolves an IP to a location. Lookup failures and
// private/reserved ranges return an empty Location, never an error the
// recorder must act on.
type Geolocator interface {
	Locate(ctx context.Context, ip string) (Location, error)
}

// Sink receives fully derived events. Implementations: direct Mongo store,
// Kafka publisher.
type Sink interface {
	Deliver(ctx context.Context, event *Event) error
}

// EventStore is the durable, append-only scan log.
type EventStore interface {
	Append(ctx context.Context, event *Event) error
	ListByCodeSince(ctx context.Context, code string, since time.Time) ([]Event, error)
}
