package mongo

import (
	"context"

	"github.com/GSMS-B/ProjectQR/internal/infrastructure/logger"
	"github.com/GSMS-B/ProjectQR/internal/processing/scans"
	"go.uber.org/zap"
)

// StoreSink delivers scan events straight into MongoDB: appends the event
// and bumps the record's running total. Used when no kafka pipeline is
// configured; the scan consumer performs the same two writes.
type StoreSink struct {
	events  *ScansRepository
	records *RecordsRepository
}

func NewStoreSink(events *ScansRepository, records *RecordsRepository) *StoreSink {
	return &StoreSink{
		events:  events,
		records: records,
	}
}

func (s *StoreSink) Deliver(ctx context.Context, event *scans.Event) error {
	if err := s.events.Append(ctx, event); err != nil {
		return err
	}

	// The denormalized counter is best effort; the event itself is the
	// source of truth for aggregates.
	if err := s.records.IncScanCount(ctx, event.Code); err != nil {
		logger.Warn("failed to bump scan counter",
			zap.Error(err),
			zap.String("code", event.Code),
		)
	}

	return nil
}
