package reports

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Report is one user submission flagging a short code as suspicious.
type Report struct {
	ID         string
	Code       string
	ReporterIP string
	Reason     string
	Status     Status
	ReportedAt time.Time
}

// Status tracks the review lifecycle of a report.
type Status string

const (
	StatusPending  Status = "pending"
	StatusReviewed Status = "reviewed"
	StatusResolved Status = "resolved"
)

// Reports are anonymous free-text input from the public scan surface, so
// the reason is bounded.
const maxReasonLength = 2000

type ReportStore interface {
	Insert(ctx context.Context, report *Report) error
	ListByCode(ctx context.Context, code string) ([]Report, error)
}

// Service accepts suspicious-link reports against existing codes.
type Service struct {
	store ReportStore
	now   func() time.Time
}

func NewService(store ReportStore) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

type SubmitInput struct {
	Code       string
	ReporterIP string
	Reason     string
}

// Submit records one report. An empty reason is accepted; the original
// page lets users flag a link without explaining.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (*Report, error) {
	reason := strings.TrimSpace(input.Reason)
	if len(reason) > maxReasonLength {
		reason = reason[:maxReasonLength]
	}

	report := &Report{
		ID:         uuid.NewString(),
		Code:       strings.TrimSpace(input.Code),
		ReporterIP: strings.TrimSpace(input.ReporterIP),
		Reason:     reason,
		Status:     StatusPending,
		ReportedAt: s.now().UTC(),
	}

	if err := s.store.Insert(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// ListByCode returns all reports filed against a code, newest first.
func (s *Service) ListByCode(ctx context.Context, code string) ([]Report, error) {
	return s.store.ListByCode(ctx, strings.TrimSpace(code))
}
