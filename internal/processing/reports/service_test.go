package reports

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type mockStore struct {
	inserted []*Report
	insertFn func(context.Context, *Report) error
	listFn   func(context.Context, string) ([]Report, error)
}

func (m *mockStore) Insert(ctx context.Context, report *Report) error {
	m.inserted = append(m.inserted, report)
	if m.insertFn != nil {
		return m.insertFn(ctx, report)
	}
	return nil
}

func (m *mockStore) ListByCode(ctx context.Context, code string) ([]Report, error) {
	if m.listFn != nil {
		return m.listFn(ctx, code)
	}
	return nil, nil
}

var reportNow = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

func newTestService(store *mockStore) *Service {
	s := NewService(store)
	s.now = func() time.Time { return reportNow }
	return s
}

func TestSubmit_PopulatesReport(t *testing.T) {
	store := &mockStore{}
	s := newTestService(store)

	report, err := s.Submit(context.Background(), SubmitInput{
		Code:       "abc123",
		ReporterIP: "203.0.113.7",
		Reason:     "  looks like a phishing page  ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.ID == "" {
		t.Error("report must get an id")
	}
	if report.Code != "abc123" {
		t.Errorf("got code %q", report.Code)
	}
	if report.ReporterIP != "203.0.113.7" {
		t.Errorf("got reporter ip %q", report.ReporterIP)
	}
	if report.Reason != "looks like a phishing page" {
		t.Errorf("reason not trimmed: %q", report.Reason)
	}
	if report.Status != StatusPending {
		t.Errorf("got status %q, want %q", report.Status, StatusPending)
	}
	if !report.ReportedAt.Equal(reportNow) {
		t.Errorf("got reportedAt %v", report.ReportedAt)
	}
	if len(store.inserted) != 1 {
		t.Fatalf("got %d inserts, want 1", len(store.inserted))
	}
}

func TestSubmit_EmptyReasonAccepted(t *testing.T) {
	store := &mockStore{}
	s := newTestService(store)

	report, err := s.Submit(context.Background(), SubmitInput{Code: "abc123"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Reason != "" {
		t.Errorf("got reason %q, want empty", report.Reason)
	}
}

func TestSubmit_ReasonIsBounded(t *testing.T) {
	store := &mockStore{}
	s := newTestService(store)

	report, err := s.Submit(context.Background(), SubmitInput{
		Code:   "abc123",
		Reason: strings.Repeat("a", 5000),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Reason) != maxReasonLength {
		t.Errorf("got reason length %d, want %d", len(report.Reason), maxReasonLength)
	}
}

func TestSubmit_StoreErrorPropagates(t *testing.T) {
	storeErr := errors.New("mongo down")
	store := &mockStore{insertFn: func(context.Context, *Report) error { return storeErr }}
	s := newTestService(store)

	if _, err := s.Submit(context.Background(), SubmitInput{Code: "abc123"}); !errors.Is(err, storeErr) {
		t.Errorf("got err %v, want %v", err, storeErr)
	}
}

func TestListByCode_TrimsCode(t *testing.T) {
	var gotCode string
	store := &mockStore{listFn: func(_ context.Context, code string) ([]Report, error) {
		gotCode = code
		return []Report{{ID: "r1", Code: code}}, nil
	}}
	s := newTestService(store)

	filed, err := s.ListByCode(context.Background(), "  abc123  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotCode != "abc123" {
		t.Errorf("got code %q", gotCode)
	}
	if len(filed) != 1 {
		t.Errorf("got %d reports, want 1", len(filed))
	}
}
