package codes

import (
	"context"
	"errors"
	"testing"
	"time"
)

// --- Hand-written mocks ---

type mockRecordRepo struct {
	insertFn     func(ctx context.Context, record *Record) error
	findByCodeFn func(ctx context.Context, code string) (*Record, error)
	updateFn     func(ctx context.Context, code string, fields EditFields, at time.Time) (*Record, error)
	deactivateFn func(ctx context.Context, code string, at time.Time) error
}

func (m *mockRecordRepo) Insert(ctx context.Context, record *Record) error {
	return m.insertFn(ctx, record)
}
func (m *mockRecordRepo) FindByCode(ctx context.Context, code string) (*Record, error) {
	return m.findByCodeFn(ctx, code)
}
func (m *mockRecordRepo) Update(ctx context.Context, code string, fields EditFields, at time.Time) (*Record, error) {
	return m.updateFn(ctx, code, fields, at)
}
func (m *mockRecordRepo) Deactivate(ctx context.Context, code string, at time.Time) error {
	return m.deactivateFn(ctx, code, at)
}

type mockGenerator struct {
	codes []string
	idx   int
}

func (m *mockGenerator) Generate(int) (string, error) {
	if m.idx >= len(m.codes) {
		return "", errors.New("no more codes")
	}
	c := m.codes[m.idx]
	m.idx++
	return c, nil
}

var testNow = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

func newTestRegistry(repo *mockRecordRepo, gen *mockGenerator) *Registry {
	r := NewRegistry(repo, gen, 6)
	r.now = func() time.Time { return testNow }
	return r
}

// --- Create ---

func TestCreate_HappyPath(t *testing.T) {
	var inserted *Record
	repo := &mockRecordRepo{
		insertFn: func(_ context.Context, record *Record) error {
			inserted = record
			return nil
		},
	}
	gen := &mockGenerator{codes: []string{"abc123"}}

	record, err := newTestRegistry(repo, gen).Create(context.Background(), CreateInput{
		DestinationURL:   "https://example.com/page#frag",
		Title:            "  My Page  ",
		AnalyticsEnabled: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if record.Code != "abc123" {
		t.Errorf("got code %q, want %q", record.Code, "abc123")
	}
	if record.DestinationURL != "https://example.com/page" {
		t.Errorf("got URL %q, want normalized form", record.DestinationURL)
	}
	if record.Title != "My Page" {
		t.Errorf("got title %q, want trimmed", record.Title)
	}
	if !record.Active {
		t.Error("new records must start active")
	}
	if inserted == nil {
		t.Fatal("expected Insert to be called")
	}
}

func TestCreate_InvalidURL(t *testing.T) {
	called := false
	repo := &mockRecordRepo{
		insertFn: func(_ context.Context, _ *Record) error {
			called = true
			return nil
		},
	}

	_, err := newTestRegistry(repo, &mockGenerator{}).Create(context.Background(), CreateInput{
		DestinationURL: "javascript:alert(1)",
	})
	if !errors.Is(err, ErrInvalidURL) {
		t.Fatalf("expected ErrInvalidURL, got: %v", err)
	}
	if called {
		t.Error("no insert may happen for an invalid URL")
	}
}

func TestCreate_CollisionRetries(t *testing.T) {
	attempts := 0
	repo := &mockRecordRepo{
		insertFn: func(_ context.Context, _ *Record) error {
			attempts++
			if attempts <= 2 {
				return ErrCodeTaken
			}
			return nil
		},
	}
	gen := &mockGenerator{codes: []string{"c1", "c2", "c3"}}

	record, err := newTestRegistry(repo, gen).Create(context.Background(), CreateInput{
		DestinationURL: "https://example.com",
	})
	if err != nil {
		t.Fatal(err)
	}
	if record.Code != "c3" {
		t.Errorf("got code %q, want %q", record.Code, "c3")
	}
	if attempts != 3 {
		t.Errorf("expected 3 insert attempts, got %d", attempts)
	}
}

func TestCreate_AllRetriesExhausted(t *testing.T) {
	repo := &mockRecordRepo{
		insertFn: func(_ context.Context, _ *Record) error { return ErrCodeTaken },
	}
	dups := make([]string, 10)
	for i := range dups {
		dups[i] = "dup"
	}

	_, err := newTestRegistry(repo, &mockGenerator{codes: dups}).Create(context.Background(), CreateInput{
		DestinationURL: "https://example.com",
	})
	if !errors.Is(err, ErrCodeTaken) {
		t.Fatalf("expected ErrCodeTaken after exhausting retries, got: %v", err)
	}
}

// --- Resolve ---

func TestResolve_ActiveRecord(t *testing.T) {
	repo := &mockRecordRepo{
		findByCodeFn: func(_ context.Context, code string) (*Record, error) {
			return &Record{Code: code, DestinationURL: "https://example.com", Active: true}, nil
		},
	}

	record, err := newTestRegistry(repo, &mockGenerator{}).Resolve(context.Background(), "abc123")
	if err != nil {
		t.Fatal(err)
	}
	if record.DestinationURL != "https://example.com" {
		t.Errorf("got URL %q", record.DestinationURL)
	}
}

func TestResolve_UnknownCode(t *testing.T) {
	repo := &mockRecordRepo{
		findByCodeFn: func(_ context.Context, _ string) (*Record, error) {
			return nil, ErrNotFound
		},
	}

	_, err := newTestRegistry(repo, &mockGenerator{}).Resolve(context.Background(), "nope00")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

func TestResolve_InactiveRecord(t *testing.T) {
	repo := &mockRecordRepo{
		findByCodeFn: func(_ context.Context, code string) (*Record, error) {
			return &Record{Code: code, DestinationURL: "https://example.com", Active: false}, nil
		},
	}

	_, err := newTestRegistry(repo, &mockGenerator{}).Resolve(context.Background(), "abc123")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("inactive records must resolve as not found, got: %v", err)
	}
}

func TestResolve_ExpiredRecord(t *testing.T) {
	expired := testNow.Add(-time.Hour)
	repo := &mockRecordRepo{
		findByCodeFn: func(_ context.Context, code string) (*Record, error) {
			return &Record{Code: code, DestinationURL: "https://example.com", Active: true, ExpiresAt: &expired}, nil
		},
	}

	_, err := newTestRegistry(repo, &mockGenerator{}).Resolve(context.Background(), "abc123")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired records must resolve as not found, got: %v", err)
	}
}

func TestResolve_EmptyCode(t *testing.T) {
	_, err := newTestRegistry(&mockRecordRepo{}, &mockGenerator{}).Resolve(context.Background(), "  ")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

// --- Upsert ---

func TestUpsert_DomainChangeTriggersInvalidation(t *testing.T) {
	repo := &mockRecordRepo{
		findByCodeFn: func(_ context.Context, code string) (*Record, error) {
			return &Record{Code: code, DestinationURL: "https://old.example/page", Active: true}, nil
		},
		updateFn: func(_ context.Context, code string, fields EditFields, _ time.Time) (*Record, error) {
			return &Record{Code: code, DestinationURL: *fields.DestinationURL, Active: true}, nil
		},
	}

	registry := newTestRegistry(repo, &mockGenerator{})
	var invalidated []string
	registry.OnDomainChange(func(domain string) { invalidated = append(invalidated, domain) })

	newURL := "https://new.example/page"
	record, err := registry.Upsert(context.Background(), "abc123", EditFields{DestinationURL: &newURL})
	if err != nil {
		t.Fatal(err)
	}
	if record.DestinationURL != newURL {
		t.Errorf("got URL %q, want %q", record.DestinationURL, newURL)
	}
	if len(invalidated) != 1 || invalidated[0] != "old.example" {
		t.Errorf("expected invalidation of old.example, got %v", invalidated)
	}
}

func TestUpsert_SameDomainSkipsInvalidation(t *testing.T) {
	repo := &mockRecordRepo{
		findByCodeFn: func(_ context.Context, code string) (*Record, error) {
			return &Record{Code: code, DestinationURL: "https://example.com/old", Active: true}, nil
		},
		updateFn: func(_ context.Context, code string, fields EditFields, _ time.Time) (*Record, error) {
			return &Record{Code: code, DestinationURL: *fields.DestinationURL, Active: true}, nil
		},
	}

	registry := newTestRegistry(repo, &mockGenerator{})
	invalidated := false
	registry.OnDomainChange(func(string) { invalidated = true })

	newURL := "https://example.com/new"
	if _, err := registry.Upsert(context.Background(), "abc123", EditFields{DestinationURL: &newURL}); err != nil {
		t.Fatal(err)
	}
	if invalidated {
		t.Error("a path-only change must not invalidate the verdict")
	}
}

func TestUpsert_InvalidURLLeavesStateUntouched(t *testing.T) {
	updated := false
	repo := &mockRecordRepo{
		updateFn: func(_ context.Context, _ string, _ EditFields, _ time.Time) (*Record, error) {
			updated = true
			return nil, nil
		},
	}

	bad := "ftp://example.com"
	_, err := newTestRegistry(repo, &mockGenerator{}).Upsert(context.Background(), "abc123", EditFields{DestinationURL: &bad})
	if !errors.Is(err, ErrInvalidURL) {
		t.Fatalf("expected ErrInvalidURL, got: %v", err)
	}
	if updated {
		t.Error("no update may happen for an invalid URL")
	}
}

func TestUpsert_NonURLFieldsSkipPreviousLookup(t *testing.T) {
	found := false
	repo := &mockRecordRepo{
		findByCodeFn: func(_ context.Context, _ string) (*Record, error) {
			found = true
			return nil, ErrNotFound
		},
		updateFn: func(_ context.Context, code string, fields EditFields, _ time.Time) (*Record, error) {
			return &Record{Code: code, Title: *fields.Title, Active: true}, nil
		},
	}

	title := "New title"
	record, err := newTestRegistry(repo, &mockGenerator{}).Upsert(context.Background(), "abc123", EditFields{Title: &title})
	if err != nil {
		t.Fatal(err)
	}
	if record.Title != title {
		t.Errorf("got title %q, want %q", record.Title, title)
	}
	if found {
		t.Error("a title edit needs no previous-domain lookup")
	}
}

func TestUpsert_UnknownCode(t *testing.T) {
	repo := &mockRecordRepo{
		updateFn: func(_ context.Context, _ string, _ EditFields, _ time.Time) (*Record, error) {
			return nil, ErrNotFound
		},
	}

	title := "x"
	_, err := newTestRegistry(repo, &mockGenerator{}).Upsert(context.Background(), "nope00", EditFields{Title: &title})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

// --- Deactivate ---

func TestDeactivate_Delegates(t *testing.T) {
	var gotCode string
	repo := &mockRecordRepo{
		deactivateFn: func(_ context.Context, code string, at time.Time) error {
			gotCode = code
			if !at.Equal(testNow) {
				t.Errorf("got at %v, want %v", at, testNow)
			}
			return nil
		},
	}

	if err := newTestRegistry(repo, &mockGenerator{}).Deactivate(context.Background(), "abc123"); err != nil {
		t.Fatal(err)
	}
	if gotCode != "abc123" {
		t.Errorf("got code %q, want %q", gotCode, "abc123")
	}
}

func TestDeactivate_EmptyCode(t *testing.T) {
	err := newTestRegistry(&mockRecordRepo{}, &mockGenerator{}).Deactivate(context.Background(), "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}
