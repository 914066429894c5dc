package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/GSMS-B/ProjectQR/internal/config"
	"github.com/GSMS-B/ProjectQR/internal/processing/codes"
	"github.com/GSMS-B/ProjectQR/internal/processing/scans"
	"github.com/GSMS-B/ProjectQR/internal/processing/security"
)

// memRepo stores records in a map so handler tests can exercise the full
// registry path.
type memRepo struct {
	records map[string]*codes.Record
}

func newMemRepo() *memRepo {
	return &memRepo{records: make(map[string]*codes.Record)}
}

func (m *memRepo) Insert(_ context.Context, record *codes.Record) error {
	if _, taken := m.records[record.Code]; taken {
		return codes.ErrCodeTaken
	}
	cp := *record
	m.records[record.Code] = &cp
	return nil
}

func (m *memRepo) FindByCode(_ context.Context, code string) (*codes.Record, error) {
	if r, ok := m.records[code]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, codes.ErrNotFound
}

func (m *memRepo) Update(_ context.Context, code string, fields codes.EditFields, at time.Time) (*codes.Record, error) {
	r, ok := m.records[code]
	if !ok {
		return nil, codes.ErrNotFound
	}
	if fields.DestinationURL != nil {
		r.DestinationURL = *fields.DestinationURL
	}
	if fields.Title != nil {
		r.Title = *fields.Title
	}
	if fields.ShowPreview != nil {
		r.ShowPreview = *fields.ShowPreview
	}
	if fields.AnalyticsEnabled != nil {
		r.AnalyticsEnabled = *fields.AnalyticsEnabled
	}
	r.UpdatedAt = at
	cp := *r
	return &cp, nil
}

func (m *memRepo) Deactivate(_ context.Context, code string, at time.Time) error {
	r, ok := m.records[code]
	if !ok {
		return codes.ErrNotFound
	}
	r.Active = false
	r.UpdatedAt = at
	return nil
}

type fixedGenerator struct {
	code string
}

func (g fixedGenerator) Generate(int) (string, error) { return g.code, nil }

type stubEventStore struct {
	events []scans.Event
}

func (s *stubEventStore) Append(context.Context, *scans.Event) error { return nil }
func (s *stubEventStore) ListByCodeSince(context.Context, string, time.Time) ([]scans.Event, error) {
	return s.events, nil
}

func newTestCodesHandler(repo *memRepo, gen codes.CodeGenerator) *CodesHandler {
	cfg := &config.Config{}
	cfg.Redirect.BaseURL = "http://localhost:8080"

	registry := codes.NewRegistry(repo, gen, 6)
	analytics := scans.NewAnalytics(&stubEventStore{})
	return NewCodesHandler(cfg, registry, analytics, &stubVerifier{tier: security.TierSafe})
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	return envelope.Data
}

// --- Create ---

func TestCreateHandler_HappyPath(t *testing.T) {
	repo := newMemRepo()
	h := newTestCodesHandler(repo, fixedGenerator{code: "abc123"})

	req := httptest.NewRequest(http.MethodPost, "/api/codes",
		strings.NewReader(`{"url":"https://example.com/page","title":"Poster"}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("got status %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	data := decodeData(t, rec)
	if data["code"] != "abc123" {
		t.Errorf("got code %v", data["code"])
	}
	if data["shortUrl"] != "http://localhost:8080/abc123" {
		t.Errorf("got shortUrl %v", data["shortUrl"])
	}
	if data["analyticsEnabled"] != true {
		t.Error("analytics must default to enabled")
	}
	if _, stored := repo.records["abc123"]; !stored {
		t.Error("record not persisted")
	}
}

func TestCreateHandler_InvalidURL(t *testing.T) {
	h := newTestCodesHandler(newMemRepo(), fixedGenerator{code: "abc123"})

	req := httptest.NewRequest(http.MethodPost, "/api/codes",
		strings.NewReader(`{"url":"not-a-url"}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestCreateHandler_MalformedBody(t *testing.T) {
	h := newTestCodesHandler(newMemRepo(), fixedGenerator{code: "abc123"})

	req := httptest.NewRequest(http.MethodPost, "/api/codes", strings.NewReader(`{`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

// --- Edit ---

func TestEditHandler_UpdatesDestination(t *testing.T) {
	repo := newMemRepo()
	repo.records["abc123"] = &codes.Record{Code: "abc123", DestinationURL: "https://old.example", Active: true}
	h := newTestCodesHandler(repo, fixedGenerator{code: "unused"})

	req := httptest.NewRequest(http.MethodPatch, "/api/codes/abc123",
		strings.NewReader(`{"url":"https://new.example/landing"}`))
	req.SetPathValue("code", "abc123")
	rec := httptest.NewRecorder()
	h.Edit(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if repo.records["abc123"].DestinationURL != "https://new.example/landing" {
		t.Errorf("destination not updated: %q", repo.records["abc123"].DestinationURL)
	}
}

func TestEditHandler_UnknownCode(t *testing.T) {
	h := newTestCodesHandler(newMemRepo(), fixedGenerator{code: "unused"})

	req := httptest.NewRequest(http.MethodPatch, "/api/codes/nope00",
		strings.NewReader(`{"title":"x"}`))
	req.SetPathValue("code", "nope00")
	rec := httptest.NewRecorder()
	h.Edit(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("got status %d, want %d", rec.Code, http.StatusNotFound)
	}
}

// --- Deactivate ---

func TestDeactivateHandler(t *testing.T) {
	repo := newMemRepo()
	repo.records["abc123"] = &codes.Record{Code: "abc123", DestinationURL: "https://example.com", Active: true}
	h := newTestCodesHandler(repo, fixedGenerator{code: "unused"})

	req := httptest.NewRequest(http.MethodDelete, "/api/codes/abc123", nil)
	req.SetPathValue("code", "abc123")
	rec := httptest.NewRecorder()
	h.Deactivate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", rec.Code, http.StatusOK)
	}
	if repo.records["abc123"].Active {
		t.Error("record still active after deactivation")
	}
}

// --- Analytics ---

func TestAnalyticsHandler_UnknownCode(t *testing.T) {
	h := newTestCodesHandler(newMemRepo(), fixedGenerator{code: "unused"})

	req := httptest.NewRequest(http.MethodGet, "/api/codes/nope00/analytics", nil)
	req.SetPathValue("code", "nope00")
	rec := httptest.NewRecorder()
	h.Analytics(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("got status %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestAnalyticsHandler_InvalidDays(t *testing.T) {
	repo := newMemRepo()
	repo.records["abc123"] = &codes.Record{Code: "abc123", Active: true}
	h := newTestCodesHandler(repo, fixedGenerator{code: "unused"})

	for _, days := range []string{"0", "-5", "9999", "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/api/codes/abc123/analytics?days="+days, nil)
		req.SetPathValue("code", "abc123")
		rec := httptest.NewRecorder()
		h.Analytics(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("days=%s: got status %d, want %d", days, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestAnalyticsHandler_EmptyHistory(t *testing.T) {
	repo := newMemRepo()
	repo.records["abc123"] = &codes.Record{Code: "abc123", Active: true}
	h := newTestCodesHandler(repo, fixedGenerator{code: "unused"})

	req := httptest.NewRequest(http.MethodGet, "/api/codes/abc123/analytics", nil)
	req.SetPathValue("code", "abc123")
	rec := httptest.NewRecorder()
	h.Analytics(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
}

// --- Validate ---

func TestValidateHandler_ReturnsVerdict(t *testing.T) {
	h := newTestCodesHandler(newMemRepo(), fixedGenerator{code: "unused"})

	req := httptest.NewRequest(http.MethodGet, "/api/validate?url=https://example.com/page", nil)
	rec := httptest.NewRecorder()
	h.Validate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	data := decodeData(t, rec)
	if data["domain"] != "example.com" {
		t.Errorf("got domain %v", data["domain"])
	}
	if data["tier"] != "safe" {
		t.Errorf("got tier %v", data["tier"])
	}
}

func TestValidateHandler_MissingURL(t *testing.T) {
	h := newTestCodesHandler(newMemRepo(), fixedGenerator{code: "unused"})

	req := httptest.NewRequest(http.MethodGet, "/api/validate", nil)
	rec := httptest.NewRecorder()
	h.Validate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestValidateHandler_BadURL(t *testing.T) {
	h := newTestCodesHandler(newMemRepo(), fixedGenerator{code: "unused"})

	req := httptest.NewRequest(http.MethodGet, "/api/validate?url=javascript:alert(1)", nil)
	rec := httptest.NewRecorder()
	h.Validate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
