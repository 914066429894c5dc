package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GSMS-B/ProjectQR/internal/processing/security"
	"github.com/GSMS-B/ProjectQR/pkg/httpclient"
)

func testHTTPClient() *httpclient.Client {
	return httpclient.New(httpclient.Options{
		Timeout:     2 * time.Second,
		MaxRetries:  1,
		MaxFailures: 100,
		OpenTimeout: time.Minute,
	})
}

func TestSafeBrowsing_NoKeyReportsUnknown(t *testing.T) {
	sb := NewSafeBrowsing(testHTTPClient(), "http://unused.invalid", "")

	res, err := sb.CheckReputation(context.Background(), "example.com")
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != security.ReputationUnknown {
		t.Errorf("got %v, want unknown", res.Status)
	}
}

func TestSafeBrowsing_NoMatchesIsClean(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("got key %q, want %q", got, "test-key")
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("invalid request payload: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	sb := NewSafeBrowsing(testHTTPClient(), srv.URL, "test-key")

	res, err := sb.CheckReputation(context.Background(), "example.com")
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != security.ReputationClean {
		t.Errorf("got %v, want clean", res.Status)
	}
}

func TestSafeBrowsing_MalwareMatchIsMalicious(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"matches":[{"threatType":"MALWARE"}]}`))
	}))
	defer srv.Close()

	sb := NewSafeBrowsing(testHTTPClient(), srv.URL, "test-key")

	res, err := sb.CheckReputation(context.Background(), "evil.example")
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != security.ReputationMalicious {
		t.Errorf("got %v, want malicious", res.Status)
	}
	if len(res.Threats) != 1 || res.Threats[0] != "MALWARE" {
		t.Errorf("got threats %v, want [MALWARE]", res.Threats)
	}
}

func TestSafeBrowsing_UnwantedSoftwareIsSuspicious(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"matches":[{"threatType":"UNWANTED_SOFTWARE"}]}`))
	}))
	defer srv.Close()

	sb := NewSafeBrowsing(testHTTPClient(), srv.URL, "test-key")

	res, err := sb.CheckReputation(context.Background(), "shady.example")
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != security.ReputationSuspicious {
		t.Errorf("got %v, want suspicious", res.Status)
	}
}

func TestSafeBrowsing_ServerErrorIsUnknownWithError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	sb := NewSafeBrowsing(testHTTPClient(), srv.URL, "test-key")

	res, err := sb.CheckReputation(context.Background(), "example.com")
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
	if res.Status != security.ReputationUnknown {
		t.Errorf("got %v, want unknown", res.Status)
	}
}
