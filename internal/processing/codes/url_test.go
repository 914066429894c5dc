package codes

import "testing"

func TestValidateAndNormalizeURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"valid https", "https://example.com/path", "https://example.com/path", false},
		{"valid http", "http://example.com", "http://example.com", false},
		{"strips fragment", "https://example.com/page#section", "https://example.com/page", false},
		{"keeps query", "https://example.com/p?x=1", "https://example.com/p?x=1", false},
		{"whitespace trimmed", "  https://example.com  ", "https://example.com", false},
		{"empty string", "", "", true},
		{"bad scheme ftp", "ftp://example.com", "", true},
		{"no scheme", "example.com", "", true},
		{"missing host", "https://", "", true},
		{"javascript scheme", "javascript:alert(1)", "", true},
		{"data scheme", "data:text/html,hi", "", true},
		{"vbscript scheme", "vbscript:msgbox", "", true},
		{"file scheme", "file:///etc/passwd", "", true},
		{"smuggled javascript", "https://example.com/?u=JAVASCRIPT:x", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateAndNormalizeURL(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDomain(t *testing.T) {
	tests := []struct {
		name   string
		rawURL string
		want   string
	}{
		{"plain host", "https://example.com/path", "example.com"},
		{"lowercases", "https://EXAMPLE.COM", "example.com"},
		{"strips port", "https://example.com:8443/x", "example.com"},
		{"subdomain kept", "https://shop.example.com", "shop.example.com"},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Domain(tt.rawURL); got != tt.want {
				t.Errorf("Domain(%q) = %q, want %q", tt.rawURL, got, tt.want)
			}
		})
	}
}
