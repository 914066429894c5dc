package middleware

import "testing"

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{
			"UUID replacement",
			"/api/codes/550e8400-e29b-41d4-a716-446655440000/analytics",
			"/api/codes/:id/analytics",
		},
		{
			"ObjectID replacement",
			"/api/codes/507f1f77bcf86cd799439011/analytics",
			"/api/codes/:id/analytics",
		},
		{
			"numeric ID replacement",
			"/api/codes/12345",
			"/api/codes/:id",
		},
		{
			"no change for short code path",
			"/codes/abcXYZ",
			"/codes/abcXYZ",
		},
		{
			"root path unchanged",
			"/",
			"/",
		},
		{
			"health endpoint unchanged",
			"/health",
			"/health",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizePath(tt.path)
			if got != tt.want {
				t.Errorf("normalizePath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
