package http11

import "testing"

func TestIsValidMethod(t *testing.T) {
	tests := []struct {
		name   string
		method string
		want   bool
	}{
		{"GET", "GET", true},
		{"POST", "POST", true},
		{"PUT", "PUT", true},
		{"DELETE", "DELETE", true},
		{"PATCH", "PATCH", true},
		{"HEAD", "HEAD", true},
		{"OPTIONS", "OPTIONS", true},
		{"CONNECT", "CONNECT", true},
		{"TRACE", "TRACE", true},
		{"lowercase get", "get", false},
		{"unknown verb", "TAKE", false},
		{"empty", "", false},
		{"partial", "GE", false},
		{"too long", "GETPOST", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidMethod(tt.method); got != tt.want {
				t.Errorf("IsValidMethod(%q) = %v, want %v", tt.method, got, tt.want)
			}
		})
	}
}
