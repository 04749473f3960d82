package handler

import "testing"

func TestFormatSizeLimit(t *testing.T) {
	tests := []struct {
		bytes int
		want  string
	}{
		{bytes: 1024 * 1024, want: "1 MB"},
		{bytes: 2 * 1024 * 1024, want: "2 MB"},
		{bytes: 1536 * 1024, want: "1.5 MB"},
		{bytes: 512, want: "512 bytes"},
	}
	for _, tt := range tests {
		if got := formatSizeLimit(tt.bytes); got != tt.want {
			t.Errorf("formatSizeLimit(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}
