package timestamp

import (
	"testing"
	"time"
)

func TestNow(t *testing.T) {
	before := time.Now().UnixMilli()
	ts := Now()
	after := time.Now().UnixMilli()

	if ts < before || ts > after {
		t.Errorf("Now() = %d, expected between %d and %d", ts, before, after)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		input    int64
		expected string
	}{
		{"normal timestamp", 1673785845000, "2023-01-15T12:30:45Z"},
		{"zero timestamp", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.input)
			if result != tt.expected {
				t.Errorf("Format(%d) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestFormatIsUTC(t *testing.T) {
	// Formatting must not depend on the local zone.
	got := Format(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC).UnixMilli())
	if got != "2024-06-01T08:00:00Z" {
		t.Errorf("Format = %q, expected UTC rendering", got)
	}
}
