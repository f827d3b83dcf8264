package timeutil

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{500 * time.Microsecond, "500µs"},
		{450 * time.Millisecond, "450ms"},
		{1200 * time.Millisecond, "1.2s"},
		{135300 * time.Millisecond, "2m 15.3s"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClockDigits(t *testing.T) {
	tests := []struct {
		name   string
		at     time.Time
		twelve bool
		want   [3]string
	}{
		{"Afternoon 24h", time.Date(2024, 1, 1, 13, 5, 9, 0, time.UTC), false, [3]string{"13", "05", "09"}},
		{"Afternoon 12h", time.Date(2024, 1, 1, 13, 5, 9, 0, time.UTC), true, [3]string{"01", "05", "09"}},
		{"Midnight 12h", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), true, [3]string{"12", "00", "00"}},
		{"Noon 12h", time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC), true, [3]string{"12", "30", "00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClockDigits(tt.at, tt.twelve); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
