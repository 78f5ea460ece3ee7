package tools

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePartySize(t *testing.T) {
	n, err := ParsePartySize(" 4 ")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	for _, bad := range []string{"abc", "", "0", "-2", "four"} {
		_, err := ParsePartySize(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestParseArrivalTime(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.Local)

	tests := []struct {
		in           string
		hour, minute int
	}{
		{"7pm", 19, 0},
		{"7:30 pm", 19, 30},
		{"7:30pm", 19, 30},
		{"19:30", 19, 30},
		{"12am", 0, 0},
		{"12pm", 12, 0},
		{"9 am", 9, 0},
	}
	for _, tt := range tests {
		got, err := ParseArrivalTime(tt.in, now)
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.hour, got.Hour(), "input %q", tt.in)
		assert.Equal(t, tt.minute, got.Minute(), "input %q", tt.in)
		assert.Equal(t, now.Day(), got.Day(), "same-day timestamp for %q", tt.in)
	}
}

func TestParseArrivalTimeFailures(t *testing.T) {
	now := time.Now()
	for _, bad := range []string{"soon", "evening", ""} {
		_, err := ParseArrivalTime(bad, now)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestParsePaymentText(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"online", "online", true},
		{"I'll pay with eSewa", "online", true},
		{"khalti please", "online", true},
		{"cash", "cash", true},
		{"COD", "cash", true},
		{"card", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParsePaymentText(tt.in)
		assert.Equal(t, tt.wantOK, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}
