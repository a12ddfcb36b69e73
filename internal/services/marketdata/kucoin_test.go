package marketdata

import (
	"testing"
	"time"
)

func TestCandlePoints(t *testing.T) {
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	rows := [][]string{
		{"1710028800", "101", "100.5", "102", "99", "10", "1000"}, // unix seconds
		{"not-a-time", "101", "100.5", "102", "99", "10", "1000"}, // bad timestamp
		{"1710028800", "101", "oops", "102", "99", "10", "1000"},  // bad close
		{"1710028800", "101", "0", "102", "99", "10", "1000"},     // non-positive close
		{"1710028800"}, // truncated row
	}

	pts := candlePoints(rows)
	if len(pts) != 1 {
		t.Fatalf("points = %d, want 1 (malformed rows dropped)", len(pts))
	}
	if !pts[0].Date.Equal(day) {
		t.Errorf("date = %v, want %v", pts[0].Date, day)
	}
	if pts[0].Close != 100.5 {
		t.Errorf("close = %v, want 100.5", pts[0].Close)
	}
}
