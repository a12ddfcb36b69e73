package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseTimeRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "not-a-time", "-5"} {
		if _, ok := ParseTime(s); ok {
			t.Errorf("ParseTime(%q) unexpectedly ok", s)
		}
	}
}

func TestMonthHelpers(t *testing.T) {
	d := time.Date(2024, 3, 17, 15, 4, 5, 0, time.UTC)
	if got := MonthStart(d); !got.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected month start %v", got)
	}
	if got := NextMonth(d); !got.Equal(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected next month %v", got)
	}
	if got := MonthLabel(d); got != "2024-03" {
		t.Fatalf("unexpected label %q", got)
	}
	// December rolls over the year.
	if got := NextMonth(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)); !got.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected year rollover %v", got)
	}
}

func TestRound(t *testing.T) {
	if got := Round2(1.239); got != 1.24 {
		t.Errorf("Round2(1.239) = %v", got)
	}
	if got := Round6(1.0/3.0) - 0.333333; got > 1e-9 || got < -1e-9 {
		t.Errorf("Round6(1/3) = %v", Round6(1.0/3.0))
	}
	if got := Round4(99.12339); got != 99.1234 {
		t.Errorf("Round4(99.12339) = %v", got)
	}
}
