package signal

import (
	"strings"
	"testing"

	"SmartDCA/internal/domain/models"
)

func TestScoreNoConditions(t *testing.T) {
	s := New(Config{})
	snap := models.IndicatorSnapshot{
		Price:  100,
		MAShort: 100, HasMAShort: true,
		MALong: 100, HasMALong: true,
		Oscillator: 55, HasOscillator: true,
		DropShortPct: 1.0, HasDropShortPct: true,
		DropLongPct: 2.0, HasDropLongPct: true,
	}
	sig := s.Score(snap)
	if sig.Strength != 0 {
		t.Errorf("expected strength 0, got %v", sig.Strength)
	}
	if sig.Class != models.SignalNone {
		t.Errorf("expected class none, got %v", sig.Class)
	}
	if sig.Reason() != "" {
		t.Errorf("expected empty reason, got %q", sig.Reason())
	}
}

func TestScoreUndefinedIndicatorsSkipped(t *testing.T) {
	s := New(Config{})
	// Undefined fields carry values that would fire if mistaken for valid.
	snap := models.IndicatorSnapshot{
		Price:        50,
		MAShort:      100,
		MALong:       100,
		Oscillator:   5,
		DropShortPct: -50,
		DropLongPct:  -50,
	}
	sig := s.Score(snap)
	if sig.Strength != 0 || len(sig.Fragments) != 0 {
		t.Fatalf("undefined indicators must not contribute, got %+v", sig)
	}
}

func TestScoreAllConditionsStack(t *testing.T) {
	s := New(Config{})
	snap := models.IndicatorSnapshot{
		Price:   80,
		MAShort: 100, HasMAShort: true, // -20% vs MA20 -> +25
		MALong: 100, HasMALong: true, // -20% vs MA50 -> +30
		Oscillator: 25, HasOscillator: true, // very oversold -> +30
		DropShortPct: -15, HasDropShortPct: true, // -> +20
		DropLongPct: -25, HasDropLongPct: true, // -> +25
	}
	sig := s.Score(snap)
	if sig.Strength != 130 {
		t.Errorf("expected stacked strength 130, got %v", sig.Strength)
	}
	if sig.Class != models.SignalBoomRange {
		t.Errorf("expected boom_range, got %v", sig.Class)
	}
	if len(sig.Fragments) != 5 {
		t.Errorf("expected 5 fragments, got %d: %v", len(sig.Fragments), sig.Fragments)
	}
	reason := sig.Reason()
	if !strings.Contains(reason, "below MA20") || !strings.Contains(reason, " | ") {
		t.Errorf("unexpected reason %q", reason)
	}
}

func TestScoreBoomBoundary(t *testing.T) {
	// A single MA50 breach (+30) plus oversold oscillator (+15) lands at 45;
	// tune the threshold around it to pin the >= boundary.
	snap := models.IndicatorSnapshot{
		Price:  85,
		MALong: 100, HasMALong: true,
		Oscillator: 35, HasOscillator: true,
	}

	at := New(Config{BoomThreshold: 45}).Score(snap)
	if at.Strength != 45 {
		t.Fatalf("expected strength 45, got %v", at.Strength)
	}
	if at.Class != models.SignalBoomRange {
		t.Errorf("strength exactly at threshold must classify boom_range")
	}

	above := New(Config{BoomThreshold: 45.001}).Score(snap)
	if above.Class != models.SignalNone {
		t.Errorf("strength below threshold must not classify boom_range")
	}
}

func TestScoreDefaultThresholdAtForty(t *testing.T) {
	// MA20 breach (+25) plus oversold oscillator (+15) is exactly 40 under
	// the default weights and must land in the boom range.
	snap := models.IndicatorSnapshot{
		Price:   93,
		MAShort: 100, HasMAShort: true,
		Oscillator: 36, HasOscillator: true,
	}
	sig := New(Config{}).Score(snap)
	if sig.Strength != 40 {
		t.Fatalf("expected strength 40, got %v", sig.Strength)
	}
	if sig.Class != models.SignalBoomRange {
		t.Errorf("expected boom_range at the default threshold")
	}

	// Shaving the MA weight to 24.999 leaves 39.999: no longer boom.
	under := New(Config{BelowMAShortWeight: 24.999}).Score(snap)
	if under.Strength >= 40 {
		t.Fatalf("expected strength just under 40, got %v", under.Strength)
	}
	if under.Class != models.SignalNone {
		t.Errorf("39.999 must not classify boom_range")
	}
}

func TestScoreOscillatorAloneIsNotBoom(t *testing.T) {
	// Very oversold oscillator clears a low threshold by itself, but without
	// a moving-average or drawdown condition the class stays none.
	snap := models.IndicatorSnapshot{
		Price:      100,
		Oscillator: 10, HasOscillator: true,
	}
	sig := New(Config{BoomThreshold: 20}).Score(snap)
	if sig.Strength != 30 {
		t.Fatalf("expected strength 30, got %v", sig.Strength)
	}
	if sig.Class != models.SignalNone {
		t.Errorf("oscillator-only signal must not classify boom_range")
	}
}

func TestScoreDeterministic(t *testing.T) {
	s := New(Config{})
	snap := models.IndicatorSnapshot{
		Price:   90,
		MAShort: 100, HasMAShort: true,
		Oscillator: 32, HasOscillator: true,
	}
	a := s.Score(snap)
	b := s.Score(snap)
	if a.Strength != b.Strength || a.Class != b.Class || a.Reason() != b.Reason() {
		t.Fatalf("scoring must be deterministic: %+v vs %+v", a, b)
	}
}
