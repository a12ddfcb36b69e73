package signal

import (
	"fmt"

	"SmartDCA/internal/domain/models"
)

// Config holds the scoring weights and firing thresholds. Every constant is
// named and overridable; zero values fall back to the documented defaults.
// Thresholds on drops are negative percentages (a condition fires when the
// observed value goes below it).
type Config struct {
	BelowMAShortPct    float64 // fire when price sits this far below MA short, default -5
	BelowMAShortWeight float64 // default 25

	BelowMALongPct    float64 // default -10
	BelowMALongWeight float64 // default 30

	OscVeryOversold       float64 // default 30
	OscVeryOversoldWeight float64 // default 30
	OscOversold           float64 // default 40
	OscOversoldWeight     float64 // default 15

	DropShortPct    float64 // default -10
	DropShortWeight float64 // default 20

	DropLongPct    float64 // default -20
	DropLongWeight float64 // default 25

	// BoomThreshold is the fixed decision threshold: strength at or above it,
	// with at least one moving-average or drawdown condition fired, classifies
	// the signal as boom range. Default 40.
	BoomThreshold float64
}

func (c *Config) applyDefaults() {
	if c.BelowMAShortPct == 0 {
		c.BelowMAShortPct = -5
	}
	if c.BelowMAShortWeight == 0 {
		c.BelowMAShortWeight = 25
	}
	if c.BelowMALongPct == 0 {
		c.BelowMALongPct = -10
	}
	if c.BelowMALongWeight == 0 {
		c.BelowMALongWeight = 30
	}
	if c.OscVeryOversold == 0 {
		c.OscVeryOversold = 30
	}
	if c.OscVeryOversoldWeight == 0 {
		c.OscVeryOversoldWeight = 30
	}
	if c.OscOversold == 0 {
		c.OscOversold = 40
	}
	if c.OscOversoldWeight == 0 {
		c.OscOversoldWeight = 15
	}
	if c.DropShortPct == 0 {
		c.DropShortPct = -10
	}
	if c.DropShortWeight == 0 {
		c.DropShortWeight = 20
	}
	if c.DropLongPct == 0 {
		c.DropLongPct = -20
	}
	if c.DropLongWeight == 0 {
		c.DropLongWeight = 25
	}
	if c.BoomThreshold == 0 {
		c.BoomThreshold = 40
	}
}

// Scorer computes composite signal strength from an indicator snapshot. Each
// condition contributes independently when its indicator is available, so
// strength can stack past 100. No randomness, no hidden state.
type Scorer struct {
	cfg Config
}

func New(cfg Config) *Scorer {
	cfg.applyDefaults()
	return &Scorer{cfg: cfg}
}

// BoomThreshold exposes the effective decision threshold.
func (s *Scorer) BoomThreshold() float64 { return s.cfg.BoomThreshold }

// Score evaluates the snapshot. Conditions whose indicator is undefined are
// skipped, never scored as zero. Structural conditions (moving averages and
// drawdowns) gate the boom classification; the oscillator alone cannot put a
// period into the boom range.
func (s *Scorer) Score(snap models.IndicatorSnapshot) models.Signal {
	var (
		sig        models.Signal
		structural bool
	)

	if snap.HasMAShort && snap.MAShort > 0 {
		d := (snap.Price - snap.MAShort) / snap.MAShort * 100
		if d < s.cfg.BelowMAShortPct {
			sig.Fragments = append(sig.Fragments, fmt.Sprintf("%.1f%% below MA20", d))
			sig.Strength += s.cfg.BelowMAShortWeight
			structural = true
		}
	}

	if snap.HasMALong && snap.MALong > 0 {
		d := (snap.Price - snap.MALong) / snap.MALong * 100
		if d < s.cfg.BelowMALongPct {
			sig.Fragments = append(sig.Fragments, fmt.Sprintf("%.1f%% below MA50", d))
			sig.Strength += s.cfg.BelowMALongWeight
			structural = true
		}
	}

	if snap.HasOscillator {
		switch {
		case snap.Oscillator < s.cfg.OscVeryOversold:
			sig.Fragments = append(sig.Fragments, fmt.Sprintf("RSI very oversold (%.1f)", snap.Oscillator))
			sig.Strength += s.cfg.OscVeryOversoldWeight
		case snap.Oscillator < s.cfg.OscOversold:
			sig.Fragments = append(sig.Fragments, fmt.Sprintf("RSI oversold (%.1f)", snap.Oscillator))
			sig.Strength += s.cfg.OscOversoldWeight
		}
	}

	if snap.HasDropShortPct && snap.DropShortPct < s.cfg.DropShortPct {
		sig.Fragments = append(sig.Fragments, fmt.Sprintf("7-day drop: %.1f%%", snap.DropShortPct))
		sig.Strength += s.cfg.DropShortWeight
		structural = true
	}

	if snap.HasDropLongPct && snap.DropLongPct < s.cfg.DropLongPct {
		sig.Fragments = append(sig.Fragments, fmt.Sprintf("30-day drop: %.1f%%", snap.DropLongPct))
		sig.Strength += s.cfg.DropLongWeight
		structural = true
	}

	if sig.Strength >= s.cfg.BoomThreshold && structural {
		sig.Class = models.SignalBoomRange
	}
	return sig
}
