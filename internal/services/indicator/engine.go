package indicator

import "SmartDCA/internal/domain/models"

// Config holds the trailing window lengths. Zero values fall back to the
// documented defaults.
type Config struct {
	ShortWindow      int // simple moving average, default 20
	LongWindow       int // simple moving average, default 50
	OscillatorPeriod int // RSI-style oscillator, default 14
	DropShortPeriods int // short drawdown lookback, default 7
	DropLongPeriods  int // long drawdown lookback, default 30
}

func (c *Config) applyDefaults() {
	if c.ShortWindow <= 0 {
		c.ShortWindow = 20
	}
	if c.LongWindow <= 0 {
		c.LongWindow = 50
	}
	if c.OscillatorPeriod <= 0 {
		c.OscillatorPeriod = 14
	}
	if c.DropShortPeriods <= 0 {
		c.DropShortPeriods = 7
	}
	if c.DropLongPeriods <= 0 {
		c.DropLongPeriods = 30
	}
}

// Engine computes indicator snapshots over a price series. It is a pure
// function of the series window ending at the evaluation index: no state, no
// look-ahead.
type Engine struct {
	cfg Config
}

func New(cfg Config) *Engine {
	cfg.applyDefaults()
	return &Engine{cfg: cfg}
}

// Snapshot computes the indicator state at index i using only points at or
// before i. Indicators whose trailing window is not fully populated are left
// with Has*=false so scoring can skip them; insufficient history is a policy,
// not an error.
func (e *Engine) Snapshot(series *models.PriceSeries, i int) models.IndicatorSnapshot {
	var snap models.IndicatorSnapshot
	if series == nil || i < 0 || i >= len(series.Points) {
		return snap
	}
	pts := series.Points
	snap.Price = pts[i].Close

	if ma, ok := trailingMean(pts, i, e.cfg.ShortWindow); ok {
		snap.MAShort, snap.HasMAShort = ma, true
	}
	if ma, ok := trailingMean(pts, i, e.cfg.LongWindow); ok {
		snap.MALong, snap.HasMALong = ma, true
	}
	if osc, ok := oscillator(pts, i, e.cfg.OscillatorPeriod); ok {
		snap.Oscillator, snap.HasOscillator = osc, true
	}
	if d, ok := changePct(pts, i, e.cfg.DropShortPeriods); ok {
		snap.DropShortPct, snap.HasDropShortPct = d, true
	}
	if d, ok := changePct(pts, i, e.cfg.DropLongPeriods); ok {
		snap.DropLongPct, snap.HasDropLongPct = d, true
	}
	return snap
}

// trailingMean is the arithmetic mean of the window closing prices ending at
// i, or ok=false if fewer than window points exist.
func trailingMean(pts []models.PricePoint, i, window int) (float64, bool) {
	if i+1 < window {
		return 0, false
	}
	sum := 0.0
	for j := i - window + 1; j <= i; j++ {
		sum += pts[j].Close
	}
	return sum / float64(window), true
}

// oscillator maps the gain/loss ratio over the trailing period changes to a
// 0-100 scale via 100 - 100/(1+RS). If the window saw no losses it saturates
// at 100 rather than dividing by zero.
func oscillator(pts []models.PricePoint, i, period int) (float64, bool) {
	if i < period {
		return 0, false
	}
	var gain, loss float64
	for j := i - period + 1; j <= i; j++ {
		change := pts[j].Close - pts[j-1].Close
		if change > 0 {
			gain += change
		} else {
			loss -= change
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)
	if avgLoss == 0 {
		return 100, true
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

// changePct is the percent change of the close over the trailing k periods,
// or ok=false if the series does not reach back that far.
func changePct(pts []models.PricePoint, i, k int) (float64, bool) {
	if i-k < 0 {
		return 0, false
	}
	base := pts[i-k].Close
	if base == 0 {
		return 0, false
	}
	return (pts[i].Close - base) / base * 100, true
}
