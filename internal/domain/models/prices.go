package models

import "time"

// PricePoint is one daily close for a symbol. Points are immutable once
// loaded and ordered by date.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries holds the ordered daily closes for one symbol. A series is
// owned exclusively by one simulation run and never mutated after loading.
// Dates are strictly increasing; non-trading days are simply absent.
type PriceSeries struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"`
}

// Len returns the number of points in the series.
func (s *PriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Points)
}

// CurrentPrice returns the most recent close, or 0 for an empty series.
func (s *PriceSeries) CurrentPrice() float64 {
	if s.Len() == 0 {
		return 0
	}
	return s.Points[len(s.Points)-1].Close
}

// IndicatorSnapshot is the derived indicator state at one evaluation index.
// Fields whose trailing window is not fully populated carry Has*=false and
// must be skipped by scoring, not treated as zero.
type IndicatorSnapshot struct {
	Price float64

	MAShort    float64
	HasMAShort bool

	MALong    float64
	HasMALong bool

	Oscillator    float64
	HasOscillator bool

	DropShortPct    float64 // trailing 7-period change, percent
	HasDropShortPct bool

	DropLongPct    float64 // trailing 30-period change, percent
	HasDropLongPct bool
}
