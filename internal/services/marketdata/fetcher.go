package marketdata

import (
	"context"
	"fmt"
	"sort"
	"time"

	"SmartDCA/internal/domain/models"
	domrepo "SmartDCA/internal/domain/repository"
	applogger "SmartDCA/pkg/logger"
)

// Fetcher resolves symbols against an ordered provider chain (crypto venue
// first, stock data as fallback, mirroring the kinds of symbols users throw
// at the analyzer). The first provider that yields a usable series wins.
type Fetcher struct {
	providers []Provider
	logger    *applogger.Logger
	now       func() time.Time
}

// NewFetcher builds a fetcher over the given provider chain.
func NewFetcher(providers []Provider, logger *applogger.Logger) *Fetcher {
	return &Fetcher{providers: providers, logger: logger, now: time.Now}
}

var _ domrepo.PriceSource = (*Fetcher)(nil)

// FetchDaily returns an ordered, date-deduplicated daily close series
// covering roughly the requested number of months. When no provider can
// resolve the symbol it returns models.ErrNoData so the boundary can map it
// to a not-found response.
func (f *Fetcher) FetchDaily(ctx context.Context, symbol string, months int) (*models.PriceSeries, error) {
	if months <= 0 {
		return nil, fmt.Errorf("%w: months must be positive", models.ErrInvalidConfig)
	}
	to := f.now().UTC()
	// a slack of 32 days per month keeps the first simulated month fully covered
	from := to.AddDate(0, 0, -months*32)

	for _, p := range f.providers {
		pts, err := p.Daily(ctx, symbol, from, to)
		if err != nil {
			if f.logger != nil {
				f.logger.Warn("provider fetch failed",
					applogger.String("provider", p.Name()),
					applogger.String("symbol", symbol),
					applogger.Error(err),
				)
			}
			continue
		}
		if len(pts) == 0 {
			continue
		}
		series := NormalizeSeries(symbol, pts)
		if series.Len() == 0 {
			continue
		}
		if f.logger != nil {
			f.logger.Debug("series fetched",
				applogger.String("provider", p.Name()),
				applogger.String("symbol", symbol),
				applogger.Int("points", series.Len()),
			)
		}
		return series, nil
	}
	return nil, fmt.Errorf("%w: symbol %s", models.ErrNoData, symbol)
}

// NormalizeSeries sorts points by date, drops non-positive closes, and keeps
// the last value per calendar day so the series satisfies the strictly
// increasing dates invariant.
func NormalizeSeries(symbol string, pts []models.PricePoint) *models.PriceSeries {
	cp := make([]models.PricePoint, 0, len(pts))
	for _, p := range pts {
		if p.Close > 0 {
			cp = append(cp, models.PricePoint{Date: p.Date.UTC().Truncate(24 * time.Hour), Close: p.Close})
		}
	}
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].Date.Before(cp[j].Date) })

	out := cp[:0]
	for _, p := range cp {
		if len(out) > 0 && out[len(out)-1].Date.Equal(p.Date) {
			out[len(out)-1] = p
			continue
		}
		out = append(out, p)
	}
	return &models.PriceSeries{Symbol: symbol, Points: out}
}
