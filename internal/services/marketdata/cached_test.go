package marketdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"SmartDCA/internal/domain/models"
	"SmartDCA/pkg/cache"
)

// countingSource tracks upstream calls.
type countingSource struct {
	series *models.PriceSeries
	err    error
	calls  int
}

func (s *countingSource) FetchDaily(context.Context, string, int) (*models.PriceSeries, error) {
	s.calls++
	return s.series, s.err
}

func TestCachedSourceServesRepeatsFromCache(t *testing.T) {
	upstream := &countingSource{series: &models.PriceSeries{
		Symbol: "AAA",
		Points: []models.PricePoint{{Date: day(1), Close: 100}, {Date: day(2), Close: 101}},
	}}
	src := NewCachedSource(upstream, cache.NewMemoryCache(), nil, time.Minute, nil)

	for i := 0; i < 3; i++ {
		series, err := src.FetchDaily(context.Background(), "AAA", 6)
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if series.Len() != 2 || series.Points[1].Close != 101 {
			t.Fatalf("fetch %d: unexpected series %+v", i, series)
		}
	}
	if upstream.calls != 1 {
		t.Errorf("upstream calls = %d, want 1 (repeats served from cache)", upstream.calls)
	}
}

func TestCachedSourceKeysIncludeHorizon(t *testing.T) {
	upstream := &countingSource{series: &models.PriceSeries{
		Symbol: "AAA",
		Points: []models.PricePoint{{Date: day(1), Close: 100}},
	}}
	src := NewCachedSource(upstream, cache.NewMemoryCache(), nil, time.Minute, nil)

	if _, err := src.FetchDaily(context.Background(), "AAA", 6); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if _, err := src.FetchDaily(context.Background(), "AAA", 12); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if upstream.calls != 2 {
		t.Errorf("upstream calls = %d, want 2 (different horizons are distinct keys)", upstream.calls)
	}
}

func TestCachedSourcePropagatesUpstreamError(t *testing.T) {
	upstream := &countingSource{err: errors.New("venue down")}
	src := NewCachedSource(upstream, cache.NewMemoryCache(), nil, time.Minute, nil)

	if _, err := src.FetchDaily(context.Background(), "AAA", 6); err == nil {
		t.Error("expected upstream error with no archive to fall back on")
	}
}
