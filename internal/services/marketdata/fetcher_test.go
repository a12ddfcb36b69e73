package marketdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"SmartDCA/internal/domain/models"
)

func TestNormalizePair(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"BTC", "BTC-USDT"},
		{"btc", "BTC-USDT"},
		{"BTC-USDT", "BTC-USDT"},
		{"BTC/USD", "BTC-USDT"},
		{"eth-usdt", "ETH-USDT"},
		{"SOL-BTC", "SOL-BTC"},
		{" ada ", "ADA-USDT"},
	}
	for _, tc := range cases {
		if got := NormalizePair(tc.in); got != tc.want {
			t.Errorf("NormalizePair(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalizeSeries(t *testing.T) {
	pts := []models.PricePoint{
		{Date: day(3), Close: 102},
		{Date: day(1), Close: 100},
		{Date: day(2), Close: 0},    // dropped: non-positive
		{Date: day(3), Close: 103},  // same day: last value wins
		{Date: day(4), Close: -1},   // dropped
		{Date: day(1).Add(7 * time.Hour), Close: 101}, // intraday timestamp folds into the day
	}

	series := NormalizeSeries("AAA", pts)
	if series.Symbol != "AAA" {
		t.Errorf("symbol = %s, want AAA", series.Symbol)
	}
	if series.Len() != 2 {
		t.Fatalf("len = %d, want 2", series.Len())
	}
	if !series.Points[0].Date.Equal(day(1)) || series.Points[0].Close != 101 {
		t.Errorf("points[0] = %+v, want day1/101", series.Points[0])
	}
	if !series.Points[1].Date.Equal(day(3)) || series.Points[1].Close != 103 {
		t.Errorf("points[1] = %+v, want day3/103", series.Points[1])
	}
	for i := 1; i < series.Len(); i++ {
		if !series.Points[i-1].Date.Before(series.Points[i].Date) {
			t.Errorf("dates not strictly increasing at %d", i)
		}
	}
}

// fixedProvider returns a canned response or error.
type fixedProvider struct {
	name string
	pts  []models.PricePoint
	err  error
}

func (p fixedProvider) Name() string { return p.name }
func (p fixedProvider) Daily(context.Context, string, time.Time, time.Time) ([]models.PricePoint, error) {
	return p.pts, p.err
}

func TestFetchDailyFallsThroughProviders(t *testing.T) {
	good := []models.PricePoint{{Date: day(1), Close: 100}, {Date: day(2), Close: 101}}
	f := NewFetcher([]Provider{
		fixedProvider{name: "down", err: errors.New("boom")},
		fixedProvider{name: "empty"},
		fixedProvider{name: "up", pts: good},
	}, nil)

	series, err := f.FetchDaily(context.Background(), "AAA", 6)
	if err != nil {
		t.Fatalf("FetchDaily: %v", err)
	}
	if series.Len() != 2 {
		t.Errorf("len = %d, want 2", series.Len())
	}
}

func TestFetchDailyAllProvidersFail(t *testing.T) {
	f := NewFetcher([]Provider{
		fixedProvider{name: "down", err: errors.New("boom")},
	}, nil)

	_, err := f.FetchDaily(context.Background(), "AAA", 6)
	if !errors.Is(err, models.ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}

func TestFetchDailyRejectsBadMonths(t *testing.T) {
	f := NewFetcher(nil, nil)
	if _, err := f.FetchDaily(context.Background(), "AAA", 0); !errors.Is(err, models.ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}
