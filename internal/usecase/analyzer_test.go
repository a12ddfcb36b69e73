package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"SmartDCA/internal/domain/models"
)

// mapSource serves canned series per symbol and fails the rest.
type mapSource struct {
	series map[string]*models.PriceSeries
}

func (m *mapSource) FetchDaily(_ context.Context, symbol string, _ int) (*models.PriceSeries, error) {
	if s, ok := m.series[symbol]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: symbol %s", models.ErrNoData, symbol)
}

func newTestAnalyzer(src *mapSource) *Analyzer {
	return NewAnalyzer(src, newTestSimulator(60, 80))
}

func TestAnalyzePreservesRequestOrder(t *testing.T) {
	src := &mapSource{series: map[string]*models.PriceSeries{}}
	symbols := []string{"AAA", "BBB", "CCC", "DDD"}
	for _, sym := range symbols {
		src.series[sym] = &models.PriceSeries{Symbol: sym, Points: flatMonths(testStart(), 3, 100)}
	}
	a := newTestAnalyzer(src)

	for run := 0; run < 3; run++ {
		batch, err := a.Analyze(context.Background(), symbols, BatchParams{MonthlyAmount: 100, Months: 3})
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}
		if len(batch.Results) != len(symbols) {
			t.Fatalf("results = %d, want %d", len(batch.Results), len(symbols))
		}
		for i, sym := range symbols {
			if batch.Results[i].Symbol != sym {
				t.Errorf("run %d: results[%d] = %s, want %s", run, i, batch.Results[i].Symbol, sym)
			}
		}
	}
}

func TestAnalyzeIsolatesFailedSymbols(t *testing.T) {
	src := &mapSource{series: map[string]*models.PriceSeries{
		"AAA": {Symbol: "AAA", Points: flatMonths(testStart(), 3, 100)},
		"CCC": {Symbol: "CCC", Points: flatMonths(testStart(), 3, 100)},
	}}
	a := newTestAnalyzer(src)

	batch, err := a.Analyze(context.Background(), []string{"AAA", "MISSING", "CCC"}, BatchParams{MonthlyAmount: 100, Months: 3})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(batch.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(batch.Results))
	}
	if batch.Results[0].Symbol != "AAA" || batch.Results[1].Symbol != "CCC" {
		t.Errorf("surviving order = %s,%s, want AAA,CCC", batch.Results[0].Symbol, batch.Results[1].Symbol)
	}
	if len(batch.Failed) != 1 || batch.Failed[0].Symbol != "MISSING" {
		t.Fatalf("failed = %+v, want one entry for MISSING", batch.Failed)
	}
	if batch.Failed[0].Error == "" {
		t.Error("failed entry must carry the error message")
	}
}

func TestAnalyzeRejectsInvalidBatch(t *testing.T) {
	a := newTestAnalyzer(&mapSource{})

	if _, err := a.Analyze(context.Background(), nil, BatchParams{MonthlyAmount: 100, Months: 3}); !errors.Is(err, models.ErrInvalidConfig) {
		t.Errorf("no symbols: err = %v, want ErrInvalidConfig", err)
	}
	if _, err := a.Analyze(context.Background(), []string{"AAA"}, BatchParams{MonthlyAmount: 100}); !errors.Is(err, models.ErrInvalidConfig) {
		t.Errorf("months=0: err = %v, want ErrInvalidConfig", err)
	}
	if _, err := a.Analyze(context.Background(), []string{"AAA"}, BatchParams{Months: 3}); !errors.Is(err, models.ErrInvalidConfig) {
		t.Errorf("amount=0: err = %v, want ErrInvalidConfig", err)
	}
}

func TestAnalyzeAllSymbolsFail(t *testing.T) {
	a := newTestAnalyzer(&mapSource{})

	batch, err := a.Analyze(context.Background(), []string{"AAA", "BBB"}, BatchParams{MonthlyAmount: 100, Months: 3})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(batch.Results) != 0 {
		t.Errorf("results = %d, want 0", len(batch.Results))
	}
	if len(batch.Failed) != 2 {
		t.Errorf("failed = %d, want 2", len(batch.Failed))
	}
}
