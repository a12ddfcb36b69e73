package repository

import (
	"context"
	"time"

	"SmartDCA/internal/domain/models"
)

// PriceSource resolves a symbol to its historical daily close series covering
// roughly the requested number of months. Implementations must return an
// ordered, date-deduplicated series of trading days only, and surface
// models.ErrNoData when the symbol cannot be resolved.
type PriceSource interface {
	FetchDaily(ctx context.Context, symbol string, months int) (*models.PriceSeries, error)
}

// PriceStore archives fetched daily bars so repeat analyses can be served
// without hitting upstream APIs.
type PriceStore interface {
	Store(ctx context.Context, series *models.PriceSeries) error
	Load(ctx context.Context, symbol string, from time.Time) (*models.PriceSeries, error)
	Health(ctx context.Context) error
	Close() error
}

// ResultPublisher emits finished per-symbol results to downstream consumers.
type ResultPublisher interface {
	Publish(ctx context.Context, res *models.Result) error
	Close() error
}

// Metrics records operational metrics for the analysis pipeline.
type Metrics interface {
	RecordAnalysis(symbol, outcome string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
