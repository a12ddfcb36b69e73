package marketdata

import (
	"context"
	"time"

	"SmartDCA/internal/domain/models"
)

// Provider fetches raw daily closes for a symbol from one upstream venue.
// Implementations return what the venue has; ordering and deduplication are
// the fetcher's job.
type Provider interface {
	Name() string
	Daily(ctx context.Context, symbol string, from, to time.Time) ([]models.PricePoint, error)
}
