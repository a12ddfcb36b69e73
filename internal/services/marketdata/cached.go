package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"SmartDCA/internal/domain/models"
	domrepo "SmartDCA/internal/domain/repository"
	"SmartDCA/pkg/cache"
	applogger "SmartDCA/pkg/logger"
)

// CachedSource wraps a PriceSource with a cache layer and an optional
// durable archive. Cache values are JSON strings so the memory and redis
// backends behave identically.
type CachedSource struct {
	upstream domrepo.PriceSource
	cache    cache.Service
	archive  domrepo.PriceStore
	ttl      time.Duration
	logger   *applogger.Logger
}

// NewCachedSource decorates upstream with caching. archive may be nil.
func NewCachedSource(upstream domrepo.PriceSource, c cache.Service, archive domrepo.PriceStore, ttl time.Duration, logger *applogger.Logger) *CachedSource {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &CachedSource{upstream: upstream, cache: c, archive: archive, ttl: ttl, logger: logger}
}

var _ domrepo.PriceSource = (*CachedSource)(nil)

func (s *CachedSource) FetchDaily(ctx context.Context, symbol string, months int) (*models.PriceSeries, error) {
	key := cache.GenerateKeyWithParams("series", symbol, months)

	if s.cache != nil {
		var raw string
		if err := s.cache.Get(ctx, key, &raw); err == nil {
			var series models.PriceSeries
			if uerr := json.Unmarshal([]byte(raw), &series); uerr == nil && series.Len() > 0 {
				return &series, nil
			}
		} else if !errors.Is(err, cache.ErrCacheMiss) && s.logger != nil {
			s.logger.Warn("series cache read failed", applogger.String("key", key), applogger.Error(err))
		}
	}

	series, err := s.upstream.FetchDaily(ctx, symbol, months)
	if err != nil {
		if s.archive != nil {
			from := time.Now().UTC().AddDate(0, 0, -months*32)
			if fallback, lerr := s.archive.Load(ctx, symbol, from); lerr == nil && fallback.Len() > 0 {
				if s.logger != nil {
					s.logger.Warn("serving archived series after fetch failure",
						applogger.String("symbol", symbol), applogger.Error(err))
				}
				return fallback, nil
			}
		}
		return nil, err
	}

	if s.cache != nil {
		if raw, merr := json.Marshal(series); merr == nil {
			if cerr := s.cache.Set(ctx, key, string(raw), s.ttl); cerr != nil && s.logger != nil {
				s.logger.Warn("series cache write failed", applogger.String("key", key), applogger.Error(cerr))
			}
		}
	}
	if s.archive != nil {
		if serr := s.archive.Store(ctx, series); serr != nil && s.logger != nil {
			s.logger.Warn("series archive write failed",
				applogger.String("symbol", symbol), applogger.Error(serr))
		}
	}
	return series, nil
}
