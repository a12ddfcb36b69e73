package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"SmartDCA/internal/domain/models"
	domrepo "SmartDCA/internal/domain/repository"
	pkgch "SmartDCA/pkg/clickhouse"
	applogger "SmartDCA/pkg/logger"
)

const dailyBarsTable = "smartdca.daily_bars"

// DailyBarsSchema is applied at startup via clickhouse.Client.InitSchema.
var DailyBarsSchema = []string{
	"CREATE DATABASE IF NOT EXISTS smartdca",
	`CREATE TABLE IF NOT EXISTS smartdca.daily_bars (
        symbol String,
        day    Date,
        close  Float64
    ) ENGINE = ReplacingMergeTree
    ORDER BY (symbol, day)`,
}

// CHPriceStore archives daily close series in ClickHouse so repeat analyses
// and upstream outages can be served from local history.
type CHPriceStore struct {
	ch *pkgch.Client
	db *sql.DB
	l  *applogger.Logger
}

func NewCHPriceStore(ch *pkgch.Client) *CHPriceStore {
	return &CHPriceStore{ch: ch, db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHPriceStore) SetLogger(l *applogger.Logger) { s.l = l }

var _ domrepo.PriceStore = (*CHPriceStore)(nil)

func (s *CHPriceStore) Store(ctx context.Context, series *models.PriceSeries) error {
	if series == nil || series.Len() == 0 {
		return nil
	}
	start := time.Now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	q := fmt.Sprintf("INSERT INTO %s (symbol, day, close) VALUES (?, ?, ?)", dailyBarsTable)
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range series.Points {
		if _, err := stmt.ExecContext(ctx, series.Symbol, p.Date, p.Close); err != nil {
			_ = tx.Rollback()
			if s.l != nil {
				s.l.Error("clickhouse store_bars exec error",
					applogger.String("symbol", series.Symbol),
					applogger.Error(err),
				)
			}
			return fmt.Errorf("insert bar: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bars: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse store_bars ok",
			applogger.String("symbol", series.Symbol),
			applogger.Int("rows", series.Len()),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

func (s *CHPriceStore) Load(ctx context.Context, symbol string, from time.Time) (*models.PriceSeries, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT day, argMax(close, day) AS close
        FROM %s
        WHERE symbol = ? AND day >= ?
        GROUP BY day
        ORDER BY day ASC
    `, dailyBarsTable)
	rows, err := s.db.QueryContext(ctx, q, symbol, from)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse load_bars query error",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("load bars: %w", err)
	}
	defer rows.Close()

	out := make([]models.PricePoint, 0, 1024)
	for rows.Next() {
		var p models.PricePoint
		if err := rows.Scan(&p.Date, &p.Close); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse load_bars scan error",
					applogger.String("symbol", symbol),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse load_bars ok",
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return &models.PriceSeries{Symbol: symbol, Points: out}, nil
}

func (s *CHPriceStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHPriceStore) Close() error {
	return s.ch.Close()
}
