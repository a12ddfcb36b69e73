package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"SmartDCA/internal/domain/models"
	domrepo "SmartDCA/internal/domain/repository"
	"SmartDCA/internal/service/metrics"
	applogger "SmartDCA/pkg/logger"
)

// Analyzer orchestrates a multi-symbol analysis: price acquisition through
// the collaborator, one simulation per symbol, and result assembly. Symbols
// are independent, so they are evaluated concurrently with bounded workers;
// results are merged back in request order to keep best/worst tie-breaks
// deterministic.
type Analyzer struct {
	source  domrepo.PriceSource
	sim     *Simulator
	rec     domrepo.Metrics
	pub     domrepo.ResultPublisher
	logger  *applogger.Logger
	workers int
}

// AnalyzerOption configures the Analyzer.
type AnalyzerOption func(*Analyzer)

// WithMetrics attaches an operational metrics recorder.
func WithMetrics(rec domrepo.Metrics) AnalyzerOption {
	return func(a *Analyzer) { a.rec = rec }
}

// WithPublisher attaches a best-effort result publisher.
func WithPublisher(pub domrepo.ResultPublisher) AnalyzerOption {
	return func(a *Analyzer) { a.pub = pub }
}

// WithLogger attaches a structured logger.
func WithLogger(l *applogger.Logger) AnalyzerOption {
	return func(a *Analyzer) { a.logger = l }
}

// WithWorkers bounds the number of concurrent symbol evaluations.
func WithWorkers(n int) AnalyzerOption {
	return func(a *Analyzer) {
		if n > 0 {
			a.workers = n
		}
	}
}

func NewAnalyzer(source domrepo.PriceSource, sim *Simulator, opts ...AnalyzerOption) *Analyzer {
	metrics.Register()
	a := &Analyzer{source: source, sim: sim, workers: 4}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// BatchParams carries the per-request simulation parameters shared by every
// symbol in the batch.
type BatchParams struct {
	MonthlyAmount     float64
	Months            int
	Profile           domrepo.Profile
	AllocationMode    domrepo.AllocationMode
	MinSignalStrength *float64
	MinTradeAmount    float64
	Eval              EvalPolicy
}

// BatchResult holds the per-symbol outcomes of one analysis request, in
// request order. A failed symbol never aborts the batch.
type BatchResult struct {
	Results []models.Result
	Failed  []models.SymbolError
}

// Analyze runs the Smart DCA simulation for every requested symbol. Fatal
// configuration problems are rejected up front; per-symbol data problems are
// reported individually in BatchResult.Failed.
func (a *Analyzer) Analyze(ctx context.Context, symbols []string, p BatchParams) (*BatchResult, error) {
	if p.Months <= 0 {
		return nil, fmt.Errorf("%w: months must be positive", models.ErrInvalidConfig)
	}
	if p.MonthlyAmount <= 0 {
		return nil, fmt.Errorf("%w: monthly amount must be positive", models.ErrInvalidConfig)
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w: no symbols", models.ErrInvalidConfig)
	}

	type slot struct {
		res *models.Result
		err error
	}
	slots := make([]slot, len(symbols))

	sem := make(chan struct{}, a.workers)
	var wg sync.WaitGroup
	for i, symbol := range symbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			res, err := a.analyzeOne(ctx, symbol, p)
			slots[i] = slot{res: res, err: err}
		}(i, symbol)
	}
	wg.Wait()

	out := &BatchResult{}
	for i, s := range slots {
		if s.err != nil {
			out.Failed = append(out.Failed, models.SymbolError{Symbol: symbols[i], Error: s.err.Error()})
			continue
		}
		out.Results = append(out.Results, *s.res)
	}
	return out, nil
}

func (a *Analyzer) analyzeOne(ctx context.Context, symbol string, p BatchParams) (*models.Result, error) {
	start := time.Now()
	defer func() {
		metrics.SimulationLatency.WithLabelValues("analyze").Observe(time.Since(start).Seconds())
	}()

	series, err := a.source.FetchDaily(ctx, symbol, p.Months)
	if err != nil {
		a.record(symbol, "fetch_failed")
		if a.logger != nil {
			a.logger.Warn("price fetch failed",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		if errors.Is(err, models.ErrNoData) || errors.Is(err, models.ErrInsufficientData) {
			return nil, err
		}
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}

	state, err := a.sim.Run(series, SimulationParams{
		Symbol:            symbol,
		MonthlyAmount:     p.MonthlyAmount,
		Months:            p.Months,
		Profile:           p.Profile,
		AllocationMode:    p.AllocationMode,
		MinSignalStrength: p.MinSignalStrength,
		MinTradeAmount:    p.MinTradeAmount,
		Eval:              p.Eval,
	})
	if err != nil {
		a.record(symbol, "simulation_failed")
		metrics.SimulationErrors.WithLabelValues("simulate").Inc()
		return nil, err
	}

	res := BuildResult(state, series, SimulationParams{
		Symbol:            symbol,
		MonthlyAmount:     p.MonthlyAmount,
		Months:            p.Months,
		Profile:           p.Profile,
		AllocationMode:    p.AllocationMode,
		MinSignalStrength: p.MinSignalStrength,
		MinTradeAmount:    p.MinTradeAmount,
	})

	a.record(symbol, "ok")
	if a.rec != nil {
		a.rec.RecordLastPrice(symbol, res.CurrentPrice)
		a.rec.RecordLatency("analyze", time.Since(start).Seconds())
	}

	if a.pub != nil {
		if perr := a.pub.Publish(ctx, res); perr != nil && a.logger != nil {
			a.logger.Warn("result publish failed",
				applogger.String("symbol", symbol),
				applogger.Error(perr),
			)
		}
	}

	if a.logger != nil {
		a.logger.Info("symbol analyzed",
			applogger.String("symbol", symbol),
			applogger.Int("periods", state.Periods),
			applogger.Int("trades", state.MonthsBought),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return res, nil
}

func (a *Analyzer) record(symbol, outcome string) {
	if a.rec != nil {
		a.rec.RecordAnalysis(symbol, outcome)
		if outcome != "ok" {
			a.rec.RecordError(outcome)
		}
	}
}
