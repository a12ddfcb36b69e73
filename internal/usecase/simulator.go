package usecase

import (
	"fmt"

	"SmartDCA/internal/domain/models"
	domrepo "SmartDCA/internal/domain/repository"
	domsvc "SmartDCA/internal/domain/service"
	"SmartDCA/pkg/util"
)

// profileConfig holds the per-profile policy constants. Values mirror the
// documented strategy presets; overridable per request through
// SimulationParams.
type profileConfig struct {
	MinSignalStrength float64
	FallbackThreshold float64 // buy the monthly dip below avg*threshold
	TieredBase        float64
	TieredBonus       float64
	TieredFloor       float64
	FallbackFraction  float64
}

var profiles = map[domrepo.Profile]profileConfig{
	domrepo.ProfileAggressive: {
		MinSignalStrength: 30,
		FallbackThreshold: 0.97,
		TieredBase:        0.50,
		TieredBonus:       0.45,
		TieredFloor:       0.35,
		FallbackFraction:  0.60,
	},
	domrepo.ProfileBalanced: {
		MinSignalStrength: 40,
		FallbackThreshold: 0.95,
		TieredBase:        0.45,
		TieredBonus:       0.45,
		TieredFloor:       0.30,
		FallbackFraction:  0.50,
	},
	domrepo.ProfileConservative: {
		MinSignalStrength: 55,
		FallbackThreshold: 0.93,
		TieredBase:        0.35,
		TieredBonus:       0.40,
		TieredFloor:       0.25,
		FallbackFraction:  0.40,
	},
}

// EvalMode names the evaluation-date policy for a period.
type EvalMode string

const (
	// EvalBestDay scans every trading day of the month and keeps the
	// strongest boom signal.
	EvalBestDay EvalMode = "best_day"
	// EvalFixedDay evaluates a single representative date: the first trading
	// day at or after the configured day of month, falling back to the last
	// trading day of the month.
	EvalFixedDay EvalMode = "fixed_day"
)

// EvalPolicy is the injectable evaluation-date policy.
type EvalPolicy struct {
	Mode       EvalMode
	DayOfMonth int // only used by EvalFixedDay, default 15
}

func (p *EvalPolicy) applyDefaults() {
	if p.Mode != EvalFixedDay {
		p.Mode = EvalBestDay
	}
	if p.DayOfMonth <= 0 || p.DayOfMonth > 28 {
		p.DayOfMonth = 15
	}
}

// SimulationParams configures one simulation run. Nil pointer fields fall
// back to the profile's defaults.
type SimulationParams struct {
	Symbol            string
	MonthlyAmount     float64
	Months            int
	Profile           domrepo.Profile
	AllocationMode    domrepo.AllocationMode
	MinSignalStrength *float64
	MinTradeAmount    float64
	FallbackThreshold *float64
	Eval              EvalPolicy
}

// Simulator owns the month-by-month state machine: budget accumulation, the
// buy/skip decision, and the append-only trade and period ledgers. It drives
// the indicator engine and signal scorer once per evaluated trading day.
type Simulator struct {
	engine domsvc.IndicatorEngine
	scorer domsvc.SignalScorer
}

func NewSimulator(engine domsvc.IndicatorEngine, scorer domsvc.SignalScorer) *Simulator {
	return &Simulator{engine: engine, scorer: scorer}
}

// Run folds the series through the period state machine and returns the
// frozen simulation state. The series is read-only; all mutation happens on
// the state, which is exclusively owned by this run.
//
// A series shorter than the requested horizon produces fewer periods, not an
// error. An empty or nil series is a data-insufficiency failure.
func (s *Simulator) Run(series *models.PriceSeries, p SimulationParams) (*models.SimulationState, error) {
	if p.Months <= 0 {
		return nil, fmt.Errorf("%w: months must be positive, got %d", models.ErrInvalidConfig, p.Months)
	}
	if p.MonthlyAmount <= 0 {
		return nil, fmt.Errorf("%w: monthly amount must be positive, got %v", models.ErrInvalidConfig, p.MonthlyAmount)
	}
	if series.Len() == 0 {
		return nil, fmt.Errorf("%w: symbol %s", models.ErrInsufficientData, p.Symbol)
	}

	prof, ok := profiles[domrepo.NormalizeProfile(string(p.Profile))]
	if !ok {
		prof = profiles[domrepo.DefaultProfile()]
	}
	minSignal := prof.MinSignalStrength
	if p.MinSignalStrength != nil {
		minSignal = *p.MinSignalStrength
	}
	fallbackThreshold := prof.FallbackThreshold
	if p.FallbackThreshold != nil && *p.FallbackThreshold > 0 {
		fallbackThreshold = *p.FallbackThreshold
	}
	tiered := domrepo.NormalizeAllocationMode(string(p.AllocationMode)) == domrepo.AllocationTiered
	p.Eval.applyDefaults()

	pts := series.Points
	currentPrice := series.CurrentPrice()
	state := &models.SimulationState{}

	lastMonth := util.MonthStart(pts[len(pts)-1].Date)
	next := 0 // index of the first point not yet consumed

	for month := util.MonthStart(pts[0].Date); !month.After(lastMonth) && state.Periods < p.Months; month = util.NextMonth(month) {
		state.Periods++
		label := util.MonthLabel(month)
		monthEnd := util.NextMonth(month)

		lo := next
		for next < len(pts) && pts[next].Date.Before(monthEnd) {
			next++
		}
		hi := next

		state.AccumulatedBudget += p.MonthlyAmount

		if lo == hi {
			// no trading data for this month; budget carries over
			state.MonthsWaited++
			state.MonthlyRecords = append(state.MonthlyRecords, models.MonthlyRecord{
				Month:             label,
				AccumulatedBudget: util.Round2(state.AccumulatedBudget),
				MonthlyBudget:     p.MonthlyAmount,
			})
			continue
		}

		buyIdx, sig, tradeType, found := s.evaluateMonth(series, lo, hi, minSignal, p.Eval)

		if !found {
			if idx, frag, ok := fallbackDip(pts, lo, hi, fallbackThreshold); ok {
				buyIdx = idx
				sig = models.Signal{Fragments: []string{frag}, Class: models.SignalFallback}
				tradeType = models.TradeFallback
				found = true
			}
		}

		if !found {
			state.MonthsWaited++
			state.MonthlyRecords = append(state.MonthlyRecords, models.MonthlyRecord{
				Month:             label,
				AccumulatedBudget: util.Round2(state.AccumulatedBudget),
				MonthlyBudget:     p.MonthlyAmount,
			})
			continue
		}

		fraction := 1.0
		if tiered {
			if tradeType == models.TradeBoomRange {
				fraction = tieredFraction(sig.Strength, minSignal, prof)
			} else {
				fraction = prof.FallbackFraction
			}
		}

		amount := state.AccumulatedBudget * fraction
		if amount < p.MinTradeAmount {
			// too small to execute; the period counts as waited
			state.MonthsWaited++
			state.MonthlyRecords = append(state.MonthlyRecords, models.MonthlyRecord{
				Month:             label,
				AccumulatedBudget: util.Round2(state.AccumulatedBudget),
				MonthlyBudget:     p.MonthlyAmount,
			})
			continue
		}

		amount = util.Round2(amount)
		// portion funded by prior months' carryover, beyond this month's
		// own contribution
		carried := util.Round2(amount - p.MonthlyAmount)
		if carried < 0 {
			carried = 0
		}
		entry := pts[buyIdx].Close
		shares := amount / entry
		state.TotalShares += shares
		state.TotalInvested += amount

		tradeValue := shares * currentPrice
		tradePL := tradeValue - amount
		tradePLPct := 0.0
		if amount > 0 {
			tradePLPct = tradePL / amount * 100
		}

		trade := models.Trade{
			TradeDate:             util.DateLabel(pts[buyIdx].Date),
			Month:                 label,
			EntryPrice:            util.Round4(entry),
			AmountInvested:        amount,
			SharesBought:          util.Round6(shares),
			TotalSharesAfter:      util.Round6(state.TotalShares),
			SignalReason:          sig.Reason(),
			Type:                  tradeType,
			AccumulatedBudgetUsed: carried,
			CurrentPrice:          util.Round4(currentPrice),
			CurrentValue:          util.Round2(tradeValue),
			ProfitLoss:            util.Round2(tradePL),
			ProfitLossPercent:     util.Round2(tradePLPct),
			AllocationFraction:    util.Round(fraction, 3),
			SignalThreshold:       util.Round2(minSignal),
		}
		if tradeType == models.TradeBoomRange {
			trade.SignalStrength = util.Round2(sig.Strength)
		}

		state.Trades = append(state.Trades, trade)
		state.MonthsBought++

		state.AccumulatedBudget = util.Round2(state.AccumulatedBudget - amount)
		if state.AccumulatedBudget < 0 {
			state.AccumulatedBudget = 0
		}

		rec := models.MonthlyRecord{
			Month:             label,
			Traded:            true,
			Trade:             &state.Trades[len(state.Trades)-1],
			AccumulatedBudget: state.AccumulatedBudget,
			MonthlyBudget:     p.MonthlyAmount,
		}
		if tiered {
			rec.AllocationFraction = trade.AllocationFraction
		}
		state.MonthlyRecords = append(state.MonthlyRecords, rec)
	}

	return state, nil
}

// evaluateMonth applies the evaluation-date policy over the month's points
// [lo, hi) and returns the qualifying boom candidate, if any. Candidates
// below the minimum signal strength are discarded here so the fallback path
// can still fire.
func (s *Simulator) evaluateMonth(series *models.PriceSeries, lo, hi int, minSignal float64, eval EvalPolicy) (int, models.Signal, models.TradeType, bool) {
	var (
		bestIdx = -1
		bestSig models.Signal
	)

	consider := func(i int) {
		sig := s.scorer.Score(s.engine.Snapshot(series, i))
		if sig.Class != models.SignalBoomRange {
			return
		}
		if bestIdx < 0 || sig.Strength > bestSig.Strength {
			bestIdx, bestSig = i, sig
		}
	}

	switch eval.Mode {
	case EvalFixedDay:
		idx := hi - 1
		for i := lo; i < hi; i++ {
			if series.Points[i].Date.Day() >= eval.DayOfMonth {
				idx = i
				break
			}
		}
		consider(idx)
	default: // EvalBestDay
		for i := lo; i < hi; i++ {
			consider(i)
		}
	}

	if bestIdx < 0 || bestSig.Strength < minSignal {
		return -1, models.Signal{}, models.TradeBoomRange, false
	}
	return bestIdx, bestSig, models.TradeBoomRange, true
}

// fallbackDip finds a moderate monthly dip: the month's minimum close below
// the month average times the threshold. Returns the buy index and the
// presentation fragment.
func fallbackDip(pts []models.PricePoint, lo, hi int, threshold float64) (int, string, bool) {
	if lo >= hi {
		return -1, "", false
	}
	sum := 0.0
	minIdx := lo
	for i := lo; i < hi; i++ {
		sum += pts[i].Close
		if pts[i].Close < pts[minIdx].Close {
			minIdx = i
		}
	}
	avg := sum / float64(hi-lo)
	if avg <= 0 || pts[minIdx].Close >= avg*threshold {
		return -1, "", false
	}
	dipPct := (pts[minIdx].Close - avg) / avg * 100
	return minIdx, fmt.Sprintf("Monthly dip (%.1f%% below avg)", dipPct), true
}

// tieredFraction scales the deployed fraction with normalized signal
// strength, clamped to [floor, 1].
func tieredFraction(strength, minSignal float64, prof profileConfig) float64 {
	normalized := 0.0
	if minSignal < 100 {
		normalized = (strength - minSignal) / (100 - minSignal)
		if normalized < 0 {
			normalized = 0
		}
		if normalized > 1 {
			normalized = 1
		}
	}
	fraction := prof.TieredBase + prof.TieredBonus*normalized
	if fraction < prof.TieredFloor {
		fraction = prof.TieredFloor
	}
	if fraction > 1 {
		fraction = 1
	}
	return fraction
}
