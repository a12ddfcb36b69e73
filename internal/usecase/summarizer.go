package usecase

import (
	"SmartDCA/internal/domain/models"
	domrepo "SmartDCA/internal/domain/repository"
	"SmartDCA/pkg/util"
)

// BuildResult freezes a finished simulation state into the terminal Result:
// pure aggregation over the state plus the latest known price, no further
// decisions.
func BuildResult(state *models.SimulationState, series *models.PriceSeries, p SimulationParams) *models.Result {
	currentPrice := series.CurrentPrice()
	currentValue := state.TotalShares * currentPrice
	profitLoss := currentValue - state.TotalInvested

	// zero-guarded: no trade ever executed reports 0%, never divides by zero
	returnPct := 0.0
	if state.TotalInvested > 0 {
		returnPct = profitLoss / state.TotalInvested * 100
	}

	buyRate := 0.0
	if state.Periods > 0 {
		buyRate = float64(state.MonthsBought) / float64(state.Periods)
	}

	prof := profiles[domrepo.NormalizeProfile(string(p.Profile))]
	minSignal := prof.MinSignalStrength
	if p.MinSignalStrength != nil {
		minSignal = *p.MinSignalStrength
	}
	fallbackThreshold := prof.FallbackThreshold
	if p.FallbackThreshold != nil && *p.FallbackThreshold > 0 {
		fallbackThreshold = *p.FallbackThreshold
	}

	trades := state.Trades
	if trades == nil {
		trades = []models.Trade{}
	}
	records := state.MonthlyRecords
	if records == nil {
		records = []models.MonthlyRecord{}
	}

	return &models.Result{
		Symbol:            p.Symbol,
		TotalInvested:     util.Round2(state.TotalInvested),
		TotalShares:       util.Round6(state.TotalShares),
		CurrentValue:      util.Round2(currentValue),
		CurrentPrice:      util.Round4(currentPrice),
		ProfitLoss:        util.Round2(profitLoss),
		ReturnPercent:     util.Round2(returnPct),
		MonthsBought:      state.MonthsBought,
		MonthsWaited:      state.MonthsWaited,
		BuyRate:           util.Round4(buyRate),
		UnusedBudget:      util.Round2(state.AccumulatedBudget),
		Trades:            trades,
		MonthlySummary:    records,
		StrategyProfile:   string(domrepo.NormalizeProfile(string(p.Profile))),
		AllocationMode:    string(domrepo.NormalizeAllocationMode(string(p.AllocationMode))),
		MinSignalStrength: util.Round2(minSignal),
		MinTradeAmount:    util.Round2(p.MinTradeAmount),
		FallbackThreshold: util.Round2(fallbackThreshold),
	}
}

// Summarize ranks a finished batch by return percent. Comparison is strict,
// so ties keep the first-seen result; input order is the request order.
func Summarize(results []models.Result) *models.BatchSummary {
	if len(results) == 0 {
		return nil
	}
	best, worst := results[0], results[0]
	for _, r := range results[1:] {
		if r.ReturnPercent > best.ReturnPercent {
			best = r
		}
		if r.ReturnPercent < worst.ReturnPercent {
			worst = r
		}
	}
	return &models.BatchSummary{
		BestPerformer:  models.Performer{Symbol: best.Symbol, ReturnPercent: best.ReturnPercent},
		WorstPerformer: models.Performer{Symbol: worst.Symbol, ReturnPercent: worst.ReturnPercent},
		TotalSymbols:   len(results),
	}
}
