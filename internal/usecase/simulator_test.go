package usecase

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"SmartDCA/internal/domain/models"
	domrepo "SmartDCA/internal/domain/repository"
	"SmartDCA/internal/services/indicator"
	"SmartDCA/internal/services/signal"
)

// stubEngine exposes only the close price; paired with priceScorer it gives
// the tests full control over which days classify.
type stubEngine struct{}

func (stubEngine) Snapshot(series *models.PriceSeries, i int) models.IndicatorSnapshot {
	if series == nil || i < 0 || i >= series.Len() {
		return models.IndicatorSnapshot{}
	}
	return models.IndicatorSnapshot{Price: series.Points[i].Close}
}

// priceScorer classifies any close below the cutoff as a boom of fixed
// strength.
type priceScorer struct {
	cutoff   float64
	strength float64
}

func (s priceScorer) Score(snap models.IndicatorSnapshot) models.Signal {
	if snap.Price < s.cutoff {
		return models.Signal{
			Strength:  s.strength,
			Fragments: []string{"drop"},
			Class:     models.SignalBoomRange,
		}
	}
	return models.Signal{}
}

// flatMonths builds ten trading days per month at a constant price.
func flatMonths(start time.Time, months int, price float64) []models.PricePoint {
	pts := make([]models.PricePoint, 0, months*10)
	for m := 0; m < months; m++ {
		base := start.AddDate(0, m, 0)
		for d := 0; d < 10; d++ {
			pts = append(pts, models.PricePoint{
				Date:  time.Date(base.Year(), base.Month(), 1+3*d, 0, 0, 0, 0, time.UTC),
				Close: price,
			})
		}
	}
	return pts
}

func testStart() time.Time {
	return time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
}

func newTestSimulator(cutoff, strength float64) *Simulator {
	return NewSimulator(stubEngine{}, priceScorer{cutoff: cutoff, strength: strength})
}

func TestRunFlatSeriesNeverBuys(t *testing.T) {
	series := &models.PriceSeries{Symbol: "AAA", Points: flatMonths(testStart(), 12, 100)}
	sim := newTestSimulator(60, 80)

	state, err := sim.Run(series, SimulationParams{Symbol: "AAA", MonthlyAmount: 100, Months: 12})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if state.Periods != 12 {
		t.Fatalf("periods = %d, want 12", state.Periods)
	}
	if state.MonthsBought != 0 || state.MonthsWaited != 12 {
		t.Errorf("bought=%d waited=%d, want 0/12", state.MonthsBought, state.MonthsWaited)
	}
	if state.TotalInvested != 0 || state.TotalShares != 0 {
		t.Errorf("invested=%v shares=%v, want zero", state.TotalInvested, state.TotalShares)
	}
	if state.AccumulatedBudget != 1200 {
		t.Errorf("accumulated budget = %v, want 1200", state.AccumulatedBudget)
	}
	if len(state.Trades) != 0 {
		t.Errorf("trades = %d, want 0", len(state.Trades))
	}
	if len(state.MonthlyRecords) != 12 {
		t.Fatalf("monthly records = %d, want 12", len(state.MonthlyRecords))
	}
	for _, rec := range state.MonthlyRecords {
		if rec.Traded || rec.Trade != nil {
			t.Errorf("month %s unexpectedly traded", rec.Month)
		}
	}
}

func TestRunDeploysAccumulatedBudgetOnSignal(t *testing.T) {
	pts := flatMonths(testStart(), 12, 100)
	// one deep dip in March
	pts[24].Close = 50
	series := &models.PriceSeries{Symbol: "AAA", Points: pts}
	sim := newTestSimulator(60, 80)

	state, err := sim.Run(series, SimulationParams{Symbol: "AAA", MonthlyAmount: 100, Months: 12})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if state.MonthsBought != 1 || state.MonthsWaited != 11 {
		t.Fatalf("bought=%d waited=%d, want 1/11", state.MonthsBought, state.MonthsWaited)
	}
	if len(state.Trades) != 1 {
		t.Fatalf("trades = %d, want 1", len(state.Trades))
	}
	tr := state.Trades[0]
	if tr.Month != "2024-03" {
		t.Errorf("trade month = %s, want 2024-03", tr.Month)
	}
	if tr.AmountInvested != 300 {
		t.Errorf("amount invested = %v, want 300 (two months carried)", tr.AmountInvested)
	}
	if tr.AccumulatedBudgetUsed != 200 {
		t.Errorf("accumulated budget used = %v, want 200 (carryover beyond March's own 100)", tr.AccumulatedBudgetUsed)
	}
	if tr.EntryPrice != 50 {
		t.Errorf("entry price = %v, want 50", tr.EntryPrice)
	}
	if tr.SharesBought != 6 {
		t.Errorf("shares bought = %v, want 6", tr.SharesBought)
	}
	if tr.Type != models.TradeBoomRange {
		t.Errorf("trade type = %s, want boom_range", tr.Type)
	}
	if tr.SignalStrength != 80 {
		t.Errorf("signal strength = %v, want 80", tr.SignalStrength)
	}
	// March record drains the budget completely
	rec := state.MonthlyRecords[2]
	if !rec.Traded || rec.AccumulatedBudget != 0 {
		t.Errorf("march record traded=%v budget=%v, want true/0", rec.Traded, rec.AccumulatedBudget)
	}
	if state.TotalInvested != 300 {
		t.Errorf("total invested = %v, want 300", state.TotalInvested)
	}
	if state.AccumulatedBudget != 900 {
		t.Errorf("unused budget = %v, want 900", state.AccumulatedBudget)
	}
	// per-trade valuation against the latest close
	if tr.CurrentPrice != 100 || tr.CurrentValue != 600 || tr.ProfitLoss != 300 || tr.ProfitLossPercent != 100 {
		t.Errorf("trade valuation = %v/%v/%v/%v, want 100/600/300/100",
			tr.CurrentPrice, tr.CurrentValue, tr.ProfitLoss, tr.ProfitLossPercent)
	}
}

func TestRunShortSeriesProducesFewerPeriods(t *testing.T) {
	series := &models.PriceSeries{Symbol: "AAA", Points: flatMonths(testStart(), 3, 100)}
	sim := newTestSimulator(60, 80)

	state, err := sim.Run(series, SimulationParams{Symbol: "AAA", MonthlyAmount: 100, Months: 12})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if state.Periods != 3 {
		t.Errorf("periods = %d, want 3 (series shorter than horizon)", state.Periods)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	pts := flatMonths(testStart(), 6, 100)
	pts[13].Close = 55
	pts[44].Close = 52
	series := &models.PriceSeries{Symbol: "AAA", Points: pts}
	sim := newTestSimulator(60, 80)
	params := SimulationParams{Symbol: "AAA", MonthlyAmount: 100, Months: 6}

	first, err := sim.Run(series, params)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := sim.Run(series, params)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs produced different states")
	}
}

func TestRunBudgetInvariants(t *testing.T) {
	pts := flatMonths(testStart(), 12, 100)
	pts[5].Close = 58
	pts[37].Close = 54
	pts[88].Close = 51
	series := &models.PriceSeries{Symbol: "AAA", Points: pts}
	sim := newTestSimulator(60, 80)

	state, err := sim.Run(series, SimulationParams{Symbol: "AAA", MonthlyAmount: 100, Months: 12})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if state.AccumulatedBudget < 0 {
		t.Errorf("accumulated budget went negative: %v", state.AccumulatedBudget)
	}
	var investedSum, sharesSum float64
	for _, tr := range state.Trades {
		investedSum += tr.AmountInvested
		sharesSum += tr.SharesBought
	}
	if state.TotalInvested != investedSum {
		t.Errorf("total invested %v != sum of trades %v", state.TotalInvested, investedSum)
	}
	if diff := state.TotalShares - sharesSum; diff > 1e-5 || diff < -1e-5 {
		t.Errorf("total shares %v != sum of trades %v", state.TotalShares, sharesSum)
	}
	if max := 12 * 100.0; state.TotalInvested > max {
		t.Errorf("total invested %v exceeds contributed budget %v", state.TotalInvested, max)
	}
	if state.MonthsBought+state.MonthsWaited != state.Periods {
		t.Errorf("bought %d + waited %d != periods %d",
			state.MonthsBought, state.MonthsWaited, state.Periods)
	}
}

func TestRunFixedDayPolicySkipsEarlyDip(t *testing.T) {
	pts := flatMonths(testStart(), 1, 100)
	// shallow dip on the 4th: classified by the scorer, too shallow for the
	// monthly-dip fallback
	pts[1].Close = 97
	series := &models.PriceSeries{Symbol: "AAA", Points: pts}
	sim := newTestSimulator(98, 80)

	best, err := sim.Run(series, SimulationParams{Symbol: "AAA", MonthlyAmount: 100, Months: 1})
	if err != nil {
		t.Fatalf("best_day run: %v", err)
	}
	if best.MonthsBought != 1 {
		t.Fatalf("best_day bought = %d, want 1", best.MonthsBought)
	}

	fixed, err := sim.Run(series, SimulationParams{
		Symbol: "AAA", MonthlyAmount: 100, Months: 1,
		Eval: EvalPolicy{Mode: EvalFixedDay, DayOfMonth: 15},
	})
	if err != nil {
		t.Fatalf("fixed_day run: %v", err)
	}
	if fixed.MonthsBought != 0 {
		t.Errorf("fixed_day bought = %d, want 0 (dip before evaluation date)", fixed.MonthsBought)
	}
}

func TestRunFallbackDipFiresWithoutSignal(t *testing.T) {
	pts := flatMonths(testStart(), 1, 100)
	pts[4].Close = 80 // deep enough for min < avg*0.95
	series := &models.PriceSeries{Symbol: "AAA", Points: pts}
	// cutoff below every close so the scorer never classifies
	sim := newTestSimulator(10, 80)

	state, err := sim.Run(series, SimulationParams{Symbol: "AAA", MonthlyAmount: 100, Months: 1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if state.MonthsBought != 1 {
		t.Fatalf("bought = %d, want 1 via fallback", state.MonthsBought)
	}
	tr := state.Trades[0]
	if tr.Type != models.TradeFallback {
		t.Errorf("trade type = %s, want fallback", tr.Type)
	}
	if tr.EntryPrice != 80 {
		t.Errorf("entry price = %v, want the monthly minimum 80", tr.EntryPrice)
	}
	if tr.SignalStrength != 0 {
		t.Errorf("fallback trade carries signal strength %v, want 0", tr.SignalStrength)
	}
	if tr.SignalReason == "" {
		t.Error("fallback trade should explain itself")
	}
}

func TestRunTieredAllocationScalesWithStrength(t *testing.T) {
	pts := flatMonths(testStart(), 1, 100)
	pts[4].Close = 50
	series := &models.PriceSeries{Symbol: "AAA", Points: pts}
	// strength 70 with balanced min 40: normalized 0.5, fraction 0.45+0.45*0.5
	sim := newTestSimulator(60, 70)

	state, err := sim.Run(series, SimulationParams{
		Symbol: "AAA", MonthlyAmount: 100, Months: 1,
		Profile:        domrepo.ProfileBalanced,
		AllocationMode: domrepo.AllocationTiered,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if state.MonthsBought != 1 {
		t.Fatalf("bought = %d, want 1", state.MonthsBought)
	}
	tr := state.Trades[0]
	if tr.AllocationFraction != 0.675 {
		t.Errorf("allocation fraction = %v, want 0.675", tr.AllocationFraction)
	}
	if tr.AmountInvested != 67.5 {
		t.Errorf("amount invested = %v, want 67.5", tr.AmountInvested)
	}
	if tr.AccumulatedBudgetUsed != 0 {
		t.Errorf("accumulated budget used = %v, want 0 (order within the month's own contribution)", tr.AccumulatedBudgetUsed)
	}
	if state.AccumulatedBudget != 32.5 {
		t.Errorf("remaining budget = %v, want 32.5", state.AccumulatedBudget)
	}
}

func TestRunMinTradeAmountSkipsSmallOrders(t *testing.T) {
	pts := flatMonths(testStart(), 1, 100)
	pts[4].Close = 50
	series := &models.PriceSeries{Symbol: "AAA", Points: pts}
	sim := newTestSimulator(60, 80)

	state, err := sim.Run(series, SimulationParams{
		Symbol: "AAA", MonthlyAmount: 100, Months: 1,
		MinTradeAmount: 250,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if state.MonthsBought != 0 || state.MonthsWaited != 1 {
		t.Errorf("bought=%d waited=%d, want 0/1 (order below minimum)", state.MonthsBought, state.MonthsWaited)
	}
	if state.AccumulatedBudget != 100 {
		t.Errorf("budget = %v, want 100 carried over", state.AccumulatedBudget)
	}
}

func TestRunMinSignalStrengthDiscardsWeakBooms(t *testing.T) {
	pts := flatMonths(testStart(), 1, 100)
	pts[4].Close = 99 // shallow: classified by the stub, no fallback dip
	series := &models.PriceSeries{Symbol: "AAA", Points: pts}
	sim := newTestSimulator(99.5, 35)

	weakOK, err := sim.Run(series, SimulationParams{
		Symbol: "AAA", MonthlyAmount: 100, Months: 1,
		Profile: domrepo.ProfileAggressive, // min 30
	})
	if err != nil {
		t.Fatalf("aggressive run: %v", err)
	}
	if weakOK.MonthsBought != 1 {
		t.Errorf("aggressive bought = %d, want 1 (35 >= 30)", weakOK.MonthsBought)
	}

	min := 50.0
	weakNo, err := sim.Run(series, SimulationParams{
		Symbol: "AAA", MonthlyAmount: 100, Months: 1,
		MinSignalStrength: &min,
	})
	if err != nil {
		t.Fatalf("override run: %v", err)
	}
	if weakNo.MonthsBought != 0 {
		t.Errorf("override bought = %d, want 0 (35 < 50)", weakNo.MonthsBought)
	}
}

func TestRunMonthGapCarriesBudget(t *testing.T) {
	// January and March only; February has no data at all
	pts := flatMonths(testStart(), 1, 100)
	march := flatMonths(testStart().AddDate(0, 2, 0), 1, 100)
	march[4].Close = 50
	pts = append(pts, march...)
	series := &models.PriceSeries{Symbol: "AAA", Points: pts}
	sim := newTestSimulator(60, 80)

	state, err := sim.Run(series, SimulationParams{Symbol: "AAA", MonthlyAmount: 100, Months: 12})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if state.Periods != 3 {
		t.Fatalf("periods = %d, want 3 (gap month still counts)", state.Periods)
	}
	if state.MonthsBought != 1 || state.MonthsWaited != 2 {
		t.Errorf("bought=%d waited=%d, want 1/2", state.MonthsBought, state.MonthsWaited)
	}
	if state.Trades[0].AmountInvested != 300 {
		t.Errorf("amount = %v, want 300 (gap month contributed budget)", state.Trades[0].AmountInvested)
	}
	if state.Trades[0].AccumulatedBudgetUsed != 200 {
		t.Errorf("accumulated budget used = %v, want 200", state.Trades[0].AccumulatedBudgetUsed)
	}
}

func TestRunDetectsCollapseWithLiveIndicators(t *testing.T) {
	// Daily closes for Q1 2024: flat at 100, then a 25% collapse on March 10
	// that holds through quarter end. Deep enough history that every trailing
	// window (MA20, MA50, RSI14, 7/30-day drawdowns) is populated on the
	// collapse day.
	collapse := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	pts := make([]models.PricePoint, 0, 91)
	for d := 0; d < 91; d++ {
		day := testStart().AddDate(0, 0, d)
		price := 100.0
		if !day.Before(collapse) {
			price = 75
		}
		pts = append(pts, models.PricePoint{Date: day, Close: price})
	}
	series := &models.PriceSeries{Symbol: "AAA", Points: pts}
	sim := NewSimulator(indicator.New(indicator.Config{}), signal.New(signal.Config{}))

	state, err := sim.Run(series, SimulationParams{Symbol: "AAA", MonthlyAmount: 100, Months: 3})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if state.MonthsBought != 1 || state.MonthsWaited != 2 {
		t.Fatalf("bought=%d waited=%d, want 1/2 (flat months never classify)", state.MonthsBought, state.MonthsWaited)
	}
	if len(state.Trades) != 1 {
		t.Fatalf("trades = %d, want 1", len(state.Trades))
	}
	tr := state.Trades[0]
	if tr.Month != "2024-03" || tr.TradeDate != "2024-03-10" {
		t.Errorf("trade at %s/%s, want 2024-03/2024-03-10 (first collapse day)", tr.Month, tr.TradeDate)
	}
	// MA20, MA50, very-oversold RSI, and both drawdowns all fire: 25+30+30+20+25
	if tr.SignalStrength != 130 {
		t.Errorf("signal strength = %v, want 130", tr.SignalStrength)
	}
	if tr.Type != models.TradeBoomRange {
		t.Errorf("trade type = %s, want boom_range", tr.Type)
	}
	if tr.SignalReason == "" {
		t.Error("boom trade should carry the fired conditions")
	}
	if tr.EntryPrice != 75 || tr.AmountInvested != 300 || tr.SharesBought != 4 {
		t.Errorf("entry/amount/shares = %v/%v/%v, want 75/300/4",
			tr.EntryPrice, tr.AmountInvested, tr.SharesBought)
	}
	if tr.AccumulatedBudgetUsed != 200 {
		t.Errorf("accumulated budget used = %v, want 200 (two waited months)", tr.AccumulatedBudgetUsed)
	}
	if state.AccumulatedBudget != 0 {
		t.Errorf("budget after full deployment = %v, want 0", state.AccumulatedBudget)
	}
}

func TestRunRejectsInvalidParams(t *testing.T) {
	series := &models.PriceSeries{Symbol: "AAA", Points: flatMonths(testStart(), 1, 100)}
	sim := newTestSimulator(60, 80)

	if _, err := sim.Run(series, SimulationParams{Symbol: "AAA", MonthlyAmount: 100, Months: 0}); !errors.Is(err, models.ErrInvalidConfig) {
		t.Errorf("months=0: err = %v, want ErrInvalidConfig", err)
	}
	if _, err := sim.Run(series, SimulationParams{Symbol: "AAA", MonthlyAmount: 0, Months: 12}); !errors.Is(err, models.ErrInvalidConfig) {
		t.Errorf("amount=0: err = %v, want ErrInvalidConfig", err)
	}
	empty := &models.PriceSeries{Symbol: "AAA"}
	if _, err := sim.Run(empty, SimulationParams{Symbol: "AAA", MonthlyAmount: 100, Months: 12}); !errors.Is(err, models.ErrInsufficientData) {
		t.Errorf("empty series: err = %v, want ErrInsufficientData", err)
	}
}
