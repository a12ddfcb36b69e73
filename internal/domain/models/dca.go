package models

import (
	"encoding/json"
	"strings"
)

// SignalClass is the coarse classification of a scored evaluation point.
type SignalClass int

const (
	SignalNone SignalClass = iota
	SignalBoomRange
	SignalFallback
)

func (c SignalClass) String() string {
	switch c {
	case SignalBoomRange:
		return "boom_range"
	case SignalFallback:
		return "fallback"
	default:
		return "none"
	}
}

// TradeType is a closed set of trade origins. Keeping it an enum (instead of
// raw strings at decision sites) allows exhaustive switches; the string form
// only appears at the JSON boundary.
type TradeType int

const (
	TradeBoomRange TradeType = iota
	TradeFallback
)

func (t TradeType) String() string {
	if t == TradeFallback {
		return "fallback"
	}
	return "boom_range"
}

// MarshalJSON encodes the trade type as its wire string.
func (t TradeType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes the wire string back into the enum.
func (t *TradeType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "fallback" {
		*t = TradeFallback
	} else {
		*t = TradeBoomRange
	}
	return nil
}

// Signal is the composite result of scoring one IndicatorSnapshot.
// Fragments keeps the fired-condition descriptors in firing order; they are
// joined into a reason string only when a Trade record is shaped.
type Signal struct {
	Strength  float64
	Fragments []string
	Class     SignalClass
}

// Reason joins the fired-condition fragments for presentation.
func (s Signal) Reason() string {
	if len(s.Fragments) == 0 {
		return ""
	}
	return strings.Join(s.Fragments, " | ")
}

// Trade records one executed buy. Created exactly once per traded period and
// immutable afterwards. AccumulatedBudgetUsed is the slice of AmountInvested
// funded by prior months' carryover, i.e. the part beyond the current month's
// contribution.
type Trade struct {
	TradeDate             string    `json:"trade_date"`
	Month                 string    `json:"month"`
	EntryPrice            float64   `json:"entry_price"`
	AmountInvested        float64   `json:"amount_invested"`
	SharesBought          float64   `json:"shares_bought"`
	TotalSharesAfter      float64   `json:"total_shares_after"`
	SignalStrength        float64   `json:"signal_strength,omitempty"`
	SignalReason          string    `json:"signal_reason,omitempty"`
	Type                  TradeType `json:"trade_type"`
	AccumulatedBudgetUsed float64   `json:"accumulated_budget_used"`
	CurrentPrice          float64   `json:"current_price"`
	CurrentValue          float64   `json:"current_value"`
	ProfitLoss            float64   `json:"profit_loss"`
	ProfitLossPercent     float64   `json:"profit_loss_percent"`
	AllocationFraction    float64   `json:"allocation_fraction"`
	SignalThreshold       float64   `json:"signal_threshold"`
}

// MonthlyRecord is one entry of the append-only period ledger. Exactly one of
// {trade executed, budget carried forward} holds per period.
type MonthlyRecord struct {
	Month              string  `json:"month"`
	Traded             bool    `json:"traded"`
	Trade              *Trade  `json:"trade"`
	AccumulatedBudget  float64 `json:"accumulated_budget"`
	MonthlyBudget      float64 `json:"monthly_budget"`
	AllocationFraction float64 `json:"allocation_fraction,omitempty"`
}

// SimulationState carries the running totals and ledgers of one simulation
// run. It is created at run start, mutated once per period by the simulator,
// and frozen into a Result at run end. Never shared across runs.
type SimulationState struct {
	AccumulatedBudget float64
	TotalShares       float64
	TotalInvested     float64
	MonthsBought      int
	MonthsWaited      int
	Periods           int
	Trades            []Trade
	MonthlyRecords    []MonthlyRecord
}

// Result is the terminal, read-only artifact of one symbol's simulation.
type Result struct {
	Symbol            string          `json:"symbol"`
	TotalInvested     float64         `json:"total_invested"`
	TotalShares       float64         `json:"total_shares"`
	CurrentValue      float64         `json:"current_value"`
	CurrentPrice      float64         `json:"current_price"`
	ProfitLoss        float64         `json:"profit_loss"`
	ReturnPercent     float64         `json:"return_percent"`
	MonthsBought      int             `json:"months_bought"`
	MonthsWaited      int             `json:"months_waited"`
	BuyRate           float64         `json:"buy_rate"`
	UnusedBudget      float64         `json:"unused_budget"`
	Trades            []Trade         `json:"trades"`
	MonthlySummary    []MonthlyRecord `json:"monthly_summary"`
	StrategyProfile   string          `json:"strategy_profile"`
	AllocationMode    string          `json:"allocation_mode"`
	MinSignalStrength float64         `json:"min_signal_strength"`
	MinTradeAmount    float64         `json:"min_trade_amount"`
	FallbackThreshold float64         `json:"fallback_threshold"`
}

// Performer references one symbol's return for batch summaries.
type Performer struct {
	Symbol        string  `json:"symbol"`
	ReturnPercent float64 `json:"return_percent"`
}

// BatchSummary ranks a finished multi-symbol batch. Ties are broken by
// first-seen request order.
type BatchSummary struct {
	BestPerformer  Performer `json:"best_performer"`
	WorstPerformer Performer `json:"worst_performer"`
	TotalSymbols   int       `json:"total_symbols"`
}
