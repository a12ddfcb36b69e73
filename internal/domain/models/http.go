package models

// Requests and responses for the analysis HTTP endpoint. Defined in domain
// for consistency and reuse.

type AnalyzeRequest struct {
	Symbols           []string `json:"symbols" validate:"required,min=1,max=20,dive,required"`
	MonthlyAmount     float64  `json:"monthly_amount" default:"100" validate:"gt=0"`
	Months            int      `json:"months" default:"24" validate:"gte=1,lte=120"`
	StrategyProfile   string   `json:"strategy_profile" default:"balanced" validate:"oneof=aggressive balanced conservative"`
	AllocationMode    string   `json:"allocation_mode" default:"full" validate:"oneof=full tiered"`
	MinSignalStrength *float64 `json:"min_signal_strength" validate:"omitempty,gte=0,lte=100"`
	MinTradeAmount    *float64 `json:"min_trade_amount" validate:"omitempty,gte=0"`
}

// SymbolError reports one symbol's failure without aborting the batch.
type SymbolError struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}

type AnalyzeResponse struct {
	Success bool          `json:"success"`
	Results []Result      `json:"results"`
	Summary *BatchSummary `json:"summary,omitempty"`
	Errors  []SymbolError `json:"errors,omitempty"`
	Message string        `json:"message,omitempty"`
}
