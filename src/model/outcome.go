package model

type TradeOutcome struct {
	TradeID          string              `json:"tradeId"`
	StrategyID       string              `json:"strategyId"`
	EntryPrice       float64             `json:"entryPrice"`
	ExitPrice        float64             `json:"exitPrice"`
	Size             float64             `json:"size"`
	Pnl              float64             `json:"pnl"`
	PnlPercent       float64             `json:"pnlPercent"`
	HoldingPeriod    int64               `json:"holdingPeriod"`
	MaxDrawdown      float64             `json:"maxDrawdown"`
	MaxRunup         float64             `json:"maxRunup"`
	EntryFeatures    *StructuralFeatures `json:"entryFeatures"`
	ExitFeatures     *StructuralFeatures `json:"exitFeatures"`
	Correct          bool                `json:"correct"`
	ExecutionQuality float64             `json:"executionQuality"`
	Timestamp        TimestampMilli      `json:"timestamp"`
}

func (o *TradeOutcome) IsPositive() bool {
	return o.Pnl > 0.00
}

type LearningProgress struct {
	StrategyID        string  `json:"strategyId"`
	TradesAnalyzed    int     `json:"tradesAnalyzed"`
	WinRate           float64 `json:"winRate"`
	ProfitFactor      float64 `json:"profitFactor"`
	Sharpe            float64 `json:"sharpe"`
	MaxDrawdown       float64 `json:"maxDrawdown"`
	RecentPerformance float64 `json:"recentPerformance"`
	AdaptationScore   float64 `json:"adaptationScore"`
}

type ParameterAdjustment struct {
	StrategyID string         `json:"strategyId"`
	Parameter  string         `json:"parameter"`
	OldValue   float64        `json:"oldValue"`
	NewValue   float64        `json:"newValue"`
	Reason     string         `json:"reason"`
	Timestamp  TimestampMilli `json:"timestamp"`
}

type StrategyEvolution struct {
	StrategyID string             `json:"strategyId"`
	Version    int                `json:"version"`
	Parameters map[string]float64 `json:"parameters"`
	Timestamp  TimestampMilli     `json:"timestamp"`
}
