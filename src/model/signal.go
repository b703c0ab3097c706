package model

const DirectionLong = "long"
const DirectionShort = "short"
const DirectionNeutral = "neutral"

const UrgencyLow = "low"
const UrgencyMedium = "medium"
const UrgencyHigh = "high"

const OrderTypeMarket = "market"
const OrderTypeLimit = "limit"

const TimeInForceDay = "day"
const TimeInForceIoc = "ioc"

type SignalContext struct {
	GammaLevel       float64 `json:"gammaLevel"`
	LiquiditySupport float64 `json:"liquiditySupport"`
	Volatility       string  `json:"volatility"`
	DealerFlow       string  `json:"dealerFlow"`
}

type Signal struct {
	ID         string         `json:"id"`
	StrategyID string         `json:"strategyId"`
	Direction  string         `json:"direction"`
	Strength   float64        `json:"strength"`
	Confidence float64        `json:"confidence"`
	EntryPrice float64        `json:"entryPrice"`
	StopPrice  float64        `json:"stopPrice"`
	Targets    []float64      `json:"targets"`
	Timeframe  string         `json:"timeframe"`
	Rationale  string         `json:"rationale"`
	Context    SignalContext  `json:"context"`
	Timestamp  TimestampMilli `json:"timestamp"`
}

func (s *Signal) IsLong() bool {
	return s.Direction == DirectionLong
}

func (s *Signal) IsShort() bool {
	return s.Direction == DirectionShort
}

// RiskPerUnit is the relative distance between entry and stop.
func (s *Signal) RiskPerUnit() float64 {
	if s.EntryPrice == 0.00 {
		return 0.00
	}

	distance := s.EntryPrice - s.StopPrice
	if distance < 0 {
		distance = -distance
	}

	return distance / s.EntryPrice
}

type RiskMetrics struct {
	Correlation     float64 `json:"correlation"`
	GammaExposure   float64 `json:"gammaExposure"`
	VarContribution float64 `json:"varContribution"`
	MaxLoss         float64 `json:"maxLoss"`
	MarginRequired  float64 `json:"marginRequired"`
}

type ExecutionConstraints struct {
	MaxSlippage  float64 `json:"maxSlippage"`
	Urgency      string  `json:"urgency"`
	OrderType    string  `json:"orderType"`
	IcebergRatio float64 `json:"icebergRatio"`
	TimeInForce  string  `json:"timeInForce"`
}

type ApprovedSignal struct {
	Signal       Signal               `json:"signal"`
	ApprovedSize float64              `json:"approvedSize"`
	Risk         RiskMetrics          `json:"risk"`
	Constraints  ExecutionConstraints `json:"constraints"`
	RiskScore    float64              `json:"riskScore"`
}
