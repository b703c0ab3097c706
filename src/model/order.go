package model

const OrderStatusPending = "pending"
const OrderStatusSubmitted = "submitted"
const OrderStatusPartial = "partial"
const OrderStatusFilled = "filled"
const OrderStatusCancelled = "cancelled"
const OrderStatusRejected = "rejected"

type Order struct {
	ID          string         `json:"id"`
	SignalID    string         `json:"signalId"`
	Side        string         `json:"side"`
	Type        string         `json:"type"`
	Size        float64        `json:"size"`
	Price       float64        `json:"price"`
	Status      string         `json:"status"`
	FilledSize  float64        `json:"filledSize"`
	FillPrice   float64        `json:"fillPrice"`
	Fees        float64        `json:"fees"`
	SubmittedAt TimestampMilli `json:"submittedAt"`
	FilledAt    TimestampMilli `json:"filledAt"`
}

func (o *Order) IsFilled() bool {
	return o.Status == OrderStatusFilled || o.Status == OrderStatusPartial
}

func (o *Order) Notional() float64 {
	return o.FilledSize * o.FillPrice
}

type ExecutionResult struct {
	Order        Order   `json:"order"`
	Slippage     float64 `json:"slippage"`
	Latency      int64   `json:"latency"`
	MarketImpact float64 `json:"marketImpact"`
	Success      bool    `json:"success"`
	Error        string  `json:"error"`
}
