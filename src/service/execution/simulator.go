package execution

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"gitlab.com/open-quant/go-fractal-engine/src/model"
	"gitlab.com/open-quant/go-fractal-engine/src/utils"
)

const ResultHistoryCapacity = 1000
const SlippageHistoryCapacity = 100

const baseSlippage = 0.0005
const feeRate = 0.0001
const minLatencyMs = 10
const latencySpreadMs = 51

// ExecutionSimulator fills approved signals against a predictable
// model. All randomness flows through the injected source, so a fixed
// seed replays identically. Latency is modeled in the result and only
// slept through when enabled.
type ExecutionSimulator struct {
	pending         map[string]model.Order
	history         *utils.RingBuffer[model.ExecutionResult]
	slippageHistory *utils.RingBuffer[float64]
	rng             *rand.Rand
	latencyEnabled  bool
	orderSequence   int64
	totalOrders     int
	rejectedOrders  int
}

func NewExecutionSimulator(seed int64, latencyEnabled bool) *ExecutionSimulator {
	return &ExecutionSimulator{
		pending:         make(map[string]model.Order),
		history:         utils.NewRingBuffer[model.ExecutionResult](ResultHistoryCapacity),
		slippageHistory: utils.NewRingBuffer[float64](SlippageHistoryCapacity),
		rng:             rand.New(rand.NewSource(seed)),
		latencyEnabled:  latencyEnabled,
	}
}

func (s *ExecutionSimulator) Simulate(approved []model.ApprovedSignal, features *model.StructuralFeatures) []model.ExecutionResult {
	results := make([]model.ExecutionResult, 0, len(approved))
	for _, signal := range approved {
		results = append(results, s.execute(signal, features))
	}

	return results
}

func (s *ExecutionSimulator) execute(approved model.ApprovedSignal, features *model.StructuralFeatures) model.ExecutionResult {
	s.totalOrders++
	s.orderSequence++

	signal := approved.Signal
	order := model.Order{
		ID:          fmt.Sprintf("ord-%06d", s.orderSequence),
		SignalID:    signal.ID,
		Side:        signal.Direction,
		Type:        approved.Constraints.OrderType,
		Price:       signal.EntryPrice,
		Status:      model.OrderStatusPending,
		SubmittedAt: signal.Timestamp,
	}

	if signal.EntryPrice <= 0.00 || approved.ApprovedSize <= 0.00 {
		s.rejectedOrders++
		order.Status = model.OrderStatusRejected

		result := model.ExecutionResult{
			Order: order,
			Error: "invalid order: non-positive price or size",
		}
		s.history.Append(result)

		return result
	}

	order.Size = approved.ApprovedSize / signal.EntryPrice
	s.pending[order.ID] = order

	predicted := s.predictSlippage(approved, features)
	latency := int64(minLatencyMs) + s.rng.Int63n(latencySpreadMs)
	if s.latencyEnabled {
		time.Sleep(time.Duration(latency) * time.Millisecond)
	}

	fillRate := s.fillRate(approved.Constraints)
	if fillRate == 0.00 {
		order.Status = model.OrderStatusCancelled
		delete(s.pending, order.ID)

		result := model.ExecutionResult{
			Order:   order,
			Latency: latency,
			Error:   "order not filled within simulated window",
		}
		s.history.Append(result)

		return result
	}

	direction := 1.00
	if signal.IsShort() {
		direction = -1.00
	}

	order.FilledSize = order.Size * fillRate
	order.FillPrice = signal.EntryPrice * (1.00 + direction*predicted*(0.50+s.rng.Float64()))
	order.Fees = feeRate * order.Notional()
	order.FilledAt = model.TimestampMilli(signal.Timestamp.Value() + latency)

	order.Status = model.OrderStatusFilled
	if fillRate < 1.00 {
		order.Status = model.OrderStatusPartial
	}
	delete(s.pending, order.ID)

	realized := order.FillPrice - signal.EntryPrice
	if realized < 0 {
		realized = -realized
	}
	realized = realized / signal.EntryPrice
	s.slippageHistory.Append(realized)

	result := model.ExecutionResult{
		Order:        order,
		Slippage:     realized,
		Latency:      latency,
		MarketImpact: s.marketImpact(order.Notional(), features),
		Success:      true,
	}
	s.history.Append(result)

	return result
}

// predictSlippage scales the historical average by order size, implied
// vol and urgency.
func (s *ExecutionSimulator) predictSlippage(approved model.ApprovedSignal, features *model.StructuralFeatures) float64 {
	average := baseSlippage
	if !s.slippageHistory.IsEmpty() {
		average = utils.RingMean(s.slippageHistory)
	}

	depth := features.LiquidityMap.Depth
	sizeAdjustment := 1.00 + 0.50*approved.ApprovedSize/(depth+1.00)
	volAdjustment := 1.00 + features.VolatilityState.Implied/100.00

	urgencyMultiplier := 1.00
	switch approved.Constraints.Urgency {
	case model.UrgencyHigh:
		urgencyMultiplier = 1.50
	case model.UrgencyMedium:
		urgencyMultiplier = 1.20
	}

	return average * sizeAdjustment * volAdjustment * urgencyMultiplier
}

func (s *ExecutionSimulator) fillRate(constraints model.ExecutionConstraints) float64 {
	if constraints.OrderType == model.OrderTypeMarket {
		return 1.00
	}

	roll := s.rng.Float64()

	switch constraints.Urgency {
	case model.UrgencyHigh:
		if roll < 0.90 {
			return 1.00
		}
		return 0.80
	case model.UrgencyMedium:
		if roll < 0.80 {
			return 1.00
		}
		return 0.70
	default:
		if roll < 0.60 {
			return 1.00
		}
		if roll < 0.80 {
			return 0.50
		}
		return 0.00
	}
}

func (s *ExecutionSimulator) marketImpact(notional float64, features *model.StructuralFeatures) float64 {
	depth := features.LiquidityMap.Depth

	return math.Sqrt(notional/1000000.00) * 0.0001 * (1.00 + notional/(depth+1.00))
}

func (s *ExecutionSimulator) History() []model.ExecutionResult {
	return s.history.ToSlice()
}

func (s *ExecutionSimulator) PendingCount() int {
	return len(s.pending)
}

func (s *ExecutionSimulator) TotalOrders() int {
	return s.totalOrders
}

func (s *ExecutionSimulator) RejectedOrders() int {
	return s.rejectedOrders
}
