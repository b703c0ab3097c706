package execution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.com/open-quant/go-fractal-engine/src/model"
)

func testFeatures() *model.StructuralFeatures {
	return &model.StructuralFeatures{
		Symbol:    "SPX",
		Timestamp: model.TimestampMilli(1700000000000),
		SpotPrice: 100.00,
		VolatilityState: model.VolatilityState{
			Regime:  model.VolRegimeNormal,
			Implied: 20.00,
		},
		LiquidityMap: model.LiquidityMap{
			Depth: 5000.00,
		},
	}
}

func approvedSignal(orderType string, urgency string) model.ApprovedSignal {
	return model.ApprovedSignal{
		Signal: model.Signal{
			ID:         "sig-1",
			StrategyID: "momentum_follow_v1",
			Direction:  model.DirectionLong,
			Strength:   0.60,
			Confidence: 0.80,
			EntryPrice: 100.00,
			StopPrice:  99.00,
			Targets:    []float64{102.00},
			Timestamp:  model.TimestampMilli(1700000000000),
		},
		ApprovedSize: 10000.00,
		Constraints: model.ExecutionConstraints{
			MaxSlippage: 0.002,
			Urgency:     urgency,
			OrderType:   orderType,
			TimeInForce: model.TimeInForceDay,
		},
	}
}

func TestMarketOrderAlwaysFills(t *testing.T) {
	assertion := assert.New(t)

	simulator := NewExecutionSimulator(42, false)
	results := simulator.Simulate([]model.ApprovedSignal{approvedSignal(model.OrderTypeMarket, model.UrgencyHigh)}, testFeatures())

	assertion.Len(results, 1)
	result := results[0]

	assertion.True(result.Success)
	assertion.Equal(model.OrderStatusFilled, result.Order.Status)
	assertion.InDelta(100.00, result.Order.Size, 1e-9)
	assertion.Equal(result.Order.Size, result.Order.FilledSize)
	assertion.Greater(result.Order.FillPrice, 0.00)
	assertion.InDelta(0.0001*result.Order.Notional(), result.Order.Fees, 1e-9)
	assertion.GreaterOrEqual(result.Latency, int64(10))
	assertion.LessOrEqual(result.Latency, int64(60))
	assertion.Equal(0, simulator.PendingCount())
}

func TestSameSeedReplaysIdentically(t *testing.T) {
	assertion := assert.New(t)

	signals := []model.ApprovedSignal{
		approvedSignal(model.OrderTypeLimit, model.UrgencyMedium),
		approvedSignal(model.OrderTypeMarket, model.UrgencyHigh),
		approvedSignal(model.OrderTypeLimit, model.UrgencyLow),
	}

	first := NewExecutionSimulator(7, false).Simulate(signals, testFeatures())
	second := NewExecutionSimulator(7, false).Simulate(signals, testFeatures())

	assertion.Equal(first, second)
}

func TestRejectsInvalidOrder(t *testing.T) {
	assertion := assert.New(t)

	simulator := NewExecutionSimulator(42, false)

	invalid := approvedSignal(model.OrderTypeMarket, model.UrgencyHigh)
	invalid.Signal.EntryPrice = 0.00

	results := simulator.Simulate([]model.ApprovedSignal{invalid}, testFeatures())

	assertion.Len(results, 1)
	assertion.False(results[0].Success)
	assertion.Equal(model.OrderStatusRejected, results[0].Order.Status)
	assertion.NotEmpty(results[0].Error)
	assertion.Equal(1, simulator.RejectedOrders())
}

func TestShortFillsBelowEntry(t *testing.T) {
	assertion := assert.New(t)

	simulator := NewExecutionSimulator(42, false)

	short := approvedSignal(model.OrderTypeMarket, model.UrgencyHigh)
	short.Signal.Direction = model.DirectionShort
	short.Signal.StopPrice = 101.00
	short.Signal.Targets = []float64{98.00}

	results := simulator.Simulate([]model.ApprovedSignal{short}, testFeatures())

	assertion.True(results[0].Success)
	assertion.LessOrEqual(results[0].Order.FillPrice, short.Signal.EntryPrice)
}

func TestSlippageHistoryFeedsPrediction(t *testing.T) {
	assertion := assert.New(t)

	simulator := NewExecutionSimulator(42, false)
	features := testFeatures()

	for i := 0; i < 5; i++ {
		simulator.Simulate([]model.ApprovedSignal{approvedSignal(model.OrderTypeMarket, model.UrgencyHigh)}, features)
	}

	predicted := simulator.predictSlippage(approvedSignal(model.OrderTypeMarket, model.UrgencyHigh), features)
	assertion.Greater(predicted, 0.00)

	assertion.Equal(5, simulator.TotalOrders())
	assertion.Len(simulator.History(), 5)
}

func TestMarketImpactGrowsWithNotional(t *testing.T) {
	assertion := assert.New(t)

	simulator := NewExecutionSimulator(42, false)
	features := testFeatures()

	small := simulator.marketImpact(10000.00, features)
	large := simulator.marketImpact(1000000.00, features)

	assertion.Greater(large, small)
	assertion.GreaterOrEqual(small, 0.00)
}
