package learning

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
			Implied: 30.00,
		},
		PriceHistory: model.PriceHistory{
			Prices:        []float64{100.00, 102.00, 99.00, 101.00},
			Momentum:      0.02,
			Trend:         model.TrendUp,
			TrendStrength: 0.70,
		},
	}
}

func filledResult(side string, fillPrice float64, size float64) model.ExecutionResult {
	return model.ExecutionResult{
		Order: model.Order{
			ID:          "ord-000001",
			SignalID:    "sig-1",
			Side:        side,
			Type:        model.OrderTypeMarket,
			Size:        size,
			Price:       fillPrice,
			Status:      model.OrderStatusFilled,
			FilledSize:  size,
			FillPrice:   fillPrice,
			Fees:        1.00,
			SubmittedAt: model.TimestampMilli(1700000000000),
			FilledAt:    model.TimestampMilli(1700000000030),
		},
		Slippage: 0.0005,
		Latency:  30,
		Success:  true,
	}
}

func testApproved() model.ApprovedSignal {
	return model.ApprovedSignal{
		Signal: model.Signal{
			ID:         "sig-1",
			StrategyID: "momentum_follow_v1",
			Direction:  model.DirectionLong,
			EntryPrice: 100.00,
			StopPrice:  99.00,
		},
		ApprovedSize: 10000.00,
		Constraints: model.ExecutionConstraints{
			MaxSlippage: 0.002,
		},
	}
}

func TestSynthesizeOutcomeLong(t *testing.T) {
	assertion := assert.New(t)

	engine := NewLearningEngine()
	outcome := engine.SynthesizeOutcome(filledResult(model.DirectionLong, 100.00, 100.00), testApproved(), testFeatures(), 101.00)

	assertion.InDelta(100.00, outcome.Pnl, 1e-9)
	assertion.InDelta(0.01, outcome.PnlPercent, 1e-9)
	assertion.True(outcome.Correct)
	assertion.Equal(int64(30), outcome.HoldingPeriod)
	assertion.GreaterOrEqual(outcome.ExecutionQuality, 0.00)
	assertion.LessOrEqual(outcome.ExecutionQuality, 1.00)
	assertion.Same(outcome.EntryFeatures, outcome.ExitFeatures)
}

func TestSynthesizeOutcomeShort(t *testing.T) {
	assertion := assert.New(t)

	engine := NewLearningEngine()
	outcome := engine.SynthesizeOutcome(filledResult(model.DirectionShort, 100.00, 100.00), testApproved(), testFeatures(), 101.00)

	assertion.InDelta(-100.00, outcome.Pnl, 1e-9)
	assertion.False(outcome.Correct)
}

func TestProfitFactorWithoutLosses(t *testing.T) {
	assertion := assert.New(t)

	engine := NewLearningEngine()
	features := testFeatures()

	for i := 0; i < 5; i++ {
		outcome := engine.SynthesizeOutcome(filledResult(model.DirectionLong, 100.00, 100.00), testApproved(), features, 101.00)
		engine.AnalyzeOutcome(outcome, map[string]float64{"stopLoss": 0.01})
	}

	progress := engine.ProgressList()
	assertion.Len(progress, 1)
	assertion.Equal(999.00, progress[0].ProfitFactor)
	assertion.Equal(1.00, progress[0].WinRate)
	assertion.Equal(5, progress[0].TradesAnalyzed)
}

func TestWinRateRollup(t *testing.T) {
	assertion := assert.New(t)

	engine := NewLearningEngine()
	features := testFeatures()

	winner := engine.SynthesizeOutcome(filledResult(model.DirectionLong, 100.00, 100.00), testApproved(), features, 101.00)
	loser := engine.SynthesizeOutcome(filledResult(model.DirectionLong, 100.00, 100.00), testApproved(), features, 99.00)

	engine.AnalyzeOutcome(winner, nil)
	engine.AnalyzeOutcome(loser, nil)
	engine.AnalyzeOutcome(winner, nil)
	engine.AnalyzeOutcome(loser, nil)

	progress := engine.ProgressList()
	assertion.InDelta(0.50, progress[0].WinRate, 1e-9)
	assertion.InDelta(1.00, progress[0].ProfitFactor, 1e-9)
}

func TestAdjustmentOnNegativeRecentPerformance(t *testing.T) {
	assertion := assert.New(t)

	engine := NewLearningEngine()
	features := testFeatures()

	for i := 0; i < 5; i++ {
		outcome := engine.SynthesizeOutcome(filledResult(model.DirectionLong, 100.00, 100.00), testApproved(), features, 97.00)
		engine.AnalyzeOutcome(outcome, map[string]float64{"stopLoss": 0.01})
	}

	adjustments := engine.Adjustments()
	assertion.NotEmpty(adjustments)

	var selectivity *model.ParameterAdjustment
	for i := range adjustments {
		if adjustments[i].Parameter == "confidenceThreshold" {
			selectivity = &adjustments[i]
		}
	}

	assertion.NotNil(selectivity)
	assertion.Equal(0.50, selectivity.OldValue)
	assertion.Equal(0.60, selectivity.NewValue)

	// the same suggestion is not repeated
	count := 0
	for _, adjustment := range adjustments {
		if adjustment.Parameter == "confidenceThreshold" {
			count++
		}
	}
	assertion.Equal(1, count)

	evolution := engine.EvolutionList()
	assertion.NotEmpty(evolution)
	assertion.Equal(0.60, evolution[0].Parameters["confidenceThreshold"])
	assertion.Equal(0.01, evolution[0].Parameters["stopLoss"])
}

func TestFeatureImportanceNormalized(t *testing.T) {
	assertion := assert.New(t)

	engine := NewLearningEngine()
	features := testFeatures()

	importance := engine.FeatureImportance()
	assertion.Len(importance, 8)

	for i := 0; i < 10; i++ {
		exitPrice := 101.00
		if i%2 == 0 {
			exitPrice = 99.00
		}
		outcome := engine.SynthesizeOutcome(filledResult(model.DirectionLong, 100.00, 100.00), testApproved(), features, exitPrice)
		engine.AnalyzeOutcome(outcome, nil)
	}

	importance = engine.FeatureImportance()
	total := 0.00
	for _, weight := range importance {
		assertion.GreaterOrEqual(weight, 0.01)
		total += weight
	}
	assertion.InDelta(1.00, total, 1e-9)
}

func TestRecentOutcomesBounded(t *testing.T) {
	assertion := assert.New(t)

	engine := NewLearningEngine()
	features := testFeatures()

	for i := 0; i < 60; i++ {
		outcome := engine.SynthesizeOutcome(filledResult(model.DirectionLong, 100.00, 100.00), testApproved(), features, 101.00)
		engine.AnalyzeOutcome(outcome, nil)
	}

	assertion.Len(engine.RecentOutcomes(50), 50)
}

func TestExecutionQualityDegradesWithSlippage(t *testing.T) {
	assertion := assert.New(t)

	engine := NewLearningEngine()

	clean := filledResult(model.DirectionLong, 100.00, 100.00)
	sloppy := filledResult(model.DirectionLong, 100.00, 100.00)
	sloppy.Slippage = 0.005

	cleanQuality := engine.executionQuality(clean, testApproved())
	sloppyQuality := engine.executionQuality(sloppy, testApproved())

	assertion.Greater(cleanQuality, sloppyQuality)
}
