package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.com/open-quant/go-fractal-engine/src/model"
)

func trendingFeatures() *model.StructuralFeatures {
	return &model.StructuralFeatures{
		Symbol:    "SPX",
		Timestamp: model.TimestampMilli(1700000000000),
		SpotPrice: 100.00,
		VolatilityState: model.VolatilityState{
			Regime:  model.VolRegimeNormal,
			Implied: 20.00,
		},
		PriceHistory: model.PriceHistory{
			Momentum:      0.03,
			Trend:         model.TrendUp,
			TrendStrength: 0.80,
		},
	}
}

func trendingRegime() model.Regime {
	return model.Regime{
		Type:       model.RegimeTrendingBullish,
		Confidence: 0.85,
		Characteristics: model.RegimeCharacteristics{
			Volatility: model.VolRegimeNormal,
			Trend:      model.TrendUp,
			Momentum:   0.03,
			Phase:      model.PhaseMarkup,
		},
	}
}

func fullCoherence() model.CoherenceScore {
	coherence := model.NeutralCoherence()
	coherence.Total = 0.70
	coherence.Confidence = 0.80

	return coherence
}

func TestActivateMomentumFollowInUptrend(t *testing.T) {
	assertion := assert.New(t)

	pool := NewStrategyPool(10)
	active := pool.Activate(trendingFeatures(), trendingRegime(), fullCoherence())

	assertion.NotEmpty(active)

	var momentum *model.ActiveStrategy
	for i := range active {
		if active[i].Template.Type == model.StrategyMomentumFollow {
			momentum = &active[i]
		}
	}

	assertion.NotNil(momentum)
	assertion.GreaterOrEqual(momentum.ActivationScore, momentum.Template.ActivationThreshold)
	assertion.NotNil(momentum.CurrentSignal)
	assertion.Equal(model.DirectionLong, momentum.CurrentSignal.Direction)
	assertion.Greater(momentum.CurrentSignal.Strength, 0.30)
	assertion.Less(momentum.CurrentSignal.StopPrice, momentum.CurrentSignal.EntryPrice)
	assertion.NotEmpty(momentum.CurrentSignal.Targets)
}

func TestActiveStrategiesRespectValidRegimes(t *testing.T) {
	assertion := assert.New(t)

	pool := NewStrategyPool(10)
	regime := trendingRegime()
	active := pool.Activate(trendingFeatures(), regime, fullCoherence())

	for i := range active {
		assertion.True(active[i].Template.SupportsRegime(regime.Type),
			"strategy %s does not support regime %s", active[i].Template.ID, regime.Type)
	}
}

func TestActivationCapScalesWithCoherenceConfidence(t *testing.T) {
	assertion := assert.New(t)

	pool := NewStrategyPool(10)

	weak := model.NeutralCoherence()
	weak.Confidence = 0.05

	active := pool.Activate(trendingFeatures(), trendingRegime(), weak)

	// floor(20 * 0.05) = 1
	assertion.LessOrEqual(len(active), 1)
}

func TestActivationCapRespectsMaxStrategies(t *testing.T) {
	assertion := assert.New(t)

	pool := NewStrategyPool(2)
	active := pool.Activate(trendingFeatures(), trendingRegime(), fullCoherence())

	assertion.LessOrEqual(len(active), 2)
}

func TestParameterAdaptationByVolatility(t *testing.T) {
	assertion := assert.New(t)

	template := model.StrategyTemplate{
		ID:   "test",
		Type: model.StrategyMomentumFollow,
		Parameters: map[string]float64{
			"stopLoss":     0.010,
			"targetProfit": 0.020,
			"trailingStop": 0.010,
			"minMomentum":  0.010,
		},
	}

	high := trendingFeatures()
	high.VolatilityState.Regime = model.VolRegimeHigh

	adapted := adaptParameters(template, high)
	assertion.InDelta(0.005, adapted["stopLoss"], 1e-9)
	assertion.InDelta(0.010, adapted["targetProfit"], 1e-9)
	assertion.InDelta(0.005, adapted["trailingStop"], 1e-9)
	// non-risk parameters are untouched
	assertion.InDelta(0.010, adapted["minMomentum"], 1e-9)

	low := trendingFeatures()
	low.VolatilityState.Regime = model.VolRegimeLow

	widened := adaptParameters(template, low)
	assertion.InDelta(0.012, widened["stopLoss"], 1e-9)
}

func TestRegisterAndRemoveTemplate(t *testing.T) {
	assertion := assert.New(t)

	pool := NewStrategyPool(10)
	assertion.Len(pool.Templates(), 10)

	pool.RegisterTemplate(model.StrategyTemplate{
		ID:                  "custom_v1",
		Type:                model.StrategyMomentumFollow,
		ValidRegimes:        []model.RegimeType{model.RegimeTrendingBullish},
		ActivationThreshold: 0.50,
		Parameters:          map[string]float64{"trailingStop": 0.01, "targetMultiple": 2.00, "minMomentum": 0.01, "minTrendStrength": 0.40},
	})
	assertion.Len(pool.Templates(), 11)

	pool.RemoveTemplate("custom_v1")
	assertion.Len(pool.Templates(), 10)
}

func TestRecordOutcomeInfluencesActivation(t *testing.T) {
	assertion := assert.New(t)

	pool := NewStrategyPool(10)
	for i := 0; i < 10; i++ {
		pool.RecordOutcome("momentum_follow_v1", 0.05)
	}

	assertion.InDelta(0.05, pool.recentPerformance("momentum_follow_v1"), 1e-9)
	assertion.Equal(0.00, pool.recentPerformance("unknown"))
}

func TestMeanReversionFadesTrend(t *testing.T) {
	assertion := assert.New(t)

	features := trendingFeatures()
	features.VolatilityState.Implied = 30.00

	regime := model.Regime{
		Type:       model.RegimeMeanReversion,
		Confidence: 0.90,
		Characteristics: model.RegimeCharacteristics{
			Trend: model.TrendUp,
		},
	}

	pool := NewStrategyPool(10)
	active := pool.Activate(features, regime, fullCoherence())

	var reversion *model.ActiveStrategy
	for i := range active {
		if active[i].Template.Type == model.StrategyMeanReversion {
			reversion = &active[i]
		}
	}

	assertion.NotNil(reversion)
	assertion.NotNil(reversion.CurrentSignal)
	assertion.Equal(model.DirectionShort, reversion.CurrentSignal.Direction)
	assertion.Greater(reversion.CurrentSignal.StopPrice, reversion.CurrentSignal.EntryPrice)
}

func TestNoSignalBelowStrengthFloor(t *testing.T) {
	assertion := assert.New(t)

	features := trendingFeatures()
	features.PriceHistory.Momentum = 0.012
	features.PriceHistory.TrendStrength = 0.65

	template := model.StrategyTemplate{
		ID:   "weak",
		Type: model.StrategyMomentumFollow,
		Parameters: map[string]float64{
			"trailingStop":   0.01,
			"targetMultiple": 2.00,
		},
		Timeframe: "5m",
	}

	// strength = clamp(20 * 0.012) = 0.24 < 0.3
	signal := generateSignal(template, template.Parameters, features, trendingRegime(), 0.80)
	assertion.Nil(signal)
}
