package strategy

import (
	"gitlab.com/open-quant/go-fractal-engine/src/model"
)

var allRegimes = []model.RegimeType{
	model.RegimeTrendingBullish,
	model.RegimeTrendingBearish,
	model.RegimeRangeBound,
	model.RegimeBreakout,
	model.RegimeBreakdown,
	model.RegimeConsolidation,
	model.RegimeHighVolatility,
	model.RegimeLowVolatility,
	model.RegimeGammaSqueeze,
	model.RegimeMeanReversion,
}

// DefaultTemplates returns the ten built-in strategy descriptors.
func DefaultTemplates() []model.StrategyTemplate {
	return []model.StrategyTemplate{
		{
			ID:   "gamma_scalp_v1",
			Type: model.StrategyGammaScalp,
			ValidRegimes: []model.RegimeType{
				model.RegimeGammaSqueeze, model.RegimeRangeBound, model.RegimeConsolidation, model.RegimeMeanReversion,
			},
			ActivationThreshold: 0.60,
			Parameters: map[string]float64{
				"stopLoss":         0.005,
				"targetProfit":     0.010,
				"minConcentration": 0.30,
			},
			ExpectedWinRate:    0.55,
			ExpectedRiskReward: 2.00,
			Timeframe:          "1m",
		},
		{
			ID:   "momentum_follow_v1",
			Type: model.StrategyMomentumFollow,
			ValidRegimes: []model.RegimeType{
				model.RegimeTrendingBullish, model.RegimeTrendingBearish, model.RegimeBreakout, model.RegimeBreakdown,
			},
			ActivationThreshold: 0.60,
			Parameters: map[string]float64{
				"minMomentum":      0.010,
				"minTrendStrength": 0.40,
				"trailingStop":     0.010,
				"targetMultiple":   2.00,
			},
			ExpectedWinRate:    0.45,
			ExpectedRiskReward: 2.50,
			Timeframe:          "5m",
		},
		{
			ID:   "mean_reversion_v1",
			Type: model.StrategyMeanReversion,
			ValidRegimes: []model.RegimeType{
				model.RegimeMeanReversion, model.RegimeRangeBound, model.RegimeHighVolatility,
			},
			ActivationThreshold: 0.60,
			Parameters: map[string]float64{
				"stopLoss":         0.010,
				"stopLossMultiple": 1.50,
				"targetProfit":     0.015,
				"minTrendStrength": 0.60,
			},
			ExpectedWinRate:    0.60,
			ExpectedRiskReward: 1.50,
			Timeframe:          "5m",
		},
		{
			ID:   "volatility_expansion_v1",
			Type: model.StrategyVolatilityExpansion,
			ValidRegimes: []model.RegimeType{
				model.RegimeBreakout, model.RegimeBreakdown, model.RegimeHighVolatility, model.RegimeGammaSqueeze,
			},
			ActivationThreshold: 0.65,
			Parameters: map[string]float64{
				"minVolSpread": 5.00,
				"minVolOfVol":  0.20,
				"stopLoss":     0.015,
				"targetProfit": 0.030,
			},
			ExpectedWinRate:    0.40,
			ExpectedRiskReward: 3.00,
			Timeframe:          "15m",
		},
		{
			ID:   "volatility_contraction_v1",
			Type: model.StrategyVolatilityContraction,
			ValidRegimes: []model.RegimeType{
				model.RegimeLowVolatility, model.RegimeConsolidation, model.RegimeRangeBound,
			},
			ActivationThreshold: 0.65,
			Parameters: map[string]float64{
				"maxImpliedVol": 20.00,
				"stopLoss":      0.008,
				"targetProfit":  0.012,
			},
			ExpectedWinRate:    0.55,
			ExpectedRiskReward: 1.50,
			Timeframe:          "15m",
		},
		{
			ID:   "liquidity_hunt_v1",
			Type: model.StrategyLiquidityHunt,
			ValidRegimes: []model.RegimeType{
				model.RegimeRangeBound, model.RegimeConsolidation, model.RegimeMeanReversion,
			},
			ActivationThreshold: 0.65,
			Parameters: map[string]float64{
				"minImbalance":  0.30,
				"minPocketSize": 1000.00,
				"proximity":     0.005,
				"stopLoss":      0.006,
				"targetProfit":  0.010,
			},
			ExpectedWinRate:    0.50,
			ExpectedRiskReward: 1.80,
			Timeframe:          "1m",
		},
		{
			ID:   "flow_alignment_v1",
			Type: model.StrategyFlowAlignment,
			ValidRegimes: []model.RegimeType{
				model.RegimeGammaSqueeze, model.RegimeTrendingBullish, model.RegimeTrendingBearish,
			},
			ActivationThreshold: 0.60,
			Parameters: map[string]float64{
				"minHedgingPressure": 5000.00,
				"gammaThreshold":     500000.00,
				"stopLoss":           0.008,
				"targetProfit":       0.016,
			},
			ExpectedWinRate:    0.50,
			ExpectedRiskReward: 2.00,
			Timeframe:          "5m",
		},
		{
			ID:   "structural_break_v1",
			Type: model.StrategyStructuralBreak,
			ValidRegimes: []model.RegimeType{
				model.RegimeBreakout, model.RegimeBreakdown, model.RegimeHighVolatility,
			},
			ActivationThreshold: 0.65,
			Parameters: map[string]float64{
				"minTrendStrength": 0.50,
				"stopLoss":         0.012,
				"targetProfit":     0.024,
			},
			ExpectedWinRate:    0.40,
			ExpectedRiskReward: 2.50,
			Timeframe:          "15m",
		},
		{
			ID:                  "pattern_recognition_v1",
			Type:                model.StrategyPatternRecognition,
			ValidRegimes:        allRegimes,
			ActivationThreshold: 0.70,
			Parameters: map[string]float64{
				"stopLoss":     0.010,
				"targetProfit": 0.015,
			},
			ExpectedWinRate:    0.50,
			ExpectedRiskReward: 1.50,
			Timeframe:          "15m",
		},
		{
			ID:                  "fractal_resonance_v1",
			Type:                model.StrategyFractalResonance,
			ValidRegimes:        allRegimes,
			ActivationThreshold: 0.70,
			Parameters: map[string]float64{
				"resonanceThreshold": 0.70,
				"stopLoss":           0.010,
				"targetProfit":       0.020,
			},
			ExpectedWinRate:    0.50,
			ExpectedRiskReward: 2.00,
			Timeframe:          "15m",
		},
	}
}
