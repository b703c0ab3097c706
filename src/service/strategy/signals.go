package strategy

import (
	"fmt"

	"gitlab.com/open-quant/go-fractal-engine/src/model"
	"gitlab.com/open-quant/go-fractal-engine/src/utils"
)

const minSignalStrength = 0.30

type signalFunc func(template model.StrategyTemplate, parameters map[string]float64, features *model.StructuralFeatures, regime model.Regime) (string, float64, float64, []float64, string)

// signalTable dispatches per-type signal shaping. Each entry returns
// direction, strength, stop, targets and a rationale; the common
// envelope is assembled in generateSignal.
var signalTable = map[model.StrategyType]signalFunc{
	model.StrategyGammaScalp:     gammaScalpSignal,
	model.StrategyMomentumFollow: momentumFollowSignal,
	model.StrategyMeanReversion:  meanReversionSignal,
	model.StrategyFlowAlignment:  flowAlignmentSignal,
}

func generateSignal(template model.StrategyTemplate, parameters map[string]float64, features *model.StructuralFeatures, regime model.Regime, activationScore float64) *model.Signal {
	entry := features.SpotPrice
	if entry == 0.00 {
		return nil
	}

	shape, ok := signalTable[template.Type]
	if !ok {
		shape = defaultSignal
	}

	direction, strength, stop, targets, rationale := shape(template, parameters, features, regime)

	if direction == model.DirectionNeutral || strength < minSignalStrength {
		return nil
	}

	// ids are derived, not random, so identical ticks replay identically
	return &model.Signal{
		ID:         fmt.Sprintf("%s-%d", template.ID, features.Timestamp.Value()),
		StrategyID: template.ID,
		Direction:  direction,
		Strength:   utils.Clamp(strength, 0.00, 1.00),
		Confidence: utils.Clamp(activationScore, 0.00, 1.00),
		EntryPrice: entry,
		StopPrice:  stop,
		Targets:    targets,
		Timeframe:  template.Timeframe,
		Rationale:  rationale,
		Context: model.SignalContext{
			GammaLevel:       features.GammaSurface.NetGamma,
			LiquiditySupport: features.LiquidityMap.Depth,
			Volatility:       features.VolatilityState.Regime,
			DealerFlow:       features.DealerPositioning.FlowDirection,
		},
		Timestamp: features.Timestamp,
	}
}

func gammaScalpSignal(template model.StrategyTemplate, parameters map[string]float64, features *model.StructuralFeatures, regime model.Regime) (string, float64, float64, []float64, string) {
	entry := features.SpotPrice
	stopLoss := parameters["stopLoss"]
	targetProfit := parameters["targetProfit"]
	pull := features.GravitationalPull

	if pull.Direction > 0 {
		return model.DirectionLong, pull.Magnitude,
			entry * (1.00 - stopLoss),
			[]float64{entry * (1.00 + targetProfit)},
			fmt.Sprintf("gamma pull toward %.2f", nearestAttractorPrice(pull, entry))
	}

	if pull.Direction < 0 {
		return model.DirectionShort, pull.Magnitude,
			entry * (1.00 + stopLoss),
			[]float64{entry * (1.00 - targetProfit)},
			fmt.Sprintf("gamma pull toward %.2f", nearestAttractorPrice(pull, entry))
	}

	return model.DirectionNeutral, 0.00, 0.00, nil, ""
}

func momentumFollowSignal(template model.StrategyTemplate, parameters map[string]float64, features *model.StructuralFeatures, regime model.Regime) (string, float64, float64, []float64, string) {
	entry := features.SpotPrice
	momentum := features.PriceHistory.Momentum
	trailingStop := parameters["trailingStop"]
	targetDistance := trailingStop * parameters["targetMultiple"]

	strength := momentum
	if strength < 0 {
		strength = -strength
	}
	strength = utils.Clamp(20.00*strength, 0.00, 1.00)

	if momentum > 0 {
		return model.DirectionLong, strength,
			entry * (1.00 - trailingStop),
			[]float64{entry * (1.00 + targetDistance), entry * (1.00 + 1.50*targetDistance)},
			fmt.Sprintf("momentum %.4f with %s trend", momentum, features.PriceHistory.Trend)
	}

	if momentum < 0 {
		return model.DirectionShort, strength,
			entry * (1.00 + trailingStop),
			[]float64{entry * (1.00 - targetDistance), entry * (1.00 - 1.50*targetDistance)},
			fmt.Sprintf("momentum %.4f with %s trend", momentum, features.PriceHistory.Trend)
	}

	return model.DirectionNeutral, 0.00, 0.00, nil, ""
}

// meanReversionSignal fades a stretched trend with widened stops.
func meanReversionSignal(template model.StrategyTemplate, parameters map[string]float64, features *model.StructuralFeatures, regime model.Regime) (string, float64, float64, []float64, string) {
	entry := features.SpotPrice
	trendStrength := features.PriceHistory.TrendStrength

	if trendStrength < parameters["minTrendStrength"] {
		return model.DirectionNeutral, 0.00, 0.00, nil, ""
	}

	stopDistance := parameters["stopLoss"] * parameters["stopLossMultiple"]
	targetProfit := parameters["targetProfit"]

	if features.PriceHistory.Trend == model.TrendUp {
		return model.DirectionShort, trendStrength,
			entry * (1.00 + stopDistance),
			[]float64{entry * (1.00 - targetProfit)},
			"fading stretched uptrend"
	}

	if features.PriceHistory.Trend == model.TrendDown {
		return model.DirectionLong, trendStrength,
			entry * (1.00 - stopDistance),
			[]float64{entry * (1.00 + targetProfit)},
			"fading stretched downtrend"
	}

	return model.DirectionNeutral, 0.00, 0.00, nil, ""
}

func flowAlignmentSignal(template model.StrategyTemplate, parameters map[string]float64, features *model.StructuralFeatures, regime model.Regime) (string, float64, float64, []float64, string) {
	entry := features.SpotPrice
	dealer := features.DealerPositioning

	if dealer.Confidence <= 0.50 {
		return model.DirectionNeutral, 0.00, 0.00, nil, ""
	}

	stopLoss := parameters["stopLoss"]
	targetProfit := parameters["targetProfit"]

	if dealer.FlowDirection == model.FlowBuying {
		return model.DirectionLong, dealer.Confidence,
			entry * (1.00 - stopLoss),
			[]float64{entry * (1.00 + targetProfit)},
			"aligned with dealer buying flow"
	}

	if dealer.FlowDirection == model.FlowSelling {
		return model.DirectionShort, dealer.Confidence,
			entry * (1.00 + stopLoss),
			[]float64{entry * (1.00 - targetProfit)},
			"aligned with dealer selling flow"
	}

	return model.DirectionNeutral, 0.00, 0.00, nil, ""
}

// defaultSignal falls back to the regime characteristics.
func defaultSignal(template model.StrategyTemplate, parameters map[string]float64, features *model.StructuralFeatures, regime model.Regime) (string, float64, float64, []float64, string) {
	entry := features.SpotPrice
	stopLoss := parameters["stopLoss"]
	targetProfit := parameters["targetProfit"]
	rationale := fmt.Sprintf("%s regime in %s phase", regime.Type, regime.Characteristics.Phase)

	if regime.Characteristics.Trend == model.TrendUp {
		return model.DirectionLong, regime.Confidence,
			entry * (1.00 - stopLoss),
			[]float64{entry * (1.00 + targetProfit)},
			rationale
	}

	if regime.Characteristics.Trend == model.TrendDown {
		return model.DirectionShort, regime.Confidence,
			entry * (1.00 + stopLoss),
			[]float64{entry * (1.00 - targetProfit)},
			rationale
	}

	return model.DirectionNeutral, 0.00, 0.00, nil, ""
}

func nearestAttractorPrice(pull model.GravitationalPull, spot float64) float64 {
	nearest := spot
	bestDistance := -1.00
	for _, attractor := range pull.Attractors {
		distance := attractor.Price - spot
		if distance < 0 {
			distance = -distance
		}

		if bestDistance < 0 || distance < bestDistance {
			bestDistance = distance
			nearest = attractor.Price
		}
	}

	return nearest
}
