package strategy

import (
	"gitlab.com/open-quant/go-fractal-engine/src/model"
)

type bonusFunc func(template model.StrategyTemplate, features *model.StructuralFeatures, coherence model.CoherenceScore) float64

// bonusTable holds the hand-calibrated per-type activation bonuses.
// Each caps out around 0.5. New strategy types register here and in
// signalTable.
var bonusTable = map[model.StrategyType]bonusFunc{
	model.StrategyGammaScalp:            gammaScalpBonus,
	model.StrategyMomentumFollow:        momentumFollowBonus,
	model.StrategyMeanReversion:         meanReversionBonus,
	model.StrategyVolatilityExpansion:   volatilityExpansionBonus,
	model.StrategyVolatilityContraction: volatilityContractionBonus,
	model.StrategyLiquidityHunt:         liquidityHuntBonus,
	model.StrategyFlowAlignment:         flowAlignmentBonus,
	model.StrategyStructuralBreak:       structuralBreakBonus,
	model.StrategyPatternRecognition:    patternRecognitionBonus,
	model.StrategyFractalResonance:      fractalResonanceBonus,
}

func activationBonus(template model.StrategyTemplate, features *model.StructuralFeatures, coherence model.CoherenceScore) float64 {
	bonus, ok := bonusTable[template.Type]
	if !ok {
		return 0.00
	}

	return bonus(template, features, coherence)
}

func gammaScalpBonus(template model.StrategyTemplate, features *model.StructuralFeatures, coherence model.CoherenceScore) float64 {
	bonus := 0.00

	if features.GravitationalPull.Magnitude > template.Parameter("minConcentration", 0.30) {
		bonus += 0.30
	}

	nearest := features.NearestFlipDistance()
	if nearest >= 0.00 && nearest < 0.01 {
		bonus += 0.20
	}

	return bonus
}

func momentumFollowBonus(template model.StrategyTemplate, features *model.StructuralFeatures, coherence model.CoherenceScore) float64 {
	bonus := 0.00

	momentum := features.PriceHistory.Momentum
	if momentum < 0 {
		momentum = -momentum
	}

	if momentum > template.Parameter("minMomentum", 0.01) {
		bonus += 0.25
	}
	if features.PriceHistory.TrendStrength > template.Parameter("minTrendStrength", 0.40) {
		bonus += 0.25
	}

	return bonus
}

func meanReversionBonus(template model.StrategyTemplate, features *model.StructuralFeatures, coherence model.CoherenceScore) float64 {
	bonus := 0.00

	momentum := features.PriceHistory.Momentum
	if momentum < 0 {
		momentum = -momentum
	}

	if features.VolatilityState.Implied > 25.00 && momentum < 0.01 {
		bonus += 0.30
	}
	if features.PriceHistory.TrendStrength > 0.60 {
		bonus += 0.20
	}

	return bonus
}

func volatilityExpansionBonus(template model.StrategyTemplate, features *model.StructuralFeatures, coherence model.CoherenceScore) float64 {
	bonus := 0.00

	if features.VolatilityState.Spread > template.Parameter("minVolSpread", 5.00) {
		bonus += 0.25
	}
	if features.VolatilityState.VolOfVol > template.Parameter("minVolOfVol", 0.20) {
		bonus += 0.25
	}

	return bonus
}

func volatilityContractionBonus(template model.StrategyTemplate, features *model.StructuralFeatures, coherence model.CoherenceScore) float64 {
	bonus := 0.00

	if features.VolatilityState.Implied < template.Parameter("maxImpliedVol", 20.00) {
		bonus += 0.30
	}
	if features.VolatilityState.Spread < 0.00 {
		bonus += 0.20
	}

	return bonus
}

func liquidityHuntBonus(template model.StrategyTemplate, features *model.StructuralFeatures, coherence model.CoherenceScore) float64 {
	bonus := 0.00

	imbalance := features.LiquidityMap.Imbalance
	if imbalance < 0 {
		imbalance = -imbalance
	}

	if imbalance > template.Parameter("minImbalance", 0.30) {
		bonus += 0.25
	}

	minPocket := template.Parameter("minPocketSize", 1000.00)
	proximity := template.Parameter("proximity", 0.005)
	spot := features.SpotPrice
	for _, level := range features.LiquidityMap.Levels {
		if spot == 0.00 || level.Size < minPocket {
			continue
		}

		distance := level.Price - spot
		if distance < 0 {
			distance = -distance
		}

		if distance/spot <= proximity {
			bonus += 0.25
			break
		}
	}

	return bonus
}

func flowAlignmentBonus(template model.StrategyTemplate, features *model.StructuralFeatures, coherence model.CoherenceScore) float64 {
	bonus := 0.00

	pressure := features.DealerPositioning.HedgingPressure
	if pressure < 0 {
		pressure = -pressure
	}
	netGamma := features.DealerPositioning.NetGammaExposure
	if netGamma < 0 {
		netGamma = -netGamma
	}

	if pressure > template.Parameter("minHedgingPressure", 5000.00) {
		bonus += 0.25
	}
	if netGamma > template.Parameter("gammaThreshold", 500000.00) {
		bonus += 0.25
	}

	return bonus
}

func structuralBreakBonus(template model.StrategyTemplate, features *model.StructuralFeatures, coherence model.CoherenceScore) float64 {
	bonus := 0.00

	if features.PriceHistory.TrendStrength > template.Parameter("minTrendStrength", 0.50) {
		bonus += 0.25
	}
	if features.VolatilityState.VolOfVol > 0.20 {
		bonus += 0.25
	}

	return bonus
}

// TODO: score against fractal memory retrieval once the pool can reach it.
func patternRecognitionBonus(template model.StrategyTemplate, features *model.StructuralFeatures, coherence model.CoherenceScore) float64 {
	return 0.25
}

func fractalResonanceBonus(template model.StrategyTemplate, features *model.StructuralFeatures, coherence model.CoherenceScore) float64 {
	bonus := 0.00
	threshold := template.Parameter("resonanceThreshold", 0.70)

	if coherence.Temporal > threshold {
		bonus += 0.30
	}
	if coherence.Fractal > threshold {
		bonus += 0.20
	}

	return bonus
}
