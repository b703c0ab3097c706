package meta

import (
	"gitlab.com/open-quant/go-fractal-engine/src/model"
	"gitlab.com/open-quant/go-fractal-engine/src/utils"
)

const temporalWindow = 20
const fractalWindow = 50

// Coherence composes the five sub-scores from the current snapshot,
// the classified regime and the preliminary strategy activations.
// Weights are fixed: 0.30/0.25/0.20/0.15/0.10.
func (m *MetaController) Coherence(features *model.StructuralFeatures, regime model.Regime, active []model.ActiveStrategy) model.CoherenceScore {
	score := model.CoherenceScore{
		Structural:      m.structuralScore(features),
		RegimeAlignment: m.regimeAlignmentScore(regime, active),
		Temporal:        m.temporalScore(),
		Fractal:         m.fractalScore(features),
		Convergence:     m.convergenceScore(active),
	}

	score.Total = model.CoherenceWeightStructural*score.Structural +
		model.CoherenceWeightRegime*score.RegimeAlignment +
		model.CoherenceWeightTemporal*score.Temporal +
		model.CoherenceWeightFractal*score.Fractal +
		model.CoherenceWeightConvergence*score.Convergence

	score.Confidence = utils.Sigmoid(2.00*score.Total - 1.00)
	score.Components = map[string]float64{
		"alignment": score.Structural,
		"stability": score.Temporal,
		"resonance": score.Fractal,
		"agreement": score.Convergence,
	}

	m.coherenceHistory.Append(score.Total)

	return score
}

// structuralScore averages four boolean alignments between independent
// structural reads of the same market.
func (m *MetaController) structuralScore(features *model.StructuralFeatures) float64 {
	pull := features.GravitationalPull
	trend := features.PriceHistory.Trend
	momentum := features.PriceHistory.Momentum
	imbalance := features.LiquidityMap.Imbalance

	gammaAligned := 0.00
	if (pull.Direction > 0 && trend == model.TrendUp) ||
		(pull.Direction < 0 && trend == model.TrendDown) ||
		(pull.Direction == 0 && trend == model.TrendSideways) {
		gammaAligned = 1.00
	}

	liquidityAligned := 0.00
	if imbalance == 0.00 || momentum == 0.00 {
		liquidityAligned = 0.50
	} else if (imbalance > 0) == (momentum > 0) {
		liquidityAligned = 1.00
	}

	flowAligned := 0.00
	flow := features.DealerPositioning.FlowDirection
	if flow == model.FlowNeutral ||
		(flow == model.FlowBuying && trend == model.TrendUp) ||
		(flow == model.FlowSelling && trend == model.TrendDown) {
		flowAligned = 1.00
	}

	pressure := features.DealerPositioning.HedgingPressure
	if pressure < 0 {
		pressure = -pressure
	}
	lowVol := features.VolatilityState.Regime == model.VolRegimeLow

	pressureAligned := 0.50
	if (pressure > 0.00 && !lowVol) || (pressure == 0.00 && lowVol) {
		pressureAligned = 1.00
	}

	return (gammaAligned + liquidityAligned + flowAligned + pressureAligned) / 4.00
}

func (m *MetaController) regimeAlignmentScore(regime model.Regime, active []model.ActiveStrategy) float64 {
	if len(active) == 0 {
		return 0.50
	}

	aligned := 0
	for i := range active {
		if active[i].Template.SupportsRegime(regime.Type) {
			aligned++
		}
	}

	return float64(aligned) / float64(len(active))
}

// temporalScore rewards stable momentum and volatility readings over
// the recent window.
func (m *MetaController) temporalScore() float64 {
	momentum := m.momentumBuffer.Last(temporalWindow)
	volatility := m.volatilityBuffer.Last(temporalWindow)

	momentumStability := 1.00 - utils.Clamp(10.00*utils.StdDev(momentum), 0.00, 1.00)
	volatilityStability := 1.00 - utils.Clamp(5.00*utils.StdDev(volatility), 0.00, 1.00)

	return (momentumStability + volatilityStability) / 2.00
}

// fractalScore is the best cosine match between the current feature
// vector and the recent history of feature vectors.
func (m *MetaController) fractalScore(features *model.StructuralFeatures) float64 {
	current := []float64{
		features.PriceHistory.Momentum,
		features.VolatilityState.Implied / 100.00,
		features.GravitationalPull.Direction * features.GravitationalPull.Magnitude,
		features.LiquidityMap.Imbalance,
		features.PriceHistory.TrendStrength,
	}

	size := m.momentumBuffer.Size()
	if size < 2 {
		return 0.00
	}

	// the newest entry is this tick's own vector, skip it
	window := size - 1
	if window > fractalWindow {
		window = fractalWindow
	}

	best := 0.00
	for offset := 1; offset <= window; offset++ {
		index := size - 1 - offset
		momentum, _ := m.momentumBuffer.At(index)
		volatility, _ := m.volatilityBuffer.At(index)
		gamma, _ := m.gammaBuffer.At(index)
		liquidity, _ := m.liquidityBuffer.At(index)
		trend, _ := m.trendBuffer.At(index)

		similarity := utils.CosineSimilarity(current, []float64{momentum, volatility, gamma, liquidity, trend})
		if similarity > best {
			best = similarity
		}
	}

	return utils.Clamp(best, 0.00, 1.00)
}

// convergenceScore is the largest fraction of generated signals that
// agree on one direction.
func (m *MetaController) convergenceScore(active []model.ActiveStrategy) float64 {
	counts := make(map[string]int)
	total := 0
	for i := range active {
		if active[i].CurrentSignal == nil {
			continue
		}

		counts[active[i].CurrentSignal.Direction]++
		total++
	}

	if total < 2 {
		return 0.50
	}

	best := 0
	for _, count := range counts {
		if count > best {
			best = count
		}
	}

	return float64(best) / float64(total)
}
