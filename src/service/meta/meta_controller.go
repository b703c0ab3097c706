package meta

import (
	"gitlab.com/open-quant/go-fractal-engine/src/model"
	"gitlab.com/open-quant/go-fractal-engine/src/utils"
)

const HistoryCapacity = 100
const transitionHistoryMin = 10
const defaultTransitionProbability = 0.10

// regimeFeatures are the ten observations the classification cascade
// reads, extracted once per tick from the structural snapshot.
type regimeFeatures struct {
	momentum       float64
	trendStrength  float64
	impliedVol     float64
	volOfVol       float64
	volSpread      float64
	skew           float64
	gammaDirection float64
	gammaMagnitude float64
	imbalance      float64
	absorption     float64
}

// MetaController owns the regime and coherence histories plus five
// per-feature buffers used for temporal and fractal scoring.
type MetaController struct {
	regimeHistory    *utils.RingBuffer[model.Regime]
	coherenceHistory *utils.RingBuffer[float64]
	momentumBuffer   *utils.RingBuffer[float64]
	volatilityBuffer *utils.RingBuffer[float64]
	gammaBuffer      *utils.RingBuffer[float64]
	liquidityBuffer  *utils.RingBuffer[float64]
	trendBuffer      *utils.RingBuffer[float64]
}

func NewMetaController() *MetaController {
	return &MetaController{
		regimeHistory:    utils.NewRingBuffer[model.Regime](HistoryCapacity),
		coherenceHistory: utils.NewRingBuffer[float64](HistoryCapacity),
		momentumBuffer:   utils.NewRingBuffer[float64](HistoryCapacity),
		volatilityBuffer: utils.NewRingBuffer[float64](HistoryCapacity),
		gammaBuffer:      utils.NewRingBuffer[float64](HistoryCapacity),
		liquidityBuffer:  utils.NewRingBuffer[float64](HistoryCapacity),
		trendBuffer:      utils.NewRingBuffer[float64](HistoryCapacity),
	}
}

func extractFeatures(features *model.StructuralFeatures) regimeFeatures {
	return regimeFeatures{
		momentum:       features.PriceHistory.Momentum,
		trendStrength:  features.PriceHistory.TrendStrength,
		impliedVol:     features.VolatilityState.Implied / 100.00,
		volOfVol:       features.VolatilityState.VolOfVol,
		volSpread:      features.VolatilityState.Spread,
		skew:           features.VolatilityState.Skew,
		gammaDirection: features.GravitationalPull.Direction,
		gammaMagnitude: features.GravitationalPull.Magnitude,
		imbalance:      features.LiquidityMap.Imbalance,
		absorption:     features.LiquidityMap.AbsorptionRate,
	}
}

// Classify runs the rule-ordered cascade; the first matching rule wins.
func (m *MetaController) Classify(features *model.StructuralFeatures) model.Regime {
	f := extractFeatures(features)

	m.momentumBuffer.Append(f.momentum)
	m.volatilityBuffer.Append(f.impliedVol)
	m.gammaBuffer.Append(f.gammaDirection * f.gammaMagnitude)
	m.liquidityBuffer.Append(f.imbalance)
	m.trendBuffer.Append(f.trendStrength)

	regimeType := m.classifyType(f, features)

	regime := model.Regime{
		Type:                  regimeType,
		Confidence:            m.confidence(regimeType, f, features),
		Duration:              m.duration(regimeType),
		TransitionProbability: m.transitionProbability(regimeType, f),
		Characteristics: model.RegimeCharacteristics{
			Volatility: features.VolatilityState.Regime,
			Trend:      features.PriceHistory.Trend,
			Momentum:   f.momentum,
			Phase:      marketPhase(f),
		},
	}

	m.regimeHistory.Append(regime)

	return regime
}

func (m *MetaController) classifyType(f regimeFeatures, features *model.StructuralFeatures) model.RegimeType {
	absMomentum := f.momentum
	if absMomentum < 0 {
		absMomentum = -absMomentum
	}
	absNetGamma := features.GammaSurface.NetGamma
	if absNetGamma < 0 {
		absNetGamma = -absNetGamma
	}

	switch {
	case f.impliedVol > 0.40:
		return model.RegimeHighVolatility
	// the low-vol rule needs a chain-backed reading: the historical
	// fallback on an empty chain would otherwise swallow every regime
	case f.impliedVol < 0.15 && !features.GammaSurface.IsEmpty():
		return model.RegimeLowVolatility
	case f.gammaMagnitude > 0.70 && absNetGamma > 1000000.00:
		return model.RegimeGammaSqueeze
	case f.momentum > 0.02 && f.trendStrength > 0.60:
		return model.RegimeTrendingBullish
	case f.momentum < -0.02 && f.trendStrength > 0.60:
		return model.RegimeTrendingBearish
	case f.volOfVol > 0.30 && f.momentum > 0.01:
		return model.RegimeBreakout
	case f.volOfVol > 0.30 && f.momentum < -0.01:
		return model.RegimeBreakdown
	case absMomentum < 0.005 && f.impliedVol > 0.20:
		return model.RegimeMeanReversion
	case f.trendStrength < 0.30 && absMomentum < 0.01:
		return model.RegimeRangeBound
	case f.impliedVol < 0.20 && f.trendStrength < 0.40:
		return model.RegimeConsolidation
	default:
		return model.RegimeRangeBound
	}
}

func (m *MetaController) confidence(regimeType model.RegimeType, f regimeFeatures, features *model.StructuralFeatures) float64 {
	absMomentum := f.momentum
	if absMomentum < 0 {
		absMomentum = -absMomentum
	}

	confidence := 0.50

	switch regimeType {
	case model.RegimeTrendingBullish, model.RegimeTrendingBearish:
		confidence = 0.50 + 0.30*utils.Clamp(10.00*absMomentum, 0.00, 1.00) + 0.20*f.trendStrength
	case model.RegimeHighVolatility:
		confidence = 0.50 + 0.50*utils.Clamp(f.impliedVol-0.30, 0.00, 1.00)
	case model.RegimeLowVolatility:
		confidence = 0.50 + 0.50*utils.Clamp((0.15-f.impliedVol)*10.00, 0.00, 1.00)
	case model.RegimeGammaSqueeze:
		absNetGamma := features.GammaSurface.NetGamma
		if absNetGamma < 0 {
			absNetGamma = -absNetGamma
		}
		confidence = 0.50 + 0.30*utils.Clamp(f.gammaMagnitude, 0.00, 1.00) + 0.20*utils.Clamp(absNetGamma/10000000.00, 0.00, 1.00)
	case model.RegimeBreakout, model.RegimeBreakdown:
		confidence = 0.50 + 0.30*utils.Clamp(f.volOfVol, 0.00, 1.00) + 0.20*utils.Clamp(10.00*absMomentum, 0.00, 1.00)
	case model.RegimeMeanReversion:
		confidence = 0.50 + 0.50*utils.Clamp(f.impliedVol-0.20, 0.00, 1.00)
	case model.RegimeRangeBound:
		confidence = 0.50 + 0.20*(1.00-f.trendStrength) + 0.10*(1.00-utils.Clamp(100.00*absMomentum, 0.00, 1.00))
	case model.RegimeConsolidation:
		confidence = 0.50 + 0.15*(1.00-f.trendStrength) + 0.15*utils.Clamp((0.20-f.impliedVol)*5.00, 0.00, 1.00)
	}

	return utils.Clamp(confidence, 0.00, 1.00)
}

// duration is the run length of the same regime at the end of history.
func (m *MetaController) duration(regimeType model.RegimeType) int {
	duration := 1
	recent := m.regimeHistory.Last(m.regimeHistory.Size())
	for _, regime := range recent {
		if regime.Type != regimeType {
			break
		}

		duration++
	}

	return duration
}

// transitionProbability counts how often history switched into this
// regime relative to how often the regime occurred, boosted by vol-of-vol.
func (m *MetaController) transitionProbability(regimeType model.RegimeType, f regimeFeatures) float64 {
	history := m.regimeHistory.ToSlice()
	if len(history) < transitionHistoryMin {
		return defaultTransitionProbability
	}

	occurrences := 0
	transitionsInto := 0
	for i, regime := range history {
		if regime.Type == regimeType {
			occurrences++
			if i > 0 && history[i-1].Type != regimeType {
				transitionsInto++
			}
		}
	}

	probability := 0.00
	if occurrences > 0 {
		probability = float64(transitionsInto) / float64(occurrences)
	}

	return utils.Clamp(probability+0.50*f.volOfVol, 0.00, 0.90)
}

func marketPhase(f regimeFeatures) string {
	absMomentum := f.momentum
	if absMomentum < 0 {
		absMomentum = -absMomentum
	}

	switch {
	case f.momentum > 0.01 && f.trendStrength > 0.50:
		return model.PhaseMarkup
	case f.momentum < -0.01 && f.trendStrength > 0.50:
		return model.PhaseMarkdown
	case f.imbalance > 0.20 && absMomentum < 0.01:
		return model.PhaseAccumulation
	case f.imbalance < -0.20 && absMomentum < 0.01:
		return model.PhaseDistribution
	case f.momentum >= 0.00:
		return model.PhaseMarkup
	default:
		return model.PhaseMarkdown
	}
}
