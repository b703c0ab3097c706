package model

type RegimeType string

const (
	RegimeTrendingBullish RegimeType = "trending_bullish"
	RegimeTrendingBearish RegimeType = "trending_bearish"
	RegimeRangeBound      RegimeType = "range_bound"
	RegimeBreakout        RegimeType = "breakout"
	RegimeBreakdown       RegimeType = "breakdown"
	RegimeConsolidation   RegimeType = "consolidation"
	RegimeHighVolatility  RegimeType = "high_volatility"
	RegimeLowVolatility   RegimeType = "low_volatility"
	RegimeGammaSqueeze    RegimeType = "gamma_squeeze"
	RegimeMeanReversion   RegimeType = "mean_reversion"
)

const PhaseAccumulation = "accumulation"
const PhaseMarkup = "markup"
const PhaseDistribution = "distribution"
const PhaseMarkdown = "markdown"

type RegimeCharacteristics struct {
	Volatility string  `json:"volatility"`
	Trend      string  `json:"trend"`
	Momentum   float64 `json:"momentum"`
	Phase      string  `json:"phase"`
}

type Regime struct {
	Type                  RegimeType            `json:"type"`
	Confidence            float64               `json:"confidence"`
	Duration              int                   `json:"duration"`
	TransitionProbability float64               `json:"transitionProbability"`
	Characteristics       RegimeCharacteristics `json:"characteristics"`
}
