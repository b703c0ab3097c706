package model

const FlipPositiveToNegative = "positive_to_negative"
const FlipNegativeToPositive = "negative_to_positive"

const AttractorGammaMax = "gamma_max"

const TrendUp = "up"
const TrendDown = "down"
const TrendSideways = "sideways"

const VolRegimeLow = "low"
const VolRegimeNormal = "normal"
const VolRegimeElevated = "elevated"
const VolRegimeHigh = "high"
const VolRegimeExtreme = "extreme"

const FlowBuying = "buying"
const FlowSelling = "selling"
const FlowNeutral = "neutral"

// GammaSurface aggregates dealer gamma over the strike/expiry grid.
// Values is indexed [expiry][strike] and its dimensions always equal
// len(Expiries) x len(Strikes).
type GammaSurface struct {
	Strikes  []float64        `json:"strikes"`
	Expiries []TimestampMilli `json:"expiries"`
	Values   [][]float64      `json:"values"`
	MinGamma float64          `json:"minGamma"`
	MaxGamma float64          `json:"maxGamma"`
	NetGamma float64          `json:"netGamma"`
}

func (s *GammaSurface) IsEmpty() bool {
	return len(s.Strikes) == 0 || len(s.Expiries) == 0
}

func (s *GammaSurface) Range() float64 {
	return s.MaxGamma - s.MinGamma
}

type GammaFlip struct {
	Price    float64        `json:"price"`
	Strength float64        `json:"strength"`
	Type     string         `json:"type"`
	Expiry   TimestampMilli `json:"expiry"`
}

type Attractor struct {
	Price    float64 `json:"price"`
	Strength float64 `json:"strength"`
	Type     string  `json:"type"`
}

// GravitationalPull scores price attraction toward gamma concentrations
// with an inverse-square law. Direction is -1, 0 or +1; Magnitude is [0,1].
type GravitationalPull struct {
	Direction  float64     `json:"direction"`
	Magnitude  float64     `json:"magnitude"`
	Attractors []Attractor `json:"attractors"`
}

type LiquidityLevel struct {
	Price       float64 `json:"price"`
	Size        float64 `json:"size"`
	Side        string  `json:"side"`
	FlowRate    float64 `json:"flowRate"`
	Persistence float64 `json:"persistence"`
}

type LiquidityMap struct {
	Levels         []LiquidityLevel `json:"levels"`
	Imbalance      float64          `json:"imbalance"`
	Depth          float64          `json:"depth"`
	AbsorptionRate float64          `json:"absorptionRate"`
}

type VolatilityState struct {
	Regime     string  `json:"regime"`
	Historical float64 `json:"historical"`
	Implied    float64 `json:"implied"`
	Spread     float64 `json:"spread"`
	VolOfVol   float64 `json:"volOfVol"`
	Skew       float64 `json:"skew"`
	Term       float64 `json:"term"`
}

type DealerPositioning struct {
	NetGammaExposure float64 `json:"netGammaExposure"`
	NetDeltaExposure float64 `json:"netDeltaExposure"`
	HedgingPressure  float64 `json:"hedgingPressure"`
	FlowDirection    string  `json:"flowDirection"`
	Confidence       float64 `json:"confidence"`
}

type PriceHistory struct {
	Prices        []float64 `json:"prices"`
	Momentum      float64   `json:"momentum"`
	Trend         string    `json:"trend"`
	TrendStrength float64   `json:"trendStrength"`
}

// StructuralFeatures is the Perception output for one tick. Immutable
// after production; later phases consume it by reference.
type StructuralFeatures struct {
	Symbol            string            `json:"symbol"`
	Timestamp         TimestampMilli    `json:"timestamp"`
	SpotPrice         float64           `json:"spotPrice"`
	GammaSurface      GammaSurface      `json:"gammaSurface"`
	GammaFlips        []GammaFlip       `json:"gammaFlips"`
	GravitationalPull GravitationalPull `json:"gravitationalPull"`
	LiquidityMap      LiquidityMap      `json:"liquidityMap"`
	VolatilityState   VolatilityState   `json:"volatilityState"`
	DealerPositioning DealerPositioning `json:"dealerPositioning"`
	PriceHistory      PriceHistory      `json:"priceHistory"`
}

// NearestFlipDistance returns the relative distance of the closest gamma
// flip to the spot price, or -1 when there are no flips.
func (f *StructuralFeatures) NearestFlipDistance() float64 {
	if len(f.GammaFlips) == 0 || f.SpotPrice == 0.00 {
		return -1.00
	}

	nearest := -1.00
	for _, flip := range f.GammaFlips {
		distance := flip.Price - f.SpotPrice
		if distance < 0 {
			distance = -distance
		}
		distance = distance / f.SpotPrice

		if nearest < 0 || distance < nearest {
			nearest = distance
		}
	}

	return nearest
}
