package perception

import (
	"math"

	"gitlab.com/open-quant/go-fractal-engine/src/model"
	"gitlab.com/open-quant/go-fractal-engine/src/utils"
)

const TradingDaysPerYear = 252.00

const otmPutDeltaLimit = 0.25
const atmDeltaLow = 0.40
const atmDeltaHigh = 0.60

// BuildVolatilityState derives the volatility picture from log returns
// of the fast closes and the chain's implied vols. Historical, Implied,
// Spread, Skew and Term are expressed in annualized percent.
func (p *Perception) BuildVolatilityState(bundle model.MarketBundle) model.VolatilityState {
	state := model.VolatilityState{
		Regime: model.VolRegimeLow,
	}

	closes := make([]float64, 0, len(bundle.Fast.Bars))
	for _, bar := range bundle.Fast.Bars {
		closes = append(closes, bar.Close)
	}
	if len(closes) < 2 {
		closes = p.priceBuffer.ToSlice()
	}

	logReturns := make([]float64, 0)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0.00 || closes[i] <= 0.00 {
			logReturns = append(logReturns, 0.00)
			continue
		}

		logReturns = append(logReturns, math.Log(closes[i]/closes[i-1]))
	}

	state.Historical = utils.StdDev(logReturns) * math.Sqrt(TradingDaysPerYear) * 100.00

	impliedVols := make([]float64, 0, len(bundle.Chain))
	for _, contract := range bundle.Chain {
		if contract.ImpliedVol > 0.00 {
			impliedVols = append(impliedVols, contract.ImpliedVol)
		}
	}

	if len(impliedVols) > 0 {
		state.Implied = utils.Mean(impliedVols) * 100.00
	} else {
		state.Implied = state.Historical
	}

	state.Spread = state.Implied - state.Historical
	state.Skew = p.volSkew(bundle.Chain)
	state.Term = p.volTerm(bundle.Chain)
	state.Regime = volRegimeLabel(state.Implied)

	return state
}

func volRegimeLabel(impliedPercent float64) string {
	switch {
	case impliedPercent < 15.00:
		return model.VolRegimeLow
	case impliedPercent < 25.00:
		return model.VolRegimeNormal
	case impliedPercent < 35.00:
		return model.VolRegimeElevated
	case impliedPercent < 50.00:
		return model.VolRegimeHigh
	default:
		return model.VolRegimeExtreme
	}
}

// volSkew compares OTM put IV against ATM IV.
func (p *Perception) volSkew(chain []model.OptionContract) float64 {
	otmPuts := make([]float64, 0)
	atm := make([]float64, 0)

	for _, contract := range chain {
		if contract.ImpliedVol <= 0.00 {
			continue
		}

		delta := contract.Delta
		if delta < 0 {
			delta = -delta
		}

		if contract.IsPut() && delta < otmPutDeltaLimit {
			otmPuts = append(otmPuts, contract.ImpliedVol)
		}

		if delta > atmDeltaLow && delta < atmDeltaHigh {
			atm = append(atm, contract.ImpliedVol)
		}
	}

	if len(otmPuts) == 0 || len(atm) == 0 {
		return 0.00
	}

	return (utils.Mean(otmPuts) - utils.Mean(atm)) * 100.00
}

// volTerm compares the farthest expiry's IV against the nearest one's.
func (p *Perception) volTerm(chain []model.OptionContract) float64 {
	var nearest, farthest model.TimestampMilli
	first := true
	for _, contract := range chain {
		if first {
			nearest = contract.Expiry
			farthest = contract.Expiry
			first = false
			continue
		}

		if contract.Expiry < nearest {
			nearest = contract.Expiry
		}
		if contract.Expiry > farthest {
			farthest = contract.Expiry
		}
	}

	if first || nearest == farthest {
		return 0.00
	}

	near := make([]float64, 0)
	far := make([]float64, 0)
	for _, contract := range chain {
		if contract.ImpliedVol <= 0.00 {
			continue
		}

		if contract.Expiry == nearest {
			near = append(near, contract.ImpliedVol)
		}
		if contract.Expiry == farthest {
			far = append(far, contract.ImpliedVol)
		}
	}

	if len(near) == 0 || len(far) == 0 {
		return 0.00
	}

	return (utils.Mean(far) - utils.Mean(near)) * 100.00
}
