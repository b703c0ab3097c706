package perception

import (
	"gitlab.com/open-quant/go-fractal-engine/src/model"
	"gitlab.com/open-quant/go-fractal-engine/src/utils"
)

const hedgingPressureFactor = 0.01
const dealerConfidenceScale = 100000.00
const putCallBuyingLimit = 0.70
const putCallSellingLimit = 1.30

// BuildDealerPositioning infers the dealer book from the chain: dealers
// are short what retail is long, so net delta flips sign against open
// interest. The put/call volume ratio drives the flow label.
func (p *Perception) BuildDealerPositioning(surface model.GammaSurface, chain []model.OptionContract) model.DealerPositioning {
	positioning := model.DealerPositioning{
		NetGammaExposure: surface.NetGamma,
		FlowDirection:    model.FlowNeutral,
	}

	if len(chain) == 0 {
		return positioning
	}

	putVolume := 0.00
	callVolume := 0.00
	totalOpenInterest := 0.00
	netDelta := 0.00

	for _, contract := range chain {
		netDelta += contract.Delta * contract.OpenInterest * ContractMultiplier
		totalOpenInterest += contract.OpenInterest

		if contract.IsPut() {
			putVolume += contract.Volume
		} else {
			callVolume += contract.Volume
		}
	}

	positioning.NetDeltaExposure = -netDelta
	positioning.HedgingPressure = -surface.NetGamma * hedgingPressureFactor
	positioning.Confidence = utils.Clamp(totalOpenInterest/dealerConfidenceScale, 0.00, 1.00)

	if callVolume > 0.00 {
		ratio := putVolume / callVolume
		if ratio < putCallBuyingLimit {
			positioning.FlowDirection = model.FlowBuying
		} else if ratio > putCallSellingLimit {
			positioning.FlowDirection = model.FlowSelling
		}
	} else if putVolume > 0.00 {
		positioning.FlowDirection = model.FlowSelling
	}

	return positioning
}
