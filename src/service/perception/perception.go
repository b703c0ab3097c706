package perception

import (
	"gitlab.com/open-quant/go-fractal-engine/src/model"
	"gitlab.com/open-quant/go-fractal-engine/src/utils"
)

const DefaultBufferCapacity = 1000

// Perception turns one raw market bundle into one structural-features
// snapshot per tick. It owns three bounded buffers and nothing else;
// a missing chain or an empty book degrades to zero-valued defaults
// and never fails the tick.
type Perception struct {
	priceBuffer       *utils.RingBuffer[float64]
	volumeBuffer      *utils.RingBuffer[float64]
	realizedVolBuffer *utils.RingBuffer[float64]
}

func NewPerception(bufferCapacity int) *Perception {
	if bufferCapacity < 1 {
		bufferCapacity = DefaultBufferCapacity
	}

	return &Perception{
		priceBuffer:       utils.NewRingBuffer[float64](bufferCapacity),
		volumeBuffer:      utils.NewRingBuffer[float64](bufferCapacity),
		realizedVolBuffer: utils.NewRingBuffer[float64](bufferCapacity),
	}
}

func (p *Perception) Process(bundle model.MarketBundle) model.StructuralFeatures {
	spot := bundle.SpotPrice()

	if len(bundle.Fast.Bars) > 0 {
		lastBar := bundle.Fast.Bars[len(bundle.Fast.Bars)-1]
		p.priceBuffer.Append(lastBar.Close)
		p.volumeBuffer.Append(lastBar.Volume)
	}

	surface := p.BuildGammaSurface(bundle.Chain)
	volatility := p.BuildVolatilityState(bundle)
	p.realizedVolBuffer.Append(volatility.Historical)
	volatility.VolOfVol = utils.StdDev(p.realizedVolBuffer.ToSlice())

	return model.StructuralFeatures{
		Symbol:            bundle.Symbol,
		Timestamp:         bundle.Timestamp,
		SpotPrice:         spot,
		GammaSurface:      surface,
		GammaFlips:        p.DetectGammaFlips(surface),
		GravitationalPull: p.BuildGravitationalPull(surface, spot),
		LiquidityMap:      p.BuildLiquidityMap(bundle.Fast.OrderBook, bundle.Fast.Trades),
		VolatilityState:   volatility,
		DealerPositioning: p.BuildDealerPositioning(surface, bundle.Chain),
		PriceHistory:      p.BuildPriceHistory(),
	}
}

// BuildPriceHistory reads the price buffer; momentum compares the fast
// EMA against the slow one, trend strength measures where the latest
// price sits inside the observed range.
func (p *Perception) BuildPriceHistory() model.PriceHistory {
	prices := p.priceBuffer.ToSlice()

	history := model.PriceHistory{
		Prices: prices,
		Trend:  model.TrendSideways,
	}

	if len(prices) == 0 {
		return history
	}

	emaSlow := utils.Ema(prices, 30)
	if emaSlow != 0.00 {
		history.Momentum = utils.Sanitize((utils.Ema(prices, 10) - emaSlow) / emaSlow)
	}

	if history.Momentum > 0.005 {
		history.Trend = model.TrendUp
	} else if history.Momentum < -0.005 {
		history.Trend = model.TrendDown
	}

	min := utils.RingMin(p.priceBuffer)
	max := utils.RingMax(p.priceBuffer)
	halfRange := (max - min) / 2

	if halfRange > 0.00 {
		midRange := (max + min) / 2
		latest := prices[len(prices)-1]
		deviation := latest - midRange
		if deviation < 0 {
			deviation = -deviation
		}

		history.TrendStrength = utils.Clamp(deviation/halfRange, 0.00, 1.00)
	}

	return history
}
