package perception

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.com/open-quant/go-fractal-engine/src/model"
)

func chainContract(strike float64, expiry int64, optionType string, gamma float64, openInterest float64) model.OptionContract {
	return model.OptionContract{
		Strike:       strike,
		Expiry:       model.TimestampMilli(expiry),
		Type:         optionType,
		Gamma:        gamma,
		OpenInterest: openInterest,
		ImpliedVol:   0.20,
		Delta:        0.50,
		Volume:       100.00,
	}
}

func flatBundle(symbol string, price float64) model.MarketBundle {
	return model.MarketBundle{
		Symbol:    symbol,
		Timestamp: model.TimestampMilli(1700000000000),
		Fast: model.FastStream{
			Bars: []model.KLine{
				{Symbol: symbol, Open: price, High: price, Low: price, Close: price, Volume: 1000.00},
			},
		},
	}
}

func TestGammaSurfaceDimensions(t *testing.T) {
	assertion := assert.New(t)

	perception := NewPerception(100)
	chain := []model.OptionContract{
		chainContract(90.00, 1000, model.OptionTypeCall, 0.01, 100.00),
		chainContract(100.00, 1000, model.OptionTypeCall, 0.02, 200.00),
		chainContract(110.00, 1000, model.OptionTypePut, -0.01, 50.00),
		chainContract(100.00, 2000, model.OptionTypePut, 0.03, 100.00),
	}

	surface := perception.BuildGammaSurface(chain)

	assertion.Equal([]float64{90.00, 100.00, 110.00}, surface.Strikes)
	assertion.Len(surface.Expiries, 2)
	assertion.Len(surface.Values, 2)
	for _, row := range surface.Values {
		assertion.Len(row, 3)
	}

	// net equals the cell sum, extremes bound every cell
	net := 0.00
	for _, row := range surface.Values {
		for _, value := range row {
			net += value
			assertion.LessOrEqual(surface.MinGamma, value)
			assertion.GreaterOrEqual(surface.MaxGamma, value)
		}
	}
	assertion.InDelta(net, surface.NetGamma, 1e-9)

	// gamma * openInterest * 100
	assertion.InDelta(100.00, surface.Values[0][0], 1e-9)
	assertion.InDelta(400.00, surface.Values[0][1], 1e-9)
	assertion.InDelta(-50.00, surface.Values[0][2], 1e-9)
	assertion.InDelta(300.00, surface.Values[1][1], 1e-9)
}

func TestGammaSurfaceEmptyChain(t *testing.T) {
	assertion := assert.New(t)

	perception := NewPerception(100)
	surface := perception.BuildGammaSurface([]model.OptionContract{})

	assertion.True(surface.IsEmpty())
	assertion.Equal(0.00, surface.NetGamma)
}

func TestDetectGammaFlips(t *testing.T) {
	assertion := assert.New(t)

	perception := NewPerception(100)
	chain := []model.OptionContract{
		chainContract(90.00, 1000, model.OptionTypeCall, 0.02, 100.00),
		chainContract(100.00, 1000, model.OptionTypePut, -0.01, 100.00),
		chainContract(110.00, 1000, model.OptionTypeCall, 0.03, 100.00),
	}

	surface := perception.BuildGammaSurface(chain)
	flips := perception.DetectGammaFlips(surface)

	assertion.Len(flips, 2)

	// strongest first
	assertion.GreaterOrEqual(flips[0].Strength, flips[1].Strength)

	for _, flip := range flips {
		if flip.Type == model.FlipPositiveToNegative {
			assertion.Equal(95.00, flip.Price)
		} else {
			assertion.Equal(105.00, flip.Price)
		}

		// midpoint lies strictly between adjacent strikes
		assertion.Greater(flip.Price, 90.00)
		assertion.Less(flip.Price, 110.00)
	}
}

func TestGravitationalPullBounds(t *testing.T) {
	assertion := assert.New(t)

	perception := NewPerception(100)
	chain := make([]model.OptionContract, 0)
	for i := 0; i < 15; i++ {
		chain = append(chain, chainContract(80.00+float64(i)*5.00, 1000, model.OptionTypeCall, 0.05, 500.00))
	}

	surface := perception.BuildGammaSurface(chain)
	pull := perception.BuildGravitationalPull(surface, 100.00)

	assertion.LessOrEqual(len(pull.Attractors), 10)
	assertion.GreaterOrEqual(pull.Magnitude, 0.00)
	assertion.LessOrEqual(pull.Magnitude, 1.00)
	assertion.Contains([]float64{-1.00, 0.00, 1.00}, pull.Direction)
}

func TestGravitationalPullSingleAttractor(t *testing.T) {
	assertion := assert.New(t)

	perception := NewPerception(100)
	chain := []model.OptionContract{
		chainContract(100.50, 1000, model.OptionTypeCall, 100.00, 200.00),
	}

	surface := perception.BuildGammaSurface(chain)
	pull := perception.BuildGravitationalPull(surface, 100.00)

	assertion.Len(pull.Attractors, 1)
	assertion.Equal(100.50, pull.Attractors[0].Price)
	assertion.Equal(1.00, pull.Direction)
	assertion.InDelta(1.00, pull.Magnitude, 1e-9)
}

func TestLiquidityMapImbalance(t *testing.T) {
	assertion := assert.New(t)

	perception := NewPerception(100)
	book := model.OrderBook{
		Bids: []model.BookLevel{{Price: 99.90, Size: 300.00}, {Price: 99.50, Size: 100.00}},
		Asks: []model.BookLevel{{Price: 100.10, Size: 100.00}},
	}

	liquidity := perception.BuildLiquidityMap(book, []model.Trade{})

	assertion.InDelta(0.60, liquidity.Imbalance, 1e-9)
	assertion.GreaterOrEqual(liquidity.Imbalance, -1.00)
	assertion.LessOrEqual(liquidity.Imbalance, 1.00)
	assertion.GreaterOrEqual(liquidity.Depth, 0.00)
	assertion.Len(liquidity.Levels, 3)

	// all three levels sit within 1% of mid
	assertion.InDelta(500.00, liquidity.Depth, 1e-9)
}

func TestLiquidityMapEmptyBook(t *testing.T) {
	assertion := assert.New(t)

	perception := NewPerception(100)
	liquidity := perception.BuildLiquidityMap(model.OrderBook{}, []model.Trade{})

	assertion.Equal(0.00, liquidity.Imbalance)
	assertion.Equal(0.00, liquidity.Depth)
	assertion.Empty(liquidity.Levels)
}

func TestLiquidityFlowRateAndAbsorption(t *testing.T) {
	assertion := assert.New(t)

	perception := NewPerception(100)
	book := model.OrderBook{
		Bids: []model.BookLevel{{Price: 100.00, Size: 500.00}},
		Asks: []model.BookLevel{{Price: 100.20, Size: 500.00}},
	}
	trades := []model.Trade{
		{Price: 100.01, Quantity: 50.00, Side: model.SideBuy},
		{Price: 105.00, Quantity: 30.00, Side: model.SideSell},
	}

	liquidity := perception.BuildLiquidityMap(book, trades)

	assertion.InDelta(50.00, liquidity.Levels[0].FlowRate, 1e-9)
	assertion.InDelta(80.00/1000.00, liquidity.AbsorptionRate, 1e-9)
}

func TestVolatilityRegimeThresholds(t *testing.T) {
	assertion := assert.New(t)

	assertion.Equal(model.VolRegimeLow, volRegimeLabel(10.00))
	assertion.Equal(model.VolRegimeNormal, volRegimeLabel(20.00))
	assertion.Equal(model.VolRegimeElevated, volRegimeLabel(30.00))
	assertion.Equal(model.VolRegimeHigh, volRegimeLabel(40.00))
	assertion.Equal(model.VolRegimeExtreme, volRegimeLabel(60.00))
}

func TestVolatilityStateFromChain(t *testing.T) {
	assertion := assert.New(t)

	perception := NewPerception(100)
	bundle := flatBundle("SPX", 100.00)
	bundle.Chain = []model.OptionContract{
		chainContract(100.00, 1000, model.OptionTypeCall, 0.01, 100.00),
	}

	state := perception.BuildVolatilityState(bundle)

	assertion.InDelta(20.00, state.Implied, 1e-9)
	assertion.Equal(model.VolRegimeNormal, state.Regime)
	assertion.Equal(0.00, state.Historical)
	assertion.InDelta(20.00, state.Spread, 1e-9)
}

func TestDealerPositioning(t *testing.T) {
	assertion := assert.New(t)

	perception := NewPerception(100)
	chain := []model.OptionContract{
		{Strike: 100.00, Expiry: 1000, Type: model.OptionTypePut, Gamma: 0.01, OpenInterest: 1000.00, Delta: -0.40, Volume: 500.00, ImpliedVol: 0.20},
		{Strike: 100.00, Expiry: 1000, Type: model.OptionTypeCall, Gamma: 0.01, OpenInterest: 1000.00, Delta: 0.60, Volume: 100.00, ImpliedVol: 0.20},
	}

	surface := perception.BuildGammaSurface(chain)
	positioning := perception.BuildDealerPositioning(surface, chain)

	assertion.Equal(surface.NetGamma, positioning.NetGammaExposure)
	assertion.InDelta(-surface.NetGamma*0.01, positioning.HedgingPressure, 1e-9)
	// put/call volume ratio 5 means retail is selling
	assertion.Equal(model.FlowSelling, positioning.FlowDirection)
	assertion.InDelta(0.02, positioning.Confidence, 1e-9)

	// dealers short what retail is long
	assertion.InDelta(-(-0.40*1000.00*100.00+0.60*1000.00*100.00), positioning.NetDeltaExposure, 1e-9)
}

func TestDealerPositioningEmptyChain(t *testing.T) {
	assertion := assert.New(t)

	perception := NewPerception(100)
	positioning := perception.BuildDealerPositioning(model.GammaSurface{}, []model.OptionContract{})

	assertion.Equal(model.FlowNeutral, positioning.FlowDirection)
	assertion.Equal(0.00, positioning.Confidence)
}

func TestPriceHistoryTrend(t *testing.T) {
	assertion := assert.New(t)

	perception := NewPerception(100)
	price := 100.00
	for i := 0; i < 20; i++ {
		perception.Process(flatBundle("SPX", price))
		price += 0.50
	}

	history := perception.BuildPriceHistory()

	assertion.Equal(model.TrendUp, history.Trend)
	assertion.Greater(history.Momentum, 0.005)
	assertion.Greater(history.TrendStrength, 0.60)
}

func TestPriceHistoryFlat(t *testing.T) {
	assertion := assert.New(t)

	perception := NewPerception(100)
	for i := 0; i < 10; i++ {
		perception.Process(flatBundle("SPX", 100.00))
	}

	history := perception.BuildPriceHistory()

	assertion.Equal(model.TrendSideways, history.Trend)
	assertion.Equal(0.00, history.Momentum)
	assertion.Equal(0.00, history.TrendStrength)
}

func TestProcessEmptyBundleNeverFails(t *testing.T) {
	assertion := assert.New(t)

	perception := NewPerception(100)
	features := perception.Process(model.MarketBundle{Symbol: "SPX"})

	assertion.Equal("SPX", features.Symbol)
	assertion.True(features.GammaSurface.IsEmpty())
	assertion.Empty(features.GammaFlips)
	assertion.Equal(0.00, features.GravitationalPull.Magnitude)
	assertion.Equal(model.TrendSideways, features.PriceHistory.Trend)
	assertion.Equal(model.VolRegimeLow, features.VolatilityState.Regime)
	assertion.Equal(model.FlowNeutral, features.DealerPositioning.FlowDirection)
}
