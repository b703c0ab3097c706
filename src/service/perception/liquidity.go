package perception

import (
	"gitlab.com/open-quant/go-fractal-engine/src/model"
	"gitlab.com/open-quant/go-fractal-engine/src/utils"
)

const FlowRateProximity = 0.001
const DepthProximity = 0.01
const AbsorptionTradeWindow = 100

// BuildLiquidityMap annotates every book level with the traded flow
// close to it and summarizes imbalance, near-mid depth and absorption.
func (p *Perception) BuildLiquidityMap(book model.OrderBook, trades []model.Trade) model.LiquidityMap {
	liquidity := model.LiquidityMap{
		Levels: make([]model.LiquidityLevel, 0, len(book.Bids)+len(book.Asks)),
	}

	if book.IsEmpty() {
		return liquidity
	}

	totalVolume := book.TotalVolume()
	mid := book.Mid()

	bidVolume := 0.00
	for _, level := range book.Bids {
		bidVolume += level.Size
		liquidity.Levels = append(liquidity.Levels, p.buildLevel(level, model.SideBuy, trades, totalVolume))
	}

	askVolume := 0.00
	for _, level := range book.Asks {
		askVolume += level.Size
		liquidity.Levels = append(liquidity.Levels, p.buildLevel(level, model.SideSell, trades, totalVolume))
	}

	if bidVolume+askVolume > 0.00 {
		liquidity.Imbalance = utils.Clamp((bidVolume-askVolume)/(bidVolume+askVolume), -1.00, 1.00)
	}

	if mid > 0.00 {
		for _, level := range liquidity.Levels {
			distance := level.Price - mid
			if distance < 0 {
				distance = -distance
			}

			if distance/mid <= DepthProximity {
				liquidity.Depth += level.Size
			}
		}
	}

	if totalVolume > 0.00 {
		recent := trades
		if len(recent) > AbsorptionTradeWindow {
			recent = recent[len(recent)-AbsorptionTradeWindow:]
		}

		traded := 0.00
		for _, trade := range recent {
			traded += trade.Quantity
		}

		liquidity.AbsorptionRate = traded / totalVolume
	}

	return liquidity
}

func (p *Perception) buildLevel(level model.BookLevel, side string, trades []model.Trade, totalVolume float64) model.LiquidityLevel {
	flowRate := 0.00
	for _, trade := range trades {
		if level.Price == 0.00 {
			break
		}

		distance := trade.Price - level.Price
		if distance < 0 {
			distance = -distance
		}

		if distance/level.Price <= FlowRateProximity {
			flowRate += trade.Quantity
		}
	}

	persistence := 0.00
	if totalVolume > 0.00 {
		persistence = utils.Clamp(level.Size/totalVolume, 0.00, 1.00)
	}

	return model.LiquidityLevel{
		Price:       level.Price,
		Size:        level.Size,
		Side:        side,
		FlowRate:    flowRate,
		Persistence: persistence,
	}
}
