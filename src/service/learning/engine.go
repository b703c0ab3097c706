package learning

import (
	"sort"

	"gitlab.com/open-quant/go-fractal-engine/src/model"
	"gitlab.com/open-quant/go-fractal-engine/src/utils"
)

const OutcomeHistoryCapacity = 10000
const EvolutionCapacity = 50
const AdjustmentCapacity = 100
const recentWindow = 20
const equityCurveSeed = 100000.00
const importanceFloor = 0.01

// LearningEngine turns execution results into trade outcomes, rolls
// them up per strategy and emits parameter-adjustment suggestions.
type LearningEngine struct {
	outcomes          *utils.RingBuffer[model.TradeOutcome]
	progress          map[string]*model.LearningProgress
	evolution         map[string][]model.StrategyEvolution
	featureImportance map[string]float64
	adjustments       []model.ParameterAdjustment
	tradeSequence     int64
}

var importanceFeatures = []string{
	"momentum",
	"trendStrength",
	"impliedVol",
	"volOfVol",
	"gammaMagnitude",
	"imbalance",
	"hedgingPressure",
	"dealerConfidence",
}

func NewLearningEngine() *LearningEngine {
	engine := &LearningEngine{
		outcomes:          utils.NewRingBuffer[model.TradeOutcome](OutcomeHistoryCapacity),
		progress:          make(map[string]*model.LearningProgress),
		evolution:         make(map[string][]model.StrategyEvolution),
		featureImportance: make(map[string]float64, len(importanceFeatures)),
		adjustments:       make([]model.ParameterAdjustment, 0),
	}

	for _, name := range importanceFeatures {
		engine.featureImportance[name] = 1.00 / float64(len(importanceFeatures))
	}

	return engine
}

// SynthesizeOutcome builds a trade outcome from a fill. The same
// structural snapshot stands in for entry and exit features because no
// separate exit stream exists; a live implementation would track both.
func (e *LearningEngine) SynthesizeOutcome(result model.ExecutionResult, approved model.ApprovedSignal, features *model.StructuralFeatures, exitPrice float64) model.TradeOutcome {
	e.tradeSequence++

	order := result.Order
	signal := approved.Signal

	direction := 1.00
	if order.Side == model.DirectionShort {
		direction = -1.00
	}

	pnl := direction * (exitPrice - order.FillPrice) * order.FilledSize
	notional := order.Notional()

	pnlPercent := 0.00
	if notional > 0.00 {
		pnlPercent = pnl / notional
	}

	drawdown, runup := priceWindowExtremes(features.PriceHistory.Prices)

	return model.TradeOutcome{
		TradeID:          order.ID,
		StrategyID:       signal.StrategyID,
		EntryPrice:       order.FillPrice,
		ExitPrice:        exitPrice,
		Size:             order.FilledSize,
		Pnl:              utils.Sanitize(pnl),
		PnlPercent:       utils.Sanitize(pnlPercent),
		HoldingPeriod:    order.FilledAt.Value() - order.SubmittedAt.Value(),
		MaxDrawdown:      drawdown,
		MaxRunup:         runup,
		EntryFeatures:    features,
		ExitFeatures:     features,
		Correct:          pnl > 0.00,
		ExecutionQuality: e.executionQuality(result, approved),
		Timestamp:        features.Timestamp,
	}
}

// executionQuality is the weighted blend of fill completeness, realized
// slippage against the approved budget, and latency.
func (e *LearningEngine) executionQuality(result model.ExecutionResult, approved model.ApprovedSignal) float64 {
	order := result.Order

	fillRate := 0.00
	if order.Size > 0.00 {
		fillRate = order.FilledSize / order.Size
	}

	slippageScore := 1.00
	if approved.Constraints.MaxSlippage > 0.00 {
		slippageScore = utils.Clamp(1.00-result.Slippage/approved.Constraints.MaxSlippage, 0.00, 1.00)
	}

	speedScore := utils.Clamp(1.00-float64(result.Latency-10)/50.00, 0.00, 1.00)

	return utils.Clamp(0.30*fillRate+0.40*slippageScore+0.30*speedScore, 0.00, 1.00)
}

// AnalyzeOutcome records the outcome and refreshes rollups, feature
// importance and adjustment suggestions for the strategy.
func (e *LearningEngine) AnalyzeOutcome(outcome model.TradeOutcome, parameters map[string]float64) {
	e.outcomes.Append(outcome)
	e.updateProgress(outcome.StrategyID)
	e.updateFeatureImportance(outcome)
	e.suggestAdjustments(outcome.StrategyID, parameters, outcome.Timestamp)
}

func (e *LearningEngine) strategyOutcomes(strategyID string) []model.TradeOutcome {
	filtered := make([]model.TradeOutcome, 0)
	e.outcomes.Each(func(outcome model.TradeOutcome) {
		if outcome.StrategyID == strategyID {
			filtered = append(filtered, outcome)
		}
	})

	return filtered
}

func (e *LearningEngine) updateProgress(strategyID string) {
	outcomes := e.strategyOutcomes(strategyID)
	if len(outcomes) == 0 {
		return
	}

	wins := 0
	winSum := 0.00
	winCount := 0
	lossSum := 0.00
	lossCount := 0
	pnlPercents := make([]float64, 0, len(outcomes))
	equity := make([]float64, 0, len(outcomes)+1)
	equity = append(equity, equityCurveSeed)

	for _, outcome := range outcomes {
		pnlPercents = append(pnlPercents, outcome.PnlPercent)
		equity = append(equity, equity[len(equity)-1]+outcome.Pnl)

		if outcome.Pnl > 0.00 {
			wins++
			winSum += outcome.Pnl
			winCount++
		} else if outcome.Pnl < 0.00 {
			lossSum -= outcome.Pnl
			lossCount++
		}
	}

	avgWin := 0.00
	if winCount > 0 {
		avgWin = winSum / float64(winCount)
	}
	avgLoss := 0.00
	if lossCount > 0 {
		avgLoss = lossSum / float64(lossCount)
	}

	profitFactor := 0.00
	if avgLoss == 0.00 {
		if avgWin > 0.00 {
			profitFactor = 999.00
		}
	} else {
		profitFactor = avgWin / avgLoss
	}

	recent := pnlPercents
	if len(recent) > recentWindow {
		recent = recent[len(recent)-recentWindow:]
	}

	half := len(pnlPercents) / 2
	adaptation := 0.00
	if half > 0 {
		adaptation = utils.Mean(pnlPercents[half:]) - utils.Mean(pnlPercents[:half])
	}

	e.progress[strategyID] = &model.LearningProgress{
		StrategyID:        strategyID,
		TradesAnalyzed:    len(outcomes),
		WinRate:           float64(wins) / float64(len(outcomes)),
		ProfitFactor:      profitFactor,
		Sharpe:            utils.Sharpe(pnlPercents, 252.00),
		MaxDrawdown:       utils.MaxDrawdown(equity),
		RecentPerformance: utils.Mean(recent),
		AdaptationScore:   adaptation,
	}
}

// updateFeatureImportance nudges strongly expressed entry features by
// the outcome sign, floors at 0.01 and renormalizes to sum 1.
func (e *LearningEngine) updateFeatureImportance(outcome model.TradeOutcome) {
	if outcome.EntryFeatures == nil {
		return
	}

	features := outcome.EntryFeatures
	expressed := map[string]bool{
		"momentum":         abs(features.PriceHistory.Momentum) > 0.01,
		"trendStrength":    features.PriceHistory.TrendStrength > 0.50,
		"impliedVol":       features.VolatilityState.Implied > 25.00,
		"volOfVol":         features.VolatilityState.VolOfVol > 0.20,
		"gammaMagnitude":   features.GravitationalPull.Magnitude > 0.30,
		"imbalance":        abs(features.LiquidityMap.Imbalance) > 0.30,
		"hedgingPressure":  abs(features.DealerPositioning.HedgingPressure) > 5000.00,
		"dealerConfidence": features.DealerPositioning.Confidence > 0.50,
	}

	for _, name := range importanceFeatures {
		if !expressed[name] {
			continue
		}

		if outcome.IsPositive() {
			e.featureImportance[name] += 0.01
		} else {
			e.featureImportance[name] -= 0.005
		}
	}

	total := 0.00
	for _, name := range importanceFeatures {
		if e.featureImportance[name] < importanceFloor {
			e.featureImportance[name] = importanceFloor
		}
		total += e.featureImportance[name]
	}

	for _, name := range importanceFeatures {
		e.featureImportance[name] /= total
	}
}

func (e *LearningEngine) suggestAdjustments(strategyID string, parameters map[string]float64, timestamp model.TimestampMilli) {
	progress, ok := e.progress[strategyID]
	if !ok {
		return
	}

	if progress.WinRate < 0.40 && progress.TradesAnalyzed > 20 {
		e.addAdjustment(strategyID, "activationThreshold", 0.60, 0.70, "win rate below 40%, tightening entries", timestamp, parameters)
	}
	if progress.ProfitFactor < 1.00 && progress.TradesAnalyzed > 30 {
		e.addAdjustment(strategyID, "stopLossMultiple", 1.00, 0.80, "profit factor below 1, tightening stops", timestamp, parameters)
	}
	if progress.MaxDrawdown > 0.15 {
		e.addAdjustment(strategyID, "positionSizeMultiple", 1.00, 0.70, "drawdown above 15%, reducing size", timestamp, parameters)
	}
	if progress.RecentPerformance < -0.02 {
		e.addAdjustment(strategyID, "confidenceThreshold", 0.50, 0.60, "recent performance negative, increasing selectivity", timestamp, parameters)
	}
}

func (e *LearningEngine) addAdjustment(strategyID string, parameter string, oldValue float64, newValue float64, reason string, timestamp model.TimestampMilli, parameters map[string]float64) {
	for _, existing := range e.adjustments {
		if existing.StrategyID == strategyID && existing.Parameter == parameter {
			return
		}
	}

	e.adjustments = append(e.adjustments, model.ParameterAdjustment{
		StrategyID: strategyID,
		Parameter:  parameter,
		OldValue:   oldValue,
		NewValue:   newValue,
		Reason:     reason,
		Timestamp:  timestamp,
	})
	if len(e.adjustments) > AdjustmentCapacity {
		e.adjustments = e.adjustments[len(e.adjustments)-AdjustmentCapacity:]
	}

	adjusted := make(map[string]float64, len(parameters)+1)
	for name, value := range parameters {
		adjusted[name] = value
	}
	adjusted[parameter] = newValue

	versions := e.evolution[strategyID]
	versions = append(versions, model.StrategyEvolution{
		StrategyID: strategyID,
		Version:    len(versions) + 1,
		Parameters: adjusted,
		Timestamp:  timestamp,
	})
	if len(versions) > EvolutionCapacity {
		versions = versions[len(versions)-EvolutionCapacity:]
	}
	e.evolution[strategyID] = versions
}

func (e *LearningEngine) ProgressList() []model.LearningProgress {
	ids := make([]string, 0, len(e.progress))
	for id := range e.progress {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	list := make([]model.LearningProgress, 0, len(ids))
	for _, id := range ids {
		list = append(list, *e.progress[id])
	}

	return list
}

func (e *LearningEngine) EvolutionList() []model.StrategyEvolution {
	ids := make([]string, 0, len(e.evolution))
	for id := range e.evolution {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	list := make([]model.StrategyEvolution, 0)
	for _, id := range ids {
		list = append(list, e.evolution[id]...)
	}

	return list
}

func (e *LearningEngine) Adjustments() []model.ParameterAdjustment {
	return e.adjustments
}

func (e *LearningEngine) FeatureImportance() map[string]float64 {
	snapshot := make(map[string]float64, len(e.featureImportance))
	for name, value := range e.featureImportance {
		snapshot[name] = value
	}

	return snapshot
}

func (e *LearningEngine) RecentOutcomes(limit int) []model.TradeOutcome {
	recent := e.outcomes.Last(limit)

	// oldest first for display
	for i, j := 0, len(recent)-1; i < j; i, j = i+1, j-1 {
		recent[i], recent[j] = recent[j], recent[i]
	}

	return recent
}

// priceWindowExtremes scans the given prices for the worst drawdown and
// best runup. SynthesizeOutcome passes the whole buffered price history of
// the tick's snapshot; no window bounded by the trade's hold is tracked.
func priceWindowExtremes(prices []float64) (float64, float64) {
	if len(prices) == 0 {
		return 0.00, 0.00
	}

	peak := prices[0]
	trough := prices[0]
	drawdown := 0.00
	runup := 0.00

	for _, price := range prices {
		if price > peak {
			peak = price
		}
		if price < trough {
			trough = price
		}

		if peak > 0.00 {
			d := (peak - price) / peak
			if d > drawdown {
				drawdown = d
			}
		}
		if trough > 0.00 {
			r := (price - trough) / trough
			if r > runup {
				runup = r
			}
		}
	}

	return drawdown, runup
}

func abs(value float64) float64 {
	if value < 0 {
		return -value
	}

	return value
}
