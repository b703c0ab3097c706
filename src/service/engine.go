package service

import (
	"log"
	"time"

	"gitlab.com/open-quant/go-fractal-engine/src/model"
	"gitlab.com/open-quant/go-fractal-engine/src/service/execution"
	"gitlab.com/open-quant/go-fractal-engine/src/service/learning"
	"gitlab.com/open-quant/go-fractal-engine/src/service/memory"
	"gitlab.com/open-quant/go-fractal-engine/src/service/meta"
	"gitlab.com/open-quant/go-fractal-engine/src/service/perception"
	"gitlab.com/open-quant/go-fractal-engine/src/service/risk"
	"gitlab.com/open-quant/go-fractal-engine/src/service/strategy"
)

const marginFactor = 0.50
const recentOutcomeLimit = 50

// Engine sequences the eight phases per tick and is the only owner of
// the portfolio and the last-state snapshot. A tick is indivisible and
// strictly sequential; subsystems receive prior phases' outputs by
// reference and portfolio copies only.
type Engine struct {
	Perception     *perception.Perception
	MetaController *meta.MetaController
	StrategyPool   *strategy.StrategyPool
	RiskGovernor   *risk.RiskGovernor
	Executor       *execution.ExecutionSimulator
	LearningEngine *learning.LearningEngine
	FractalMemory  *memory.FractalMemory
	Config         model.EngineConfig
	portfolio      model.Portfolio
	lastState      *model.SystemState
	tickCount      int64
}

func NewEngine(config model.EngineConfig, seed int64, latencyEnabled bool) *Engine {
	limits := model.RiskLimits{
		MaxPositionSize:  config.MaxPositionSize,
		MaxPortfolioRisk: config.MaxPortfolioRisk,
		MaxCorrelation:   config.MaxCorrelation,
		MaxDrawdown:      config.MaxDrawdown,
		MaxDailyLoss:     config.MaxDailyLoss,
		MaxConcentration: config.MaxConcentration,
	}

	return &Engine{
		Perception:     perception.NewPerception(config.BufferCapacity),
		MetaController: meta.NewMetaController(),
		StrategyPool:   strategy.NewStrategyPool(config.MaxStrategies),
		RiskGovernor:   risk.NewRiskGovernor(limits),
		Executor:       execution.NewExecutionSimulator(seed, latencyEnabled),
		LearningEngine: learning.NewLearningEngine(),
		FractalMemory:  memory.NewFractalMemory(config.MemoryCapacity),
		Config:         config,
		portfolio: model.Portfolio{
			Cash:            config.StartingCash,
			MarginAvailable: config.StartingCash,
			TotalValue:      config.StartingCash,
		},
	}
}

func (e *Engine) Portfolio() model.Portfolio {
	return e.portfolio.Clone()
}

func (e *Engine) LastState() *model.SystemState {
	return e.lastState
}

func (e *Engine) TickCount() int64 {
	return e.tickCount
}

// Tick runs the full pipeline on one bundle. It never aborts: in the
// worst case the returned state carries empty signal, approval and
// result sets.
func (e *Engine) Tick(bundle model.MarketBundle) model.SystemState {
	started := time.Now()
	e.tickCount++

	features := e.Perception.Process(bundle)
	regime := e.MetaController.Classify(&features)

	// two-pass activation: coherence needs activations, activation
	// thresholds need the real coherence
	preliminary := e.StrategyPool.Activate(&features, regime, model.NeutralCoherence())
	coherence := e.MetaController.Coherence(&features, regime, preliminary)
	active := e.StrategyPool.Activate(&features, regime, coherence)

	signals := make([]model.Signal, 0, len(active))
	for i := range active {
		if active[i].CurrentSignal != nil {
			signals = append(signals, *active[i].CurrentSignal)
		}
	}

	approved := e.RiskGovernor.Filter(signals, e.portfolio.Clone(), &features)
	results := e.Executor.Simulate(approved, &features)

	e.applyFills(results, features.SpotPrice)

	if e.Config.LearningEnabled {
		e.learnFromResults(results, approved, active, &features, regime)
	}

	state := model.SystemState{
		Features:         features,
		Regime:           regime,
		Coherence:        coherence,
		ActiveStrategies: active,
		Signals:          signals,
		ApprovedSignals:  approved,
		ExecutionResults: results,
		Portfolio:        e.portfolio.Clone(),
		RecentOutcomes:   e.LearningEngine.RecentOutcomes(recentOutcomeLimit),
		LearningProgress: e.LearningEngine.ProgressList(),
		Evolution:        e.LearningEngine.EvolutionList(),
		Timestamp:        bundle.Timestamp,
		Health: model.HealthMetrics{
			DataLatency:    time.Now().UnixMilli() - bundle.Timestamp.Value(),
			ProcessingTime: time.Since(started).Milliseconds(),
			MemoryUsage:    e.FractalMemory.Stats().TotalPatterns,
			ErrorRate:      e.errorRate(),
		},
	}

	e.lastState = &state

	return state
}

// applyFills is the only place the portfolio mutates.
func (e *Engine) applyFills(results []model.ExecutionResult, spot float64) {
	before := e.portfolio.TotalValue

	for i := range e.portfolio.Positions {
		if spot > 0.00 {
			e.portfolio.Positions[i].CurrentPrice = spot
		}
	}

	for _, result := range results {
		if !result.Success {
			continue
		}

		order := result.Order
		notional := order.Notional()

		e.portfolio.Cash -= notional + order.Fees
		e.portfolio.Positions = append(e.portfolio.Positions, model.Position{
			Symbol:       e.symbol(),
			Side:         order.Side,
			Size:         order.FilledSize,
			EntryPrice:   order.FillPrice,
			CurrentPrice: spot,
			OpenedAt:     order.FilledAt,
		})
		e.portfolio.MarginUsed += notional * marginFactor
	}

	e.portfolio.MarginAvailable = e.portfolio.Cash - e.portfolio.MarginUsed
	if e.portfolio.MarginAvailable < 0.00 {
		e.portfolio.MarginAvailable = 0.00
	}

	e.portfolio.Recalculate()

	delta := e.portfolio.TotalValue - before
	e.portfolio.DailyPnl += delta
	e.RiskGovernor.RecordDailyPnl(delta)

	peak := e.RiskGovernor.PeakEquity()
	if peak > 0.00 && peak > e.portfolio.TotalValue {
		e.portfolio.CurrentDrawdown = (peak - e.portfolio.TotalValue) / peak
	} else {
		e.portfolio.CurrentDrawdown = 0.00
	}
	if e.portfolio.CurrentDrawdown > e.portfolio.MaxDrawdown {
		e.portfolio.MaxDrawdown = e.portfolio.CurrentDrawdown
	}
}

func (e *Engine) learnFromResults(results []model.ExecutionResult, approved []model.ApprovedSignal, active []model.ActiveStrategy, features *model.StructuralFeatures, regime model.Regime) {
	approvedByID := make(map[string]model.ApprovedSignal, len(approved))
	for _, signal := range approved {
		approvedByID[signal.Signal.ID] = signal
	}

	parametersByStrategy := make(map[string]map[string]float64, len(active))
	for i := range active {
		parametersByStrategy[active[i].Template.ID] = active[i].Parameters
	}

	for _, result := range results {
		if !result.Success {
			continue
		}

		signal, ok := approvedByID[result.Order.SignalID]
		if !ok {
			log.Printf("[%s] No approved signal for order %s", e.symbol(), result.Order.ID)
			continue
		}

		outcome := e.LearningEngine.SynthesizeOutcome(result, signal, features, features.SpotPrice)
		e.LearningEngine.AnalyzeOutcome(outcome, parametersByStrategy[signal.Signal.StrategyID])
		e.StrategyPool.RecordOutcome(signal.Signal.StrategyID, outcome.PnlPercent)
		e.FractalMemory.Store(features, regime, outcome)
	}
}

func (e *Engine) errorRate() float64 {
	total := e.Executor.TotalOrders()
	if total == 0 {
		return 0.00
	}

	return float64(e.Executor.RejectedOrders()) / float64(total)
}

func (e *Engine) symbol() string {
	if e.lastState != nil {
		return e.lastState.Features.Symbol
	}

	return ""
}
