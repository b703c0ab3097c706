package strategy

import (
	"math"
	"sort"

	"gitlab.com/open-quant/go-fractal-engine/src/model"
	"gitlab.com/open-quant/go-fractal-engine/src/utils"
)

const PerformanceHistoryCapacity = 100
const recentPerformanceWindow = 20
const activeSetCeiling = 20.00

// StrategyPool owns the template registry, the currently active set and
// a bounded per-template performance history. Activation is a pure
// function of the tick's features, regime and coherence; the pool only
// accumulates performance across ticks.
type StrategyPool struct {
	templates     map[string]model.StrategyTemplate
	active        map[string]*model.ActiveStrategy
	performance   map[string]*utils.RingBuffer[float64]
	maxStrategies int
}

func NewStrategyPool(maxStrategies int) *StrategyPool {
	if maxStrategies < 1 {
		maxStrategies = 10
	}

	pool := &StrategyPool{
		templates:     make(map[string]model.StrategyTemplate),
		active:        make(map[string]*model.ActiveStrategy),
		performance:   make(map[string]*utils.RingBuffer[float64]),
		maxStrategies: maxStrategies,
	}

	for _, template := range DefaultTemplates() {
		pool.RegisterTemplate(template)
	}

	return pool
}

// RegisterTemplate adds or replaces a template. Intended for use before
// the first tick.
func (p *StrategyPool) RegisterTemplate(template model.StrategyTemplate) {
	p.templates[template.ID] = template
	if _, ok := p.performance[template.ID]; !ok {
		p.performance[template.ID] = utils.NewRingBuffer[float64](PerformanceHistoryCapacity)
	}
}

func (p *StrategyPool) RemoveTemplate(id string) {
	delete(p.templates, id)
	delete(p.active, id)
}

func (p *StrategyPool) Templates() []model.StrategyTemplate {
	ids := make([]string, 0, len(p.templates))
	for id := range p.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	templates := make([]model.StrategyTemplate, 0, len(ids))
	for _, id := range ids {
		templates = append(templates, p.templates[id])
	}

	return templates
}

// RecordOutcome feeds a realized pnl fraction back into the template's
// performance history.
func (p *StrategyPool) RecordOutcome(strategyID string, pnlPercent float64) {
	history, ok := p.performance[strategyID]
	if !ok {
		return
	}

	history.Append(pnlPercent)
}

func (p *StrategyPool) recentPerformance(strategyID string) float64 {
	history, ok := p.performance[strategyID]
	if !ok || history.IsEmpty() {
		return 0.00
	}

	return utils.Mean(history.Last(recentPerformanceWindow))
}

// Activate scores every template valid for the regime and returns the
// activated set, strongest first, capped by the coherence confidence.
func (p *StrategyPool) Activate(features *model.StructuralFeatures, regime model.Regime, coherence model.CoherenceScore) []model.ActiveStrategy {
	activated := make([]model.ActiveStrategy, 0)

	for _, template := range p.Templates() {
		if !template.SupportsRegime(regime.Type) {
			continue
		}

		score := 0.30*regime.Confidence +
			0.20*coherence.Total +
			activationBonus(template, features, coherence) +
			0.10*p.recentPerformance(template.ID)
		score = utils.Clamp(score, 0.00, 1.00)

		if score < template.ActivationThreshold {
			continue
		}

		parameters := adaptParameters(template, features)

		active := model.ActiveStrategy{
			Template:        template,
			ActivationScore: score,
			Parameters:      parameters,
			Context: model.StrategyContext{
				Features:  features,
				Regime:    regime,
				Coherence: coherence,
			},
			Performance: model.PerformanceRecord{
				RecentPnl: p.recentPerformance(template.ID),
			},
			Active: true,
		}
		active.CurrentSignal = generateSignal(template, parameters, features, regime, score)

		activated = append(activated, active)
	}

	sort.Slice(activated, func(i, j int) bool {
		if activated[i].ActivationScore == activated[j].ActivationScore {
			return activated[i].Template.ID < activated[j].Template.ID
		}

		return activated[i].ActivationScore > activated[j].ActivationScore
	})

	limit := int(math.Floor(activeSetCeiling * coherence.Confidence))
	if limit > p.maxStrategies {
		limit = p.maxStrategies
	}
	if len(activated) > limit {
		activated = activated[:limit]
	}

	p.active = make(map[string]*model.ActiveStrategy, len(activated))
	for i := range activated {
		p.active[activated[i].Template.ID] = &activated[i]
	}

	return activated
}

// adaptParameters copies the template parameters and scales the risk
// distances by the volatility regime multiplier.
func adaptParameters(template model.StrategyTemplate, features *model.StructuralFeatures) map[string]float64 {
	parameters := make(map[string]float64, len(template.Parameters))
	for name, value := range template.Parameters {
		parameters[name] = value
	}

	multiplier := volatilityMultiplier(features.VolatilityState.Regime)
	for _, name := range []string{"stopLoss", "trailingStop", "targetProfit"} {
		if value, ok := parameters[name]; ok {
			parameters[name] = value * multiplier
		}
	}

	return parameters
}

func volatilityMultiplier(regime string) float64 {
	switch regime {
	case model.VolRegimeLow:
		return 1.20
	case model.VolRegimeElevated:
		return 0.80
	case model.VolRegimeHigh:
		return 0.50
	case model.VolRegimeExtreme:
		return 0.25
	default:
		return 1.00
	}
}
