package risk

import (
	"log"
	"sort"
	"strings"

	"gitlab.com/open-quant/go-fractal-engine/src/model"
	"gitlab.com/open-quant/go-fractal-engine/src/utils"
)

const kellyCeiling = 0.25
const marginFactor = 0.50
const minMarginFraction = 0.10
const gammaExposureLimit = 0.01

// RiskGovernor gates signals against the configured limits. The kill
// switch is sticky: once tripped it suppresses every approval until it
// is explicitly cleared.
type RiskGovernor struct {
	limits           model.RiskLimits
	killSwitchActive bool
	killSwitchReason string
	peakEquity       float64
	dailyPnl         float64
}

func NewRiskGovernor(limits model.RiskLimits) *RiskGovernor {
	return &RiskGovernor{
		limits: limits,
	}
}

func (g *RiskGovernor) Limits() model.RiskLimits {
	return g.limits
}

func (g *RiskGovernor) IsKillSwitchActive() bool {
	return g.killSwitchActive
}

func (g *RiskGovernor) KillSwitchReason() string {
	return g.killSwitchReason
}

func (g *RiskGovernor) ActivateKillSwitch(reason string) {
	if !g.killSwitchActive {
		log.Printf("[risk] kill switch activated: %s", reason)
	}

	g.killSwitchActive = true
	g.killSwitchReason = reason
}

func (g *RiskGovernor) DeactivateKillSwitch() {
	if g.killSwitchActive {
		log.Printf("[risk] kill switch deactivated, was: %s", g.killSwitchReason)
	}

	g.killSwitchActive = false
	g.killSwitchReason = ""
}

// ResetDailyRisk zeroes the daily loss tracker. It clears the kill
// switch only when the daily loss limit was what tripped it.
func (g *RiskGovernor) ResetDailyRisk() {
	g.dailyPnl = 0.00

	if g.killSwitchActive && strings.Contains(g.killSwitchReason, "daily loss") {
		g.DeactivateKillSwitch()
	}
}

func (g *RiskGovernor) RecordDailyPnl(delta float64) {
	g.dailyPnl += delta
}

func (g *RiskGovernor) PeakEquity() float64 {
	return g.peakEquity
}

// UpdateRiskState tracks peak equity and arms the kill switch on a
// drawdown or daily-loss breach.
func (g *RiskGovernor) UpdateRiskState(portfolio model.Portfolio) {
	if portfolio.TotalValue > g.peakEquity {
		g.peakEquity = portfolio.TotalValue
	}

	if g.peakEquity > 0.00 {
		drawdown := (g.peakEquity - portfolio.TotalValue) / g.peakEquity
		if drawdown > g.limits.MaxDrawdown {
			g.ActivateKillSwitch("max drawdown exceeded")
		}
	}

	dailyLoss := g.dailyPnl
	if dailyLoss < 0 {
		dailyLoss = -dailyLoss
	}
	if dailyLoss > g.limits.MaxDailyLoss*portfolio.TotalValue {
		g.ActivateKillSwitch("daily loss limit exceeded")
	}
}

// Filter runs the approval pipeline and returns the accepted subset,
// safest first.
func (g *RiskGovernor) Filter(signals []model.Signal, portfolio model.Portfolio, features *model.StructuralFeatures) []model.ApprovedSignal {
	approved := make([]model.ApprovedSignal, 0)

	if g.killSwitchActive {
		return approved
	}

	g.UpdateRiskState(portfolio)
	if g.killSwitchActive {
		return approved
	}

	if portfolio.MarginAvailable < minMarginFraction*portfolio.TotalValue {
		return approved
	}

	if portfolio.TotalValue > 0.00 {
		for i := range portfolio.Positions {
			if portfolio.Positions[i].Notional()/portfolio.TotalValue > g.limits.MaxConcentration {
				return approved
			}
		}
	}

	for _, signal := range signals {
		size := g.positionSize(signal, portfolio, features)
		if size <= 0.00 {
			continue
		}

		metrics := g.riskMetrics(signal, portfolio)
		if metrics.Correlation > g.limits.MaxCorrelation {
			continue
		}

		gammaExposure := metrics.GammaExposure
		if gammaExposure < 0 {
			gammaExposure = -gammaExposure
		}
		if gammaExposure > gammaExposureLimit*portfolio.TotalValue {
			continue
		}

		approved = append(approved, model.ApprovedSignal{
			Signal:       signal,
			ApprovedSize: size,
			Risk:         metrics,
			Constraints:  g.constraints(signal, features),
			RiskScore:    g.riskScore(metrics, features, portfolio),
		})
	}

	sort.Slice(approved, func(i, j int) bool {
		if approved[i].RiskScore == approved[j].RiskScore {
			return approved[i].Signal.ID < approved[j].Signal.ID
		}

		return approved[i].RiskScore < approved[j].RiskScore
	})

	accepted := make([]model.ApprovedSignal, 0, len(approved))
	totalVar := 0.00
	totalMargin := 0.00
	for _, candidate := range approved {
		if totalVar+candidate.Risk.VarContribution > g.limits.MaxPortfolioRisk {
			continue
		}
		if totalMargin+candidate.ApprovedSize*marginFactor > portfolio.MarginAvailable {
			continue
		}

		totalVar += candidate.Risk.VarContribution
		totalMargin += candidate.ApprovedSize * marginFactor
		accepted = append(accepted, candidate)
	}

	return accepted
}

// positionSize is the smallest of half-Kelly, the per-position cap and
// what margin can carry. Kelly is clamped to [0, 0.25] before halving.
func (g *RiskGovernor) positionSize(signal model.Signal, portfolio model.Portfolio, features *model.StructuralFeatures) float64 {
	riskPerUnit := signal.RiskPerUnit()
	rewardPerUnit := 0.00
	if len(signal.Targets) > 0 && signal.EntryPrice > 0.00 {
		rewardPerUnit = signal.Targets[0] - signal.EntryPrice
		if rewardPerUnit < 0 {
			rewardPerUnit = -rewardPerUnit
		}
		rewardPerUnit = rewardPerUnit / signal.EntryPrice
	}

	kelly := utils.Clamp(utils.Kelly(signal.Confidence, rewardPerUnit, riskPerUnit), 0.00, kellyCeiling)

	kellySize := portfolio.TotalValue * kelly / 2.00 * volatilityMultiplier(features.VolatilityState.Regime)
	capSize := g.limits.MaxPositionSize * portfolio.TotalValue
	marginSize := portfolio.MarginAvailable / marginFactor

	size := kellySize
	if capSize < size {
		size = capSize
	}
	if marginSize < size {
		size = marginSize
	}

	return size
}

func (g *RiskGovernor) riskMetrics(signal model.Signal, portfolio model.Portfolio) model.RiskMetrics {
	sameDirection := 0.00
	for i := range portfolio.Positions {
		if portfolio.Positions[i].Side == signal.Direction {
			sameDirection += portfolio.Positions[i].Notional()
		}
	}

	correlation := 0.00
	if portfolio.TotalValue > 0.00 {
		correlation = sameDirection / portfolio.TotalValue
	}

	riskPerUnit := signal.RiskPerUnit()

	return model.RiskMetrics{
		Correlation:     correlation,
		GammaExposure:   signal.Context.GammaLevel * 0.01,
		VarContribution: riskPerUnit * signal.Confidence,
		MaxLoss:         riskPerUnit,
		MarginRequired:  signal.EntryPrice * marginFactor,
	}
}

func (g *RiskGovernor) constraints(signal model.Signal, features *model.StructuralFeatures) model.ExecutionConstraints {
	volRegime := features.VolatilityState.Regime

	urgency := model.UrgencyLow
	if signal.Strength > 0.70 || volRegime == model.VolRegimeHigh || volRegime == model.VolRegimeExtreme {
		urgency = model.UrgencyHigh
	} else if signal.Strength > 0.40 {
		urgency = model.UrgencyMedium
	}

	orderType := model.OrderTypeLimit
	timeInForce := model.TimeInForceDay
	if urgency == model.UrgencyHigh {
		orderType = model.OrderTypeMarket
		timeInForce = model.TimeInForceIoc
	}

	icebergRatio := 0.50
	if signal.Strength > 0.70 {
		icebergRatio = 0.20
	}

	return model.ExecutionConstraints{
		MaxSlippage:  0.001 * (1.00 + features.VolatilityState.Implied/100.00 + 1.00/(features.LiquidityMap.Depth+1.00)),
		Urgency:      urgency,
		OrderType:    orderType,
		IcebergRatio: icebergRatio,
		TimeInForce:  timeInForce,
	}
}

func (g *RiskGovernor) riskScore(metrics model.RiskMetrics, features *model.StructuralFeatures, portfolio model.Portfolio) float64 {
	gammaExposure := metrics.GammaExposure
	if gammaExposure < 0 {
		gammaExposure = -gammaExposure
	}

	gammaFraction := 0.00
	if portfolio.TotalValue > 0.00 {
		gammaFraction = utils.Clamp(gammaExposure/(gammaExposureLimit*portfolio.TotalValue), 0.00, 1.00)
	}

	volPenalty := 0.00
	switch features.VolatilityState.Regime {
	case model.VolRegimeNormal:
		volPenalty = 0.25
	case model.VolRegimeElevated:
		volPenalty = 0.50
	case model.VolRegimeHigh:
		volPenalty = 0.75
	case model.VolRegimeExtreme:
		volPenalty = 1.00
	}

	score := 0.30*utils.Clamp(metrics.Correlation/g.limits.MaxCorrelation, 0.00, 1.00) +
		0.30*gammaFraction +
		0.20*utils.Clamp(metrics.VarContribution/g.limits.MaxPortfolioRisk, 0.00, 1.00) +
		0.20*volPenalty

	return utils.Clamp(score, 0.00, 1.00)
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
