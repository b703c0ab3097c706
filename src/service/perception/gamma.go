package perception

import (
	"sort"

	"gitlab.com/open-quant/go-fractal-engine/src/model"
	"gitlab.com/open-quant/go-fractal-engine/src/utils"
)

const ContractMultiplier = 100.00
const AttractorLimit = 10
const AttractorRangeFraction = 0.10

// BuildGammaSurface aggregates gamma * openInterest * 100 over the
// strike/expiry grid. Values is indexed [expiry][strike].
func (p *Perception) BuildGammaSurface(chain []model.OptionContract) model.GammaSurface {
	surface := model.GammaSurface{
		Strikes:  make([]float64, 0),
		Expiries: make([]model.TimestampMilli, 0),
		Values:   make([][]float64, 0),
	}

	if len(chain) == 0 {
		return surface
	}

	strikeSet := make(map[float64]bool)
	expirySet := make(map[model.TimestampMilli]bool)
	for _, contract := range chain {
		strikeSet[contract.Strike] = true
		expirySet[contract.Expiry] = true
	}

	for strike := range strikeSet {
		surface.Strikes = append(surface.Strikes, strike)
	}
	sort.Float64s(surface.Strikes)

	for expiry := range expirySet {
		surface.Expiries = append(surface.Expiries, expiry)
	}
	sort.Slice(surface.Expiries, func(i, j int) bool {
		return surface.Expiries[i] < surface.Expiries[j]
	})

	strikeIndex := make(map[float64]int, len(surface.Strikes))
	for i, strike := range surface.Strikes {
		strikeIndex[strike] = i
	}
	expiryIndex := make(map[model.TimestampMilli]int, len(surface.Expiries))
	for i, expiry := range surface.Expiries {
		expiryIndex[expiry] = i
	}

	surface.Values = make([][]float64, len(surface.Expiries))
	for i := range surface.Values {
		surface.Values[i] = make([]float64, len(surface.Strikes))
	}

	for _, contract := range chain {
		value := utils.Sanitize(contract.Gamma * contract.OpenInterest * ContractMultiplier)
		surface.Values[expiryIndex[contract.Expiry]][strikeIndex[contract.Strike]] += value
	}

	first := true
	for _, row := range surface.Values {
		for _, value := range row {
			if first {
				surface.MinGamma = value
				surface.MaxGamma = value
				first = false
			}

			if value < surface.MinGamma {
				surface.MinGamma = value
			}
			if value > surface.MaxGamma {
				surface.MaxGamma = value
			}

			surface.NetGamma += value
		}
	}

	return surface
}

// DetectGammaFlips scans each expiry row for sign changes between
// adjacent strikes. The flip sits at the midpoint strike with strength
// equal to the absolute gamma delta, strongest first.
func (p *Perception) DetectGammaFlips(surface model.GammaSurface) []model.GammaFlip {
	flips := make([]model.GammaFlip, 0)

	for e, row := range surface.Values {
		for s := 1; s < len(row); s++ {
			previous := row[s-1]
			current := row[s]

			if previous*current >= 0.00 {
				continue
			}

			flipType := model.FlipNegativeToPositive
			if previous > 0.00 {
				flipType = model.FlipPositiveToNegative
			}

			strength := current - previous
			if strength < 0 {
				strength = -strength
			}

			flips = append(flips, model.GammaFlip{
				Price:    (surface.Strikes[s-1] + surface.Strikes[s]) / 2,
				Strength: strength,
				Type:     flipType,
				Expiry:   surface.Expiries[e],
			})
		}
	}

	sort.Slice(flips, func(i, j int) bool {
		return flips[i].Strength > flips[j].Strength
	})

	return flips
}

// BuildGravitationalPull treats strong gamma cells as point masses and
// applies an inverse-square law against the spot price.
func (p *Perception) BuildGravitationalPull(surface model.GammaSurface, spot float64) model.GravitationalPull {
	pull := model.GravitationalPull{
		Attractors: make([]model.Attractor, 0),
	}

	if surface.IsEmpty() || spot == 0.00 {
		return pull
	}

	threshold := surface.Range() * AttractorRangeFraction

	for _, row := range surface.Values {
		for s, value := range row {
			magnitude := value
			if magnitude < 0 {
				magnitude = -magnitude
			}

			if magnitude <= threshold || magnitude == 0.00 {
				continue
			}

			pull.Attractors = append(pull.Attractors, model.Attractor{
				Price:    surface.Strikes[s],
				Strength: value,
				Type:     model.AttractorGammaMax,
			})
		}
	}

	sort.Slice(pull.Attractors, func(i, j int) bool {
		left := pull.Attractors[i].Strength
		if left < 0 {
			left = -left
		}
		right := pull.Attractors[j].Strength
		if right < 0 {
			right = -right
		}

		return left > right
	})

	if len(pull.Attractors) > AttractorLimit {
		pull.Attractors = pull.Attractors[:AttractorLimit]
	}

	signedSum := 0.00
	absoluteSum := 0.00
	for _, attractor := range pull.Attractors {
		distance := attractor.Price - spot
		if distance == 0.00 {
			continue
		}

		strength := attractor.Strength
		if strength < 0 {
			strength = -strength
		}

		force := strength / (distance * distance)
		absoluteSum += force

		if distance > 0 {
			signedSum += force
		} else {
			signedSum -= force
		}
	}

	if absoluteSum == 0.00 {
		return pull
	}

	if signedSum > 0.00 {
		pull.Direction = 1.00
	} else if signedSum < 0.00 {
		pull.Direction = -1.00
	}

	magnitude := signedSum
	if magnitude < 0 {
		magnitude = -magnitude
	}

	pull.Magnitude = utils.Clamp(magnitude/absoluteSum, 0.00, 1.00)

	return pull
}
