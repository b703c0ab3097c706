package memory

import (
	"fmt"
	"sort"

	"gitlab.com/open-quant/go-fractal-engine/src/model"
	"gitlab.com/open-quant/go-fractal-engine/src/utils"
)

const DefaultCapacity = 10000
const RecentCapacity = 1000
const RetrieveLimit = 10
const outcomeSliceLimit = 50

const outcomePositive = "positive"
const outcomeNegative = "negative"

// FractalMemory is the long-lived pattern store. Every pattern lives in
// the id-keyed store and in exactly one bucket of each index; eviction
// removes the oldest pattern from all of them together.
type FractalMemory struct {
	patterns     map[string]model.HistoricalPattern
	fingerprints map[string][]float64
	recent       *utils.RingBuffer[string]
	byRegime     map[model.RegimeType][]string
	byOutcome    map[string][]string
	byHour       map[int][]string
	capacity     int
	sequence     int64
}

func NewFractalMemory(capacity int) *FractalMemory {
	if capacity < 1 {
		capacity = DefaultCapacity
	}

	return &FractalMemory{
		patterns:     make(map[string]model.HistoricalPattern),
		fingerprints: make(map[string][]float64),
		recent:       utils.NewRingBuffer[string](RecentCapacity),
		byRegime:     make(map[model.RegimeType][]string),
		byOutcome:    make(map[string][]string),
		byHour:       make(map[int][]string),
		capacity:     capacity,
	}
}

// Fingerprint is the min-max-normalized 13-dimension similarity key.
func Fingerprint(features *model.StructuralFeatures, regime model.Regime) []float64 {
	raw := []float64{
		features.PriceHistory.Momentum,
		features.PriceHistory.TrendStrength,
		features.VolatilityState.Implied / 100.00,
		features.VolatilityState.Spread / 100.00,
		features.VolatilityState.Skew / 100.00,
		features.GravitationalPull.Direction,
		features.GravitationalPull.Magnitude,
		features.LiquidityMap.Imbalance,
		features.LiquidityMap.AbsorptionRate,
		features.DealerPositioning.HedgingPressure,
		features.DealerPositioning.Confidence,
		regime.Confidence,
		regime.TransitionProbability,
	}

	for i, value := range raw {
		raw[i] = utils.Sanitize(value)
	}

	return utils.Normalize(raw)
}

// Store fingerprints the tick and files the pattern into the store and
// all three indices, evicting the oldest patterns when over capacity.
func (m *FractalMemory) Store(features *model.StructuralFeatures, regime model.Regime, outcome model.TradeOutcome) string {
	m.sequence++
	id := fmt.Sprintf("pattern-%08d", m.sequence)

	pattern := model.HistoricalPattern{
		ID:          id,
		Timestamp:   features.Timestamp,
		Fingerprint: Fingerprint(features, regime),
		Outcome:     outcome,
		Regime:      regime.Type,
		Similarity:  1.00,
	}

	m.insert(pattern)

	for len(m.patterns) > m.capacity {
		m.evictOldest()
	}

	return id
}

func (m *FractalMemory) insert(pattern model.HistoricalPattern) {
	m.patterns[pattern.ID] = pattern
	m.fingerprints[pattern.ID] = pattern.Fingerprint
	m.recent.Append(pattern.ID)
	m.byRegime[pattern.Regime] = append(m.byRegime[pattern.Regime], pattern.ID)
	m.byOutcome[outcomeKey(pattern.Outcome)] = append(m.byOutcome[outcomeKey(pattern.Outcome)], pattern.ID)
	m.byHour[pattern.Timestamp.Hour()] = append(m.byHour[pattern.Timestamp.Hour()], pattern.ID)
}

func outcomeKey(outcome model.TradeOutcome) string {
	if outcome.Pnl > 0.00 {
		return outcomePositive
	}

	return outcomeNegative
}

func (m *FractalMemory) evictOldest() {
	oldestID := ""
	var oldestTimestamp model.TimestampMilli
	oldestSequence := int64(0)

	for id, pattern := range m.patterns {
		if oldestID == "" || pattern.Timestamp < oldestTimestamp ||
			(pattern.Timestamp == oldestTimestamp && sequenceOf(id) < oldestSequence) {
			oldestID = id
			oldestTimestamp = pattern.Timestamp
			oldestSequence = sequenceOf(id)
		}
	}

	if oldestID == "" {
		return
	}

	m.remove(oldestID)
}

func sequenceOf(id string) int64 {
	var sequence int64
	fmt.Sscanf(id, "pattern-%d", &sequence)

	return sequence
}

func (m *FractalMemory) remove(id string) {
	pattern, ok := m.patterns[id]
	if !ok {
		return
	}

	delete(m.patterns, id)
	delete(m.fingerprints, id)
	m.byRegime[pattern.Regime] = removeID(m.byRegime[pattern.Regime], id)
	m.byOutcome[outcomeKey(pattern.Outcome)] = removeID(m.byOutcome[outcomeKey(pattern.Outcome)], id)
	m.byHour[pattern.Timestamp.Hour()] = removeID(m.byHour[pattern.Timestamp.Hour()], id)
}

func removeID(ids []string, id string) []string {
	for i, candidate := range ids {
		if candidate == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}

	return ids
}

// RetrieveSimilar scores the same-regime bucket first and widens to the
// rest of the store only when the bucket is too small, returning the
// best matches by cosine similarity.
func (m *FractalMemory) RetrieveSimilar(features *model.StructuralFeatures, regime model.Regime, limit int) []model.HistoricalPattern {
	return m.RetrieveSimilarTo(Fingerprint(features, regime), regime.Type, limit)
}

// RetrieveSimilarTo runs the same scan against a prebuilt fingerprint.
func (m *FractalMemory) RetrieveSimilarTo(query []float64, regime model.RegimeType, limit int) []model.HistoricalPattern {
	if limit < 1 {
		limit = RetrieveLimit
	}

	scored := make([]model.HistoricalPattern, 0)
	seen := make(map[string]bool)

	for _, id := range m.byRegime[regime] {
		scored = append(scored, m.scoredPattern(id, query))
		seen[id] = true
	}

	if len(scored) < limit {
		for id := range m.patterns {
			if seen[id] {
				continue
			}

			scored = append(scored, m.scoredPattern(id, query))
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Similarity == scored[j].Similarity {
			return scored[i].ID < scored[j].ID
		}

		return scored[i].Similarity > scored[j].Similarity
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}

	return scored
}

func (m *FractalMemory) scoredPattern(id string, query []float64) model.HistoricalPattern {
	pattern := m.patterns[id]
	pattern.Similarity = utils.CosineSimilarity(query, m.fingerprints[id])

	return pattern
}

// ByOutcome returns the most recent stored patterns with the given
// outcome sign, newest last.
func (m *FractalMemory) ByOutcome(positive bool) []model.HistoricalPattern {
	key := outcomeNegative
	if positive {
		key = outcomePositive
	}

	ids := m.byOutcome[key]
	if len(ids) > outcomeSliceLimit {
		ids = ids[len(ids)-outcomeSliceLimit:]
	}

	patterns := make([]model.HistoricalPattern, 0, len(ids))
	for _, id := range ids {
		patterns = append(patterns, m.patterns[id])
	}

	return patterns
}

func (m *FractalMemory) ByRegime(regime model.RegimeType) []model.HistoricalPattern {
	ids := m.byRegime[regime]

	patterns := make([]model.HistoricalPattern, 0, len(ids))
	for _, id := range ids {
		patterns = append(patterns, m.patterns[id])
	}

	return patterns
}

func (m *FractalMemory) Stats() model.MemoryStats {
	stats := model.MemoryStats{
		TotalPatterns: len(m.patterns),
		Positive:      len(m.byOutcome[outcomePositive]),
		Negative:      len(m.byOutcome[outcomeNegative]),
		ByRegime:      make(map[model.RegimeType]int),
	}

	for regime, ids := range m.byRegime {
		if len(ids) > 0 {
			stats.ByRegime[regime] = len(ids)
		}
	}

	return stats
}

// Export returns the store as a flat record sequence, oldest first.
func (m *FractalMemory) Export() []model.HistoricalPattern {
	patterns := make([]model.HistoricalPattern, 0, len(m.patterns))
	for _, pattern := range m.patterns {
		patterns = append(patterns, pattern)
	}

	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Timestamp == patterns[j].Timestamp {
			return patterns[i].ID < patterns[j].ID
		}

		return patterns[i].Timestamp < patterns[j].Timestamp
	})

	return patterns
}

// Import replays exported records into the store and indices. Existing
// content is kept; use Clear first for a full restore.
func (m *FractalMemory) Import(patterns []model.HistoricalPattern) {
	for _, pattern := range patterns {
		if _, ok := m.patterns[pattern.ID]; ok {
			continue
		}

		m.insert(pattern)

		if sequence := sequenceOf(pattern.ID); sequence > m.sequence {
			m.sequence = sequence
		}
	}

	for len(m.patterns) > m.capacity {
		m.evictOldest()
	}
}

func (m *FractalMemory) Clear() {
	m.patterns = make(map[string]model.HistoricalPattern)
	m.fingerprints = make(map[string][]float64)
	m.recent = utils.NewRingBuffer[string](RecentCapacity)
	m.byRegime = make(map[model.RegimeType][]string)
	m.byOutcome = make(map[string][]string)
	m.byHour = make(map[int][]string)
}
