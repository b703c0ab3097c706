package model

type HealthMetrics struct {
	DataLatency    int64   `json:"dataLatency"`
	ProcessingTime int64   `json:"processingTime"`
	MemoryUsage    int     `json:"memoryUsage"`
	ErrorRate      float64 `json:"errorRate"`
}

// SystemState is the full per-tick snapshot handed to observers.
type SystemState struct {
	Features         StructuralFeatures  `json:"features"`
	Regime           Regime              `json:"regime"`
	Coherence        CoherenceScore      `json:"coherence"`
	ActiveStrategies []ActiveStrategy    `json:"activeStrategies"`
	Signals          []Signal            `json:"signals"`
	ApprovedSignals  []ApprovedSignal    `json:"approvedSignals"`
	ExecutionResults []ExecutionResult   `json:"executionResults"`
	Portfolio        Portfolio           `json:"portfolio"`
	RecentOutcomes   []TradeOutcome      `json:"recentOutcomes"`
	LearningProgress []LearningProgress  `json:"learningProgress"`
	Evolution        []StrategyEvolution `json:"evolution"`
	Timestamp        TimestampMilli      `json:"timestamp"`
	Health           HealthMetrics       `json:"health"`
}
