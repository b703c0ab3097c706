package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"gitlab.com/open-quant/go-fractal-engine/src/model"
)

const stateCacheTTL = time.Minute * 5

type StateStorageInterface interface {
	SaveSystemState(state model.SystemState)
	GetSystemState() *model.SystemState
}

// StateRepository caches the latest system-state snapshot so observers
// can survive an engine restart between ticks.
type StateRepository struct {
	RDB          *redis.Client
	Ctx          *context.Context
	InstanceUuid string
}

func (repo *StateRepository) stateKey() string {
	return fmt.Sprintf("system-state-%s", repo.InstanceUuid)
}

func (repo *StateRepository) SaveSystemState(state model.SystemState) {
	encoded, err := json.Marshal(state)
	if err != nil {
		log.Printf("SaveSystemState: %s", err.Error())
		return
	}

	repo.RDB.Set(*repo.Ctx, repo.stateKey(), string(encoded), stateCacheTTL)
}

func (repo *StateRepository) GetSystemState() *model.SystemState {
	res := repo.RDB.Get(*repo.Ctx, repo.stateKey()).Val()
	if len(res) == 0 {
		return nil
	}

	var state model.SystemState
	err := json.Unmarshal([]byte(res), &state)
	if err != nil {
		log.Printf("GetSystemState: %s", err.Error())
		return nil
	}

	return &state
}

func (repo *StateRepository) patternKey() string {
	return fmt.Sprintf("pattern-snapshot-%s", repo.InstanceUuid)
}

// SavePatternSnapshot keeps the latest memory export warm; unlike the
// MySQL repository this copy expires.
func (repo *StateRepository) SavePatternSnapshot(patterns []model.HistoricalPattern) {
	encoded, err := json.Marshal(patterns)
	if err != nil {
		log.Printf("SavePatternSnapshot: %s", err.Error())
		return
	}

	repo.RDB.Set(*repo.Ctx, repo.patternKey(), string(encoded), time.Hour)
}

func (repo *StateRepository) GetPatternSnapshot() []model.HistoricalPattern {
	patterns := make([]model.HistoricalPattern, 0)

	res := repo.RDB.Get(*repo.Ctx, repo.patternKey()).Val()
	if len(res) == 0 {
		return patterns
	}

	err := json.Unmarshal([]byte(res), &patterns)
	if err != nil {
		log.Printf("GetPatternSnapshot: %s", err.Error())
	}

	return patterns
}
