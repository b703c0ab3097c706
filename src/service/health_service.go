package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"
	"gitlab.com/open-quant/go-fractal-engine/src/model"
)

type HealthService struct {
	Engine       *Engine
	DB           *sql.DB
	RDB          *redis.Client
	Ctx          *context.Context
	InstanceUuid string
	Symbol       string
}

func (h *HealthService) HealthCheck() model.EngineHealth {
	health := model.EngineHealth{
		InstanceUuid:     h.InstanceUuid,
		Symbol:           h.Symbol,
		TickCount:        h.Engine.TickCount(),
		KillSwitchActive: h.Engine.RiskGovernor.IsKillSwitchActive(),
		KillSwitchReason: h.Engine.RiskGovernor.KillSwitchReason(),
		MemoryPatterns:   h.Engine.FractalMemory.Stats().TotalPatterns,
		DbStatus:         model.DbStatusOk,
		RedisStatus:      model.RedisStatusOk,
		DateTime:         time.Now().Format("2006-01-02 15:04:05"),
	}

	if state := h.Engine.LastState(); state != nil {
		health.Metrics = state.Health
	}

	if h.DB == nil || h.DB.Ping() != nil {
		health.DbStatus = model.DbStatusFail
	}
	if h.RDB == nil || h.RDB.Ping(*h.Ctx).Err() != nil {
		health.RedisStatus = model.RedisStatusFail
	}

	return health
}
