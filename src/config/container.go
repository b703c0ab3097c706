package config

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gitlab.com/open-quant/go-fractal-engine/src/controller"
	"gitlab.com/open-quant/go-fractal-engine/src/model"
	"gitlab.com/open-quant/go-fractal-engine/src/repository"
	"gitlab.com/open-quant/go-fractal-engine/src/service"
)

type Container struct {
	InstanceUuid      string
	Symbol            string
	Engine            *service.Engine
	HealthService     *service.HealthService
	StateRepository   *repository.StateRepository
	PatternRepository *repository.PatternRepository
	StateController   *controller.StateController
	RiskController    *controller.RiskController
	MemoryController  *controller.MemoryController
	EngineController  *controller.EngineController
	DB                *sql.DB
	RDB               *redis.Client
}

// InitServiceContainer assembles the engine and its optional
// collaborators from environment variables.
func InitServiceContainer() Container {
	instanceUuid := os.Getenv("INSTANCE_UUID")
	if instanceUuid == "" {
		instanceUuid = uuid.New().String()
	}

	symbol := os.Getenv("SYMBOL")
	if symbol == "" {
		symbol = "SPX"
	}

	db, err := sql.Open("mysql", os.Getenv("DATABASE_DSN"))
	if err != nil {
		log.Fatal(fmt.Sprintf("MySQL can't connect: %s", err.Error()))
	}

	db.SetMaxIdleConns(64)
	db.SetMaxOpenConns(64)
	db.SetConnMaxLifetime(time.Minute)

	var ctx = context.Background()
	rdb := redis.NewClient(&redis.Options{
		Addr:     os.Getenv("REDIS_DSN"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	engineConfig := EngineConfigFromEnv()

	seed := time.Now().UnixNano()
	if value := os.Getenv("EXECUTION_SEED"); value != "" {
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			seed = parsed
		}
	}

	engine := service.NewEngine(engineConfig, seed, true)

	healthService := &service.HealthService{
		Engine:       engine,
		DB:           db,
		RDB:          rdb,
		Ctx:          &ctx,
		InstanceUuid: instanceUuid,
		Symbol:       symbol,
	}

	stateRepository := &repository.StateRepository{
		RDB:          rdb,
		Ctx:          &ctx,
		InstanceUuid: instanceUuid,
	}
	patternRepository := &repository.PatternRepository{
		DB:           db,
		InstanceUuid: instanceUuid,
	}

	return Container{
		InstanceUuid:      instanceUuid,
		Symbol:            symbol,
		Engine:            engine,
		HealthService:     healthService,
		StateRepository:   stateRepository,
		PatternRepository: patternRepository,
		StateController: &controller.StateController{
			Engine:          engine,
			StateRepository: stateRepository,
		},
		RiskController: &controller.RiskController{
			Engine: engine,
		},
		MemoryController: &controller.MemoryController{
			Engine:            engine,
			PatternRepository: patternRepository,
		},
		EngineController: &controller.EngineController{
			HealthService: healthService,
		},
		DB:  db,
		RDB: rdb,
	}
}

// EngineConfigFromEnv starts from the defaults and applies any
// recognized overrides present in the environment.
func EngineConfigFromEnv() model.EngineConfig {
	config := model.DefaultEngineConfig()

	if value, ok := envInt("MAX_STRATEGIES"); ok {
		config.MaxStrategies = value
	}
	if value, ok := envFloat("MAX_POSITION_SIZE"); ok {
		config.MaxPositionSize = value
	}
	if value, ok := envFloat("MAX_PORTFOLIO_RISK"); ok {
		config.MaxPortfolioRisk = value
	}
	if value, ok := envFloat("MAX_CORRELATION"); ok {
		config.MaxCorrelation = value
	}
	if value, ok := envFloat("MAX_DRAWDOWN"); ok {
		config.MaxDrawdown = value
	}
	if value, ok := envFloat("MAX_DAILY_LOSS"); ok {
		config.MaxDailyLoss = value
	}
	if value, ok := envFloat("MAX_CONCENTRATION"); ok {
		config.MaxConcentration = value
	}
	if value := os.Getenv("LEARNING_ENABLED"); value != "" {
		config.LearningEnabled = value != "0" && value != "false"
	}
	if value, ok := envInt("MEMORY_CAPACITY"); ok {
		config.MemoryCapacity = value
	}
	if value, ok := envInt("BUFFER_CAPACITY"); ok {
		config.BufferCapacity = value
	}
	if value, ok := envFloat("STARTING_CASH"); ok {
		config.StartingCash = value
	}

	return config
}

func envInt(name string) (int, bool) {
	value := os.Getenv(name)
	if value == "" {
		return 0, false
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid %s: %s", name, err.Error())
		return 0, false
	}

	return parsed, true
}

func envFloat(name string) (float64, bool) {
	value := os.Getenv(name)
	if value == "" {
		return 0.00, false
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("Invalid %s: %s", name, err.Error())
		return 0.00, false
	}

	return parsed, true
}
