package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"gitlab.com/open-quant/go-fractal-engine/src/client"
	"gitlab.com/open-quant/go-fractal-engine/src/config"
)

const defaultTickPeriod = time.Second

func main() {
	pwd, _ := os.Getwd()
	if _, err := os.Stat(fmt.Sprintf("%s/.env", pwd)); err == nil {
		log.Println(".env is found, loading variables...")
		err = godotenv.Load()
		if err != nil {
			log.Println(err)
		}
	}

	container := config.InitServiceContainer()
	log.Printf("Engine [%s] is initialized for %s", container.InstanceUuid, container.Symbol)

	http.HandleFunc("/state", container.StateController.GetStateAction)
	http.HandleFunc("/memory/stats", container.StateController.GetMemoryStatsAction)
	http.HandleFunc("/memory/export", container.MemoryController.PostExportPatternsAction)
	http.HandleFunc("/memory/import", container.MemoryController.PostImportPatternsAction)
	http.HandleFunc("/risk/kill-switch", container.RiskController.GetKillSwitchAction)
	http.HandleFunc("/risk/kill-switch/deactivate", container.RiskController.PostDeactivateKillSwitchAction)
	http.HandleFunc("/risk/reset-daily", container.RiskController.PostResetDailyRiskAction)
	http.HandleFunc("/health", container.EngineController.GetHealthCheck)

	bundleChannel := make(chan []byte)

	// ticks are produced at most once per period; frames arriving
	// sooner than a period after the last tick are dropped
	go func() {
		var lastTick time.Time

		for {
			message := <-bundleChannel

			bundle, err := client.ParseBundle(message)
			if err != nil {
				log.Printf("[%s] Bundle parse error: %s", container.Symbol, err.Error())
				continue
			}

			if bundle.Symbol != container.Symbol {
				continue
			}

			if time.Since(lastTick) < defaultTickPeriod {
				continue
			}
			lastTick = time.Now()

			state := container.Engine.Tick(bundle)
			container.StateRepository.SaveSystemState(state)

			if container.Engine.TickCount()%60 == 0 {
				container.StateRepository.SavePatternSnapshot(container.Engine.FractalMemory.Export())
			}
		}
	}()

	streamDsn := os.Getenv("MARKET_STREAM_DSN")
	if streamDsn != "" {
		connection := client.Listen(streamDsn, bundleChannel, 0)
		defer connection.Close()
		log.Printf("Market stream connected: %s", streamDsn)
	} else {
		log.Println("MARKET_STREAM_DSN is not set, engine waits for nothing...")
	}

	httpPort := os.Getenv("HTTP_PORT")
	if httpPort == "" {
		httpPort = "8080"
	}

	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%s", httpPort), nil))
}
