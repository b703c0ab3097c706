package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	"gitlab.com/open-quant/go-fractal-engine/src/service"
)

type EngineController struct {
	HealthService *service.HealthService
}

func (c *EngineController) GetHealthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	health := c.HealthService.HealthCheck()

	encoded, _ := json.Marshal(health)
	fmt.Fprintf(w, string(encoded))
}
