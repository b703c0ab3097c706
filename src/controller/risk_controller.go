package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	"gitlab.com/open-quant/go-fractal-engine/src/service"
)

type RiskController struct {
	Engine *service.Engine
}

type killSwitchResponse struct {
	Active bool   `json:"active"`
	Reason string `json:"reason"`
}

func (c *RiskController) GetKillSwitchAction(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	encoded, _ := json.Marshal(killSwitchResponse{
		Active: c.Engine.RiskGovernor.IsKillSwitchActive(),
		Reason: c.Engine.RiskGovernor.KillSwitchReason(),
	})
	fmt.Fprintf(w, string(encoded))
}

func (c *RiskController) PostDeactivateKillSwitchAction(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	if req.Method != http.MethodPost {
		http.Error(w, "Only POST method is allowed", http.StatusMethodNotAllowed)

		return
	}

	c.Engine.RiskGovernor.DeactivateKillSwitch()
	c.GetKillSwitchAction(w, req)
}

func (c *RiskController) PostResetDailyRiskAction(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	if req.Method != http.MethodPost {
		http.Error(w, "Only POST method is allowed", http.StatusMethodNotAllowed)

		return
	}

	c.Engine.RiskGovernor.ResetDailyRisk()
	c.GetKillSwitchAction(w, req)
}
