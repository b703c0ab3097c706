package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	"gitlab.com/open-quant/go-fractal-engine/src/repository"
	"gitlab.com/open-quant/go-fractal-engine/src/service"
)

// StateController serves the last produced system state and memory
// statistics to rendering collaborators.
type StateController struct {
	Engine          *service.Engine
	StateRepository repository.StateStorageInterface
}

func (c *StateController) GetStateAction(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	state := c.Engine.LastState()
	if state == nil && c.StateRepository != nil {
		state = c.StateRepository.GetSystemState()
	}

	if state == nil {
		http.Error(w, "No state produced yet", http.StatusNotFound)

		return
	}

	encoded, _ := json.Marshal(state)
	fmt.Fprintf(w, string(encoded))
}

func (c *StateController) GetMemoryStatsAction(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	encoded, _ := json.Marshal(c.Engine.FractalMemory.Stats())
	fmt.Fprintf(w, string(encoded))
}
