package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	"gitlab.com/open-quant/go-fractal-engine/src/repository"
	"gitlab.com/open-quant/go-fractal-engine/src/service"
)

// MemoryController drives the optional pattern-store persistence.
type MemoryController struct {
	Engine            *service.Engine
	PatternRepository repository.PatternStorageInterface
}

type memoryTransferResponse struct {
	Patterns int    `json:"patterns"`
	Error    string `json:"error,omitempty"`
}

func (c *MemoryController) PostExportPatternsAction(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	if req.Method != http.MethodPost {
		http.Error(w, "Only POST method is allowed", http.StatusMethodNotAllowed)

		return
	}

	response := memoryTransferResponse{}
	for _, pattern := range c.Engine.FractalMemory.Export() {
		if err := c.PatternRepository.CreatePattern(pattern); err != nil {
			response.Error = err.Error()
			break
		}

		response.Patterns++
	}

	encoded, _ := json.Marshal(response)
	fmt.Fprintf(w, string(encoded))
}

func (c *MemoryController) PostImportPatternsAction(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	if req.Method != http.MethodPost {
		http.Error(w, "Only POST method is allowed", http.StatusMethodNotAllowed)

		return
	}

	patterns := c.PatternRepository.GetPatterns()
	c.Engine.FractalMemory.Import(patterns)

	encoded, _ := json.Marshal(memoryTransferResponse{Patterns: len(patterns)})
	fmt.Fprintf(w, string(encoded))
}
