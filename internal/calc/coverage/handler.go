package coverage

import (
	"encoding/json"
	"net/http"
)

type Handler struct{}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := Calculate(input)
	if err != nil {
		http.Error(w, "Calculation error", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

type optimizeRequest struct {
	Input   Input           `json:"input"`
	Options OptimizeOptions `json:"options"`
}

func (h *Handler) Optimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res := Optimize(req.Input, req.Options)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

type recommendRequest struct {
	ThicknessMM    float64 `json:"thickness_mm"`
	Material       string  `json:"material"`
	TargetCoverage float64 `json:"target_coverage_pct"`
}

func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res := RecommendedSettings(req.ThicknessMM, req.Material, req.TargetCoverage)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
