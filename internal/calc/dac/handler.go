package dac

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

type tcgRequest struct {
	Curve           Curve   `json:"curve"`
	TargetAmplitude float64 `json:"target_amplitude_pct"`
}

func (h *Handler) TCG(w http.ResponseWriter, r *http.Request) {
	var req tcgRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res := ConvertToTCG(req.Curve, req.TargetAmplitude)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

type evaluateRequest struct {
	Curve     Curve   `json:"curve"`
	DepthMM   float64 `json:"depth_mm"`
	Amplitude float64 `json:"amplitude_pct"`
}

func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res := Evaluate(req.Curve, req.DepthMM, req.Amplitude)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

type presetRequest struct {
	Material     string  `json:"material"`
	FrequencyMHz float64 `json:"frequency_mhz"`
	ThicknessMM  float64 `json:"thickness_mm"`
}

func (h *Handler) AMSPreset(w http.ResponseWriter, r *http.Request) {
	var req presetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := GenerateAMSDAC(req.Material, req.FrequencyMHz, req.ThicknessMM)
	if err != nil {
		http.Error(w, "Calculation error", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
