package compliance

import (
	"encoding/json"
	"net/http"
)

type Handler struct{}

func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	var data Data
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	report := Run(data)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}
