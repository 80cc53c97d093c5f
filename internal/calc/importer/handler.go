package importer

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/xuri/excelize/v2"

	"scanmaster/internal/calc/dac"
)

type Handler struct{}

// Indication is one imported row joined with its DAC evaluation.
type Indication struct {
	DepthMM    float64        `json:"depth_mm"`
	Amplitude  float64        `json:"amplitude_pct"`
	Location   string         `json:"location,omitempty"`
	Evaluation dac.Evaluation `json:"evaluation"`
}

type ImportResult struct {
	Count       int          `json:"count"`
	Recordable  int          `json:"recordable"`
	Rejectable  int          `json:"rejectable"`
	Indications []Indication `json:"indications"`
}

// Indications reads an indication list from an uploaded spreadsheet and
// evaluates each row against the DAC curve supplied in the "curve" form
// field. Expected columns: depth_mm, amplitude_pct, location(optional).
func (h *Handler) Indications(w http.ResponseWriter, r *http.Request) {
	var curve dac.Curve
	if err := json.Unmarshal([]byte(r.FormValue("curve")), &curve); err != nil {
		http.Error(w, "DAC curve required", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	f, err := excelize.OpenReader(file)
	if err != nil {
		http.Error(w, "Invalid file", http.StatusBadRequest)
		return
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil || len(rows) < 2 {
		http.Error(w, "Empty sheet", http.StatusBadRequest)
		return
	}

	result := ImportResult{}
	for i := 1; i < len(rows); i++ {
		ind, err := parseIndicationRow(rows[i])
		if err != nil {
			continue
		}
		ind.Evaluation = dac.Evaluate(curve, ind.DepthMM, ind.Amplitude)
		if ind.Evaluation.IsRecordable {
			result.Recordable++
		}
		if !ind.Evaluation.IsAcceptable {
			result.Rejectable++
		}
		result.Indications = append(result.Indications, ind)
	}
	result.Count = len(result.Indications)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func parseIndicationRow(row []string) (Indication, error) {
	if len(row) < 2 {
		return Indication{}, fmt.Errorf("bad row")
	}
	depth, err := toFloat(row[0])
	if err != nil {
		return Indication{}, err
	}
	amp, err := toFloat(row[1])
	if err != nil {
		return Indication{}, err
	}
	ind := Indication{DepthMM: depth, Amplitude: amp}
	if len(row) > 2 {
		ind.Location = row[2]
	}
	return ind, nil
}

func toFloat(s string) (float64, error) {
	var v float64
	_, err := fmt.Sscanf(s, "%f", &v)
	return v, err
}
