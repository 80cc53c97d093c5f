package export

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/xuri/excelize/v2"

	"scanmaster/internal/calc/dac"
)

type Handler struct{}

// DAC writes the DAC and TCG tables of a calculated output to an xlsx
// workbook, one sheet per table.
func (h *Handler) DAC(w http.ResponseWriter, r *http.Request) {
	var out dac.Output
	if err := json.NewDecoder(r.Body).Decode(&out); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if len(out.Curve.Points) == 0 {
		http.Error(w, "Empty curve", http.StatusBadRequest)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "DAC"
	f.SetSheetName(f.GetSheetName(0), sheet)
	f.SetSheetRow(sheet, "A1", &[]string{"Depth (mm)", "Amplitude (%FSH)", "Gain (dB)", "FBH size"})
	for i, p := range out.Curve.Points {
		cell := fmt.Sprintf("A%d", i+2)
		f.SetSheetRow(sheet, cell, &[]interface{}{p.DepthMM, p.Amplitude, p.GainDB, p.FBHSize})
	}

	tcgSheet := "TCG"
	f.NewSheet(tcgSheet)
	f.SetSheetRow(tcgSheet, "A1", &[]string{"Time (us)", "Gain (dB)"})
	for i, p := range out.TCG.Points {
		cell := fmt.Sprintf("A%d", i+2)
		f.SetSheetRow(tcgSheet, cell, &[]interface{}{p.TimeUS, p.GainDB})
	}
	f.SetSheetRow(tcgSheet, fmt.Sprintf("A%d", len(out.TCG.Points)+3),
		&[]interface{}{"Gate start (us)", out.TCG.GateStartUS})
	f.SetSheetRow(tcgSheet, fmt.Sprintf("A%d", len(out.TCG.Points)+4),
		&[]interface{}{"Gate end (us)", out.TCG.GateEndUS})
	f.SetSheetRow(tcgSheet, fmt.Sprintf("A%d", len(out.TCG.Points)+5),
		&[]interface{}{"Total correction (dB)", out.TCG.TotalCorrectionDB})

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=\"dac-curve.xlsx\"")
	if err := f.Write(w); err != nil {
		http.Error(w, "Export error", http.StatusInternalServerError)
		return
	}
}
