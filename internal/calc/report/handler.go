package report

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/phpdave11/gofpdf"

	"scanmaster/internal/calc/coverage"
	"scanmaster/internal/calc/dac"
	"scanmaster/internal/compliance"
)

// Input carries pre-computed engine output; the report only lays it out and
// never calls back into the engines mid-render.
type Input struct {
	Title      string             `json:"title"`
	PartNumber string             `json:"part_number"`
	Operator   string             `json:"operator"`
	Standard   string             `json:"standard"`
	Notes      string             `json:"notes"`
	Coverage   *coverage.Result   `json:"coverage,omitempty"`
	DAC        *dac.Output        `json:"dac,omitempty"`
	Compliance *compliance.Report `json:"compliance,omitempty"`
}

type Handler struct{}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if input.Title == "" {
		input.Title = "UT Technique Sheet"
	}
	// The export gate: a report with critical compliance failures is not
	// printable.
	if input.Compliance != nil && !input.Compliance.CanExport {
		http.Error(w, "Sheet has critical compliance failures; export blocked", http.StatusConflict)
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, input.Title)
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Part number: %s", input.PartNumber))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Operator: %s", input.Operator))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Standard: %s", input.Standard))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", time.Now().Format("2006-01-02")))
	pdf.Ln(10)

	if input.Coverage != nil {
		c := input.Coverage
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Scan coverage")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 10)
		pdf.Cell(0, 5, fmt.Sprintf("Overall coverage: %.1f%%   Effective: %.1f%%   Passes: %d   Optimal index: %.1f mm",
			c.OverallCoverage, c.EffectiveCoverage, c.NumPasses, c.OptimalIndexMM))
		pdf.Ln(6)
		for _, warn := range c.Warnings {
			pdf.Cell(0, 5, "! "+warn)
			pdf.Ln(5)
		}
		pdf.Ln(4)
	}

	if input.DAC != nil {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "DAC curve")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 10)
		pdf.Cell(0, 5, "Depth (mm)    Amplitude (%)    Gain (dB)    FBH")
		pdf.Ln(5)
		for _, p := range input.DAC.Curve.Points {
			pdf.Cell(0, 5, fmt.Sprintf("%-14.1f%-17.1f%-13.1f%s", p.DepthMM, p.Amplitude, p.GainDB, p.FBHSize))
			pdf.Ln(5)
		}
		pdf.Cell(0, 5, fmt.Sprintf("TCG gate: %.1f-%.1f us, total correction %.1f dB",
			input.DAC.TCG.GateStartUS, input.DAC.TCG.GateEndUS, input.DAC.TCG.TotalCorrectionDB))
		pdf.Ln(8)
	}

	if input.Compliance != nil {
		rep := input.Compliance
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Compliance")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 10)
		pdf.Cell(0, 5, fmt.Sprintf("Status: %s   Score: %d/100   Rules: %d passed / %d failed",
			rep.Status, rep.OverallScore, rep.PassedRules, rep.FailedRules))
		pdf.Ln(5)
		pdf.MultiCell(0, 5, rep.Summary, "", "L", false)
		pdf.Ln(4)
	}

	if input.Notes != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, input.Notes, "", "L", false)
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"technique-sheet.pdf\"")
	if err := pdf.Output(w); err != nil {
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
}
