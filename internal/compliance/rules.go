package compliance

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type frequencyRange struct {
	MinMHz float64
	MaxMHz float64
}

// Per-standard acceptance tables. A standard absent from a table is treated
// as a soft pass, never a failure, so the form stays usable for standards we
// have no limits for.
var frequencyRanges = map[string]frequencyRange{
	"AMS-STD-2154": {1, 10},
	"ASTM-A388":    {1, 10},
	"EN-10160":     {2, 6},
	"ISO-16810":    {0.5, 15},
}

type linearityLimit struct {
	VerticalPct   float64
	HorizontalPct float64
}

var linearityLimits = map[string]linearityLimit{
	"AMS-STD-2154": {5, 2},
	"ASTM-A388":    {5, 5},
	"EN-10160":     {5, 2},
	"ISO-16810":    {5, 2},
}

const (
	maxCertificateAgeDays = 365
	assumedBeamWidthMM    = 6.0 // empirical width used by the PRF estimate
)

var materialFamilies = []string{"aluminum", "steel", "titanium", "inconel", "magnesium"}

// parseFrequencyMHz pulls the leading number out of a free-text frequency
// field like "5 MHz" or "2.25MHz".
func parseFrequencyMHz(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] == '.' || (s[end] >= '0' && s[end] <= '9')) {
		end++
	}
	if end == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func materialFamily(s string) string {
	low := strings.ToLower(s)
	// Stainless resolves before plain steel so "stainless steel" has its own
	// family.
	if strings.Contains(low, "stainless") || strings.Contains(low, "austenitic") {
		return "stainless"
	}
	for _, fam := range materialFamilies {
		if strings.Contains(low, fam) {
			return fam
		}
	}
	if strings.Contains(low, "alu") {
		return "aluminum"
	}
	if strings.Contains(low, "ti-") || strings.Contains(low, "ti ") {
		return "titanium"
	}
	return ""
}

var rules = []Rule{
	{
		ID: "setup-part-number", Name: "Part number specified", Category: CategorySetup, Severity: SeverityCritical,
		Check: func(r Rule, d Data) Result {
			if strings.TrimSpace(d.InspectionSetup.PartNumber) == "" {
				res := r.fail("Part number is required")
				res.Field = "inspectionSetup.partNumber"
				res.Suggestion = "Enter the drawing or part number being inspected"
				return res
			}
			return r.pass("Part number specified")
		},
	},
	{
		ID: "setup-material", Name: "Part material specified", Category: CategorySetup, Severity: SeverityCritical,
		Check: func(r Rule, d Data) Result {
			if strings.TrimSpace(d.InspectionSetup.Material) == "" {
				res := r.fail("Part material is required")
				res.Field = "inspectionSetup.material"
				return res
			}
			return r.pass("Part material specified")
		},
	},
	{
		ID: "setup-geometry", Name: "Part geometry specified", Category: CategorySetup, Severity: SeverityCritical,
		Check: func(r Rule, d Data) Result {
			if strings.TrimSpace(d.InspectionSetup.Geometry) == "" {
				res := r.fail("Part geometry is required")
				res.Field = "inspectionSetup.geometry"
				return res
			}
			if d.InspectionSetup.ThicknessMM <= 0 {
				res := r.fail("Part thickness must be greater than zero")
				res.Field = "inspectionSetup.thicknessMM"
				res.CurrentValue = fmt.Sprintf("%g", d.InspectionSetup.ThicknessMM)
				res.ExpectedValue = "> 0"
				return res
			}
			return r.pass("Part geometry specified")
		},
	},
	{
		ID: "setup-acceptance-class", Name: "Acceptance class specified", Category: CategorySetup, Severity: SeverityCritical,
		Check: func(r Rule, d Data) Result {
			if strings.TrimSpace(d.InspectionSetup.AcceptanceClass) == "" {
				res := r.fail("Acceptance class is required")
				res.Field = "inspectionSetup.acceptanceClass"
				res.Suggestion = "Select the quality class from the governing standard"
				return res
			}
			return r.pass("Acceptance class specified")
		},
	},
	{
		ID: "equipment-frequency", Name: "Probe frequency specified", Category: CategoryEquipment, Severity: SeverityCritical,
		Check: func(r Rule, d Data) Result {
			if _, ok := parseFrequencyMHz(d.Equipment.Frequency); !ok {
				res := r.fail("Probe frequency is required")
				res.Field = "equipment.frequency"
				res.CurrentValue = d.Equipment.Frequency
				return res
			}
			return r.pass("Probe frequency specified")
		},
	},
	{
		ID: "equipment-frequency-range", Name: "Frequency within standard range", Category: CategoryEquipment, Severity: SeverityCritical,
		Check: func(r Rule, d Data) Result {
			freq, ok := parseFrequencyMHz(d.Equipment.Frequency)
			if !ok {
				return r.pass("Frequency not set; range check deferred to the presence rule")
			}
			rng, known := frequencyRanges[d.Standard]
			if !known {
				return r.pass(fmt.Sprintf("No frequency table for standard %q; assumed acceptable", d.Standard))
			}
			if freq < rng.MinMHz || freq > rng.MaxMHz {
				res := r.fail(fmt.Sprintf("Frequency %.2f MHz is outside the range allowed by %s", freq, d.Standard))
				res.Field = "equipment.frequency"
				res.CurrentValue = d.Equipment.Frequency
				res.ExpectedValue = fmt.Sprintf("%g-%g MHz", rng.MinMHz, rng.MaxMHz)
				res.Reference = d.Standard
				return res
			}
			return r.pass("Frequency within the standard's allowed range")
		},
	},
	{
		ID: "equipment-vertical-linearity", Name: "Vertical linearity within limit", Category: CategoryEquipment, Severity: SeverityWarning,
		Check: func(r Rule, d Data) Result {
			lim, known := linearityLimits[d.Standard]
			if !known {
				return r.pass(fmt.Sprintf("No linearity table for standard %q; assumed acceptable", d.Standard))
			}
			if d.Equipment.VerticalLinearityPct > lim.VerticalPct {
				res := r.fail(fmt.Sprintf("Vertical linearity %.1f%% exceeds the %.1f%% ceiling", d.Equipment.VerticalLinearityPct, lim.VerticalPct))
				res.Field = "equipment.verticalLinearityPct"
				res.ExpectedValue = fmt.Sprintf("<= %g%%", lim.VerticalPct)
				res.Reference = d.Standard
				return res
			}
			return r.pass("Vertical linearity within limit")
		},
	},
	{
		ID: "equipment-horizontal-linearity", Name: "Horizontal linearity within limit", Category: CategoryEquipment, Severity: SeverityWarning,
		Check: func(r Rule, d Data) Result {
			lim, known := linearityLimits[d.Standard]
			if !known {
				return r.pass(fmt.Sprintf("No linearity table for standard %q; assumed acceptable", d.Standard))
			}
			if d.Equipment.HorizontalLinearityPct > lim.HorizontalPct {
				res := r.fail(fmt.Sprintf("Horizontal linearity %.1f%% exceeds the %.1f%% ceiling", d.Equipment.HorizontalLinearityPct, lim.HorizontalPct))
				res.Field = "equipment.horizontalLinearityPct"
				res.ExpectedValue = fmt.Sprintf("<= %g%%", lim.HorizontalPct)
				res.Reference = d.Standard
				return res
			}
			return r.pass("Horizontal linearity within limit")
		},
	},
	{
		ID: "calibration-block-material", Name: "Calibration block matches part material", Category: CategoryCalibration, Severity: SeverityWarning,
		Check: func(r Rule, d Data) Result {
			block := strings.TrimSpace(d.Calibration.BlockMaterial)
			if block == "" {
				res := r.fail("Calibration block material not specified")
				res.Field = "calibration.blockMaterial"
				return res
			}
			partFam := materialFamily(d.InspectionSetup.Material)
			blockFam := materialFamily(block)
			if partFam == "" || blockFam == "" {
				// Keyword heuristic cannot classify one of the two; leave it
				// to the reviewer.
				return r.pass("Material families could not be compared; verify block selection manually")
			}
			if partFam != blockFam {
				res := r.fail(fmt.Sprintf("Calibration block family %q does not match part family %q", blockFam, partFam))
				res.Field = "calibration.blockMaterial"
				res.CurrentValue = block
				res.ExpectedValue = partFam
				res.Suggestion = "Use a calibration block of the same material family as the part"
				return res
			}
			return r.pass("Calibration block material family matches the part")
		},
	},
	{
		ID: "calibration-certificate-date", Name: "Calibration certificate current", Category: CategoryCalibration, Severity: SeverityWarning,
		Check: func(r Rule, d Data) Result {
			raw := strings.TrimSpace(d.Calibration.CertificateDate)
			if raw == "" {
				res := r.fail("Calibration certificate date not specified")
				res.Field = "calibration.certificateDate"
				return res
			}
			date, err := time.Parse("2006-01-02", raw)
			if err != nil {
				res := r.fail(fmt.Sprintf("Calibration certificate date %q is not a valid date", raw))
				res.Field = "calibration.certificateDate"
				res.ExpectedValue = "YYYY-MM-DD"
				return res
			}
			age := int(time.Since(date).Hours() / 24)
			if age > maxCertificateAgeDays {
				res := r.fail(fmt.Sprintf("Calibration certificate is %d days old; maximum is %d", age, maxCertificateAgeDays))
				res.Field = "calibration.certificateDate"
				res.Suggestion = "Recalibrate the instrument and update the certificate"
				return res
			}
			return r.pass("Calibration certificate is current")
		},
	},
	{
		ID: "scan-index-positive", Name: "Scan index specified", Category: CategoryScan, Severity: SeverityWarning,
		Check: func(r Rule, d Data) Result {
			if d.Scan.ScanIndexMM <= 0 {
				res := r.fail("Scan index must be greater than zero")
				res.Field = "scan.scanIndexMM"
				res.ExpectedValue = "> 0"
				return res
			}
			return r.pass("Scan index specified")
		},
	},
	{
		ID: "scan-prf-minimum", Name: "PRF adequate for scan speed", Category: CategoryScan, Severity: SeverityInfo,
		Check: func(r Rule, d Data) Result {
			if d.Scan.ScanSpeedMMS <= 0 || d.Scan.PRFHz <= 0 {
				return r.pass("Scan speed or PRF not set; N/A")
			}
			// One pulse per assumed beam width of travel.
			required := d.Scan.ScanSpeedMMS / assumedBeamWidthMM
			if d.Scan.PRFHz < required {
				res := r.fail(fmt.Sprintf("PRF %.0f Hz is below the ~%.0f Hz needed at %.0f mm/s scan speed", d.Scan.PRFHz, required, d.Scan.ScanSpeedMMS))
				res.Field = "scan.prfHz"
				res.ExpectedValue = fmt.Sprintf(">= %.0f Hz", required)
				res.Suggestion = "Raise the PRF or slow the scan"
				return res
			}
			return r.pass("PRF adequate for the scan speed")
		},
	},
	{
		ID: "acceptance-titanium-aaa", Name: "Titanium class AAA separation", Category: CategoryAcceptance, Severity: SeverityInfo,
		Standards: []string{"AMS-STD-2154"},
		Check: func(r Rule, d Data) Result {
			if materialFamily(d.InspectionSetup.Material) != "titanium" || !strings.EqualFold(strings.TrimSpace(d.InspectionSetup.AcceptanceClass), "AAA") {
				return r.pass("N/A")
			}
			res := r.fail("Titanium class AAA requires the multiple-indication separation criteria of AMS-STD-2154")
			res.Reference = "AMS-STD-2154"
			res.Suggestion = "Document the linear-indication separation evaluation on the sheet"
			return res
		},
	},
	{
		ID: "standard-austenitic-material", Name: "Austenitic material standard fit", Category: CategoryStandard, Severity: SeverityInfo,
		Check: func(r Rule, d Data) Result {
			if materialFamily(d.InspectionSetup.Material) != "stainless" {
				return r.pass("N/A")
			}
			if d.Standard == "ISO-16810" {
				return r.pass("Austenitic material examined under a suitable standard")
			}
			res := r.fail("Austenitic materials scatter strongly; ISO-16810 practice is recommended")
			res.Reference = "ISO-16810"
			return res
		},
	},
	{
		ID: "documentation-procedure", Name: "Procedure number specified", Category: CategoryDocumentation, Severity: SeverityInfo,
		Check: func(r Rule, d Data) Result {
			if strings.TrimSpace(d.Documentation.ProcedureNumber) == "" {
				res := r.fail("Procedure number not specified")
				res.Field = "documentation.procedureNumber"
				return res
			}
			return r.pass("Procedure number specified")
		},
	},
	{
		ID: "documentation-revision", Name: "Sheet revision specified", Category: CategoryDocumentation, Severity: SeverityInfo,
		Check: func(r Rule, d Data) Result {
			if strings.TrimSpace(d.Documentation.Revision) == "" {
				res := r.fail("Sheet revision not specified")
				res.Field = "documentation.revision"
				return res
			}
			return r.pass("Sheet revision specified")
		},
	},
}
