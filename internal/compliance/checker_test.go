package compliance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validData() Data {
	return Data{
		Standard: "AMS-STD-2154",
		InspectionSetup: Setup{
			PartNumber:      "PN-1001",
			PartName:        "Forged disk",
			Material:        "Aluminum 7075-T6",
			Geometry:        "flat",
			ThicknessMM:     25,
			LengthMM:        300,
			WidthMM:         200,
			AcceptanceClass: "A",
		},
		Equipment: Equipment{
			Instrument:             "USM 36",
			InstrumentSerial:       "SN-4471",
			Probe:                  "B2S",
			Frequency:              "5 MHz",
			ProbeDiameterMM:        12.7,
			VerticalLinearityPct:   3,
			HorizontalLinearityPct: 1.5,
		},
		Calibration: Calibration{
			BlockID:         "CAL-AL-07",
			BlockMaterial:   "aluminum",
			CertificateDate: time.Now().AddDate(0, -2, 0).Format("2006-01-02"),
			ReferenceGainDB: 32,
		},
		Scan: Scan{
			ScanSpeedMMS:   100,
			ScanIndexMM:    2.5,
			PRFHz:          500,
			CouplingMethod: "immersion",
			WaterPathMM:    50,
		},
		Documentation: Documentation{
			ProcedureNumber: "NDT-OP-12",
			Revision:        "B",
			Operator:        "J. Smith",
			Date:            time.Now().Format("2006-01-02"),
		},
	}
}

func hasRule(results []Result, id string) bool {
	for _, r := range results {
		if r.RuleID == id {
			return true
		}
	}
	return false
}

func TestRunAllValid(t *testing.T) {
	report := Run(validData())
	assert.Equal(t, StatusPass, report.Status)
	assert.True(t, report.CanExport)
	assert.Equal(t, 100, report.OverallScore)
	assert.Empty(t, report.CriticalIssues)
	assert.Empty(t, report.Warnings)
	assert.Empty(t, report.Info)
	assert.NotEmpty(t, report.Summary)
}

func TestRunMissingPartNumber(t *testing.T) {
	data := validData()
	data.InspectionSetup.PartNumber = ""
	report := Run(data)

	assert.Equal(t, StatusFail, report.Status)
	assert.False(t, report.CanExport)
	require.NotEmpty(t, report.CriticalIssues)
	assert.True(t, hasRule(report.CriticalIssues, "setup-part-number"))
	assert.Less(t, report.OverallScore, 100)
}

func TestRunOptionalFieldsMissing(t *testing.T) {
	data := validData()
	data.Documentation = Documentation{}
	data.Calibration.CertificateDate = ""
	report := Run(data)

	// Warnings and info never block export; only critical does.
	assert.True(t, report.CanExport)
	assert.Empty(t, report.CriticalIssues)
	assert.Contains(t, []Status{StatusWarning, StatusPass}, report.Status)
	assert.True(t, hasRule(report.Warnings, "calibration-certificate-date"))
	assert.True(t, hasRule(report.Info, "documentation-procedure"))
}

func TestRunFrequencyOutsideStandardRange(t *testing.T) {
	data := validData()
	data.Equipment.Frequency = "25 MHz"
	report := Run(data)

	require.True(t, hasRule(report.CriticalIssues, "equipment-frequency-range"))
	for _, res := range report.CriticalIssues {
		if res.RuleID == "equipment-frequency-range" {
			assert.Equal(t, "1-10 MHz", res.ExpectedValue)
			assert.Equal(t, "25 MHz", res.CurrentValue)
		}
	}
	assert.False(t, report.CanExport)
}

func TestRunUnknownStandardSoftPass(t *testing.T) {
	data := validData()
	data.Standard = "MIL-X-9999"
	report := Run(data)

	// Unknown standards pass the table-driven checks with an explanatory
	// message rather than failing.
	assert.False(t, hasRule(report.CriticalIssues, "equipment-frequency-range"))
	assert.False(t, hasRule(report.Warnings, "equipment-vertical-linearity"))
	assert.True(t, report.CanExport)
}

func TestRunAggregateInvariants(t *testing.T) {
	scenarios := []func(Data) Data{
		func(d Data) Data { return d },
		func(d Data) Data { d.InspectionSetup.PartNumber = ""; return d },
		func(d Data) Data { d.Equipment.Frequency = "25 MHz"; return d },
		func(d Data) Data { d.Calibration.BlockMaterial = "steel"; return d },
		func(d Data) Data { d.InspectionSetup = Setup{}; d.Equipment = Equipment{}; return d },
	}
	for _, mutate := range scenarios {
		report := Run(mutate(validData()))
		assert.Equal(t, report.TotalRules, report.PassedRules+report.FailedRules)
		assert.Equal(t, report.FailedRules, len(report.CriticalIssues)+len(report.Warnings)+len(report.Info))
		assert.Equal(t, report.CanExport, len(report.CriticalIssues) == 0)
		assert.GreaterOrEqual(t, report.OverallScore, 0)
		assert.LessOrEqual(t, report.OverallScore, 100)
	}
}

func TestRunBlockMaterialMismatch(t *testing.T) {
	data := validData()
	data.Calibration.BlockMaterial = "1018 steel"
	report := Run(data)

	assert.True(t, hasRule(report.Warnings, "calibration-block-material"))
	assert.True(t, report.CanExport, "a block mismatch warns but never blocks export")
}

func TestRunBlockMaterialFuzzyMatch(t *testing.T) {
	data := validData()
	data.InspectionSetup.Material = "Al 7075 plate"
	data.Calibration.BlockMaterial = "Aluminum block #4"
	report := Run(data)
	assert.False(t, hasRule(report.Warnings, "calibration-block-material"))
}

func TestRunTitaniumAAAAdvisory(t *testing.T) {
	data := validData()
	data.InspectionSetup.Material = "Titanium 6Al-4V"
	data.InspectionSetup.AcceptanceClass = "AAA"
	data.Calibration.BlockMaterial = "titanium"
	report := Run(data)
	assert.True(t, hasRule(report.Info, "acceptance-titanium-aaa"))
	assert.True(t, report.CanExport)
}

func TestRunAusteniticAdvisory(t *testing.T) {
	data := validData()
	data.InspectionSetup.Material = "Stainless 304"
	data.Calibration.BlockMaterial = "stainless"
	report := Run(data)
	assert.True(t, hasRule(report.Info, "standard-austenitic-material"))
}

func TestRunStandardScopedRulesFiltered(t *testing.T) {
	data := validData()
	data.Standard = "ISO-16810"
	data.InspectionSetup.Material = "Titanium 6Al-4V"
	data.InspectionSetup.AcceptanceClass = "AAA"
	data.Calibration.BlockMaterial = "titanium"
	report := Run(data)
	// The titanium AAA advisory is registered for AMS-STD-2154 only.
	assert.False(t, hasRule(report.Results, "acceptance-titanium-aaa"))
}

func TestRunPanickingRuleIsContained(t *testing.T) {
	saved := rules
	defer func() { rules = saved }()
	rules = append(rules, Rule{
		ID: "test-panic", Name: "Panicking rule", Category: CategoryScan, Severity: SeverityCritical,
		Check: func(r Rule, d Data) Result {
			panic("boom")
		},
	})

	report := Run(validData())
	require.True(t, hasRule(report.Results, "test-panic"))
	// The synthesized failure is a warning, so a broken rule can never
	// block export on its own.
	assert.True(t, hasRule(report.Warnings, "test-panic"))
	assert.True(t, report.CanExport)
	for _, res := range report.Warnings {
		if res.RuleID == "test-panic" {
			assert.False(t, res.Passed)
			assert.Contains(t, res.Message, "boom")
		}
	}
}

func TestParseFrequencyMHz(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"5 MHz", 5, true},
		{"2.25MHz", 2.25, true},
		{"10", 10, true},
		{"", 0, false},
		{"MHz", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseFrequencyMHz(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if ok {
			assert.InDelta(t, tt.want, got, 1e-9, tt.in)
		}
	}
}
