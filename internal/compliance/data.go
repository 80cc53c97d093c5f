package compliance

// Data is the immutable technique-sheet snapshot a compliance run inspects.
// The caller assembles it from full form state before export.
type Data struct {
	Standard        string        `json:"standard"`
	InspectionSetup Setup         `json:"inspection_setup"`
	Equipment       Equipment     `json:"equipment"`
	Calibration     Calibration   `json:"calibration"`
	Scan            Scan          `json:"scan"`
	Documentation   Documentation `json:"documentation"`
}

type Setup struct {
	PartNumber      string  `json:"part_number"`
	PartName        string  `json:"part_name"`
	Material        string  `json:"material"`
	Geometry        string  `json:"geometry"`
	ThicknessMM     float64 `json:"thickness_mm"`
	LengthMM        float64 `json:"length_mm"`
	WidthMM         float64 `json:"width_mm"`
	AcceptanceClass string  `json:"acceptance_class"`
}

type Equipment struct {
	Instrument             string  `json:"instrument"`
	InstrumentSerial       string  `json:"instrument_serial"`
	Probe                  string  `json:"probe"`
	Frequency              string  `json:"frequency"` // free text, e.g. "5 MHz"
	ProbeDiameterMM        float64 `json:"probe_diameter_mm"`
	VerticalLinearityPct   float64 `json:"vertical_linearity_pct"`
	HorizontalLinearityPct float64 `json:"horizontal_linearity_pct"`
}

type Calibration struct {
	BlockID         string  `json:"block_id"`
	BlockMaterial   string  `json:"block_material"`
	CertificateDate string  `json:"certificate_date"` // YYYY-MM-DD
	ReferenceGainDB float64 `json:"reference_gain_db"`
}

type Scan struct {
	ScanSpeedMMS   float64 `json:"scan_speed_mm_s"`
	ScanIndexMM    float64 `json:"scan_index_mm"`
	PRFHz          float64 `json:"prf_hz"`
	CouplingMethod string  `json:"coupling_method"`
	WaterPathMM    float64 `json:"water_path_mm"`
}

type Documentation struct {
	ProcedureNumber string `json:"procedure_number"`
	Revision        string `json:"revision"`
	Operator        string `json:"operator"`
	Date            string `json:"date"`
}
