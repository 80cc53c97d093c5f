package dac

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"scanmaster/internal/calc/materials"
)

const (
	DefaultRecordingLevel = 50.0  // % DAC
	DefaultRejectionLevel = 100.0 // % DAC
	DefaultTCGTarget      = 80.0  // % full screen height
)

type Input struct {
	Material             string    `json:"material"`
	FrequencyMHz         float64   `json:"frequency_mhz"`
	FBHDiameters         []string  `json:"fbh_diameters"`
	Depths               []float64 `json:"depths_mm"`
	ReferenceDepthMM     float64   `json:"reference_depth_mm"`
	ReferenceAmplitude   float64   `json:"reference_amplitude_pct"`
	ReferenceGainDB      float64   `json:"reference_gain_db"`
	TransferCorrectionDB float64   `json:"transfer_correction_db"`
}

type Point struct {
	DepthMM   float64 `json:"depth_mm"`
	Amplitude float64 `json:"amplitude_pct"`
	GainDB    float64 `json:"gain_db"`
	FBHSize   string  `json:"fbh_size"`
}

type Curve struct {
	ID                   string  `json:"id"`
	Points               []Point `json:"points"` // always sorted ascending by depth
	Material             string  `json:"material"`
	FrequencyMHz         float64 `json:"frequency_mhz"`
	VelocityMS           float64 `json:"velocity_ms"`
	AttenuationDBMM      float64 `json:"attenuation_db_mm"`
	TransferCorrectionDB float64 `json:"transfer_correction_db"`
	Equation             string  `json:"equation"`
	RecordingLevel       float64 `json:"recording_level_pct"`
	RejectionLevel       float64 `json:"rejection_level_pct"`
}

type TCGPoint struct {
	TimeUS float64 `json:"time_us"` // round-trip
	GainDB float64 `json:"gain_db"`
}

// TCGCurve is always derived from a DAC curve and rebuilt whenever that curve
// changes; SourceCurveID records the lineage.
type TCGCurve struct {
	SourceCurveID     string     `json:"source_curve_id"`
	Points            []TCGPoint `json:"points"`
	GateStartUS       float64    `json:"gate_start_us"`
	GateEndUS         float64    `json:"gate_end_us"`
	TotalCorrectionDB float64    `json:"total_correction_db"`
	TargetAmplitude   float64    `json:"target_amplitude_pct"`
}

type Output struct {
	Curve      Curve     `json:"curve"`
	TCG        TCGCurve  `json:"tcg_curve"`
	Depths     []float64 `json:"depths_mm"`
	Amplitudes []float64 `json:"amplitudes_pct"`
	Gains      []float64 `json:"gains_db"`
}

// AmplitudeAtDepth applies the 20*log10 distance law plus linear material
// attenuation relative to the reference reflector. The returned
// gainCorrection is the dB needed to restore the reference amplitude at that
// depth. Degenerate depths return the reference values unchanged.
func AmplitudeAtDepth(depthMM, refDepthMM, refAmplitude, attenuationDBMM float64) (amplitude, gainCorrection float64) {
	if depthMM <= 0 || refDepthMM <= 0 {
		return refAmplitude, 0
	}
	distanceLoss := 20.0 * math.Log10(depthMM/refDepthMM)
	attenLoss := attenuationDBMM * math.Abs(depthMM-refDepthMM)
	totalLoss := distanceLoss + attenLoss

	amplitude = refAmplitude * math.Pow(10, -totalLoss/20.0)
	if amplitude > 100 {
		amplitude = 100
	} else if amplitude < 0 {
		amplitude = 0
	}
	return amplitude, totalLoss
}

// Calculate builds a DAC curve from the reference-reflector data, derives its
// TCG counterpart at the 80% target, and returns flat plot arrays. Input
// depths may arrive in any order; the curve is always depth-sorted. A
// shorter FBH list than depth list is padded by repeating its last entry.
func Calculate(in Input) (Output, error) {
	if in.ReferenceDepthMM <= 0 || in.ReferenceAmplitude <= 0 {
		return Output{}, fmt.Errorf("invalid reference point")
	}
	if len(in.Depths) == 0 || len(in.FBHDiameters) == 0 {
		return Output{}, fmt.Errorf("depths and fbh diameters required")
	}

	depths := append([]float64(nil), in.Depths...)
	sort.Float64s(depths)

	props := materials.Lookup(in.Material)
	atten := materials.AttenuationAtFrequency(in.Material, in.FrequencyMHz)

	points := make([]Point, 0, len(depths))
	rawDepths := make([]float64, 0, len(depths))
	rawAmps := make([]float64, 0, len(depths))
	rawGains := make([]float64, 0, len(depths))
	for i, depth := range depths {
		fbhIdx := i
		if fbhIdx > len(in.FBHDiameters)-1 {
			fbhIdx = len(in.FBHDiameters) - 1
		}
		amp, gainCorr := AmplitudeAtDepth(depth, in.ReferenceDepthMM, in.ReferenceAmplitude, atten)
		gain := in.ReferenceGainDB + gainCorr
		points = append(points, Point{
			DepthMM:   depth,
			Amplitude: amp,
			GainDB:    gain,
			FBHSize:   in.FBHDiameters[fbhIdx],
		})
		rawDepths = append(rawDepths, depth)
		rawAmps = append(rawAmps, amp)
		rawGains = append(rawGains, gain)
	}

	curve := Curve{
		ID:                   uuid.NewString(),
		Points:               points,
		Material:             props.Name,
		FrequencyMHz:         in.FrequencyMHz,
		VelocityMS:           props.VelocityMS,
		AttenuationDBMM:      atten,
		TransferCorrectionDB: in.TransferCorrectionDB,
		Equation:             "A(d) = A0 * 10^(-(20*log10(d/d0) + a*|d-d0|)/20)",
		RecordingLevel:       DefaultRecordingLevel,
		RejectionLevel:       DefaultRejectionLevel,
	}
	return Output{
		Curve:      curve,
		TCG:        ConvertToTCG(curve, DefaultTCGTarget),
		Depths:     rawDepths,
		Amplitudes: rawAmps,
		Gains:      rawGains,
	}, nil
}

// ConvertToTCG maps each DAC point to round-trip time and the gain needed to
// bring its amplitude up to the target screen height. An empty curve yields
// the 0..100 us default gate rather than an error.
func ConvertToTCG(c Curve, targetAmplitude float64) TCGCurve {
	if targetAmplitude <= 0 {
		targetAmplitude = DefaultTCGTarget
	}
	out := TCGCurve{
		SourceCurveID:   c.ID,
		TargetAmplitude: targetAmplitude,
		GateStartUS:     0,
		GateEndUS:       100,
	}
	if len(c.Points) == 0 {
		return out
	}
	velocity := c.VelocityMS
	if velocity <= 0 {
		velocity = materials.Lookup(c.Material).VelocityMS
	}
	for _, p := range c.Points {
		t := 2.0 * p.DepthMM * 1000.0 / velocity // us, round trip
		gain := 0.0
		if p.Amplitude > 0 {
			gain = 20.0 * math.Log10(targetAmplitude/p.Amplitude)
		}
		out.Points = append(out.Points, TCGPoint{TimeUS: t, GainDB: gain})
	}
	out.GateStartUS = out.Points[0].TimeUS
	out.GateEndUS = out.Points[len(out.Points)-1].TimeUS
	out.TotalCorrectionDB = out.Points[len(out.Points)-1].GainDB - out.Points[0].GainDB
	return out
}

// InterpolateAmplitude returns the DAC amplitude at depth, linearly
// interpolated between curve points and clamped to the boundary values
// outside the curve's domain. An empty curve yields 0.
func InterpolateAmplitude(c Curve, depthMM float64) float64 {
	n := len(c.Points)
	if n == 0 {
		return 0
	}
	if depthMM <= c.Points[0].DepthMM {
		return c.Points[0].Amplitude
	}
	if depthMM >= c.Points[n-1].DepthMM {
		return c.Points[n-1].Amplitude
	}
	for i := 1; i < n; i++ {
		a, b := c.Points[i-1], c.Points[i]
		if depthMM <= b.DepthMM {
			frac := (depthMM - a.DepthMM) / (b.DepthMM - a.DepthMM)
			return a.Amplitude + frac*(b.Amplitude-a.Amplitude)
		}
	}
	return c.Points[n-1].Amplitude
}

// InterpolateTCGGain returns the gain adjustment at a gate time, with the
// same clamp-to-boundary behavior as the DAC interpolation.
func InterpolateTCGGain(c TCGCurve, timeUS float64) float64 {
	n := len(c.Points)
	if n == 0 {
		return 0
	}
	if timeUS <= c.Points[0].TimeUS {
		return c.Points[0].GainDB
	}
	if timeUS >= c.Points[n-1].TimeUS {
		return c.Points[n-1].GainDB
	}
	for i := 1; i < n; i++ {
		a, b := c.Points[i-1], c.Points[i]
		if timeUS <= b.TimeUS {
			frac := (timeUS - a.TimeUS) / (b.TimeUS - a.TimeUS)
			return a.GainDB + frac*(b.GainDB-a.GainDB)
		}
	}
	return c.Points[n-1].GainDB
}

type Evaluation struct {
	PercentDAC   float64 `json:"percent_dac"`
	IsAcceptable bool    `json:"is_acceptable"`
	IsRecordable bool    `json:"is_recordable"`
}

// Evaluate rates an indication amplitude against the curve. A zero DAC
// amplitude is degenerate but defined: 0% DAC, acceptable, not recordable.
func Evaluate(c Curve, depthMM, amplitude float64) Evaluation {
	dacAmp := InterpolateAmplitude(c, depthMM)
	if dacAmp <= 0 {
		return Evaluation{PercentDAC: 0, IsAcceptable: true, IsRecordable: false}
	}
	recording := c.RecordingLevel
	if recording <= 0 {
		recording = DefaultRecordingLevel
	}
	rejection := c.RejectionLevel
	if rejection <= 0 {
		rejection = DefaultRejectionLevel
	}
	pct := amplitude / dacAmp * 100.0
	return Evaluation{
		PercentDAC:   pct,
		IsAcceptable: pct <= rejection,
		IsRecordable: pct >= recording,
	}
}
