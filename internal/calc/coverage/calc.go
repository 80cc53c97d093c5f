package coverage

import (
	"fmt"
	"math"
)

const DefaultVelocityMS = 5920.0

type BeamType string

const (
	BeamStraight BeamType = "straight"
	BeamAngle    BeamType = "angle"
)

type Probe struct {
	FrequencyMHz      float64  `json:"frequency_mhz"`
	ElementDiameterMM float64  `json:"element_diameter_mm"`
	NearFieldMM       float64  `json:"near_field_mm"`       // derived when zero
	BeamDivergenceDeg float64  `json:"beam_divergence_deg"` // derived when zero
	FocusDepthMM      float64  `json:"focus_depth_mm"`
	VelocityMS        float64  `json:"velocity_ms"`
	Type              BeamType `json:"type"`
}

type Dimensions struct {
	LengthMM    float64 `json:"length_mm"`
	WidthMM     float64 `json:"width_mm"`
	ThicknessMM float64 `json:"thickness_mm"`
}

type Input struct {
	Probe       Probe      `json:"probe"`
	Dims        Dimensions `json:"dimensions"`
	ScanIndexMM float64    `json:"scan_index_mm"`
	ScanSpeedMM float64    `json:"scan_speed_mm_s"`
	OverlapPct  float64    `json:"overlap_pct"`
	WaterPathMM float64    `json:"water_path_mm"`
}

type BeamProfile struct {
	DepthMM         float64 `json:"depth_mm"`
	BeamDiameterMM  float64 `json:"beam_diameter_mm"`
	Sensitivity     float64 `json:"sensitivity"`
	WithinNearField bool    `json:"within_near_field"`
}

type DeadZoneType string

const (
	DeadZoneNearSurface DeadZoneType = "near_surface"
	DeadZoneBackWall    DeadZoneType = "back_wall"
	DeadZoneEdge        DeadZoneType = "edge"
)

type DeadZone struct {
	Type     DeadZoneType `json:"type"`
	StartMM  float64      `json:"start_mm"`
	EndMM    float64      `json:"end_mm"`
	Location string       `json:"location,omitempty"`
	Reason   string       `json:"reason"`
}

type Resolution struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Heatmap struct {
	Grid [][]float64 `json:"grid"` // [depth row][lateral column], intensity 0..1
	Rows int         `json:"rows"`
	Cols int         `json:"cols"`
}

type Result struct {
	OverallCoverage   float64       `json:"overall_coverage_pct"`
	EffectiveCoverage float64       `json:"effective_coverage_pct"`
	NumPasses         int           `json:"num_passes"`
	OptimalIndexMM    float64       `json:"optimal_index_mm"`
	ScanTimeS         float64       `json:"scan_time_s,omitempty"`
	DeadZones         []DeadZone    `json:"dead_zones"`
	Warnings          []string      `json:"warnings"`
	Recommendations   []string      `json:"recommendations"`
	BeamProfiles      []BeamProfile `json:"beam_profiles"`
	Heatmap           Heatmap       `json:"heatmap"`
}

// NearField returns the near-field length in mm: N = D^2*f/(4*v).
// Velocity is m/s, converted internally to mm/us. Zero diameter legitimately
// yields a zero near field.
func NearField(diameterMM, freqMHz, velocityMS float64) float64 {
	if velocityMS <= 0 {
		velocityMS = DefaultVelocityMS
	}
	v := velocityMS / 1000.0 // mm/us
	return diameterMM * diameterMM * freqMHz / (4.0 * v)
}

// BeamDivergence returns the half-angle in degrees: asin(1.22*lambda/D).
// The asin argument is clamped to [-1,1]; high-frequency/large-diameter
// combinations would otherwise push it past 1 and produce NaN. The clamp
// gives a 90 degree ceiling.
func BeamDivergence(diameterMM, freqMHz, velocityMS float64) float64 {
	if velocityMS <= 0 {
		velocityMS = DefaultVelocityMS
	}
	if diameterMM <= 0 || freqMHz <= 0 {
		return 0
	}
	lambda := (velocityMS / 1000.0) / freqMHz // mm
	ratio := 1.22 * lambda / diameterMM
	if ratio > 1 {
		ratio = 1
	} else if ratio < -1 {
		ratio = -1
	}
	return math.Asin(ratio) * 180.0 / math.Pi
}

// prepared fills the cached derived fields (near field, divergence) when the
// caller did not supply overrides.
func prepared(p Probe) Probe {
	if p.VelocityMS <= 0 {
		p.VelocityMS = DefaultVelocityMS
	}
	if p.NearFieldMM <= 0 {
		p.NearFieldMM = NearField(p.ElementDiameterMM, p.FrequencyMHz, p.VelocityMS)
	}
	if p.BeamDivergenceDeg <= 0 {
		p.BeamDivergenceDeg = BeamDivergence(p.ElementDiameterMM, p.FrequencyMHz, p.VelocityMS)
	}
	return p
}

// BeamDiameterAtDepth is piecewise: inside the near field the element
// diameter is scaled by a factor interpolating 0.9..1.0 with depth; past the
// near field the beam spreads linearly with the divergence angle. The step at
// depth == nearField matches conventional beam-spread charts and is
// intentional.
func BeamDiameterAtDepth(p Probe, depthMM, nearFieldMM float64) float64 {
	if depthMM < nearFieldMM && nearFieldMM > 0 {
		factor := 0.9 + 0.1*(depthMM/nearFieldMM)
		return p.ElementDiameterMM * factor
	}
	divRad := p.BeamDivergenceDeg * math.Pi / 180.0
	return p.ElementDiameterMM + 2.0*(depthMM-nearFieldMM)*math.Tan(divRad)
}

// SensitivityAtDepth returns a relative sensitivity in [0,1]. With a focus
// depth the falloff is triangular around the focus with a 0.3 floor.
// Otherwise a three-zone heuristic: flat 0.6 inside 0.2*N (surface noise
// penalty), linear ramp 0.7..1.0 up to the near field, then a gradual decay
// with a 0.3 floor. Engineering approximations, not exact field physics.
func SensitivityAtDepth(depthMM, nearFieldMM, focusDepthMM float64) float64 {
	if focusDepthMM > 0 {
		s := 1.0 - math.Abs(depthMM-focusDepthMM)/focusDepthMM
		if s < 0.3 {
			s = 0.3
		}
		return s
	}
	if nearFieldMM <= 0 {
		return 0.3
	}
	switch {
	case depthMM < 0.2*nearFieldMM:
		return 0.6
	case depthMM < nearFieldMM:
		return 0.7 + 0.3*(depthMM/nearFieldMM)
	default:
		s := 1.0 - 0.1*(depthMM/nearFieldMM-1.0)
		if s < 0.3 {
			s = 0.3
		}
		return s
	}
}

// BeamProfiles samples the beam every stepMM from stepMM down to maxDepthMM.
func BeamProfiles(p Probe, maxDepthMM, stepMM float64) []BeamProfile {
	if stepMM <= 0 {
		stepMM = 1
	}
	p = prepared(p)
	var profiles []BeamProfile
	for depth := stepMM; depth <= maxDepthMM+1e-9; depth += stepMM {
		profiles = append(profiles, BeamProfile{
			DepthMM:         depth,
			BeamDiameterMM:  BeamDiameterAtDepth(p, depth, p.NearFieldMM),
			Sensitivity:     SensitivityAtDepth(depth, p.NearFieldMM, p.FocusDepthMM),
			WithinNearField: depth < p.NearFieldMM,
		})
	}
	return profiles
}

// OptimalIndex is the beam diameter at max depth reduced by the overlap
// fraction. Larger overlap gives a smaller, more conservative index.
func OptimalIndex(p Probe, maxDepthMM, overlapPct float64) float64 {
	if overlapPct <= 0 {
		overlapPct = 15
	}
	p = prepared(p)
	return BeamDiameterAtDepth(p, maxDepthMM, p.NearFieldMM) * (1.0 - overlapPct/100.0)
}

// DeadZones identifies the regions the scan cannot resolve. Immersion
// coupling (waterPath > 0) has a much smaller front dead zone than contact.
func DeadZones(p Probe, dims Dimensions, waterPathMM float64) []DeadZone {
	p = prepared(p)
	var zones []DeadZone

	nearEnd := math.Min(3.0, 0.1*p.NearFieldMM)
	if waterPathMM > 0 {
		nearEnd = 0.5
	}
	zones = append(zones, DeadZone{
		Type:    DeadZoneNearSurface,
		StartMM: 0,
		EndMM:   nearEnd,
		Reason:  "Initial pulse ring-down obscures near-surface reflectors",
	})

	backDepth := math.Min(2.0, 0.02*dims.ThicknessMM)
	zones = append(zones, DeadZone{
		Type:    DeadZoneBackWall,
		StartMM: dims.ThicknessMM - backDepth,
		EndMM:   dims.ThicknessMM,
		Reason:  "Back-wall echo masks reflectors just above the back surface",
	})

	if dims.LengthMM > 0 && dims.WidthMM > 0 {
		limit := 3.0 * p.ElementDiameterMM
		if dims.LengthMM < limit || dims.WidthMM < limit {
			zones = append(zones, DeadZone{
				Type:     DeadZoneEdge,
				StartMM:  0,
				EndMM:    dims.ThicknessMM,
				Location: "Part edges",
				Reason:   "Part dimension under 3x element diameter; edge effects distort the beam",
			})
		}
	}
	return zones
}

// GenerateHeatmap builds a depth-by-lateral grid of coverage intensity in
// [0,1]. Each cell takes the max over overlapping passes of a Gaussian
// falloff exp(-2*(dist/halfWidth)^2) scaled by the depth sensitivity.
// Overlapping passes are combined with max, never summed, so constructive
// interference is not modeled.
func GenerateHeatmap(in Input, res Resolution) Heatmap {
	if res.X <= 0 {
		res.X = 1
	}
	if res.Y <= 0 {
		res.Y = 1
	}
	p := prepared(in.Probe)
	width := scanWidth(in.Dims)

	rows := int(math.Ceil(in.Dims.ThicknessMM / res.Y))
	cols := int(math.Ceil(width / res.X))
	if rows <= 0 || cols <= 0 {
		return Heatmap{Grid: [][]float64{}}
	}

	numPasses := int(math.Ceil(width / in.ScanIndexMM))
	grid := make([][]float64, rows)
	for r := 0; r < rows; r++ {
		depth := (float64(r) + 0.5) * res.Y
		halfWidth := BeamDiameterAtDepth(p, depth, p.NearFieldMM) / 2.0
		sens := SensitivityAtDepth(depth, p.NearFieldMM, p.FocusDepthMM)

		row := make([]float64, cols)
		for c := 0; c < cols; c++ {
			x := (float64(c) + 0.5) * res.X
			best := 0.0
			for pass := 0; pass < numPasses; pass++ {
				center := float64(pass)*in.ScanIndexMM + in.ScanIndexMM/2.0
				dist := math.Abs(x - center)
				if halfWidth <= 0 || dist > halfWidth {
					continue
				}
				v := math.Exp(-2.0*(dist/halfWidth)*(dist/halfWidth)) * sens
				if v > best {
					best = v
				}
			}
			row[c] = best
		}
		grid[r] = row
	}
	return Heatmap{Grid: grid, Rows: rows, Cols: cols}
}

// scanWidth picks the lateral extent of the scan; width and length stand in
// for each other when one is absent.
func scanWidth(d Dimensions) float64 {
	if d.WidthMM > 0 {
		return d.WidthMM
	}
	return d.LengthMM
}

// Calculate runs the full coverage analysis for one parameter set.
func Calculate(in Input) (Result, error) {
	if in.Dims.ThicknessMM <= 0 || in.ScanIndexMM <= 0 {
		return Result{}, fmt.Errorf("invalid input")
	}
	if in.Probe.FrequencyMHz <= 0 || in.Probe.ElementDiameterMM <= 0 {
		return Result{}, fmt.Errorf("invalid probe")
	}
	if scanWidth(in.Dims) <= 0 {
		return Result{}, fmt.Errorf("part width or length required")
	}
	p := prepared(in.Probe)
	in.Probe = p
	width := scanWidth(in.Dims)

	profiles := BeamProfiles(p, in.Dims.ThicknessMM, 1)
	zones := DeadZones(p, in.Dims, in.WaterPathMM)
	heatmap := GenerateHeatmap(in, Resolution{X: 1, Y: 1})

	covered, total := 0, 0
	for _, row := range heatmap.Grid {
		for _, v := range row {
			total++
			if v >= 0.5 {
				covered++
			}
		}
	}
	overall := 0.0
	if total > 0 {
		overall = float64(covered) / float64(total) * 100.0
	}

	// Edge zones span the full thickness laterally; only depth-banded zones
	// discount the effective coverage.
	deadDepth := 0.0
	for _, z := range zones {
		if z.Type == DeadZoneEdge {
			continue
		}
		deadDepth += z.EndMM - z.StartMM
	}
	factor := (in.Dims.ThicknessMM - deadDepth) / in.Dims.ThicknessMM
	if factor < 0 {
		factor = 0
	}
	effective := overall * factor

	numPasses := int(math.Ceil(width / in.ScanIndexMM))
	overlap := in.OverlapPct
	if overlap <= 0 {
		overlap = 15
	}
	optimal := OptimalIndex(p, in.Dims.ThicknessMM, overlap)

	var warnings, recs []string
	if optimal > 0 && in.ScanIndexMM > 1.5*optimal {
		warnings = append(warnings, fmt.Sprintf("Scan index %.1f mm exceeds 1.5x the optimal index %.1f mm; coverage gaps likely", in.ScanIndexMM, optimal))
		recs = append(recs, fmt.Sprintf("Reduce scan index to %.1f mm or below", optimal))
	}
	if in.Dims.ThicknessMM > 4.0*p.NearFieldMM {
		warnings = append(warnings, "Part thickness exceeds 4x the probe near field; far-zone sensitivity is reduced")
		recs = append(recs, "Consider a lower frequency or larger element diameter probe")
	}

	res := Result{
		OverallCoverage:   overall,
		EffectiveCoverage: effective,
		NumPasses:         numPasses,
		OptimalIndexMM:    optimal,
		DeadZones:         zones,
		Warnings:          warnings,
		Recommendations:   recs,
		BeamProfiles:      profiles,
		Heatmap:           heatmap,
	}
	if in.ScanSpeedMM > 0 && in.Dims.LengthMM > 0 {
		res.ScanTimeS = float64(numPasses) * in.Dims.LengthMM / in.ScanSpeedMM
	}
	return res, nil
}
