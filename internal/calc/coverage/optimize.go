package coverage

import (
	"fmt"

	"scanmaster/internal/calc/materials"
)

// Candidate overlaps tried during optimization, ascending so the first hit is
// the fastest scan.
var overlapCandidates = []float64{10, 15, 20, 25, 30, 40, 50}

type OptimizeOptions struct {
	TargetCoverage float64 `json:"target_coverage_pct"`
	MaxPasses      int     `json:"max_passes,omitempty"`
	PreferSpeed    bool    `json:"prefer_speed,omitempty"`
}

type OptimizationResult struct {
	OverlapPct       float64  `json:"overlap_pct"`
	ScanIndexMM      float64  `json:"scan_index_mm"`
	NumPasses        int      `json:"num_passes"`
	AchievedCoverage float64  `json:"achieved_coverage_pct"`
	MeetsTarget      bool     `json:"meets_target"`
	Tradeoffs        []string `json:"tradeoffs"`
}

// Optimize searches the fixed overlap candidate set for a scan index that
// reaches the target coverage. With PreferSpeed the first (lowest-overlap)
// candidate that meets the target wins; otherwise the candidate with the
// highest achieved coverage among those meeting it. Optimization never
// fails: with no feasible candidate it degrades to a 25% overlap best-effort
// configuration annotated with tradeoff messages.
func Optimize(in Input, opts OptimizeOptions) OptimizationResult {
	type candidate struct {
		overlap  float64
		index    float64
		passes   int
		coverage float64
	}
	var best *candidate

	for _, overlap := range overlapCandidates {
		trial, passes, cov, ok := tryOverlap(in, overlap, opts.MaxPasses)
		if !ok {
			continue
		}
		if cov < opts.TargetCoverage {
			continue
		}
		c := candidate{overlap: overlap, index: trial, passes: passes, coverage: cov}
		if opts.PreferSpeed {
			return OptimizationResult{
				OverlapPct:       c.overlap,
				ScanIndexMM:      c.index,
				NumPasses:        c.passes,
				AchievedCoverage: c.coverage,
				MeetsTarget:      true,
			}
		}
		if best == nil || c.coverage > best.coverage {
			cc := c
			best = &cc
		}
	}
	if best != nil {
		return OptimizationResult{
			OverlapPct:       best.overlap,
			ScanIndexMM:      best.index,
			NumPasses:        best.passes,
			AchievedCoverage: best.coverage,
			MeetsTarget:      true,
		}
	}

	// Best-effort fallback at the default 25% overlap.
	index, passes, cov, ok := tryOverlap(in, 25, 0)
	out := OptimizationResult{
		OverlapPct:       25,
		ScanIndexMM:      index,
		NumPasses:        passes,
		AchievedCoverage: cov,
		MeetsTarget:      false,
		Tradeoffs: []string{
			fmt.Sprintf("Target coverage %.0f%% is not reachable with the current probe and constraints", opts.TargetCoverage),
		},
	}
	if ok {
		out.Tradeoffs = append(out.Tradeoffs, fmt.Sprintf("Best effort at 25%% overlap achieves %.1f%% coverage over %d passes", cov, passes))
	} else {
		out.Tradeoffs = append(out.Tradeoffs, "Input parameters do not admit a valid scan plan; review probe and part dimensions")
	}
	return out
}

func tryOverlap(in Input, overlapPct float64, maxPasses int) (indexMM float64, passes int, coverage float64, ok bool) {
	indexMM = OptimalIndex(in.Probe, in.Dims.ThicknessMM, overlapPct)
	if indexMM <= 0 {
		return 0, 0, 0, false
	}
	trial := in
	trial.ScanIndexMM = indexMM
	trial.OverlapPct = overlapPct
	res, err := Calculate(trial)
	if err != nil {
		return 0, 0, 0, false
	}
	if maxPasses > 0 && res.NumPasses > maxPasses {
		return 0, 0, 0, false
	}
	return indexMM, res.NumPasses, res.OverallCoverage, true
}

type Recommendation struct {
	FrequencyMHz float64 `json:"frequency_mhz"`
	DiameterMM   float64 `json:"diameter_mm"`
	ScanIndexMM  float64 `json:"scan_index_mm"`
	OverlapPct   float64 `json:"overlap_pct"`
	Notes        string  `json:"notes"`
}

// RecommendedSettings maps part thickness and material to a starting probe
// selection via a static decision table: frequency steps down and element
// diameter steps up as thickness grows.
func RecommendedSettings(thicknessMM float64, material string, targetCoverage float64) Recommendation {
	var freq float64
	switch {
	case thicknessMM <= 10:
		freq = 10
	case thicknessMM <= 25:
		freq = 5
	case thicknessMM <= 75:
		freq = 2.25
	default:
		freq = 1
	}
	var dia float64
	switch {
	case thicknessMM <= 15:
		dia = 9.5
	case thicknessMM <= 50:
		dia = 12.7
	default:
		dia = 19.05
	}
	overlap := 15.0
	if targetCoverage >= 100 {
		overlap = 20.0
	}
	props := materials.Lookup(material)
	probe := Probe{
		FrequencyMHz:      freq,
		ElementDiameterMM: dia,
		VelocityMS:        props.VelocityMS,
		Type:              BeamStraight,
	}
	return Recommendation{
		FrequencyMHz: freq,
		DiameterMM:   dia,
		ScanIndexMM:  OptimalIndex(probe, thicknessMM, overlap),
		OverlapPct:   overlap,
		Notes:        fmt.Sprintf("Starting point for %.1f mm %s; verify against the governing standard", thicknessMM, props.Name),
	}
}
