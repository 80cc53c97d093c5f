package coverage

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProbe() Probe {
	return Probe{
		FrequencyMHz:      5,
		ElementDiameterMM: 12.7,
		VelocityMS:        5920,
		Type:              BeamStraight,
	}
}

func TestNearField(t *testing.T) {
	tests := []struct {
		name     string
		diameter float64
		freq     float64
		velocity float64
		expected float64
	}{
		{
			name:     "12.7mm 5MHz steel",
			diameter: 12.7, freq: 5, velocity: 5920,
			expected: 12.7 * 12.7 * 5 / (4 * 5.92),
		},
		{
			name:     "default velocity on zero",
			diameter: 12.7, freq: 5, velocity: 0,
			expected: 12.7 * 12.7 * 5 / (4 * 5.92),
		},
		{
			name:     "zero diameter yields zero",
			diameter: 0, freq: 5, velocity: 5920,
			expected: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, NearField(tt.diameter, tt.freq, tt.velocity), 1e-9)
		})
	}
}

func TestNearFieldDeterminism(t *testing.T) {
	a := NearField(9.5, 2.25, 6320)
	b := NearField(9.5, 2.25, 6320)
	assert.Equal(t, a, b)
}

func TestBeamDivergenceClamp(t *testing.T) {
	// 0.5 mm element at 1 MHz: 1.22*lambda/D is far past 1, so the clamp
	// must give exactly 90 degrees, never NaN.
	got := BeamDivergence(0.5, 1, 5920)
	require.False(t, math.IsNaN(got))
	assert.InDelta(t, 90.0, got, 1e-9)
}

func TestBeamDivergenceTypical(t *testing.T) {
	got := BeamDivergence(12.7, 5, 5920)
	lambda := 5.92 / 5.0
	want := math.Asin(1.22*lambda/12.7) * 180 / math.Pi
	assert.InDelta(t, want, got, 1e-9)
	assert.Greater(t, got, 0.0)
	assert.Less(t, got, 90.0)
}

func TestBeamDiameterAtDepth(t *testing.T) {
	p := prepared(testProbe())
	n := p.NearFieldMM

	t.Run("near field scales element diameter 0.9 to 1.0", func(t *testing.T) {
		atZero := BeamDiameterAtDepth(p, 0, n)
		assert.InDelta(t, 0.9*p.ElementDiameterMM, atZero, 1e-9)
		nearBoundary := BeamDiameterAtDepth(p, n*0.999, n)
		assert.Less(t, nearBoundary, p.ElementDiameterMM)
		assert.Greater(t, nearBoundary, 0.9*p.ElementDiameterMM)
	})

	t.Run("far field diverges linearly from element diameter", func(t *testing.T) {
		atBoundary := BeamDiameterAtDepth(p, n, n)
		assert.InDelta(t, p.ElementDiameterMM, atBoundary, 1e-9)
		deeper := BeamDiameterAtDepth(p, 2*n, n)
		assert.Greater(t, deeper, atBoundary)
	})
}

func TestSensitivityAtDepth(t *testing.T) {
	n := 30.0
	tests := []struct {
		name  string
		depth float64
		focus float64
		check func(t *testing.T, got float64)
	}{
		{"surface zone flat 0.6", 0.1 * n, 0, func(t *testing.T, got float64) {
			assert.InDelta(t, 0.6, got, 1e-9)
		}},
		{"near field ramp", 0.5 * n, 0, func(t *testing.T, got float64) {
			assert.InDelta(t, 0.85, got, 1e-9)
		}},
		{"near field boundary hits 1.0", n, 0, func(t *testing.T, got float64) {
			assert.InDelta(t, 1.0, got, 1e-9)
		}},
		{"deep decay floors at 0.3", 20 * n, 0, func(t *testing.T, got float64) {
			assert.InDelta(t, 0.3, got, 1e-9)
		}},
		{"at focus full sensitivity", 25, 25, func(t *testing.T, got float64) {
			assert.InDelta(t, 1.0, got, 1e-9)
		}},
		{"far from focus floors at 0.3", 120, 25, func(t *testing.T, got float64) {
			assert.InDelta(t, 0.3, got, 1e-9)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, SensitivityAtDepth(tt.depth, n, tt.focus))
		})
	}
}

func TestBeamProfiles(t *testing.T) {
	p := testProbe()
	profiles := BeamProfiles(p, 10, 1)
	require.Len(t, profiles, 10)
	assert.InDelta(t, 1.0, profiles[0].DepthMM, 1e-9)
	assert.InDelta(t, 10.0, profiles[9].DepthMM, 1e-9)

	n := NearField(p.ElementDiameterMM, p.FrequencyMHz, p.VelocityMS)
	for _, pr := range profiles {
		assert.Equal(t, pr.DepthMM < n, pr.WithinNearField)
		assert.Greater(t, pr.BeamDiameterMM, 0.0)
		assert.GreaterOrEqual(t, pr.Sensitivity, 0.3)
		assert.LessOrEqual(t, pr.Sensitivity, 1.0)
	}
}

func TestOptimalIndexOverlap(t *testing.T) {
	p := testProbe()
	low := OptimalIndex(p, 25, 10)
	high := OptimalIndex(p, 25, 50)
	assert.Greater(t, low, high, "more overlap must give a smaller index")
	assert.Greater(t, high, 0.0)
}

func TestDeadZones(t *testing.T) {
	p := testProbe()
	dims := Dimensions{LengthMM: 300, WidthMM: 200, ThicknessMM: 50}

	t.Run("contact coupling", func(t *testing.T) {
		zones := DeadZones(p, dims, 0)
		require.Len(t, zones, 2)
		assert.Equal(t, DeadZoneNearSurface, zones[0].Type)
		n := NearField(p.ElementDiameterMM, p.FrequencyMHz, p.VelocityMS)
		assert.InDelta(t, math.Min(3, 0.1*n), zones[0].EndMM, 1e-9)
		assert.Equal(t, DeadZoneBackWall, zones[1].Type)
		assert.InDelta(t, 50.0, zones[1].EndMM, 1e-9)
		assert.InDelta(t, 49.0, zones[1].StartMM, 1e-9) // min(2, 0.02*50)=1
	})

	t.Run("immersion shrinks the front dead zone", func(t *testing.T) {
		zones := DeadZones(p, dims, 25)
		assert.InDelta(t, 0.5, zones[0].EndMM, 1e-9)
	})

	t.Run("small part adds an edge zone", func(t *testing.T) {
		small := Dimensions{LengthMM: 30, WidthMM: 200, ThicknessMM: 50}
		zones := DeadZones(p, small, 0)
		require.Len(t, zones, 3)
		assert.Equal(t, DeadZoneEdge, zones[2].Type)
		assert.Equal(t, "Part edges", zones[2].Location)
		assert.InDelta(t, 50.0, zones[2].EndMM, 1e-9)
	})

	t.Run("ranges stay within the part thickness", func(t *testing.T) {
		for _, z := range DeadZones(p, dims, 0) {
			assert.GreaterOrEqual(t, z.StartMM, 0.0)
			assert.LessOrEqual(t, z.EndMM, dims.ThicknessMM)
			assert.LessOrEqual(t, z.StartMM, z.EndMM)
		}
	})
}

func TestCalculateBounds(t *testing.T) {
	inputs := []Input{
		{Probe: testProbe(), Dims: Dimensions{LengthMM: 300, WidthMM: 100, ThicknessMM: 25}, ScanIndexMM: 5},
		{Probe: testProbe(), Dims: Dimensions{LengthMM: 300, WidthMM: 100, ThicknessMM: 25}, ScanIndexMM: 40},
		{Probe: Probe{FrequencyMHz: 1, ElementDiameterMM: 2}, Dims: Dimensions{WidthMM: 50, ThicknessMM: 80}, ScanIndexMM: 10},
	}
	for _, in := range inputs {
		res, err := Calculate(in)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.OverallCoverage, 0.0)
		assert.LessOrEqual(t, res.OverallCoverage, 100.0)
		assert.GreaterOrEqual(t, res.EffectiveCoverage, 0.0)
		assert.LessOrEqual(t, res.EffectiveCoverage, res.OverallCoverage)
		assert.Equal(t, int(math.Ceil(in.Dims.WidthMM/in.ScanIndexMM)), res.NumPasses)
	}
}

func TestCalculateWarningsAndScanTime(t *testing.T) {
	in := Input{
		Probe:       testProbe(),
		Dims:        Dimensions{LengthMM: 300, WidthMM: 100, ThicknessMM: 25},
		ScanIndexMM: 40, // far beyond any optimal index
		ScanSpeedMM: 50,
	}
	res, err := Calculate(in)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Warnings)
	assert.NotEmpty(t, res.Recommendations)
	assert.InDelta(t, float64(res.NumPasses)*300/50, res.ScanTimeS, 1e-9)
}

func TestCalculateInvalidInput(t *testing.T) {
	_, err := Calculate(Input{Probe: testProbe(), Dims: Dimensions{WidthMM: 100}, ScanIndexMM: 5})
	assert.Error(t, err, "zero thickness")

	_, err = Calculate(Input{Probe: testProbe(), Dims: Dimensions{WidthMM: 100, ThicknessMM: 25}})
	assert.Error(t, err, "zero scan index")
}

func TestOptimizeUnreachableTarget(t *testing.T) {
	in := Input{
		Probe:       Probe{FrequencyMHz: 1, ElementDiameterMM: 0.5},
		Dims:        Dimensions{LengthMM: 500, WidthMM: 400, ThicknessMM: 100},
		ScanIndexMM: 5,
	}
	res := Optimize(in, OptimizeOptions{TargetCoverage: 100, MaxPasses: 1})
	assert.False(t, res.MeetsTarget)
	assert.NotEmpty(t, res.Tradeoffs)
	assert.InDelta(t, 25.0, res.OverlapPct, 1e-9)
}

func TestOptimizeMeetsTarget(t *testing.T) {
	in := Input{
		Probe:       testProbe(),
		Dims:        Dimensions{LengthMM: 300, WidthMM: 100, ThicknessMM: 25},
		ScanIndexMM: 5,
	}
	res := Optimize(in, OptimizeOptions{TargetCoverage: 30})
	require.True(t, res.MeetsTarget)
	assert.GreaterOrEqual(t, res.AchievedCoverage, 30.0)
	assert.Greater(t, res.ScanIndexMM, 0.0)
	assert.Empty(t, res.Tradeoffs)
}

func TestOptimizePreferSpeedTakesLowestOverlap(t *testing.T) {
	in := Input{
		Probe:       testProbe(),
		Dims:        Dimensions{LengthMM: 300, WidthMM: 100, ThicknessMM: 25},
		ScanIndexMM: 5,
	}
	fast := Optimize(in, OptimizeOptions{TargetCoverage: 30, PreferSpeed: true})
	best := Optimize(in, OptimizeOptions{TargetCoverage: 30})
	require.True(t, fast.MeetsTarget)
	require.True(t, best.MeetsTarget)
	assert.LessOrEqual(t, fast.OverlapPct, best.OverlapPct)
	assert.GreaterOrEqual(t, best.AchievedCoverage, fast.AchievedCoverage)
}

func TestRecommendedSettings(t *testing.T) {
	tests := []struct {
		name      string
		thickness float64
		wantFreq  float64
		wantDia   float64
	}{
		{"thin section", 8, 10, 9.5},
		{"medium section", 20, 5, 12.7},
		{"thick section", 60, 2.25, 19.05},
		{"very thick section", 100, 1, 19.05},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := RecommendedSettings(tt.thickness, "steel", 90)
			assert.InDelta(t, tt.wantFreq, rec.FrequencyMHz, 1e-9)
			assert.InDelta(t, tt.wantDia, rec.DiameterMM, 1e-9)
			assert.InDelta(t, 15.0, rec.OverlapPct, 1e-9)
			assert.Greater(t, rec.ScanIndexMM, 0.0)
		})
	}

	t.Run("full coverage target bumps overlap", func(t *testing.T) {
		rec := RecommendedSettings(20, "aluminum", 100)
		assert.InDelta(t, 20.0, rec.OverlapPct, 1e-9)
	})
}

func TestGenerateHeatmapOverlapUsesMax(t *testing.T) {
	in := Input{
		Probe:       testProbe(),
		Dims:        Dimensions{WidthMM: 40, ThicknessMM: 20},
		ScanIndexMM: 2, // heavy overlap between passes
	}
	hm := GenerateHeatmap(in, Resolution{X: 1, Y: 1})
	require.NotEmpty(t, hm.Grid)
	for _, row := range hm.Grid {
		for _, v := range row {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0, "max-combined passes can never exceed unit intensity")
		}
	}
}
