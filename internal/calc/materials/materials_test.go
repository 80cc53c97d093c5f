package materials

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name     string
		material string
		want     string
		velocity float64
	}{
		{"exact match", "steel", "steel", 5920},
		{"case insensitive", "Aluminum", "aluminum", 6320},
		{"keyword in longer name", "Titanium 6Al-4V", "titanium", 6100},
		{"stainless wins over steel", "Stainless Steel 304", "stainless", 5790},
		{"whitespace trimmed", "  inconel  ", "inconel", 5820},
		{"unknown falls back to custom", "zirconium", "custom", 5920},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Lookup(tt.material)
			assert.Equal(t, tt.want, p.Name)
			assert.Equal(t, tt.velocity, p.VelocityMS)
		})
	}
}

func TestAttenuationAtFrequency(t *testing.T) {
	// Linear in frequency around the 5 MHz reference.
	assert.InDelta(t, 0.010, AttenuationAtFrequency("steel", 5), 1e-9)
	assert.InDelta(t, 0.020, AttenuationAtFrequency("steel", 10), 1e-9)
	assert.InDelta(t, 0.005, AttenuationAtFrequency("steel", 2.5), 1e-9)

	// Non-positive frequency keeps the tabulated reference value.
	assert.InDelta(t, 0.005, AttenuationAtFrequency("aluminum", 0), 1e-9)
	assert.InDelta(t, 0.005, AttenuationAtFrequency("aluminum", -1), 1e-9)
}
