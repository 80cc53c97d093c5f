package materials

import "strings"

// Props holds the acoustic properties used by the coverage and DAC engines.
// Attenuation is given at the 5 MHz reference frequency.
type Props struct {
	Name            string  `json:"name"`
	VelocityMS      float64 `json:"velocity_ms"`
	AttenuationDBMM float64 `json:"attenuation_db_mm"`
}

const ReferenceFrequencyMHz = 5.0

var table = map[string]Props{
	"steel":     {Name: "steel", VelocityMS: 5920, AttenuationDBMM: 0.010},
	"aluminum":  {Name: "aluminum", VelocityMS: 6320, AttenuationDBMM: 0.005},
	"titanium":  {Name: "titanium", VelocityMS: 6100, AttenuationDBMM: 0.008},
	"stainless": {Name: "stainless", VelocityMS: 5790, AttenuationDBMM: 0.020},
	"inconel":   {Name: "inconel", VelocityMS: 5820, AttenuationDBMM: 0.025},
	"magnesium": {Name: "magnesium", VelocityMS: 5770, AttenuationDBMM: 0.006},
}

// keywordOrder fixes the substring-match priority; "stainless" must win over
// "steel" for names like "Stainless Steel 304".
var keywordOrder = []string{"stainless", "steel", "aluminum", "titanium", "inconel", "magnesium"}

// custom fallback for materials not in the table; steel-like defaults keep
// the calculators usable for novel alloys.
var custom = Props{Name: "custom", VelocityMS: 5920, AttenuationDBMM: 0.010}

// Lookup returns the properties for the named material, falling back to the
// custom entry for unknown names. Matching is case-insensitive on the first
// keyword, so "Stainless Steel 304" resolves to stainless.
func Lookup(name string) Props {
	key := strings.ToLower(strings.TrimSpace(name))
	if p, ok := table[key]; ok {
		return p
	}
	for _, k := range keywordOrder {
		if strings.Contains(key, k) {
			return table[k]
		}
	}
	return custom
}

// AttenuationAtFrequency scales the tabulated attenuation linearly from the
// 5 MHz reference to the working frequency. A linear scaling, not a
// physical log-law fit.
func AttenuationAtFrequency(name string, freqMHz float64) float64 {
	p := Lookup(name)
	if freqMHz <= 0 {
		return p.AttenuationDBMM
	}
	return p.AttenuationDBMM * freqMHz / ReferenceFrequencyMHz
}
