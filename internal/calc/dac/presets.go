package dac

import "fmt"

type amsBucket struct {
	maxThicknessMM float64
	depths         []float64
	fbhSizes       []string
}

// Simplified AMS-STD-2154 reference-reflector schedule, bucketed by part
// thickness.
var amsBuckets = []amsBucket{
	{12.7, []float64{6.35, 12.7}, []string{"3/64", "5/64"}},
	{25.4, []float64{6.35, 12.7, 25.4}, []string{"3/64", "5/64", "5/64"}},
	{50.8, []float64{12.7, 25.4, 50.8}, []string{"5/64", "5/64", "8/64"}},
	{76.2, []float64{12.7, 25.4, 50.8, 76.2}, []string{"5/64", "8/64", "8/64", "8/64"}},
	{0, []float64{25.4, 50.8, 76.2, 101.6, 127.0}, []string{"8/64", "8/64", "8/64", "8/64", "8/64"}},
}

// GenerateAMSDAC builds a preset DAC curve for the thickness bucket a part
// falls into, referenced at the middle schedule depth at 80% screen height.
func GenerateAMSDAC(material string, freqMHz, thicknessMM float64) (Output, error) {
	if thicknessMM <= 0 || freqMHz <= 0 {
		return Output{}, fmt.Errorf("invalid input")
	}
	bucket := amsBuckets[len(amsBuckets)-1]
	for _, b := range amsBuckets {
		if b.maxThicknessMM > 0 && thicknessMM <= b.maxThicknessMM {
			bucket = b
			break
		}
	}
	refDepth := bucket.depths[len(bucket.depths)/2]
	return Calculate(Input{
		Material:           material,
		FrequencyMHz:       freqMHz,
		FBHDiameters:       bucket.fbhSizes,
		Depths:             bucket.depths,
		ReferenceDepthMM:   refDepth,
		ReferenceAmplitude: 80,
	})
}
