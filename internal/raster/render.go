package raster

import (
	"fmt"
	"math"
)

// DefaultGamma approximates the sRGB display response.
const DefaultGamma = 2.2

// NormalizeGamma rescales a band to [0,1] by min-max normalization over its
// valid samples, then applies gamma correction v^(1/gamma) and clamps. NoData
// samples stay NoData. A flat band (max == min) maps to all zeros.
func NormalizeGamma(band []float64, gamma float64) []float64 {
	if gamma <= 0 {
		gamma = DefaultGamma
	}

	min, max := math.Inf(1), math.Inf(-1)
	for _, v := range band {
		if math.IsNaN(v) {
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	out := make([]float64, len(band))
	for i, v := range band {
		if math.IsNaN(v) {
			out[i] = NoData
			continue
		}
		var norm float64
		if max > min {
			norm = (v - min) / (max - min)
		}
		if norm < 0 {
			norm = 0
		}
		if norm > 1 {
			norm = 1
		}
		norm = math.Pow(norm, 1/gamma)
		if norm > 1 {
			norm = 1
		}
		out[i] = norm
	}
	return out
}

// TrueColor returns the named red, green and blue bands of the composite
// normalized and gamma corrected for display. NoData pixels come back as NaN
// and should be rendered black or transparent by the caller.
func (c *Composite) TrueColor(red, green, blue string, gamma float64) (r, g, b []float64, err error) {
	for _, name := range []string{red, green, blue} {
		if _, ok := c.Bands[name]; !ok {
			return nil, nil, nil, fmt.Errorf("composite has no band %s", name)
		}
	}
	r = NormalizeGamma(c.Bands[red], gamma)
	g = NormalizeGamma(c.Bands[green], gamma)
	b = NormalizeGamma(c.Bands[blue], gamma)
	return r, g, b, nil
}
