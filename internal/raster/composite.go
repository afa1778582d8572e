package raster

import (
	"errors"
	"math"
	"runtime"
	"sort"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/schollz/progressbar/v3"
)

// NoData marks a composite pixel with no valid sample in the whole series. It
// is distinct from zero: math.IsNaN must be used to test for it.
var NoData = math.NaN()

// NoDataPolicy decides which samples of a pixel series are invalid. The
// defaults match Sentinel-2 L2A reflectance, where zero and negative values
// mean missing data; other sensors need different settings, so callers own
// the policy rather than the engine.
type NoDataPolicy struct {
	// MinValid discards samples <= MinValid. With the default 0 a sample
	// must be strictly positive to count.
	MinValid float64
	// MaskBand optionally names a classification band (e.g. SCL) whose
	// values veto the sample across all bands of that pixel.
	MaskBand string
	// MaskedValues are the MaskBand classes treated as occluded.
	MaskedValues []float64
}

func DefaultNoDataPolicy() NoDataPolicy {
	return NoDataPolicy{MinValid: 0}
}

// SCLCloudPolicy masks the Sentinel-2 scene classification values for cloud
// shadow, clouds and cirrus on top of the default threshold.
func SCLCloudPolicy() NoDataPolicy {
	return NoDataPolicy{
		MinValid:     0,
		MaskBand:     "SCL",
		MaskedValues: []float64{3, 8, 9, 10},
	}
}

func (p NoDataPolicy) invalid(v float64) bool {
	return math.IsNaN(v) || v <= p.MinValid
}

func (p NoDataPolicy) maskedClass(v float64) bool {
	for _, m := range p.MaskedValues {
		if v == m {
			return true
		}
	}
	return false
}

// Composite is a single raster derived from a stack by collapsing the time
// axis. Pixels with no valid sample anywhere in the series hold NoData.
type Composite struct {
	Width        int
	Height       int
	Bands        map[string][]float64
	GeoTransform [6]float64
	EPSG         int
	Start        time.Time
	End          time.Time
	FrameCount   int
}

func (c *Composite) Band(name string) []float64 {
	return c.Bands[name]
}

func (c *Composite) BandNames() []string {
	names := make([]string, 0, len(c.Bands))
	for name := range c.Bands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var ErrEmptyStack = errors.New("stack contains no frames")

// Compose reduces a stack to a cloud-free composite by taking, for every
// (band, pixel), the median of the valid samples across time. The median holds
// off transient occlusion as long as more than half the samples at a pixel are
// clean; that is a statistical guarantee, not an exact one, and over a
// multi-year series cloud-contaminated samples are almost always the minority.
func Compose(stack *Stack, policy NoDataPolicy) (*Composite, error) {
	if stack == nil || stack.Len() == 0 {
		return nil, ErrEmptyStack
	}

	frames := stack.Frames()
	width, height := stack.Width(), stack.Height()
	bandNames := stack.BandNames()
	first := frames[0]

	composite := &Composite{
		Width:        width,
		Height:       height,
		Bands:        make(map[string][]float64, len(bandNames)),
		GeoTransform: first.GeoTransform,
		EPSG:         first.EPSG,
		FrameCount:   len(frames),
	}
	composite.Start, composite.End = stack.TimeRange()
	for _, name := range bandNames {
		composite.Bands[name] = make([]float64, width*height)
	}

	// Mask classes veto the sample across every band of the pixel.
	var maskBands [][]float64
	if policy.MaskBand != "" {
		for _, f := range frames {
			maskBands = append(maskBands, f.Band(policy.MaskBand))
		}
	}

	progressBar := progressbar.Default(int64(height*len(bandNames)), "Compositing")
	wp := workerpool.New(runtime.NumCPU())
	for _, name := range bandNames {
		out := composite.Bands[name]
		series := make([][]float64, len(frames))
		for i, f := range frames {
			series[i] = f.Band(name)
		}
		for y := 0; y < height; y++ {
			y := y
			// Rows are disjoint slices of out, so no locking is needed.
			wp.Submit(func() {
				samples := make([]float64, 0, len(frames))
				for x := 0; x < width; x++ {
					idx := y*width + x
					samples = samples[:0]
					for i := range series {
						v := series[i][idx]
						if policy.invalid(v) {
							continue
						}
						if maskBands != nil && maskBands[i] != nil && policy.maskedClass(maskBands[i][idx]) {
							continue
						}
						samples = append(samples, v)
					}
					out[idx] = median(samples)
				}
				progressBar.Add(1)
			})
		}
	}
	wp.StopWait()
	progressBar.Finish()

	return composite, nil
}

// median returns NoData for an empty sample set. For an even count it averages
// the two middle values.
func median(samples []float64) float64 {
	n := len(samples)
	if n == 0 {
		return NoData
	}
	sorted := make([]float64, n)
	copy(sorted, samples)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
