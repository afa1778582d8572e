package raster

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func singleBandFrame(id string, day int, values []float64, width, height int) *Frame {
	return &Frame{
		ID:        id,
		Timestamp: time.Date(2023, 1, day, 10, 30, 0, 0, time.UTC),
		Width:     width,
		Height:    height,
		Bands:     map[string][]float64{"B04": values},
	}
}

func TestComposeMedianDiscardsFlaggedSamples(t *testing.T) {
	// Pixel series 200, 5(masked by SCL), 210, 195, 400: the masked sample
	// is dropped and the median of 195, 200, 210, 400 is 205.
	values := []float64{200, 5, 210, 195, 400}
	sclClasses := []float64{4, 9, 4, 4, 4} // 9 = cloud high probability

	stack, err := NewStack()
	assert.NoError(t, err)
	for i, v := range values {
		frame := singleBandFrame("scene", i+1, []float64{v}, 1, 1)
		frame.ID = frame.Timestamp.Format("2006-01-02")
		frame.Bands["SCL"] = []float64{sclClasses[i]}
		assert.NoError(t, stack.AddFrame(frame))
	}

	composite, err := Compose(stack, SCLCloudPolicy())
	assert.NoError(t, err)
	assert.InDelta(t, 205.0, composite.Band("B04")[0], 1e-9)
}

func TestComposeMajorityValueWins(t *testing.T) {
	// More than half the valid samples share one value; arbitrary outliers
	// must not move the median.
	values := []float64{3000, 120, 120, 9999, 120}

	stack, err := NewStack()
	assert.NoError(t, err)
	for i, v := range values {
		assert.NoError(t, stack.AddFrame(singleBandFrame("scene", i+1, []float64{v}, 1, 1)))
	}

	composite, err := Compose(stack, DefaultNoDataPolicy())
	assert.NoError(t, err)
	assert.InDelta(t, 120.0, composite.Band("B04")[0], 1e-9)
}

func TestComposeSingleFrameIsIdentity(t *testing.T) {
	values := []float64{10, 20, 30, 40, 50, 60}
	stack, err := NewStack(singleBandFrame("only", 1, values, 3, 2))
	assert.NoError(t, err)

	composite, err := Compose(stack, DefaultNoDataPolicy())
	assert.NoError(t, err)
	assert.Equal(t, 3, composite.Width)
	assert.Equal(t, 2, composite.Height)
	assert.Equal(t, values, composite.Band("B04"))
}

func TestComposeShapeAndBandsMatchInput(t *testing.T) {
	stack, err := NewStack()
	assert.NoError(t, err)
	for day := 1; day <= 3; day++ {
		frame := &Frame{
			ID:        "scene",
			Timestamp: time.Date(2023, 1, day, 0, 0, 0, 0, time.UTC),
			Width:     4,
			Height:    3,
			Bands: map[string][]float64{
				"B02": make([]float64, 12),
				"B03": make([]float64, 12),
				"B04": make([]float64, 12),
			},
		}
		for _, band := range frame.Bands {
			for i := range band {
				band[i] = float64(day * (i + 1))
			}
		}
		assert.NoError(t, stack.AddFrame(frame))
	}

	composite, err := Compose(stack, DefaultNoDataPolicy())
	assert.NoError(t, err)
	assert.Equal(t, stack.Width(), composite.Width)
	assert.Equal(t, stack.Height(), composite.Height)
	assert.Equal(t, stack.BandNames(), composite.BandNames())
	assert.Equal(t, 3, composite.FrameCount)
}

func TestComposeNoValidSamplesPropagatesNoData(t *testing.T) {
	// First pixel never has a valid sample, second always does. The bad
	// pixel must come out as no-data without failing the run.
	stack, err := NewStack()
	assert.NoError(t, err)
	for day := 1; day <= 4; day++ {
		assert.NoError(t, stack.AddFrame(singleBandFrame("scene", day, []float64{0, 100 + float64(day)}, 2, 1)))
	}

	composite, err := Compose(stack, DefaultNoDataPolicy())
	assert.NoError(t, err)
	assert.True(t, math.IsNaN(composite.Band("B04")[0]), "all-no-data pixel should be NaN")
	assert.False(t, math.IsNaN(composite.Band("B04")[1]))
}

func TestComposeAllValidInputsYieldNoNoData(t *testing.T) {
	stack, err := NewStack()
	assert.NoError(t, err)
	for day := 1; day <= 5; day++ {
		values := make([]float64, 9)
		for i := range values {
			values[i] = float64(day*10 + i + 1)
		}
		assert.NoError(t, stack.AddFrame(singleBandFrame("scene", day, values, 3, 3)))
	}

	composite, err := Compose(stack, DefaultNoDataPolicy())
	assert.NoError(t, err)
	for i, v := range composite.Band("B04") {
		assert.False(t, math.IsNaN(v), "pixel %d unexpectedly no-data", i)
	}
}

func TestComposeEvenSampleCountAveragesMiddleValues(t *testing.T) {
	stack, err := NewStack()
	assert.NoError(t, err)
	for i, v := range []float64{10, 20, 30, 40} {
		assert.NoError(t, stack.AddFrame(singleBandFrame("scene", i+1, []float64{v}, 1, 1)))
	}

	composite, err := Compose(stack, DefaultNoDataPolicy())
	assert.NoError(t, err)
	assert.InDelta(t, 25.0, composite.Band("B04")[0], 1e-9)
}

func TestComposeEmptyStack(t *testing.T) {
	stack, err := NewStack()
	assert.NoError(t, err)
	_, err = Compose(stack, DefaultNoDataPolicy())
	assert.ErrorIs(t, err, ErrEmptyStack)
}

func TestComposeCustomMinValidThreshold(t *testing.T) {
	// A sensor where values below 50 are junk: the default policy would
	// keep 40, a custom threshold discards it.
	stack, err := NewStack()
	assert.NoError(t, err)
	for i, v := range []float64{40, 100, 120, 140} {
		assert.NoError(t, stack.AddFrame(singleBandFrame("scene", i+1, []float64{v}, 1, 1)))
	}

	composite, err := Compose(stack, NoDataPolicy{MinValid: 50})
	assert.NoError(t, err)
	assert.InDelta(t, 120.0, composite.Band("B04")[0], 1e-9)
}
