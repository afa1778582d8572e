package raster

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testFrame(day, width, height int, bands ...string) *Frame {
	if len(bands) == 0 {
		bands = []string{"B04"}
	}
	f := &Frame{
		ID:        "scene",
		Timestamp: time.Date(2023, 5, day, 0, 0, 0, 0, time.UTC),
		Width:     width,
		Height:    height,
		Bands:     make(map[string][]float64, len(bands)),
	}
	for _, b := range bands {
		f.Bands[b] = make([]float64, width*height)
	}
	return f
}

func TestAddFrameRejectsShapeMismatch(t *testing.T) {
	stack, err := NewStack(testFrame(1, 4, 4))
	assert.NoError(t, err)

	err = stack.AddFrame(testFrame(2, 4, 5))
	var mismatch *InputMismatchError
	assert.ErrorAs(t, err, &mismatch)
	assert.Contains(t, err.Error(), "shape")
}

func TestAddFrameRejectsBandMismatch(t *testing.T) {
	stack, err := NewStack(testFrame(1, 2, 2, "B02", "B04"))
	assert.NoError(t, err)

	err = stack.AddFrame(testFrame(2, 2, 2, "B02", "B08"))
	var mismatch *InputMismatchError
	assert.ErrorAs(t, err, &mismatch)
}

func TestAddFrameRejectsDuplicateTimestamp(t *testing.T) {
	stack, err := NewStack(testFrame(1, 2, 2))
	assert.NoError(t, err)

	err = stack.AddFrame(testFrame(1, 2, 2))
	var mismatch *InputMismatchError
	assert.ErrorAs(t, err, &mismatch)
	assert.Contains(t, err.Error(), "duplicate timestamp")
}

func TestAddFrameRejectsShortBandData(t *testing.T) {
	frame := testFrame(1, 3, 3)
	frame.Bands["B04"] = make([]float64, 5)

	stack, _ := NewStack()
	err := stack.AddFrame(frame)
	var mismatch *InputMismatchError
	assert.ErrorAs(t, err, &mismatch)
}

func TestFramesAreKeptInTimestampOrder(t *testing.T) {
	stack, err := NewStack(testFrame(20, 2, 2), testFrame(5, 2, 2), testFrame(12, 2, 2))
	assert.NoError(t, err)

	frames := stack.Frames()
	assert.Len(t, frames, 3)
	assert.True(t, frames[0].Timestamp.Before(frames[1].Timestamp))
	assert.True(t, frames[1].Timestamp.Before(frames[2].Timestamp))

	start, end := stack.TimeRange()
	assert.Equal(t, frames[0].Timestamp, start)
	assert.Equal(t, frames[2].Timestamp, end)
}
