package raster

import (
	"fmt"
	"sort"
	"time"
)

// Frame is one timestamped raster covering the area of interest. Band data is
// stored row-major, Width*Height samples per band.
type Frame struct {
	ID           string
	Timestamp    time.Time
	Width        int
	Height       int
	Bands        map[string][]float64
	GeoTransform [6]float64
	EPSG         int
}

// Band returns the samples for a named band, or nil when the frame does not
// carry it.
func (f *Frame) Band(name string) []float64 {
	return f.Bands[name]
}

// BandNames returns the frame's band names in sorted order.
func (f *Frame) BandNames() []string {
	names := make([]string, 0, len(f.Bands))
	for name := range f.Bands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InputMismatchError reports a frame that does not share the stack's grid or
// band set. It is raised before any compositing work starts.
type InputMismatchError struct {
	FrameID string
	Reason  string
}

func (e *InputMismatchError) Error() string {
	return fmt.Sprintf("frame %s does not match stack: %s", e.FrameID, e.Reason)
}

// Stack holds co-registered frames ordered by acquisition time. All frames
// share the same grid, geotransform and band set; timestamps are distinct but
// not necessarily evenly spaced.
type Stack struct {
	frames []*Frame
}

func NewStack(frames ...*Frame) (*Stack, error) {
	s := &Stack{}
	for _, f := range frames {
		if err := s.AddFrame(f); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// AddFrame validates a frame against the stack and inserts it in timestamp
// order.
func (s *Stack) AddFrame(f *Frame) error {
	if f.Width <= 0 || f.Height <= 0 {
		return &InputMismatchError{FrameID: f.ID, Reason: fmt.Sprintf("invalid dimensions %dx%d", f.Width, f.Height)}
	}
	if len(f.Bands) == 0 {
		return &InputMismatchError{FrameID: f.ID, Reason: "frame has no bands"}
	}
	for name, data := range f.Bands {
		if len(data) != f.Width*f.Height {
			return &InputMismatchError{FrameID: f.ID, Reason: fmt.Sprintf("band %s has %d samples, expected %d", name, len(data), f.Width*f.Height)}
		}
	}

	if len(s.frames) > 0 {
		first := s.frames[0]
		if f.Width != first.Width || f.Height != first.Height {
			return &InputMismatchError{FrameID: f.ID, Reason: fmt.Sprintf("shape %dx%d differs from stack shape %dx%d", f.Width, f.Height, first.Width, first.Height)}
		}
		if len(f.Bands) != len(first.Bands) {
			return &InputMismatchError{FrameID: f.ID, Reason: fmt.Sprintf("frame has %d bands, stack has %d", len(f.Bands), len(first.Bands))}
		}
		for name := range first.Bands {
			if _, ok := f.Bands[name]; !ok {
				return &InputMismatchError{FrameID: f.ID, Reason: fmt.Sprintf("frame is missing band %s", name)}
			}
		}
		for _, existing := range s.frames {
			if existing.Timestamp.Equal(f.Timestamp) {
				return &InputMismatchError{FrameID: f.ID, Reason: fmt.Sprintf("duplicate timestamp %s", f.Timestamp.Format(time.RFC3339))}
			}
		}
	}

	s.frames = append(s.frames, f)
	sort.Slice(s.frames, func(i, j int) bool {
		return s.frames[i].Timestamp.Before(s.frames[j].Timestamp)
	})
	return nil
}

func (s *Stack) Len() int {
	return len(s.frames)
}

// Frames returns the stack's frames in acquisition order.
func (s *Stack) Frames() []*Frame {
	return s.frames
}

func (s *Stack) Width() int {
	if len(s.frames) == 0 {
		return 0
	}
	return s.frames[0].Width
}

func (s *Stack) Height() int {
	if len(s.frames) == 0 {
		return 0
	}
	return s.frames[0].Height
}

func (s *Stack) BandNames() []string {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[0].BandNames()
}

// TimeRange returns the timestamps of the oldest and newest frames.
func (s *Stack) TimeRange() (time.Time, time.Time) {
	if len(s.frames) == 0 {
		return time.Time{}, time.Time{}
	}
	return s.frames[0].Timestamp, s.frames[len(s.frames)-1].Timestamp
}
