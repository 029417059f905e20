// Package scale holds the drawing's scale calibration: a reference segment
// measured in pixels, the real length the user typed for it, and the derived
// ratio in real units per pixel.
package scale

import (
	"errors"
	"fmt"

	"github.com/planmark/planmark-go/pkg/geometry"
)

var (
	// ErrInvalidState is returned when calibration is completed without a
	// pending reference segment.
	ErrInvalidState = errors.New("no pending calibration segment")
	// ErrInvalidDistance is returned for non-positive distances.
	ErrInvalidDistance = errors.New("distance must be greater than zero")
)

// State is the calibration workflow state.
type State string

const (
	StateIdle     State = "IDLE"
	StateAwaiting State = "AWAITING_REAL_DISTANCE"
)

// Info is the persisted form of the scale.
// Ratio is nil until calibration completes.
type Info struct {
	PixelDistance float64  `json:"pixelDistance"`
	RealDistance  float64  `json:"realDistance"`
	Ratio         *float64 `json:"ratio"`
}

// Calibration tracks the scale of one drawing.
type Calibration struct {
	state         State
	pendingPixels float64
	info          Info
}

// NewCalibration returns an uncalibrated scale.
func NewCalibration() *Calibration {
	return &Calibration{state: StateIdle}
}

// BeginCalibration measures the reference segment and waits for its real
// length. Any previous pending segment is replaced; the current ratio stays in
// effect until CompleteCalibration succeeds.
func (c *Calibration) BeginCalibration(start, end geometry.Point) float64 {
	c.pendingPixels = geometry.Distance(start, end)
	c.state = StateAwaiting
	return c.pendingPixels
}

// CompleteCalibration sets the ratio from the pending segment.
func (c *Calibration) CompleteCalibration(realDistance float64) error {
	if c.state != StateAwaiting {
		return ErrInvalidState
	}
	if c.pendingPixels <= 0 {
		return fmt.Errorf("reference segment has zero length: %w", ErrInvalidState)
	}
	if realDistance <= 0 {
		return ErrInvalidDistance
	}

	ratio := realDistance / c.pendingPixels
	c.info = Info{
		PixelDistance: c.pendingPixels,
		RealDistance:  realDistance,
		Ratio:         &ratio,
	}
	c.pendingPixels = 0
	c.state = StateIdle
	return nil
}

// Cancel drops a pending reference segment.
func (c *Calibration) Cancel() {
	c.pendingPixels = 0
	c.state = StateIdle
}

// Restore replaces the scale with a persisted one. An info without a ratio
// clears the calibration. A ratio that is not positive is rejected and
// leaves the calibration, including a pending segment, untouched.
func (c *Calibration) Restore(info Info) error {
	if info.Ratio != nil && !(*info.Ratio > 0) {
		return fmt.Errorf("restored ratio %v: %w", *info.Ratio, ErrInvalidDistance)
	}
	c.Cancel()
	if info.Ratio == nil {
		c.info = Info{}
		return nil
	}
	ratio := *info.Ratio
	c.info = Info{
		PixelDistance: info.PixelDistance,
		RealDistance:  info.RealDistance,
		Ratio:         &ratio,
	}
	return nil
}

// Reset clears the calibration entirely.
func (c *Calibration) Reset() {
	c.Cancel()
	c.info = Info{}
}

// Ratio returns the real units per pixel and whether a scale is set.
func (c *Calibration) Ratio() (float64, bool) {
	if c.info.Ratio == nil {
		return 0, false
	}
	return *c.info.Ratio, true
}

// State returns the workflow state.
func (c *Calibration) State() State {
	return c.state
}

// PendingPixelDistance returns the segment awaiting a real length, or 0.
func (c *Calibration) PendingPixelDistance() float64 {
	return c.pendingPixels
}

// Info returns a copy of the current scale.
func (c *Calibration) Info() Info {
	info := c.info
	if info.Ratio != nil {
		r := *info.Ratio
		info.Ratio = &r
	}
	return info
}

// Length converts a pixel polyline to real units. ok is false when no scale is
// set; the length is then 0.
func (c *Calibration) Length(points []geometry.Point) (float64, bool) {
	ratio, ok := c.Ratio()
	if !ok {
		return 0, false
	}
	return geometry.RealLength(points, ratio), true
}

// Area converts a pixel ring to square real units. ok is false when no scale
// is set; the area is then 0.
func (c *Calibration) Area(points []geometry.Point) (float64, bool) {
	ratio, ok := c.Ratio()
	if !ok {
		return 0, false
	}
	return geometry.RealArea(points, ratio), true
}
